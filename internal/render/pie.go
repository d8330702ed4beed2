package render

import (
	"sort"

	"github.com/couchcryptid/accident-dashboard/internal/domain"
)

// unknownLabel names the slice for records with no value for the key.
const unknownLabel = "Unknown"

// Pie is the share of accidents per value of one categorical key.
type Pie struct {
	Key    domain.GroupKey `json:"key"`
	Labels []string        `json:"labels"`
	Values []int           `json:"values"`
	Total  int             `json:"total"`
}

// NewPie builds one slice per group. Empty keys are folded into the
// "Unknown" slice, so every label appears once.
func NewPie(s domain.Summary) Pie {
	p := Pie{
		Key:    s.Key,
		Labels: make([]string, 0, len(s.Groups)),
		Values: make([]int, 0, len(s.Groups)),
		Total:  s.Total,
	}
	slot := make(map[string]int, len(s.Groups))
	merged := false
	for _, g := range s.Groups {
		label := g.Key
		if label == "" {
			label = unknownLabel
		}
		if i, ok := slot[label]; ok {
			p.Values[i] += g.Count
			merged = true
			continue
		}
		slot[label] = len(p.Labels)
		p.Labels = append(p.Labels, label)
		p.Values = append(p.Values, g.Count)
	}
	if merged {
		sort.Sort(pieOrder{&p})
	}
	return p
}

// pieOrder sorts slices by value descending, then label ascending.
type pieOrder struct{ p *Pie }

func (o pieOrder) Len() int { return len(o.p.Labels) }

func (o pieOrder) Less(i, j int) bool {
	if o.p.Values[i] != o.p.Values[j] {
		return o.p.Values[i] > o.p.Values[j]
	}
	return o.p.Labels[i] < o.p.Labels[j]
}

func (o pieOrder) Swap(i, j int) {
	o.p.Labels[i], o.p.Labels[j] = o.p.Labels[j], o.p.Labels[i]
	o.p.Values[i], o.p.Values[j] = o.p.Values[j], o.p.Values[i]
}
