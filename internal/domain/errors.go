package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument reports a selection value outside its closed domain:
// an unknown flag, grouping key or measure, or a month index off the grid.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
