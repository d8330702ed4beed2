// Package domain models US traffic-accident records and the filter and
// aggregation logic behind every dashboard panel.
//
// # Data Source
//
// Records come from the US Accidents dataset (one row per accident). A loader
// adapter parses the source once at startup and hands the rows to [NewTable],
// which validates them and stores them column-wise. The table is never
// modified afterwards; filtering produces a [View] of row indices.
//
// # Columns
//
//	State          two-letter postal code, e.g. "VA"
//	County         five-digit county FIPS code, e.g. "51059"
//	Timestamp      accident start time, Unix seconds (UTC)
//	Severity       1 (least impact on traffic) through 4 (most)
//	Weather        free-form condition string, e.g. "Light Rain"
//	DayNight       "Day" or "Night" (Sunrise_Sunset column)
//	Flags          road features near the accident, see [Flag]
//	Measurements   temperature (F), visibility (mi), wind speed (mph),
//	               precipitation (in), distance of road affected (mi)
//
// # Month Grid
//
// The date slider works on a fixed grid of 96 monthly buckets:
//
//	index i  ->  month (i % 12) + 1, year 2016 + i/12
//	0 -> Jan 2016, 11 -> Dec 2016, 12 -> Jan 2017, 95 -> Dec 2023
//
// Each bound converts to 00:00:00 UTC on the first day of its month, and a
// record matches when start <= timestamp <= end. The end bound is therefore
// the first instant of the end month, not its last.
//
// # Grouping
//
// [Aggregate] counts rows per distinct value of a closed set of keys
// ([GroupKey]). Flags, group keys and scatter measurements are all closed
// enumerations; user-supplied names are parsed against them and rejected
// with [ErrInvalidArgument] rather than looked up dynamically.
package domain
