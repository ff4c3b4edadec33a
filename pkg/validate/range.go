package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// rangeRe captures: lower bracket, min (number or empty), max (number, MAX or
// empty), upper bracket.
var rangeRe = regexp.MustCompile(`^\s*([(\[])\s*(-?\d*\.?\d*)\s*,\s*(-?\d*\.?\d*|MAX)\s*([)\]])\s*$`)

// Range is a numeric interval with independently open or closed bounds.
type Range struct {
	raw          string
	Min          float64
	Max          float64
	MinInclusive bool
	MaxInclusive bool
}

// ParseRange parses "(min,max)", "[min,max]" or any mix of the two brackets.
func ParseRange(raw string) (*Range, error) {
	m := rangeRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRange, raw)
	}

	r := &Range{
		raw:          strings.TrimSpace(raw),
		Min:          math.Inf(-1),
		Max:          math.Inf(1),
		MinInclusive: m[1] == "[",
		MaxInclusive: m[4] == "]",
	}

	if m[2] != "" {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad minimum in %q", ErrInvalidRange, raw)
		}
		r.Min = v
	}
	if m[3] != "" && m[3] != "MAX" {
		v, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad maximum in %q", ErrInvalidRange, raw)
		}
		r.Max = v
	}
	if r.Min > r.Max {
		return nil, fmt.Errorf("%w: minimum above maximum in %q", ErrInvalidRange, raw)
	}
	return r, nil
}

// Contains reports whether n satisfies both bounds.
func (r *Range) Contains(n float64) bool {
	if math.IsNaN(n) {
		return false
	}
	if r.MinInclusive {
		if n < r.Min {
			return false
		}
	} else if n <= r.Min {
		return false
	}
	if r.MaxInclusive {
		if n > r.Max {
			return false
		}
	} else if n >= r.Max {
		return false
	}
	return true
}

// String returns the range as written.
func (r *Range) String() string {
	return r.raw
}
