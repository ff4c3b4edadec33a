// Package validate checks single setting values against a named pattern, a
// regular expression, or a numeric range.
//
// Patterns are resolved in this order:
//   - Named: a predefined or registered predicate (number, password, date, ...)
//   - Regex: any other pattern string, compiled with regexp
//
// Numeric patterns may carry a range written as "(min,max)" or "[min,max]",
// where parentheses are exclusive, brackets are inclusive, an empty bound is
// unbounded and MAX means unbounded above.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Validator is the sole authority on whether a setting value is acceptable.
type Validator struct {
	pattern     string
	named       Predicate
	re          *regexp.Regexp
	rng         *Range
	required    bool
	requiredSet bool
	patterns    Patterns
}

// Option configures a Validator.
type Option func(*Validator) error

// WithRange attaches a numeric range such as "[10,MAX)".
func WithRange(raw string) Option {
	return func(v *Validator) error {
		if raw == "" {
			return nil
		}
		r, err := ParseRange(raw)
		if err != nil {
			return err
		}
		v.rng = r
		return nil
	}
}

// WithRequired sets the required flag explicitly. When required is false an
// empty value always passes.
func WithRequired(required bool) Option {
	return func(v *Validator) error {
		v.required = required
		v.requiredSet = true
		return nil
	}
}

// WithPatterns replaces the named pattern table used for lookups.
func WithPatterns(p Patterns) Option {
	return func(v *Validator) error {
		v.patterns = p
		return nil
	}
}

// New creates a validator for pattern.
func New(pattern string, opts ...Option) (*Validator, error) {
	v := &Validator{
		pattern:  pattern,
		patterns: DefaultPatterns(DefaultPasswordMinLength),
	}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	if pred, ok := v.patterns[pattern]; ok {
		v.named = pred
	} else if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
		}
		v.re = re
	}

	if v.rng != nil && !isNumericPattern(pattern) {
		return nil, fmt.Errorf("%w: range %q on non-numeric pattern %q", ErrInvalidRange, v.rng.raw, pattern)
	}

	return v, nil
}

// MustNew is New for package-level schema tables; it panics on error.
func MustNew(pattern string, opts ...Option) *Validator {
	v, err := New(pattern, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// Check reports whether value matches the pattern and, for numeric patterns,
// lies inside the configured range.
func (v *Validator) Check(value string) bool {
	if value == "" && v.requiredSet && !v.required {
		return true
	}

	switch {
	case v.named != nil:
		if !v.named(value) {
			return false
		}
	case v.re != nil:
		if !v.re.MatchString(value) {
			return false
		}
	default:
		// No pattern: only emptiness matters.
		if value == "" && v.required {
			return false
		}
	}

	if v.rng != nil {
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return false
		}
		return v.rng.Contains(n)
	}
	return true
}

// Pattern returns the pattern the validator was built with.
func (v *Validator) Pattern() string {
	return v.pattern
}

// Range returns the raw range string, or "" when none is configured.
func (v *Validator) Range() string {
	if v.rng == nil {
		return ""
	}
	return v.rng.raw
}

// Hint returns the tooltip augmentation for the range, e.g. "Range=[10,MAX)".
func (v *Validator) Hint() string {
	if v.rng == nil {
		return ""
	}
	return "Range=" + v.rng.raw
}

func isNumericPattern(pattern string) bool {
	switch pattern {
	case PatternNumber, PatternInteger, PatternFloat:
		return true
	}
	return false
}
