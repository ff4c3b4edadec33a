package validate

import (
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Predefined pattern names.
const (
	PatternNumber   = "number"
	PatternInteger  = "integer"
	PatternFloat    = "float"
	PatternPassword = "password"
	PatternDate     = "date"
	PatternTime     = "time"
	PatternEmail    = "email"
	PatternURL      = "url"
	PatternHost     = "host"
	PatternPath     = "path"
)

// DefaultPasswordMinLength is the password length used when no pattern table
// is supplied.
const DefaultPasswordMinLength = 6

// Predicate reports whether a value matches a named pattern.
type Predicate func(value string) bool

// Patterns maps pattern names to predicates.
type Patterns map[string]Predicate

var (
	numberRe  = regexp.MustCompile(`^\d+$`)
	integerRe = regexp.MustCompile(`^-?\d+$`)
	floatRe   = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)
	hostRe    = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?)*(:\d{1,5})?$`)
)

// DefaultPatterns returns the predefined pattern table. The password pattern
// is a length rule, not a regex.
func DefaultPatterns(passwordMinLength int) Patterns {
	return Patterns{
		PatternNumber:  numberRe.MatchString,
		PatternInteger: integerRe.MatchString,
		PatternFloat:   floatRe.MatchString,
		PatternPassword: func(v string) bool {
			return len(v) >= passwordMinLength
		},
		PatternDate: func(v string) bool {
			_, err := time.Parse("2006-01-02", v)
			return err == nil
		},
		PatternTime: func(v string) bool {
			_, err := time.Parse("15:04", v)
			return err == nil
		},
		PatternEmail: func(v string) bool {
			addr, err := mail.ParseAddress(v)
			return err == nil && addr.Address == v
		},
		PatternURL: func(v string) bool {
			u, err := url.Parse(v)
			return err == nil && u.Scheme != "" && u.Host != ""
		},
		PatternHost: func(v string) bool {
			if net.ParseIP(v) != nil {
				return true
			}
			return hostRe.MatchString(v)
		},
		PatternPath: func(v string) bool {
			return v != "" && !strings.ContainsAny(v, "\x00\r\n")
		},
	}
}

// With returns a copy of p with name bound to pred.
func (p Patterns) With(name string, pred Predicate) Patterns {
	out := make(Patterns, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[name] = pred
	return out
}
