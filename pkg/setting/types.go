package setting

import (
	"fmt"
	"strconv"
	"strings"

	"sitemap-console/pkg/control"
)

// Type determines how a setting converts values between its control and
// the XML document.
type Type int

const (
	Boolean Type = iota
	String
	Duration
	SpaceSize
	List
	Radio
	QueryFieldList
	Date
)

var typeNames = map[Type]string{
	Boolean:        "boolean",
	String:         "string",
	Duration:       "duration",
	SpaceSize:      "spacesize",
	List:           "list",
	Radio:          "radio",
	QueryFieldList: "queryfieldlist",
	Date:           "date",
}

// String returns the schema name of the type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseType resolves a schema type name.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

func (t Type) isList() bool {
	return t == List || t == QueryFieldList
}

// allowedKinds lists the controls each type can be bound to. A holder works
// for every type.
var allowedKinds = map[Type][]control.Kind{
	Boolean:        {control.KindCheckbox},
	String:         {control.KindText, control.KindPassword, control.KindSelect},
	Duration:       {control.KindText, control.KindRadio},
	SpaceSize:      {control.KindText},
	List:           {control.KindList},
	Radio:          {control.KindRadio},
	QueryFieldList: {control.KindList},
	Date:           {control.KindDate, control.KindText},
}

func checkKind(t Type, k control.Kind) error {
	if k == control.KindHolder {
		return nil
	}
	kinds, ok := allowedKinds[t]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownType, int(t))
	}
	for _, allowed := range kinds {
		if allowed == k {
			return nil
		}
	}
	return fmt.Errorf("%w: %s cannot show %s", ErrControlMismatch, k, t)
}

const (
	secondsPerMinute = 60
	bytesPerKilobyte = 1024
)

// unitScale returns the storage/UI ratio for the setting, or 1.
func (s *Setting) unitScale() int64 {
	switch {
	case s.typ == Duration, s.typ == Radio && s.durationRadio:
		return secondsPerMinute
	case s.typ == SpaceSize:
		return bytesPerKilobyte
	}
	return 1
}

// toStorage converts a UI value into its XML form.
func (s *Setting) toStorage(ui string) (string, error) {
	switch s.typ {
	case Boolean:
		return strconv.FormatBool(parseBool(ui)), nil
	}
	scale := s.unitScale()
	if scale == 1 || ui == "" {
		return ui, nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(ui), 64)
	if err != nil {
		return "", fmt.Errorf("%w: %s=%q: %v", ErrConversion, s.name, ui, err)
	}
	return formatNumber(n * float64(scale)), nil
}

// fromStorage converts an XML value into its UI form.
func (s *Setting) fromStorage(raw string) (string, error) {
	switch s.typ {
	case Boolean:
		return strconv.FormatBool(parseBool(raw)), nil
	}
	scale := s.unitScale()
	if scale == 1 || raw == "" {
		return raw, nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", fmt.Errorf("%w: %s=%q: %v", ErrConversion, s.name, raw, err)
	}
	return formatNumber(n / float64(scale)), nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}

// formatNumber prints integers without a fraction.
func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
