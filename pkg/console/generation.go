package console

import (
	"fmt"
	"strings"

	"sitemap-console/pkg/control"
)

// Generation is one historical binding of the console UI. Both share the
// settings core and differ in skin classes, password length and whether
// inherited values are locked.
type Generation struct {
	Name              string
	Skin              control.Skin
	ReadonlyOnInherit bool
	PasswordMinLength int
}

var (
	// Trunk is the older console.
	Trunk = Generation{
		Name: "trunk",
		Skin: control.Skin{
			Name:          "trunk",
			DefaultClass:  "default",
			CustomClass:   "custom",
			InvalidClass:  "invalid",
			ReadonlyClass: "readonly",
		},
		PasswordMinLength: 5,
	}

	// Trunck is the newer console. Inherited values are readonly until the
	// page is customized.
	Trunck = Generation{
		Name: "trunck",
		Skin: control.Skin{
			Name:          "trunck",
			DefaultClass:  "inherited",
			CustomClass:   "customized",
			InvalidClass:  "error",
			ReadonlyClass: "disabled",
		},
		ReadonlyOnInherit: true,
		PasswordMinLength: 6,
	}
)

// ParseGeneration returns the generation called name.
func ParseGeneration(name string) (Generation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Trunk.Name:
		return Trunk, nil
	case Trunck.Name, "":
		return Trunck, nil
	default:
		return Generation{}, fmt.Errorf("%w: %q", ErrUnknownGeneration, name)
	}
}
