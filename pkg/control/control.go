// Package control models the form controls a setting is bound to. Controls
// hold UI-side values only; conversion to storage form happens in the
// setting that owns the control.
package control

import "sort"

// Kind identifies a control variant.
type Kind int

const (
	KindCheckbox Kind = iota
	KindText
	KindPassword
	KindRadio
	KindDate
	KindList
	KindHolder
	KindBanner
	KindSelect
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindCheckbox:
		return "checkbox"
	case KindText:
		return "text"
	case KindPassword:
		return "password"
	case KindRadio:
		return "radio"
	case KindDate:
		return "date"
	case KindList:
		return "list"
	case KindHolder:
		return "holder"
	case KindBanner:
		return "banner"
	case KindSelect:
		return "select"
	default:
		return "unknown"
	}
}

// State is the inherited/customized visual state of a control.
type State int

const (
	// StateDefault marks a value that follows the global default.
	StateDefault State = iota
	// StateCustom marks a value set for this site.
	StateCustom
)

// Control is the contract every control variant satisfies.
type Control interface {
	ID() string
	Kind() Kind
	Value() string
	SetValue(v string) error

	SetReadonly(readonly bool)
	Readonly() bool
	SetState(s State)
	State() State
	SetValid(valid bool)
	Valid() bool
	SetHint(hint string)
	Hint() string
	Classes() []string

	Focus() error
	Detach()
	Attached() bool

	base() *element
}

// Skin holds the class names one console generation uses for the visual
// states of a control.
type Skin struct {
	Name          string
	DefaultClass  string
	CustomClass   string
	InvalidClass  string
	ReadonlyClass string
}

// element carries the state shared by every control variant.
type element struct {
	id       string
	skin     Skin
	readonly bool
	state    State
	invalid  bool
	hint     string
	detached bool
	form     *Form
}

func newElement(id string) element {
	return element{id: id}
}

func (e *element) base() *element { return e }

// ID returns the control identity.
func (e *element) ID() string { return e.id }

// SetReadonly locks or unlocks the control.
func (e *element) SetReadonly(readonly bool) { e.readonly = readonly }

// Readonly reports whether the control is locked.
func (e *element) Readonly() bool { return e.readonly }

// SetState sets the default/custom visual state.
func (e *element) SetState(s State) { e.state = s }

// State returns the default/custom visual state.
func (e *element) State() State { return e.state }

// SetValid flags the control valid or invalid.
func (e *element) SetValid(valid bool) { e.invalid = !valid }

// Valid reports the last validation result reflected on the control.
func (e *element) Valid() bool { return !e.invalid }

// SetHint sets the tooltip text.
func (e *element) SetHint(hint string) { e.hint = hint }

// Hint returns the tooltip text.
func (e *element) Hint() string { return e.hint }

// Classes returns the skin classes for the current visual state, sorted.
func (e *element) Classes() []string {
	var classes []string
	add := func(c string) {
		if c != "" {
			classes = append(classes, c)
		}
	}
	if e.state == StateCustom {
		add(e.skin.CustomClass)
	} else {
		add(e.skin.DefaultClass)
	}
	if e.invalid {
		add(e.skin.InvalidClass)
	}
	if e.readonly {
		add(e.skin.ReadonlyClass)
	}
	sort.Strings(classes)
	return classes
}

// Focus moves input focus to the control.
func (e *element) Focus() error {
	if e.detached {
		return ErrDetached
	}
	if e.form != nil {
		e.form.focused = e.id
	}
	return nil
}

// Detach marks the control as removed from the page.
func (e *element) Detach() { e.detached = true }

// Attached reports whether the control is still on the page.
func (e *element) Attached() bool { return !e.detached }
