package control

import (
	"fmt"
	"strconv"
	"strings"
)

// Checkbox is a boolean control.
type Checkbox struct {
	element
	checked bool
}

// NewCheckbox creates an unchecked checkbox.
func NewCheckbox(id string) *Checkbox {
	return &Checkbox{element: newElement(id)}
}

func (c *Checkbox) Kind() Kind { return KindCheckbox }

// Value returns "true" or "false".
func (c *Checkbox) Value() string { return strconv.FormatBool(c.checked) }

// SetValue accepts true/false, 1/0, on/off and the empty string (false).
func (c *Checkbox) SetValue(v string) error {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "on", "yes":
		c.checked = true
	case "false", "0", "off", "no", "":
		c.checked = false
	default:
		return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v)
	}
	return nil
}

// Checked reports whether the box is ticked.
func (c *Checkbox) Checked() bool { return c.checked }

// Text is a single-line text input.
type Text struct {
	element
	kind  Kind
	value string
}

// NewText creates a text input.
func NewText(id string) *Text {
	return &Text{element: newElement(id), kind: KindText}
}

// NewPassword creates a masked text input.
func NewPassword(id string) *Text {
	return &Text{element: newElement(id), kind: KindPassword}
}

func (t *Text) Kind() Kind { return t.kind }
func (t *Text) Value() string { return t.value }
func (t *Text) SetValue(v string) error {
	t.value = v
	return nil
}

// RadioOption is one choice of a radio group. At most one option per group
// may be Custom; it selects the free-text input next to the group.
type RadioOption struct {
	Value  string
	Custom bool
}

// Radio is a radio group with an optional custom-value input.
type Radio struct {
	element
	options   []string
	hasCustom bool
	selected  string
	custom    string
	useCustom bool
}

// NewRadio creates a radio group. Two custom inputs in one group is a
// template error.
func NewRadio(id string, options ...RadioOption) (*Radio, error) {
	r := &Radio{element: newElement(id)}
	for _, opt := range options {
		if opt.Custom {
			if r.hasCustom {
				return nil, fmt.Errorf("%w: radio group %q", ErrDuplicateCustomInput, id)
			}
			r.hasCustom = true
			continue
		}
		r.options = append(r.options, opt.Value)
	}
	if len(r.options) > 0 {
		r.selected = r.options[0]
	}
	return r, nil
}

func (r *Radio) Kind() Kind { return KindRadio }

// Value returns the selected option, or the custom text when the custom
// input is selected.
func (r *Radio) Value() string {
	if r.useCustom {
		return r.custom
	}
	return r.selected
}

// SetValue selects the matching option, falling back to the custom input.
func (r *Radio) SetValue(v string) error {
	for _, opt := range r.options {
		if opt == v {
			r.selected = v
			r.useCustom = false
			return nil
		}
	}
	if !r.hasCustom {
		return fmt.Errorf("%w: %q is not an option of %q", ErrInvalidValue, v, r.id)
	}
	r.custom = v
	r.useCustom = true
	return nil
}

// CustomSelected reports whether the custom input holds the value.
func (r *Radio) CustomSelected() bool { return r.useCustom }

// Options returns the fixed choices.
func (r *Radio) Options() []string { return append([]string(nil), r.options...) }

// Date is a paired date and time input. Its value is "YYYY-MM-DD HH:MM",
// or just the date when the time part is empty.
type Date struct {
	element
	date string
	time string
}

// NewDate creates a date+time pair.
func NewDate(id string) *Date {
	return &Date{element: newElement(id)}
}

func (d *Date) Kind() Kind { return KindDate }

func (d *Date) Value() string {
	if d.time == "" {
		return d.date
	}
	return d.date + " " + d.time
}

func (d *Date) SetValue(v string) error {
	date, tm, _ := strings.Cut(strings.TrimSpace(v), " ")
	d.date = date
	d.time = strings.TrimSpace(tm)
	return nil
}

// Parts returns the date and time inputs separately.
func (d *Date) Parts() (date, time string) { return d.date, d.time }

// List displays the rows of a list setting, one per line.
type List struct {
	element
	rows []string
}

// NewList creates an empty list display.
func NewList(id string) *List {
	return &List{element: newElement(id)}
}

func (l *List) Kind() Kind { return KindList }
func (l *List) Value() string { return strings.Join(l.rows, "\n") }

func (l *List) SetValue(v string) error {
	l.rows = l.rows[:0]
	if v == "" {
		return nil
	}
	l.rows = append(l.rows, strings.Split(v, "\n")...)
	return nil
}

// SetRows replaces the displayed rows.
func (l *List) SetRows(rows []string) { l.rows = append(l.rows[:0], rows...) }

// Rows returns the displayed rows.
func (l *List) Rows() []string { return append([]string(nil), l.rows...) }

// Holder keeps a value in memory for settings without a visible control of
// their own.
type Holder struct {
	element
	value string
}

// NewHolder creates an in-memory holder.
func NewHolder(id string) *Holder {
	return &Holder{element: newElement(id)}
}

func (h *Holder) Kind() Kind { return KindHolder }
func (h *Holder) Value() string { return h.value }
func (h *Holder) SetValue(v string) error {
	h.value = v
	return nil
}

// Banner is a page message that is either shown or hidden.
type Banner struct {
	element
	message string
	visible bool
}

// NewBanner creates a hidden banner.
func NewBanner(id, message string) *Banner {
	return &Banner{element: newElement(id), message: message}
}

func (b *Banner) Kind() Kind { return KindBanner }
func (b *Banner) Value() string { return strconv.FormatBool(b.visible) }

func (b *Banner) SetValue(v string) error {
	visible, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v)
	}
	b.visible = visible
	return nil
}

// Show makes the banner visible.
func (b *Banner) Show() { b.visible = true }

// Hide hides the banner.
func (b *Banner) Hide() { b.visible = false }

// Visible reports whether the banner is shown.
func (b *Banner) Visible() bool { return b.visible }

// Message returns the banner text.
func (b *Banner) Message() string { return b.message }

// Select is a drop-down, used for the site switcher.
type Select struct {
	element
	options  []string
	selected string
}

// NewSelect creates an empty drop-down.
func NewSelect(id string) *Select {
	return &Select{element: newElement(id)}
}

func (s *Select) Kind() Kind { return KindSelect }
func (s *Select) Value() string { return s.selected }

func (s *Select) SetValue(v string) error {
	for _, opt := range s.options {
		if opt == v {
			s.selected = v
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not an option of %q", ErrInvalidValue, v, s.id)
}

// SetOptions replaces the choices. The selection is kept when still valid.
func (s *Select) SetOptions(options []string) {
	s.options = append(s.options[:0], options...)
	for _, opt := range s.options {
		if opt == s.selected {
			return
		}
	}
	s.selected = ""
}

// Options returns the choices.
func (s *Select) Options() []string { return append([]string(nil), s.options...) }
