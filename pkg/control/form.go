package control

import "fmt"

// Form is the registry of controls on one console page set. Controls are
// shared by every settings group rendered into the same page.
type Form struct {
	skin     Skin
	controls map[string]Control
	order    []string
	focused  string
}

// NewForm creates an empty form using skin for visual states.
func NewForm(skin Skin) *Form {
	return &Form{
		skin:     skin,
		controls: make(map[string]Control),
	}
}

// Add registers c. A second control with the same ID is a template error.
func (f *Form) Add(c Control) error {
	if _, ok := f.controls[c.ID()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateElement, c.ID())
	}
	b := c.base()
	b.skin = f.skin
	b.form = f
	f.controls[c.ID()] = c
	f.order = append(f.order, c.ID())
	return nil
}

// Lookup returns the control with id. A missing control means the schema and
// the page disagree.
func (f *Form) Lookup(id string) (Control, error) {
	c, ok := f.controls[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingElement, id)
	}
	return c, nil
}

// Controls returns every control in registration order.
func (f *Form) Controls() []Control {
	out := make([]Control, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.controls[id])
	}
	return out
}

// Focused returns the ID of the control that last received focus.
func (f *Form) Focused() string {
	return f.focused
}

// Skin returns the form's skin.
func (f *Form) Skin() Skin {
	return f.skin
}

// Binder tracks which owner a shared control is currently bound to. A
// control rendered for whichever site is open is owned by that site's
// setting; the previous owner stops pushing values into it.
type Binder struct {
	owners map[string]any
}

// NewBinder creates an empty binder.
func NewBinder() *Binder {
	return &Binder{owners: make(map[string]any)}
}

// Bind makes owner the active owner of c.
func (b *Binder) Bind(c Control, owner any) {
	b.owners[c.ID()] = owner
}

// Unbind releases c if owner still holds it.
func (b *Binder) Unbind(c Control, owner any) {
	if b.owners[c.ID()] == owner {
		delete(b.owners, c.ID())
	}
}

// Owner returns the active owner of c, or nil.
func (b *Binder) Owner(c Control) any {
	return b.owners[c.ID()]
}

// IsOwner reports whether owner currently holds c.
func (b *Binder) IsOwner(c Control, owner any) bool {
	cur, ok := b.owners[c.ID()]
	return ok && cur == owner
}
