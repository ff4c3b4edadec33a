// Package setting implements the console's settings model: a Setting binds
// one form control to one attribute or sub-element of the settings document,
// tracks whether a site value is inherited from the global value, and
// records unsaved edits. Settings compose into Groups that mirror the
// document's element structure.
package setting

import (
	"fmt"
	"strconv"
	"strings"

	"sitemap-console/pkg/access"
	"sitemap-console/pkg/control"
	"sitemap-console/pkg/listener"
	"sitemap-console/pkg/validate"
	"sitemap-console/pkg/xmltree"
)

type inheritState int

const (
	inheritUnknown inheritState = iota
	inheritYes
	inheritNo
)

// Option configures a Setting.
type Option func(*Setting)

// WithAttr stores the value under attr instead of the setting name.
func WithAttr(attr string) Option {
	return func(s *Setting) { s.attr = attr }
}

// WithDefault sets the UI value used when a global setting has no attribute.
func WithDefault(v string) Option {
	return func(s *Setting) { s.dflt = v }
}

// WithValidator checks edited values with v.
func WithValidator(v *validate.Validator) Option {
	return func(s *Setting) { s.validator = v }
}

// WithHint sets the tooltip text. A validator range is appended to it.
func WithHint(hint string) Option {
	return func(s *Setting) { s.hint = hint }
}

// SiteSpecial marks a per-site identity attribute. Its attribute is written
// even while the value matches the global one.
func SiteSpecial() Option {
	return func(s *Setting) { s.siteSpecial = true }
}

// NoXML marks a control-only setting with no document representation.
func NoXML() Option {
	return func(s *Setting) { s.noXML = true }
}

// DurationRadio makes a Radio setting convert minutes to seconds.
func DurationRadio() Option {
	return func(s *Setting) { s.durationRadio = true }
}

// WithListTags names the list element and its item elements.
func WithListTags(listTag, itemTag string) Option {
	return func(s *Setting) {
		s.listSpec.listTag = listTag
		s.listSpec.itemTag = itemTag
	}
}

// WithItemKind selects the item variant of a List setting.
func WithItemKind(kind ItemKind) Option {
	return func(s *Setting) { s.listSpec.kind = kind }
}

// WithFieldValidator checks each field of every list item with v.
func WithFieldValidator(v *validate.Validator) Option {
	return func(s *Setting) { s.listSpec.field = v }
}

type listSpec struct {
	kind    ItemKind
	listTag string
	itemTag string
	field   *validate.Validator
}

// Setting binds one control to one value of the settings document.
type Setting struct {
	name          string
	attr          string
	typ           Type
	ctx           *Context
	ctrl          control.Control
	node          *xmltree.Node
	dflt          string
	hint          string
	noXML         bool
	siteSpecial   bool
	durationRadio bool

	inherit inheritState
	dirty   bool
	valid   bool
	value   string

	validator *validate.Validator
	global    *Setting
	access    *access.Manager
	listeners listener.Manager

	listSpec listSpec
	list     *ListValue
}

// New creates a setting named name of type typ, shown by ctrl. A nil ctrl
// gives the setting a private in-memory holder.
func New(ctx *Context, name string, typ Type, ctrl control.Control, opts ...Option) (*Setting, error) {
	if _, ok := typeNames[typ]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(typ))
	}
	if ctrl == nil {
		ctrl = control.NewHolder(name)
	}
	if err := checkKind(typ, ctrl.Kind()); err != nil {
		return nil, fmt.Errorf("setting %q: %w", name, err)
	}

	s := &Setting{
		name:   name,
		attr:   name,
		typ:    typ,
		ctx:    ctx,
		ctrl:   ctrl,
		valid:  true,
		access: access.New(),
	}
	if typ == QueryFieldList {
		s.listSpec.kind = ItemQueryField
	}
	for _, opt := range opts {
		opt(s)
	}
	if typ == Boolean {
		s.dflt = strconv.FormatBool(parseBool(s.dflt))
	}
	if typ.isList() {
		s.list = newListValue(s, s.listSpec)
	}
	return s, nil
}

// MustNew is New for static schemas; it panics on a schema error.
func MustNew(ctx *Context, name string, typ Type, ctrl control.Control, opts ...Option) *Setting {
	s, err := New(ctx, name, typ, ctrl, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the setting name.
func (s *Setting) Name() string { return s.name }

// Attr returns the XML attribute or list element name.
func (s *Setting) Attr() string {
	if s.list != nil {
		return s.list.listTag
	}
	return s.attr
}

// Type returns the setting type.
func (s *Setting) Type() Type { return s.typ }

// Control returns the bound control.
func (s *Setting) Control() control.Control { return s.ctrl }

// Node returns the element the setting reads and writes.
func (s *Setting) Node() *xmltree.Node { return s.node }

// List returns the list value, or nil for scalar settings.
func (s *Setting) List() *ListValue { return s.list }

// Global returns the global counterpart, or nil.
func (s *Setting) Global() *Setting { return s.global }

// SetGlobal links s to the global setting it inherits from.
func (s *Setting) SetGlobal(g *Setting) { s.global = g }

// SiteSpecial reports whether the setting is a per-site identity attribute.
func (s *Setting) SiteSpecial() bool { return s.siteSpecial }

// Dirty reports whether the setting has unsaved edits.
func (s *Setting) Dirty() bool { return s.dirty }

// ClearDirty forgets unsaved edits without writing them.
func (s *Setting) ClearDirty() { s.dirty = false }

// Inherited reports whether the value currently follows the global setting.
func (s *Setting) Inherited() bool { return s.inherit == inheritYes }

// Customized reports whether a site value deviates from its global
// counterpart. Settings without a counterpart are never customized.
func (s *Setting) Customized() bool {
	return s.global != nil && s.inherit == inheritNo
}

// Valid returns the last validation result.
func (s *Setting) Valid() bool { return s.valid }

// Readonly reports whether any readonly reason is active.
func (s *Setting) Readonly() bool { return s.access.Readonly() }

// ReadonlyReasons returns the active readonly reasons.
func (s *Setting) ReadonlyReasons() []string { return s.access.Reasons() }

// AddListener registers l to be informed when the value changes.
func (s *Setting) AddListener(l listener.Listener) { s.listeners.Register(l) }

// Value returns the UI value held by the setting. For lists it is one
// encoded item per line, deleted items excluded.
func (s *Setting) Value() string {
	if s.list != nil {
		return s.list.encode()
	}
	return s.value
}

// Hint returns the tooltip text including the validator range.
func (s *Setting) Hint() string {
	var parts []string
	if s.hint != "" {
		parts = append(parts, s.hint)
	}
	if s.validator != nil {
		if h := s.validator.Hint(); h != "" {
			parts = append(parts, h)
		}
	}
	return strings.Join(parts, " ")
}

func (s *Setting) owns() bool {
	return s.ctx.Binder.IsOwner(s.ctrl, s)
}

// Load binds the setting to node (nil keeps the current node), takes
// ownership of the control and re-reads the value. Inheritance is resolved
// afresh and the setting is clean afterwards.
func (s *Setting) Load(node *xmltree.Node) error {
	if node != nil {
		s.node = node
	}
	return s.load()
}

func (s *Setting) load() error {
	s.ctx.Binder.Bind(s.ctrl, s)
	s.inherit = inheritUnknown
	v, err := s.resolve()
	if err != nil {
		return err
	}
	s.setUIValue(v)
	s.dirty = false
	s.valid = true
	s.syncControl()
	s.listeners.Inform(s)
	return nil
}

// resolve computes the UI value from the document and the global
// counterpart, settling an unknown inheritance state.
func (s *Setting) resolve() (string, error) {
	if s.global == nil {
		s.inherit = inheritNo
		raw, ok := s.readXML()
		if !ok {
			return s.dflt, nil
		}
		return s.fromStorage(raw)
	}

	switch s.inherit {
	case inheritYes:
		return s.global.Value(), nil
	case inheritNo:
		// A customize toggle breaks inheritance before anything is written.
		raw, ok := s.readXML()
		if !ok {
			return s.global.Value(), nil
		}
		return s.fromStorage(raw)
	default:
		raw, ok := s.readXML()
		if !ok {
			s.inherit = inheritYes
			return s.global.Value(), nil
		}
		s.inherit = inheritNo
		return s.fromStorage(raw)
	}
}

func (s *Setting) readXML() (string, bool) {
	if s.noXML || s.node == nil {
		return "", false
	}
	if s.list != nil {
		return s.list.readXML(s.node)
	}
	return s.node.Attr(s.attr)
}

// setUIValue updates the cached value and, when s owns the control, the
// control itself.
func (s *Setting) setUIValue(v string) {
	if s.list != nil {
		s.list.decode(v)
	} else {
		s.value = v
	}
	if !s.owns() {
		return
	}
	display := v
	if s.list != nil {
		display = strings.Join(s.list.display(), "\n")
	}
	if err := s.ctrl.SetValue(display); err != nil {
		s.ctx.Logger.Warn("control rejected setting value",
			"setting", s.name, "control", s.ctrl.ID(), "error", err)
	}
}

// syncControl pushes every visual property of s into its control.
func (s *Setting) syncControl() {
	if !s.owns() {
		return
	}
	s.ctrl.SetHint(s.Hint())
	s.ctrl.SetValid(s.valid)
	s.reflectInherit()
}

// reflectInherit shows the inheritance state on the control and, when the
// console locks inherited values, as a readonly reason.
func (s *Setting) reflectInherit() {
	if s.global != nil && s.ctx.ReadonlyOnInherit {
		s.access.Set(s.inherit == inheritYes, access.ReasonInherit)
	}
	if !s.owns() {
		return
	}
	if s.global != nil && s.inherit == inheritNo {
		s.ctrl.SetState(control.StateCustom)
	} else {
		s.ctrl.SetState(control.StateDefault)
	}
	s.ctrl.SetReadonly(s.access.Readonly())
}

// SetValue replaces the held value without running the edit flow. The
// setting is not marked dirty.
func (s *Setting) SetValue(v string) {
	s.setUIValue(v)
}

// Input applies a user edit of the control value.
func (s *Setting) Input(v string) error {
	if s.Readonly() {
		s.ctx.rejected(s)
		return fmt.Errorf("%w: %s", ErrReadonly, s.name)
	}
	old := s.Value()
	switch {
	case s.list != nil:
		s.list.decode(v)
	case s.owns():
		if err := s.ctrl.SetValue(v); err != nil {
			s.setUIValue(old)
			s.ctx.rejected(s)
			return fmt.Errorf("%w: %s: %v", ErrInputRejected, s.name, err)
		}
		s.value = s.ctrl.Value()
	default:
		s.value = v
	}
	return s.afterInput(old)
}

// afterInput runs the common edit flow once the new value is in place:
// rules, inheritance break, validation, dirty marking and notification.
func (s *Setting) afterInput(old string) error {
	cur := s.Value()
	if !s.ctx.allow(s, old, cur) {
		s.setUIValue(old)
		s.ctx.rejected(s)
		return fmt.Errorf("%w: %s", ErrInputRejected, s.name)
	}
	if s.inherit == inheritYes && s.global != nil && cur != s.global.Value() {
		s.SetInherit(false)
	}
	if s.list != nil && s.owns() {
		if err := s.ctrl.SetValue(strings.Join(s.list.display(), "\n")); err != nil {
			s.ctx.Logger.Warn("control rejected list value", "setting", s.name, "error", err)
		}
	}

	var err error
	if !s.Validate() {
		s.ctx.invalid(s)
		s.ctx.prompter().Alert(MsgValidationFailed)
		err = fmt.Errorf("%w: %s", ErrValidationFailed, s.name)
	}
	s.dirty = true
	s.listeners.Inform(s)
	s.ctx.edited(s)
	return err
}

// SetInherit switches the setting between following its global counterpart
// and holding its own value. Turning inheritance on copies the global value.
func (s *Setting) SetInherit(inherit bool) {
	if s.global == nil {
		return
	}
	if inherit {
		s.inherit = inheritYes
		s.setUIValue(s.global.Value())
		s.setValid(true)
	} else {
		s.inherit = inheritNo
	}
	s.reflectInherit()
}

// Validate checks the current value. Inherited values are always valid.
func (s *Setting) Validate() bool {
	ok := true
	switch {
	case s.inherit == inheritYes:
	case s.list != nil:
		ok = s.list.validate()
	case s.validator != nil:
		ok = s.validator.Check(s.value)
	}
	s.setValid(ok)
	return ok
}

func (s *Setting) setValid(ok bool) {
	s.valid = ok
	if s.owns() {
		s.ctrl.SetValid(ok)
	}
}

// Save writes a dirty value to the document. An inherited value removes
// its attribute, or leaves it untouched when the setting is site-special.
// A save guard may decline, which reloads the stored value instead.
func (s *Setting) Save() error {
	if !s.dirty {
		return nil
	}
	if !s.ctx.mayWrite(s) {
		s.ctx.Logger.Info("pending edit discarded", "setting", s.name)
		return s.load()
	}
	if err := s.writeXML(); err != nil {
		return err
	}
	if s.list != nil {
		s.list.prune()
	}
	s.dirty = false
	return nil
}

func (s *Setting) writeXML() error {
	if s.noXML {
		return nil
	}
	if s.node == nil {
		return fmt.Errorf("%w: setting %q", ErrUnbound, s.name)
	}
	if s.inherit == inheritYes {
		if s.siteSpecial {
			return nil
		}
		if s.list != nil {
			s.node.RemoveChildren(s.list.listTag)
		} else {
			s.node.RemoveAttr(s.attr)
		}
		return nil
	}
	if s.list != nil {
		s.list.writeXML(s.node)
		return nil
	}
	raw, err := s.toStorage(s.value)
	if err != nil {
		return err
	}
	s.node.SetAttr(s.attr, raw)
	return nil
}

// RevertToDefault makes a customized site value inherit again. The
// attribute is removed on the next save.
func (s *Setting) RevertToDefault() {
	if s.global == nil || s.inherit != inheritNo {
		return
	}
	s.dirty = true
	s.SetInherit(true)
	s.listeners.Inform(s)
}

// Focus moves input focus to the control and reports whether it took it.
func (s *Setting) Focus() bool {
	if err := s.ctrl.Focus(); err != nil {
		s.ctx.Logger.Debug("focus failed", "setting", s.name, "error", err)
		return false
	}
	return true
}

// SetAccess records a readonly reason and applies the result to the
// control when s owns it.
func (s *Setting) SetAccess(readonly bool, reason string) {
	s.access.Set(readonly, reason)
	if s.owns() {
		s.ctrl.SetReadonly(s.access.Readonly())
	}
}
