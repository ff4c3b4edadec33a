package setting

import (
	"errors"
	"fmt"

	"sitemap-console/pkg/xmltree"
)

// Names of settings every group leaves out of its customized check.
const (
	EnabledSetting   = "enabled"
	CustomizeSetting = "customize"
)

// Group is a set of settings stored on one XML element, with nested groups
// for its sub-elements.
type Group struct {
	tag      string
	ctx      *Context
	node     *xmltree.Node
	parent   *Group
	settings []*Setting
	byName   map[string]*Setting
	groups   []*Group
	byTag    map[string]*Group
	excluded map[string]bool
}

// NewGroup creates an empty group for elements named tag.
func NewGroup(ctx *Context, tag string) *Group {
	return &Group{
		tag:    tag,
		ctx:    ctx,
		byName: make(map[string]*Setting),
		byTag:  make(map[string]*Group),
		excluded: map[string]bool{
			EnabledSetting:   true,
			CustomizeSetting: true,
		},
	}
}

// Tag returns the element name.
func (g *Group) Tag() string { return g.tag }

// Node returns the bound element, or nil while the element does not exist.
func (g *Group) Node() *xmltree.Node { return g.node }

// Add appends s to the group.
func (g *Group) Add(settings ...*Setting) error {
	for _, s := range settings {
		if _, ok := g.byName[s.name]; ok {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateSetting, g.tag, s.name)
		}
		g.byName[s.name] = s
		g.settings = append(g.settings, s)
	}
	return nil
}

// AddGroup nests sub under g.
func (g *Group) AddGroup(sub *Group) error {
	if _, ok := g.byTag[sub.tag]; ok {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateGroup, g.tag, sub.tag)
	}
	sub.parent = g
	g.byTag[sub.tag] = sub
	g.groups = append(g.groups, sub)
	return nil
}

// Exclude leaves the named settings out of the customized check.
func (g *Group) Exclude(names ...string) {
	for _, n := range names {
		g.excluded[n] = true
	}
}

// Setting returns the setting named name, or nil.
func (g *Group) Setting(name string) *Setting { return g.byName[name] }

// Settings returns the group's own settings in order.
func (g *Group) Settings() []*Setting { return append([]*Setting(nil), g.settings...) }

// Group returns the nested group for tag, or nil.
func (g *Group) Group(tag string) *Group { return g.byTag[tag] }

// Groups returns the nested groups in order.
func (g *Group) Groups() []*Group { return append([]*Group(nil), g.groups...) }

// Walk calls fn for every setting of g and its nested groups, depth first.
func (g *Group) Walk(fn func(*Setting)) {
	for _, s := range g.settings {
		fn(s)
	}
	for _, sub := range g.groups {
		sub.Walk(fn)
	}
}

// SetGlobal links every setting to the same-named setting of global, and
// nested groups to global's nested groups. Control-only settings are left
// unlinked.
func (g *Group) SetGlobal(global *Group) {
	for _, s := range g.settings {
		if global == nil || s.noXML {
			s.SetGlobal(nil)
			continue
		}
		s.SetGlobal(global.byName[s.name])
	}
	for _, sub := range g.groups {
		if global == nil {
			sub.SetGlobal(nil)
			continue
		}
		sub.SetGlobal(global.byTag[sub.tag])
	}
}

// Load binds the group to node and loads every setting. A nil node keeps
// the current binding. Nested groups bind to the same-named child element
// and stay unbound while it is missing.
func (g *Group) Load(node *xmltree.Node) error {
	if node != nil {
		g.node = node
	}
	if g.node == nil {
		return fmt.Errorf("%w: %s", ErrUnbound, g.tag)
	}
	return g.load()
}

func (g *Group) load() error {
	var errs []error
	for _, s := range g.settings {
		s.node = g.node
		if err := s.load(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, sub := range g.groups {
		sub.node = g.node.Child(sub.tag)
		if err := sub.load(); err != nil {
			errs = append(errs, err)
		}
	}
	g.syncCustomize()
	return errors.Join(errs...)
}

// Reload re-reads the group from the document. A nested group looks up its
// element under its parent again, since it may have been created by a save.
func (g *Group) Reload() error {
	switch {
	case g.parent != nil:
		g.node = g.parent.node.Child(g.tag)
	case g.node == nil:
		return fmt.Errorf("%w: %s", ErrUnbound, g.tag)
	}
	return g.load()
}

// Save writes every dirty setting. A nested group whose element does not
// exist yet creates it once it has a value of its own to write.
func (g *Group) Save() error {
	if g.node == nil {
		if !g.needsNode() {
			for _, s := range g.settings {
				s.dirty = false
			}
			return g.saveGroups()
		}
		if err := g.materialize(); err != nil {
			return err
		}
	}
	var errs []error
	for _, s := range g.settings {
		if err := s.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := g.saveGroups(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (g *Group) saveGroups() error {
	var errs []error
	for _, sub := range g.groups {
		if err := sub.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *Group) needsNode() bool {
	for _, s := range g.settings {
		if s.dirty && !s.noXML && !s.Inherited() {
			return true
		}
	}
	return false
}

func (g *Group) materialize() error {
	if g.parent == nil {
		return fmt.Errorf("%w: %s", ErrUnbound, g.tag)
	}
	if g.parent.node == nil {
		if err := g.parent.materialize(); err != nil {
			return err
		}
	}
	g.node = g.parent.node.EnsureChild(g.tag)
	for _, s := range g.settings {
		s.node = g.node
	}
	return nil
}

// Dirty reports whether any setting has unsaved edits.
func (g *Group) Dirty() bool {
	for _, s := range g.settings {
		if s.dirty {
			return true
		}
	}
	for _, sub := range g.groups {
		if sub.Dirty() {
			return true
		}
	}
	return false
}

// ClearDirty forgets every unsaved edit.
func (g *Group) ClearDirty() {
	g.Walk(func(s *Setting) { s.dirty = false })
}

// IsCustomized reports whether any setting outside the excluded set
// deviates from its global counterpart.
func (g *Group) IsCustomized() bool {
	for _, s := range g.settings {
		if !g.excluded[s.name] && s.Customized() {
			return true
		}
	}
	for _, sub := range g.groups {
		if sub.IsCustomized() {
			return true
		}
	}
	return false
}

// SetCustomized breaks inheritance of every non-excluded setting, or
// reverts all of them to the global values. Breaking inheritance copies
// nothing into the document until a setting is edited.
func (g *Group) SetCustomized(custom bool) {
	for _, s := range g.settings {
		if g.excluded[s.name] || s.global == nil {
			continue
		}
		if custom {
			if s.Inherited() {
				s.SetInherit(false)
			}
		} else {
			s.RevertToDefault()
		}
	}
	for _, sub := range g.groups {
		sub.SetCustomized(custom)
	}
	g.syncCustomize()
}

// syncCustomize shows the customized state on the group's customize toggle.
func (g *Group) syncCustomize() {
	if t := g.byName[CustomizeSetting]; t != nil {
		t.setUIValue(fmt.Sprint(g.IsCustomized()))
	}
}

// RevertToDefault reverts every setting to its global value.
func (g *Group) RevertToDefault() {
	g.Walk(func(s *Setting) { s.RevertToDefault() })
	g.syncCustomize()
}

// Validate validates every setting and reports whether all passed.
func (g *Group) Validate() bool {
	ok := true
	g.Walk(func(s *Setting) {
		if !s.Validate() {
			ok = false
		}
	})
	return ok
}

// FocusOnFirst focuses the first setting whose control accepts focus.
func (g *Group) FocusOnFirst() bool {
	for _, s := range g.settings {
		if s.Focus() {
			return true
		}
	}
	for _, sub := range g.groups {
		if sub.FocusOnFirst() {
			return true
		}
	}
	return false
}

// SetAccess applies a readonly reason to every setting.
func (g *Group) SetAccess(readonly bool, reason string) {
	g.SetAccessExcept(readonly, reason)
}

// SetAccessExcept applies a readonly reason to every setting except the
// named ones.
func (g *Group) SetAccessExcept(readonly bool, reason string, except ...string) {
	skip := make(map[string]bool, len(except))
	for _, n := range except {
		skip[n] = true
	}
	for _, s := range g.settings {
		if !skip[s.name] {
			s.SetAccess(readonly, reason)
		}
	}
	for _, sub := range g.groups {
		sub.SetAccessExcept(readonly, reason, except...)
	}
}
