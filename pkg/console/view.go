package console

import (
	"errors"
	"strings"

	"sitemap-console/pkg/setting"
)

// view is the part of the settings tree one page shows. The site page
// spans the site's own settings and its crawler groups, and its customized
// check also covers the enabled flag of every folded sitemap group.
type view struct {
	settings []*setting.Setting
	groups   []*setting.Group
	folded   []*setting.Group
}

func (v view) flags() []*setting.Setting {
	var out []*setting.Setting
	for _, g := range v.folded {
		if s := g.Setting(setting.EnabledSetting); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (v view) walk(fn func(*setting.Setting)) {
	for _, s := range v.settings {
		fn(s)
	}
	for _, g := range v.groups {
		g.Walk(fn)
	}
	for _, s := range v.flags() {
		fn(s)
	}
}

func (v view) dirty() bool {
	dirty := false
	v.walk(func(s *setting.Setting) {
		if s.Dirty() {
			dirty = true
		}
	})
	return dirty
}

func (v view) validate() bool {
	ok := true
	for _, s := range v.settings {
		if !s.Validate() {
			ok = false
		}
	}
	for _, g := range v.groups {
		if !g.Validate() {
			ok = false
		}
	}
	return ok
}

func (v view) save() error {
	var errs []error
	for _, s := range v.settings {
		if err := s.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, g := range v.groups {
		if err := g.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, g := range v.folded {
		if err := g.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (v view) reload() error {
	var errs []error
	for _, s := range v.settings {
		if err := s.Load(nil); err != nil {
			errs = append(errs, err)
		}
	}
	for _, g := range v.groups {
		if err := g.Reload(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, g := range v.folded {
		if err := g.Reload(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func excluded(s *setting.Setting) bool {
	return s.Name() == setting.EnabledSetting || s.Name() == setting.CustomizeSetting
}

func (v view) isCustomized() bool {
	for _, s := range v.settings {
		if !excluded(s) && s.Customized() {
			return true
		}
	}
	for _, g := range v.groups {
		if g.IsCustomized() {
			return true
		}
	}
	for _, s := range v.flags() {
		if s.Customized() {
			return true
		}
	}
	return false
}

func (v view) setCustomized(custom bool) {
	apply := func(s *setting.Setting) {
		if s.Global() == nil {
			return
		}
		if custom {
			if s.Inherited() {
				s.SetInherit(false)
			}
			return
		}
		s.RevertToDefault()
	}
	for _, s := range v.settings {
		if !excluded(s) {
			apply(s)
		}
	}
	for _, g := range v.groups {
		g.SetCustomized(custom)
	}
	for _, s := range v.flags() {
		apply(s)
	}
}

func (v view) focusOnFirst() bool {
	for _, s := range v.settings {
		if s.Focus() {
			return true
		}
	}
	for _, g := range v.groups {
		if g.FocusOnFirst() {
			return true
		}
	}
	return false
}

// focusOnInvalid focuses the first setting that failed validation.
func (v view) focusOnInvalid() bool {
	focused := false
	v.walk(func(s *setting.Setting) {
		if !focused && !s.Valid() {
			focused = s.Focus()
		}
	})
	return focused
}

// lookup finds a setting by name. Settings of a nested group on a page
// with several groups are addressed as "Tag/name".
func (v view) lookup(name string) *setting.Setting {
	if tag, rest, ok := strings.Cut(name, "/"); ok {
		for _, g := range v.groups {
			if g.Tag() == tag {
				return g.Setting(rest)
			}
		}
		return nil
	}
	for _, s := range v.settings {
		if s.Name() == name {
			return s
		}
	}
	for _, g := range v.groups {
		if s := g.Setting(name); s != nil {
			return s
		}
	}
	return nil
}
