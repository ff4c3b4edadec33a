package console

import "sitemap-console/pkg/setting"

// ItemState is one list item as the API shows it.
type ItemState struct {
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
	Replace string `json:"replace,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}

// SettingState is one setting as the API shows it.
type SettingState struct {
	Name      string      `json:"name"`
	Control   string      `json:"control"`
	Type      string      `json:"type"`
	Value     string      `json:"value"`
	Items     []ItemState `json:"items,omitempty"`
	Inherited bool        `json:"inherited"`
	Dirty     bool        `json:"dirty"`
	Readonly  bool        `json:"readonly"`
	Reasons   []string    `json:"readonly_reasons,omitempty"`
	Valid     bool        `json:"valid"`
	Hint      string      `json:"hint,omitempty"`
	Classes   []string    `json:"classes,omitempty"`
}

// PageState is the state of one page for the site on screen.
type PageState struct {
	Page       Page              `json:"page"`
	Site       string            `json:"site"`
	Generation string            `json:"generation"`
	Customized bool              `json:"customized"`
	Dirty      bool              `json:"dirty"`
	Focused    string            `json:"focused,omitempty"`
	Settings   []SettingState    `json:"settings"`
	Derived    map[string]string `json:"derived,omitempty"`
	NoURLMatch bool              `json:"no_url_match,omitempty"`
}

// Snapshot describes page p for the site on screen.
func (c *SiteSettings) Snapshot(p Page) (PageState, error) {
	v, err := c.view(p)
	if err != nil {
		return PageState{}, err
	}
	names, settings, err := c.pageSettings(p)
	if err != nil {
		return PageState{}, err
	}
	st := PageState{
		Page:       p,
		Site:       c.current.String(),
		Generation: c.gen.Name,
		Customized: v.isCustomized(),
		Dirty:      v.dirty(),
		Focused:    c.form.Focused(),
		Settings:   make([]SettingState, 0, len(settings)),
	}
	if t := c.toggles[p]; t != nil {
		st.Settings = append(st.Settings, settingState(t.Name(), t))
	}
	for i, s := range settings {
		st.Settings = append(st.Settings, settingState(names[i], s))
	}
	if p == PageSite {
		st.Derived = c.DerivedValues()
		st.NoURLMatch = c.noMatch.Visible()
	}
	return st, nil
}

func settingState(name string, s *setting.Setting) SettingState {
	ctrl := s.Control()
	st := SettingState{
		Name:      name,
		Control:   ctrl.ID(),
		Type:      s.Type().String(),
		Value:     s.Value(),
		Inherited: s.Inherited(),
		Dirty:     s.Dirty(),
		Readonly:  s.Readonly(),
		Reasons:   s.ReadonlyReasons(),
		Valid:     s.Valid(),
		Hint:      s.Hint(),
		Classes:   ctrl.Classes(),
	}
	if l := s.List(); l != nil {
		for _, it := range l.Items() {
			st.Items = append(st.Items, ItemState{
				Value:   it.Value(),
				Enabled: it.Enabled(),
				Replace: it.Replace(),
				Deleted: it.Deleted(),
			})
		}
	}
	return st
}
