// Package console is the root of the settings tree. It builds the groups
// for one console generation, switches between the global defaults and the
// configured sites, and dispatches page operations to the page on screen.
package console

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"sitemap-console/pkg/control"
	"sitemap-console/pkg/setting"
	"sitemap-console/pkg/validate"
	"sitemap-console/pkg/xmltree"
)

// SiteID indexes the sites of the loaded document. GlobalSite selects the
// global defaults.
type SiteID int

// GlobalSite is the ID of the global defaults.
const GlobalSite SiteID = -1

// String returns "global" or the site index.
func (id SiteID) String() string {
	if id == GlobalSite {
		return "global"
	}
	return strconv.Itoa(int(id))
}

// ParseSiteID parses "global" or a site index.
func ParseSiteID(s string) (SiteID, error) {
	if s == "global" || s == "-1" {
		return GlobalSite, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSite, s)
	}
	return SiteID(n), nil
}

// Prompts shown by the console itself.
const (
	MsgDiscardChanges = "This page has unsaved changes. Discard them?"
	MsgRevertConfirm  = "Reset every setting on this page to the global defaults?"
	MsgNoURLMatch     = "No URL matches the current filter."
)

// Metrics receives console counters. telemetry.Metrics implements it.
type Metrics interface {
	setting.MetricsRecorder
	SiteSwitched()
	PageSaved(page string)
}

// Options configures a console.
type Options struct {
	Generation      Generation
	Logger          *slog.Logger
	Metrics         Metrics
	SecureTransport func() bool
	// OnChange is called whenever a setting on the current page changes.
	OnChange func()
}

// SiteSettings is the settings tree of one console.
type SiteSettings struct {
	gen      Generation
	ctx      *setting.Context
	form     *control.Form
	build    *builder
	logger   *slog.Logger
	metrics  Metrics
	onChange func()

	doc        *xmltree.Document
	app        *setting.Group
	global     *setting.Group
	site       *setting.Group
	management []*setting.Setting
	siteNodes  []*xmltree.Node
	toggles    map[Page]*setting.Setting

	current SiteID
	page    Page

	switcher  *control.Select
	noMatch   *control.Banner
	memLimit  *setting.Derived
	diskLimit *setting.Derived
}

// New builds the settings tree. SetData must be called before the tree
// holds any values.
func New(opts Options) (*SiteSettings, error) {
	gen := opts.Generation
	if gen.Name == "" {
		gen = Trunck
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx := setting.NewContext(logger)
	ctx.ReadonlyOnInherit = gen.ReadonlyOnInherit
	ctx.SecureTransport = opts.SecureTransport
	if opts.Metrics != nil {
		ctx.Metrics = opts.Metrics
	}

	form := control.NewForm(gen.Skin)
	c := &SiteSettings{
		gen:      gen,
		ctx:      ctx,
		form:     form,
		build:    &builder{ctx: ctx, form: form, patterns: validate.DefaultPatterns(gen.PasswordMinLength)},
		logger:   logger,
		metrics:  opts.Metrics,
		onChange: opts.OnChange,
		toggles:  make(map[Page]*setting.Setting),
		current:  GlobalSite,
		page:     PageSite,
	}
	if err := c.buildTree(); err != nil {
		return nil, fmt.Errorf("build %s console: %w", gen.Name, err)
	}
	ctx.OnChange = func(*setting.Setting) { c.changed() }
	return c, nil
}

func (c *SiteSettings) buildTree() error {
	var err error
	if c.app, err = c.build.group(tagApp, string(PageApp), appFields); err != nil {
		return err
	}
	if c.global, err = c.build.siteGroup(tagSite); err != nil {
		return err
	}
	if c.site, err = c.build.siteGroup(tagNode); err != nil {
		return err
	}
	c.site.SetGlobal(c.global)

	for _, p := range Pages {
		if p == PageApp || p == PageSites {
			continue
		}
		t, err := c.build.toggle(p)
		if err != nil {
			return err
		}
		if err := t.Load(nil); err != nil {
			return err
		}
		c.toggles[p] = t
		c.ctx.AddRule(t.Control().ID(), c.customizeRule(p))
	}

	c.switcher = control.NewSelect("site_switcher")
	c.noMatch = control.NewBanner(controlID(string(PageSite), "no_url_match"), MsgNoURLMatch)
	for _, ctrl := range []control.Control{c.switcher, c.noMatch} {
		if err := c.form.Add(ctrl); err != nil {
			return err
		}
	}

	c.ctx.AddRule(controlID(string(PageApp), "remote_access"), setting.RequireSecureTransport(setting.MsgRemoteAccessBlocked))
	for _, sp := range sitemapPages {
		if !sp.ping {
			c.ctx.AddRule(controlID(string(sp.page), "included_in_robots_txt"), setting.ConfirmOnEnable(setting.MsgRobotsConfirm))
		}
	}
	c.ctx.AddSaveGuard("IncludedQueryFields", setting.ConfirmWhenEmpty(setting.MsgEmptyQueryFields))

	for _, root := range []*setting.Group{c.global, c.site} {
		root.Setting("IncludedUrls").AddListener(setting.BannerWhenEmpty(c.noMatch))
		for _, sub := range root.Groups() {
			if enabled := sub.Setting(setting.EnabledSetting); enabled != nil {
				enabled.AddListener(setting.NewServiceLink(sub))
			}
		}
	}
	return c.buildDerived()
}

// customizeRule turns the page's customize checkbox into a bulk inheritance
// switch. Unchecking it asks before reverting the page.
func (c *SiteSettings) customizeRule(p Page) setting.InputRule {
	return func(_ *setting.Setting, _, new string) bool {
		custom, _ := strconv.ParseBool(new)
		return c.setCustomized(p, custom) == nil
	}
}

// Generation returns the console generation.
func (c *SiteSettings) Generation() Generation { return c.gen }

// Form returns the controls of the console.
func (c *SiteSettings) Form() *control.Form { return c.form }

// CurrentSite returns the site on screen.
func (c *SiteSettings) CurrentSite() SiteID { return c.current }

// CurrentPage returns the page on screen.
func (c *SiteSettings) CurrentPage() Page { return c.page }

// Loaded reports whether SetData has been called.
func (c *SiteSettings) Loaded() bool { return c.doc != nil }

// Banner returns the "no URL matches" banner of the site page.
func (c *SiteSettings) Banner() *control.Banner { return c.noMatch }

func (c *SiteSettings) currentGroup() *setting.Group {
	if c.current == GlobalSite {
		return c.global
	}
	return c.site
}

func (c *SiteSettings) setPrompter(p control.Prompter) control.Prompter {
	prev := c.ctx.Prompter
	c.ctx.Prompter = p
	return prev
}

func (c *SiteSettings) prompter() control.Prompter {
	if c.ctx.Prompter == nil {
		return control.AcceptAll{}
	}
	return c.ctx.Prompter
}

// SetData loads doc into the tree. The application and global groups are
// loaded, site elements are recorded, and the site on screen, if any, is
// reloaded so a refreshed document shows at once.
func (c *SiteSettings) SetData(doc *xmltree.Document) error {
	root := doc.Root()
	if root == nil {
		return xmltree.ErrNoRoot
	}
	c.doc = doc

	if err := c.app.Load(root.EnsureChild(tagApp)); err != nil {
		return fmt.Errorf("load %s: %w", tagApp, err)
	}
	globalNode := root.EnsureChild(tagSite)
	if err := c.global.Load(globalNode); err != nil {
		return fmt.Errorf("load %s: %w", tagSite, err)
	}
	c.siteNodes = globalNode.Children(tagNode)
	if err := c.loadManagement(globalNode); err != nil {
		return fmt.Errorf("load site management: %w", err)
	}

	if c.current != GlobalSite {
		if int(c.current) >= len(c.siteNodes) {
			c.logger.Warn("site on screen no longer exists, showing global defaults", "site", c.current)
			c.current = GlobalSite
		} else if err := c.site.Load(c.siteNodes[c.current]); err != nil {
			return fmt.Errorf("reload site %s: %w", c.current, err)
		}
	}
	c.updateSwitcher()
	c.syncToggles()
	return nil
}

// ReplaceData is SetData behind the discard-changes confirmation for the
// page on screen.
func (c *SiteSettings) ReplaceData(doc *xmltree.Document) error {
	if c.doc != nil {
		if err := c.leavePage(); err != nil {
			return err
		}
	}
	return c.SetData(doc)
}

// loadManagement binds one enabled switch to the global element and one to
// each site element.
func (c *SiteSettings) loadManagement(globalNode *xmltree.Node) error {
	nodes := append([]*xmltree.Node{globalNode}, c.siteNodes...)
	c.management = make([]*setting.Setting, 0, len(nodes))
	f := enabledField
	f.dflt = "true"
	for i, n := range nodes {
		id := SiteID(i - 1)
		s, err := c.build.setting(controlID(string(PageSites), id.String(), setting.EnabledSetting), f)
		if err != nil {
			return err
		}
		if err := s.Load(n); err != nil {
			return err
		}
		c.management = append(c.management, s)
	}
	return nil
}

func (c *SiteSettings) updateSwitcher() {
	opts := make([]string, 0, len(c.siteNodes)+1)
	opts = append(opts, GlobalSite.String())
	for i := range c.siteNodes {
		opts = append(opts, SiteID(i).String())
	}
	c.switcher.SetOptions(opts)
	if err := c.switcher.SetValue(c.current.String()); err != nil {
		c.logger.Warn("site switcher out of sync", "site", c.current, "error", err)
	}
}

// LoadSite puts site id on screen. The global defaults are reloaded in
// place each time since they share controls with every site.
func (c *SiteSettings) LoadSite(id SiteID) error {
	if c.doc == nil {
		return ErrNoDocument
	}
	if id == c.current {
		return nil
	}
	if id != GlobalSite && (id < 0 || int(id) >= len(c.siteNodes)) {
		return fmt.Errorf("%w: %s", ErrUnknownSite, id)
	}

	c.current = id
	var err error
	if id == GlobalSite {
		err = c.global.Load(nil)
	} else {
		err = c.site.Load(c.siteNodes[id])
	}
	if err != nil {
		return fmt.Errorf("load site %s: %w", id, err)
	}
	if err := c.switcher.SetValue(id.String()); err != nil {
		c.logger.Warn("site switcher out of sync", "site", id, "error", err)
	}
	c.syncToggles()
	if c.metrics != nil {
		c.metrics.SiteSwitched()
	}
	c.logger.Debug("site loaded", "site", id)
	return nil
}

// SelectSite is LoadSite behind the discard-changes confirmation.
func (c *SiteSettings) SelectSite(id SiteID) error {
	if id == c.current {
		return nil
	}
	if err := c.leavePage(); err != nil {
		return err
	}
	return c.LoadSite(id)
}

// ShowPage navigates to p. Unsaved changes on the page being left must be
// discarded first; declining keeps the current page.
func (c *SiteSettings) ShowPage(p Page) error {
	v, err := c.view(p)
	if err != nil {
		return err
	}
	if p == c.page {
		return nil
	}
	if err := c.leavePage(); err != nil {
		return err
	}
	c.page = p
	c.syncToggle(p)
	v.focusOnFirst()
	return nil
}

func (c *SiteSettings) leavePage() error {
	v, err := c.view(c.page)
	if err != nil {
		return err
	}
	if !v.dirty() {
		return nil
	}
	if !c.prompter().Confirm(MsgDiscardChanges) {
		return fmt.Errorf("%w: unsaved changes on %s", ErrDeclined, c.page)
	}
	return v.reload()
}

// view returns what page p shows for the site on screen.
func (c *SiteSettings) view(p Page) (view, error) {
	cur := c.currentGroup()
	switch p {
	case PageApp:
		return view{groups: []*setting.Group{c.app}}, nil
	case PageSites:
		return view{settings: c.management}, nil
	case PageSite:
		v := view{settings: cur.Settings()}
		for _, cg := range crawlerGroups {
			v.groups = append(v.groups, cur.Group(cg.tag))
		}
		for _, sp := range sitemapPages {
			v.folded = append(v.folded, cur.Group(sp.tag))
		}
		return v, nil
	}
	for _, sp := range sitemapPages {
		if sp.page == p {
			return view{groups: []*setting.Group{cur.Group(sp.tag)}}, nil
		}
	}
	return view{}, fmt.Errorf("%w: %q", ErrUnknownPage, p)
}

// Save validates and writes the current page. Other pages are assumed to
// have been saved or discarded when they were left.
func (c *SiteSettings) Save() error {
	if c.doc == nil {
		return ErrNoDocument
	}
	v, err := c.view(c.page)
	if err != nil {
		return err
	}
	if !v.validate() {
		c.prompter().Alert(setting.MsgValidationFailed)
		v.focusOnInvalid()
		return fmt.Errorf("%w: page %s", setting.ErrValidationFailed, c.page)
	}
	if err := v.save(); err != nil {
		return fmt.Errorf("save page %s: %w", c.page, err)
	}
	c.syncToggle(c.page)
	if c.metrics != nil {
		c.metrics.PageSaved(string(c.page))
	}
	c.logger.Info("page saved", "page", c.page, "site", c.current)
	return nil
}

// ReloadCurPage discards unsaved changes on the current page.
func (c *SiteSettings) ReloadCurPage() error {
	if c.doc == nil {
		return ErrNoDocument
	}
	v, err := c.view(c.page)
	if err != nil {
		return err
	}
	if err := v.reload(); err != nil {
		return err
	}
	c.syncToggle(c.page)
	return nil
}

// RevertToDefault resets every setting of page p, which must be on screen,
// to the global values after confirmation.
func (c *SiteSettings) RevertToDefault(p Page) error {
	return c.SetCustomized(p, false)
}

// IsCustomized reports whether page p deviates from the global defaults.
func (c *SiteSettings) IsCustomized(p Page) bool {
	v, err := c.view(p)
	if err != nil {
		return false
	}
	return v.isCustomized()
}

// SetCustomized breaks or restores inheritance for every setting of page
// p, which must be on screen. Restoring asks for confirmation.
func (c *SiteSettings) SetCustomized(p Page, custom bool) error {
	if _, err := c.view(p); err != nil {
		return err
	}
	if err := c.onScreen(p); err != nil {
		return err
	}
	if err := c.setCustomized(p, custom); err != nil {
		return err
	}
	c.changed()
	return nil
}

func (c *SiteSettings) setCustomized(p Page, custom bool) error {
	v, err := c.view(p)
	if err != nil {
		return err
	}
	if !custom && v.isCustomized() && !c.prompter().Confirm(MsgRevertConfirm) {
		return fmt.Errorf("%w: revert %s", ErrDeclined, p)
	}
	v.setCustomized(custom)
	c.syncToggle(p)
	return nil
}

// GetXMLString serializes the whole document.
func (c *SiteSettings) GetXMLString() (string, error) {
	if c.doc == nil {
		return "", ErrNoDocument
	}
	return c.doc.String()
}

// editable returns the setting called name on page p, which must be the
// page on screen. Unsaved changes are only tracked for that page.
func (c *SiteSettings) editable(p Page, name string, list bool) (*setting.Setting, error) {
	var s *setting.Setting
	var err error
	if list {
		s, err = c.List(p, name)
	} else {
		s, err = c.Setting(p, name)
	}
	if err != nil {
		return nil, err
	}
	if err := c.onScreen(p); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *SiteSettings) onScreen(p Page) error {
	if p != c.page {
		return fmt.Errorf("%w: %s", ErrNotOnScreen, p)
	}
	return nil
}

// Setting returns the setting called name on page p.
func (c *SiteSettings) Setting(p Page, name string) (*setting.Setting, error) {
	if name == setting.CustomizeSetting {
		if t := c.toggles[p]; t != nil {
			return t, nil
		}
	}
	v, err := c.view(p)
	if err != nil {
		return nil, err
	}
	s := v.lookup(name)
	if s == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownSetting, p, name)
	}
	return s, nil
}

// List returns the list setting called name on page p.
func (c *SiteSettings) List(p Page, name string) (*setting.Setting, error) {
	s, err := c.Setting(p, name)
	if err != nil {
		return nil, err
	}
	if s.List() == nil {
		return nil, fmt.Errorf("%w: %s/%s", setting.ErrNotList, p, name)
	}
	return s, nil
}

// Input applies an operator edit to a setting on page p.
func (c *SiteSettings) Input(p Page, name, value string) error {
	s, err := c.editable(p, name, false)
	if err != nil {
		return err
	}
	return s.Input(value)
}

// AddItem appends value to a list setting on page p.
func (c *SiteSettings) AddItem(p Page, name, value string) error {
	s, err := c.editable(p, name, true)
	if err != nil {
		return err
	}
	_, err = s.AddItem(value)
	return err
}

// DeleteItem deletes the item at index of a list setting on page p.
func (c *SiteSettings) DeleteItem(p Page, name string, index int) error {
	s, err := c.editable(p, name, true)
	if err != nil {
		return err
	}
	return s.DeleteItem(index)
}

// RevertSetting makes one setting on page p inherit again.
func (c *SiteSettings) RevertSetting(p Page, name string) error {
	s, err := c.editable(p, name, false)
	if err != nil {
		return err
	}
	s.RevertToDefault()
	c.changed()
	return nil
}

// SetSiteEnabled switches a site, or the global default, on or off. The
// sites page must be on screen.
func (c *SiteSettings) SetSiteEnabled(id SiteID, enabled bool) error {
	if err := c.onScreen(PageSites); err != nil {
		return err
	}
	i := int(id) + 1
	if i < 0 || i >= len(c.management) {
		return fmt.Errorf("%w: %s", ErrUnknownSite, id)
	}
	return c.management[i].Input(strconv.FormatBool(enabled))
}

// SiteInfo summarizes one site of the document.
type SiteInfo struct {
	ID      SiteID `json:"id"`
	Name    string `json:"name"`
	Host    string `json:"host"`
	Enabled bool   `json:"enabled"`
}

// Sites lists the sites of the loaded document.
func (c *SiteSettings) Sites() []SiteInfo {
	out := make([]SiteInfo, 0, len(c.siteNodes))
	for i, n := range c.siteNodes {
		info := SiteInfo{
			ID:   SiteID(i),
			Name: n.AttrOr("name", ""),
			Host: n.AttrOr("host", ""),
		}
		if i+1 < len(c.management) {
			info.Enabled = c.management[i+1].Value() == "true"
		}
		out = append(out, info)
	}
	return out
}

func (c *SiteSettings) changed() {
	c.syncToggle(c.page)
	if c.onChange != nil {
		c.onChange()
	}
}

func (c *SiteSettings) syncToggle(p Page) {
	t := c.toggles[p]
	if t == nil {
		return
	}
	v, err := c.view(p)
	if err != nil {
		return
	}
	t.SetValue(strconv.FormatBool(v.isCustomized()))
}

func (c *SiteSettings) syncToggles() {
	for p := range c.toggles {
		c.syncToggle(p)
	}
}

// pageSettings returns the settings of page p with the names Setting
// accepts for them.
func (c *SiteSettings) pageSettings(p Page) ([]string, []*setting.Setting, error) {
	v, err := c.view(p)
	if err != nil {
		return nil, nil, err
	}
	var names []string
	var out []*setting.Setting
	for _, s := range v.settings {
		names = append(names, s.Name())
		out = append(out, s)
	}
	qualify := p == PageSite
	for _, g := range v.groups {
		for _, s := range g.Settings() {
			name := s.Name()
			if qualify {
				name = strings.Join([]string{g.Tag(), name}, "/")
			}
			names = append(names, name)
			out = append(out, s)
		}
	}
	return names, out, nil
}
