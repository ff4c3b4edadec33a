package console

import (
	"fmt"
	"strings"

	"sitemap-console/pkg/control"
	"sitemap-console/pkg/setting"
	"sitemap-console/pkg/validate"
)

// Page identifies one console page.
type Page string

const (
	PageApp        Page = "app"
	PageSites      Page = "sites"
	PageSite       Page = "site"
	PageWeb        Page = "web"
	PageNews       Page = "news"
	PageMobile     Page = "mobile"
	PageCodeSearch Page = "codesearch"
	PageVideo      Page = "video"
	PageBlogSearch Page = "blogsearch"
)

// Pages lists every page in navigation order.
var Pages = []Page{
	PageApp, PageSites, PageSite,
	PageWeb, PageNews, PageMobile, PageCodeSearch, PageVideo, PageBlogSearch,
}

// Element names of the settings document.
const (
	tagApp  = "AppSettings"
	tagSite = "SiteSettings"
	tagNode = "Site"
)

// field declares one setting of the schema.
type field struct {
	name     string
	typ      setting.Type
	kind     control.Kind
	pattern  string
	rng      string
	optional bool
	dflt     string
	hint     string
	radio    []control.RadioOption
	opts     []setting.Option
}

var durationChoices = []control.RadioOption{
	{Value: "60"},
	{Value: "1440"},
	{Value: "10080"},
	{Custom: true},
}

var appFields = []field{
	{name: "backup_duration_in_seconds", typ: setting.Duration, kind: control.KindText,
		pattern: validate.PatternNumber, rng: "[1,MAX)", dflt: "5", hint: "Minutes between backups of the crawl state."},
	{name: "setting_port", typ: setting.String, kind: control.KindText,
		pattern: validate.PatternNumber, rng: "[1,65535]", dflt: "8181", hint: "Port the console listens on."},
	{name: "remote_access", typ: setting.Boolean, kind: control.KindCheckbox},
	{name: "login_username", typ: setting.String, kind: control.KindText, pattern: `^\S+$`, dflt: "admin"},
	{name: "login_password", typ: setting.String, kind: control.KindPassword,
		pattern: validate.PatternPassword, optional: true},
	{name: "apache_conf", typ: setting.String, kind: control.KindText,
		pattern: validate.PatternPath, optional: true, hint: "Web server configuration file."},
}

var siteFields = []field{
	{name: "max_url_in_memory", typ: setting.String, kind: control.KindText,
		pattern: validate.PatternNumber, rng: "[1,MAX)", dflt: "10000", hint: "URLs kept in memory."},
	{name: "max_url_in_disk", typ: setting.String, kind: control.KindText,
		pattern: validate.PatternNumber, rng: "[1,MAX)", dflt: "10000000", hint: "URLs kept on disk."},
	{name: "max_url_life", typ: setting.Duration, kind: control.KindText,
		pattern: validate.PatternNumber, rng: "[1,MAX)", dflt: "43200", hint: "Minutes a URL is kept without being seen."},
	{name: "max_disk_space", typ: setting.SpaceSize, kind: control.KindText,
		pattern: validate.PatternNumber, rng: "[1,MAX)", dflt: "1048576", hint: "Disk space in KB."},
	{name: "add_generator_info", typ: setting.Boolean, kind: control.KindCheckbox, dflt: "true"},
	{name: "IncludedUrls", typ: setting.List, kind: control.KindList, pattern: `^/`,
		opts: []setting.Option{setting.WithListTags("IncludedUrls", "Url")}},
	{name: "ExcludedUrls", typ: setting.List, kind: control.KindList, pattern: `^/`,
		opts: []setting.Option{setting.WithListTags("ExcludedUrls", "Url")}},
	{name: "UrlReplacements", typ: setting.List, kind: control.KindList, pattern: `^/`,
		opts: []setting.Option{setting.WithItemKind(setting.ItemReplacement)}},
	{name: "IncludedQueryFields", typ: setting.QueryFieldList, kind: control.KindList, pattern: `^[A-Za-z0-9_.\-]+$`},
}

var siteSpecialFields = []field{
	{name: "name", typ: setting.String, kind: control.KindText, pattern: `\S`,
		opts: []setting.Option{setting.SiteSpecial()}},
	{name: "host", typ: setting.String, kind: control.KindText, pattern: validate.PatternHost,
		opts: []setting.Option{setting.SiteSpecial()}},
	{name: "log_path", typ: setting.String, kind: control.KindText, pattern: validate.PatternPath, optional: true,
		opts: []setting.Option{setting.SiteSpecial()}},
}

var enabledField = field{name: setting.EnabledSetting, typ: setting.Boolean, kind: control.KindCheckbox}

var crawlerGroups = []struct {
	tag    string
	fields []field
}{
	{tag: "WebServerFilterSettings", fields: []field{enabledField}},
	{tag: "FileScannerSettings", fields: []field{enabledField,
		{name: "update_duration_in_seconds", typ: setting.Duration, kind: control.KindText,
			pattern: validate.PatternNumber, rng: "[10,MAX)", dflt: "1440"},
	}},
	{tag: "LogParserSettings", fields: []field{enabledField,
		{name: "update_duration_in_seconds", typ: setting.Duration, kind: control.KindText,
			pattern: validate.PatternNumber, rng: "[10,MAX)", dflt: "60"},
	}},
}

type sitemapPage struct {
	page     Page
	tag      string
	fileName string
	notify   bool
	ping     bool
}

var sitemapPages = []sitemapPage{
	{page: PageWeb, tag: "WebSitemapSettings", fileName: "sitemap.xml", notify: true},
	{page: PageNews, tag: "NewsSitemapSettings", fileName: "news_sitemap.xml"},
	{page: PageMobile, tag: "MobileSitemapSettings", fileName: "mobile_sitemap.xml"},
	{page: PageCodeSearch, tag: "CodeSearchSitemapSettings", fileName: "codesearch_sitemap.xml"},
	{page: PageVideo, tag: "VideoSitemapSettings", fileName: "video_sitemap.xml"},
	{page: PageBlogSearch, tag: "BlogSearchPingSettings", ping: true},
}

func sitemapFields(sp sitemapPage) []field {
	fields := []field{
		enabledField,
		{name: "update_duration_in_seconds", typ: setting.Radio, kind: control.KindRadio,
			pattern: validate.PatternNumber, rng: "[10,MAX)", dflt: "1440", radio: durationChoices,
			opts: []setting.Option{setting.DurationRadio()}},
		{name: "update_start_time", typ: setting.Date, kind: control.KindDate,
			pattern: `^\d{4}-\d{2}-\d{2}( \d{2}:\d{2})?$`, optional: true},
	}
	if sp.ping {
		return fields
	}
	fields = append(fields,
		field{name: "file_name", typ: setting.String, kind: control.KindText,
			pattern: `^[\w.\-]+$`, dflt: sp.fileName},
		field{name: "included_in_robots_txt", typ: setting.Boolean, kind: control.KindCheckbox},
		field{name: "compress", typ: setting.Boolean, kind: control.KindCheckbox, dflt: "true"},
		field{name: "max_file_url_number", typ: setting.String, kind: control.KindText,
			pattern: validate.PatternNumber, rng: "[1,50000]", dflt: "50000"},
		field{name: "max_file_size", typ: setting.SpaceSize, kind: control.KindText,
			pattern: validate.PatternNumber, rng: "[1,MAX)", dflt: "10240", hint: "Size in KB."},
	)
	if sp.notify {
		fields = append(fields, field{name: "NotifyUrls", typ: setting.List, kind: control.KindList,
			pattern: validate.PatternURL, opts: []setting.Option{setting.WithListTags("NotifyUrls", "Url")}})
	}
	return fields
}

// builder creates settings and their shared controls.
type builder struct {
	ctx      *setting.Context
	form     *control.Form
	patterns validate.Patterns
}

func controlID(parts ...string) string {
	return strings.Join(parts, ".")
}

// control returns the form control with id, creating it on first use so
// the global and site groups share it.
func (b *builder) control(id string, f field) (control.Control, error) {
	if c, err := b.form.Lookup(id); err == nil {
		return c, nil
	}
	var c control.Control
	switch f.kind {
	case control.KindCheckbox:
		c = control.NewCheckbox(id)
	case control.KindText:
		c = control.NewText(id)
	case control.KindPassword:
		c = control.NewPassword(id)
	case control.KindDate:
		c = control.NewDate(id)
	case control.KindList:
		c = control.NewList(id)
	case control.KindRadio:
		r, err := control.NewRadio(id, f.radio...)
		if err != nil {
			return nil, err
		}
		c = r
	default:
		c = control.NewHolder(id)
	}
	if err := b.form.Add(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (b *builder) validator(f field) (*validate.Validator, error) {
	opts := []validate.Option{validate.WithRange(f.rng), validate.WithPatterns(b.patterns)}
	if f.optional {
		opts = append(opts, validate.WithRequired(false))
	}
	return validate.New(f.pattern, opts...)
}

func (b *builder) setting(id string, f field) (*setting.Setting, error) {
	ctrl, err := b.control(id, f)
	if err != nil {
		return nil, err
	}
	opts := append([]setting.Option{}, f.opts...)
	if f.dflt != "" {
		opts = append(opts, setting.WithDefault(f.dflt))
	}
	if f.hint != "" {
		opts = append(opts, setting.WithHint(f.hint))
	}
	if f.pattern != "" {
		v, err := b.validator(f)
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", f.name, err)
		}
		if f.typ == setting.List || f.typ == setting.QueryFieldList {
			opts = append(opts, setting.WithFieldValidator(v))
		} else {
			opts = append(opts, setting.WithValidator(v))
		}
	}
	return setting.New(b.ctx, f.name, f.typ, ctrl, opts...)
}

// group builds a group for tag whose controls are named prefix.<field>.
func (b *builder) group(tag, prefix string, fields []field) (*setting.Group, error) {
	g := setting.NewGroup(b.ctx, tag)
	for _, f := range fields {
		s, err := b.setting(controlID(prefix, f.name), f)
		if err != nil {
			return nil, err
		}
		if err := g.Add(s); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// siteGroup builds the global group (tag SiteSettings) or a site group
// (tag Site). Only site groups carry the site-special attributes.
func (b *builder) siteGroup(tag string) (*setting.Group, error) {
	fields := siteFields
	if tag == tagNode {
		fields = append(append([]field{}, siteSpecialFields...), siteFields...)
	}
	g, err := b.group(tag, string(PageSite), fields)
	if err != nil {
		return nil, err
	}
	for _, cg := range crawlerGroups {
		sub, err := b.group(cg.tag, controlID(string(PageSite), cg.tag), cg.fields)
		if err != nil {
			return nil, err
		}
		if err := g.AddGroup(sub); err != nil {
			return nil, err
		}
	}
	for _, sp := range sitemapPages {
		sub, err := b.group(sp.tag, string(sp.page), sitemapFields(sp))
		if err != nil {
			return nil, err
		}
		if err := g.AddGroup(sub); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// toggle builds the control-only customize checkbox of a page.
func (b *builder) toggle(p Page) (*setting.Setting, error) {
	f := field{name: setting.CustomizeSetting, typ: setting.Boolean, kind: control.KindCheckbox,
		opts: []setting.Option{setting.NoXML()}}
	return b.setting(controlID(string(p), f.name), f)
}
