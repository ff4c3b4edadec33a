package setting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitemap-console/pkg/access"
	"sitemap-console/pkg/control"
	"sitemap-console/pkg/xmltree"
)

type groupFixture struct {
	ctx    *Context
	doc    *xmltree.Document
	global *Group
	site   *Group
	form   *control.Form
}

// buildGroups creates matching global and site groups with a nested
// web sitemap group sharing one form.
func buildGroups(t *testing.T, ctx *Context) *groupFixture {
	t.Helper()
	f := &groupFixture{ctx: ctx, doc: parseTestDoc(t), form: control.NewForm(control.Skin{})}
	ctrl := func(c control.Control) control.Control {
		if existing, err := f.form.Lookup(c.ID()); err == nil {
			return existing
		}
		require.NoError(t, f.form.Add(c))
		return c
	}

	build := func(tag string) *Group {
		g := NewGroup(ctx, tag)
		require.NoError(t, g.Add(
			MustNew(ctx, "max_url_in_memory", String, ctrl(control.NewText("max_url_in_memory"))),
			MustNew(ctx, "add_generator_info", Boolean, ctrl(control.NewCheckbox("add_generator_info"))),
			MustNew(ctx, CustomizeSetting, Boolean, ctrl(control.NewCheckbox("site_customize")), NoXML()),
		))
		web := NewGroup(ctx, "WebSitemapSettings")
		require.NoError(t, web.Add(
			MustNew(ctx, EnabledSetting, Boolean, ctrl(control.NewCheckbox("web_enabled"))),
			MustNew(ctx, "compress", Boolean, ctrl(control.NewCheckbox("web_compress"))),
			MustNew(ctx, "file_name", String, ctrl(control.NewText("web_file_name")), WithDefault("sitemap.xml")),
		))
		require.NoError(t, g.AddGroup(web))
		return g
	}

	f.global = build("SiteSettings")
	f.site = build("Site")
	f.site.SetGlobal(f.global)
	require.NoError(t, f.global.Load(globalNode(f.doc)))
	require.NoError(t, f.site.Load(siteNode(f.doc)))
	return f
}

func TestGroupInheritsEverything(t *testing.T) {
	f := buildGroups(t, NewContext(nil))

	assert.False(t, f.site.IsCustomized())
	assert.False(t, f.site.Dirty())
	assert.Equal(t, "true", f.site.Group("WebSitemapSettings").Setting("compress").Value())
	assert.Equal(t, "sitemap.xml", f.site.Group("WebSitemapSettings").Setting("file_name").Value())
	assert.Equal(t, "false", f.site.Setting(CustomizeSetting).Value())
}

func TestGroupSetCustomizedIsCopyOnWrite(t *testing.T) {
	f := buildGroups(t, NewContext(nil))
	before, err := f.doc.String()
	require.NoError(t, err)

	f.site.SetCustomized(true)
	assert.True(t, f.site.IsCustomized())
	assert.False(t, f.site.Dirty())
	assert.Equal(t, "true", f.site.Setting(CustomizeSetting).Value())

	require.NoError(t, f.site.Save())
	after, err := f.doc.String()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Nil(t, siteNode(f.doc).Child("WebSitemapSettings"))
}

func TestGroupSaveCreatesNestedElement(t *testing.T) {
	f := buildGroups(t, NewContext(nil))
	compress := f.site.Group("WebSitemapSettings").Setting("compress")

	require.NoError(t, compress.Input("false"))
	assert.True(t, f.site.IsCustomized())
	require.NoError(t, f.site.Save())

	web := siteNode(f.doc).Child("WebSitemapSettings")
	require.NotNil(t, web)
	assert.Equal(t, "false", web.AttrOr("compress", ""))
	assert.False(t, web.HasAttr("enabled"))
	assert.False(t, f.site.Dirty())
}

func TestGroupRevertAll(t *testing.T) {
	f := buildGroups(t, NewContext(nil))
	siteNode(f.doc).SetAttr("max_url_in_memory", "9")
	require.NoError(t, f.site.Load(nil))
	assert.True(t, f.site.IsCustomized())

	f.site.SetCustomized(false)
	assert.True(t, f.site.Dirty())
	assert.False(t, f.site.IsCustomized())

	require.NoError(t, f.site.Save())
	assert.False(t, siteNode(f.doc).HasAttr("max_url_in_memory"))
}

func TestGroupExcludedSettingsDoNotCustomize(t *testing.T) {
	f := buildGroups(t, NewContext(nil))
	enabled := f.site.Group("WebSitemapSettings").Setting(EnabledSetting)

	require.NoError(t, enabled.Input("false"))
	assert.False(t, enabled.Inherited())
	assert.False(t, f.site.IsCustomized())
}

func TestGroupDuplicates(t *testing.T) {
	ctx := NewContext(nil)
	g := NewGroup(ctx, "SiteSettings")
	require.NoError(t, g.Add(MustNew(ctx, "host", String, nil)))
	assert.ErrorIs(t, g.Add(MustNew(ctx, "host", String, nil)), ErrDuplicateSetting)
	require.NoError(t, g.AddGroup(NewGroup(ctx, "Web")))
	assert.ErrorIs(t, g.AddGroup(NewGroup(ctx, "Web")), ErrDuplicateGroup)
}

func TestGroupLoadUnbound(t *testing.T) {
	g := NewGroup(NewContext(nil), "SiteSettings")
	assert.ErrorIs(t, g.Load(nil), ErrUnbound)
}

func TestServiceLinkLocksGroup(t *testing.T) {
	f := buildGroups(t, NewContext(nil))
	web := f.site.Group("WebSitemapSettings")
	enabled := web.Setting(EnabledSetting)
	enabled.AddListener(NewServiceLink(web))

	require.NoError(t, enabled.Input("false"))
	compress := web.Setting("compress")
	assert.True(t, compress.Readonly())
	assert.Equal(t, []string{access.ReasonService}, compress.ReadonlyReasons())
	assert.ErrorIs(t, compress.Input("false"), ErrReadonly)
	assert.False(t, enabled.Readonly())

	require.NoError(t, enabled.Input("true"))
	assert.False(t, compress.Readonly())
}

func TestGroupValidateAndFocus(t *testing.T) {
	f := buildGroups(t, NewContext(nil))
	assert.True(t, f.site.Validate())
	assert.True(t, f.site.FocusOnFirst())
	assert.Equal(t, "max_url_in_memory", f.form.Focused())
}
