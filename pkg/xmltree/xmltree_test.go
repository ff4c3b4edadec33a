package xmltree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<SitemapSettings>
  <AppSettings remote_access="false"/>
  <SiteSettings max_url_in_memory="1000">
    <Site id="0" name="www" host="www.example.com">
      <IncludedUrls>
        <Url value="/*" enabled="true"/>
      </IncludedUrls>
    </Site>
    <Site id="1" name="blog" host="blog.example.com"/>
  </SiteSettings>
</SitemapSettings>`

func TestAttributeAccess(t *testing.T) {
	doc, err := ParseString(sample)
	require.NoError(t, err)

	global := doc.Root().Child("SiteSettings")
	v, ok := global.Attr("max_url_in_memory")
	assert.True(t, ok)
	assert.Equal(t, "1000", v)

	_, ok = global.Attr("max_url_in_disk")
	assert.False(t, ok)

	global.SetAttr("max_url_in_disk", "5000")
	assert.Equal(t, "5000", global.AttrOr("max_url_in_disk", ""))

	global.RemoveAttr("max_url_in_memory")
	assert.False(t, global.HasAttr("max_url_in_memory"))
}

func TestNilNodeReadsAreSafe(t *testing.T) {
	var n *Node
	_, ok := n.Attr("x")
	assert.False(t, ok)
	assert.Nil(t, n.Child("x"))
	assert.Empty(t, n.Children("x"))
	assert.Equal(t, 0, n.RemoveChildren("x"))
	assert.Empty(t, n.Attrs())
	assert.True(t, n.Same(nil))
}

func TestChildrenAndPaths(t *testing.T) {
	doc, err := ParseString(sample)
	require.NoError(t, err)
	root := doc.Root()

	sites := root.Child("SiteSettings").Children("Site")
	require.Len(t, sites, 2)
	assert.Equal(t, "blog", sites[1].AttrOr("name", ""))

	blog := root.Find("SiteSettings/Site[@id='1']")
	require.NotNil(t, blog)
	assert.True(t, blog.Same(sites[1]))

	urls := root.FindAll("SiteSettings/Site/IncludedUrls/Url")
	assert.Len(t, urls, 1)
}

func TestEnsureAndRemoveChildren(t *testing.T) {
	doc, err := ParseString(sample)
	require.NoError(t, err)
	site := doc.Root().Find("SiteSettings/Site[@id='1']")

	list := site.EnsureChild("ExcludedUrls")
	list.AddChild("Url").SetAttr("value", "/private/*")
	assert.True(t, site.EnsureChild("ExcludedUrls").Same(list))

	assert.Equal(t, 1, site.RemoveChildren("ExcludedUrls"))
	assert.Nil(t, site.Child("ExcludedUrls"))
}

func TestSerializeRoundTrip(t *testing.T) {
	doc, err := ParseString(sample)
	require.NoError(t, err)
	doc.Root().Child("AppSettings").SetAttr("remote_access", "true")

	out, err := doc.String()
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, `remote_access="true"`))

	again, err := ParseString(out)
	require.NoError(t, err)
	assert.Len(t, again.Root().Child("SiteSettings").Children("Site"), 2)
}

func TestParseErrors(t *testing.T) {
	_, err := ParseString("<open>")
	assert.ErrorIs(t, err, ErrParse)

	_, err = ParseString("")
	assert.Error(t, err)
}

func TestNewDocument(t *testing.T) {
	doc := New("SitemapSettings")
	assert.Equal(t, "SitemapSettings", doc.Root().Tag())

	cp := doc.Clone()
	cp.Root().SetAttr("x", "1")
	assert.False(t, doc.Root().HasAttr("x"))
}
