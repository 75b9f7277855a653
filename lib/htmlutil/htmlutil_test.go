package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestGetAnchors(t *testing.T) {
	doc := parse(t, `<body>
<a href="https://example.com/a">  First
	link  </a>
<a href="http://[::1">broken</a>
<a href="https://example.com/b"><span>Second</span> link</a>
</body>`)

	anchors := GetAnchors(doc.Find("a"))
	require.Equal(t, []Anchor{
		{Name: "First link", Href: "https://example.com/a"},
		{Name: "Second link", Href: "https://example.com/b"},
	}, anchors)
}

func TestGetText(t *testing.T) {
	doc := parse(t, `<div><p>one</p><p>two <b>three</b></p></div>`)
	node := doc.Find("div").Nodes[0]
	require.Equal(t, "onetwo three", GetText(node))
}

func TestMetaContent(t *testing.T) {
	doc := parse(t, `<head>
<meta name="description" content="plain description">
<meta property="og:description" content="og description">
</head>`)

	require.Equal(t, "og description", MetaContent(doc, "og:description", "description"))
	require.Equal(t, "plain description", MetaContent(doc, "twitter:description", "description"))
	require.Equal(t, "", MetaContent(doc, "twitter:description"))
}

func TestJsonLdBlocks(t *testing.T) {
	doc := parse(t, `<head>
<script type="application/ld+json">{"@type": "Person"}</script>
<script type="text/javascript">ignored()</script>
<script type="application/ld+json">  </script>
</head>`)

	require.Equal(t, []string{`{"@type": "Person"}`}, JsonLdBlocks(doc))
}
