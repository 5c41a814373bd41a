package html

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"htmlbox/pkg/layout"
)

type mapFetcher map[string]string

func (m mapFetcher) FetchCSS(_ context.Context, uri string) (string, error) {
	if s, ok := m[uri]; ok {
		return s, nil
	}
	return "", errors.New("not found")
}

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := ParseString(context.Background(), src, Options{})
	require.NoError(t, err)
	return doc
}

func TestParseBuildsBoxTree(t *testing.T) {
	doc := mustParse(t, `<html><head><title> A   page </title></head>
<body><p id="x" class="a b">Hello <b>bold</b></p></body></html>`)

	assert.Equal(t, "html", doc.Root.TagName())
	assert.Equal(t, "A page", doc.Title)
	body := doc.Body()
	require.NotNil(t, body)

	p := doc.ElementByID("x")
	require.NotNil(t, p)
	assert.Equal(t, "p", p.TagName())
	require.Len(t, p.Children(), 2)
	assert.True(t, p.Children()[0].HasText())
	assert.Equal(t, "Hello ", p.Children()[0].Text())
	assert.Equal(t, "b", p.Children()[1].TagName())
	assert.Equal(t, "Hello bold", TextContent(p))
}

func TestParseKeepsCharacterReferences(t *testing.T) {
	doc := mustParse(t, `<p id="p">a &lt;b&gt; &amp; c</p>`)
	p := doc.ElementByID("p")
	require.NotNil(t, p)
	assert.Equal(t, "a <b> & c", TextContent(p))
	assert.Equal(t, "a &lt;b&gt; &amp; c", Serialize(p))
}

func TestParseSkipsRawText(t *testing.T) {
	doc := mustParse(t, `<html><head><style>p{color:red}</style>
<script>var x = 1;</script><script src="ext.js"></script></head><body></body></html>`)

	assert.Equal(t, []string{"var x = 1;"}, doc.Scripts)
	require.Len(t, doc.Stylesheets(), 1)
	for _, s := range ElementsByTagName(doc.Root, "script") {
		assert.Empty(t, s.Children())
	}
}

func TestLineBreakGetsNewline(t *testing.T) {
	doc := mustParse(t, `<p id="p">one<br>two</p>`)
	br := ElementsByTagName(doc.Root, "br")
	require.Len(t, br, 1)
	require.Len(t, br[0].Children(), 1)
	assert.Equal(t, "\n", br[0].Children()[0].Text())
	assert.Equal(t, "pre-line", br[0].Property("white-space"))
	assert.Equal(t, "onetwo", TextContent(doc.ElementByID("p")))
}

func TestCascadeOrder(t *testing.T) {
	doc := mustParse(t, `<html><head><style>
p { color: green; margin-top: 3px }
#x { color: blue }
</style></head><body>
<p id="x" align="right" style="margin-top: 9px">a</p>
<p id="y" align="center">b</p>
<h1>c</h1>
</body></html>`)

	x := doc.ElementByID("x")
	assert.Equal(t, "blue", x.Property("color"), "id rule beats tag rule")
	assert.Equal(t, "9px", x.Property("margin-top"), "style attribute wins")
	assert.Equal(t, "right", x.Property("text-align"), "hint applies")
	assert.Equal(t, "block", x.Property("display"))

	y := doc.ElementByID("y")
	assert.Equal(t, "green", y.Property("color"))
	assert.Equal(t, "3px", y.Property("margin-top"), "author rule beats UA margin")
	assert.Equal(t, "center", y.Property("text-align"))

	h1 := ElementsByTagName(doc.Root, "h1")[0]
	assert.Equal(t, "bold", h1.Property("font-weight"))
}

func TestAuthorRuleBeatsHint(t *testing.T) {
	doc := mustParse(t, `<html><head><style>td { background-color: red }</style></head>
<body><table><tr><td id="c" bgcolor="blue" width="40">x</td></tr></table></body></html>`)
	c := doc.ElementByID("c")
	require.NotNil(t, c)
	assert.Equal(t, "red", c.Property("background-color"))
	assert.Equal(t, "40px", c.Property("width"))
	assert.Equal(t, "table-cell", c.Property("display"))
}

func TestLinkedStylesheets(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	src := `<html><head>
<link rel="stylesheet" href="a.css">
<link rel="stylesheet" href="missing.css">
<link rel="icon" href="b.css">
</head><body><p>x</p></body></html>`
	doc, err := ParseString(context.Background(), src, Options{
		Fetcher: mapFetcher{"a.css": "p { color: teal }", "b.css": "p { color: red }"},
		Logger:  zap.New(core),
	})
	require.NoError(t, err)

	require.Len(t, doc.Stylesheets(), 1)
	p := ElementsByTagName(doc.Root, "p")[0]
	assert.Equal(t, "teal", p.Property("color"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "missing.css", logs.All()[0].ContextMap()["href"])
}

func TestRestyleAfterAttributeChange(t *testing.T) {
	doc := mustParse(t, `<html><head><style>.on { color: red }</style></head>
<body><div id="d">x</div></body></html>`)
	d := doc.ElementByID("d")
	assert.Equal(t, "black", d.Property("color"))

	d.Tag.Attrs["class"] = "on"
	doc.Restyle(d)
	assert.Equal(t, "red", d.Property("color"))

	delete(d.Tag.Attrs, "class")
	doc.Restyle(d)
	assert.Equal(t, "black", d.Property("color"), "stale declarations are dropped")
}

func TestParseFragment(t *testing.T) {
	doc := mustParse(t, `<ul id="list"><li>old</li></ul>`)
	list := doc.ElementByID("list")

	require.NoError(t, doc.ParseFragment(list, `<li>one</li><li class="two">t&amp;o</li>`))
	items := ElementsByTagName(list, "li")
	require.Len(t, items, 2)
	assert.Equal(t, "list-item", items[0].Property("display"))
	assert.Equal(t, "t&o", TextContent(items[1]))
	assert.Equal(t, `<li>one</li><li class="two">t&amp;o</li>`, Serialize(list))
}

func TestQueries(t *testing.T) {
	doc := mustParse(t, `<div id="a" class="box"><span class="box x">1</span><p><span>2</span></p></div>`)
	a := doc.ElementByID("a")

	assert.Len(t, ElementsByTagName(a, "span"), 2)
	assert.Len(t, ElementsByTagName(a, "*"), 3)
	assert.Len(t, ElementsByClassName(doc.Root, "box"), 2)
	assert.Nil(t, doc.ElementByID("nope"))

	got, err := QuerySelectorAll(doc.Root, "p > span, .x")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", TextContent(got[0]), "document order")

	ok, err := Matches(got[1], "div span")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSerializeOuterAndVoid(t *testing.T) {
	doc := mustParse(t, `<div id="d" title='say "hi"'>a<br>b<img src="x.png"></div>`)
	d := doc.ElementByID("d")
	assert.Equal(t, `<div id="d" title="say &#34;hi&#34;">a<br>b<img src="x.png"></div>`, SerializeOuter(d))
}

func TestSetTextContentAndClone(t *testing.T) {
	doc := mustParse(t, `<div id="d"><b>x</b><i>y</i></div>`)
	d := doc.ElementByID("d")

	clone := CloneBox(d, true)
	require.NotNil(t, clone)
	assert.Nil(t, clone.Parent())
	assert.Equal(t, SerializeOuter(d), SerializeOuter(clone))

	shallow := CloneBox(d, false)
	assert.Empty(t, shallow.Children())

	SetTextContent(d, "a < b & c")
	require.Len(t, d.Children(), 1)
	assert.Equal(t, "a < b & c", TextContent(d))
	assert.Equal(t, "a &lt; b &amp; c", Serialize(d))

	SetTextContent(d, "")
	assert.Empty(t, d.Children())
}

func TestElementParentSkipsAnonymousBoxes(t *testing.T) {
	div, err := layout.CreateBox(nil, layout.NewTag("div", nil), nil)
	require.NoError(t, err)
	anon, err := layout.CreateBox(div, nil, nil)
	require.NoError(t, err)
	span, err := layout.CreateBox(anon, layout.NewTag("span", nil), nil)
	require.NoError(t, err)

	parent := element{box: span}.Parent()
	require.NotNil(t, parent)
	assert.Equal(t, "div", parent.TagName())
	assert.Nil(t, element{box: div}.Parent())
}
