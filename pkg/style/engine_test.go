package style

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/buffer"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/diag"
	"github.com/qemacs/qemacs-sub000/pkg/html"
	"github.com/qemacs/qemacs-sub000/pkg/ident"
)

var (
	red   = css.RGB(0xff, 0, 0)
	green = css.RGB(0, 0x80, 0)
	blue  = css.RGB(0, 0, 0xff)
)

type doc struct {
	idents *ident.Table
	styles *css.StyleTable
	src    *buffer.Mem
	root   *box.Box
}

func compute(t *testing.T, sheetText, src string, opts Options) (*doc, error) {
	t.Helper()
	d := &doc{idents: ident.NewTable(), styles: css.NewStyleTable(), src: buffer.NewString(src)}
	sheet := css.NewSheet()
	css.NewParser(d.idents, nil, nil).ParseSheet(sheet, sheetText, 1)
	root, err := html.ParseString(d.idents, sheet, nil, nil, html.HTMLOptions(), src)
	require.NoError(t, err)
	d.root = root
	eng := NewEngine(d.idents, sheet, d.styles, zaptest.NewLogger(t), opts)
	return d, eng.Compute(root, d.src)
}

func mustCompute(t *testing.T, sheetText, src string) *doc {
	t.Helper()
	d, err := compute(t, sheetText, src, Options{})
	require.NoError(t, err)
	return d
}

func (d *doc) text(b *box.Box) string { return string(b.Decode(d.src).Chars) }

// find returns the n-th element with tag name in document order.
func (d *doc) find(name string, n int) *box.Box {
	id, _ := d.idents.Lookup(name)
	var found *box.Box
	d.root.Walk(func(b *box.Box) bool {
		if found == nil && b.Tag == id && b.Generated == box.GenNone {
			if n == 0 {
				found = b
			}
			n--
		}
		return found == nil
	})
	return found
}

// generated lists the texts of the generated boxes of kind gen.
func (d *doc) generated(gen box.Generated) []string {
	var out []string
	d.root.Walk(func(b *box.Box) bool {
		if b.Generated == gen && b.IsText() {
			out = append(out, d.text(b))
		}
		return true
	})
	return out
}

func TestDescendantCombinator(t *testing.T) {
	d := mustCompute(t, "", `<style>p { color: #f00 } p em { color: blue }</style><p>x <em>y</em> z</p>`)
	p := d.find("p", 0)
	require.NotNil(t, p)
	require.Len(t, p.Children, 3)

	assert.Equal(t, "x ", d.text(p.Children[0]))
	assert.Equal(t, red, p.Children[0].Style.Color)
	em := p.Children[1]
	assert.Equal(t, blue, em.Style.Color)
	assert.Equal(t, blue, em.Children[0].Style.Color)
	assert.Equal(t, " z", d.text(p.Children[2]))
	assert.Equal(t, red, p.Children[2].Style.Color)
}

func TestChildAndAdjacentCombinators(t *testing.T) {
	d := mustCompute(t, `div > em { color: red } h1 + p { color: green } p:first-child { color: blue }`,
		`<div><p><em>a</em></p><em>b</em></div><div><h1>t</h1><p>x</p><p>y</p></div>`)
	assert.Equal(t, blue, d.find("em", 0).Style.Color, "a grandchild of div inherits from p:first-child")
	assert.Equal(t, red, d.find("em", 1).Style.Color)
	assert.Equal(t, blue, d.find("p", 0).Style.Color)
	assert.Equal(t, green, d.find("p", 1).Style.Color)
	assert.Equal(t, css.Black, d.find("p", 2).Style.Color)
}

func TestAttributeSelectors(t *testing.T) {
	d := mustCompute(t, `[lang|=en] { color: red } .a.b { color: green } #main { color: blue } a:link { font-weight: bold }`,
		`<span lang=en-GB>1</span><span class="b a">2</span><span id=main class=a>3</span><a href=x>4</a><a name=y>5</a>`)
	assert.Equal(t, red, d.find("span", 0).Style.Color)
	assert.Equal(t, green, d.find("span", 1).Style.Color)
	assert.Equal(t, blue, d.find("span", 2).Style.Color)
	assert.True(t, d.find("a", 0).Style.Bold())
	assert.False(t, d.find("a", 1).Style.Bold())
}

func TestSpecificityAndOrder(t *testing.T) {
	d := mustCompute(t, `p { color: red } p.a { color: green } p { color: blue } #x { color: red }`,
		`<p class=a>1</p><p>2</p><p id=x class=a>3</p>`)
	assert.Equal(t, green, d.find("p", 0).Style.Color)
	assert.Equal(t, blue, d.find("p", 1).Style.Color)
	assert.Equal(t, red, d.find("p", 2).Style.Color)
}

func TestStyleAttributeAndImportant(t *testing.T) {
	d := mustCompute(t, `p { color: red } p.i { color: red !important }`,
		`<p style="color: blue">1</p><p class=i style="color: blue">2</p>`)
	assert.Equal(t, blue, d.find("p", 0).Style.Color)
	assert.Equal(t, red, d.find("p", 1).Style.Color)
}

func TestMediaMask(t *testing.T) {
	d := mustCompute(t, `@media print { p { color: red } } @media screen, tty { p { font-style: italic } }`, `<p>x</p>`)
	p := d.find("p", 0)
	assert.Equal(t, css.Black, p.Style.Color)
	assert.True(t, p.Style.Italic())
}

func TestInheritance(t *testing.T) {
	d := mustCompute(t, `div { color: green; background-color: red; border: 2px solid; white-space: pre }
		span { background-color: inherit }`,
		`<div><em>a</em><span>b</span></div>`)
	em := d.find("em", 0)
	assert.Equal(t, green, em.Style.Color)
	assert.Equal(t, css.WhiteSpacePre, em.Style.WhiteSpace)
	assert.True(t, em.Style.BackgroundColor.IsTransparent(), "background is not inherited")
	assert.Zero(t, em.Style.BorderWidth[css.SideTop])
	assert.Equal(t, red, d.find("span", 0).Style.BackgroundColor)
}

func TestUnitResolution(t *testing.T) {
	d := mustCompute(t, `p { font-size: 20px; margin-left: 2em; padding-left: 1in; width: 50%; text-indent: 1ex; line-height: 1.5 }
		em { font-size: 2em } b { font-size: 50% } i { line-height: 120% }`,
		`<p>a<em>b</em><b>c</b><i>d</i></p>`)
	p := d.find("p", 0)
	assert.Equal(t, int32(20), p.Style.FontSize)
	assert.Equal(t, css.PxLen(40), p.Style.Margin[css.SideLeft])
	assert.Equal(t, css.PxLen(96), p.Style.Padding[css.SideLeft])
	assert.Equal(t, css.Len{V: 50 * css.LengthBase, Unit: css.UnitPercent}, p.Style.Width)
	assert.Equal(t, 200, p.Style.Width.Resolve(400))
	assert.Equal(t, css.PxLen(16), p.Style.TextIndent)
	assert.Equal(t, css.Len{V: 384, Unit: css.UnitNumber}, p.Style.LineHeight)
	assert.Equal(t, 30, p.Style.LineHeight.Resolve(int(p.Style.FontSize)))

	em := d.find("em", 0)
	assert.Equal(t, int32(40), em.Style.FontSize)
	assert.Equal(t, p.Style.LineHeight, em.Style.LineHeight, "a unitless line-height is inherited as a number")
	assert.Equal(t, 60, em.Style.LineHeight.Resolve(int(em.Style.FontSize)))
	assert.Equal(t, int32(10), d.find("b", 0).Style.FontSize)
	assert.Equal(t, css.PxLen(24), d.find("i", 0).Style.LineHeight)
}

func TestRootFontSize(t *testing.T) {
	d := mustCompute(t, `p { font-size: medium } span { font-size: larger }`, `<p>a<span>b</span></p>`)
	assert.Equal(t, int32(19), d.find("p", 0).Style.FontSize)
	assert.Equal(t, int32(23), d.find("span", 0).Style.FontSize)
	assert.Equal(t, int32(19), d.root.Style.FontSize)
}

func TestBorders(t *testing.T) {
	d := mustCompute(t, `
		div.a { border: thin solid; color: red }
		div.b { border-width: 4px }
		div.c { border-style: solid; border-color: blue }
		div.d { border-top: thick double green }`,
		`<div class=a>1</div><div class=b>2</div><div class=c>3</div><div class=d>4</div>`)
	a := d.find("div", 0).Style
	assert.Equal(t, [4]int32{1, 1, 1, 1}, a.BorderWidth)
	assert.Equal(t, red, a.BorderColor[css.SideLeft], "border color defaults to color")
	assert.Equal(t, [4]int32{}, d.find("div", 1).Style.BorderWidth, "no style means no border")
	c := d.find("div", 2).Style
	assert.Equal(t, [4]int32{3, 3, 3, 3}, c.BorderWidth, "medium by default")
	assert.Equal(t, blue, c.BorderColor[css.SideBottom])
	dd := d.find("div", 3).Style
	assert.Equal(t, int32(5), dd.BorderWidth[css.SideTop])
	assert.Equal(t, css.BorderDouble, dd.BorderStyle[css.SideTop])
	assert.Zero(t, dd.BorderWidth[css.SideBottom])
}

func TestFontWeight(t *testing.T) {
	d := mustCompute(t, `.a { font-weight: 700 } .b { font-weight: 400 } .c { font-weight: bolder }`,
		`<span class=a>1</span><span class=b>2</span><span class=c>3</span><b>4</b>`)
	assert.True(t, d.find("span", 0).Style.Bold())
	assert.False(t, d.find("span", 1).Style.Bold())
	assert.True(t, d.find("span", 2).Style.Bold())
	assert.False(t, d.find("b", 0).Style.Bold(), "no default sheet")
}

func TestDisplayFixups(t *testing.T) {
	d := mustCompute(t, `.f { float: left } .p { position: absolute; float: right } .x { position: fixed }`,
		`<span class=f>1</span><span class=p>2</span><span class=x>3</span>`)
	f := d.find("span", 0).Style
	assert.Equal(t, css.DisplayBlock, f.Display)
	p := d.find("span", 1).Style
	assert.Equal(t, css.FloatNone, p.Float)
	assert.Equal(t, css.DisplayBlock, p.Display)
	assert.Equal(t, css.DisplayBlock, d.find("span", 2).Style.Display)
	assert.Equal(t, css.DisplayBlock, d.root.Style.Display)
}

func TestStylesAreShared(t *testing.T) {
	d := mustCompute(t, `p { color: red }`, `<p>a</p><p>b</p><p style="color: red">c</p><p style="color: blue">d</p>`)
	p0, p1, p2, p3 := d.find("p", 0), d.find("p", 1), d.find("p", 2), d.find("p", 3)
	assert.Same(t, p0.Style, p1.Style)
	assert.Same(t, p0.Style, p2.Style, "equal records share one allocation")
	assert.NotSame(t, p0.Style, p3.Style)
	assert.Same(t, p0.Children[0].Style, p1.Children[0].Style)

	seen := make(map[css.ComputedStyle]*css.ComputedStyle)
	d.root.Walk(func(b *box.Box) bool {
		require.NotNil(t, b.Style)
		if prev, ok := seen[*b.Style]; ok {
			assert.Same(t, prev, b.Style)
		}
		seen[*b.Style] = b.Style
		return true
	})
}

func TestListMarkers(t *testing.T) {
	sheet := `li { display: list-item } ol { list-style-type: decimal; counter-reset: list-item }
		ul { counter-reset: list-item }`
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"bullets", `<ul><li>a</li><li>b</li></ul>`, []string{"•", "•"}},
		{"decimal", `<ol><li>a</li><li>b</li></ol>`, []string{"1.", "2."}},
		{"start", `<ol start=3><li>a<li>b</ol>`, []string{"3.", "4."}},
		{"value", `<ol><li>a<li value=10>b<li>c</ol>`, []string{"1.", "10.", "11."}},
		{"nested", `<ol><li>a<ol><li>x<li>y</ol><li>b</ol>`, []string{"1.", "1.", "2.", "2."}},
		{"type", `<ol type=a><li>a<li>b</ol><ol type=I><li>c<li>d<li>e<li>f</ol>`,
			[]string{"a.", "b.", "I.", "II.", "III.", "IV."}},
		{"siblings", `<ol><li>a</ol><ol><li>b</ol>`, []string{"1.", "1."}},
		{"hidden", `<ol><li>a<li style="display: none">b<li>c</ol>`, []string{"1.", "2."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustCompute(t, sheet, tt.src)
			assert.Equal(t, tt.want, d.generated(box.GenMarker))
		})
	}
}

func TestImplicitCounterResetIsLogged(t *testing.T) {
	run := func(sheetText string) []string {
		idents, styles := ident.NewTable(), css.NewStyleTable()
		src := `<ol><li>a<ol><li>x</ol></ol>`
		sheet := css.NewSheet()
		css.NewParser(idents, nil, nil).ParseSheet(sheet, sheetText, 1)
		root, err := html.ParseString(idents, sheet, nil, nil, html.HTMLOptions(), src)
		require.NoError(t, err)
		core, logs := observer.New(zapcore.DebugLevel)
		eng := NewEngine(idents, sheet, styles, zap.New(core), Options{})
		require.NoError(t, eng.Compute(root, buffer.NewString(src)))
		var scopes []string
		for _, e := range logs.FilterMessage("implicit counter reset").All() {
			scopes = append(scopes, e.ContextMap()["scope"].(string))
		}
		return scopes
	}

	assert.Equal(t, []string{"ol"}, run(`li { display: list-item; list-style-type: decimal }`),
		"only the outer list creates an instance, the nested items reuse it")
	assert.Empty(t, run(`li { display: list-item; list-style-type: decimal } ol { counter-reset: list-item }`))
}

func TestMarkerPlacement(t *testing.T) {
	d := mustCompute(t, `li { display: list-item; list-style-type: decimal } li.in { list-style-position: inside }`,
		`<ul><li>a<li class=in>b</ul>`)
	li := d.find("li", 0)
	m := li.Children[0]
	assert.Equal(t, box.GenMarker, m.Generated)
	assert.Equal(t, css.DisplayMarker, m.Style.Display)
	in := d.find("li", 1).Children[0]
	assert.Equal(t, css.DisplayInline, in.Style.Display)
	assert.Equal(t, "2. ", d.text(in))
}

func TestBeforeAfter(t *testing.T) {
	d := mustCompute(t, `p { counter-increment: c } p::before { content: "[" attr(title) "]" }
		p::after { content: " #" counter(c, upper-roman); color: red }`,
		`<p title=x>a</p><p>b</p>`)
	assert.Equal(t, []string{"[x]", "[]"}, d.generated(box.GenBefore))
	assert.Equal(t, []string{" #I", " #II"}, d.generated(box.GenAfter))

	p := d.find("p", 0)
	require.Len(t, p.Children, 3)
	assert.Equal(t, box.GenBefore, p.Children[0].Generated)
	assert.Equal(t, box.GenAfter, p.Children[2].Generated)
	assert.Equal(t, red, p.Children[2].Style.Color)
	assert.Equal(t, css.Black, p.Children[0].Style.Color)
}

func TestBeforeAsMarker(t *testing.T) {
	d := mustCompute(t, `li { display: list-item } li::before { display: marker; content: "*" }`, `<ul><li>a</ul>`)
	assert.Equal(t, []string{"*"}, d.generated(box.GenMarker))
}

func TestBlockBefore(t *testing.T) {
	d := mustCompute(t, `div::before { display: block; content: "head" }`, `<div>x</div>`)
	div := d.find("div", 0)
	w := div.Children[0]
	assert.Equal(t, box.GenBefore, w.Generated)
	assert.Equal(t, css.DisplayBlock, w.Style.Display)
	require.Len(t, w.Children, 1)
	assert.Equal(t, "head", d.text(w.Children[0]))
	assert.Equal(t, css.DisplayInline, w.Children[0].Style.Display)
}

func TestFirstLetter(t *testing.T) {
	d := mustCompute(t, `p::first-letter { color: red } p::first-line { color: blue }`, `<p>  hello</p>`)
	p := d.find("p", 0)
	require.Len(t, p.Children, 3)
	assert.Equal(t, "  ", d.text(p.Children[0]))
	fl := p.Children[1]
	assert.Equal(t, box.GenFirstLetter, fl.Generated)
	assert.Equal(t, red, fl.Style.Color)
	require.Len(t, fl.Children, 1)
	assert.Equal(t, "h", d.text(fl.Children[0]))
	assert.Equal(t, "ello", d.text(p.Children[2]))
	assert.False(t, p.Children[2].Split)

	require.NotNil(t, p.FirstLine)
	assert.Equal(t, blue, p.FirstLine.Color)
}

func TestFirstLetterEntity(t *testing.T) {
	d := mustCompute(t, `p::first-letter { color: red }`, `<p>&eacute;t&eacute;</p>`)
	p := d.find("p", 0)
	require.Len(t, p.Children, 2)
	assert.Equal(t, "é", d.text(p.Children[0].Children[0]))
	assert.Equal(t, "té", d.text(p.Children[1]))
}

func TestTextDecorationPropagates(t *testing.T) {
	d := mustCompute(t, `a { text-decoration: underline overline }`, `<a href=x>t<em>u</em></a>`)
	em := d.find("em", 0)
	assert.Equal(t, css.DecorUnderline|css.DecorOverline, em.Style.TextDecoration)
}

func TestLegacyAttributes(t *testing.T) {
	d := mustCompute(t, "", `<table border=1><tr><td>a</table><font color=red size=7>b</font>`)
	td := d.find("td", 0).Style
	assert.Equal(t, [4]int32{1, 1, 1, 1}, td.BorderWidth)
	assert.Equal(t, css.BorderRidge, td.BorderStyle[css.SideLeft])
	font := d.find("font", 0).Style
	assert.Equal(t, red, font.Color)
	assert.Equal(t, int32(32), font.FontSize)
}

func TestAbort(t *testing.T) {
	src := strings.Repeat("<p>x</p>", 100)
	_, err := compute(t, "", src, Options{Abort: func() bool { return true }})
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrAborted))
}

func TestEveryBoxIsStyled(t *testing.T) {
	d := mustCompute(t, `li { display: list-item } .h { display: none }`,
		`<ul><li>a<b>b</b></ul><div class=h><p>x<img alt=y></div><input type=checkbox>`)
	d.root.Walk(func(b *box.Box) bool {
		assert.NotNil(t, b.Style, box.Dump(b, d.idents, d.src))
		return true
	})
}

func TestFormatCounter(t *testing.T) {
	tests := []struct {
		n    int
		ls   css.ListStyle
		want string
	}{
		{4, css.ListDecimal, "4"},
		{1994, css.ListUpperRoman, "MCMXCIV"},
		{9, css.ListLowerRoman, "ix"},
		{0, css.ListLowerRoman, "0"},
		{1, css.ListLowerAlpha, "a"},
		{27, css.ListUpperAlpha, "AA"},
		{52, css.ListLowerAlpha, "az"},
		{3, css.ListSquare, "■"},
		{3, css.ListNone, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCounter(tt.n, tt.ls), "%d %d", tt.n, tt.ls)
	}
	assert.Equal(t, "3.", MarkerText(3, css.ListDecimal))
	assert.Equal(t, "○", MarkerText(3, css.ListCircle))
}
