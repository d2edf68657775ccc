package html

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/buffer"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/diag"
	"github.com/qemacs/qemacs-sub000/pkg/ident"
)

type collected []string

func (c *collected) Report(filename string, line int, msg string) {
	*c = append(*c, fmt.Sprintf("%s:%d: %s", filename, line, msg))
}

type fixture struct {
	idents *ident.Table
	sheet  *css.Sheet
	diags  collected
	src    string
}

func parse(t *testing.T, src string, opts Options) (*box.Box, *fixture) {
	t.Helper()
	f := &fixture{idents: ident.NewTable(), sheet: css.NewSheet(), src: src}
	opts.Filename = "t.html"
	root, err := ParseString(f.idents, f.sheet, &f.diags, nil, opts, src)
	require.NoError(t, err)
	return root, f
}

func (f *fixture) text(b *box.Box) string {
	return string(b.Decode(buffer.NewString(f.src)).Chars)
}

// tags lists the element children of b.
func tags(idents *ident.Table, b *box.Box) []string {
	var out []string
	for _, c := range b.Children {
		if c.Tag != ident.None {
			out = append(out, idents.Name(c.Tag))
		}
	}
	return out
}

func TestParagraph(t *testing.T) {
	root, f := parse(t, "<p>hello</p>", HTMLOptions())
	require.Len(t, root.Children, 1)
	p := root.Children[0]
	assert.Equal(t, ident.TagP, p.Tag)
	require.Len(t, p.Children, 1)
	txt := p.Children[0]
	assert.Equal(t, box.ContentBuffer, txt.Kind)
	assert.Equal(t, 3, txt.Start)
	assert.Equal(t, 8, txt.End)
	assert.Equal(t, "hello", f.text(txt))
	assert.Empty(t, f.diags)
}

func TestEmptyDocument(t *testing.T) {
	root, _ := parse(t, "", HTMLOptions())
	assert.Equal(t, box.ContentChildren, root.Kind)
	assert.Empty(t, root.Children)
}

func TestImplicitCellClose(t *testing.T) {
	root, f := parse(t, "<table><tr><td>a<td>b", HTMLOptions())
	table := root.Children[0]
	require.Equal(t, []string{"tr"}, tags(f.idents, table))
	tr := table.Children[0]
	assert.Equal(t, []string{"td", "td"}, tags(f.idents, tr))
	assert.Equal(t, "a", f.text(tr.Children[0].Children[0]))
	assert.Equal(t, "b", f.text(tr.Children[1].Children[0]))
}

func TestTableClosesOpenTable(t *testing.T) {
	root, f := parse(t, "<table><tr><td>a<table><tr><td>b</table>", HTMLOptions())
	require.Equal(t, []string{"table", "table"}, tags(f.idents, root))
	assert.Equal(t, "a", f.text(root.Children[0].Children[0].Children[0].Children[0]))
	assert.Equal(t, "b", f.text(root.Children[1].Children[0].Children[0].Children[0]))

	root, f = parse(t, "<table><tr><td><div><table><tr><td>b</table></div></table>", HTMLOptions())
	require.Equal(t, []string{"table"}, tags(f.idents, root), "a wrapped table stays nested")
	assert.Empty(t, f.diags)

	root, f = parse(t, "<b>x<table><tr><td>y</table>", HTMLOptions())
	require.Equal(t, []string{"b"}, tags(f.idents, root))
	assert.Equal(t, []string{"table"}, tags(f.idents, root.Children[0]), "an open <b> is not closed by a table")
}

func TestBoldClosesOpenBold(t *testing.T) {
	root, f := parse(t, "<p><b>a<b>b</p>", HTMLOptions())
	p := root.Children[0]
	require.Equal(t, []string{"b", "b"}, tags(f.idents, p))
	assert.Equal(t, "b", f.text(p.Children[1].Children[0]))

	root, f = parse(t, "<i><b>a</b></i>", HTMLOptions())
	require.Equal(t, []string{"i"}, tags(f.idents, root))
	assert.Equal(t, []string{"b"}, tags(f.idents, root.Children[0]), "other inline elements stay open")
}

func TestImplicitListItemClose(t *testing.T) {
	root, f := parse(t, "<ul><li>a<b>bold<li>b</ul>", HTMLOptions())
	ul := root.Children[0]
	assert.Equal(t, []string{"li", "li"}, tags(f.idents, ul))
	assert.Equal(t, []string{"b"}, tags(f.idents, ul.Children[0]))
}

func TestParagraphClosedByBlock(t *testing.T) {
	root, f := parse(t, "<p>one<div>two</div>", HTMLOptions())
	assert.Equal(t, []string{"p", "div"}, tags(f.idents, root))
}

func TestUnclosedBold(t *testing.T) {
	root, f := parse(t, "<b>all<p>of this", HTMLOptions())
	require.Equal(t, []string{"b"}, tags(f.idents, root))
	assert.Equal(t, []string{"p"}, tags(f.idents, root.Children[0]))
}

func TestUnmatchedEndTags(t *testing.T) {
	_, f := parse(t, "<p>a</b>\n</form></br></p>", HTMLOptions())
	assert.Equal(t, collected{"t.html:1: unmatched end tag '</b>'"}, f.diags)
}

func TestXMLMismatchedEndTag(t *testing.T) {
	root, f := parse(t, "<para><emphasis>x</para>", XMLOptions())
	assert.Equal(t, collected{"t.html:1: mismatched end tag '</para>', expected '</emphasis>'"}, f.diags)
	assert.Equal(t, []string{"para"}, tags(f.idents, root))
}

func TestXMLIsCaseSensitive(t *testing.T) {
	root, f := parse(t, "<Para/><para/>", XMLOptions())
	assert.Equal(t, []string{"Para", "para"}, tags(f.idents, root))
}

func TestStyleAndScript(t *testing.T) {
	src := "<style>p { color: red }</style><script>if (a<b) x()</script><p>x</p>"
	root, f := parse(t, src, HTMLOptions())
	assert.Equal(t, []string{"p"}, tags(f.idents, root))
	require.Equal(t, 1, f.sheet.Len())
	assert.Equal(t, ident.TagP, f.sheet.Rules[0].Selector.Tag)
	assert.Equal(t, css.MediaAll, f.sheet.Rules[0].Media)
}

func TestRawTextEndTag(t *testing.T) {
	src := "<style>p { color: red } /* </p> > </sty */ p > em { color: blue }</ Style ><p>x</p>"
	root, f := parse(t, src, HTMLOptions())
	assert.Equal(t, []string{"p"}, tags(f.idents, root))
	require.Equal(t, 2, f.sheet.Len())
	assert.Empty(t, f.diags)
}

func TestStyleMedia(t *testing.T) {
	_, f := parse(t, `<style media="print">p { color: red }</STYLE>`, HTMLOptions())
	require.Equal(t, 1, f.sheet.Len())
	assert.Equal(t, css.MediaPrint, f.sheet.Rules[0].Media)
}

func TestStyleDiagnosticLine(t *testing.T) {
	_, f := parse(t, "<p>\n<style>\np { zoom: 2 }</style>", HTMLOptions())
	assert.Equal(t, collected{"t.html:3: unsupported property 'zoom'"}, f.diags)
}

func TestLinkDataStylesheet(t *testing.T) {
	_, f := parse(t, `<link rel="stylesheet" href="data:text/css,p%20%7B%20color%3A%20red%20%7D">`, HTMLOptions())
	assert.Equal(t, 1, f.sheet.Len())
}

func TestCommentsAndDeclarations(t *testing.T) {
	root, f := parse(t, "<!DOCTYPE html><?xml version='1.0'?><!-- <p> -- x --><p>a</p>", HTMLOptions())
	assert.Equal(t, []string{"p"}, tags(f.idents, root))
	assert.Empty(t, f.diags)
}

func TestAttributes(t *testing.T) {
	root, f := parse(t, `<A HREF="x.html?a=1&amp;b=2" title='a "b"' Class=big nowrap>t</A>`, HTMLOptions())
	a := root.Children[0]
	assert.Equal(t, ident.TagA, a.Tag)
	href, _ := a.Attr(ident.AttrHref)
	assert.Equal(t, "x.html?a=1&b=2", href)
	class, _ := a.Attr(ident.AttrClass)
	assert.Equal(t, "big", class)
	_, ok := a.Attr(ident.AttrNowrap)
	assert.True(t, ok)
	title, _ := a.Attr(f.idents.Intern("title"))
	assert.Equal(t, `a "b"`, title)
}

func TestQuotedGreaterThan(t *testing.T) {
	root, f := parse(t, `<img alt="a > b">x`, HTMLOptions())
	img := root.Children[0]
	assert.Equal(t, box.ContentImage, img.Kind)
	assert.Equal(t, "a > b", img.Text)
	assert.True(t, img.HasAlt)
	assert.Equal(t, "x", f.text(root.Children[1]))
}

func TestImageDefaults(t *testing.T) {
	root, _ := parse(t, `<img><img width=10 alt="">`, HTMLOptions())
	w, ok := root.Children[0].Props.Get(css.PropWidth)
	require.True(t, ok)
	assert.Equal(t, []css.Value{css.Px(32)}, w)
	assert.False(t, root.Children[0].HasAlt)

	w, _ = root.Children[1].Props.Get(css.PropWidth)
	assert.Equal(t, []css.Value{css.Px(10)}, w)
	assert.True(t, root.Children[1].HasAlt)
}

func TestLiteralLessThan(t *testing.T) {
	root, f := parse(t, "<p>a < b</p>", HTMLOptions())
	assert.Equal(t, "a < b", f.text(root.Children[0].Children[0]))
}

func TestBreak(t *testing.T) {
	root, f := parse(t, "a<br clear=all>b", HTMLOptions())
	require.Len(t, root.Children, 3)
	br := root.Children[1]
	assert.Equal(t, ident.TagBr, br.Tag)
	assert.True(t, br.EOL)
	assert.Equal(t, box.ContentString, br.Kind)
	v, _ := br.Props.Get(css.PropClear)
	assert.Equal(t, []css.Value{css.Enum(int32(css.ClearBoth))}, v)
	assert.Equal(t, "b", f.text(root.Children[2]))
}

func TestFormControls(t *testing.T) {
	root, _ := parse(t, `<input type=checkbox checked><input type=radio><input type=submit><input value=ab size=4><input type=password value=xyz size=3>`, HTMLOptions())
	var got []string
	for _, c := range root.Children {
		got = append(got, c.Text)
	}
	assert.Equal(t, []string{"[X]", "( )", "Submit", "ab  ", "***"}, got)
}

func TestTableBorderGivesRidgeCells(t *testing.T) {
	root, _ := parse(t, "<table border=1 cellpadding=3 cellspacing=0><tr><td>x</table>", HTMLOptions())
	table := root.Children[0]
	w, _ := table.Props.Get(css.PropBorderLeftWidth)
	assert.Equal(t, []css.Value{css.Px(1)}, w)
	s, _ := table.Props.Get(css.PropBorderLeftStyle)
	assert.Equal(t, []css.Value{css.Enum(int32(css.BorderOutset))}, s)

	td := table.Children[0].Children[0]
	s, _ = td.Props.Get(css.PropBorderTopStyle)
	assert.Equal(t, []css.Value{css.Enum(int32(css.BorderRidge))}, s)
	w, _ = td.Props.Get(css.PropBorderTopWidth)
	assert.Equal(t, []css.Value{css.Px(1)}, w)
	pad, _ := td.Props.Get(css.PropPaddingLeft)
	assert.Equal(t, []css.Value{css.Px(3)}, pad)
}

func TestLegacyAttributes(t *testing.T) {
	root, _ := parse(t, `<body bgcolor="#ff0000" text=white><font size=+1 color=blue face="Courier New">x</font><ol start=5><li value=9>`, HTMLOptions())
	body := root.Children[0]
	bg, _ := body.Props.Get(css.PropBackgroundColor)
	assert.Equal(t, []css.Value{css.ColorValue(css.RGB(255, 0, 0))}, bg)
	fg, _ := body.Props.Get(css.PropColor)
	assert.Equal(t, []css.Value{css.ColorValue(css.White)}, fg)

	font := body.Children[0]
	size, _ := font.Props.Get(css.PropFontSize)
	assert.Equal(t, []css.Value{css.FontSizeStep(4)}, size)
	fam, _ := font.Props.Get(css.PropFontFamily)
	assert.Equal(t, []css.Value{css.Enum(int32(css.FamilyMono))}, fam)

	ol := body.Children[1]
	reset, _ := ol.Props.Get(css.PropCounterReset)
	assert.Equal(t, []css.Value{css.IdentRef(ident.CounterListItem), css.Integer(4)}, reset)
	reset, _ = ol.Children[0].Props.Get(css.PropCounterReset)
	assert.Equal(t, []css.Value{css.IdentRef(ident.CounterListItem), css.Integer(8)}, reset)
}

func TestStyleAttributeAppliesLast(t *testing.T) {
	root, _ := parse(t, `<p align=center style="text-align: right">x</p>`, HTMLOptions())
	p := root.Children[0]
	v, _ := p.Props.Get(css.PropTextAlign)
	assert.Equal(t, []css.Value{css.Enum(int32(css.TextAlignRight))}, v)
}

func TestWhiteSpaceInStructure(t *testing.T) {
	root, _ := parse(t, "<table>\n <tr>\n  <td> x </td>\n </tr>\n</table>", HTMLOptions())
	tr := root.Children[0].Children[0]
	require.Len(t, tr.Children, 1)
	td := tr.Children[0]
	require.Len(t, td.Children, 1)
	assert.Equal(t, box.ContentBuffer, td.Children[0].Kind)
}

func TestStreamingMatchesWholeParse(t *testing.T) {
	src := "<html><body><p class=a>héllo &amp; <b>wörld</b><!-- c --><style>b{color:red}</style>\n<p>x</body></html>"
	whole, f := parse(t, src, HTMLOptions())

	idents := ident.NewTable()
	sheet := css.NewSheet()
	p := NewParser(idents, sheet, diag.Discard, nil, HTMLOptions())
	for i := 0; i < len(src); i++ {
		require.NoError(t, p.Feed([]byte{src[i]}))
	}
	streamed, err := p.End()
	require.NoError(t, err)

	src2 := buffer.NewString(src)
	if diff := cmp.Diff(box.Dump(whole, f.idents, src2), box.Dump(streamed, idents, src2)); diff != "" {
		t.Errorf("streamed tree differs (-whole +streamed):\n%s", diff)
	}
	assert.Equal(t, f.sheet.Len(), sheet.Len())
}

func TestParseBufferRange(t *testing.T) {
	buf := buffer.NewString("garbage<p>x</p>")
	idents := ident.NewTable()
	p := NewParser(idents, css.NewSheet(), nil, nil, HTMLOptions())
	root, err := p.ParseBuffer(buf, 7, buf.Size())
	require.NoError(t, err)
	txt := root.Children[0].Children[0]
	assert.Equal(t, 10, txt.Start)
	assert.Equal(t, 11, txt.End)
}

func TestAbort(t *testing.T) {
	src := ""
	for i := 0; i < 100; i++ {
		src += "<b>x</b>"
	}
	opts := HTMLOptions()
	opts.Abort = func() bool { return true }
	_, err := ParseString(ident.NewTable(), css.NewSheet(), nil, nil, opts, src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrAborted))
}

func TestUnterminatedComment(t *testing.T) {
	_, f := parse(t, "<p>x\n<!-- never closed", HTMLOptions())
	assert.Equal(t, collected{"t.html:2: unterminated comment"}, f.diags)
}
