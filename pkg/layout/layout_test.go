package layout

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/buffer"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/diag"
	"github.com/qemacs/qemacs-sub000/pkg/html"
	"github.com/qemacs/qemacs-sub000/pkg/ident"
	"github.com/qemacs/qemacs-sub000/pkg/screen/screentest"
	"github.com/qemacs/qemacs-sub000/pkg/style"
)

// With a 16px font a glyph is 8px wide, the ascent 12 and the descent 4.
const testSheet = `
p, div, ul, ol, pre, body { display: block }
li { display: list-item }
ul { padding-left: 40px }
pre { white-space: pre }
table { display: table }
tr { display: table-row }
td { display: table-cell }
`

type doc struct {
	t      *testing.T
	idents *ident.Table
	styles *css.StyleTable
	src    *buffer.Mem
	root   *box.Box
}

func styled(t *testing.T, src string) *doc {
	t.Helper()
	d := &doc{t: t, idents: ident.NewTable(), styles: css.NewStyleTable(), src: buffer.NewString(src)}
	sheet := css.NewSheet()
	css.NewParser(d.idents, nil, nil).ParseSheet(sheet, testSheet, 1)
	root, err := html.ParseString(d.idents, sheet, nil, nil, html.HTMLOptions(), src)
	require.NoError(t, err)
	eng := style.NewEngine(d.idents, sheet, d.styles, zaptest.NewLogger(t), style.Options{FontSize: 16})
	require.NoError(t, eng.Compute(root, d.src))
	d.root = root
	return d
}

func (d *doc) layout(width int) error {
	scr := screentest.New(width, 600)
	e := NewEngine(scr, d.styles, nil, zaptest.NewLogger(d.t), Options{})
	return e.Layout(d.root, d.src)
}

func laidOut(t *testing.T, src string, width int) *doc {
	t.Helper()
	d := styled(t, src)
	require.NoError(t, d.layout(width))
	return d
}

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
	require.NotNil(d.t, found, "no <%s> #%d", name, n)
	return found
}

func (d *doc) text(b *box.Box) string { return string(b.Decode(d.src).Chars) }

// texts returns the text boxes below b that carry characters.
func (d *doc) texts(b *box.Box) []*box.Box {
	var out []*box.Box
	b.Walk(func(x *box.Box) bool {
		if x.IsText() && x.Generated == box.GenNone && x.Run != nil && len(x.Run.Chars) > 0 {
			out = append(out, x)
		}
		return true
	})
	return out
}

func TestParagraphSingleLine(t *testing.T) {
	d := laidOut(t, "<p>hello</p>", 400)
	p := d.find("p", 0)
	assert.Equal(t, image.Rect(0, 0, 400, 16), p.Rect())
	assert.Equal(t, 12, p.Ascent)

	txt := d.texts(p)
	require.Len(t, txt, 1)
	assert.Equal(t, image.Rect(0, 0, 40, 16), txt[0].Rect())
	assert.Equal(t, 40, txt[0].Run.Width)
	x, baseline := TextOrigin(txt[0])
	assert.Equal(t, 0, x)
	assert.Equal(t, 12, baseline)
	assert.Equal(t, 16, d.root.Height)
}

func TestBlocksStack(t *testing.T) {
	d := laidOut(t, `<div style="height:50px"></div><div style="margin-top:10px;height:20px"></div>`, 400)
	a, b := d.find("div", 0), d.find("div", 1)
	assert.Equal(t, 50, a.Height)
	assert.Equal(t, 60, b.Y)
	assert.Equal(t, 80, d.root.Height)
}

func TestSiblingMarginsCollapse(t *testing.T) {
	d := laidOut(t, `<div style="height:10px;margin-bottom:20px"></div><div style="height:10px;margin-top:30px"></div>`, 400)
	assert.Equal(t, 40, d.find("div", 1).Y)
}

func TestAutoMarginsCenter(t *testing.T) {
	d := laidOut(t, `<div style="width:100px;margin-left:auto;margin-right:auto">x</div>`, 400)
	div := d.find("div", 0)
	assert.Equal(t, 150, div.X)
	assert.Equal(t, 100, div.Width)
}

func TestWrapSplitsAndRelayoutJoins(t *testing.T) {
	d := styled(t, `<p>hello world foo</p>`)
	require.NoError(t, d.layout(80))
	p := d.find("p", 0)
	require.Len(t, p.Children, 2)
	first, second := p.Children[0], p.Children[1]
	assert.True(t, second.Split)
	assert.Equal(t, "hello ", d.text(first))
	assert.Equal(t, "world foo", d.text(second))
	assert.Equal(t, 0, first.Y)
	assert.Equal(t, 16, second.Y)
	assert.Equal(t, 0, second.X)
	assert.Equal(t, 32, p.Height)

	require.NoError(t, d.layout(400))
	require.Len(t, p.Children, 1)
	assert.Equal(t, "hello world foo", d.text(p.Children[0]))
	assert.False(t, p.Children[0].Split)
	assert.Equal(t, 16, p.Height)
}

func TestLongWordOverflows(t *testing.T) {
	d := laidOut(t, `<p>abcdefghijkl</p>`, 40)
	p := d.find("p", 0)
	require.Len(t, p.Children, 1)
	assert.Equal(t, 96, p.Children[0].Width)
	assert.Equal(t, 16, p.Height)
}

func TestCollapsedSpaces(t *testing.T) {
	d := laidOut(t, "<p>a   \n  b</p>", 400)
	txt := d.texts(d.find("p", 0))
	require.Len(t, txt, 1)
	assert.Equal(t, "a b", string(txt[0].Run.Chars))
	assert.Equal(t, 24, txt[0].Width)
}

func TestBreakElement(t *testing.T) {
	d := laidOut(t, `<p>a<br>b</p>`, 400)
	p := d.find("p", 0)
	assert.Equal(t, 32, p.Height)
	txt := d.texts(p)
	require.Len(t, txt, 2)
	assert.Equal(t, 0, txt[0].Y)
	assert.Equal(t, 16, txt[1].Y)
	assert.Equal(t, 0, txt[1].X)
}

func TestPreKeepsNewlines(t *testing.T) {
	d := laidOut(t, "<pre>ab  c\nd</pre>", 400)
	pre := d.find("pre", 0)
	assert.Equal(t, 32, pre.Height)
	txt := d.texts(pre)
	require.Len(t, txt, 2)
	assert.Equal(t, "ab  c", string(txt[0].Run.Chars))
	assert.Equal(t, 16, txt[1].Y)
}

func TestTextAlign(t *testing.T) {
	for _, tt := range []struct {
		align string
		x     int
	}{
		{"left", 0},
		{"right", 360},
		{"center", 180},
	} {
		t.Run(tt.align, func(t *testing.T) {
			d := laidOut(t, `<p style="text-align:`+tt.align+`">hello</p>`, 400)
			txt := d.texts(d.find("p", 0))
			require.Len(t, txt, 1)
			assert.Equal(t, tt.x, txt[0].X)
		})
	}
}

func TestTextIndentFirstLineOnly(t *testing.T) {
	d := laidOut(t, `<p style="text-indent:16px">aaaa bbbb</p>`, 72)
	txt := d.texts(d.find("p", 0))
	require.Len(t, txt, 2)
	assert.Equal(t, 16, txt[0].X)
	assert.Equal(t, 0, txt[1].X)
}

func TestRightToLeftReorders(t *testing.T) {
	d := laidOut(t, `<p style="direction:rtl">hello שלום</p>`, 400)
	txt := d.texts(d.find("p", 0))
	require.Len(t, txt, 2)
	latin, hebrew := txt[0], txt[1]
	assert.Equal(t, "hello", string(latin.Run.Chars))
	assert.True(t, hebrew.Run.RTL)
	assert.False(t, latin.Run.RTL)
	assert.Less(t, hebrew.X, latin.X)
	assert.Equal(t, 400, latin.X+latin.Width)
}

func TestLeftToRightWithoutBidiKeepsBox(t *testing.T) {
	d := laidOut(t, `<p>plain text</p>`, 400)
	p := d.find("p", 0)
	require.Len(t, p.Children, 1)
	assert.Equal(t, uint8(0), p.Children[0].Level)
}

func TestListMarkersShareColumn(t *testing.T) {
	d := laidOut(t, `<ul><li>one</li><li>two</li></ul>`, 400)
	var markers []*box.Box
	d.root.Walk(func(b *box.Box) bool {
		if b.Generated == box.GenMarker {
			markers = append(markers, b)
		}
		return true
	})
	require.Len(t, markers, 2)
	assert.Equal(t, markers[0].X, markers[1].X)
	assert.Less(t, markers[0].X+markers[0].Width, 40)
	assert.Equal(t, 0, markers[0].Y)
	assert.Equal(t, 16, markers[1].Y)

	li := d.find("li", 0)
	assert.Equal(t, 40, li.X)
	assert.Equal(t, 40, d.texts(li)[0].X)
}

func TestTableCellsShareWidth(t *testing.T) {
	d := laidOut(t, `<table><tr><td>aa</td><td>bb</td></tr></table>`, 400)
	a, b := d.find("td", 0), d.find("td", 1)
	assert.Equal(t, a.Width, b.Width)
	assert.Equal(t, a.Y, b.Y)
	assert.Equal(t, a.X+a.Width, b.X)
	assert.Equal(t, 16, a.Width)
	table := d.find("table", 0)
	assert.Equal(t, 32, table.Width)
	assert.Equal(t, 16, table.Height)
}

func TestTableRowHeightFollowsTallestCell(t *testing.T) {
	d := laidOut(t, `<table><tr><td>a</td><td style="height:40px">b</td></tr></table>`, 400)
	a, b := d.find("td", 0), d.find("td", 1)
	assert.Equal(t, 40, a.Height)
	assert.Equal(t, 40, b.Height)
	assert.Equal(t, 40, d.find("tr", 0).Height)
}

func TestTableColspan(t *testing.T) {
	d := laidOut(t, `<table style="width:200px"><tr><td colspan=2>wide</td></tr><tr><td>a</td><td>b</td></tr></table>`, 400)
	wide, a, b := d.find("td", 0), d.find("td", 1), d.find("td", 2)
	assert.Equal(t, wide.X, a.X)
	assert.Equal(t, wide.X+wide.Width, b.X+b.Width)
	assert.Equal(t, 200, d.find("table", 0).Width)
}

func TestFloatNarrowsLines(t *testing.T) {
	d := laidOut(t, `<p><img style="float:left">text</p>`, 400)
	img := d.find("img", 0)
	assert.Equal(t, image.Rect(0, 0, 32, 32), img.Rect())
	txt := d.texts(d.find("p", 0))
	require.NotEmpty(t, txt)
	assert.Equal(t, 32, txt[0].X)
}

func TestFloatRightAndClear(t *testing.T) {
	d := laidOut(t, `<div><img style="float:right"><p style="clear:right">x</p></div>`, 400)
	img := d.find("img", 0)
	assert.Equal(t, 368, img.X)
	assert.Equal(t, 32, d.find("p", 0).Y)
}

func TestInlineBlockIsAtomic(t *testing.T) {
	d := laidOut(t, `<p>ab<span style="display:inline-block;width:40px;height:30px"></span>cd</p>`, 400)
	span := d.find("span", 0)
	assert.Equal(t, 16, span.X)
	assert.Equal(t, 40, span.Width)
	txt := d.texts(d.find("p", 0))
	require.Len(t, txt, 2)
	assert.Equal(t, 56, txt[1].X)
	// The inline-block sits on the baseline: its bottom edge is at 30, the
	// text baseline.
	assert.Equal(t, 30, span.Y+span.Height)
	assert.Equal(t, 18, txt[1].Y)
}

func TestInlineFragments(t *testing.T) {
	d := laidOut(t, `<p>aaaa <b>bbbb cccc</b></p>`, 80)
	b := d.find("b", 0)
	require.Len(t, b.Fragments, 2)
	assert.Equal(t, 0, b.Fragments[0].Min.Y)
	assert.Equal(t, 16, b.Fragments[1].Min.Y)
	assert.Equal(t, 0, b.Fragments[1].Min.X)
	assert.Equal(t, image.Rect(0, 0, 80, 32), b.Rect())
}

func TestRelativeOffset(t *testing.T) {
	d := laidOut(t, `<div style="position:relative;left:10px;top:5px;height:20px"><p>x</p></div>`, 400)
	assert.Equal(t, image.Pt(10, 5), d.find("div", 0).Rect().Min)
	assert.Equal(t, image.Pt(10, 5), d.find("p", 0).Rect().Min)
	assert.Equal(t, 20, d.root.Height)
}

func TestAbsoluteInPositionedAncestor(t *testing.T) {
	d := laidOut(t, `<div style="position:relative;margin-top:20px;height:100px">`+
		`<p style="position:absolute;left:10px;top:5px;width:50px">x</p></div>`, 400)
	p := d.find("p", 0)
	assert.True(t, p.AbsolutePos)
	assert.Equal(t, image.Rect(10, 25, 60, 41), p.Rect())
}

func TestAbsoluteStaticPosition(t *testing.T) {
	d := laidOut(t, `<div style="height:30px"></div><p style="position:absolute">x</p>`, 400)
	p := d.find("p", 0)
	assert.Equal(t, image.Pt(0, 30), p.Rect().Min)
	assert.Equal(t, 8, p.Width)
	assert.Equal(t, 30, d.root.Height)
}

func TestDisplayNoneHasNoExtent(t *testing.T) {
	d := laidOut(t, `<p style="display:none">hidden</p><p>shown</p>`, 400)
	assert.True(t, d.find("p", 0).Rect().Empty())
	assert.Equal(t, 0, d.find("p", 1).Y)
}

func TestEmptyDocument(t *testing.T) {
	d := laidOut(t, ``, 400)
	assert.Equal(t, image.Rectangle{}, d.root.Rect())
	assert.Equal(t, image.Rectangle{}, d.root.BBox)
}

func TestBBoxContainsDescendants(t *testing.T) {
	d := laidOut(t, `<ul><li>one <b>two</b></li></ul><p style="position:relative;left:500px">far</p>`, 200)
	d.root.Walk(func(b *box.Box) bool {
		for _, c := range b.Children {
			if !c.BBox.Empty() {
				assert.True(t, c.BBox.In(b.BBox), "%v not in %v", c.BBox, b.BBox)
			}
		}
		return true
	})
	assert.GreaterOrEqual(t, d.root.BBox.Max.X, 500)
}

func TestAbortStopsLayout(t *testing.T) {
	d := styled(t, `<p>one</p><p>two</p>`)
	calls := 0
	e := NewEngine(screentest.New(400, 600), d.styles, nil, zaptest.NewLogger(t), Options{
		Abort: func() bool {
			calls++
			return calls > 2
		},
	})
	err := e.Layout(d.root, d.src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrAborted))
}

func TestFirstLineStyle(t *testing.T) {
	d := styled(t, `<p>aaaa bbbb</p>`)
	p := d.find("p", 0)
	fl := *p.Style
	fl.Color = css.RGB(0xff, 0, 0)
	p.FirstLine = d.styles.Intern(fl)
	require.NoError(t, d.layout(40))

	txt := d.texts(p)
	require.Len(t, txt, 2)
	assert.Equal(t, css.RGB(0xff, 0, 0), txt[0].Style.Color)
	assert.NotNil(t, txt[0].BaseStyle)
	assert.Equal(t, css.Black, txt[1].Style.Color)

	// A second pass starts from the cascaded style again.
	require.NoError(t, d.layout(400))
	require.Len(t, p.Children, 1)
	assert.Equal(t, css.RGB(0xff, 0, 0), p.Children[0].Style.Color)
	assert.Equal(t, css.Black, p.Children[0].BaseStyle.Color)
}
