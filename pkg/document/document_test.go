package document

import (
	"errors"
	"image"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/buffer"
	"github.com/qemacs/qemacs-sub000/pkg/config"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/diag"
	"github.com/qemacs/qemacs-sub000/pkg/render"
	"github.com/qemacs/qemacs-sub000/pkg/screen/screentest"
)

var full = image.Rect(0, 0, 400, 300)

func newDoc(t *testing.T, src string, opts Options) (*Document, *buffer.Mem, *screentest.Screen) {
	t.Helper()
	buf := buffer.NewString(src)
	scr := screentest.New(400, 300)
	if opts.FontSize == 0 {
		opts.FontSize = 16
	}
	d := New(buf, scr, zaptest.NewLogger(t), opts)
	t.Cleanup(d.Close)
	return d, buf, scr
}

func TestDisplayRunsPipelineOnce(t *testing.T) {
	busy := 0
	d, _, scr := newDoc(t, "<p>hello</p>", Options{Busy: func() { busy++ }})
	assert.False(t, d.UpToDate())

	require.NoError(t, d.Display(full, render.Selection{}))
	assert.True(t, d.UpToDate())
	assert.Equal(t, 1, busy)
	_, ok := scr.TextOp("hello")
	assert.True(t, ok)

	scr.Reset()
	require.NoError(t, d.Display(full, render.Selection{}))
	assert.Equal(t, 1, busy, "an up to date document is not parsed again")
	_, ok = scr.TextOp("hello")
	assert.True(t, ok, "it is still painted")
}

func TestModificationReparses(t *testing.T) {
	const src = `<p>x <img alt="cat"> y</p>`
	d, buf, scr := newDoc(t, src, Options{})
	require.NoError(t, d.Display(full, render.Selection{}))
	before := append([]screentest.Op(nil), scr.Ops...)
	var img *box.Box
	d.Root().Walk(func(b *box.Box) bool {
		if b.Kind == box.ContentImage {
			img = b
		}
		return img == nil
	})
	require.NotNil(t, img)
	alt := img.Rect()

	require.NoError(t, buf.Insert(strings.Index(src, `cat"`)+3, []byte("s")))
	assert.False(t, d.UpToDate(), "the buffer callback clears the flag")

	scr.Reset()
	require.NoError(t, d.Display(full, render.Selection{}))
	assert.True(t, d.UpToDate())
	after := scr.Ops

	require.Len(t, after, len(before))
	changed := 0
	for i := range before {
		if before[i] == after[i] {
			continue
		}
		changed++
		op := after[i]
		assert.Equal(t, "text", op.Kind)
		assert.True(t, image.Pt(op.X, op.Y).In(alt), "change at %v outside the image %v", op, alt)
	}
	assert.Equal(t, 1, changed)
	_, ok := scr.TextOp("cats")
	assert.True(t, ok)
}

func TestAbortKeepsDocumentStale(t *testing.T) {
	abort := true
	d, _, scr := newDoc(t, "<p>one</p><p>two</p>", Options{Abort: func() bool { return abort }})

	err := d.Display(full, render.Selection{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrAborted))
	assert.False(t, d.UpToDate())
	assert.Nil(t, d.Root(), "partial trees are dropped")
	assert.Empty(t, scr.Ops, "nothing is painted")
	assert.ErrorIs(t, d.Err(), diag.ErrAborted)

	abort = false
	require.NoError(t, d.Display(full, render.Selection{}))
	assert.True(t, d.UpToDate())
	assert.NoError(t, d.Err())
}

func TestDiagnosticsGoToErrorBuffer(t *testing.T) {
	d, _, _ := newDoc(t, "<p>a</b>\n<p style='color: nosuch'>b</p>", Options{Filename: "page.html"})
	require.NoError(t, d.Update())

	errs := d.Errors()
	assert.Equal(t, diag.ErrorBufferName, errs.Name())
	lines := errs.Lines()
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "page.html:1: "), lines[0])
	assert.Contains(t, lines[0], "</b>")
	assert.Error(t, d.Err())

	// Diagnostics are those of the last parse only.
	n := errs.Len()
	d.Invalidate()
	require.NoError(t, d.Update())
	assert.Equal(t, n, errs.Len())
}

func TestReparseIsIdempotent(t *testing.T) {
	d, _, _ := newDoc(t, `<ul><li>a <b>b</b></li><li>c</li></ul><table border=1><tr><td>x<td>y</table>`, Options{})
	require.NoError(t, d.Update())
	first := d.Dump()
	d.Invalidate()
	require.NoError(t, d.Update())
	if diff := cmp.Diff(first, d.Dump()); diff != "" {
		t.Errorf("re-parse changed the tree (-first +second):\n%s", diff)
	}
}

func TestDefaultSheetParsesCleanly(t *testing.T) {
	for _, mode := range []Mode{ModeHTML, ModeDocBook} {
		d, _, _ := newDoc(t, "", Options{Mode: mode})
		assert.Zero(t, d.Errors().Len(), "%s: %v", mode, d.Errors().Lines())
		assert.NotZero(t, d.base.Len(), mode.String())
	}
}

func TestNestedListsRestartNumbering(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		src  string
		want []string
	}{
		{"html", ModeHTML, `<ol><li>a<ol><li>x<li>y</ol><li>b</ol>`, []string{"1.", "1.", "2.", "2."}},
		{"html siblings", ModeHTML, `<ol><li>a<li>b</ol><ol><li>c</ol>`, []string{"1.", "2.", "1."}},
		{"html mixed", ModeHTML, `<ol><li>a<ul><li>x</ul><li>b</ol>`, []string{"1.", "•", "2."}},
		{"docbook", ModeDocBook,
			`<article><orderedlist><listitem><para>a</para><orderedlist><listitem><para>x</para></listitem></orderedlist></listitem><listitem><para>b</para></listitem></orderedlist></article>`,
			[]string{"1.", "1.", "2."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, buf, _ := newDoc(t, tt.src, Options{Mode: tt.mode})
			require.NoError(t, d.Update())
			var got []string
			d.Root().Walk(func(b *box.Box) bool {
				if b.Generated == box.GenMarker && b.IsText() {
					got = append(got, string(b.Decode(buf).Chars))
				}
				return true
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocBookMode(t *testing.T) {
	d, _, _ := newDoc(t, "<article><title>T</title><para>hello</para><Para>x</Para></article>", Options{Mode: ModeDocBook})
	require.NoError(t, d.Update())

	para, ok := d.Idents().Lookup("para")
	require.True(t, ok)
	var found []*box.Box
	d.Root().Walk(func(b *box.Box) bool {
		if b.Tag == para {
			found = append(found, b)
		}
		return true
	})
	require.Len(t, found, 1, "XML names are case sensitive")
	assert.Equal(t, css.DisplayBlock, found[0].Style.Display)
}

func TestUserSheetFollowsDefaults(t *testing.T) {
	d, _, scr := newDoc(t, "<p>hi</p>", Options{Sheet: "p { color: #00ff00 }"})
	require.NoError(t, d.Display(full, render.Selection{}))
	op, ok := scr.TextOp("hi")
	require.True(t, ok)
	assert.Equal(t, css.RGB(0, 0xff, 0), op.Color)
}

func TestHitTestAndCaret(t *testing.T) {
	d, _, _ := newDoc(t, "<p>hello</p>", Options{})
	_, ok := d.HitTest(0, 0)
	assert.False(t, ok, "nothing is laid out yet")

	require.NoError(t, d.Update())
	c, ok := d.CaretAt(5)
	require.True(t, ok)
	off, ok := d.HitTest(c.Rect.Min.X, c.Rect.Min.Y+1)
	require.True(t, ok)
	assert.Equal(t, 5, off)

	next, ok := d.Navigator().Right(5)
	assert.True(t, ok)
	assert.Equal(t, 6, next)
}

func TestCloseUnsubscribes(t *testing.T) {
	d, buf, _ := newDoc(t, "<p>a</p>", Options{})
	require.NoError(t, d.Update())
	d.Close()
	require.NoError(t, buf.Insert(0, []byte("x")))
	assert.Error(t, d.Update())
	d.Close()
}

func TestLoadLigaturesDegrades(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	assert.Nil(t, LoadLigatures("", zap.New(core)))
	assert.Zero(t, logs.Len())

	assert.Nil(t, LoadLigatures(filepath.Join(t.TempDir(), "missing.liga"), zap.New(core)))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "ligatures disabled", logs.All()[0].Message)

	// The document still renders without the table.
	d, _, scr := newDoc(t, "<p>ffi</p>", Options{Ligatures: nil})
	require.NoError(t, d.Display(full, render.Selection{}))
	_, ok := scr.TextOp("ffi")
	assert.True(t, ok)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	opts, err := OptionsFromConfig(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, ModeHTML, opts.Mode)
	assert.Nil(t, opts.Parser)
	assert.Equal(t, css.MediaScreen, opts.Media)
	assert.Equal(t, css.White, opts.Render.Background)
	assert.Equal(t, "utf-8", opts.Charset.Name())
	assert.Nil(t, opts.Ligatures)

	cfg.Parser.DocBook = true
	opts, err = OptionsFromConfig(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, ModeDocBook, opts.Mode)

	cfg.Parser.DocBook = false
	cfg.Parser.Lenient = false
	opts, err = OptionsFromConfig(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, opts.Parser)
	assert.True(t, opts.Parser.HTMLQuirks)
	assert.False(t, opts.Parser.Lenient)

	cfg.Render.Media = "paper"
	_, err = OptionsFromConfig(cfg, nil)
	assert.Error(t, err)
}
