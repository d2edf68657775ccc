package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/qemacs/qemacs-sub000/pkg/config"
)

func openViewer(t *testing.T, content string) *viewer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	cfg := config.NewDefaultConfig()
	cfg.Render.Width, cfg.Render.Height = 300, 200
	cfg.Render.FontSize = 16
	v, err := newViewer(path, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(v.close)
	return v
}

func TestViewerCaretMoves(t *testing.T) {
	v := openViewer(t, "<p>hello world</p>")
	assert.False(t, v.key(moveRight), "no tree before the first frame")

	_, err := v.frame()
	require.NoError(t, err)
	c, ok := v.doc.CaretAt(3)
	require.True(t, ok)
	require.True(t, v.click(c.Rect.Min.X, c.Rect.Min.Y+1))
	assert.Equal(t, 3, v.caret)

	require.True(t, v.key(moveRight))
	assert.Equal(t, 4, v.caret)
	require.True(t, v.key(moveLeft))
	assert.Equal(t, 3, v.caret)

	assert.False(t, v.key(moveHome), "already at the start of the line")
	require.True(t, v.key(moveEnd))
	assert.Greater(t, v.caret, 3)
	require.True(t, v.key(moveHome))
	assert.Equal(t, 3, v.caret)
	assert.Contains(t, v.status(), "offset")
}

func TestViewerFrameDrawsCaret(t *testing.T) {
	v := openViewer(t, "<p>abc</p>")
	_, err := v.frame()
	require.NoError(t, err)
	c, ok := v.doc.CaretAt(3)
	require.True(t, ok)
	v.caret = 3
	withCaret, err := v.frame()
	require.NoError(t, err)
	px := withCaret.RGBAAt(c.Rect.Min.X, c.Rect.Min.Y+1)

	v.caret = 5
	img, err := v.frame()
	require.NoError(t, err)
	assert.NotEqual(t, px, img.RGBAAt(c.Rect.Min.X, c.Rect.Min.Y+1), "the caret moved away")
}

func TestViewerReload(t *testing.T) {
	v := openViewer(t, "<p>first</p>")
	_, err := v.frame()
	require.NoError(t, err)
	require.True(t, v.doc.UpToDate())

	require.NoError(t, os.WriteFile(v.path, []byte("<p>second version</p>"), 0o644))
	require.NoError(t, v.reload())
	assert.False(t, v.doc.UpToDate())
	_, err = v.frame()
	require.NoError(t, err)
	assert.Contains(t, v.doc.Dump(), "second version")
}
