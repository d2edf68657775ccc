package diag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorBuffer(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := NewErrorBuffer(zap.New(core))
	require.NoError(t, b.Err())

	b.Report("page.html", 3, "unmatched end tag 'b'")
	b.Report("", 7, "unsupported property 'zoom'")

	assert.Equal(t, ErrorBufferName, b.Name())
	assert.Equal(t, []string{
		"page.html:3: unmatched end tag 'b'",
		"7: unsupported property 'zoom'",
	}, b.Lines())
	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, "unmatched end tag 'b'", logs.All()[0].Message)

	err := b.Err()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)

	b.Reset()
	assert.Zero(t, b.Len())
}

func TestAbortFunc(t *testing.T) {
	var f AbortFunc
	assert.NoError(t, f.Check())
	n := 0
	f = func() bool { n++; return n > 2 }
	assert.NoError(t, f.Check())
	assert.NoError(t, f.Check())
	assert.True(t, errors.Is(f.Check(), ErrAborted))
}
