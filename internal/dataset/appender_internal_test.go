package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

func TestCloseInto(t *testing.T) {
	errDisk := errors.New("disk full")

	t.Run("close error is reported", func(t *testing.T) {
		var err error
		closeInto(failingCloser{err: errDisk}, &err)
		require.ErrorIs(t, err, errDisk)
		assert.Contains(t, err.Error(), "close dataset")
	})

	t.Run("earlier error wins", func(t *testing.T) {
		earlier := errors.New("write row")
		err := earlier
		closeInto(failingCloser{err: errDisk}, &err)
		assert.Equal(t, earlier, err)
	})

	t.Run("clean close keeps nil", func(t *testing.T) {
		var err error
		closeInto(failingCloser{}, &err)
		assert.NoError(t, err)
	})
}
