package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverAsError(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		fn := func() (err error) {
			defer RecoverAsError(&err)
			panic("test panic")
		}

		err := fn()
		require.Error(t, err)

		var panicErr *PanicError
		require.True(t, errors.As(err, &panicErr))
		assert.Equal(t, "test panic", panicErr.Value)
		assert.NotEmpty(t, panicErr.StackTrace)
	})

	t.Run("no error when no panic", func(t *testing.T) {
		fn := func() (err error) {
			defer RecoverAsError(&err)
			return nil
		}
		assert.NoError(t, fn())
	})

	t.Run("preserves original error", func(t *testing.T) {
		originalErr := errors.New("original error")
		fn := func() (err error) {
			defer RecoverAsError(&err)
			return originalErr
		}
		assert.Same(t, originalErr, fn())
	})
}

func TestRecoverWithCallback(t *testing.T) {
	t.Run("calls callback on panic", func(t *testing.T) {
		var capturedErr error
		fn := func() {
			defer RecoverWithCallback(func(err error) {
				capturedErr = err
			})
			panic("callback test")
		}

		fn()

		var panicErr *PanicError
		require.True(t, errors.As(capturedErr, &panicErr))
		assert.Equal(t, "callback test", panicErr.Value)
	})

	t.Run("handles nil callback", func(t *testing.T) {
		fn := func() {
			defer RecoverWithCallback(nil)
			panic("nil callback test")
		}

		assert.NotPanics(t, fn)
	})
}

func TestSafeGo(t *testing.T) {
	t.Run("executes function without panic", func(t *testing.T) {
		done := make(chan struct{})
		SafeGo(func() {
			close(done)
		}, nil)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("function did not complete")
		}
	})

	t.Run("recovers from panic and calls error handler", func(t *testing.T) {
		errCh := make(chan error, 1)
		SafeGo(func() {
			panic("safe go panic")
		}, func(err error) {
			errCh <- err
		})

		select {
		case err := <-errCh:
			var panicErr *PanicError
			assert.True(t, errors.As(err, &panicErr))
		case <-time.After(time.Second):
			t.Fatal("error handler was not called")
		}
	})
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "test value"}
	assert.Equal(t, "panic: test value", err.Error())
}
