package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	tk := New("boot", nil)

	assert.Equal(t, "boot", tk.Name())
	assert.True(t, tk.Enabled())
	assert.Zero(t, tk.Timeout())
	assert.False(t, tk.ThreadSafe())
	assert.False(t, tk.RequiresNetwork())

	// A nil operation is a successful no-op.
	ok, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOptions(t *testing.T) {
	tk := New("boot", nil,
		WithTimeout(3*time.Second),
		ThreadSafe(),
		RequiresNetwork(),
		Disabled(),
	)

	assert.Equal(t, 3*time.Second, tk.Timeout())
	assert.True(t, tk.ThreadSafe())
	assert.True(t, tk.RequiresNetwork())
	assert.False(t, tk.Enabled())
}

func TestWithTimeoutNegativeClamped(t *testing.T) {
	tk := New("boot", nil, WithTimeout(-time.Second))
	assert.Zero(t, tk.Timeout())
}

func TestRunDelegates(t *testing.T) {
	called := false
	tk := New("boot", func(ctx context.Context) (bool, error) {
		called = true
		return false, nil
	})

	ok, err := tk.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, called)
}
