package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/maestro/internal/task"
)

// newTestTask builds an always-succeeding task for graph structure tests.
func newTestTask(name string, opts ...task.Option) task.Task {
	return task.New(name, func(ctx context.Context) (bool, error) {
		return true, nil
	}, opts...)
}

func TestBuilderAdd(t *testing.T) {
	t.Run("accumulates dependencies across calls", func(t *testing.T) {
		a := newTestTask("a")
		b := newTestTask("b")
		c := newTestTask("c")

		builder := NewBuilder()
		require.NoError(t, builder.Add(a, b))
		require.NoError(t, builder.Add(a, c))

		g := builder.Build()
		nodeA, ok := g.Node("a")
		require.True(t, ok)
		assert.Len(t, nodeA.Dependencies(), 2)
	})

	t.Run("duplicate edges are ignored", func(t *testing.T) {
		a := newTestTask("a")
		b := newTestTask("b")

		builder := NewBuilder()
		require.NoError(t, builder.Add(a, b))
		require.NoError(t, builder.Add(a, b))

		g := builder.Build()
		nodeA, ok := g.Node("a")
		require.True(t, ok)
		assert.Len(t, nodeA.Dependencies(), 1)
	})

	t.Run("nil task is rejected", func(t *testing.T) {
		builder := NewBuilder()
		assert.Error(t, builder.Add(nil))
		assert.Error(t, builder.Add(newTestTask("a"), nil))
	})

	t.Run("self dependency is rejected", func(t *testing.T) {
		a := newTestTask("a")
		builder := NewBuilder()

		err := builder.Add(a, a)
		var cyclic *CyclicError
		require.ErrorAs(t, err, &cyclic)
		assert.Equal(t, []string{"a", "a"}, cyclic.Path)
	})

	t.Run("direct cycle is rejected with full path", func(t *testing.T) {
		a := newTestTask("a")
		b := newTestTask("b")
		builder := NewBuilder()
		require.NoError(t, builder.Add(a, b))

		err := builder.Add(b, a)
		var cyclic *CyclicError
		require.ErrorAs(t, err, &cyclic)
		assert.Equal(t, []string{"b", "a", "b"}, cyclic.Path)
	})

	t.Run("transitive cycle is rejected", func(t *testing.T) {
		a := newTestTask("a")
		b := newTestTask("b")
		c := newTestTask("c")
		builder := NewBuilder()
		require.NoError(t, builder.Add(a, b))
		require.NoError(t, builder.Add(b, c))

		err := builder.Add(c, a)
		var cyclic *CyclicError
		require.ErrorAs(t, err, &cyclic)
		assert.Equal(t, []string{"c", "a", "b", "c"}, cyclic.Path)
	})

	t.Run("rejected call commits none of its edges", func(t *testing.T) {
		a := newTestTask("a")
		b := newTestTask("b")
		c := newTestTask("c")
		builder := NewBuilder()
		require.NoError(t, builder.Add(a, b))

		// First edge is valid, second would close a cycle; the whole call
		// must roll back.
		err := builder.Add(b, c, a)
		var cyclic *CyclicError
		require.ErrorAs(t, err, &cyclic)

		g := builder.Build()
		nodeB, ok := g.Node("b")
		require.True(t, ok)
		assert.Empty(t, nodeB.Dependencies())
		_, ok = g.Node("c")
		assert.False(t, ok, "a task seen only in the rejected call must not materialize")
	})

	t.Run("nil dependency rolls the call back", func(t *testing.T) {
		a := newTestTask("a")
		b := newTestTask("b")
		builder := NewBuilder()

		require.Error(t, builder.Add(a, b, nil))

		g := builder.Build()
		assert.Zero(t, g.Len())
	})

	t.Run("rejected edge leaves the builder untouched", func(t *testing.T) {
		a := newTestTask("a")
		b := newTestTask("b")
		c := newTestTask("c")
		builder := NewBuilder()
		require.NoError(t, builder.Add(a, b))

		require.Error(t, builder.Add(b, a))

		// The builder must keep accepting valid edges and build
		// exactly what was committed before the rejection.
		require.NoError(t, builder.Add(b, c))
		g := builder.Build()

		nodeB, ok := g.Node("b")
		require.True(t, ok)
		require.Len(t, nodeB.Dependencies(), 1)
		assert.Equal(t, "c", nodeB.Dependencies()[0].Name())
	})
}

func TestBuilderBuild(t *testing.T) {
	t.Run("materializes dependency-only tasks", func(t *testing.T) {
		a := newTestTask("a")
		b := newTestTask("b")

		builder := NewBuilder()
		require.NoError(t, builder.Add(a, b))

		g := builder.Build()
		assert.Equal(t, 2, g.Len())
		_, ok := g.Node("b")
		assert.True(t, ok)
	})

	t.Run("deduplicates nodes by task identity", func(t *testing.T) {
		a := newTestTask("a")
		b := newTestTask("b")
		c := newTestTask("c")

		builder := NewBuilder()
		require.NoError(t, builder.Add(b, a))
		require.NoError(t, builder.Add(c, a))

		g := builder.Build()
		assert.Equal(t, 3, g.Len())

		nodeB, _ := g.Node("b")
		nodeC, _ := g.Node("c")
		assert.Same(t, nodeB.Dependencies()[0], nodeC.Dependencies()[0])
	})

	t.Run("detects network requirement", func(t *testing.T) {
		builder := NewBuilder()
		require.NoError(t, builder.Add(newTestTask("a")))
		require.NoError(t, builder.Add(newTestTask("net", task.RequiresNetwork())))
		assert.True(t, builder.Build().RequiresNetwork())
	})

	t.Run("disabled network task does not set the flag", func(t *testing.T) {
		builder := NewBuilder()
		require.NoError(t, builder.Add(newTestTask("a")))
		require.NoError(t, builder.Add(newTestTask("net", task.RequiresNetwork(), task.Disabled())))
		assert.False(t, builder.Build().RequiresNetwork())
	})
}
