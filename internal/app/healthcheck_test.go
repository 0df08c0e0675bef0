package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/maestro/internal/connectivity"
	"github.com/vk/maestro/internal/graph"
	"github.com/vk/maestro/internal/orchestrator"
	"github.com/vk/maestro/internal/task"
)

func newTestApp() *App {
	return &App{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func getHealth(t *testing.T, a *App) healthResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	a.healthHandler(rec, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, 200, rec.Code)

	var resp healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthHandler(t *testing.T) {
	t.Run("no active run", func(t *testing.T) {
		resp := getHealth(t, newTestApp())
		assert.Equal(t, "ok", resp.Status)
		assert.Empty(t, resp.RunID)
		assert.Empty(t, resp.Nodes)
	})

	t.Run("reports node states mid-run", func(t *testing.T) {
		release := make(chan struct{})
		slow := task.New("slow", func(ctx context.Context) (bool, error) {
			<-release
			return true, nil
		}, task.ThreadSafe())
		fast := task.New("fast", func(ctx context.Context) (bool, error) {
			return true, nil
		}, task.ThreadSafe())

		builder := graph.NewBuilder()
		require.NoError(t, builder.Add(slow))
		require.NoError(t, builder.Add(fast))
		g := builder.Build()

		orch := orchestrator.New(g, connectivity.NewAggregator())
		a := newTestApp()
		a.setOrchestrator(orch)

		handles := make(chan *orchestrator.Handle, 1)
		go func() {
			h, err := orch.Start(context.Background())
			if err == nil {
				handles <- h
			}
		}()

		// Wait for the wave to be in flight: slow blocked, fast done.
		slowNode, ok := g.Node("slow")
		require.True(t, ok)
		fastNode, ok := g.Node("fast")
		require.True(t, ok)
		require.Eventually(t, func() bool {
			return slowNode.State() == graph.Running && fastNode.State() == graph.Completed
		}, 5*time.Second, time.Millisecond)

		resp := getHealth(t, a)
		assert.Equal(t, orch.ID().String(), resp.RunID)

		byName := make(map[string]nodeStatus, len(resp.Nodes))
		for _, n := range resp.Nodes {
			byName[n.Name] = n
		}
		require.Contains(t, byName, "slow")
		require.Contains(t, byName, "fast")

		// A running node exposes only its state; elapsed and error are
		// reported once it reaches a final state.
		assert.Equal(t, "running", byName["slow"].State)
		assert.Zero(t, byName["slow"].ElapsedMs)
		assert.Empty(t, byName["slow"].Error)
		assert.Equal(t, "completed", byName["fast"].State)

		close(release)
		select {
		case h := <-handles:
			<-h.Done()
			assert.True(t, h.Success())
		case <-time.After(5 * time.Second):
			t.Fatal("run did not settle")
		}
	})

	t.Run("failed node reports its error", func(t *testing.T) {
		bad := task.New("bad", func(ctx context.Context) (bool, error) {
			return false, errors.New("kaboom")
		})
		builder := graph.NewBuilder()
		require.NoError(t, builder.Add(bad))

		orch := orchestrator.New(builder.Build(), connectivity.NewAggregator())
		a := newTestApp()
		a.setOrchestrator(orch)

		h, err := orch.Start(context.Background())
		require.NoError(t, err)
		<-h.Done()

		resp := getHealth(t, a)
		require.Len(t, resp.Nodes, 1)
		assert.Equal(t, "failed", resp.Nodes[0].State)
		assert.Contains(t, resp.Nodes[0].Error, "kaboom")
	})
}
