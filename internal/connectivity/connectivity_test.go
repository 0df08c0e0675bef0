package connectivity

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProbe is a canned-answer probe for aggregator tests.
type stubProbe struct {
	name string
	ok   bool
	err  error
}

func (p *stubProbe) Name() string { return p.name }

func (p *stubProbe) Check(ctx context.Context) (bool, error) {
	return p.ok, p.err
}

func TestAggregator(t *testing.T) {
	ctx := context.Background()

	t.Run("empty probe set reports offline", func(t *testing.T) {
		agg := NewAggregator()
		assert.True(t, agg.Empty())
		assert.False(t, agg.HasConnectivity(ctx))
	})

	t.Run("all probes online", func(t *testing.T) {
		agg := NewAggregator(
			&stubProbe{name: "one", ok: true},
			&stubProbe{name: "two", ok: true},
		)
		assert.True(t, agg.HasConnectivity(ctx))
	})

	t.Run("one offline probe vetoes the rest", func(t *testing.T) {
		agg := NewAggregator(
			&stubProbe{name: "one", ok: true},
			&stubProbe{name: "two", ok: false},
		)
		assert.False(t, agg.HasConnectivity(ctx))
	})

	t.Run("a probe error counts as offline", func(t *testing.T) {
		agg := NewAggregator(
			&stubProbe{name: "one", ok: true},
			&stubProbe{name: "two", err: errors.New("dns exploded")},
		)
		assert.False(t, agg.HasConnectivity(ctx))
	})
}

func TestHTTPProbe(t *testing.T) {
	ctx := context.Background()

	t.Run("2xx means online", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		ok, err := NewHTTPProbe("test", srv.URL, time.Second).Check(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("5xx means offline", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		ok, err := NewHTTPProbe("test", srv.URL, time.Second).Check(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unreachable server errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		_, err := NewHTTPProbe("test", url, time.Second).Check(ctx)
		assert.Error(t, err)
	})
}

func TestTCPProbe(t *testing.T) {
	ctx := context.Background()

	t.Run("open port means online", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		ok, err := NewTCPProbe("test", ln.Addr().String(), time.Second).Check(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("closed port means offline without an error", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := ln.Addr().String()
		require.NoError(t, ln.Close())

		ok, err := NewTCPProbe("test", addr, time.Second).Check(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
