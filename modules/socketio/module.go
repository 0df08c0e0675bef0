// Package socketio provides a runner that announces startup progress over a
// Socket.IO connection: it connects, optionally emits an event, and waits
// for an acknowledging event from the server.
package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/maestro/internal/ctxlog"
	"github.com/vk/maestro/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the socketio runner.
type Input struct {
	URL       string `hcl:"url"`
	Namespace string `hcl:"namespace,optional"`
	// EmitEvent, when set, is emitted right after the connection succeeds.
	EmitEvent string            `hcl:"emit_event,optional"`
	EmitData  map[string]string `hcl:"emit_data,optional"`
	// AckEvent, when set, must arrive from the server before the task
	// counts as done; otherwise a successful connect is enough.
	AckEvent           string `hcl:"ack_event,optional"`
	WaitTimeout        string `hcl:"wait_timeout,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

// opResult is a private struct to safely pass outcomes through the done channel.
type opResult struct {
	ok  bool
	err error
}

// OnRunSocketIO is the handler for the 'socketio' runner.
func OnRunSocketIO(ctx context.Context, input any) (bool, error) {
	in := input.(*Input)
	logger := ctxlog.FromContext(ctx).With("runner", "socketio", "url", in.URL, "ackEvent", in.AckEvent)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	waitTimeout := 10 * time.Second
	if in.WaitTimeout != "" {
		parsed, err := time.ParseDuration(in.WaitTimeout)
		if err != nil {
			logger.Warn("Failed to parse wait_timeout, using default 10s", "input", in.WaitTimeout, "error", err)
		} else {
			waitTimeout = parsed
		}
	}

	parsedURL, err := url.Parse(in.URL)
	if err != nil {
		return false, fmt.Errorf("failed to parse URL: %w", err)
	}

	var isConnected atomic.Bool
	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if in.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(in.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Connected", "namespace", in.Namespace, "sid", io.Id())
		if in.EmitEvent != "" {
			logger.Debug("Emitting event", "event", in.EmitEvent)
			io.Emit(in.EmitEvent, in.EmitData)
		}
		if in.AckEvent == "" {
			done <- opResult{ok: true}
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		if err, ok := errs[0].(error); ok {
			done <- opResult{err: err}
			return
		}
		done <- opResult{err: fmt.Errorf("socket.io connect error: %v", errs[0])}
	})

	if in.AckEvent != "" {
		io.On(types.EventName(in.AckEvent), func(...any) {
			done <- opResult{ok: true}
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return false, fmt.Errorf("timed out after connecting while waiting for event %q", in.AckEvent)
		}
		return false, fmt.Errorf("timed out while waiting for initial connection to %s", baseURL)
	case res := <-done:
		return res.ok, res.err
	}
}

// Register registers the handler with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("socketio", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunSocketIO,
	})
}
