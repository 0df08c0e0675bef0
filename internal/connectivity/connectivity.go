// Package connectivity answers the single question "is there a network
// connection right now" by aggregating zero or more caller-supplied probes.
package connectivity

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/vk/maestro/internal/ctxlog"
)

// Probe is an external collaborator that checks for network connectivity.
type Probe interface {
	// Name identifies the probe in logs.
	Name() string
	// Check reports whether the probe currently sees a usable connection.
	Check(ctx context.Context) (bool, error)
}

// Aggregator queries all configured probes concurrently and ANDs their
// answers. A probe error counts as "no connectivity" rather than aborting
// the caller.
type Aggregator struct {
	probes []Probe
}

// NewAggregator builds an aggregator over the given probes.
func NewAggregator(probes ...Probe) *Aggregator {
	return &Aggregator{probes: probes}
}

// Empty reports whether no probes are configured. With no probe there is no
// way to confirm connectivity, so HasConnectivity always answers false.
func (a *Aggregator) Empty() bool { return len(a.probes) == 0 }

// HasConnectivity runs every probe concurrently and returns true only if
// all of them report a connection. The conservative default for an empty
// probe set is false.
func (a *Aggregator) HasConnectivity(ctx context.Context) bool {
	if len(a.probes) == 0 {
		return false
	}

	logger := ctxlog.FromContext(ctx)

	var offline atomic.Bool
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range a.probes {
		g.Go(func() error {
			ok, err := p.Check(gctx)
			if err != nil {
				logger.Warn("Connectivity probe errored; treating as offline.", "probe", p.Name(), "error", err)
				offline.Store(true)
				return nil
			}
			if !ok {
				logger.Debug("Connectivity probe reported offline.", "probe", p.Name())
				offline.Store(true)
			}
			return nil
		})
	}
	// Probe errors are swallowed above, so Wait never returns one.
	_ = g.Wait()

	return !offline.Load()
}
