package orchestrator

import (
	"context"

	"github.com/cenkalti/backoff/v4"

	"github.com/vk/maestro/internal/ctxlog"
)

// retryLoop re-probes connectivity on a constant interval until it appears,
// then reruns the wave loop over the same node set. Nodes that already
// finished are skipped naturally because they are no longer pending. The
// loop exits either by settling the run or through handle cancellation.
func (o *Orchestrator) retryLoop(ctx context.Context, h *Handle) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Entering connectivity retry loop.", "interval", o.retryInterval)

	ticker := backoff.NewTicker(backoff.WithContext(backoff.NewConstantBackOff(o.retryInterval), ctx))
	defer ticker.Stop()

	for range ticker.C {
		if !o.probes.HasConnectivity(ctx) {
			logger.Debug("Still offline; will re-probe.", "interval", o.retryInterval)
			continue
		}
		logger.Info("Connectivity confirmed; resuming deferred tasks.")
		o.runWaves(ctx, true)
		// With connectivity present, a second stall can only mean failure
		// starvation, which no amount of retrying will fix. Settle.
		o.finish(ctx, h)
		return
	}

	// The ticker channel closes when the handle cancels the loop. Settle
	// the run with whatever the nodes reached.
	logger.Warn("Connectivity retry loop canceled before the run completed.")
	o.finish(ctx, h)
}
