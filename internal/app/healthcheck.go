package app

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vk/maestro/internal/graph"
)

// nodeStatus is the per-task entry in the healthcheck response.
type nodeStatus struct {
	Name      string `json:"name"`
	State     string `json:"state"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

// healthResponse is the healthcheck payload: liveness plus, when a run is
// active, its node states.
type healthResponse struct {
	Status string       `json:"status"`
	RunID  string       `json:"run_id,omitempty"`
	Nodes  []nodeStatus `json:"nodes,omitempty"`
}

// healthHandler reports process liveness and the state of the current run.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)

	resp := healthResponse{Status: "ok"}
	if orch := a.currentOrchestrator(); orch != nil {
		resp.RunID = orch.ID().String()
		for _, n := range orch.Graph().Nodes() {
			state := n.State()
			status := nodeStatus{
				Name:  n.Name(),
				State: state.String(),
			}
			// elapsed and err are written by the in-flight run; the final
			// state store is what makes them safe to read.
			if state == graph.Completed || state == graph.Failed {
				status.ElapsedMs = n.Elapsed().Milliseconds()
				if err := n.Err(); err != nil {
					status.Error = err.Error()
				}
			}
			resp.Nodes = append(resp.Nodes, status)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		a.logger.Error("Failed to encode health response", "error", err)
	}
}

// startHealthcheckServer initializes and runs the health check HTTP server.
func (a *App) startHealthcheckServer(port int) {
	a.logger.Debug("Configuring health check server.")
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)

	addr := fmt.Sprintf(":%d", port)

	go func() {
		a.logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			a.logger.Error("Health check server failed", "error", err)
		}
	}()
}
