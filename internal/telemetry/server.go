package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/genomectl/repogenome/internal/logging"
)

// ServeHTTP starts a /metrics listener on addr in the background.
// Grounded on the teacher's cmd/cie metrics.http.start mount: fire and
// forget, log and return rather than block the calling command.
func ServeHTTP(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		logging.Info("metrics http listener starting", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logging.Error("metrics http listener stopped", "error", err)
		}
	}()
}
