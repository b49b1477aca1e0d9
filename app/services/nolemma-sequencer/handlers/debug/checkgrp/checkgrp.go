// Package checkgrp implements the health check endpoints for the
// Kubernetes/process supervisor liveness and readiness probes.
package checkgrp

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// Handlers manages the set of check endpoints.
type Handlers struct {
	Build string
	Log   *zap.SugaredLogger
}

// Readiness reports whether the service is ready to accept traffic. The
// sequencer has no external dependency to ping; it's ready as soon as
// it's listening.
func (h Handlers) Readiness(w http.ResponseWriter, r *http.Request) {
	status := struct {
		Status string `json:"status"`
	}{
		Status: "OK",
	}

	json.NewEncoder(w).Encode(status)
}

// Liveness reports process-level info used to confirm the service hasn't
// wedged.
func (h Handlers) Liveness(w http.ResponseWriter, r *http.Request) {
	host, err := os.Hostname()
	if err != nil {
		host = "unavailable"
	}

	info := struct {
		Status    string `json:"status"`
		Build     string `json:"build"`
		Host      string `json:"host"`
		Timestamp string `json:"timestamp"`
	}{
		Status:    "up",
		Build:     h.Build,
		Host:      host,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	json.NewEncoder(w).Encode(info)
}
