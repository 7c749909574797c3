package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/domon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/domon/internal/logger"
)

// Reload queues a background reload of the domain list
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.TriggerReload == nil {
			http.Error(w, "reload is not available", http.StatusServiceUnavailable)
			return
		}

		if !d.TriggerReload() {
			d.Logger.Warn("reload already pending", logger.String("remote_ip", r.RemoteAddr))
			writeText(w, d, http.StatusTooManyRequests, "Reload already in progress, please wait\n")
			return
		}

		d.Logger.Info("manual reload triggered via endpoint", logger.String("remote_ip", r.RemoteAddr))
		writeText(w, d, http.StatusAccepted, "Reload triggered\n")
	}
}
