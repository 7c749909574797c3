package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/domon/internal/httpserver/deps"
)

// healthzResponse describes the process, not the backend: a dashboard
// whose backend is down is still alive.
type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Domains       int     `json:"domains"`
	ReadOnly      bool    `json:"read_only"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

// Healthz answers as long as the process serves requests
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		resp := healthzResponse{
			Status:        "ok",
			UptimeSeconds: d.Now().Sub(d.StartTime).Seconds(),
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
		}
		if d.Dashboard != nil {
			resp.Domains = d.Dashboard.Store().Count()
			resp.ReadOnly = d.Dashboard.ReadOnly()
		}
		writeJSON(w, d, http.StatusOK, resp)
	}
}
