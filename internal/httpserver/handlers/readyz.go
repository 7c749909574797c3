package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/domon/internal/gateway"
	"github.com/MrSnakeDoc/domon/internal/httpserver/deps"
)

type componentStatus struct {
	OK            bool   `json:"ok"`
	DomainsLoaded *int   `json:"domains_loaded,omitempty"`
	LastReload    string `json:"last_reload,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Error         string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready      bool                       `json:"ready"`
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Readyz reports 200 once the store holds data (from the backend or a
// restored snapshot) and 503 before that. A failing backend or redis only
// degrades the mode.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":     storeStatus(d),
			"backend":   backendStatus(d),
			"snapshots": snapshotStatus(r.Context(), d),
		}

		resp := readyzResponse{
			Ready:      components["store"].OK,
			Mode:       mode(components),
			Components: components,
		}
		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, d, status, resp)
	}
}

func mode(components map[string]componentStatus) string {
	switch {
	case !components["store"].OK:
		return "critical"
	case !components["backend"].OK, !components["snapshots"].OK:
		return "degraded"
	default:
		return "ok"
	}
}

func storeStatus(d deps.Deps) componentStatus {
	store := d.Dashboard.Store()
	count := store.Count()
	last := store.LastReload()

	s := componentStatus{OK: !last.IsZero(), DomainsLoaded: &count, LastReload: "never"}
	if !last.IsZero() {
		s.LastReload = last.Format(time.RFC3339)
	}
	return s
}

func backendStatus(d deps.Deps) componentStatus {
	if err := d.Dashboard.LastError(); err != nil {
		return componentStatus{OK: false, Error: gateway.Notice(err)}
	}
	return componentStatus{OK: true}
}

func snapshotStatus(ctx context.Context, d deps.Deps) componentStatus {
	if d.Snapshots == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := d.Snapshots.Ping(ctx); err != nil {
		return componentStatus{OK: false, Mode: "unavailable", Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: "redis"}
}
