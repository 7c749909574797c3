package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/domon/internal/dashboard"
	"github.com/MrSnakeDoc/domon/internal/logger"
	"github.com/MrSnakeDoc/domon/internal/metrics"
	"github.com/MrSnakeDoc/domon/internal/render"
)

// Pinger is a dependency readyz can check
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts []string // Host headers allowed to reach the dashboard
	AllowedCIDRS []string // IPs allowed to reach the ops endpoints
	TrustProxy   bool     // true if running behind a trusted reverse proxy

	Dashboard     *dashboard.Dashboard // the single application-state object
	Pages         *render.HTML         // parsed page templates
	Metrics       *metrics.Metrics     // nil disables /metrics
	Snapshots     Pinger               // redis snapshot store, nil when disabled
	TriggerReload func() bool          // queues a background reload, false if one is pending

	BulkMaxBytes         int64 // max accepted bulk upload
	MutationBurst        int   // per-IP mutation burst
	MutationRefillPerMin int   // per-IP mutation refill rate
	ReadBurst            int   // per-IP burst of list-fetching page loads
	ReadRefillPerMin     int   // per-IP refill rate of those page loads
}

// Now returns the configured clock
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
