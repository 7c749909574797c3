package version

import (
	"runtime"
	"time"
)

// Overridden at build time with -ldflags "-X github.com/MrSnakeDoc/domon/internal/version.Version=..."
var (
	Version   = "dev"                           // ex: v0.3.0
	Commit    = "none"                          // ex: 4f1c2ab
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2026-10-01T09:12:00Z
	GoVersion = runtime.Version()
)

// String renders the build metadata on one line.
func String() string {
	return "domon " + Version + " (commit=" + Commit + ", built=" + BuildDate + ", go=" + GoVersion + ")"
}
