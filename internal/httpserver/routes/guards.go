package routes

import (
	"github.com/MrSnakeDoc/domon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/domon/internal/httpserver/mw"
)

// limiterSize bounds the number of client buckets kept per limiter
const limiterSize = 10_000

func allowCIDRs(d deps.Deps) Middleware {
	return mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
}

func enforceHost(d deps.Deps) Middleware {
	return mw.EnforceHost(d.AllowedHosts, d.Logger)
}

// issueCSRF hands every page its form token; handlers verify it
func issueCSRF(deps.Deps) Middleware {
	return mw.CSRF()
}

// Mutations and the page loads that fetch the list each reach the backend
// on the visitor's behalf, so each group gets its own per-IP budget.
func limitMutations(d deps.Deps) Middleware {
	return mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.MutationBurst,
		RefillPerMin: d.MutationRefillPerMin,
		MaxEntries:   limiterSize,
		TrustProxy:   d.TrustProxy,
		Logger:       d.Logger,
	})
}

func limitReads(d deps.Deps) Middleware {
	return mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.ReadBurst,
		RefillPerMin: d.ReadRefillPerMin,
		MaxEntries:   limiterSize,
		TrustProxy:   d.TrustProxy,
		Logger:       d.Logger,
	})
}
