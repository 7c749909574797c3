// Package gateway talks to the monitoring backend.
//
// The dashboard only sees the Gateway interface; API is the live backend,
// Fixture and Payload are local sources used for demos and offline runs.
package gateway

import (
	"context"
	"io"

	"github.com/MrSnakeDoc/domon/internal/domain"
)

// Gateway is the contract between the dashboard and a domain source.
// Every method blocks only the calling goroutine.
type Gateway interface {
	// Domains returns the full monitored set in backend order.
	Domains(ctx context.Context) ([]domain.RawDomain, error)
	// AddDomain asks the backend to monitor name. Returns the backend message.
	AddDomain(ctx context.Context, name string) (string, error)
	// RemoveDomain stops monitoring name. Returns the backend message.
	RemoveDomain(ctx context.Context, name string) (string, error)
	// BulkUpload sends a file of domains. The aggregate message is returned
	// on success and carried by the error on failure.
	BulkUpload(ctx context.Context, filename string, r io.Reader) (string, error)
	// Logout ends the backend session.
	Logout(ctx context.Context) error
}

// Authenticator is implemented by sources that need a login.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Checker runs a live health check of one domain.
type Checker interface {
	CheckDomain(ctx context.Context, name string) (CheckReport, error)
}

// Simulator is implemented by local sources whose uptime can be jittered
// for demos.
type Simulator interface {
	Simulated() bool
}

// ReadOnly is implemented by sources that reject every mutation.
type ReadOnly interface {
	ReadOnly() bool
}

// CheckReport is the result of a single-domain health check.
type CheckReport struct {
	Domain            string `json:"domain"`
	StatusCode        any    `json:"status_code"` // int, or "N/A" when the request failed
	CertificateStatus string `json:"certificate_status"`
	CertificateExpiry string `json:"certificate_expiry"`
	Issuer            string `json:"issuer"`
	Healthy           bool   `json:"healthy"`
	Error             string `json:"error,omitempty"`
}
