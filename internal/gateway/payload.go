package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/MrSnakeDoc/domon/internal/domain"
	"github.com/MrSnakeDoc/domon/internal/utils"
)

const readOnlyMessage = "read-only data source"

// Payload serves a domain list injected at startup (a JSON file in the
// GET /api/domains shape). It never changes; every mutation fails.
type Payload struct {
	domains []domain.RawDomain
}

var (
	_ Gateway  = (*Payload)(nil)
	_ ReadOnly = (*Payload)(nil)
)

// LoadPayload reads a JSON payload file
func LoadPayload(path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open payload file: %w", err)
	}
	defer utils.Close(f)

	return DecodePayload(f)
}

// DecodePayload reads a JSON array of domain entries
func DecodePayload(r io.Reader) (*Payload, error) {
	var raws []domain.RawDomain
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return &Payload{domains: raws}, nil
}

// Domains returns a copy of the injected list
func (p *Payload) Domains(context.Context) ([]domain.RawDomain, error) {
	out := make([]domain.RawDomain, len(p.domains))
	for i, d := range p.domains {
		out[i] = cloneRaw(d)
	}
	return out, nil
}

func (p *Payload) AddDomain(context.Context, string) (string, error) {
	return "", &OperationError{Op: "add_domain", Message: readOnlyMessage}
}

func (p *Payload) RemoveDomain(context.Context, string) (string, error) {
	return "", &OperationError{Op: "remove_domain", Message: readOnlyMessage}
}

func (p *Payload) BulkUpload(context.Context, string, io.Reader) (string, error) {
	return "", &OperationError{Op: "bulk_upload", Message: readOnlyMessage}
}

func (p *Payload) Logout(context.Context) error { return nil }

// ReadOnly is always true
func (p *Payload) ReadOnly() bool { return true }
