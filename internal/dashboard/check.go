package dashboard

import (
	"context"
	"errors"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/domon/internal/gateway"
	"github.com/MrSnakeDoc/domon/internal/logger"
)

// checkWorkers bounds concurrent health checks
const checkWorkers = 10

// ErrCheckUnsupported is returned when the source cannot run health checks
var ErrCheckUnsupported = errors.New("this data source cannot run health checks")

const invalidDomainMessage = "invalid url format. please enter a valid domain (e.g. example.com)"

// CheckCache reuses recent health-check reports
type CheckCache interface {
	Get(ctx context.Context, name string) (gateway.CheckReport, bool, error)
	Put(ctx context.Context, report gateway.CheckReport) error
}

// CheckResult pairs a domain with its report or error
type CheckResult struct {
	Domain string
	Report gateway.CheckReport
	Err    error
}

// ValidateCheckTarget normalizes name and verifies it is a registrable
// domain under one of the allowed TLDs. An empty allow-list accepts any
// public suffix.
func ValidateCheckTarget(name string, allowed []string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", &gateway.ValidationError{Op: "check_domain", Message: "domain parameter is required"}
	}

	dn, err := publicsuffix.Parse(name)
	if err != nil || dn.SLD == "" {
		return "", &gateway.ValidationError{Op: "check_domain", Message: invalidDomainMessage}
	}
	if len(allowed) == 0 {
		return name, nil
	}
	for _, tld := range allowed {
		if dn.TLD == tld || strings.HasSuffix(dn.TLD, "."+tld) {
			return name, nil
		}
	}
	return "", &gateway.ValidationError{Op: "check_domain", Message: invalidDomainMessage}
}

// Check runs a live health check of one domain
func (d *Dashboard) Check(ctx context.Context, name string) (gateway.CheckReport, error) {
	checker, ok := d.gw.(gateway.Checker)
	if !ok {
		return gateway.CheckReport{}, ErrCheckUnsupported
	}

	name, err := ValidateCheckTarget(name, d.tlds)
	if err != nil {
		return gateway.CheckReport{}, err
	}

	if d.checks != nil {
		cached, ok, err := d.checks.Get(ctx, name)
		if err != nil {
			d.log.Warn("check cache read failed", logger.String("domain", name), logger.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	report, err := checker.CheckDomain(ctx, name)
	if err != nil {
		d.log.Warn("health check failed", logger.String("domain", name), logger.Error(err))
		return gateway.CheckReport{}, err
	}

	if d.checks != nil {
		if err := d.checks.Put(ctx, report); err != nil {
			d.log.Warn("check cache write failed", logger.String("domain", name), logger.Error(err))
		}
	}
	return report, nil
}

// CheckMany checks every name with at most checkWorkers in flight.
// Results keep the input order; a failing check does not stop the others.
func (d *Dashboard) CheckMany(ctx context.Context, names []string) []CheckResult {
	results := make([]CheckResult, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkWorkers)
	for i, name := range names {
		g.Go(func() error {
			report, err := d.Check(gctx, name)
			results[i] = CheckResult{Domain: name, Report: report, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
