// Package dashboard owns the application state: the domain store, the
// current query and filter, and the last load error. Every front end (HTTP
// handlers, CLI commands) goes through a single Dashboard.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/domon/internal/domain"
	"github.com/MrSnakeDoc/domon/internal/gateway"
	"github.com/MrSnakeDoc/domon/internal/index"
	"github.com/MrSnakeDoc/domon/internal/logger"
	"github.com/MrSnakeDoc/domon/internal/metrics"
)

// LoginPath is where a user lands after logout or an expired session
const LoginPath = "/login"

// ErrNotSimulated is returned by Refresh on a live data source
var ErrNotSimulated = errors.New("uptime refresh is only available on demo data")

// ErrUnknownDomain is returned when a domain is not in the store
var ErrUnknownDomain = errors.New("unknown domain")

// Demo jitter bounds
const (
	jitterMin   = 96.0
	jitterMax   = 99.99
	jitterSpan  = 0.2
	jitterStart = 99.0
)

// Options configures a Dashboard
type Options struct {
	Gateway     gateway.Gateway
	Store       *index.Store // optional, a fresh store otherwise
	Logger      logger.Logger
	Metrics     *metrics.Metrics
	AllowedTLDs []string         // for Check, empty allows any registrable domain
	Checks      CheckCache       // optional health-check report cache
	Snapshots   SnapshotSaver    // optional, saved after every successful Load
	OnMutation  func()           // optional, called after a visitor's mutation
	Now         func() time.Time // optional clock
	Rand        func() float64   // optional, [0,1) source for the demo jitter
}

// SnapshotSaver persists the last-known-good domain list
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, records []domain.Record, savedAt time.Time) error
}

// Dashboard is the single application-state object
type Dashboard struct {
	gw      gateway.Gateway
	store   *index.Store
	log     logger.Logger
	metrics *metrics.Metrics
	tlds    []string
	checks  CheckCache
	snaps   SnapshotSaver
	mutated func()
	now     func() time.Time
	rand    func() float64

	mu      sync.RWMutex
	query   domain.Query
	filter  domain.Filter
	lastErr error
}

// New creates a Dashboard
func New(opts Options) (*Dashboard, error) {
	if opts.Gateway == nil {
		return nil, errors.New("dashboard needs a gateway")
	}

	d := &Dashboard{
		gw:      opts.Gateway,
		store:   opts.Store,
		log:     opts.Logger,
		metrics: opts.Metrics,
		tlds:    opts.AllowedTLDs,
		checks:  opts.Checks,
		snaps:   opts.Snapshots,
		mutated: opts.OnMutation,
		now:     opts.Now,
		rand:    opts.Rand,
		filter:  domain.AllFilter,
	}
	if d.store == nil {
		d.store = index.NewStore()
	}
	if d.log == nil {
		d.log = logger.NewNop()
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.rand == nil {
		d.rand = rand.Float64
	}
	return d, nil
}

// Store exposes the underlying store (snapshot sync, readiness)
func (d *Dashboard) Store() *index.Store { return d.store }

// ─────────────────────────────────────────────────────────────────
// Store operations
// ─────────────────────────────────────────────────────────────────

// Load fetches the full domain list, replaces the store and saves a
// snapshot of it when snapshots are configured.
//
// On failure the store keeps its previous contents and the error is kept
// for the view until the next successful load.
//
// Loads are not serialized. Two overlapping loads (a mutation's reload and
// the periodic one, say) both replace the store and whichever completes
// last wins, even if it started first. Nothing is cancelled.
func (d *Dashboard) Load(ctx context.Context) ([]domain.Record, error) {
	start := time.Now()

	records, err := d.fetch(ctx)
	if err != nil {
		d.setLastErr(err)
		d.metrics.ObserveReload(false, time.Since(start), 0, 0, 0)
		d.log.Warn("failed to load domains", logger.Error(err))
		return nil, err
	}

	d.store.Replace(records)
	d.setLastErr(nil)

	all := d.store.All()
	d.observeFleet(all, time.Since(start))
	d.log.Debug("domains loaded",
		logger.Int("count", len(all)),
		logger.Duration("took", time.Since(start)),
	)
	d.saveSnapshot(ctx, all)
	return all, nil
}

// Fetch loads the domain list for the session carried by ctx without
// touching the shared store. Visitors of a source with a login each see
// their own list this way.
func (d *Dashboard) Fetch(ctx context.Context) ([]domain.Record, error) {
	records, err := d.fetch(ctx)
	if err != nil {
		d.log.Debug("failed to fetch domains", logger.Error(err))
		return nil, err
	}
	return records, nil
}

func (d *Dashboard) fetch(ctx context.Context) ([]domain.Record, error) {
	raws, err := d.gw.Domains(ctx)
	if err != nil {
		return nil, err
	}
	records, dropped := index.Unique(domain.NormalizeAll(raws))
	if dropped > 0 {
		d.log.Warn("dropped duplicate domains from backend response", logger.Int("dropped", dropped))
	}
	return records, nil
}

func (d *Dashboard) saveSnapshot(ctx context.Context, records []domain.Record) {
	if d.snaps == nil {
		return
	}
	if err := d.snaps.SaveSnapshot(ctx, records, d.now()); err != nil {
		d.log.Warn("failed to save domain snapshot", logger.Error(err))
		return
	}
	d.log.Debug("domain snapshot saved", logger.Int("count", len(records)))
}

// Restore seeds the store from a saved snapshot without touching the
// gateway. Used at startup when the backend is not reachable yet.
func (d *Dashboard) Restore(records []domain.Record) {
	d.store.Replace(records)
}

// Add asks the backend to monitor name, then reloads. The record is never
// created locally.
func (d *Dashboard) Add(ctx context.Context, name string) (string, error) {
	const op = "add"

	name = strings.TrimSpace(name)
	if name == "" {
		d.metrics.ObserveMutation(op, "invalid")
		return "", &gateway.ValidationError{Op: "add_domain", Message: "Please enter a domain name."}
	}

	msg, err := d.gw.AddDomain(ctx, name)
	if err != nil {
		d.observeMutationErr(op, err)
		return "", err
	}
	d.metrics.ObserveMutation(op, "ok")
	d.log.Info("domain added", logger.String("domain", name))

	d.reloadAfter(ctx, op)
	return msg, nil
}

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Confirmed is a Confirmer that always agrees, for callers that already
// collected consent (a submitted confirmation form).
var Confirmed Confirmer = ConfirmFunc(func(string) bool { return true })

// RemovePrompt is the confirmation question for removing name
func RemovePrompt(name string) string {
	return fmt.Sprintf("Are you sure you want to remove %s?", name)
}

// Remove stops monitoring name after the confirmer agreed, then reloads.
// A nil confirmer or a refusal returns ErrNotConfirmed without any request.
func (d *Dashboard) Remove(ctx context.Context, name string, c Confirmer) (string, error) {
	const op = "remove"

	if c == nil || !c.Confirm(RemovePrompt(name)) {
		d.metrics.ObserveMutation(op, "declined")
		return "", gateway.ErrNotConfirmed
	}

	msg, err := d.gw.RemoveDomain(ctx, name)
	if err != nil {
		d.observeMutationErr(op, err)
		return "", err
	}
	d.metrics.ObserveMutation(op, "ok")
	d.log.Info("domain removed", logger.String("domain", name))

	d.reloadAfter(ctx, op)
	return msg, nil
}

// BulkImport uploads a file of domains. The backend's aggregate message is
// returned either way; any accepted upload triggers a reload even if some
// lines failed.
func (d *Dashboard) BulkImport(ctx context.Context, filename string, r io.Reader) (string, error) {
	const op = "bulk"

	msg, err := d.gw.BulkUpload(ctx, filename, r)
	if err != nil {
		d.observeMutationErr(op, err)
		var oerr *gateway.OperationError
		if errors.As(err, &oerr) {
			return oerr.Message, err
		}
		return "", err
	}
	d.metrics.ObserveMutation(op, "ok")
	d.log.Info("bulk import accepted", logger.String("file", filename), logger.String("message", msg))

	d.reloadAfter(ctx, op)
	return msg, nil
}

// Logout ends the backend session. Errors are logged and otherwise
// ignored; the caller always goes to the login page.
func (d *Dashboard) Logout(ctx context.Context) string {
	if err := d.gw.Logout(ctx); err != nil {
		d.log.Warn("logout failed", logger.Error(err))
	}
	return LoginPath
}

// Login forwards credentials when the source needs them.
func (d *Dashboard) Login(ctx context.Context, username, password string) (string, error) {
	username, password = strings.TrimSpace(username), strings.TrimSpace(password)
	if username == "" || password == "" {
		return "", &gateway.ValidationError{Op: "login", Message: "Please fill in both username and password."}
	}

	auth, ok := d.gw.(gateway.Authenticator)
	if !ok {
		return "No login needed for this data source.", nil
	}
	msg, err := auth.Login(ctx, username, password)
	if err != nil {
		return "", err
	}
	d.log.Info("logged in", logger.String("user", username))
	return msg, nil
}

// RequiresLogin reports whether the source has a login step
func (d *Dashboard) RequiresLogin() bool {
	_, ok := d.gw.(gateway.Authenticator)
	return ok
}

// ReadOnly reports a source that rejects every mutation
func (d *Dashboard) ReadOnly() bool {
	ro, ok := d.gw.(gateway.ReadOnly)
	return ok && ro.ReadOnly()
}

// Simulated reports demo data whose uptime can be refreshed
func (d *Dashboard) Simulated() bool {
	sim, ok := d.gw.(gateway.Simulator)
	return ok && sim.Simulated()
}

// Refresh jitters the uptime of one demo record in place.
func (d *Dashboard) Refresh(name string) (float64, error) {
	if !d.Simulated() {
		return 0, ErrNotSimulated
	}

	var next float64
	ok := d.store.UpdateUptime(name, func(cur *float64) float64 {
		base := jitterStart
		if cur != nil {
			base = *cur
		}
		next = clamp(base+(d.rand()-0.5)*jitterSpan, jitterMin, jitterMax)
		return next
	})
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownDomain, name)
	}
	return next, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// reloadAfter reloads after a successful mutation. A failed reload is
// kept as the view error but does not fail the mutation.
//
// A visitor's mutation leaves the shared store alone: the visitor's next
// page fetches its own list, and OnMutation refreshes the shared one.
func (d *Dashboard) reloadAfter(ctx context.Context, op string) {
	if _, visitor := gateway.SessionFrom(ctx); visitor {
		if d.mutated != nil {
			d.mutated()
		}
		return
	}
	if _, err := d.Load(ctx); err != nil {
		d.log.Warn("reload after mutation failed", logger.String("op", op), logger.Error(err))
	}
}

func (d *Dashboard) observeMutationErr(op string, err error) {
	var (
		verr *gateway.ValidationError
		oerr *gateway.OperationError
	)
	outcome := "error"
	switch {
	case errors.Is(err, gateway.ErrAuthExpired):
		outcome = "auth"
	case errors.As(err, &verr), errors.As(err, &oerr):
		outcome = "rejected"
	}
	d.metrics.ObserveMutation(op, outcome)
	d.log.Warn("mutation failed", logger.String("op", op), logger.Error(err))
}

func (d *Dashboard) observeFleet(all []domain.Record, took time.Duration) {
	if d.metrics == nil {
		return
	}
	now := d.now()
	down, expiring := 0, 0
	for _, r := range all {
		if r.Status == domain.StatusDown {
			down++
		}
		if domain.ExpiringSoon(r.SSLExpiration, now) {
			expiring++
		}
	}
	d.metrics.ObserveReload(true, took, len(all), down, expiring)
}

func (d *Dashboard) setLastErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastErr = err
}

// LastError is the error of the last load, nil after a successful one
func (d *Dashboard) LastError() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastErr
}

// ─────────────────────────────────────────────────────────────────
// Query and filter
// ─────────────────────────────────────────────────────────────────

// SetQuery replaces the search query
func (d *Dashboard) SetQuery(q string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.query = domain.ParseQuery(q)
}

// SetFilter replaces the active filter. Unknown names are rejected and the
// previous filter stays active.
func (d *Dashboard) SetFilter(s string) error {
	f, err := domain.ParseFilter(s)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter = f
	return nil
}

// Query returns the current query
func (d *Dashboard) Query() domain.Query {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.query
}

// Filter returns the current filter
func (d *Dashboard) Filter() domain.Filter {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.filter
}

// Visible returns the records passing the current query and filter
func (d *Dashboard) Visible() []domain.Record {
	return domain.VisibleRowsAt(d.store.All(), d.Query(), d.Filter(), d.now())
}
