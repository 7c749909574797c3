package dashboard

import (
	"fmt"
	"time"

	"github.com/MrSnakeDoc/domon/internal/domain"
	"github.com/MrSnakeDoc/domon/internal/gateway"
	"github.com/MrSnakeDoc/domon/internal/render"
)

// View is everything a front end needs to draw the table
type View struct {
	Query      string          `json:"query"`
	Filter     string          `json:"filter"`
	Tags       []string        `json:"tags"`
	Table      render.Table    `json:"table"`
	Rows       []domain.Record `json:"rows"`
	ReadOnly   bool            `json:"read_only"`
	Simulated  bool            `json:"simulated"`
	LastReload time.Time       `json:"last_reload"`
}

// View renders the current query and filter
func (d *Dashboard) View() View {
	return d.ViewOf(d.Query(), d.Filter())
}

// ViewOf renders an explicit query and filter without touching the
// dashboard's own. HTTP requests use it so concurrent users don't share
// their search state.
//
// After a failed load the table is the single error row.
func (d *Dashboard) ViewOf(q domain.Query, f domain.Filter) View {
	return d.ViewRecords(d.store.All(), d.LastError(), d.store.LastReload(), q, f)
}

// ViewRecords renders records fetched outside the store, such as a
// visitor's own list. A non-nil loadErr yields the single error row.
func (d *Dashboard) ViewRecords(all []domain.Record, loadErr error, loadedAt time.Time, q domain.Query, f domain.Filter) View {
	now := d.now()
	v := View{
		Query:      q.Raw,
		Filter:     f.String(),
		Tags:       domain.Tags(all),
		Rows:       []domain.Record{},
		ReadOnly:   d.ReadOnly(),
		Simulated:  d.Simulated(),
		LastReload: loadedAt,
	}

	if loadErr != nil {
		v.Table = render.BuildError(gateway.Notice(loadErr))
		return v
	}

	v.Rows = domain.VisibleRowsAt(all, q, f, now)
	v.Table = render.BuildWith(d.rowBuilder(now), v.Rows, now)
	return v
}

// Detail renders the drawer of one domain
func (d *Dashboard) Detail(name string) (render.Detail, error) {
	r, ok := d.store.Get(name)
	if !ok {
		return render.Detail{}, fmt.Errorf("%w: %s", ErrUnknownDomain, name)
	}
	return render.BuildDetail(d.rowBuilder(d.now()), r, d.store.LastReload()), nil
}

// DetailIn renders the drawer of one domain of records
func (d *Dashboard) DetailIn(all []domain.Record, loadedAt time.Time, name string) (render.Detail, error) {
	for _, r := range all {
		if r.Domain == name {
			return render.BuildDetail(d.rowBuilder(d.now()), r, loadedAt), nil
		}
	}
	return render.Detail{}, fmt.Errorf("%w: %s", ErrUnknownDomain, name)
}

func (d *Dashboard) rowBuilder(now time.Time) *render.RowBuilder {
	return render.NewRowBuilder(now).
		Removable(!d.ReadOnly()).
		Simulated(d.Simulated())
}
