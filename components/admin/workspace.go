package admin

import (
	"context"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/goliatone/go-inkhub/components/datatable"
)

// Source pulls the working set of a resource from its upstream API.
type Source interface {
	Fetch(ctx context.Context, res Resource) ([]datatable.Entity, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, res Resource) ([]datatable.Entity, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, res Resource) ([]datatable.Entity, error) {
	return f(ctx, res)
}

// Workspace owns the table of one resource. All access goes through Do.
type Workspace struct {
	mu          sync.Mutex
	resource    Resource
	table       *datatable.Table
	baseline    []datatable.Entity
	loaded      bool
	refreshedAt time.Time
}

// NewWorkspace builds an empty workspace for res.
func NewWorkspace(res Resource, locale language.Tag) *Workspace {
	return &Workspace{
		resource: res,
		table: datatable.New(nil, datatable.Options{
			Schema:       res.Schema,
			ItemsPerPage: res.PageSize(),
			Locale:       locale,
		}),
	}
}

// Resource returns the descriptor the workspace was built for.
func (w *Workspace) Resource() Resource { return w.resource }

// Do runs fn with exclusive access to the table.
func (w *Workspace) Do(fn func(t *datatable.Table) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w.table)
}

// Baseline returns the working set replaced by the last refresh, nil before
// the second load.
func (w *Workspace) Baseline() []datatable.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.baseline
}

// RefreshedAt is the time of the last successful load.
func (w *Workspace) RefreshedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refreshedAt
}

// Loaded reports whether the workspace holds data from a source or seed.
func (w *Workspace) Loaded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loaded
}

// Refresh fetches the working set and replaces it wholesale. Filter, sort and
// selection state survive; the page is clamped.
func (w *Workspace) Refresh(ctx context.Context, src Source, now time.Time) (int, error) {
	data, err := src.Fetch(ctx, w.resource)
	if err != nil {
		return 0, err
	}
	w.Replace(data, now)
	return len(data), nil
}

// Replace swaps the working set and keeps the previous one as KPI baseline.
func (w *Workspace) Replace(data []datatable.Entity, now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loaded {
		w.baseline = w.table.Data()
	}
	w.table.SetData(data)
	w.loaded = true
	w.refreshedAt = now
}
