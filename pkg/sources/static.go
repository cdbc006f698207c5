package sources

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/datatable"
)

// ErrNoData is returned by StaticSource for resources without fixtures.
var ErrNoData = errors.New("sources: no data for resource")

// StaticSource serves in-memory fixtures, for demos and tests.
type StaticSource struct {
	mu   sync.RWMutex
	data map[string][]datatable.Entity
}

var _ admin.Source = (*StaticSource)(nil)

// NewStaticSource builds a source from fixtures keyed by resource code.
func NewStaticSource(data map[string][]datatable.Entity) *StaticSource {
	s := &StaticSource{data: map[string][]datatable.Entity{}}
	for code, items := range data {
		s.data[code] = clone(items)
	}
	return s
}

// Set replaces the fixtures of code.
func (s *StaticSource) Set(code string, items []datatable.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[code] = clone(items)
}

// Fetch returns a copy of the fixtures, so callers may mutate them freely.
func (s *StaticSource) Fetch(_ context.Context, res admin.Resource) ([]datatable.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, ok := s.data[res.Code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoData, res.Code)
	}
	return clone(items), nil
}

func clone(items []datatable.Entity) []datatable.Entity {
	out := make([]datatable.Entity, len(items))
	for i, e := range items {
		out[i] = e.Clone()
	}
	return out
}

// Fallback tries each source in order and returns the first success. When
// every source fails the errors are joined.
func Fallback(sources ...admin.Source) admin.Source {
	return admin.SourceFunc(func(ctx context.Context, res admin.Resource) ([]datatable.Entity, error) {
		var errs []error
		for _, src := range sources {
			if src == nil {
				continue
			}
			items, err := src.Fetch(ctx, res)
			if err == nil {
				return items, nil
			}
			errs = append(errs, err)
		}
		if len(errs) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoData, res.Code)
		}
		return nil, errors.Join(errs...)
	})
}
