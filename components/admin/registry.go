package admin

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-inkhub/components/metrics"
)

// Registry holds the resource descriptors in registration order.
type Registry struct {
	mu        sync.RWMutex
	resources map[string]Resource
	order     []string
}

// NewRegistry builds a registry seeded with DefaultResources.
func NewRegistry() *Registry {
	reg := NewEmptyRegistry()
	for _, res := range DefaultResources() {
		_ = reg.Register(res)
	}
	return reg
}

// NewEmptyRegistry builds a registry without resources.
func NewEmptyRegistry() *Registry {
	return &Registry{resources: map[string]Resource{}}
}

// Register adds or replaces a resource descriptor.
func (r *Registry) Register(res Resource) error {
	if err := validateResource(res); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.resources[res.Code]; !exists {
		r.order = append(r.order, res.Code)
	}
	r.resources[res.Code] = res
	return nil
}

// Resource fetches a descriptor by code.
func (r *Registry) Resource(code string) (Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[code]
	return res, ok
}

// Resources lists descriptors in registration order.
func (r *Registry) Resources() []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Resource, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.resources[code])
	}
	return out
}

// Sections groups descriptors by section in first-seen order.
func (r *Registry) Sections() []Section {
	var out []Section
	index := map[string]int{}
	for _, res := range r.Resources() {
		i, ok := index[res.Section]
		if !ok {
			label := sectionLabels[res.Section]
			if label == "" {
				label = strings.Title(strings.ReplaceAll(res.Section, "-", " ")) //nolint:staticcheck
			}
			out = append(out, Section{Code: res.Section, Label: label})
			i = len(out) - 1
			index[res.Section] = i
		}
		out[i].Resources = append(out[i].Resources, res)
	}
	return out
}

func validateResource(res Resource) error {
	if strings.TrimSpace(res.Code) == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidResource)
	}
	if res.Name == "" {
		return fmt.Errorf("%w: %s missing name", ErrInvalidResource, res.Code)
	}
	seen := map[string]struct{}{}
	for _, c := range res.Schema.Columns {
		if c.Key == "" {
			return fmt.Errorf("%w: %s has a column without key", ErrInvalidResource, res.Code)
		}
		if _, dup := seen[c.Key]; dup {
			return fmt.Errorf("%w: %s duplicates column %s", ErrInvalidResource, res.Code, c.Key)
		}
		seen[c.Key] = struct{}{}
	}
	for _, k := range res.KPIs {
		if k.Key == "" {
			return fmt.Errorf("%w: %s has a kpi without key", ErrInvalidResource, res.Code)
		}
		if !k.Operation.Valid() {
			return fmt.Errorf("%w: %s kpi %s has unknown operation %q", ErrInvalidResource, res.Code, k.Key, k.Operation)
		}
		if k.Operation == metrics.OpCustom {
			if err := metrics.Validate(k.Formula); err != nil {
				return fmt.Errorf("%w: %s kpi %s: %v", ErrInvalidResource, res.Code, k.Key, err)
			}
		}
	}
	return nil
}
