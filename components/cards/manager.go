package cards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-inkhub/components/datatable"
	"github.com/goliatone/go-inkhub/components/kvstore"
)

var (
	// ErrCardNotFound is returned for unknown card ids.
	ErrCardNotFound = errors.New("cards: card not found")
	// ErrInvalidCard wraps validation failures.
	ErrInvalidCard = errors.New("cards: invalid card")
	// ErrResourceRequired is returned when a manager has no resource key.
	ErrResourceRequired = errors.New("cards: resource is required")
)

// CardsKey is the preference key of the custom cards of resource.
func CardsKey(resource string) string {
	return resource + "-custom-cards"
}

// VisibilityKey is the preference key of the default card visibility map.
func VisibilityKey(resource string) string {
	return resource + "-default-card-visibility"
}

// Telemetry records card lifecycle events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

// Options configures a Manager.
type Options struct {
	Resource  string
	Store     kvstore.Store
	Validator Validator
	Telemetry Telemetry
	Logger    *slog.Logger
	// NewID generates card ids, uuid v4 by default.
	NewID func() string
}

// Manager owns the custom cards and default card visibility of one resource.
// Every change rewrites the whole stored list.
type Manager struct {
	mu        sync.Mutex
	resource  string
	store     kvstore.Store
	validator Validator
	telemetry Telemetry
	logger    *slog.Logger
	newID     func() string
}

// NewManager builds a manager with in-memory storage and schema validation
// unless overridden.
func NewManager(opts Options) (*Manager, error) {
	if strings.TrimSpace(opts.Resource) == "" {
		return nil, ErrResourceRequired
	}
	m := &Manager{
		resource:  opts.Resource,
		store:     opts.Store,
		validator: opts.Validator,
		telemetry: opts.Telemetry,
		logger:    opts.Logger,
		newID:     opts.NewID,
	}
	if m.store == nil {
		m.store = kvstore.NewMemoryStore()
	}
	if m.validator == nil {
		m.validator = NewSchemaValidator()
	}
	if m.telemetry == nil {
		m.telemetry = noopTelemetry{}
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	return m, nil
}

// Resource returns the resource the manager is bound to.
func (m *Manager) Resource() string { return m.resource }

// List returns the stored cards in display order.
func (m *Manager) List(ctx context.Context) ([]CustomCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

// Get returns one card.
func (m *Manager) Get(ctx context.Context, id string) (CustomCard, error) {
	list, err := m.List(ctx)
	if err != nil {
		return CustomCard{}, err
	}
	for _, c := range list {
		if c.ID == id {
			return c, nil
		}
	}
	return CustomCard{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
}

// Create validates and appends a new visible card.
func (m *Manager) Create(ctx context.Context, card CustomCard) (CustomCard, error) {
	card.ID = strings.TrimSpace(card.ID)
	if card.ID == "" {
		card.ID = m.newID()
	}
	card.IsVisible = true
	if card.SelectedProducts == nil {
		card.SelectedProducts = []string{}
	}
	if err := m.validator.Validate(card); err != nil {
		return CustomCard{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	list, err := m.load(ctx)
	if err != nil {
		return CustomCard{}, err
	}
	for _, c := range list {
		if c.ID == card.ID {
			return CustomCard{}, fmt.Errorf("%w: duplicate id %s", ErrInvalidCard, card.ID)
		}
	}
	list = append(list, card)
	if err := m.save(ctx, list); err != nil {
		return CustomCard{}, err
	}
	m.telemetry.Record(ctx, "cards.created", map[string]any{
		"resource":  m.resource,
		"card_id":   card.ID,
		"operation": string(card.Operation),
	})
	return card, nil
}

// Update applies patch to a card and revalidates it.
func (m *Manager) Update(ctx context.Context, id string, patch Patch) (CustomCard, error) {
	return m.mutate(ctx, id, "cards.updated", func(c CustomCard) (CustomCard, error) {
		next := patch.apply(c)
		if err := m.validator.Validate(next); err != nil {
			return c, err
		}
		return next, nil
	})
}

// ToggleVisibility flips IsVisible of a card.
func (m *Manager) ToggleVisibility(ctx context.Context, id string) (CustomCard, error) {
	return m.mutate(ctx, id, "cards.visibility", func(c CustomCard) (CustomCard, error) {
		c.IsVisible = !c.IsVisible
		return c, nil
	})
}

// Reorder moves the listed cards to the front in the given order. Unknown ids
// are ignored and unlisted cards keep their relative order.
func (m *Manager) Reorder(ctx context.Context, order []string) ([]CustomCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	list = applyOrder(list, order)
	if err := m.save(ctx, list); err != nil {
		return nil, err
	}
	m.telemetry.Record(ctx, "cards.reordered", map[string]any{
		"resource": m.resource,
		"count":    len(order),
	})
	return list, nil
}

// Delete removes a card.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, err := m.load(ctx)
	if err != nil {
		return err
	}
	out := make([]CustomCard, 0, len(list))
	for _, c := range list {
		if c.ID != id {
			out = append(out, c)
		}
	}
	if len(out) == len(list) {
		return fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	if err := m.save(ctx, out); err != nil {
		return err
	}
	m.telemetry.Record(ctx, "cards.deleted", map[string]any{
		"resource": m.resource,
		"card_id":  id,
	})
	return nil
}

// Compute evaluates every card over entities, stores the computed values and
// returns the results in display order.
func (m *Manager) Compute(ctx context.Context, entities []datatable.Entity) ([]Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]Result, len(list))
	changed := false
	for i, c := range list {
		results[i] = Compute(c, entities)
		if results[i].Card.ComputedValue != c.ComputedValue {
			list[i].ComputedValue = results[i].Card.ComputedValue
			changed = true
		}
		if results[i].FormulaError != "" {
			m.logger.DebugContext(ctx, "custom card formula failed",
				"resource", m.resource, "card_id", c.ID, "error", results[i].FormulaError)
		}
	}
	if changed {
		if err := m.save(ctx, list); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// DefaultVisibility returns the visibility overrides of built-in KPI cards.
// Missing keys mean visible.
func (m *Manager) DefaultVisibility(ctx context.Context) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadVisibility(ctx)
}

// SetDefaultVisibility stores the visibility of one built-in KPI card.
func (m *Manager) SetDefaultVisibility(ctx context.Context, key string, visible bool) (map[string]bool, error) {
	return m.updateVisibility(ctx, key, func(bool) bool { return visible })
}

// ToggleDefaultVisibility flips the visibility of one built-in KPI card.
func (m *Manager) ToggleDefaultVisibility(ctx context.Context, key string) (map[string]bool, error) {
	return m.updateVisibility(ctx, key, func(current bool) bool { return !current })
}

func (m *Manager) updateVisibility(ctx context.Context, key string, next func(bool) bool) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vis, err := m.loadVisibility(ctx)
	if err != nil {
		return nil, err
	}
	visible := next(IsVisible(vis, key))
	vis[key] = visible
	if err := kvstore.SaveJSON(ctx, m.store, VisibilityKey(m.resource), vis); err != nil {
		return nil, err
	}
	m.telemetry.Record(ctx, "cards.default_visibility", map[string]any{
		"resource": m.resource,
		"key":      key,
		"visible":  visible,
	})
	return vis, nil
}

// IsVisible reads a visibility map where missing keys are visible.
func IsVisible(vis map[string]bool, key string) bool {
	v, ok := vis[key]
	return !ok || v
}

func (m *Manager) mutate(ctx context.Context, id, event string, fn func(CustomCard) (CustomCard, error)) (CustomCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, err := m.load(ctx)
	if err != nil {
		return CustomCard{}, err
	}
	for i, c := range list {
		if c.ID != id {
			continue
		}
		next, err := fn(c)
		if err != nil {
			return CustomCard{}, err
		}
		next.ID = c.ID
		list[i] = next
		if err := m.save(ctx, list); err != nil {
			return CustomCard{}, err
		}
		m.telemetry.Record(ctx, event, map[string]any{
			"resource": m.resource,
			"card_id":  id,
		})
		return next, nil
	}
	return CustomCard{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
}

func (m *Manager) load(ctx context.Context) ([]CustomCard, error) {
	list, err := kvstore.LoadJSON(ctx, m.store, m.logger, CardsKey(m.resource), []CustomCard{})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []CustomCard{}
	}
	for i := range list {
		if list[i].SelectedProducts == nil {
			list[i].SelectedProducts = []string{}
		}
	}
	return list, nil
}

func (m *Manager) save(ctx context.Context, list []CustomCard) error {
	return kvstore.SaveJSON(ctx, m.store, CardsKey(m.resource), list)
}

func (m *Manager) loadVisibility(ctx context.Context) (map[string]bool, error) {
	vis, err := kvstore.LoadJSON(ctx, m.store, m.logger, VisibilityKey(m.resource), map[string]bool{})
	if err != nil {
		return nil, err
	}
	if vis == nil {
		vis = map[string]bool{}
	}
	return vis, nil
}

func applyOrder(list []CustomCard, order []string) []CustomCard {
	if len(order) == 0 {
		return list
	}
	index := make(map[string]CustomCard, len(list))
	for _, c := range list {
		index[c.ID] = c
	}
	out := make([]CustomCard, 0, len(list))
	seen := make(map[string]struct{}, len(order))
	for _, id := range order {
		if c, ok := index[id]; ok {
			if _, dup := seen[id]; dup {
				continue
			}
			out = append(out, c)
			seen[id] = struct{}{}
		}
	}
	for _, c := range list {
		if _, ok := seen[c.ID]; !ok {
			out = append(out, c)
		}
	}
	return out
}
