package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/goliatone/go-inkhub/components/cards"
	"github.com/goliatone/go-inkhub/components/datatable"
	"github.com/goliatone/go-inkhub/components/export"
	"github.com/goliatone/go-inkhub/components/kvstore"
	"github.com/goliatone/go-inkhub/components/metrics"
)

var (
	// ErrUnknownResource is returned for codes missing from the registry.
	ErrUnknownResource = errors.New("admin: unknown resource")
	// ErrInvalidResource wraps descriptor validation failures.
	ErrInvalidResource = errors.New("admin: invalid resource")
	// ErrUnknownKPI is returned for KPI keys the resource does not declare.
	ErrUnknownKPI = errors.New("admin: unknown kpi")
	// ErrFieldRequired is returned when a field name is missing.
	ErrFieldRequired = errors.New("admin: field is required")

	errMissingSource = errors.New("admin: data source not configured")
	errInvalidMode   = errors.New("admin: unknown selection mode")
)

// Options configures the admin Service. Collaborators are interfaces so hosts
// can swap storage, sources and telemetry.
type Options struct {
	Registry      *Registry
	Source        Source
	Store         kvstore.Store
	CardValidator cards.Validator
	Telemetry     Telemetry
	Logger        *slog.Logger
	Charts        *metrics.ChartRenderer
	Locale        language.Tag
	// Now stamps refreshes and export filenames, time.Now by default.
	Now func() time.Time
	// NewID generates custom card ids.
	NewID func() string
}

// Service runs the table engine, KPIs and custom cards of every registered
// resource.
type Service struct {
	opts Options

	mu         sync.Mutex
	workspaces map[string]*Workspace
	managers   map[string]*cards.Manager
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Store == nil {
		opts.Store = kvstore.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Charts == nil {
		opts.Charts = metrics.NewChartRenderer("bar", metrics.WithChartCache(metrics.NewChartCache(time.Minute)))
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{
		opts:       opts,
		workspaces: map[string]*Workspace{},
		managers:   map[string]*cards.Manager{},
	}
}

// Registry exposes the resource registry.
func (s *Service) Registry() *Registry { return s.opts.Registry }

// Resources lists the registered resources.
func (s *Service) Resources() []Resource { return s.opts.Registry.Resources() }

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

// Workspace returns the workspace of code, loading it from the source on
// first use.
func (s *Service) Workspace(ctx context.Context, code string) (*Workspace, error) {
	res, ok := s.opts.Registry.Resource(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, code)
	}
	s.mu.Lock()
	ws, ok := s.workspaces[code]
	if !ok {
		ws = NewWorkspace(res, s.opts.Locale)
		s.workspaces[code] = ws
	}
	s.mu.Unlock()
	if !ws.Loaded() && s.opts.Source != nil {
		if _, err := ws.Refresh(ctx, s.opts.Source, s.opts.Now()); err != nil {
			return nil, fmt.Errorf("admin: load %s: %w", code, err)
		}
	}
	return ws, nil
}

// Seed replaces the working set of code without touching the source.
func (s *Service) Seed(ctx context.Context, code string, data []datatable.Entity) error {
	ws, err := s.workspaceFor(code)
	if err != nil {
		return err
	}
	ws.Replace(data, s.opts.Now())
	s.recordTelemetry(ctx, "admin.seed", map[string]any{"resource": code, "count": len(data)})
	return nil
}

// RefreshResult reports a source pull.
type RefreshResult struct {
	Resource    string    `json:"resource"`
	Count       int       `json:"count"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// Refresh pulls the working set of code from the source.
func (s *Service) Refresh(ctx context.Context, code string) (RefreshResult, error) {
	if s.opts.Source == nil {
		return RefreshResult{}, errMissingSource
	}
	ws, err := s.workspaceFor(code)
	if err != nil {
		return RefreshResult{}, err
	}
	now := s.opts.Now()
	n, err := ws.Refresh(ctx, s.opts.Source, now)
	if err != nil {
		s.opts.Logger.WarnContext(ctx, "refresh failed", "resource", code, "error", err)
		return RefreshResult{}, fmt.Errorf("admin: refresh %s: %w", code, err)
	}
	s.recordTelemetry(ctx, "admin.refresh", map[string]any{"resource": code, "count": n})
	return RefreshResult{Resource: code, Count: n, RefreshedAt: now}, nil
}

// workspaceFor creates the workspace without loading it.
func (s *Service) workspaceFor(code string) (*Workspace, error) {
	res, ok := s.opts.Registry.Resource(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, code)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[code]
	if !ok {
		ws = NewWorkspace(res, s.opts.Locale)
		s.workspaces[code] = ws
	}
	return ws, nil
}

// PageResult is one rendered page of a resource.
type PageResult struct {
	Resource Resource           `json:"resource"`
	Columns  []datatable.Column `json:"columns"`
	State    datatable.Query    `json:"state"`
	View     datatable.View     `json:"view"`
	Total    int                `json:"total"`
}

func pageOf(res Resource, t *datatable.Table) PageResult {
	return PageResult{
		Resource: res,
		Columns:  t.Schema().Select(nil),
		State:    t.State(),
		View:     t.View(),
		Total:    t.Len(),
	}
}

// Page returns the current page without changing state.
func (s *Service) Page(ctx context.Context, code string) (PageResult, error) {
	ws, err := s.Workspace(ctx, code)
	if err != nil {
		return PageResult{}, err
	}
	var out PageResult
	err = ws.Do(func(t *datatable.Table) error {
		out = pageOf(ws.Resource(), t)
		return nil
	})
	return out, err
}

// QueryRequest replaces the whole filter, sort and paging state.
type QueryRequest struct {
	Resource string          `json:"resource"`
	Query    datatable.Query `json:"query"`
}

// Query applies req.Query and returns the resulting page.
func (s *Service) Query(ctx context.Context, req QueryRequest) (PageResult, error) {
	ws, err := s.Workspace(ctx, req.Resource)
	if err != nil {
		return PageResult{}, err
	}
	var out PageResult
	err = ws.Do(func(t *datatable.Table) error {
		req.Query.Apply(t)
		out = pageOf(ws.Resource(), t)
		return nil
	})
	if err != nil {
		return PageResult{}, err
	}
	s.recordTelemetry(ctx, "admin.query", map[string]any{
		"resource": req.Resource,
		"matches":  out.View.Pagination.TotalItems,
	})
	return out, nil
}

// Sort applies the header-click rule to column and returns the page.
func (s *Service) Sort(ctx context.Context, code, column string) (PageResult, error) {
	ws, err := s.Workspace(ctx, code)
	if err != nil {
		return PageResult{}, err
	}
	var out PageResult
	err = ws.Do(func(t *datatable.Table) error {
		t.Sort(column)
		out = pageOf(ws.Resource(), t)
		return nil
	})
	return out, err
}

// SelectMode names a selection gesture.
type SelectMode string

const (
	SelectToggle   SelectMode = "toggle"
	SelectPage     SelectMode = "page"
	SelectFiltered SelectMode = "filtered"
	SelectClear    SelectMode = "clear"
)

// SelectRequest changes the selection of a resource.
type SelectRequest struct {
	Resource string     `json:"resource"`
	Mode     SelectMode `json:"mode"`
	IDs      []string   `json:"ids,omitempty"`
}

// Select applies req and returns the selected ids.
func (s *Service) Select(ctx context.Context, req SelectRequest) ([]string, error) {
	ws, err := s.Workspace(ctx, req.Resource)
	if err != nil {
		return nil, err
	}
	var out []string
	err = ws.Do(func(t *datatable.Table) error {
		switch req.Mode {
		case SelectToggle, "":
			for _, id := range req.IDs {
				t.SelectItem(id)
			}
		case SelectPage:
			t.SelectAll()
		case SelectFiltered:
			t.SelectFiltered()
		case SelectClear:
			t.ClearSelection()
		default:
			return fmt.Errorf("%w: %q", errInvalidMode, req.Mode)
		}
		out = t.Selected()
		return nil
	})
	return out, err
}

// UniqueValues lists the distinct values of field for filter dropdowns.
func (s *Service) UniqueValues(ctx context.Context, code, field string) ([]string, error) {
	if field == "" {
		return nil, ErrFieldRequired
	}
	ws, err := s.Workspace(ctx, code)
	if err != nil {
		return nil, err
	}
	var out []string
	err = ws.Do(func(t *datatable.Table) error {
		out = t.UniqueValues(field)
		return nil
	})
	return out, err
}

// BulkEditRequest patches many entities. Empty IDs target the selection.
type BulkEditRequest struct {
	Resource string         `json:"resource"`
	IDs      []string       `json:"ids,omitempty"`
	Patch    map[string]any `json:"patch"`
}

// BulkEdit applies req.Patch and returns the number of updated entities.
func (s *Service) BulkEdit(ctx context.Context, req BulkEditRequest) (int, error) {
	ws, err := s.Workspace(ctx, req.Resource)
	if err != nil {
		return 0, err
	}
	var n int
	err = ws.Do(func(t *datatable.Table) error {
		ids := req.IDs
		if len(ids) == 0 {
			ids = t.Selected()
		}
		n, err = t.BulkUpdate(ids, req.Patch)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.recordTelemetry(ctx, "admin.bulk.edit", map[string]any{"resource": req.Resource, "count": n})
	return n, nil
}

// BulkDeleteRequest removes many entities. Empty IDs target the selection.
type BulkDeleteRequest struct {
	Resource string   `json:"resource"`
	IDs      []string `json:"ids,omitempty"`
}

// BulkDelete removes entities and returns how many were dropped.
func (s *Service) BulkDelete(ctx context.Context, req BulkDeleteRequest) (int, error) {
	ws, err := s.Workspace(ctx, req.Resource)
	if err != nil {
		return 0, err
	}
	var n int
	err = ws.Do(func(t *datatable.Table) error {
		ids := req.IDs
		if len(ids) == 0 {
			ids = t.Selected()
		}
		n, err = t.BulkDelete(ids)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.recordTelemetry(ctx, "admin.bulk.delete", map[string]any{"resource": req.Resource, "count": n})
	return n, nil
}

// ExportScope chooses which entities an export covers.
type ExportScope string

const (
	// ScopeAuto exports the selection, or the filtered set when nothing is
	// selected.
	ScopeAuto     ExportScope = ""
	ScopeSelected ExportScope = "selected"
	ScopeFiltered ExportScope = "filtered"
	ScopeAll      ExportScope = "all"
)

// ExportRequest exports a resource.
type ExportRequest struct {
	Resource string        `json:"resource"`
	Format   export.Format `json:"format"`
	Fields   []string      `json:"fields,omitempty"`
	Scope    ExportScope   `json:"scope,omitempty"`
}

// Export renders the entities in scope. Items follow the current sort order.
func (s *Service) Export(ctx context.Context, req ExportRequest) (export.Artifact, error) {
	ws, err := s.Workspace(ctx, req.Resource)
	if err != nil {
		return export.Artifact{}, err
	}
	var (
		items   []datatable.Entity
		columns []datatable.Column
	)
	_ = ws.Do(func(t *datatable.Table) error {
		items = scopedItems(t, req.Scope)
		if len(req.Fields) > 0 {
			columns = t.Schema().Select(req.Fields)
		}
		return nil
	})
	art, err := export.Export(export.Request{
		Resource: req.Resource,
		Format:   req.Format,
		Items:    items,
		Columns:  columns,
		Now:      s.opts.Now(),
	})
	if err != nil && !errors.Is(err, export.ErrComingSoon) {
		return export.Artifact{}, err
	}
	s.recordTelemetry(ctx, "admin.export", map[string]any{
		"resource": req.Resource,
		"format":   string(req.Format),
		"count":    len(items),
	})
	return art, err
}

func scopedItems(t *datatable.Table, scope ExportScope) []datatable.Entity {
	switch scope {
	case ScopeAll:
		return t.Data()
	case ScopeFiltered:
		return t.Filtered()
	}
	if len(t.Selected()) == 0 {
		if scope == ScopeSelected {
			return nil
		}
		return t.Filtered()
	}
	return t.SelectedEntities()
}

// KPICard is a computed KPI with its default visibility.
type KPICard struct {
	metrics.KPIMetric
	Visible bool `json:"visible"`
}

// KPIs recomputes the KPI cards of code over the filtered set. Change compares
// against the previous working set under the same filters.
func (s *Service) KPIs(ctx context.Context, code string) ([]KPICard, error) {
	ws, err := s.Workspace(ctx, code)
	if err != nil {
		return nil, err
	}
	res := ws.Resource()
	baseline := ws.Baseline()
	var (
		filtered     []datatable.Entity
		baselineView []datatable.Entity
		universe     = metrics.Universe{Baseline: len(baseline)}
	)
	_ = ws.Do(func(t *datatable.Table) error {
		filtered = t.Filtered()
		universe.Current = t.Len()
		if baseline != nil {
			prev := datatable.New(baseline, datatable.Options{Schema: res.Schema, Locale: s.opts.Locale})
			t.State().Apply(prev)
			baselineView = prev.Filtered()
			if baselineView == nil {
				baselineView = []datatable.Entity{}
			}
		}
		return nil
	})
	vis, err := s.DefaultVisibility(ctx, code)
	if err != nil {
		return nil, err
	}
	computed := metrics.ComputeKPIs(res.KPIs, filtered, baselineView, universe)
	out := make([]KPICard, len(computed))
	for i, m := range computed {
		out[i] = KPICard{KPIMetric: m, Visible: cards.IsVisible(vis, m.Key)}
	}
	return out, nil
}

// KPIChart renders the visible KPI and custom card values as a chart.
func (s *Service) KPIChart(ctx context.Context, code string) (string, error) {
	kpis, err := s.KPIs(ctx, code)
	if err != nil {
		return "", err
	}
	results, err := s.Cards(ctx, code)
	if err != nil {
		return "", err
	}
	var list []metrics.KPIMetric
	for _, k := range kpis {
		if k.Visible {
			list = append(list, k.KPIMetric)
		}
	}
	for _, r := range results {
		if r.Card.IsVisible && r.FormulaError == "" {
			list = append(list, metrics.KPIMetric{Key: r.Card.ID, Label: r.Card.Title, Value: r.Value})
		}
	}
	res, _ := s.opts.Registry.Resource(code)
	return s.opts.Charts.RenderKPIs(res.Name+" overview", list)
}

// ExportKPI serializes one KPI card as JSON.
func (s *Service) ExportKPI(ctx context.Context, code, key string) (export.Artifact, error) {
	kpis, err := s.KPIs(ctx, code)
	if err != nil {
		return export.Artifact{}, err
	}
	for _, k := range kpis {
		if k.Key == key {
			return export.ExportKPI(code, k.KPIMetric, s.opts.Now())
		}
	}
	return export.Artifact{}, fmt.Errorf("%w: %s", ErrUnknownKPI, key)
}

// Cards computes the custom cards of code over the unfiltered working set.
func (s *Service) Cards(ctx context.Context, code string) ([]cards.Result, error) {
	ws, err := s.Workspace(ctx, code)
	if err != nil {
		return nil, err
	}
	m, err := s.manager(code)
	if err != nil {
		return nil, err
	}
	var data []datatable.Entity
	_ = ws.Do(func(t *datatable.Table) error {
		data = t.Data()
		return nil
	})
	return m.Compute(ctx, data)
}

// CardList returns the stored custom cards of code.
func (s *Service) CardList(ctx context.Context, code string) ([]cards.CustomCard, error) {
	m, err := s.manager(code)
	if err != nil {
		return nil, err
	}
	return m.List(ctx)
}

// CreateCard stores a new custom card.
func (s *Service) CreateCard(ctx context.Context, code string, card cards.CustomCard) (cards.CustomCard, error) {
	m, err := s.manager(code)
	if err != nil {
		return cards.CustomCard{}, err
	}
	return m.Create(ctx, card)
}

// UpdateCard edits a custom card.
func (s *Service) UpdateCard(ctx context.Context, code, id string, patch cards.Patch) (cards.CustomCard, error) {
	m, err := s.manager(code)
	if err != nil {
		return cards.CustomCard{}, err
	}
	return m.Update(ctx, id, patch)
}

// ToggleCard flips the visibility of a custom card.
func (s *Service) ToggleCard(ctx context.Context, code, id string) (cards.CustomCard, error) {
	m, err := s.manager(code)
	if err != nil {
		return cards.CustomCard{}, err
	}
	return m.ToggleVisibility(ctx, id)
}

// ReorderCards reorders the custom cards of code.
func (s *Service) ReorderCards(ctx context.Context, code string, order []string) ([]cards.CustomCard, error) {
	m, err := s.manager(code)
	if err != nil {
		return nil, err
	}
	return m.Reorder(ctx, order)
}

// DeleteCard removes a custom card.
func (s *Service) DeleteCard(ctx context.Context, code, id string) error {
	m, err := s.manager(code)
	if err != nil {
		return err
	}
	return m.Delete(ctx, id)
}

// DefaultVisibility returns the visibility map of the built-in KPI cards.
func (s *Service) DefaultVisibility(ctx context.Context, code string) (map[string]bool, error) {
	m, err := s.manager(code)
	if err != nil {
		return nil, err
	}
	return m.DefaultVisibility(ctx)
}

// ToggleDefaultCard flips the visibility of a built-in KPI card.
func (s *Service) ToggleDefaultCard(ctx context.Context, code, key string) (map[string]bool, error) {
	res, ok := s.opts.Registry.Resource(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, code)
	}
	if _, ok := res.KPI(key); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKPI, key)
	}
	m, err := s.manager(code)
	if err != nil {
		return nil, err
	}
	return m.ToggleDefaultVisibility(ctx, key)
}

func (s *Service) manager(code string) (*cards.Manager, error) {
	if _, ok := s.opts.Registry.Resource(code); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, code)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.managers[code]; ok {
		return m, nil
	}
	m, err := cards.NewManager(cards.Options{
		Resource:  code,
		Store:     s.opts.Store,
		Validator: s.opts.CardValidator,
		Telemetry: s.opts.Telemetry,
		Logger:    s.opts.Logger,
		NewID:     s.opts.NewID,
	})
	if err != nil {
		return nil, err
	}
	s.managers[code] = m
	return m, nil
}
