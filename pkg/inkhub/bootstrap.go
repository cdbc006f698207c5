package inkhub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	router "github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/admin/commands"
	"github.com/goliatone/go-inkhub/components/admin/gorouter"
	"github.com/goliatone/go-inkhub/components/admin/httpapi"
	"github.com/goliatone/go-inkhub/components/admin/queries"
	"github.com/goliatone/go-inkhub/components/datatable"
	"github.com/goliatone/go-inkhub/pkg/config"
	"github.com/goliatone/go-inkhub/pkg/sources"
	"github.com/goliatone/go-inkhub/pkg/telemetry"
)

// App is a fully wired panel.
type App struct {
	Service    *Service
	Handlers   *httpapi.Handlers
	Controller *admin.Controller
	Metrics    *telemetry.Prometheus
	BasePath   string

	closers []func() error
}

// BootstrapOptions overrides parts of the wiring.
type BootstrapOptions struct {
	Logger     *slog.Logger
	Registerer prometheus.Registerer
	// Source replaces the configured REST and fixture sources.
	Source admin.Source
	// Renderer replaces the embedded shell templates.
	Renderer admin.Renderer
}

// Bootstrap builds the store, sources, telemetry, service and HTTP handlers
// described by cfg.
func Bootstrap(ctx context.Context, cfg *config.Config, opts BootstrapOptions) (*App, error) {
	if cfg == nil {
		return nil, errors.New("inkhub: config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{BasePath: cfg.BasePath}

	registry := admin.NewRegistry()
	if cfg.Manifest != "" {
		doc, err := registry.LoadManifestFile(cfg.Manifest)
		if err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "manifest loaded", "path", cfg.Manifest, "resources", len(doc.Resources))
	}

	store, closeStore, err := cfg.Store.Open(ctx)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeStore)

	src := opts.Source
	if src == nil {
		if src, err = configuredSource(cfg.Source); err != nil {
			_ = app.Close()
			return nil, err
		}
	}

	var recorder admin.Telemetry = telemetry.NewLogger(logger)
	if cfg.Metrics {
		prom, err := telemetry.NewPrometheus(telemetry.PrometheusOptions{Registerer: opts.Registerer, Next: recorder})
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("inkhub: metrics: %w", err)
		}
		app.Metrics = prom
		recorder = prom
	}

	svc := admin.NewService(admin.Options{
		Registry:  registry,
		Source:    src,
		Store:     store,
		Telemetry: recorder,
		Logger:    logger,
		Locale:    cfg.Language(),
	})
	app.Service = svc
	app.Handlers = NewHandlers(svc, recorder)

	renderer := opts.Renderer
	if renderer == nil {
		if renderer, err = admin.NewTemplateRenderer(); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("inkhub: templates: %w", err)
		}
	}
	app.Controller = admin.NewController(admin.ControllerOptions{
		Service:  svc,
		Renderer: renderer,
		BasePath: cfg.BasePath,
	})
	return app, nil
}

func configuredSource(cfg config.Source) (admin.Source, error) {
	var chain []admin.Source
	if cfg.BaseURL != "" {
		client, err := sources.NewHTTPClient(sources.HTTPConfig{BaseURL: cfg.BaseURL, Token: cfg.Token})
		if err != nil {
			return nil, err
		}
		chain = append(chain, client)
	}
	if cfg.Fixtures != "" {
		fixtures, err := LoadFixtures(cfg.Fixtures)
		if err != nil {
			return nil, err
		}
		chain = append(chain, sources.NewStaticSource(fixtures))
	}
	switch len(chain) {
	case 0:
		return nil, nil
	case 1:
		return chain[0], nil
	}
	return sources.Fallback(chain...), nil
}

// NewHandlers wires every command and query of svc into HTTP handlers.
func NewHandlers(svc *Service, recorder commands.Telemetry) *httpapi.Handlers {
	return &httpapi.Handlers{
		Page:              queries.NewPageQuery(svc),
		Table:             queries.NewTableQuery(svc),
		UniqueValues:      queries.NewUniqueValuesQuery(svc),
		KPIs:              queries.NewKPIQuery(svc),
		Chart:             queries.NewChartQuery(svc),
		Cards:             queries.NewCardsQuery(svc),
		Visibility:        queries.NewVisibilityQuery(svc),
		Export:            queries.NewExportQuery(svc),
		ExportKPI:         queries.NewExportKPIQuery(svc),
		Sort:              commands.NewSortCommand(svc),
		Select:            commands.NewSelectCommand(svc),
		BulkEdit:          commands.NewBulkEditCommand(svc, recorder),
		BulkDelete:        commands.NewBulkDeleteCommand(svc, recorder),
		Refresh:           commands.NewRefreshResourceCommand(svc, recorder),
		CreateCard:        commands.NewCreateCardCommand(svc, recorder),
		UpdateCard:        commands.NewUpdateCardCommand(svc),
		ToggleCard:        commands.NewToggleCardCommand(svc),
		DeleteCard:        commands.NewDeleteCardCommand(svc, recorder),
		ReorderCards:      commands.NewReorderCardsCommand(svc),
		ToggleDefaultCard: commands.NewToggleDefaultCardCommand(svc),
	}
}

// Mount registers the shell under <base> and the API under <base>/api on any
// go-router router.
func Mount[T any](r router.Router[T], app *App) error {
	if app == nil {
		return errors.New("inkhub: app is required")
	}
	return gorouter.Register(gorouter.Config[T]{
		Router:     r,
		Controller: app.Controller,
		API:        app.Handlers,
		BasePath:   app.BasePath,
	})
}

// Close releases the store.
func (a *App) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, a.closers[i]())
	}
	a.closers = nil
	return err
}

// LoadFixtures reads a YAML map of resource code to entity list.
func LoadFixtures(path string) (map[string][]datatable.Entity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("inkhub: read fixtures %s: %w", path, err)
	}
	var fixtures map[string][]datatable.Entity
	if err := yaml.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("inkhub: decode fixtures %s: %w", path, err)
	}
	return fixtures, nil
}

// SeedFixtures seeds every resource in fixtures. Failures are joined.
func SeedFixtures(ctx context.Context, svc *Service, fixtures map[string][]datatable.Entity) error {
	var seedErr error
	for _, res := range svc.Resources() {
		items, ok := fixtures[res.Code]
		if !ok {
			continue
		}
		if err := svc.Seed(ctx, res.Code, items); err != nil {
			seedErr = errors.Join(seedErr, err)
		}
	}
	for code := range fixtures {
		if _, ok := svc.Registry().Resource(code); !ok {
			seedErr = errors.Join(seedErr, fmt.Errorf("%w: %s", admin.ErrUnknownResource, code))
		}
	}
	return seedErr
}
