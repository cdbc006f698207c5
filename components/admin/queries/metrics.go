package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/cards"
)

type metricsService interface {
	KPIs(ctx context.Context, code string) ([]admin.KPICard, error)
	Cards(ctx context.Context, code string) ([]cards.Result, error)
	DefaultVisibility(ctx context.Context, code string) (map[string]bool, error)
	KPIChart(ctx context.Context, code string) (string, error)
}

// KPIQuery recomputes the built-in KPI cards.
type KPIQuery struct {
	service metricsService
}

// NewKPIQuery builds the query.
func NewKPIQuery(service metricsService) *KPIQuery {
	return &KPIQuery{service: service}
}

var _ gocommand.Querier[ResourceInput, []admin.KPICard] = (*KPIQuery)(nil)

// Query computes the KPIs over the filtered set.
func (q *KPIQuery) Query(ctx context.Context, msg ResourceInput) ([]admin.KPICard, error) {
	return q.service.KPIs(ctx, msg.Resource)
}

// CardsQuery computes the custom cards.
type CardsQuery struct {
	service metricsService
}

// NewCardsQuery builds the query.
func NewCardsQuery(service metricsService) *CardsQuery {
	return &CardsQuery{service: service}
}

var _ gocommand.Querier[ResourceInput, []cards.Result] = (*CardsQuery)(nil)

// Query computes every custom card.
func (q *CardsQuery) Query(ctx context.Context, msg ResourceInput) ([]cards.Result, error) {
	return q.service.Cards(ctx, msg.Resource)
}

// VisibilityQuery reads the built-in card visibility map.
type VisibilityQuery struct {
	service metricsService
}

// NewVisibilityQuery builds the query.
func NewVisibilityQuery(service metricsService) *VisibilityQuery {
	return &VisibilityQuery{service: service}
}

var _ gocommand.Querier[ResourceInput, map[string]bool] = (*VisibilityQuery)(nil)

// Query returns the stored overrides.
func (q *VisibilityQuery) Query(ctx context.Context, msg ResourceInput) (map[string]bool, error) {
	return q.service.DefaultVisibility(ctx, msg.Resource)
}

// ChartQuery renders the KPI chart HTML.
type ChartQuery struct {
	service metricsService
}

// NewChartQuery builds the query.
func NewChartQuery(service metricsService) *ChartQuery {
	return &ChartQuery{service: service}
}

var _ gocommand.Querier[ResourceInput, string] = (*ChartQuery)(nil)

// Query renders the chart.
func (q *ChartQuery) Query(ctx context.Context, msg ResourceInput) (string, error) {
	return q.service.KPIChart(ctx, msg.Resource)
}
