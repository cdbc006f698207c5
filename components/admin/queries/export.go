package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/export"
)

type exportService interface {
	Export(ctx context.Context, req admin.ExportRequest) (export.Artifact, error)
	ExportKPI(ctx context.Context, code, key string) (export.Artifact, error)
}

// ExportQuery builds a download of a resource.
type ExportQuery struct {
	service exportService
}

// NewExportQuery builds the query.
func NewExportQuery(service exportService) *ExportQuery {
	return &ExportQuery{service: service}
}

var _ gocommand.Querier[admin.ExportRequest, export.Artifact] = (*ExportQuery)(nil)

// Query renders the artifact. PDF yields export.ErrComingSoon with a notice.
func (q *ExportQuery) Query(ctx context.Context, msg admin.ExportRequest) (export.Artifact, error) {
	return q.service.Export(ctx, msg)
}

// ExportKPIInput addresses one KPI card.
type ExportKPIInput struct {
	Resource string `json:"resource"`
	Key      string `json:"key"`
}

// ExportKPIQuery serializes one KPI.
type ExportKPIQuery struct {
	service exportService
}

// NewExportKPIQuery builds the query.
func NewExportKPIQuery(service exportService) *ExportKPIQuery {
	return &ExportKPIQuery{service: service}
}

var _ gocommand.Querier[ExportKPIInput, export.Artifact] = (*ExportKPIQuery)(nil)

// Query exports the KPI snapshot.
func (q *ExportKPIQuery) Query(ctx context.Context, msg ExportKPIInput) (export.Artifact, error) {
	return q.service.ExportKPI(ctx, msg.Resource, msg.Key)
}
