package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-inkhub/components/admin"
)

// ResourceInput names the resource a read targets.
type ResourceInput struct {
	Resource string `json:"resource"`
}

type pageService interface {
	Page(ctx context.Context, code string) (admin.PageResult, error)
	Query(ctx context.Context, req admin.QueryRequest) (admin.PageResult, error)
}

// PageQuery returns the current page of a resource.
type PageQuery struct {
	service pageService
}

// NewPageQuery builds the query.
func NewPageQuery(service pageService) *PageQuery {
	return &PageQuery{service: service}
}

var _ gocommand.Querier[ResourceInput, admin.PageResult] = (*PageQuery)(nil)

// Query reads the page without changing state.
func (q *PageQuery) Query(ctx context.Context, msg ResourceInput) (admin.PageResult, error) {
	return q.service.Page(ctx, msg.Resource)
}

// TableQuery applies a full filter, sort and paging state.
type TableQuery struct {
	service pageService
}

// NewTableQuery builds the query.
func NewTableQuery(service pageService) *TableQuery {
	return &TableQuery{service: service}
}

var _ gocommand.Querier[admin.QueryRequest, admin.PageResult] = (*TableQuery)(nil)

// Query applies msg and returns the resulting page.
func (q *TableQuery) Query(ctx context.Context, msg admin.QueryRequest) (admin.PageResult, error) {
	return q.service.Query(ctx, msg)
}

// UniqueValuesInput asks for the distinct values of a field.
type UniqueValuesInput struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
}

type uniqueValuesService interface {
	UniqueValues(ctx context.Context, code, field string) ([]string, error)
}

// UniqueValuesQuery feeds filter dropdowns.
type UniqueValuesQuery struct {
	service uniqueValuesService
}

// NewUniqueValuesQuery builds the query.
func NewUniqueValuesQuery(service uniqueValuesService) *UniqueValuesQuery {
	return &UniqueValuesQuery{service: service}
}

var _ gocommand.Querier[UniqueValuesInput, []string] = (*UniqueValuesQuery)(nil)

// Query lists the values.
func (q *UniqueValuesQuery) Query(ctx context.Context, msg UniqueValuesInput) ([]string, error) {
	return q.service.UniqueValues(ctx, msg.Resource, msg.Field)
}
