package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-inkhub/components/admin"
)

type bulkService interface {
	BulkEdit(ctx context.Context, req admin.BulkEditRequest) (int, error)
	BulkDelete(ctx context.Context, req admin.BulkDeleteRequest) (int, error)
}

// BulkEditCommand wraps Service.BulkEdit.
type BulkEditCommand struct {
	service   bulkService
	telemetry Telemetry
}

// NewBulkEditCommand builds the command.
func NewBulkEditCommand(service bulkService, telemetry Telemetry) *BulkEditCommand {
	return &BulkEditCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[admin.BulkEditRequest] = (*BulkEditCommand)(nil)

// Execute patches the targeted entities.
func (c *BulkEditCommand) Execute(ctx context.Context, msg admin.BulkEditRequest) error {
	if c.service == nil {
		return errors.New("bulk edit command requires service")
	}
	n, err := c.service.BulkEdit(ctx, msg)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "admin.command.bulk_edit", map[string]any{
		"resource": msg.Resource,
		"fields":   len(msg.Patch),
		"count":    n,
	})
	return nil
}

// BulkDeleteCommand wraps Service.BulkDelete.
type BulkDeleteCommand struct {
	service   bulkService
	telemetry Telemetry
}

// NewBulkDeleteCommand builds the command.
func NewBulkDeleteCommand(service bulkService, telemetry Telemetry) *BulkDeleteCommand {
	return &BulkDeleteCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[admin.BulkDeleteRequest] = (*BulkDeleteCommand)(nil)

// Execute removes the targeted entities.
func (c *BulkDeleteCommand) Execute(ctx context.Context, msg admin.BulkDeleteRequest) error {
	if c.service == nil {
		return errors.New("bulk delete command requires service")
	}
	n, err := c.service.BulkDelete(ctx, msg)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "admin.command.bulk_delete", map[string]any{
		"resource": msg.Resource,
		"count":    n,
	})
	return nil
}

type selectService interface {
	Select(ctx context.Context, req admin.SelectRequest) ([]string, error)
}

// SelectCommand wraps Service.Select.
type SelectCommand struct {
	service selectService
}

// NewSelectCommand builds the command.
func NewSelectCommand(service selectService) *SelectCommand {
	return &SelectCommand{service: service}
}

var _ gocommand.Commander[admin.SelectRequest] = (*SelectCommand)(nil)

// Execute changes the selection.
func (c *SelectCommand) Execute(ctx context.Context, msg admin.SelectRequest) error {
	if c.service == nil {
		return errors.New("select command requires service")
	}
	_, err := c.service.Select(ctx, msg)
	return err
}

// SortInput is a header click on column.
type SortInput struct {
	Resource string `json:"resource"`
	Column   string `json:"column"`
}

type sortService interface {
	Sort(ctx context.Context, code, column string) (admin.PageResult, error)
}

// SortCommand wraps Service.Sort.
type SortCommand struct {
	service sortService
}

// NewSortCommand builds the command.
func NewSortCommand(service sortService) *SortCommand {
	return &SortCommand{service: service}
}

var _ gocommand.Commander[SortInput] = (*SortCommand)(nil)

// Execute applies the header-click sort rule.
func (c *SortCommand) Execute(ctx context.Context, msg SortInput) error {
	if c.service == nil {
		return errors.New("sort command requires service")
	}
	if msg.Column == "" {
		return errors.New("sort column is required")
	}
	_, err := c.service.Sort(ctx, msg.Resource, msg.Column)
	return err
}
