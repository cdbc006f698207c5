package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/datatable"
)

// RefreshResourceInput names the resource to pull again.
type RefreshResourceInput struct {
	Resource string `json:"resource"`
}

type refreshService interface {
	Refresh(ctx context.Context, code string) (admin.RefreshResult, error)
}

// RefreshResourceCommand wraps Service.Refresh.
type RefreshResourceCommand struct {
	service   refreshService
	telemetry Telemetry
}

// NewRefreshResourceCommand builds the command.
func NewRefreshResourceCommand(service refreshService, telemetry Telemetry) *RefreshResourceCommand {
	return &RefreshResourceCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshResourceInput] = (*RefreshResourceCommand)(nil)

// Execute replaces the working set from the source.
func (c *RefreshResourceCommand) Execute(ctx context.Context, msg RefreshResourceInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	result, err := c.service.Refresh(ctx, msg.Resource)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "admin.command.refresh", map[string]any{
		"resource": msg.Resource,
		"count":    result.Count,
	})
	return nil
}

// SeedResourceInput loads a fixed working set.
type SeedResourceInput struct {
	Resource string             `json:"resource"`
	Items    []datatable.Entity `json:"items"`
}

type seedService interface {
	Seed(ctx context.Context, code string, data []datatable.Entity) error
}

// SeedResourceCommand wraps Service.Seed.
type SeedResourceCommand struct {
	service seedService
}

// NewSeedResourceCommand builds the command.
func NewSeedResourceCommand(service seedService) *SeedResourceCommand {
	return &SeedResourceCommand{service: service}
}

var _ gocommand.Commander[SeedResourceInput] = (*SeedResourceCommand)(nil)

// Execute replaces the working set with msg.Items.
func (c *SeedResourceCommand) Execute(ctx context.Context, msg SeedResourceInput) error {
	if c.service == nil {
		return errors.New("seed command requires service")
	}
	return c.service.Seed(ctx, msg.Resource, msg.Items)
}
