package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/cards"
	"github.com/goliatone/go-inkhub/components/datatable"
	"github.com/goliatone/go-inkhub/components/metrics"
)

type stubTelemetry struct {
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.events = append(s.events, event)
}

func seededService(t *testing.T) *admin.Service {
	t.Helper()
	svc := admin.NewService(admin.Options{})
	err := NewSeedResourceCommand(svc).Execute(context.Background(), SeedResourceInput{
		Resource: admin.PinterestPins,
		Items: []datatable.Entity{
			{"id": "pin-1", "title": "Botanical print", "board": "Prints", "saves": 12, "clicks": 3},
			{"id": "pin-2", "title": "Gold foil card", "board": "Cards", "saves": 4, "clicks": 8},
			{"id": "pin-3", "title": "Linocut", "board": "Prints", "saves": 0, "clicks": 1},
		},
	})
	require.NoError(t, err)
	return svc
}

func TestBulkCommands(t *testing.T) {
	svc := seededService(t)
	telemetry := &stubTelemetry{}
	ctx := context.Background()

	require.NoError(t, NewSelectCommand(svc).Execute(ctx, admin.SelectRequest{Resource: admin.PinterestPins, Mode: admin.SelectPage}))
	require.NoError(t, NewBulkEditCommand(svc, telemetry).Execute(ctx, admin.BulkEditRequest{
		Resource: admin.PinterestPins,
		IDs:      []string{"pin-3"},
		Patch:    map[string]any{"board": "Archive"},
	}))
	values, err := svc.UniqueValues(ctx, admin.PinterestPins, "board")
	require.NoError(t, err)
	assert.Equal(t, []string{"Archive", "Cards", "Prints"}, values)

	require.NoError(t, NewBulkDeleteCommand(svc, telemetry).Execute(ctx, admin.BulkDeleteRequest{Resource: admin.PinterestPins}))
	page, err := svc.Page(ctx, admin.PinterestPins)
	require.NoError(t, err)
	assert.Empty(t, page.View.Items)

	err = NewBulkEditCommand(svc, telemetry).Execute(ctx, admin.BulkEditRequest{Resource: admin.PinterestPins, Patch: map[string]any{"x": 1}})
	assert.ErrorIs(t, err, datatable.ErrEmptySelection)

	assert.Equal(t, []string{"admin.command.bulk_edit", "admin.command.bulk_delete"}, telemetry.events)
}

func TestSortCommand(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()
	cmd := NewSortCommand(svc)

	require.NoError(t, cmd.Execute(ctx, SortInput{Resource: admin.PinterestPins, Column: "saves"}))
	page, err := svc.Page(ctx, admin.PinterestPins)
	require.NoError(t, err)
	assert.Equal(t, []string{"pin-3", "pin-2", "pin-1"}, datatable.IDs(page.View.Items))

	assert.Error(t, cmd.Execute(ctx, SortInput{Resource: admin.PinterestPins}))
	assert.Error(t, NewSortCommand(nil).Execute(ctx, SortInput{Column: "saves"}))
}

func TestRefreshResourceCommand(t *testing.T) {
	telemetry := &stubTelemetry{}
	svc := admin.NewService(admin.Options{Source: admin.SourceFunc(func(context.Context, admin.Resource) ([]datatable.Entity, error) {
		return []datatable.Entity{{"id": "o1"}}, nil
	})})
	cmd := NewRefreshResourceCommand(svc, telemetry)
	require.NoError(t, cmd.Execute(context.Background(), RefreshResourceInput{Resource: admin.ShopifyOrders}))
	assert.Equal(t, []string{"admin.command.refresh"}, telemetry.events)

	err := cmd.Execute(context.Background(), RefreshResourceInput{Resource: "unknown"})
	assert.ErrorIs(t, err, admin.ErrUnknownResource)
}

func TestCardCommands(t *testing.T) {
	svc := seededService(t)
	telemetry := &stubTelemetry{}
	ctx := context.Background()

	var created cards.CustomCard
	require.NoError(t, NewCreateCardCommand(svc, telemetry).Execute(ctx, CreateCardInput{
		Resource: admin.PinterestPins,
		Card:     cards.CustomCard{Title: "Print saves", Field: "saves", Operation: metrics.OpSum, SelectedProducts: []string{"pin-1", "pin-3"}},
		Created:  &created,
	}))
	require.NotEmpty(t, created.ID)

	title := "Saves (prints)"
	require.NoError(t, NewUpdateCardCommand(svc).Execute(ctx, UpdateCardInput{Resource: admin.PinterestPins, ID: created.ID, Patch: cards.Patch{Title: &title}}))
	require.NoError(t, NewToggleCardCommand(svc).Execute(ctx, CardInput{Resource: admin.PinterestPins, ID: created.ID}))
	require.NoError(t, NewReorderCardsCommand(svc).Execute(ctx, ReorderCardsInput{Resource: admin.PinterestPins, CardIDs: []string{created.ID}}))

	list, err := svc.CardList(ctx, admin.PinterestPins)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Saves (prints)", list[0].Title)
	assert.False(t, list[0].IsVisible)

	require.NoError(t, NewToggleDefaultCardCommand(svc).Execute(ctx, DefaultCardInput{Resource: admin.PinterestPins, Key: "saves"}))
	vis, err := svc.DefaultVisibility(ctx, admin.PinterestPins)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"saves": false}, vis)

	require.NoError(t, NewDeleteCardCommand(svc, telemetry).Execute(ctx, CardInput{Resource: admin.PinterestPins, ID: created.ID}))
	err = NewDeleteCardCommand(svc, telemetry).Execute(ctx, CardInput{Resource: admin.PinterestPins, ID: created.ID})
	assert.ErrorIs(t, err, cards.ErrCardNotFound)

	assert.Equal(t, []string{"admin.command.card_create", "admin.command.card_delete"}, telemetry.events)
}

func TestCommandsRequireService(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, NewBulkEditCommand(nil, nil).Execute(ctx, admin.BulkEditRequest{}))
	assert.Error(t, NewSeedResourceCommand(nil).Execute(ctx, SeedResourceInput{}))
	err := NewCreateCardCommand(nil, nil).Execute(ctx, CreateCardInput{})
	assert.True(t, errors.Is(err, errMissingCardService))
}
