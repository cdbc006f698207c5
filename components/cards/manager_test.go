package cards

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/goliatone/go-inkhub/components/datatable"
	"github.com/goliatone/go-inkhub/components/kvstore"
	"github.com/goliatone/go-inkhub/components/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTelemetry struct {
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.events = append(r.events, event)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("card-%d", n)
	}
}

func newTestManager(t *testing.T, store kvstore.Store, telemetry Telemetry) *Manager {
	t.Helper()
	m, err := NewManager(Options{
		Resource:  "shopify-products",
		Store:     store,
		Telemetry: telemetry,
		NewID:     sequentialIDs(),
	})
	require.NoError(t, err)
	return m
}

func products() []datatable.Entity {
	return []datatable.Entity{
		{"id": "p1", "price": 10},
		{"id": "p2", "price": 20},
		{"id": "p3", "price": 30},
		{"id": "p4", "price": 0},
	}
}

func TestNewManagerRequiresResource(t *testing.T) {
	_, err := NewManager(Options{})
	assert.ErrorIs(t, err, ErrResourceRequired)
}

func TestCreatePersistsUnderResourceKey(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	telemetry := &recordingTelemetry{}
	m := newTestManager(t, store, telemetry)

	card, err := m.Create(ctx, CustomCard{
		Title:            "Mug revenue",
		Field:            "price",
		Operation:        metrics.OpSum,
		SelectedProducts: []string{"p1", "p2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "card-1", card.ID)
	assert.True(t, card.IsVisible)

	raw, ok, err := store.Get(ctx, "shopify-products-custom-cards")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"selectedProducts":["p1","p2"]`)
	assert.Equal(t, []string{"cards.created"}, telemetry.events)

	reloaded := newTestManager(t, store, nil)
	list, err := reloaded.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []CustomCard{card}, list)
}

func TestCreateRejectsInvalidDrafts(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil, nil)

	_, err := m.Create(ctx, CustomCard{Title: "", Field: "price", Operation: metrics.OpSum})
	assert.ErrorIs(t, err, ErrInvalidCard)

	_, err = m.Create(ctx, CustomCard{Title: "x", Field: "price", Operation: "median"})
	assert.ErrorIs(t, err, ErrInvalidCard)

	_, err = m.Create(ctx, CustomCard{Title: "x", Field: "price", Operation: metrics.OpCustom})
	assert.ErrorIs(t, err, ErrInvalidCard)

	_, err = m.Create(ctx, CustomCard{Title: "x", Field: "price", Operation: metrics.OpCustom, Formula: "sum / count"})
	assert.NoError(t, err)
}

func TestUpdateToggleReorderDelete(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil, nil)
	for _, title := range []string{"A", "B", "C"} {
		_, err := m.Create(ctx, CustomCard{Title: title, Field: "price", Operation: metrics.OpMax})
		require.NoError(t, err)
	}

	title := "B2"
	op := metrics.OpMin
	updated, err := m.Update(ctx, "card-2", Patch{Title: &title, Operation: &op})
	require.NoError(t, err)
	assert.Equal(t, "B2", updated.Title)
	assert.Equal(t, metrics.OpMin, updated.Operation)

	empty := ""
	_, err = m.Update(ctx, "card-2", Patch{Title: &empty})
	assert.ErrorIs(t, err, ErrInvalidCard)

	toggled, err := m.ToggleVisibility(ctx, "card-1")
	require.NoError(t, err)
	assert.False(t, toggled.IsVisible)

	list, err := m.Reorder(ctx, []string{"card-3", "missing", "card-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"card-3", "card-1", "card-2"}, cardIDs(list))

	require.NoError(t, m.Delete(ctx, "card-1"))
	assert.ErrorIs(t, m.Delete(ctx, "card-1"), ErrCardNotFound)

	list, err = m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"card-3", "card-2"}, cardIDs(list))

	_, err = m.ToggleVisibility(ctx, "nope")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestCorruptStoredCardsFallBackToEmpty(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, CardsKey("shopify-products"), "[{broken"))
	m := newTestManager(t, store, nil)

	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = m.Create(ctx, CustomCard{Title: "Fresh", Field: "price", Operation: metrics.OpSum})
	require.NoError(t, err)
	list, err = m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestComputeStoresValuesAndSkipsStaleIDs(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil, nil)
	_, err := m.Create(ctx, CustomCard{Title: "Sum", Field: "price", Operation: metrics.OpSum, SelectedProducts: []string{"p1", "p3", "gone"}})
	require.NoError(t, err)
	_, err = m.Create(ctx, CustomCard{Title: "Share", Field: "price", Operation: metrics.OpPercentage, SelectedProducts: []string{"p1", "p4"}})
	require.NoError(t, err)
	_, err = m.Create(ctx, CustomCard{Title: "Bad", Field: "price", Operation: metrics.OpCustom, Formula: "sum +", SelectedProducts: []string{"p1"}})
	require.NoError(t, err)

	results, err := m.Compute(ctx, products())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 40.0, results[0].Value)
	assert.Equal(t, "$40.00", results[0].Display)
	assert.Equal(t, 2, results[0].Matched)

	assert.Equal(t, 25.0, results[1].Value)

	assert.Equal(t, 0.0, results[2].Value)
	assert.NotEmpty(t, results[2].FormulaError)

	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40.0, list[0].ComputedValue)
	assert.Equal(t, 25.0, list[1].ComputedValue)
}

func TestComputeKeepsInfiniteOutOfStorage(t *testing.T) {
	res := Compute(CustomCard{Field: "price", Operation: metrics.OpCustom, Formula: "sum / 0", SelectedProducts: []string{"p1"}}, products())
	assert.Equal(t, metrics.NotAvailable, res.Display)
	assert.Empty(t, res.FormulaError)
	assert.Zero(t, res.Card.ComputedValue)
}

func TestDefaultVisibility(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	m := newTestManager(t, store, nil)

	vis, err := m.DefaultVisibility(ctx)
	require.NoError(t, err)
	assert.True(t, IsVisible(vis, "revenue"))

	vis, err = m.ToggleDefaultVisibility(ctx, "revenue")
	require.NoError(t, err)
	assert.False(t, IsVisible(vis, "revenue"))

	raw, ok, err := store.Get(ctx, "shopify-products-default-card-visibility")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"revenue":false}`, raw)

	vis, err = m.ToggleDefaultVisibility(ctx, "revenue")
	require.NoError(t, err)
	assert.True(t, IsVisible(vis, "revenue"))
}

func TestConcurrentVisibilityTogglesAreNotLost(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, kvstore.NewMemoryStore(), nil)

	const toggles = 9
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.ToggleDefaultVisibility(ctx, "revenue")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	vis, err := m.DefaultVisibility(ctx)
	require.NoError(t, err)
	assert.False(t, IsVisible(vis, "revenue"))
}

func cardIDs(list []CustomCard) []string {
	ids := make([]string, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}
	return ids
}
