package datatable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productSchema() Schema {
	return NewSchema(
		Column{Key: "id"},
		Column{Key: "title", Sortable: true},
		Column{Key: "price", Type: ColumnNumber, Currency: true, Filterable: true, Sortable: true},
		Column{Key: "status", Type: ColumnSelect, Filterable: true},
		Column{Key: "vendor", Filterable: true},
		Column{Key: "tags", Type: ColumnMultiSelect, Filterable: true},
		Column{Key: "createdAt", Type: ColumnDate, Filterable: true},
	)
}

func sampleProducts() []Entity {
	return []Entity{
		{"id": "p1", "title": "Red Mug", "price": 10.0, "status": "active", "vendor": "Acme", "tags": []any{"kitchen", "red"}, "createdAt": "2024-01-05T10:00:00Z"},
		{"id": "p2", "title": "Blue Mug", "price": 25.5, "status": "draft", "vendor": "Acme", "tags": []any{"kitchen"}, "createdAt": "2024-02-10T09:30:00Z"},
		{"id": "p3", "title": "Poster", "price": "7", "status": "active", "vendor": "Inky", "tags": []any{"wall"}, "createdAt": "2024-03-01T00:00:00Z"},
		{"id": "p4", "title": "Tote", "price": nil, "status": "archived", "vendor": "Inky", "createdAt": "2024-03-15T12:00:00Z"},
		{"id": "p5", "title": "apron", "price": 40, "status": "Active", "vendor": "Acme", "tags": []any{}, "createdAt": "2024-04-20T08:00:00Z"},
	}
}

func numberedEntities(n int) []Entity {
	out := make([]Entity, n)
	for i := range out {
		out[i] = Entity{"id": fmt.Sprintf("e%02d", i+1), "n": i + 1}
	}
	return out
}

func TestSearchQueryMatchesAnyAttribute(t *testing.T) {
	table := New(sampleProducts(), Options{Schema: productSchema()})

	table.SetSearchQuery("MUG")
	assert.Equal(t, []string{"p1", "p2"}, IDs(table.Filtered()))

	table.SetSearchQuery("inky")
	assert.Equal(t, []string{"p3", "p4"}, IDs(table.Filtered()))

	table.SetSearchQuery("")
	assert.Len(t, table.Filtered(), 5)
}

func TestSearchConditionsGreaterThan(t *testing.T) {
	table := New([]Entity{
		{"id": "1", "price": 10},
		{"id": "2", "price": 20},
		{"id": "3", "price": "abc"},
	}, Options{})

	table.SetSearchConditions([]SearchCondition{{Field: "price", Operator: OpGreaterThan, Value: "15"}})

	assert.Equal(t, []string{"2"}, IDs(table.Filtered()))
}

func TestSearchConditionsIgnoreIncompleteRows(t *testing.T) {
	table := New(sampleProducts(), Options{})
	table.SetSearchConditions([]SearchCondition{
		{Field: "", Operator: OpEquals, Value: "x"},
		{Field: "title", Operator: OpContains, Value: ""},
	})
	assert.Len(t, table.Filtered(), 5)
}

func TestCustomFiltersAreANDed(t *testing.T) {
	table := New(sampleProducts(), Options{})
	table.AddCustomFilter(CustomFilter{ID: "f1", Name: "Acme", Field: "vendor", Value: "Acme"})
	table.AddCustomFilter(CustomFilter{ID: "f2", Name: "Active", Field: "status", Value: "active"})

	assert.Equal(t, []string{"p1"}, IDs(table.Filtered()))

	table.RemoveCustomFilter("f2")
	assert.Equal(t, []string{"p1", "p2", "p5"}, IDs(table.Filtered()))
}

func TestColumnFilterKinds(t *testing.T) {
	table := New(sampleProducts(), Options{Schema: productSchema()})

	table.SetColumnFilter("price", TextFilter(">=10"))
	assert.Equal(t, []string{"p1", "p2", "p5"}, IDs(table.Filtered()))

	table.SetColumnFilter("price", TextFilter("5-12"))
	assert.Equal(t, []string{"p1", "p3"}, IDs(table.Filtered()))

	table.ClearColumnFilter("price")
	table.SetColumnFilter("status", TextFilter("active"))
	assert.Equal(t, []string{"p1", "p3", "p5"}, IDs(table.Filtered()))

	table.SetColumnFilter("status", InFilter("draft", "archived"))
	assert.Equal(t, []string{"p2", "p4"}, IDs(table.Filtered()))

	table.ClearFilters()
	table.SetColumnFilter("tags", InFilter("kitchen"))
	assert.Equal(t, []string{"p1", "p2"}, IDs(table.Filtered()))

	table.ClearFilters()
	table.SetColumnFilter("createdAt", TextFilter("2024-03"))
	assert.Equal(t, []string{"p3", "p4"}, IDs(table.Filtered()))
}

func TestColumnFilterRanges(t *testing.T) {
	table := New(sampleProducts(), Options{Schema: productSchema()})
	lo, hi := 7.0, 25.5
	table.SetColumnFilter("price", FilterValue{Min: &lo, Max: &hi})
	assert.Equal(t, []string{"p1", "p2", "p3"}, IDs(table.Filtered()))

	table.ClearFilters()
	start := mustTime(t, "2024-03-01")
	end := mustTime(t, "2024-03-15")
	table.SetColumnFilter("createdAt", FilterValue{Start: &start, End: &end})
	assert.Equal(t, []string{"p3", "p4"}, IDs(table.Filtered()))
}

func TestSortFlipsAndResets(t *testing.T) {
	table := New(sampleProducts(), Options{Schema: productSchema()})

	table.Sort("title")
	column, dir := table.SortState()
	assert.Equal(t, "title", column)
	assert.Equal(t, SortAsc, dir)
	assert.Equal(t, []string{"p5", "p2", "p3", "p1", "p4"}, IDs(table.Filtered()))

	table.Sort("title")
	_, dir = table.SortState()
	assert.Equal(t, SortDesc, dir)
	assert.Equal(t, []string{"p4", "p1", "p3", "p2", "p5"}, IDs(table.Filtered()))

	table.Sort("vendor")
	column, dir = table.SortState()
	assert.Equal(t, "vendor", column)
	assert.Equal(t, SortAsc, dir)
}

func TestSortNumericAndStable(t *testing.T) {
	table := New([]Entity{
		{"id": "a", "n": 10},
		{"id": "b", "n": 2},
		{"id": "c", "n": 10},
		{"id": "d", "n": 2.5},
	}, Options{})

	table.Sort("n")
	assert.Equal(t, []string{"b", "d", "a", "c"}, IDs(table.Filtered()))

	table.Sort("n")
	assert.Equal(t, []string{"a", "c", "d", "b"}, IDs(table.Filtered()))
}

func TestPagination(t *testing.T) {
	table := New(numberedEntities(25), Options{})

	view := table.View()
	assert.Len(t, view.Items, 10)
	assert.Equal(t, 3, view.Pagination.TotalPages)
	assert.Equal(t, 25, view.Pagination.TotalItems)
	assert.Equal(t, 1, view.Pagination.StartIndex)
	assert.Equal(t, 10, view.Pagination.EndIndex)

	table.SetPage(3)
	view = table.View()
	assert.Len(t, view.Items, 5)
	assert.Equal(t, 21, view.Pagination.StartIndex)
	assert.Equal(t, 25, view.Pagination.EndIndex)

	table.ChangeItemsPerPage(20)
	assert.Equal(t, 1, table.CurrentPage())
	assert.Equal(t, 2, table.View().Pagination.TotalPages)
}

func TestPageClampsWhenFilterShrinksResult(t *testing.T) {
	table := New(numberedEntities(25), Options{})
	table.SetPage(3)

	table.SetSearchQuery("e0")
	assert.Equal(t, 1, table.CurrentPage())
	assert.Len(t, table.View().Items, 9)

	table.SetSearchQuery("nothing matches")
	view := table.View()
	assert.Equal(t, 1, view.Pagination.CurrentPage)
	assert.Equal(t, 1, view.Pagination.TotalPages)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.Pagination.StartIndex)
}

func TestSelectItemToggles(t *testing.T) {
	table := New(sampleProducts(), Options{})
	table.SelectItem("p1")
	table.SelectItem("p3")
	assert.Equal(t, []string{"p1", "p3"}, table.Selected())

	table.SelectItem("p1")
	assert.Equal(t, []string{"p3"}, table.Selected())
}

func TestSelectAllTogglesCurrentPage(t *testing.T) {
	table := New(numberedEntities(15), Options{})
	table.SelectItem("e12")

	table.SelectAll()
	selected := table.Selected()
	assert.Len(t, selected, 11)
	assert.True(t, table.View().AllPageSelected)

	table.SelectAll()
	assert.Equal(t, []string{"e12"}, table.Selected())
}

func TestSelectFilteredAndClear(t *testing.T) {
	table := New(sampleProducts(), Options{})
	table.SetSearchQuery("acme")
	table.SelectFiltered()
	assert.Equal(t, []string{"p1", "p2", "p5"}, table.Selected())

	table.ClearSelection()
	assert.Empty(t, table.Selected())
}

func TestSetDataPrunesSelection(t *testing.T) {
	table := New(sampleProducts(), Options{})
	table.SelectItem("p1")
	table.SelectItem("p2")

	table.SetData(sampleProducts()[1:])
	assert.Equal(t, []string{"p2"}, table.Selected())
	assert.Equal(t, 4, table.Len())
}

func TestUniqueValuesIgnoresFilters(t *testing.T) {
	table := New(sampleProducts(), Options{})
	table.SetSearchQuery("mug")

	assert.Equal(t, []string{"Acme", "Inky"}, table.UniqueValues("vendor"))
	assert.Equal(t, []string{"10", "25.5", "40", "7"}, table.UniqueValues("price"))
	assert.Empty(t, table.UniqueValues("missing"))
}

func TestUniqueValuesKeepsEmptyStrings(t *testing.T) {
	data := []Entity{
		{"id": "1", "vendor": "Acme"},
		{"id": "2", "vendor": ""},
		{"id": "3", "vendor": nil},
		{"id": "4"},
	}
	assert.Equal(t, []string{"", "Acme"}, UniqueValues(data, "vendor"))
}

func TestQueryApplyAndState(t *testing.T) {
	table := New(numberedEntities(30), Options{Schema: NewSchema(Column{Key: "n", Type: ColumnNumber})})

	Query{
		ColumnFilters: map[string]FilterValue{"n": TextFilter(">10")},
		SortColumn:    "n",
		SortDirection: SortDesc,
		Page:          2,
		ItemsPerPage:  5,
	}.Apply(table)

	view := table.View()
	require.Len(t, view.Items, 5)
	assert.Equal(t, "e25", view.Items[0].ID())
	assert.Equal(t, 4, view.Pagination.TotalPages)

	state := table.State()
	assert.Equal(t, 2, state.Page)
	assert.Equal(t, 5, state.ItemsPerPage)
	assert.Equal(t, SortDesc, state.SortDirection)
	assert.Contains(t, state.ColumnFilters, "n")
}

func TestBulkUpdateIsImmutable(t *testing.T) {
	data := sampleProducts()
	out, n, err := BulkUpdate(data, []string{"p1", "p3", "missing"}, map[string]any{"status": "archived", "id": "hijack"})
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, "archived", out[0]["status"])
	assert.Equal(t, "p1", out[0].ID())
	assert.Equal(t, "active", data[0]["status"])
	assert.Equal(t, "draft", out[1]["status"])
}

func TestBulkDeleteUpdatesTable(t *testing.T) {
	table := New(sampleProducts(), Options{})
	table.SelectItem("p2")
	table.SelectItem("p4")

	n, err := table.BulkDelete(table.Selected())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"p1", "p3", "p5"}, IDs(table.Data()))
	assert.Empty(t, table.Selected())

	_, err = table.BulkDelete(nil)
	assert.ErrorIs(t, err, ErrEmptySelection)
	_, err = table.BulkUpdate([]string{"p1"}, nil)
	assert.ErrorIs(t, err, ErrEmptyPatch)
}
