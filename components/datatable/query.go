package datatable

// Query is a serializable snapshot of the table state that drives the view.
// It is what transports and query files carry.
type Query struct {
	Search        string                 `json:"search,omitempty" yaml:"search,omitempty"`
	Conditions    []SearchCondition      `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	CustomFilters []CustomFilter         `json:"customFilters,omitempty" yaml:"custom_filters,omitempty"`
	ColumnFilters map[string]FilterValue `json:"columnFilters,omitempty" yaml:"column_filters,omitempty"`
	SortColumn    string                 `json:"sortColumn,omitempty" yaml:"sort_column,omitempty"`
	SortDirection SortDirection          `json:"sortDirection,omitempty" yaml:"sort_direction,omitempty"`
	Page          int                    `json:"page,omitempty" yaml:"page,omitempty"`
	ItemsPerPage  int                    `json:"itemsPerPage,omitempty" yaml:"items_per_page,omitempty"`
}

// Apply replaces the table's filter, sort and paging state with q. Zero
// paging values keep the current page size and go to the first page.
func (q Query) Apply(t *Table) {
	t.searchQuery = q.Search
	t.conditions = append([]SearchCondition(nil), q.Conditions...)
	t.customFilters = append([]CustomFilter(nil), q.CustomFilters...)
	t.columnFilters = map[string]FilterValue{}
	for column, value := range q.ColumnFilters {
		if !value.IsEmpty() {
			t.columnFilters[column] = value
		}
	}
	t.SortBy(q.SortColumn, q.SortDirection)
	if q.ItemsPerPage > 0 {
		t.itemsPerPage = q.ItemsPerPage
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	t.SetPage(page)
}

// State captures the current table state as a Query.
func (t *Table) State() Query {
	return Query{
		Search:        t.searchQuery,
		Conditions:    t.SearchConditions(),
		CustomFilters: t.CustomFilters(),
		ColumnFilters: t.ColumnFilters(),
		SortColumn:    t.sortColumn,
		SortDirection: t.sortDirection,
		Page:          t.currentPage,
		ItemsPerPage:  t.itemsPerPage,
	}
}
