package datatable

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultItemsPerPage is used when no page size is configured.
const DefaultItemsPerPage = 10

// SortDirection orders the sorted column.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Options configures a Table.
type Options struct {
	Schema       Schema
	ItemsPerPage int
	Locale       language.Tag
}

// Pagination describes the current page window over the filtered set.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalItems   int `json:"totalItems"`
	TotalPages   int `json:"totalPages"`
	// StartIndex and EndIndex are the 1-based bounds shown as "x-y of n".
	StartIndex int `json:"startIndex"`
	EndIndex   int `json:"endIndex"`
}

// View is the derived, read-only state of a Table.
type View struct {
	Items           []Entity      `json:"items"`
	Pagination      Pagination    `json:"pagination"`
	SortColumn      string        `json:"sortColumn,omitempty"`
	SortDirection   SortDirection `json:"sortDirection"`
	SelectedIDs     []string      `json:"selectedIds"`
	AllPageSelected bool          `json:"allPageSelected"`
}

// Table owns the working set of one resource collection and derives filtered,
// sorted and paginated views of it. A Table is not safe for concurrent use.
type Table struct {
	schema        Schema
	data          []Entity
	searchQuery   string
	conditions    []SearchCondition
	customFilters []CustomFilter
	columnFilters map[string]FilterValue
	sortColumn    string
	sortDirection SortDirection
	currentPage   int
	itemsPerPage  int
	selected      map[string]struct{}
	collator      *collate.Collator
}

// New builds a Table over the initial working set.
func New(data []Entity, opts Options) *Table {
	if opts.ItemsPerPage <= 0 {
		opts.ItemsPerPage = DefaultItemsPerPage
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	return &Table{
		schema:        opts.Schema,
		data:          append([]Entity(nil), data...),
		columnFilters: map[string]FilterValue{},
		sortDirection: SortAsc,
		currentPage:   1,
		itemsPerPage:  opts.ItemsPerPage,
		selected:      map[string]struct{}{},
		collator:      collate.New(opts.Locale),
	}
}

// Schema returns the field-set descriptor of the table.
func (t *Table) Schema() Schema { return t.schema }

// Data returns the unfiltered working set.
func (t *Table) Data() []Entity { return append([]Entity(nil), t.data...) }

// Len returns the size of the unfiltered working set.
func (t *Table) Len() int { return len(t.data) }

// SetData replaces the working set wholesale. Selected ids that no longer
// exist are dropped.
func (t *Table) SetData(data []Entity) {
	t.data = append([]Entity(nil), data...)
	index := Index(t.data)
	for id := range t.selected {
		if _, ok := index[id]; !ok {
			delete(t.selected, id)
		}
	}
	t.clampPage()
}

// SearchQuery returns the free-text query.
func (t *Table) SearchQuery() string { return t.searchQuery }

// SetSearchQuery sets the free-text query.
func (t *Table) SetSearchQuery(q string) {
	t.searchQuery = q
	t.clampPage()
}

// SearchConditions returns a copy of the advanced search conditions.
func (t *Table) SearchConditions() []SearchCondition {
	return append([]SearchCondition(nil), t.conditions...)
}

// SetSearchConditions replaces the advanced search conditions.
func (t *Table) SetSearchConditions(list []SearchCondition) {
	t.conditions = append([]SearchCondition(nil), list...)
	t.clampPage()
}

// CustomFilters returns a copy of the custom filters.
func (t *Table) CustomFilters() []CustomFilter {
	return append([]CustomFilter(nil), t.customFilters...)
}

// AddCustomFilter appends a custom filter.
func (t *Table) AddCustomFilter(f CustomFilter) {
	t.customFilters = append(t.customFilters, f)
	t.clampPage()
}

// RemoveCustomFilter drops the custom filter with the given id.
func (t *Table) RemoveCustomFilter(id string) {
	out := t.customFilters[:0:0]
	for _, f := range t.customFilters {
		if f.ID != id {
			out = append(out, f)
		}
	}
	t.customFilters = out
	t.clampPage()
}

// ColumnFilters returns a copy of the active column filters.
func (t *Table) ColumnFilters() map[string]FilterValue {
	out := make(map[string]FilterValue, len(t.columnFilters))
	for k, v := range t.columnFilters {
		out[k] = v
	}
	return out
}

// SetColumnFilter sets the filter of a column. An empty value clears it.
func (t *Table) SetColumnFilter(column string, value FilterValue) {
	if value.IsEmpty() {
		delete(t.columnFilters, column)
	} else {
		t.columnFilters[column] = value
	}
	t.clampPage()
}

// ClearColumnFilter removes the filter of a column.
func (t *Table) ClearColumnFilter(column string) {
	t.SetColumnFilter(column, FilterValue{})
}

// ClearFilters drops the search query, conditions, custom and column filters.
func (t *Table) ClearFilters() {
	t.searchQuery = ""
	t.conditions = nil
	t.customFilters = nil
	t.columnFilters = map[string]FilterValue{}
	t.clampPage()
}

// Sort sorts by column. The same column twice flips the direction, a new
// column starts ascending.
func (t *Table) Sort(column string) {
	if column == t.sortColumn {
		if t.sortDirection == SortAsc {
			t.sortDirection = SortDesc
		} else {
			t.sortDirection = SortAsc
		}
		return
	}
	t.sortColumn = column
	t.sortDirection = SortAsc
}

// SortBy sets the sort column and direction explicitly. An empty column
// disables sorting.
func (t *Table) SortBy(column string, direction SortDirection) {
	t.sortColumn = column
	if direction != SortDesc {
		direction = SortAsc
	}
	t.sortDirection = direction
}

// SortState returns the current sort column and direction.
func (t *Table) SortState() (string, SortDirection) {
	return t.sortColumn, t.sortDirection
}

// CurrentPage returns the 1-based current page.
func (t *Table) CurrentPage() int { return t.currentPage }

// ItemsPerPage returns the page size.
func (t *Table) ItemsPerPage() int { return t.itemsPerPage }

// SetPage moves to page, clamped to the available pages.
func (t *Table) SetPage(page int) {
	t.currentPage = page
	t.clampPage()
}

// ChangeItemsPerPage sets the page size and returns to the first page.
func (t *Table) ChangeItemsPerPage(n int) {
	if n <= 0 {
		n = DefaultItemsPerPage
	}
	t.itemsPerPage = n
	t.currentPage = 1
}

// SelectItem toggles membership of id in the selection.
func (t *Table) SelectItem(id string) {
	if _, ok := t.selected[id]; ok {
		delete(t.selected, id)
		return
	}
	t.selected[id] = struct{}{}
}

// IsSelected reports whether id is selected.
func (t *Table) IsSelected(id string) bool {
	_, ok := t.selected[id]
	return ok
}

// SelectAll toggles the current page: when every id on the page is already
// selected they are deselected, otherwise they are all added.
func (t *Table) SelectAll() {
	page := t.pageItems(t.Filtered())
	if t.pageSelected(page) {
		for _, e := range page {
			delete(t.selected, e.ID())
		}
		return
	}
	for _, e := range page {
		t.selected[e.ID()] = struct{}{}
	}
}

// SelectFiltered adds every entity of the filtered set to the selection.
func (t *Table) SelectFiltered() {
	for _, e := range t.Filtered() {
		t.selected[e.ID()] = struct{}{}
	}
}

// ClearSelection empties the selection.
func (t *Table) ClearSelection() {
	t.selected = map[string]struct{}{}
}

// Selected returns the selected ids sorted.
func (t *Table) Selected() []string {
	ids := make([]string, 0, len(t.selected))
	for id := range t.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SelectedEntities returns the selected entities of the working set in the
// current sort order, ignoring filters.
func (t *Table) SelectedEntities() []Entity {
	out := make([]Entity, 0, len(t.selected))
	for _, e := range t.data {
		if _, ok := t.selected[e.ID()]; ok {
			out = append(out, e)
		}
	}
	return t.sorted(out)
}

// UniqueValues returns the sorted distinct string forms of field across the
// unfiltered working set, skipping missing and null values. An empty string
// is a value of its own.
func (t *Table) UniqueValues(field string) []string {
	return UniqueValues(t.data, field)
}

// UniqueValues is the standalone form of Table.UniqueValues.
func UniqueValues(data []Entity, field string) []string {
	seen := map[string]struct{}{}
	for _, e := range data {
		raw := e.Get(field)
		if raw == nil {
			continue
		}
		seen[AsString(raw)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Filtered returns the filtered and sorted set, before pagination.
func (t *Table) Filtered() []Entity {
	return t.sorted(t.filter())
}

// View derives the current page.
func (t *Table) View() View {
	filtered := t.Filtered()
	page := t.pageItems(filtered)
	p := t.pagination(len(filtered))
	p.StartIndex, p.EndIndex = 0, 0
	if len(page) > 0 {
		p.StartIndex = (t.currentPage-1)*t.itemsPerPage + 1
		p.EndIndex = p.StartIndex + len(page) - 1
	}
	return View{
		Items:           page,
		Pagination:      p,
		SortColumn:      t.sortColumn,
		SortDirection:   t.sortDirection,
		SelectedIDs:     t.Selected(),
		AllPageSelected: len(page) > 0 && t.pageSelected(page),
	}
}

func (t *Table) filter() []Entity {
	query := strings.ToLower(strings.TrimSpace(t.searchQuery))
	out := make([]Entity, 0, len(t.data))
	for _, e := range t.data {
		if query != "" && !matchesSearch(e, query) {
			continue
		}
		if !MatchConditions(e, t.conditions) {
			continue
		}
		if !t.matchCustomFilters(e) {
			continue
		}
		if !t.matchColumnFilters(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (t *Table) matchCustomFilters(e Entity) bool {
	for _, f := range t.customFilters {
		if !f.Matches(e) {
			return false
		}
	}
	return true
}

func (t *Table) matchColumnFilters(e Entity) bool {
	for column, value := range t.columnFilters {
		if value.IsEmpty() {
			continue
		}
		if !value.Matches(t.schema.TypeOf(column), e.Get(column)) {
			return false
		}
	}
	return true
}

// sorted orders a copy of data. Ties keep their input order.
func (t *Table) sorted(data []Entity) []Entity {
	if t.sortColumn == "" {
		return data
	}
	column := t.sortColumn
	desc := t.sortDirection == SortDesc
	sort.SliceStable(data, func(i, j int) bool {
		c := t.compare(data[i].Get(column), data[j].Get(column))
		if desc {
			return c > 0
		}
		return c < 0
	})
	return data
}

func (t *Table) compare(a, b any) int {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return t.collator.CompareString(as, bs)
		}
	}
	if an, ok := isNumeric(a); ok {
		if bn, ok := isNumeric(b); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
	}
	return t.collator.CompareString(AsString(a), AsString(b))
}

func (t *Table) pageItems(filtered []Entity) []Entity {
	start := (t.currentPage - 1) * t.itemsPerPage
	if start < 0 || start >= len(filtered) {
		return []Entity{}
	}
	end := start + t.itemsPerPage
	if end > len(filtered) {
		end = len(filtered)
	}
	return append([]Entity(nil), filtered[start:end]...)
}

func (t *Table) pageSelected(page []Entity) bool {
	for _, e := range page {
		if _, ok := t.selected[e.ID()]; !ok {
			return false
		}
	}
	return true
}

func (t *Table) pagination(total int) Pagination {
	return Pagination{
		CurrentPage:  t.currentPage,
		ItemsPerPage: t.itemsPerPage,
		TotalItems:   total,
		TotalPages:   TotalPages(total, t.itemsPerPage),
	}
}

// clampPage keeps currentPage within [1, max(1, totalPages)] of the filtered set.
func (t *Table) clampPage() {
	pages := TotalPages(len(t.filter()), t.itemsPerPage)
	if t.currentPage > pages {
		t.currentPage = pages
	}
	if t.currentPage < 1 {
		t.currentPage = 1
	}
}

// TotalPages returns ceil(total/perPage), at least 1.
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultItemsPerPage
	}
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		return 1
	}
	return pages
}
