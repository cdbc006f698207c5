package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/datatable"
)

const ordersJSON = `[
  {"id": "o1", "orderNumber": "#1001", "financialStatus": "paid", "totalPrice": 120, "itemCount": 2},
  {"id": "o2", "orderNumber": "#1002", "financialStatus": "pending", "totalPrice": 80, "itemCount": 1},
  {"id": "o3", "orderNumber": "#1003", "financialStatus": "paid", "totalPrice": 40, "itemCount": 3}
]`

const paidQuery = `
column_filters:
  financialStatus:
    values: [paid]
sort_column: totalPrice
`

func init() {
	color.NoColor = true
}

type fixture struct {
	dir string
	rt  *runtime
	out *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := "metrics: false\nstore:\n  driver: sqlite\n  dsn: " + filepath.Join(dir, "inkhub.db") + "\n"
	write(t, dir, "inkhub.yaml", cfg)
	write(t, dir, "orders.json", ordersJSON)
	write(t, dir, "paid.yaml", paidQuery)
	out := &bytes.Buffer{}
	return &fixture{
		dir: dir,
		out: out,
		rt:  &runtime{ctx: context.Background(), out: out, configPath: filepath.Join(dir, "inkhub.yaml")},
	}
}

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func (f *fixture) path(name string) string { return filepath.Join(f.dir, name) }

func TestLoadEntitiesAcceptsListAndEnvelope(t *testing.T) {
	dir := t.TempDir()
	items, err := loadEntities(write(t, dir, "list.yaml", "- id: a\n  price: 3\n- id: b\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, datatable.IDs(items))

	items, err = loadEntities(write(t, dir, "env.json", `{"items": [{"id": "x"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, datatable.IDs(items))

	_, err = loadEntities(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadQueryRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	q, err := loadQuery(write(t, dir, "q.yaml", paidQuery))
	require.NoError(t, err)
	assert.Equal(t, "totalPrice", q.SortColumn)
	assert.Equal(t, []string{"paid"}, q.ColumnFilters["financialStatus"].Values)

	_, err = loadQuery(write(t, dir, "bad.yaml", "sortcol: x\n"))
	assert.Error(t, err)

	empty, err := loadQuery("")
	require.NoError(t, err)
	assert.Empty(t, empty.SortColumn)
}

func TestExportWritesFilteredCSV(t *testing.T) {
	f := newFixture(t)
	cmd := &exportCmd{
		Resource: admin.ShopifyOrders,
		Input:    f.path("orders.json"),
		Query:    f.path("paid.yaml"),
		Format:   "csv",
		Fields:   []string{"orderNumber,totalPrice"},
		Out:      f.dir,
	}
	require.NoError(t, cmd.Run(f.rt))

	matches, err := filepath.Glob(filepath.Join(f.dir, "shopify-orders-export-*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	body, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "\"Order\",\"Total\"\n\"#1003\",\"40\"\n\"#1001\",\"120\"", string(body))
	assert.Contains(t, f.out.String(), "Exported shopify-orders")
}

func TestExportPDFPrintsNotice(t *testing.T) {
	f := newFixture(t)
	cmd := &exportCmd{Resource: admin.ShopifyOrders, Input: f.path("orders.json"), Format: "pdf"}
	require.NoError(t, cmd.Run(f.rt))
	assert.Contains(t, f.out.String(), "coming soon")
}

func TestAggregate(t *testing.T) {
	f := newFixture(t)
	cmd := &aggregateCmd{Input: f.path("orders.json"), Field: "totalPrice", Op: "average", IDs: []string{"o1", "o3"}}
	require.NoError(t, cmd.Run(f.rt))
	assert.Equal(t, "average(totalPrice) over 2 of 3 entities: $80.00\n", f.out.String())

	f.out.Reset()
	custom := &aggregateCmd{Input: f.path("orders.json"), Field: "itemCount", Op: "custom", Formula: "sum / count"}
	require.NoError(t, custom.Run(f.rt))
	assert.Contains(t, f.out.String(), ": 2\n")

	bad := &aggregateCmd{Input: f.path("orders.json"), Field: "itemCount", Op: "custom", Formula: "sum +"}
	assert.Error(t, bad.Run(f.rt))
}

func TestKPIsAgainstBaseline(t *testing.T) {
	f := newFixture(t)
	write(t, f.dir, "previous.json", `[{"id": "o1", "financialStatus": "paid", "totalPrice": 50}]`)
	cmd := &kpisCmd{Resource: admin.ShopifyOrders, Input: f.path("orders.json"), Baseline: f.path("previous.json"), Query: f.path("paid.yaml")}
	require.NoError(t, cmd.Run(f.rt))

	lines := strings.Split(strings.TrimSpace(f.out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Total Orders"))
	assert.True(t, strings.HasSuffix(lines[0], "+100.0%"))
	assert.True(t, strings.HasSuffix(lines[1], "+220.0%"))
}

func TestCardsLifecyclePersistsInStore(t *testing.T) {
	f := newFixture(t)
	add := &cardsAddCmd{Resource: admin.ShopifyOrders, Title: "Big orders", Field: "totalPrice", Op: "sum", IDs: []string{"o1,o2"}, Color: "blue"}
	require.NoError(t, add.Run(f.rt))
	assert.Contains(t, f.out.String(), "Created card")

	f.out.Reset()
	require.NoError(t, (&cardsListCmd{Resource: admin.ShopifyOrders}).Run(f.rt))
	assert.Contains(t, f.out.String(), "Big orders")
	assert.Contains(t, f.out.String(), "2 ids  visible")
	id := strings.Fields(f.out.String())[0]

	f.out.Reset()
	require.NoError(t, (&cardsComputeCmd{Resource: admin.ShopifyOrders, Input: f.path("orders.json")}).Run(f.rt))
	assert.Contains(t, f.out.String(), "(2/2 ids)")

	f.out.Reset()
	require.NoError(t, (&cardsToggleCmd{Resource: admin.ShopifyOrders, ID: id}).Run(f.rt))
	assert.Contains(t, f.out.String(), "is now hidden")

	require.NoError(t, (&cardsRmCmd{Resource: admin.ShopifyOrders, ID: id}).Run(f.rt))
	f.out.Reset()
	require.NoError(t, (&cardsListCmd{Resource: admin.ShopifyOrders}).Run(f.rt))
	assert.Contains(t, f.out.String(), "No custom cards")

	assert.Error(t, (&cardsRmCmd{Resource: admin.ShopifyOrders, ID: id}).Run(f.rt))
}

func TestScaffoldAddsResource(t *testing.T) {
	f := newFixture(t)
	manifest := f.path("manifests/resources.yaml")
	cmd := &scaffoldCmd{
		Name:         "Etsy Listings",
		Column:       []string{"title", "listing price:number:currency+sort", "state:select:filter"},
		ManifestPath: manifest,
	}
	require.NoError(t, cmd.Run(f.rt))

	doc, err := admin.ReadManifest(manifest)
	require.NoError(t, err)
	require.Len(t, doc.Resources, 1)
	res := doc.Resources[0]
	assert.Equal(t, "etsy-listings", res.Code)
	assert.Equal(t, "etsy", res.Section)
	assert.Equal(t, "/etsy-listings", res.Source.Endpoint)
	assert.Equal(t, []string{"id", "title", "listingPrice", "state"}, res.Schema.Keys())
	price, _ := res.Schema.Column("listingPrice")
	assert.True(t, price.Currency)
	assert.True(t, price.Sortable)
	assert.Equal(t, datatable.ColumnNumber, price.Type)

	assert.ErrorContains(t, cmd.Run(f.rt), "already defines")
	cmd.Overwrite = true
	assert.NoError(t, cmd.Run(f.rt))

	reg := admin.NewEmptyRegistry()
	_, err = reg.LoadManifestFile(manifest)
	require.NoError(t, err)
	_, ok := reg.Resource("etsy-listings")
	assert.True(t, ok)
}

func TestParseColumnErrors(t *testing.T) {
	_, err := parseColumn(":number")
	assert.Error(t, err)
	_, err = parseColumn("price:money")
	assert.Error(t, err)
	_, err = parseColumn("price:number:bold")
	assert.Error(t, err)
}
