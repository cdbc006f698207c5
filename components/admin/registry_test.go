package admin

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-inkhub/components/datatable"
	"github.com/goliatone/go-inkhub/components/metrics"
)

func TestDefaultRegistry(t *testing.T) {
	reg := NewRegistry()
	codes := []string{}
	for _, res := range reg.Resources() {
		codes = append(codes, res.Code)
	}
	assert.Equal(t, []string{ShopifyProducts, ShopifyOrders, PinterestPins, DesignLibrary}, codes)

	sections := reg.Sections()
	require.Len(t, sections, 3)
	assert.Equal(t, "Shopify", sections[0].Label)
	assert.Len(t, sections[0].Resources, 2)
	assert.Equal(t, "Design Library", sections[2].Label)

	designs, ok := reg.Resource(DesignLibrary)
	require.True(t, ok)
	assert.Equal(t, 12, designs.PageSize())

	orders, _ := reg.Resource(ShopifyOrders)
	assert.Equal(t, datatable.DefaultItemsPerPage, orders.PageSize())
	assert.Equal(t, "Orders", orders.TabLabel())
}

func TestRegisterValidatesDescriptors(t *testing.T) {
	reg := NewEmptyRegistry()

	err := reg.Register(Resource{Name: "Nameless"})
	assert.ErrorIs(t, err, ErrInvalidResource)

	err = reg.Register(Resource{
		Code:   "dup",
		Name:   "Dup",
		Schema: datatable.NewSchema(datatable.Column{Key: "a"}, datatable.Column{Key: "a"}),
	})
	assert.ErrorIs(t, err, ErrInvalidResource)

	err = reg.Register(Resource{
		Code: "bad-kpi",
		Name: "Bad",
		KPIs: []metrics.KPIDefinition{{Key: "x", Operation: metrics.OpCustom, Formula: "sum +"}},
	})
	assert.ErrorIs(t, err, ErrInvalidResource)

	require.NoError(t, reg.Register(Resource{Code: "etsy", Name: "Etsy", Section: "market-place"}))
	require.NoError(t, reg.Register(Resource{Code: "etsy", Name: "Etsy Listings", Section: "market-place"}))
	assert.Len(t, reg.Resources(), 1)
	assert.Equal(t, "Market Place", reg.Sections()[0].Label)
}

func TestDecodeManifest(t *testing.T) {
	const payload = `
version: "1"
name: marketplace-pack
resources:
  - code: etsy-listings
    name: Listings
    items_per_page: 25
    schema:
      columns:
        - key: id
          hidden: true
        - key: price
          type: number
          currency: true
        - key: title
    kpis:
      - key: revenue
        label: Revenue
        field: price
        operation: sum
    source:
      endpoint: /etsy/listings
      items_key: results
`
	doc, err := DecodeManifest(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, doc.Resources, 1)

	res := doc.Resources[0]
	assert.Equal(t, "etsy-listings", res.Section)
	assert.Equal(t, 25, res.PageSize())
	assert.Equal(t, datatable.ColumnText, res.Schema.TypeOf("title"))
	assert.Equal(t, []string{"price"}, res.Schema.CurrencyFields())
	assert.Equal(t, "results", res.Source.ItemsKey)
	kpi, ok := res.KPI("revenue")
	require.True(t, ok)
	assert.Equal(t, metrics.OpSum, kpi.Operation)
}

func TestDecodeManifestErrors(t *testing.T) {
	_, err := DecodeManifest(strings.NewReader(""))
	assert.ErrorContains(t, err, "manifest is empty")

	_, err = DecodeManifest(strings.NewReader("version: \"2\"\nresources: []\n"))
	assert.ErrorContains(t, err, "unsupported manifest version")

	_, err = DecodeManifest(strings.NewReader("resources:\n  - code: a\n    name: A\n    colour: red\n"))
	assert.Error(t, err)

	_, err = DecodeManifest(strings.NewReader("resources:\n  - code: a\n    name: A\n  - code: a\n    name: B\n"))
	assert.ErrorContains(t, err, "duplicates resource a")
}

func TestRegistryLoadManifestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resources:\n  - code: shopify-orders\n    name: Sales\n    section: shopify\n"), 0o600))

	reg := NewRegistry()
	doc, err := reg.LoadManifestFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)

	orders, ok := reg.Resource(ShopifyOrders)
	require.True(t, ok)
	assert.Equal(t, "Sales", orders.Name)
	assert.Len(t, reg.Resources(), 4)

	_, err = reg.LoadManifestFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
