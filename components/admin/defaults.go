package admin

import (
	dt "github.com/goliatone/go-inkhub/components/datatable"
	"github.com/goliatone/go-inkhub/components/metrics"
)

// Resource codes shipped with the panel.
const (
	ShopifyProducts = "shopify-products"
	ShopifyOrders   = "shopify-orders"
	PinterestPins   = "pinterest-pins"
	DesignLibrary   = "design-library"
)

var sectionLabels = map[string]string{
	"shopify":   "Shopify",
	"pinterest": "Pinterest",
	"design":    "Design Library",
}

// DefaultResources returns the built-in resource descriptors.
func DefaultResources() []Resource {
	return []Resource{
		{
			Code:    ShopifyProducts,
			Name:    "Products",
			Section: "shopify",
			Icon:    "package",
			Schema: dt.NewSchema(
				dt.Column{Key: "id", Label: "ID", Hidden: true},
				dt.Column{Key: "title", Sortable: true},
				dt.Column{Key: "vendor", Type: dt.ColumnSelect, Filterable: true, Sortable: true},
				dt.Column{Key: "productType", Type: dt.ColumnSelect, Filterable: true, Sortable: true},
				dt.Column{Key: "status", Type: dt.ColumnSelect, Filterable: true, Sortable: true},
				dt.Column{Key: "price", Type: dt.ColumnNumber, Currency: true, Filterable: true, Sortable: true},
				dt.Column{Key: "compareAtPrice", Type: dt.ColumnNumber, Currency: true, Sortable: true},
				dt.Column{Key: "cost", Type: dt.ColumnNumber, Currency: true, Sortable: true, Hidden: true},
				dt.Column{Key: "inventory", Type: dt.ColumnNumber, Filterable: true, Sortable: true},
				dt.Column{Key: "tags", Type: dt.ColumnMultiSelect, Filterable: true},
				dt.Column{Key: "createdAt", Type: dt.ColumnDate, Filterable: true, Sortable: true},
			),
			KPIs: []metrics.KPIDefinition{
				{Key: "total-products", Label: "Total Products", Operation: metrics.OpCount, Icon: "package", Color: "blue"},
				{Key: "average-price", Label: "Average Price", Field: "price", Operation: metrics.OpAverage, Icon: "tag", Color: "green"},
				{Key: "total-inventory", Label: "Total Inventory", Field: "inventory", Operation: metrics.OpSum, Icon: "layers", Color: "purple"},
				{Key: "price-range", Label: "Price Range", Field: "price", Operation: metrics.OpDifference, Icon: "sliders", Color: "orange", Currency: true},
			},
			Source: SourceConfig{Endpoint: "/shopify/products", ItemsKey: "products"},
		},
		{
			Code:    ShopifyOrders,
			Name:    "Orders",
			Section: "shopify",
			Icon:    "shopping-cart",
			Schema: dt.NewSchema(
				dt.Column{Key: "id", Label: "ID", Hidden: true},
				dt.Column{Key: "orderNumber", Label: "Order", Sortable: true},
				dt.Column{Key: "customer", Sortable: true},
				dt.Column{Key: "email"},
				dt.Column{Key: "financialStatus", Type: dt.ColumnSelect, Filterable: true, Sortable: true},
				dt.Column{Key: "fulfillmentStatus", Type: dt.ColumnSelect, Filterable: true, Sortable: true},
				dt.Column{Key: "totalPrice", Label: "Total", Type: dt.ColumnNumber, Currency: true, Filterable: true, Sortable: true},
				dt.Column{Key: "itemCount", Label: "Items", Type: dt.ColumnNumber, Filterable: true, Sortable: true},
				dt.Column{Key: "createdAt", Type: dt.ColumnDate, Filterable: true, Sortable: true},
			),
			KPIs: []metrics.KPIDefinition{
				{Key: "total-orders", Label: "Total Orders", Operation: metrics.OpCount, Icon: "shopping-cart", Color: "blue"},
				{Key: "revenue", Label: "Revenue", Field: "totalPrice", Operation: metrics.OpSum, Icon: "dollar-sign", Color: "green"},
				{Key: "average-order", Label: "Average Order Value", Field: "totalPrice", Operation: metrics.OpAverage, Icon: "trending-up", Color: "purple"},
				{Key: "items-sold", Label: "Items Sold", Field: "itemCount", Operation: metrics.OpSum, Icon: "box", Color: "orange"},
			},
			Source: SourceConfig{Endpoint: "/shopify/orders", ItemsKey: "orders"},
		},
		{
			Code:    PinterestPins,
			Name:    "Pins",
			Section: "pinterest",
			Icon:    "bookmark",
			Schema: dt.NewSchema(
				dt.Column{Key: "id", Label: "ID", Hidden: true},
				dt.Column{Key: "title", Sortable: true},
				dt.Column{Key: "board", Type: dt.ColumnSelect, Filterable: true, Sortable: true},
				dt.Column{Key: "description", Hidden: true},
				dt.Column{Key: "impressions", Type: dt.ColumnNumber, Filterable: true, Sortable: true},
				dt.Column{Key: "saves", Type: dt.ColumnNumber, Filterable: true, Sortable: true},
				dt.Column{Key: "clicks", Type: dt.ColumnNumber, Filterable: true, Sortable: true},
				dt.Column{Key: "createdAt", Type: dt.ColumnDate, Filterable: true, Sortable: true},
			),
			KPIs: []metrics.KPIDefinition{
				{Key: "total-pins", Label: "Total Pins", Operation: metrics.OpCount, Icon: "bookmark", Color: "red"},
				{Key: "impressions", Label: "Impressions", Field: "impressions", Operation: metrics.OpSum, Icon: "eye", Color: "blue"},
				{Key: "saves", Label: "Saves", Field: "saves", Operation: metrics.OpSum, Icon: "heart", Color: "pink"},
				{Key: "clicks-per-pin", Label: "Clicks per Pin", Field: "clicks", Operation: metrics.OpCustom, Formula: "sum / count", Icon: "mouse-pointer", Color: "green"},
			},
			Source: SourceConfig{Endpoint: "/pinterest/pins"},
		},
		{
			Code:         DesignLibrary,
			Name:         "Designs",
			Section:      "design",
			Icon:         "image",
			ItemsPerPage: 12,
			Schema: dt.NewSchema(
				dt.Column{Key: "id", Label: "ID", Hidden: true},
				dt.Column{Key: "name", Sortable: true},
				dt.Column{Key: "category", Type: dt.ColumnSelect, Filterable: true, Sortable: true},
				dt.Column{Key: "status", Type: dt.ColumnSelect, Filterable: true, Sortable: true},
				dt.Column{Key: "downloads", Type: dt.ColumnNumber, Filterable: true, Sortable: true},
				dt.Column{Key: "tags", Type: dt.ColumnMultiSelect, Filterable: true},
				dt.Column{Key: "published", Type: dt.ColumnBoolean, Filterable: true},
				dt.Column{Key: "createdAt", Type: dt.ColumnDate, Filterable: true, Sortable: true},
			),
			KPIs: []metrics.KPIDefinition{
				{Key: "total-designs", Label: "Total Designs", Operation: metrics.OpCount, Icon: "image", Color: "indigo"},
				{Key: "downloads", Label: "Downloads", Field: "downloads", Operation: metrics.OpSum, Icon: "download", Color: "green"},
				{Key: "top-downloads", Label: "Most Downloaded", Field: "downloads", Operation: metrics.OpMax, Icon: "award", Color: "yellow"},
			},
			Source: SourceConfig{Endpoint: "/designs"},
		},
	}
}
