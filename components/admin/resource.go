package admin

import (
	"github.com/goliatone/go-inkhub/components/datatable"
	"github.com/goliatone/go-inkhub/components/metrics"
)

// Resource describes one browsable collection of the admin panel. A single
// descriptor drives the table, filters, KPI cards and exports of a resource.
type Resource struct {
	Code         string                  `json:"code" yaml:"code"`
	Name         string                  `json:"name" yaml:"name"`
	Section      string                  `json:"section" yaml:"section"`
	Tab          string                  `json:"tab,omitempty" yaml:"tab,omitempty"`
	Icon         string                  `json:"icon,omitempty" yaml:"icon,omitempty"`
	ItemsPerPage int                     `json:"items_per_page,omitempty" yaml:"items_per_page,omitempty"`
	Schema       datatable.Schema        `json:"schema" yaml:"schema"`
	KPIs         []metrics.KPIDefinition `json:"kpis,omitempty" yaml:"kpis,omitempty"`
	Source       SourceConfig            `json:"source,omitempty" yaml:"source,omitempty"`
}

// SourceConfig tells the data source where a resource lives.
type SourceConfig struct {
	// Endpoint is the path joined to the source base URL.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	// ItemsKey names the array inside an object response, "items" when empty.
	ItemsKey string `json:"items_key,omitempty" yaml:"items_key,omitempty"`
}

// PageSize returns the configured page size or the engine default.
func (r Resource) PageSize() int {
	if r.ItemsPerPage > 0 {
		return r.ItemsPerPage
	}
	return datatable.DefaultItemsPerPage
}

// TabLabel returns the navigation label of the resource.
func (r Resource) TabLabel() string {
	if r.Tab != "" {
		return r.Tab
	}
	return r.Name
}

// KPI looks up a KPI definition by key.
func (r Resource) KPI(key string) (metrics.KPIDefinition, bool) {
	for _, k := range r.KPIs {
		if k.Key == key {
			return k, true
		}
	}
	return metrics.KPIDefinition{}, false
}

// Section groups resources under one navigation heading.
type Section struct {
	Code      string     `json:"code"`
	Label     string     `json:"label"`
	Resources []Resource `json:"resources"`
}
