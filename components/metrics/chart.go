package metrics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "320px"

// ErrNoChartData is returned when no metric has a finite value to plot.
var ErrNoChartData = errors.New("metrics: nothing to chart")

// ChartPoint is one labeled bar or slice.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// PointsOf turns KPI metrics into chart points, skipping non-finite values.
func PointsOf(list []KPIMetric) []ChartPoint {
	out := make([]ChartPoint, 0, len(list))
	for _, m := range list {
		if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
			continue
		}
		out = append(out, ChartPoint{Label: m.Label, Value: m.Value})
	}
	return out
}

// ChartRenderer renders metric charts to embeddable HTML.
type ChartRenderer struct {
	chartType  string
	cache      RenderCache
	theme      string
	assetsHost string
}

// ChartOption customizes a ChartRenderer.
type ChartOption func(*ChartRenderer)

// WithChartCache injects a render cache. Nil disables caching.
func WithChartCache(cache RenderCache) ChartOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the echarts theme.
func WithChartTheme(theme string) ChartOption {
	return func(r *ChartRenderer) {
		r.theme = theme
	}
}

// WithChartAssetsHost loads the echarts script from host.
func WithChartAssetsHost(host string) ChartOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a renderer for "bar" or "pie" charts.
func NewChartRenderer(chartType string, options ...ChartOption) *ChartRenderer {
	r := &ChartRenderer{
		chartType: strings.ToLower(strings.TrimSpace(chartType)),
		cache:     NewChartCache(5 * time.Minute),
		theme:     types.ThemeWesteros,
	}
	if r.chartType == "" {
		r.chartType = "bar"
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render returns the chart HTML for points.
func (r *ChartRenderer) Render(title string, points []ChartPoint) (string, error) {
	if len(points) == 0 {
		return "", ErrNoChartData
	}
	render := func() (string, error) {
		switch r.chartType {
		case "bar":
			return r.renderBar(title, points)
		case "pie":
			return r.renderPie(title, points)
		}
		return "", fmt.Errorf("metrics: unsupported chart type %q", r.chartType)
	}
	if r.cache == nil {
		return render()
	}
	key := fmt.Sprintf("%s:%s:%s", r.chartType, r.theme, hashOf(struct {
		Title  string
		Points []ChartPoint
	}{title, points}))
	return r.cache.GetOrRender(key, render)
}

// RenderKPIs charts computed KPI metrics.
func (r *ChartRenderer) RenderKPIs(title string, list []KPIMetric) (string, error) {
	return r.Render(title, PointsOf(list))
}

func (r *ChartRenderer) renderBar(title string, points []ChartPoint) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalOptions(title)...)
	labels := make([]string, len(points))
	data := make([]opts.BarData, len(points))
	for i, p := range points {
		labels[i] = p.Label
		data[i] = opts.BarData{Name: p.Label, Value: p.Value}
	}
	bar.SetXAxis(labels)
	bar.AddSeries(title, data)
	return renderChart(bar)
}

func (r *ChartRenderer) renderPie(title string, points []ChartPoint) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(r.globalOptions(title)...)
	data := make([]opts.PieData, len(points))
	for i, p := range points {
		name := p.Label
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{Name: name, Value: p.Value}
	}
	pie.AddSeries(title, data)
	return renderChart(pie)
}

func (r *ChartRenderer) globalOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
