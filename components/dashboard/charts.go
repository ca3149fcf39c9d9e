package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	defaultChartHeight = "320px"
	radarColor         = "#3B82F6"
	keywordBarColor    = "#3B82F6"
	keywordChartLimit  = 5
)

var sharedChartCache = NewChartCache(5 * time.Minute)

// ChartFactory renders go-echarts markup for the dashboard canvases.
type ChartFactory struct {
	cache      RenderCache
	assetsHost string
	height     string
}

// ChartFactoryOption customizes factory behavior.
type ChartFactoryOption func(*ChartFactory)

// WithChartCache injects a render cache. A nil cache disables memoization.
func WithChartCache(cache RenderCache) ChartFactoryOption {
	return func(f *ChartFactory) {
		f.cache = cache
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartFactoryOption {
	return func(f *ChartFactory) {
		f.assetsHost = host
	}
}

// WithChartHeight overrides the canvas height.
func WithChartHeight(height string) ChartFactoryOption {
	return func(f *ChartFactory) {
		if height != "" {
			f.height = height
		}
	}
}

// NewChartFactory builds a chart factory.
func NewChartFactory(opts ...ChartFactoryOption) *ChartFactory {
	f := &ChartFactory{
		cache:      sharedChartCache,
		assetsHost: DefaultEChartsAssetsHost(),
		height:     defaultChartHeight,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// TrendSpec is the input of a category trend line.
type TrendSpec struct {
	Title  string
	Labels []string
	Values []float64
	Color  string
}

// RadarSpec is the input of the aggregate radar.
type RadarSpec struct {
	Title      string
	Indicators []string
	Values     []float64
}

// BarSpec is the input of the keyword frequency chart.
type BarSpec struct {
	Title  string
	Labels []string
	Values []float64
}

// Trend renders a smooth, filled line chart on a 0-100 axis.
func (f *ChartFactory) Trend(spec TrendSpec, theme Theme) (string, error) {
	return f.cached("trend", spec, theme, func() (string, error) {
		line := charts.NewLine()
		line.SetGlobalOptions(append(f.globalChartOptions(spec.Title, theme),
			charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100}),
		)...)
		line.SetXAxis(spec.Labels)
		data := make([]opts.LineData, len(spec.Values))
		for i, value := range spec.Values {
			data[i] = opts.LineData{Value: value}
		}
		line.AddSeries(spec.Title, data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithAreaStyleOpts(opts.AreaStyle{}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: spec.Color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: spec.Color}),
		)
		return renderChart(line)
	})
}

// Radar renders a single-series radar with 0-100 indicators.
func (f *ChartFactory) Radar(spec RadarSpec, theme Theme) (string, error) {
	return f.cached("radar", spec, theme, func() (string, error) {
		indicators := make([]*opts.Indicator, len(spec.Indicators))
		for i, name := range spec.Indicators {
			indicators[i] = &opts.Indicator{Name: name, Max: 100}
		}
		radar := charts.NewRadar()
		radar.SetGlobalOptions(append(f.globalChartOptions(spec.Title, theme),
			charts.WithRadarComponentOpts(opts.RadarComponent{
				Indicator: indicators,
				Shape:     "polygon",
			}),
		)...)
		radar.AddSeries(spec.Title, []opts.RadarData{{Name: spec.Title, Value: spec.Values}},
			charts.WithItemStyleOpts(opts.ItemStyle{Color: radarColor}),
			charts.WithAreaStyleOpts(opts.AreaStyle{}),
		)
		return renderChart(radar)
	})
}

// Bar renders a single-series bar chart.
func (f *ChartFactory) Bar(spec BarSpec, theme Theme) (string, error) {
	return f.cached("bar", spec, theme, func() (string, error) {
		bar := charts.NewBar()
		bar.SetGlobalOptions(f.globalChartOptions(spec.Title, theme)...)
		bar.SetXAxis(spec.Labels)
		data := make([]opts.BarData, len(spec.Values))
		for i, value := range spec.Values {
			data[i] = opts.BarData{Name: spec.Labels[i], Value: value}
		}
		bar.AddSeries("Frequency", data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: keywordBarColor}),
		)
		return renderChart(bar)
	})
}

func (f *ChartFactory) cached(kind string, spec any, theme Theme, render func() (string, error)) (string, error) {
	if f.cache == nil {
		return render()
	}
	key := fmt.Sprintf("%s:%s:%s", kind, theme, payloadHash(spec))
	return f.cache.GetOrRender(key, render)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (f *ChartFactory) globalChartOptions(title string, theme Theme) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  theme.ChartTheme(),
		Width:  "100%",
		Height: f.height,
	}
	if f.assetsHost != "" {
		initOpts.AssetsHost = f.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

// ChartHandle is a live chart bound to a canvas slot.
type ChartHandle struct {
	Slot   string
	html   string
	canvas *Element
	live   bool
}

// Live reports whether the handle is still bound to its canvas.
func (h *ChartHandle) Live() bool { return h != nil && h.live }

// HTML returns the rendered chart markup.
func (h *ChartHandle) HTML() string {
	if h == nil {
		return ""
	}
	return h.html
}

// Destroy unbinds the chart from its canvas. Calling it twice is a no-op.
func (h *ChartHandle) Destroy() {
	if h == nil || !h.live {
		return
	}
	h.live = false
	if h.canvas != nil {
		h.canvas.bound--
		h.canvas.Chart = ""
	}
}

// ChartSlots maps a chart slot (category name, "radar", "keyword") to the
// handle that currently owns its canvas.
type ChartSlots map[string]*ChartHandle

// Destroy tears down the handle owning slot, if any, and returns the map.
func (s ChartSlots) Destroy(slot string) ChartSlots {
	if s == nil {
		s = ChartSlots{}
	}
	if handle, ok := s[slot]; ok {
		handle.Destroy()
		delete(s, slot)
	}
	return s
}

// Replace destroys the previous owner of slot before binding html to canvas.
func (s ChartSlots) Replace(slot string, canvas *Element, html string) ChartSlots {
	s = s.Destroy(slot)
	handle := &ChartHandle{Slot: slot, html: html, canvas: canvas, live: true}
	canvas.bound++
	canvas.Chart = html
	s[slot] = handle
	return s
}

// Live counts handles still bound to a canvas.
func (s ChartSlots) Live() int {
	n := 0
	for _, h := range s {
		if h.Live() {
			n++
		}
	}
	return n
}
