package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ettle/strcase"
	"github.com/sirupsen/logrus"
)

const (
	urgentAlertMarker     = "categories need urgent attention"
	noKeywordsText        = "No keywords available"
	noRecommendationsText = "No recommendations available"
	radarSeriesTitle      = "Stress Scores"
	keywordChartTitle     = "Top Keywords"
)

// Renderers map backend payloads onto view slots. They never issue network
// calls. Chart renderers take the slot ownership map and return it updated.
type Renderers struct {
	charts *ChartFactory
	theme  Theme
	logger logrus.FieldLogger
}

// NewRenderers builds renderers drawing charts with the given factory.
func NewRenderers(charts *ChartFactory, logger logrus.FieldLogger) Renderers {
	if charts == nil {
		charts = NewChartFactory()
	}
	return Renderers{
		charts: charts,
		theme:  ThemeLight,
		logger: normalizeLogger(logger),
	}
}

// WithTheme returns a copy rendering charts in the given theme.
func (r Renderers) WithTheme(theme Theme) Renderers {
	r.theme = theme
	return r
}

// Scores renders one category panel, or every panel plus the aggregate
// summary and radar when category is "all".
func (r Renderers) Scores(v *View, slots ChartSlots, category Category, scores AggregateScores) (ChartSlots, error) {
	var errs []error
	targets := []Category{category}
	if category == CategoryAll {
		targets = stressCategories
	}
	for _, c := range targets {
		var err error
		slots, err = r.ScorePanel(v, slots, c, scores)
		errs = append(errs, err)
	}
	if category == CategoryAll {
		r.Aggregate(v, scores)
		var err error
		slots, err = r.RadarChart(v, slots, scores)
		errs = append(errs, err)
	}
	return slots, errors.Join(errs...)
}

// ScorePanel renders score, badge, trend label, explanation, recommendation,
// progress bar and trend chart for one category. A missing key or a score
// of zero or less renders the fixed no-data set.
func (r Renderers) ScorePanel(v *View, slots ChartSlots, c Category, scores AggregateScores) (ChartSlots, error) {
	score, ok := scores.Score(c)
	if !ok || score.Score <= 0 {
		r.report(RenderNoData(v, c))
		return slots.Destroy(string(c)), nil
	}
	r.report(errors.Join(
		setText(v, ScoreSlot(c), formatScore(score.Score)),
		RenderBadge(v, c, score.Status),
		setText(v, TrendTextSlot(c), score.Trend),
		setText(v, ExplanationSlot(c), score.Explanation),
		setText(v, RecommendationSlot(c), "Recommendation: "+score.Recommendation),
		RenderProgress(v, c, score.Score, score.Color),
	))
	return r.TrendChart(v, slots, c, score)
}

// TrendChart destroys the chart owning the category canvas, then draws a new
// line chart from the trend series.
func (r Renderers) TrendChart(v *View, slots ChartSlots, c Category, score CategoryScore) (ChartSlots, error) {
	slots = slots.Destroy(string(c))
	canvas, ok := v.Slot(TrendSlot(c))
	if !ok {
		r.report(&MissingElementError{Slot: TrendSlot(c)})
		return slots, nil
	}
	html, err := r.charts.Trend(TrendSpec{
		Title:  categoryTitle(c),
		Labels: score.TrendLabels,
		Values: score.TrendData,
		Color:  score.Color,
	}, r.theme)
	if err != nil {
		return slots, fmt.Errorf("render %s trend chart: %w", c, err)
	}
	return slots.Replace(string(c), canvas, html), nil
}

// RadarChart redraws the aggregate radar. Missing categories plot as 0.
func (r Renderers) RadarChart(v *View, slots ChartSlots, scores AggregateScores) (ChartSlots, error) {
	slots = slots.Destroy(chartSlotRadar)
	canvas, ok := v.Slot(SlotRadarChart)
	if !ok {
		r.report(&MissingElementError{Slot: SlotRadarChart})
		return slots, nil
	}
	html, err := r.charts.Radar(RadarSpec{
		Title:      radarSeriesTitle,
		Indicators: radarIndicators(),
		Values:     RadarValues(scores),
	}, r.theme)
	if err != nil {
		return slots, fmt.Errorf("render radar chart: %w", err)
	}
	return slots.Replace(chartSlotRadar, canvas, html), nil
}

// Aggregate writes the summary fields of the "all" tab and the live alerts.
func (r Renderers) Aggregate(v *View, scores AggregateScores) {
	r.report(errors.Join(
		setText(v, SlotHighestStress, orDefault(scores.HighestStress, "None (Score: 0)")),
		setText(v, SlotTopKeyword, orDefault(scores.TopKeyword, "None (Frequency: 0)")),
		setText(v, SlotCriticalAlerts, orDefault(scores.CriticalAlerts, "0 categories")),
		setText(v, SlotAllSummary, orDefault(scores.Summary, "Summary: No data available")),
		setText(v, SlotAllRecommend, "Recommendation: "+orDefault(scores.Recommendation, "No recommendation available")),
		RenderLiveAlerts(v, scores.CriticalAlerts),
	))
}

// Keywords renders the derived table rows and the top keywords chart.
func (r Renderers) Keywords(v *View, slots ChartSlots, kv *KeywordView) (ChartSlots, error) {
	r.report(RenderKeywordTable(v, kv.Rows()))
	r.report(errors.Join(
		setValue(v, SlotKeywordSearch, kv.SearchText()),
		setValue(v, SlotKeywordFilter, kv.CategoryFilter()),
	))
	return r.KeywordChart(v, slots, kv.Source())
}

// KeywordTable re-renders only the table rows.
func (r Renderers) KeywordTable(v *View, kv *KeywordView) {
	r.report(RenderKeywordTable(v, kv.Rows()))
}

// KeywordChart draws the frequency of the first keywords of the source list.
// An empty list leaves the canvas without a chart.
func (r Renderers) KeywordChart(v *View, slots ChartSlots, source []Keyword) (ChartSlots, error) {
	slots = slots.Destroy(chartSlotKeyword)
	if len(source) == 0 {
		return slots, nil
	}
	canvas, ok := v.Slot(SlotKeywordChart)
	if !ok {
		r.report(&MissingElementError{Slot: SlotKeywordChart})
		return slots, nil
	}
	top := source
	if len(top) > keywordChartLimit {
		top = top[:keywordChartLimit]
	}
	spec := BarSpec{Title: keywordChartTitle}
	for _, kw := range top {
		spec.Labels = append(spec.Labels, kw.Keyword)
		spec.Values = append(spec.Values, float64(kw.Frequency))
	}
	html, err := r.charts.Bar(spec, r.theme)
	if err != nil {
		return slots, fmt.Errorf("render keyword chart: %w", err)
	}
	return slots.Replace(chartSlotKeyword, canvas, html), nil
}

// Recommendations renders the recommendation list and its summary alert.
func (r Renderers) Recommendations(v *View, recs []Recommendation) {
	r.report(RenderRecommendations(v, recs))
}

func (r Renderers) report(err error) {
	if err == nil {
		return
	}
	r.logger.WithError(err).Debug("dashboard: view slot missing")
}

// RenderNoData writes the fixed placeholder set for a category without data.
func RenderNoData(v *View, c Category) error {
	return errors.Join(
		setText(v, ScoreSlot(c), "0"),
		setText(v, ExplanationSlot(c), fmt.Sprintf("Explanation: No %s posts found", c)),
		setText(v, RecommendationSlot(c), "Recommendation: Monitor subreddit for new posts"),
		setText(v, TrendTextSlot(c), ""),
		RenderBadge(v, c, StatusNoData),
		RenderProgress(v, c, 0, noDataColor),
	)
}

// RenderBadge sets the badge text and its status style.
func RenderBadge(v *View, c Category, status Status) error {
	el, ok := v.Slot(BadgeSlot(c))
	if !ok {
		return &MissingElementError{Slot: BadgeSlot(c)}
	}
	el.Text = string(status)
	el.Class = BadgeClass(status)
	return nil
}

// RenderProgress sets the bar width to score percent and its fill color.
// Scores are not clamped.
func RenderProgress(v *View, c Category, score float64, color string) error {
	el, ok := v.Slot(ProgressSlot(c))
	if !ok {
		return &MissingElementError{Slot: ProgressSlot(c)}
	}
	el.Value = formatScore(score)
	el.SetStyle("width", formatScore(score)+"%")
	el.SetStyle("background-color", color)
	return nil
}

// RenderLiveAlerts shows the live alert panel when the critical alerts text
// reports urgent categories, and hides it otherwise.
func RenderLiveAlerts(v *View, criticalAlerts string) error {
	panel, ok := v.Slot(SlotLiveAlerts)
	if !ok {
		return &MissingElementError{Slot: SlotLiveAlerts}
	}
	message, okMessage := v.Slot(SlotAlertMessage)
	if !strings.Contains(criticalAlerts, urgentAlertMarker) {
		panel.Hidden = true
		if okMessage {
			message.Text = ""
		}
		return nil
	}
	count := leadingInt(criticalAlerts)
	panel.Hidden = count <= 0
	if !okMessage {
		return &MissingElementError{Slot: SlotAlertMessage}
	}
	if count > 0 {
		message.Text = fmt.Sprintf("Critical Alert: %d categories require immediate attention!", count)
	} else {
		message.Text = "No critical alerts at this time."
	}
	return nil
}

// RenderKeywordTable writes one row per keyword or a single placeholder row.
func RenderKeywordTable(v *View, rows []Keyword) error {
	el, ok := v.Slot(SlotKeywordTable)
	if !ok {
		return &MissingElementError{Slot: SlotKeywordTable}
	}
	if len(rows) == 0 {
		el.Rows = [][]string{{noKeywordsText}}
		return nil
	}
	el.Rows = make([][]string, 0, len(rows))
	for _, kw := range rows {
		el.Rows = append(el.Rows, KeywordRow(kw))
	}
	return nil
}

// KeywordRow formats a keyword as a table row.
func KeywordRow(kw Keyword) []string {
	return []string{
		kw.Keyword,
		strconv.Itoa(kw.Frequency),
		categoryTitle(kw.Category),
		fmt.Sprintf("%.1f%%", kw.Confidence*100),
		kw.Sample,
	}
}

// RenderRecommendations writes the list items and the tinted count alert.
func RenderRecommendations(v *View, recs []Recommendation) error {
	var errs []error
	if el, ok := v.Slot(SlotRecommendList); ok {
		if len(recs) == 0 {
			el.Items = []string{noRecommendationsText}
		} else {
			el.Items = make([]string, 0, len(recs))
			for _, rec := range recs {
				el.Items = append(el.Items, fmt.Sprintf("%s (%s): %s", rec.Keyword, rec.Severity, rec.Suggestion))
			}
		}
	} else {
		errs = append(errs, &MissingElementError{Slot: SlotRecommendList})
	}
	if el, ok := v.Slot(SlotResourcesAlert); ok {
		if len(recs) > 0 {
			el.Text = fmt.Sprintf("Alert: %d actionable recommendations generated", len(recs))
		} else {
			el.Text = "Alert: No recommendations generated"
		}
		el.Class = resourcesAlertClass(len(recs))
	} else {
		errs = append(errs, &MissingElementError{Slot: SlotResourcesAlert})
	}
	return errors.Join(errs...)
}

// RadarValues returns the five category scores in display order, 0 when
// a category is absent.
func RadarValues(scores AggregateScores) []float64 {
	values := make([]float64, len(stressCategories))
	for i, c := range stressCategories {
		if score, ok := scores.Score(c); ok {
			values[i] = score.Score
		}
	}
	return values
}

func radarIndicators() []string {
	out := make([]string, len(stressCategories))
	for i, c := range stressCategories {
		out[i] = categoryTitle(c)
	}
	return out
}

func setText(v *View, id, text string) error {
	el, ok := v.Slot(id)
	if !ok {
		return &MissingElementError{Slot: id}
	}
	el.Text = text
	return nil
}

func setValue(v *View, id, value string) error {
	el, ok := v.Slot(id)
	if !ok {
		return &MissingElementError{Slot: id}
	}
	el.Value = value
	return nil
}

func categoryTitle(c Category) string {
	return strcase.ToCamel(string(c))
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// leadingInt parses the integer prefix of s, 0 when there is none.
func leadingInt(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
