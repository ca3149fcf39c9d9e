package dashboard

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const pageTemplate = "dashboard.html"

// Renderer describes the template renderer contract needed by the page handler.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// RenderPage renders the dashboard page for a snapshot.
func RenderPage(renderer Renderer, snapshot ViewSnapshot, basePath string, out io.Writer) error {
	if renderer == nil {
		return fmt.Errorf("dashboard: page renderer not configured")
	}
	_, err := renderer.Render(pageTemplate, PageData(snapshot, basePath), out)
	return err
}

// PageData flattens a snapshot into the maps the page template reads.
func PageData(snapshot ViewSnapshot, basePath string) map[string]any {
	text := func(id string) string {
		el, _ := snapshot.Element(id)
		return el.Text
	}
	value := func(id string) string {
		el, _ := snapshot.Element(id)
		return el.Value
	}
	body, _ := snapshot.Element(SlotBody)
	banner, _ := snapshot.Element(SlotErrorAlert)
	loading, _ := snapshot.Element(SlotLoading)

	tabs := make([]map[string]any, 0, len(tabCategories))
	for _, c := range tabCategories {
		tab, ok := snapshot.Element(TabSlot(c))
		if !ok {
			continue
		}
		tabs = append(tabs, map[string]any{
			"category": string(c),
			"title":    categoryTitle(c),
			"active":   tab.Active,
		})
	}

	panels := make([]map[string]any, 0, len(stressCategories))
	for _, c := range stressCategories {
		panel, ok := snapshot.Element(PanelSlot(c))
		if !ok {
			continue
		}
		badge, _ := snapshot.Element(BadgeSlot(c))
		progress, _ := snapshot.Element(ProgressSlot(c))
		trend, _ := snapshot.Element(TrendSlot(c))
		panels = append(panels, map[string]any{
			"category":       string(c),
			"title":          categoryTitle(c),
			"active":         panel.Active,
			"score":          text(ScoreSlot(c)),
			"badge":          badge.Text,
			"badge_class":    badge.Class,
			"trend_text":     text(TrendTextSlot(c)),
			"explanation":    text(ExplanationSlot(c)),
			"recommendation": text(RecommendationSlot(c)),
			"progress_style": styleAttr(progress.Style),
			"chart":          trend.Chart,
			"date_start":     value(DateStartSlot(c)),
			"date_end":       value(DateEndSlot(c)),
		})
	}

	allPanel, _ := snapshot.Element(PanelSlot(CategoryAll))
	radar, _ := snapshot.Element(SlotRadarChart)
	liveAlerts, _ := snapshot.Element(SlotLiveAlerts)
	keywordPanel, _ := snapshot.Element(PanelSlot(CategoryKeywords))
	keywordTable, _ := snapshot.Element(SlotKeywordTable)
	keywordChart, _ := snapshot.Element(SlotKeywordChart)
	resourcesPanel, _ := snapshot.Element(PanelSlot(CategoryResources))
	recs, _ := snapshot.Element(SlotRecommendList)
	resourcesAlert, _ := snapshot.Element(SlotResourcesAlert)

	return map[string]any{
		"base_path":  strings.TrimRight(basePath, "/"),
		"session_id": snapshot.SessionID,
		"theme":      string(snapshot.Theme),
		"body_class": body.Class,
		"active":     string(snapshot.Active),
		"loading":    !loading.Hidden,
		"banner": map[string]any{
			"hidden":  banner.Hidden,
			"class":   banner.Class,
			"message": text(SlotErrorMessage),
		},
		"tabs":   tabs,
		"panels": panels,
		"aggregate": map[string]any{
			"active":          allPanel.Active,
			"highest_stress":  text(SlotHighestStress),
			"top_keyword":     text(SlotTopKeyword),
			"critical_alerts": text(SlotCriticalAlerts),
			"summary":         text(SlotAllSummary),
			"recommendation":  text(SlotAllRecommend),
			"chart":           radar.Chart,
			"live_alerts":     !liveAlerts.Hidden,
			"alert_message":   text(SlotAlertMessage),
			"date_start":      value(DateStartSlot(CategoryAll)),
			"date_end":        value(DateEndSlot(CategoryAll)),
		},
		"keywords": map[string]any{
			"active":     keywordPanel.Active,
			"search":     value(SlotKeywordSearch),
			"filter":     value(SlotKeywordFilter),
			"rows":       keywordTable.Rows,
			"chart":      keywordChart.Chart,
			"categories": categoryNames(stressCategories),
		},
		"resources": map[string]any{
			"active":      resourcesPanel.Active,
			"items":       recs.Items,
			"alert":       resourcesAlert.Text,
			"alert_class": resourcesAlert.Class,
		},
	}
}

func styleAttr(style map[string]string) string {
	if len(style) == 0 {
		return ""
	}
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+style[k])
	}
	return strings.Join(parts, "; ")
}
