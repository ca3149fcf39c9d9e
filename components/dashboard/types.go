package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category identifies a dashboard tab. The five stress domains carry scores;
// "all", "keywords" and "resources" are synthetic tabs.
type Category string

const (
	CategoryAcademic  Category = "academic"
	CategoryFinancial Category = "financial"
	CategoryHealth    Category = "health"
	CategoryHousing   Category = "housing"
	CategorySocial    Category = "social"
	CategoryAll       Category = "all"
	CategoryKeywords  Category = "keywords"
	CategoryResources Category = "resources"
)

var stressCategories = []Category{
	CategoryAcademic,
	CategoryFinancial,
	CategoryHealth,
	CategoryHousing,
	CategorySocial,
}

var tabCategories = []Category{
	CategoryAcademic,
	CategoryFinancial,
	CategoryHealth,
	CategoryHousing,
	CategorySocial,
	CategoryKeywords,
	CategoryResources,
	CategoryAll,
}

// StressCategories returns the five scored categories in display order.
func StressCategories() []Category {
	return append([]Category(nil), stressCategories...)
}

// TabCategories returns every tab the controller can activate.
func TabCategories() []Category {
	return append([]Category(nil), tabCategories...)
}

// ParseCategory normalizes user input into a known tab category.
func ParseCategory(value string) (Category, bool) {
	candidate := Category(strings.ToLower(strings.TrimSpace(value)))
	for _, c := range tabCategories {
		if c == candidate {
			return c, true
		}
	}
	return "", false
}

// IsStress reports whether the category carries a score panel.
func (c Category) IsStress() bool {
	for _, s := range stressCategories {
		if s == c {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// Status is the backend severity label attached to a category score.
type Status string

const (
	StatusLow      Status = "Low"
	StatusModerate Status = "Moderate"
	StatusCritical Status = "Critical"
	StatusNoData   Status = "No Data"
)

// CategoryScore is the backend payload for one stress category.
type CategoryScore struct {
	Score          float64   `json:"score"`
	Status         Status    `json:"status"`
	Explanation    string    `json:"explanation"`
	Recommendation string    `json:"recommendation"`
	Color          string    `json:"color"`
	Trend          string    `json:"trend,omitempty"`
	TrendLabels    []string  `json:"trend_labels"`
	TrendData      []float64 `json:"trend_data"`
}

// AggregateScores is the stress-scores response: per-category scores plus
// optional summary fields used by the "all" tab.
type AggregateScores struct {
	Categories     map[Category]CategoryScore `json:"-"`
	HighestStress  string                     `json:"highest_stress,omitempty"`
	TopKeyword     string                     `json:"top_keyword,omitempty"`
	CriticalAlerts string                     `json:"critical_alerts,omitempty"`
	Summary        string                     `json:"summary,omitempty"`
	Recommendation string                     `json:"recommendation,omitempty"`
}

// Score returns the category payload when present.
func (a AggregateScores) Score(c Category) (CategoryScore, bool) {
	if a.Categories == nil {
		return CategoryScore{}, false
	}
	score, ok := a.Categories[c]
	return score, ok
}

// IsEmpty reports whether the response carried no keys at all.
func (a AggregateScores) IsEmpty() bool {
	return len(a.Categories) == 0 &&
		a.HighestStress == "" &&
		a.TopKeyword == "" &&
		a.CriticalAlerts == "" &&
		a.Summary == "" &&
		a.Recommendation == ""
}

// UnmarshalJSON decodes the flat backend object where category payloads and
// summary strings share one namespace.
func (a *AggregateScores) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := AggregateScores{Categories: map[Category]CategoryScore{}}
	for _, c := range stressCategories {
		payload, ok := raw[string(c)]
		if !ok || isJSONNull(payload) {
			continue
		}
		var score CategoryScore
		if err := json.Unmarshal(payload, &score); err != nil {
			return fmt.Errorf("decode %s score: %w", c, err)
		}
		out.Categories[c] = score
	}
	fields := map[string]*string{
		"highest_stress":  &out.HighestStress,
		"top_keyword":     &out.TopKeyword,
		"critical_alerts": &out.CriticalAlerts,
		"summary":         &out.Summary,
		"recommendation":  &out.Recommendation,
	}
	for key, target := range fields {
		payload, ok := raw[key]
		if !ok || isJSONNull(payload) {
			continue
		}
		*target = textValue(payload)
	}
	*a = out
	return nil
}

// MarshalJSON writes the flat backend shape back out.
func (a AggregateScores) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Categories)+5)
	for c, score := range a.Categories {
		out[string(c)] = score
	}
	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	set("highest_stress", a.HighestStress)
	set("top_keyword", a.TopKeyword)
	set("critical_alerts", a.CriticalAlerts)
	set("summary", a.Summary)
	set("recommendation", a.Recommendation)
	return json.Marshal(out)
}

func isJSONNull(payload json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(payload), []byte("null"))
}

// textValue accepts strings and renders any other JSON scalar verbatim so a
// numeric summary field still reaches the view.
func textValue(payload json.RawMessage) string {
	var s string
	if err := json.Unmarshal(payload, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(payload))
}

// Keyword is a single extracted keyword statistic.
type Keyword struct {
	Keyword    string   `json:"keyword"`
	Frequency  int      `json:"frequency"`
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
	Sample     string   `json:"sample"`
}

// Recommendation is a suggestion generated for a keyword.
type Recommendation struct {
	Keyword    string `json:"keyword"`
	Severity   string `json:"severity"`
	Suggestion string `json:"suggestion"`
}

// ReloadResult is the backend answer to a source reload.
type ReloadResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Succeeded reports whether the backend accepted the reload.
func (r ReloadResult) Succeeded() bool {
	return strings.EqualFold(r.Status, "success")
}

// DateRange scopes a stress score query. Dates use the YYYY-MM-DD layout.
type DateRange struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

// Backend is the remote scoring service consumed by the gateway.
type Backend interface {
	FetchScores(ctx context.Context, dates DateRange) (AggregateScores, error)
	FetchKeywords(ctx context.Context) ([]Keyword, error)
	FetchRecommendations(ctx context.Context) ([]Recommendation, error)
	ReloadSource(ctx context.Context) (ReloadResult, error)
}

// RefreshHook notifies transports (WebSocket/SSE) about view changes.
type RefreshHook interface {
	ViewUpdated(ctx context.Context, event ViewEvent) error
}

// ViewEvent describes a change transports might care about.
type ViewEvent struct {
	SessionID string    `json:"session_id"`
	Category  Category  `json:"category,omitempty"`
	Reason    string    `json:"reason"`
	Banner    *Banner   `json:"banner,omitempty"`
	Loading   bool      `json:"loading"`
	At        time.Time `json:"at"`
}

// Banner is the single shared notification shown to the viewer.
type Banner struct {
	Kind    BannerKind `json:"kind"`
	Message string     `json:"message"`
}

// BannerKind selects the banner styling.
type BannerKind string

const (
	BannerInfo  BannerKind = "info"
	BannerError BannerKind = "error"
)
