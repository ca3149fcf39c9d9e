package rinsight

import (
	"context"
	"sync"

	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
)

// MockData seeds deterministic backend responses for tests or local demos.
type MockData struct {
	Scores          dashboard.AggregateScores
	Keywords        []dashboard.Keyword
	Recommendations []dashboard.Recommendation
	Reload          dashboard.ReloadResult
	// Err, when set, fails every call.
	Err error
}

// MockClient implements dashboard.Backend using in-memory fixtures.
type MockClient struct {
	mu   sync.RWMutex
	data MockData
}

var _ dashboard.Backend = (*MockClient)(nil)

// NewMockClient builds a mock backend from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// SetData swaps the fixtures, e.g. to simulate a source reload.
func (c *MockClient) SetData(data MockData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
}

// FetchScores returns the configured scores ignoring the date range.
func (c *MockClient) FetchScores(context.Context, dashboard.DateRange) (dashboard.AggregateScores, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Err != nil {
		return dashboard.AggregateScores{}, c.data.Err
	}
	return cloneScores(c.data.Scores), nil
}

func (c *MockClient) FetchKeywords(context.Context) ([]dashboard.Keyword, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Err != nil {
		return nil, c.data.Err
	}
	return append([]dashboard.Keyword(nil), c.data.Keywords...), nil
}

func (c *MockClient) FetchRecommendations(context.Context) ([]dashboard.Recommendation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Err != nil {
		return nil, c.data.Err
	}
	return append([]dashboard.Recommendation(nil), c.data.Recommendations...), nil
}

func (c *MockClient) ReloadSource(context.Context) (dashboard.ReloadResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Err != nil {
		return dashboard.ReloadResult{}, c.data.Err
	}
	return c.data.Reload, nil
}

func cloneScores(scores dashboard.AggregateScores) dashboard.AggregateScores {
	out := scores
	out.Categories = make(map[dashboard.Category]dashboard.CategoryScore, len(scores.Categories))
	for k, v := range scores.Categories {
		v.TrendLabels = append([]string(nil), v.TrendLabels...)
		v.TrendData = append([]float64(nil), v.TrendData...)
		out.Categories[k] = v
	}
	return out
}

// DemoData returns a small fixture set used by the CLI when no backend URL
// is configured.
func DemoData() MockData {
	labels := []string{"Apr 13", "Apr 14", "Apr 15", "Apr 16", "Apr 17", "Apr 18", "Apr 19"}
	return MockData{
		Scores: dashboard.AggregateScores{
			Categories: map[dashboard.Category]dashboard.CategoryScore{
				dashboard.CategoryAcademic: {
					Score: 72, Status: dashboard.StatusModerate, Color: "#F59E0B", Trend: "+12%",
					Explanation:    "Exam season posts mention deadlines and grades",
					Recommendation: "Promote tutoring sessions",
					TrendLabels:    labels, TrendData: []float64{50, 55, 61, 58, 66, 70, 72},
				},
				dashboard.CategoryFinancial: {
					Score: 84, Status: dashboard.StatusCritical, Color: "#EF4444", Trend: "+20%",
					Explanation:    "Tuition and rent payments dominate discussion",
					Recommendation: "Share emergency aid resources",
					TrendLabels:    labels, TrendData: []float64{60, 64, 70, 75, 79, 82, 84},
				},
				dashboard.CategoryHealth: {
					Score: 35, Status: dashboard.StatusLow, Color: "#10B981", Trend: "-5%",
					Explanation:    "Few posts about illness or sleep",
					Recommendation: "Keep wellness reminders running",
					TrendLabels:    labels, TrendData: []float64{40, 38, 39, 37, 36, 35, 35},
				},
				dashboard.CategorySocial: {
					Score: 48, Status: dashboard.StatusModerate, Color: "#F59E0B", Trend: "+3%",
					Explanation:    "Loneliness mentioned around weekends",
					Recommendation: "Advertise club events",
					TrendLabels:    labels, TrendData: []float64{44, 45, 47, 46, 48, 49, 48},
				},
			},
			HighestStress:  "Financial (Score: 84)",
			TopKeyword:     "rent (Frequency: 41)",
			CriticalAlerts: "1 categories need urgent attention",
			Summary:        "Financial stress leads this week",
			Recommendation: "Coordinate with the financial aid office",
		},
		Keywords: []dashboard.Keyword{
			{Keyword: "rent", Frequency: 41, Category: dashboard.CategoryFinancial, Confidence: 0.91, Sample: "rent went up again"},
			{Keyword: "exam", Frequency: 37, Category: dashboard.CategoryAcademic, Confidence: 0.88, Sample: "three exams next week"},
			{Keyword: "lonely", Frequency: 12, Category: dashboard.CategorySocial, Confidence: 0.74, Sample: "feeling lonely on campus"},
			{Keyword: "sleep", Frequency: 9, Category: dashboard.CategoryHealth, Confidence: 0.63, Sample: "can't sleep before finals"},
			{Keyword: "lease", Frequency: 7, Category: dashboard.CategoryHousing, Confidence: 0.58, Sample: "lease ends in May"},
			{Keyword: "loan", Frequency: 6, Category: dashboard.CategoryFinancial, Confidence: 0.55, Sample: "loan payments start soon"},
		},
		Recommendations: []dashboard.Recommendation{
			{Keyword: "rent", Severity: "High", Suggestion: "Share emergency housing aid"},
			{Keyword: "exam", Severity: "Medium", Suggestion: "Promote extended library hours"},
		},
		Reload: dashboard.ReloadResult{Status: "success", Message: "CSV reloaded successfully"},
	}
}
