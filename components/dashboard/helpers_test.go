package dashboard

import (
	"context"
	"sync"
)

type stubBackend struct {
	mu              sync.Mutex
	scores          AggregateScores
	scoresErr       error
	keywords        []Keyword
	keywordsErr     error
	recommendations []Recommendation
	recsErr         error
	reload          ReloadResult
	reloadErr       error
	scoreCalls      []DateRange
	keywordCalls    int
	recCalls        int
	reloadCalls     int
	scoresFn        func(ctx context.Context, dates DateRange) (AggregateScores, error)
}

func (b *stubBackend) FetchScores(ctx context.Context, dates DateRange) (AggregateScores, error) {
	b.mu.Lock()
	b.scoreCalls = append(b.scoreCalls, dates)
	fn := b.scoresFn
	scores, err := b.scores, b.scoresErr
	b.mu.Unlock()
	if fn != nil {
		return fn(ctx, dates)
	}
	return scores, err
}

func (b *stubBackend) FetchKeywords(context.Context) ([]Keyword, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keywordCalls++
	return b.keywords, b.keywordsErr
}

func (b *stubBackend) FetchRecommendations(context.Context) ([]Recommendation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recCalls++
	return b.recommendations, b.recsErr
}

func (b *stubBackend) ReloadSource(context.Context) (ReloadResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reloadCalls++
	return b.reload, b.reloadErr
}

func (b *stubBackend) scoreCallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.scoreCalls)
}

type recordingNotifier struct {
	events  []string
	loading int
	banner  *Banner
}

func (n *recordingNotifier) Loading(_ context.Context, on bool) {
	if on {
		n.loading++
		n.events = append(n.events, "loading:on")
		return
	}
	n.loading--
	n.events = append(n.events, "loading:off")
}

func (n *recordingNotifier) Error(_ context.Context, message string) {
	n.banner = &Banner{Kind: BannerError, Message: message}
	n.events = append(n.events, "error")
}

func (n *recordingNotifier) Info(_ context.Context, message string) {
	n.banner = &Banner{Kind: BannerInfo, Message: message}
	n.events = append(n.events, "info")
}

func (n *recordingNotifier) Clear(context.Context) {
	n.banner = nil
	n.events = append(n.events, "clear")
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (t *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *recordingTelemetry) has(event string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.events {
		if e == event {
			return true
		}
	}
	return false
}

func testCharts() *ChartFactory {
	return NewChartFactory(WithChartCache(nil), WithChartAssetsHost(""))
}

func testRenderers() Renderers {
	return NewRenderers(testCharts(), nil)
}

func newTestController(backend Backend) *Controller {
	renderers := testRenderers()
	ctrl, err := NewController(ControllerOptions{
		SessionID: "session-1",
		Gateway:   NewGateway(backend, nil, nil),
		Renderers: &renderers,
	})
	if err != nil {
		panic(err)
	}
	return ctrl
}

func academicScore(score float64, status Status) CategoryScore {
	return CategoryScore{
		Score:          score,
		Status:         status,
		Explanation:    "Exam pressure is rising",
		Recommendation: "Promote tutoring sessions",
		Color:          "#F59E0B",
		Trend:          "+12%",
		TrendLabels:    []string{"Apr 13", "Apr 14", "Apr 15"},
		TrendData:      []float64{60, 68, 72},
	}
}
