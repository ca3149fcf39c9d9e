package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerLoadRendersActiveCategory(t *testing.T) {
	backend := &stubBackend{scores: AggregateScores{Categories: map[Category]CategoryScore{
		CategoryAcademic: academicScore(72, StatusModerate),
	}}}
	ctrl := newTestController(backend)

	require.NoError(t, ctrl.Load(context.Background()))

	snap := ctrl.Snapshot(context.Background())
	assert.Equal(t, CategoryAcademic, snap.Active)
	score, _ := snap.Element(ScoreSlot(CategoryAcademic))
	assert.Equal(t, "72", score.Text)
	badge, _ := snap.Element(BadgeSlot(CategoryAcademic))
	assert.Equal(t, "Moderate", badge.Text)
	assert.Contains(t, badge.Class, "bg-yellow-100")
	progress, _ := snap.Element(ProgressSlot(CategoryAcademic))
	assert.Equal(t, "72%", progress.Style["width"])
	loading, _ := snap.Element(SlotLoading)
	assert.True(t, loading.Hidden)
	assert.Equal(t, []DateRange{DefaultDateRange}, backend.scoreCalls)
}

func TestControllerSelectAllWithEmptyScores(t *testing.T) {
	ctrl := newTestController(&stubBackend{})

	require.NoError(t, ctrl.SelectTab(context.Background(), "all"))

	snap := ctrl.Snapshot(context.Background())
	for _, c := range StressCategories() {
		score, _ := snap.Element(ScoreSlot(c))
		assert.Equal(t, "0", score.Text)
		badge, _ := snap.Element(BadgeSlot(c))
		assert.Equal(t, "No Data", badge.Text)
	}
	radar, _ := snap.Element(SlotRadarChart)
	assert.NotEmpty(t, radar.Chart)
	tab, _ := snap.Element(TabSlot(CategoryAll))
	assert.True(t, tab.Active)
	other, _ := snap.Element(TabSlot(CategoryAcademic))
	assert.False(t, other.Active)
	panel, _ := snap.Element(PanelSlot(CategoryAcademic))
	assert.True(t, panel.Hidden)
}

func TestControllerSelectAllWhenFetchFails(t *testing.T) {
	ctrl := newTestController(&stubBackend{scoresErr: &NetworkError{Status: 502}})

	require.NoError(t, ctrl.SelectTab(context.Background(), "all"))

	banner, ok := ctrl.Banner()
	require.True(t, ok)
	assert.Equal(t, "Failed to load stress scores: HTTP error: 502", banner.Message)
	snap := ctrl.Snapshot(context.Background())
	score, _ := snap.Element(ScoreSlot(CategorySocial))
	assert.Equal(t, "0", score.Text)
}

func TestControllerRejectsInvertedDateRange(t *testing.T) {
	backend := &stubBackend{}
	ctrl := newTestController(backend)

	err := ctrl.ChangeDateRange(context.Background(), "academic", "2025-05-01", "2025-04-01")

	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, 0, backend.scoreCallCount())
	banner, ok := ctrl.Banner()
	require.True(t, ok)
	assert.Equal(t, BannerError, banner.Kind)
	assert.Equal(t, "Invalid date range. Start date must be before end date.", banner.Message)
	snap := ctrl.Snapshot(context.Background())
	alert, _ := snap.Element(SlotErrorAlert)
	assert.False(t, alert.Hidden)
	assert.Contains(t, alert.Class, "bg-red-100")
	start, _ := snap.Element(DateStartSlot(CategoryAcademic))
	assert.Equal(t, DefaultDateRange.Start, start.Value)
}

func TestControllerAppliesValidDateRange(t *testing.T) {
	backend := &stubBackend{}
	ctrl := newTestController(backend)

	require.NoError(t, ctrl.ChangeDateRange(context.Background(), "health", "2025-04-01", "2025-05-01"))

	require.Equal(t, 1, backend.scoreCallCount())
	assert.Equal(t, DateRange{Start: "2025-04-01", End: "2025-05-01"}, backend.scoreCalls[0])
	snap := ctrl.Snapshot(context.Background())
	end, _ := snap.Element(DateEndSlot(CategoryHealth))
	assert.Equal(t, "2025-05-01", end.Value)
}

func TestControllerReloadErrorKeepsBannerAndRerenders(t *testing.T) {
	backend := &stubBackend{
		reload: ReloadResult{Status: "error", Message: "file not found"},
		scores: AggregateScores{Categories: map[Category]CategoryScore{
			CategoryAcademic: academicScore(40, StatusLow),
		}},
	}
	ctrl := newTestController(backend)

	result, err := ctrl.ReloadSource(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "error", result.Status)

	banner, ok := ctrl.Banner()
	require.True(t, ok)
	assert.Equal(t, BannerError, banner.Kind)
	assert.Equal(t, "file not found", banner.Message)
	assert.Equal(t, 1, backend.reloadCalls)
	assert.Equal(t, 1, backend.scoreCallCount())
	snap := ctrl.Snapshot(context.Background())
	score, _ := snap.Element(ScoreSlot(CategoryAcademic))
	assert.Equal(t, "40", score.Text)
}

func TestControllerReloadSuccessShowsInfo(t *testing.T) {
	backend := &stubBackend{reload: ReloadResult{Status: "success", Message: "CSV reloaded"}}
	ctrl := newTestController(backend)
	require.NoError(t, ctrl.SelectTab(context.Background(), "resources"))

	_, err := ctrl.ReloadSource(context.Background())
	require.NoError(t, err)

	banner, ok := ctrl.Banner()
	require.True(t, ok)
	assert.Equal(t, BannerInfo, banner.Kind)
	assert.Equal(t, "CSV reloaded", banner.Message)
	assert.Equal(t, 2, backend.recCalls)
}

func TestControllerDropsStaleResponses(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var calls int32
	backend := &stubBackend{}
	backend.scoresFn = func(ctx context.Context, dates DateRange) (AggregateScores, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			started <- struct{}{}
			<-release
			return AggregateScores{Categories: map[Category]CategoryScore{CategoryAcademic: academicScore(10, StatusLow)}}, nil
		}
		return AggregateScores{Categories: map[Category]CategoryScore{CategoryAcademic: academicScore(90, StatusCritical)}}, nil
	}
	ctrl := newTestController(backend)

	done := make(chan error, 1)
	go func() { done <- ctrl.Retry(context.Background()) }()
	<-started
	require.NoError(t, ctrl.Retry(context.Background()))
	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stale request did not finish")
	}

	snap := ctrl.Snapshot(context.Background())
	score, _ := snap.Element(ScoreSlot(CategoryAcademic))
	assert.Equal(t, "90", score.Text)
	badge, _ := snap.Element(BadgeSlot(CategoryAcademic))
	assert.Equal(t, "Critical", badge.Text)
	loading, _ := snap.Element(SlotLoading)
	assert.True(t, loading.Hidden)
}

func TestControllerRetryKeepsOneChartPerCanvas(t *testing.T) {
	backend := &stubBackend{scores: AggregateScores{Categories: map[Category]CategoryScore{
		CategoryAcademic: academicScore(72, StatusModerate),
		CategoryHealth:   {Score: 30, Status: StatusLow, Color: "#10B981"},
	}}}
	ctrl := newTestController(backend)
	ctx := context.Background()
	require.NoError(t, ctrl.SelectTab(ctx, "all"))
	for i := 0; i < 3; i++ {
		require.NoError(t, ctrl.Retry(ctx))
	}

	assert.Equal(t, 3, ctrl.LiveCharts())
	snap := ctrl.Snapshot(ctx)
	for _, el := range snap.Slots {
		if el.Kind == KindCanvas {
			assert.LessOrEqual(t, el.LiveCharts(), 1, el.ID)
		}
	}
}

func TestControllerSelectTabRejectsUnknownCategory(t *testing.T) {
	backend := &stubBackend{}
	ctrl := newTestController(backend)

	err := ctrl.SelectTab(context.Background(), "weather")

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, CategoryAcademic, ctrl.Active())
	assert.Equal(t, 0, backend.scoreCallCount())
	banner, ok := ctrl.Banner()
	require.True(t, ok)
	assert.Equal(t, "Content for weather not found", banner.Message)
}

func TestControllerKeywordInteractions(t *testing.T) {
	backend := &stubBackend{keywords: sampleKeywords()}
	ctrl := newTestController(backend)
	ctx := context.Background()

	require.NoError(t, ctrl.SelectTab(ctx, "keywords"))
	snap := ctrl.Snapshot(ctx)
	table, _ := snap.Element(SlotKeywordTable)
	assert.Len(t, table.Rows, 6)
	chart, _ := snap.Element(SlotKeywordChart)
	assert.NotEmpty(t, chart.Chart)

	rows, err := ctrl.FilterKeywords(ctx, "financial")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	rows = ctrl.SearchKeywords(ctx, "ex")
	assert.Equal(t, []string{"Exam fees", "examples"}, keywordNames(rows))
	rows = ctrl.SortKeywordsByFrequency(ctx)
	assert.Equal(t, []string{"Exam fees", "examples"}, keywordNames(rows))

	snap = ctrl.Snapshot(ctx)
	table, _ = snap.Element(SlotKeywordTable)
	assert.Equal(t, "Exam fees", table.Rows[0][0])
	search, _ := snap.Element(SlotKeywordSearch)
	assert.Equal(t, "ex", search.Value)
	filter, _ := snap.Element(SlotKeywordFilter)
	assert.Equal(t, "financial", filter.Value)

	_, err = ctrl.FilterKeywords(ctx, "weather")
	assert.True(t, IsValidationError(err))
}

func TestControllerReportUsesRenderedText(t *testing.T) {
	backend := &stubBackend{scores: AggregateScores{Categories: map[Category]CategoryScore{
		CategoryAcademic: academicScore(72, StatusModerate),
	}}}
	renderers := testRenderers()
	ctrl, err := NewController(ControllerOptions{
		SessionID: "s",
		Gateway:   NewGateway(backend, nil, nil),
		Renderers: &renderers,
		Now:       func() time.Time { return time.Date(2025, 4, 20, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	require.NoError(t, ctrl.Load(context.Background()))
	calls := backend.scoreCallCount()

	report, err := ctrl.Report("academic")
	require.NoError(t, err)

	assert.Equal(t, "academic_stress_report.txt", report.Filename)
	assert.Equal(t, "rInsight Stress Report: Academic\n"+
		"Date: 4/20/2025\n"+
		"Score: 72\n"+
		"Explanation: Exam pressure is rising\n"+
		"Recommendation: Recommendation: Promote tutoring sessions\n", report.Content)
	assert.Equal(t, calls, backend.scoreCallCount())
}

func TestControllerReportFallbacks(t *testing.T) {
	layout := DefaultLayout().Without(ScoreSlot(CategorySocial), ExplanationSlot(CategorySocial), RecommendationSlot(CategorySocial))
	renderers := testRenderers()
	ctrl, err := NewController(ControllerOptions{
		Gateway:   NewGateway(&stubBackend{}, nil, nil),
		Layout:    &layout,
		Renderers: &renderers,
	})
	require.NoError(t, err)

	report, err := ctrl.Report("social")
	require.NoError(t, err)
	assert.Contains(t, report.Content, "Score: 0\n")
	assert.Contains(t, report.Content, "Explanation: No data\n")
	assert.Contains(t, report.Content, "Recommendation: No recommendation\n")
}

func TestControllerToggleThemePersists(t *testing.T) {
	store := NewInMemoryThemeStore(ThemeLight)
	renderers := testRenderers()
	ctrl, err := NewController(ControllerOptions{
		SessionID:  "s-theme",
		Gateway:    NewGateway(&stubBackend{}, nil, nil),
		Renderers:  &renderers,
		ThemeStore: store,
	})
	require.NoError(t, err)
	ctx := context.Background()

	theme, err := ctrl.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)
	stored, _ := store.Theme(ctx, "s-theme")
	assert.Equal(t, ThemeDark, stored)
	snap := ctrl.Snapshot(ctx)
	assert.Equal(t, ThemeDark, snap.Theme)
	body, _ := snap.Element(SlotBody)
	assert.Equal(t, "dark", body.Class)

	theme, err = ctrl.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)
}

func TestNewControllerRequiresGateway(t *testing.T) {
	_, err := NewController(ControllerOptions{})
	assert.Error(t, err)
}
