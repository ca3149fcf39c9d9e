package commands

import (
	"context"
	"testing"

	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	scoreCalls  int
	reloadCalls int
	keywords    []dashboard.Keyword
}

func (b *stubBackend) FetchScores(context.Context, dashboard.DateRange) (dashboard.AggregateScores, error) {
	b.scoreCalls++
	return dashboard.AggregateScores{Categories: map[dashboard.Category]dashboard.CategoryScore{
		dashboard.CategoryAcademic: {Score: 72, Status: dashboard.StatusModerate, Color: "#F59E0B"},
	}}, nil
}

func (b *stubBackend) FetchKeywords(context.Context) ([]dashboard.Keyword, error) {
	return b.keywords, nil
}

func (b *stubBackend) FetchRecommendations(context.Context) ([]dashboard.Recommendation, error) {
	return nil, nil
}

func (b *stubBackend) ReloadSource(context.Context) (dashboard.ReloadResult, error) {
	b.reloadCalls++
	return dashboard.ReloadResult{Status: "success", Message: "reloaded"}, nil
}

type stubTelemetry struct {
	calls  int
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.calls++
	s.events = append(s.events, event)
}

func newService(backend dashboard.Backend) *dashboard.Service {
	charts := dashboard.NewChartFactory(dashboard.WithChartCache(nil))
	return dashboard.NewService(dashboard.Options{Backend: backend, Charts: charts})
}

func mustOpen(t *testing.T, service *dashboard.Service) *dashboard.Controller {
	t.Helper()
	ctrl, err := service.Open(context.Background(), "")
	require.NoError(t, err)
	return ctrl
}

func TestSelectTabCommand(t *testing.T) {
	service := newService(&stubBackend{})
	ctrl := mustOpen(t, service)
	telemetry := &stubTelemetry{}
	cmd := NewSelectTabCommand(service, telemetry)

	err := cmd.Execute(context.Background(), SelectTabInput{SessionID: ctrl.SessionID(), Category: "all"})
	require.NoError(t, err)
	assert.Equal(t, dashboard.CategoryAll, ctrl.Active())
	assert.Equal(t, []string{"rinsight.command.select_tab"}, telemetry.events)
}

func TestChangeDateRangeCommandRejectsInvertedRange(t *testing.T) {
	backend := &stubBackend{}
	service := newService(backend)
	ctrl := mustOpen(t, service)
	telemetry := &stubTelemetry{}
	cmd := NewChangeDateRangeCommand(service, telemetry)

	err := cmd.Execute(context.Background(), ChangeDateRangeInput{
		SessionID: ctrl.SessionID(),
		Category:  "academic",
		Start:     "2025-05-01",
		End:       "2025-04-01",
	})
	assert.True(t, dashboard.IsValidationError(err))
	assert.Equal(t, 1, backend.scoreCalls)
	assert.Zero(t, telemetry.calls)
}

func TestRetryCommand(t *testing.T) {
	backend := &stubBackend{}
	service := newService(backend)
	ctrl := mustOpen(t, service)
	cmd := NewRetryCommand(service, nil)

	require.NoError(t, cmd.Execute(context.Background(), RetryInput{SessionID: ctrl.SessionID()}))
	require.NoError(t, cmd.Execute(context.Background(), RetryInput{SessionID: ctrl.SessionID(), Category: "health"}))
	assert.Equal(t, 3, backend.scoreCalls)
	assert.Equal(t, dashboard.CategoryAcademic, ctrl.Active())

	err := cmd.Execute(context.Background(), RetryInput{SessionID: ctrl.SessionID(), Category: "weather"})
	assert.True(t, dashboard.IsValidationError(err))
}

func TestReloadSourceCommand(t *testing.T) {
	backend := &stubBackend{}
	service := newService(backend)
	ctrl := mustOpen(t, service)
	telemetry := &stubTelemetry{}
	cmd := NewReloadSourceCommand(service, telemetry)

	require.NoError(t, cmd.Execute(context.Background(), ReloadSourceInput{SessionID: ctrl.SessionID()}))
	assert.Equal(t, 1, backend.reloadCalls)
	banner, ok := ctrl.Banner()
	require.True(t, ok)
	assert.Equal(t, dashboard.BannerInfo, banner.Kind)
	assert.Equal(t, 1, telemetry.calls)
}

func TestKeywordCommands(t *testing.T) {
	backend := &stubBackend{keywords: []dashboard.Keyword{
		{Keyword: "exam", Frequency: 2, Category: dashboard.CategoryAcademic},
		{Keyword: "loan", Frequency: 9, Category: dashboard.CategoryFinancial},
	}}
	service := newService(backend)
	ctrl := mustOpen(t, service)
	ctx := context.Background()
	require.NoError(t, NewSelectTabCommand(service, nil).Execute(ctx, SelectTabInput{SessionID: ctrl.SessionID(), Category: "keywords"}))

	require.NoError(t, NewSortKeywordsCommand(service, nil).Execute(ctx, SortKeywordsInput{SessionID: ctrl.SessionID()}))
	table, _ := ctrl.Snapshot(ctx).Element(dashboard.SlotKeywordTable)
	assert.Equal(t, "loan", table.Rows[0][0])

	require.NoError(t, NewSearchKeywordsCommand(service, nil).Execute(ctx, SearchKeywordsInput{SessionID: ctrl.SessionID(), Text: "EX"}))
	table, _ = ctrl.Snapshot(ctx).Element(dashboard.SlotKeywordTable)
	assert.Equal(t, [][]string{{"exam", "2", "Academic", "0.0%", ""}}, table.Rows)

	err := NewFilterKeywordsCommand(service, nil).Execute(ctx, FilterKeywordsInput{SessionID: ctrl.SessionID(), Category: "financial"})
	require.NoError(t, err)
	table, _ = ctrl.Snapshot(ctx).Element(dashboard.SlotKeywordTable)
	assert.Equal(t, [][]string{{"No keywords available"}}, table.Rows)
}

func TestToggleThemeCommand(t *testing.T) {
	service := newService(&stubBackend{})
	ctrl := mustOpen(t, service)
	cmd := NewToggleThemeCommand(service, nil)

	require.NoError(t, cmd.Execute(context.Background(), ToggleThemeInput{SessionID: ctrl.SessionID()}))
	theme, err := ctrl.Theme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dashboard.ThemeDark, theme)
}

func TestCommandsRequireService(t *testing.T) {
	err := NewSelectTabCommand(nil, nil).Execute(context.Background(), SelectTabInput{Category: "all"})
	assert.EqualError(t, err, "select tab command requires service")
}
