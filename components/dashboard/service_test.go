package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(backend Backend) *Service {
	return NewService(Options{
		Backend: backend,
		Charts:  testCharts(),
	})
}

func TestServiceOpenCreatesAndLoadsSession(t *testing.T) {
	backend := &stubBackend{scores: AggregateScores{Categories: map[Category]CategoryScore{
		CategoryAcademic: academicScore(72, StatusModerate),
	}}}
	service := newTestService(backend)

	ctrl, err := service.Open(context.Background(), "")
	require.NoError(t, err)

	_, parseErr := uuid.Parse(ctrl.SessionID())
	assert.NoError(t, parseErr)
	assert.Equal(t, 1, service.Sessions())
	assert.Equal(t, 1, backend.scoreCallCount())
	snap := ctrl.Snapshot(context.Background())
	score, _ := snap.Element(ScoreSlot(CategoryAcademic))
	assert.Equal(t, "72", score.Text)
}

func TestServiceOpenReusesSession(t *testing.T) {
	backend := &stubBackend{}
	service := newTestService(backend)
	ctx := context.Background()

	first, err := service.Open(ctx, "")
	require.NoError(t, err)
	second, err := service.Open(ctx, first.SessionID())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, backend.scoreCallCount())
}

func TestServiceOpenKeepsClientUUID(t *testing.T) {
	service := newTestService(&stubBackend{})
	id := uuid.NewString()

	ctrl, err := service.Open(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, ctrl.SessionID())

	ctrl, err = service.Open(context.Background(), "not-a-uuid")
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", ctrl.SessionID())
}

func TestServiceSessionLookup(t *testing.T) {
	service := newTestService(&stubBackend{})
	_, err := service.Session("missing")
	assert.True(t, errors.Is(err, errUnknownSession))

	ctrl, err := service.NewSession()
	require.NoError(t, err)
	found, err := service.Session(ctrl.SessionID())
	require.NoError(t, err)
	assert.Same(t, ctrl, found)

	service.CloseSession(ctrl.SessionID())
	assert.Equal(t, 0, service.Sessions())
}

func TestServiceSessionsShareThemeStore(t *testing.T) {
	store := NewInMemoryThemeStore(ThemeDark)
	service := NewService(Options{Backend: &stubBackend{}, Charts: testCharts(), ThemeStore: store})
	ctrl, err := service.NewSession()
	require.NoError(t, err)

	theme, err := ctrl.Theme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)
}

func TestServicePublishesToRefreshHook(t *testing.T) {
	hook := NewBroadcastHook()
	service := NewService(Options{Backend: &stubBackend{}, Charts: testCharts(), RefreshHook: hook})
	events, cancel := hook.Subscribe("")
	defer cancel()

	ctrl, err := service.Open(context.Background(), "")
	require.NoError(t, err)

	var sawRender bool
	for len(events) > 0 {
		event := <-events
		assert.Equal(t, ctrl.SessionID(), event.SessionID)
		if event.Reason == "render" {
			sawRender = true
		}
	}
	assert.True(t, sawRender)
}

func TestServiceSweepClosesIdleSessions(t *testing.T) {
	backend := &stubBackend{}
	now := time.Date(2025, 4, 20, 12, 0, 0, 0, time.UTC)
	service := NewService(Options{
		Backend:    backend,
		Charts:     testCharts(),
		SessionTTL: time.Minute,
		Now:        func() time.Time { return now },
	})
	ctx := context.Background()

	active, err := service.Open(ctx, "")
	require.NoError(t, err)
	idle, err := service.Open(ctx, "")
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	_, err = service.Session(active.SessionID())
	require.NoError(t, err)
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, service.Sweep(now))
	assert.Equal(t, 1, service.Sessions())
	_, err = service.Session(idle.SessionID())
	assert.ErrorIs(t, err, errUnknownSession)

	reopened, err := service.Open(ctx, idle.SessionID())
	require.NoError(t, err)
	assert.NotSame(t, idle, reopened)
	assert.Equal(t, idle.SessionID(), reopened.SessionID())
	assert.Equal(t, 3, backend.scoreCallCount())
}

func TestServiceSweepWithoutTTLKeepsSessions(t *testing.T) {
	service := newTestService(&stubBackend{})
	_, err := service.Open(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, service.Sweep(time.Now().Add(24*time.Hour)))
	assert.Equal(t, 1, service.Sessions())
}

func TestServiceMaxSessionsEvictsLeastRecentlyUsed(t *testing.T) {
	now := time.Date(2025, 4, 20, 12, 0, 0, 0, time.UTC)
	service := NewService(Options{
		Backend:     &stubBackend{},
		Charts:      testCharts(),
		MaxSessions: 2,
		Now:         func() time.Time { return now },
	})
	ctx := context.Background()

	first, err := service.Open(ctx, "")
	require.NoError(t, err)
	now = now.Add(time.Second)
	second, err := service.Open(ctx, "")
	require.NoError(t, err)
	now = now.Add(time.Second)
	_, err = service.Open(ctx, first.SessionID())
	require.NoError(t, err)
	now = now.Add(time.Second)

	for i := 0; i < 5; i++ {
		_, err = service.Open(ctx, "")
		require.NoError(t, err)
		now = now.Add(time.Second)
	}
	assert.Equal(t, 2, service.Sessions())
	_, err = service.Session(second.SessionID())
	assert.ErrorIs(t, err, errUnknownSession)
}

func TestServiceRunJanitorSweeps(t *testing.T) {
	later := time.Now().Add(time.Hour)
	service := NewService(Options{
		Backend:    &stubBackend{},
		Charts:     testCharts(),
		SessionTTL: time.Minute,
	})
	_, err := service.Open(context.Background(), "")
	require.NoError(t, err)
	service.opts.Now = func() time.Time { return later }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		service.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool { return service.Sessions() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestServiceClosesSessionWhenLastStreamLeaves(t *testing.T) {
	hook := NewBroadcastHook()
	service := NewService(Options{Backend: &stubBackend{}, Charts: testCharts(), RefreshHook: hook})
	hook.OnSessionIdle(service.CloseSession)

	ctrl, err := service.Open(context.Background(), "")
	require.NoError(t, err)
	_, first := hook.Subscribe(ctrl.SessionID())
	_, second := hook.Subscribe(ctrl.SessionID())

	first()
	assert.Equal(t, 1, service.Sessions())
	second()
	assert.Equal(t, 0, service.Sessions())
}
