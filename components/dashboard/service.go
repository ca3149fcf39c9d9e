package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Backend         Backend
	Charts          *ChartFactory
	ThemeStore      ThemeStore
	Validator       InputValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Logger          logrus.FieldLogger
	Layout          *Layout
	DefaultCategory Category
	DefaultDates    DateRange
	// SessionTTL closes sessions idle for longer than this on Sweep. Zero
	// keeps sessions until closed.
	SessionTTL      time.Duration
	// MaxSessions caps open sessions; opening one more closes the least
	// recently used. Zero means no cap.
	MaxSessions     int
	Now             func() time.Time
}

// Service owns the view sessions and the collaborators they share.
type Service struct {
	opts      Options
	gateway   *Gateway
	renderers Renderers

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	ctrl     *Controller
	lastSeen atomic.Int64
}

func (s *session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *session) idleSince() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	opts.Logger = normalizeLogger(opts.Logger)
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.ThemeStore == nil {
		opts.ThemeStore = NewInMemoryThemeStore(ThemeLight)
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.Charts == nil {
		opts.Charts = NewChartFactory()
	}
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = CategoryAcademic
	}
	if opts.DefaultDates == (DateRange{}) {
		opts.DefaultDates = DefaultDateRange
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		opts:      opts,
		gateway:   NewGateway(opts.Backend, opts.Telemetry, opts.Logger),
		renderers: NewRenderers(opts.Charts, opts.Logger),
		sessions:  make(map[string]*session),
	}
}

// Open returns the controller for sessionID, creating and loading a new
// session when the id is unknown. Ids that are not UUIDs are replaced.
func (s *Service) Open(ctx context.Context, sessionID string) (*Controller, error) {
	if ctrl, err := s.Session(sessionID); err == nil {
		return ctrl, nil
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		sessionID = uuid.NewString()
	}
	ctrl, created, err := s.create(sessionID)
	if err != nil {
		return nil, err
	}
	if created {
		if err := ctrl.Load(ctx); err != nil {
			return nil, err
		}
	}
	return ctrl, nil
}

// NewSession creates an empty session without fetching data.
func (s *Service) NewSession() (*Controller, error) {
	ctrl, _, err := s.create(uuid.NewString())
	return ctrl, err
}

// Session looks up an existing session and marks it as used.
func (s *Service) Session(sessionID string) (*Controller, error) {
	if sessionID == "" {
		return nil, errUnknownSession
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, errUnknownSession
	}
	entry.touch(s.opts.Now())
	return entry.ctrl, nil
}

// CloseSession drops a session. Unknown ids are ignored.
func (s *Service) CloseSession(sessionID string) {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if ok {
		s.closed(sessionID, "closed")
	}
}

// Sweep closes every session idle for longer than SessionTTL at now and
// returns how many were closed.
func (s *Service) Sweep(now time.Time) int {
	if s.opts.SessionTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-s.opts.SessionTTL)
	var expired []string
	s.mu.Lock()
	for id, entry := range s.sessions {
		if entry.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()
	for _, id := range expired {
		s.closed(id, "expired")
	}
	return len(expired)
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.opts.SessionTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.opts.Now()); n > 0 {
				s.opts.Logger.WithField("sessions", n).Debug("dashboard: idle sessions swept")
			}
		}
	}
}

// Sessions reports the number of open sessions.
func (s *Service) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Logger exposes the service logger to transports.
func (s *Service) Logger() logrus.FieldLogger { return s.opts.Logger }

func (s *Service) create(sessionID string) (*Controller, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.opts.Now()
	if entry, ok := s.sessions[sessionID]; ok {
		entry.touch(now)
		return entry.ctrl, false, nil
	}
	renderers := s.renderers
	ctrl, err := NewController(ControllerOptions{
		SessionID:       sessionID,
		Layout:          s.opts.Layout,
		Gateway:         s.gateway,
		Renderers:       &renderers,
		Validator:       s.opts.Validator,
		ThemeStore:      s.opts.ThemeStore,
		RefreshHook:     s.opts.RefreshHook,
		Telemetry:       s.opts.Telemetry,
		Logger:          s.opts.Logger,
		DefaultCategory: s.opts.DefaultCategory,
		DefaultDates:    s.opts.DefaultDates,
	})
	if err != nil {
		return nil, false, err
	}
	if s.opts.MaxSessions > 0 && len(s.sessions) >= s.opts.MaxSessions {
		s.evictOldestLocked()
	}
	entry := &session{ctrl: ctrl}
	entry.touch(now)
	s.sessions[sessionID] = entry
	s.opts.Logger.WithField("session", sessionID).Info("dashboard: session opened")
	s.recordTelemetry(context.Background(), "dashboard.session.opened", map[string]any{"session": sessionID})
	return ctrl, true, nil
}

// evictOldestLocked closes the least recently used session. Callers hold mu.
func (s *Service) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, entry := range s.sessions {
		if seen := entry.idleSince(); oldestID == "" || seen.Before(oldest) {
			oldestID, oldest = id, seen
		}
	}
	if oldestID == "" {
		return
	}
	delete(s.sessions, oldestID)
	s.closed(oldestID, "evicted")
}

func (s *Service) closed(sessionID, reason string) {
	s.opts.Logger.WithFields(logrus.Fields{"session": sessionID, "reason": reason}).Debug("dashboard: session closed")
	s.recordTelemetry(context.Background(), "dashboard.session.closed", map[string]any{"session": sessionID, "reason": reason})
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}
