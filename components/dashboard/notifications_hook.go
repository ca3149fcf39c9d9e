package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// Surface owns the loading indicator and the shared banner of one view.
// Callers hold the view lock while calling it.
type Surface struct {
	view      *View
	sessionID string
	hook      RefreshHook
	logger    logrus.FieldLogger
	banner    *Banner
	loading   int
}

// NewSurface binds a notification surface to a view.
func NewSurface(view *View, sessionID string, hook RefreshHook, logger logrus.FieldLogger) *Surface {
	if hook == nil {
		hook = noopRefreshHook{}
	}
	return &Surface{
		view:      view,
		sessionID: sessionID,
		hook:      hook,
		logger:    normalizeLogger(logger),
	}
}

// Loading shows or hides the indicator. Nested brackets keep it visible
// until the outermost one releases.
func (s *Surface) Loading(ctx context.Context, on bool) {
	if on {
		s.loading++
	} else if s.loading > 0 {
		s.loading--
	}
	visible := s.loading > 0
	if el, ok := s.lookup(SlotLoading); ok {
		el.Hidden = !visible
	}
	s.publish(ctx, "loading")
}

// Error shows the banner in the error style.
func (s *Surface) Error(ctx context.Context, message string) {
	s.show(ctx, Banner{Kind: BannerError, Message: message})
}

// Info shows the banner in the info style.
func (s *Surface) Info(ctx context.Context, message string) {
	s.show(ctx, Banner{Kind: BannerInfo, Message: message})
}

// Clear hides the banner.
func (s *Surface) Clear(ctx context.Context) {
	s.banner = nil
	if el, ok := s.lookup(SlotErrorAlert); ok {
		el.Hidden = true
		el.Class = ""
	}
	if el, ok := s.lookup(SlotErrorMessage); ok {
		el.Text = ""
	}
	s.publish(ctx, "banner_cleared")
}

// Banner returns the banner currently shown, if any.
func (s *Surface) Banner() (Banner, bool) {
	if s.banner == nil {
		return Banner{}, false
	}
	return *s.banner, true
}

// IsLoading reports whether a loading bracket is open.
func (s *Surface) IsLoading() bool {
	return s.loading > 0
}

// Rendered announces that a category's slots changed.
func (s *Surface) Rendered(ctx context.Context, category Category, reason string) {
	s.publishFor(ctx, category, reason)
}

func (s *Surface) show(ctx context.Context, banner Banner) {
	s.banner = &banner
	if el, ok := s.lookup(SlotErrorAlert); ok {
		el.Hidden = false
		el.Class = BannerClass(banner.Kind)
		el.Text = banner.Message
	}
	if el, ok := s.lookup(SlotErrorMessage); ok {
		el.Text = banner.Message
	}
	s.publish(ctx, "banner")
}

func (s *Surface) lookup(id string) (*Element, bool) {
	el, ok := s.view.Slot(id)
	if !ok {
		s.logger.WithField("slot", id).Debug((&MissingElementError{Slot: id}).Error())
	}
	return el, ok
}

func (s *Surface) publish(ctx context.Context, reason string) {
	s.publishFor(ctx, "", reason)
}

func (s *Surface) publishFor(ctx context.Context, category Category, reason string) {
	event := ViewEvent{
		SessionID: s.sessionID,
		Category:  category,
		Reason:    reason,
		Loading:   s.loading > 0,
		At:        time.Now().UTC(),
	}
	if s.banner != nil {
		banner := *s.banner
		event.Banner = &banner
	}
	if err := s.hook.ViewUpdated(ctx, event); err != nil {
		s.logger.WithError(err).WithField("reason", reason).Warn("dashboard: refresh hook failed")
	}
}

type noopRefreshHook struct{}

func (noopRefreshHook) ViewUpdated(context.Context, ViewEvent) error { return nil }

// NotificationsClient is the minimal publisher an external notifications
// service needs to expose.
type NotificationsClient interface {
	PublishDashboardEvent(ctx context.Context, event ViewEvent) error
}

// NotificationsHook forwards view events to an external notifications client.
type NotificationsHook struct {
	Client NotificationsClient
}

// ViewUpdated publishes events to the configured notifications client.
func (h *NotificationsHook) ViewUpdated(ctx context.Context, event ViewEvent) error {
	if h == nil || h.Client == nil {
		return nil
	}
	return h.Client.PublishDashboardEvent(ctx, event)
}

// MultiHook fans an event out to several hooks.
type MultiHook []RefreshHook

// ViewUpdated calls every hook and joins their errors.
func (m MultiHook) ViewUpdated(ctx context.Context, event ViewEvent) error {
	var errs []error
	for _, hook := range m {
		if hook == nil {
			continue
		}
		if err := hook.ViewUpdated(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
