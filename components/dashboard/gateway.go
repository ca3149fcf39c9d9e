package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Notifier is the loading/banner surface a gateway call reports to.
type Notifier interface {
	Loading(ctx context.Context, on bool)
	Error(ctx context.Context, message string)
	Info(ctx context.Context, message string)
	Clear(ctx context.Context)
}

// FetchOptions tunes a single gateway call.
type FetchOptions struct {
	// KeepBanner leaves the current banner in place instead of clearing it
	// before the call.
	KeepBanner bool
}

// Gateway wraps a Backend with the loading bracket, banner signalling and
// graceful degradation to empty values.
type Gateway struct {
	backend   Backend
	telemetry Telemetry
	logger    logrus.FieldLogger
}

// NewGateway builds a gateway. A nil backend makes every call fail softly.
func NewGateway(backend Backend, telemetry Telemetry, logger logrus.FieldLogger) *Gateway {
	return &Gateway{
		backend:   backend,
		telemetry: normalizeTelemetry(telemetry),
		logger:    normalizeLogger(logger),
	}
}

// Scores fetches stress scores for a date range. On failure it returns an
// empty AggregateScores and false.
func (g *Gateway) Scores(ctx context.Context, n Notifier, dates DateRange, opts FetchOptions) (AggregateScores, bool) {
	var out AggregateScores
	err := g.call(ctx, n, "stress_scores", "Failed to load stress scores", opts, func(ctx context.Context) error {
		scores, err := g.backend.FetchScores(ctx, dates)
		if err != nil {
			return err
		}
		out = scores
		return nil
	})
	if err != nil {
		return AggregateScores{}, false
	}
	return out, true
}

// Keywords fetches keyword statistics. On failure it returns nil and false.
func (g *Gateway) Keywords(ctx context.Context, n Notifier, opts FetchOptions) ([]Keyword, bool) {
	var out []Keyword
	err := g.call(ctx, n, "keywords", "Failed to load keywords", opts, func(ctx context.Context) error {
		keywords, err := g.backend.FetchKeywords(ctx)
		if err != nil {
			return err
		}
		out = keywords
		return nil
	})
	if err != nil {
		return nil, false
	}
	return out, true
}

// Recommendations fetches recommendations. On failure it returns nil and false.
func (g *Gateway) Recommendations(ctx context.Context, n Notifier, opts FetchOptions) ([]Recommendation, bool) {
	var out []Recommendation
	err := g.call(ctx, n, "recommendations", "Failed to load recommendations", opts, func(ctx context.Context) error {
		recs, err := g.backend.FetchRecommendations(ctx)
		if err != nil {
			return err
		}
		out = recs
		return nil
	})
	if err != nil {
		return nil, false
	}
	return out, true
}

// Reload asks the backend to reload its data source. The result banner is
// left to the caller; only transport and decode failures are shown here.
func (g *Gateway) Reload(ctx context.Context, n Notifier) (ReloadResult, bool) {
	var out ReloadResult
	err := g.call(ctx, n, "reload_source", "Failed to reload source", FetchOptions{}, func(ctx context.Context) error {
		result, err := g.backend.ReloadSource(ctx)
		if err != nil {
			return err
		}
		out = result
		return nil
	})
	if err != nil {
		return ReloadResult{}, false
	}
	return out, true
}

func (g *Gateway) call(ctx context.Context, n Notifier, op, failure string, opts FetchOptions, fn func(context.Context) error) error {
	n.Loading(ctx, true)
	defer n.Loading(ctx, false)
	if !opts.KeepBanner {
		n.Clear(ctx)
	}

	started := time.Now()
	var err error
	if g.backend == nil {
		err = errMissingBackend
	} else {
		err = fn(ctx)
	}
	payload := map[string]any{
		"operation":   op,
		"duration_ms": time.Since(started).Milliseconds(),
	}
	if err != nil {
		payload["error"] = err.Error()
		g.telemetry.Record(ctx, "dashboard.gateway.failed", payload)
		g.logger.WithError(err).WithField("operation", op).Warn("dashboard: backend call failed")
		n.Error(ctx, fmt.Sprintf("%s: %v", failure, err))
		return err
	}
	g.telemetry.Record(ctx, "dashboard.gateway.fetched", payload)
	return nil
}
