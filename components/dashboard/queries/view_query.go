package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
)

type sessionOpener interface {
	Open(ctx context.Context, sessionID string) (*dashboard.Controller, error)
}

// ViewInput identifies the session whose view is requested.
type ViewInput struct {
	SessionID string `json:"session_id"`
}

// ViewQuery returns a snapshot of a session view.
type ViewQuery struct {
	sessions sessionOpener
}

// NewViewQuery builds the query.
func NewViewQuery(sessions sessionOpener) *ViewQuery {
	return &ViewQuery{sessions: sessions}
}

var _ gocommand.Querier[ViewInput, dashboard.ViewSnapshot] = (*ViewQuery)(nil)

// Query opens the session, loading it on first use, and snapshots its view.
func (q *ViewQuery) Query(ctx context.Context, input ViewInput) (dashboard.ViewSnapshot, error) {
	ctrl, err := q.sessions.Open(ctx, input.SessionID)
	if err != nil {
		return dashboard.ViewSnapshot{}, err
	}
	return ctrl.Snapshot(ctx), nil
}
