package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
)

// ReportInput selects the category report of a session.
type ReportInput struct {
	SessionID string `json:"session_id"`
	Category  string `json:"category"`
}

// ReportQuery builds a plain-text report from the rendered view.
type ReportQuery struct {
	sessions sessionOpener
}

// NewReportQuery builds the query.
func NewReportQuery(sessions sessionOpener) *ReportQuery {
	return &ReportQuery{sessions: sessions}
}

var _ gocommand.Querier[ReportInput, dashboard.Report] = (*ReportQuery)(nil)

// Query resolves the report. It never fetches from the backend beyond the
// initial load of a new session.
func (q *ReportQuery) Query(ctx context.Context, input ReportInput) (dashboard.Report, error) {
	ctrl, err := q.sessions.Open(ctx, input.SessionID)
	if err != nil {
		return dashboard.Report{}, err
	}
	return ctrl.Report(input.Category)
}
