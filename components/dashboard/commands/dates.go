package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

// ChangeDateRangeInput sets the date range of one category.
type ChangeDateRangeInput struct {
	SessionID string `json:"session_id"`
	Category  string `json:"category"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// ChangeDateRangeCommand validates a range and refetches the category.
type ChangeDateRangeCommand struct {
	sessions  sessionOpener
	telemetry Telemetry
}

// NewChangeDateRangeCommand creates the command.
func NewChangeDateRangeCommand(sessions sessionOpener, telemetry Telemetry) *ChangeDateRangeCommand {
	return &ChangeDateRangeCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ChangeDateRangeInput] = (*ChangeDateRangeCommand)(nil)

// Execute delegates to the session controller. Invalid ranges come back as
// *dashboard.ValidationError.
func (c *ChangeDateRangeCommand) Execute(ctx context.Context, msg ChangeDateRangeInput) error {
	ctrl, err := openSession(ctx, c.sessions, "date range", msg.SessionID)
	if err != nil {
		return err
	}
	if err := ctrl.ChangeDateRange(ctx, msg.Category, msg.Start, msg.End); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "rinsight.command.date_range", map[string]any{
		"session":  ctrl.SessionID(),
		"category": msg.Category,
		"start":    msg.Start,
		"end":      msg.End,
	})
	return nil
}
