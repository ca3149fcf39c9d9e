package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

// SelectTabInput activates a category tab.
type SelectTabInput struct {
	SessionID string `json:"session_id"`
	Category  string `json:"category"`
}

// SelectTabCommand switches the active category and renders its data.
type SelectTabCommand struct {
	sessions  sessionOpener
	telemetry Telemetry
}

// NewSelectTabCommand creates the command.
func NewSelectTabCommand(sessions sessionOpener, telemetry Telemetry) *SelectTabCommand {
	return &SelectTabCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SelectTabInput] = (*SelectTabCommand)(nil)

// Execute delegates to the session controller.
func (c *SelectTabCommand) Execute(ctx context.Context, msg SelectTabInput) error {
	ctrl, err := openSession(ctx, c.sessions, "select tab", msg.SessionID)
	if err != nil {
		return err
	}
	if err := ctrl.SelectTab(ctx, msg.Category); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "rinsight.command.select_tab", map[string]any{
		"session":  ctrl.SessionID(),
		"category": msg.Category,
	})
	return nil
}
