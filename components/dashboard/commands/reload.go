package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

// ReloadSourceInput asks the backend to reload its data source.
type ReloadSourceInput struct {
	SessionID string `json:"session_id"`
}

// ReloadSourceCommand reloads the backend source and re-renders the active tab.
type ReloadSourceCommand struct {
	sessions  sessionOpener
	telemetry Telemetry
}

// NewReloadSourceCommand creates the command.
func NewReloadSourceCommand(sessions sessionOpener, telemetry Telemetry) *ReloadSourceCommand {
	return &ReloadSourceCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReloadSourceInput] = (*ReloadSourceCommand)(nil)

// Execute delegates to the session controller. A backend "error" status is
// shown on the banner and is not an Execute error.
func (c *ReloadSourceCommand) Execute(ctx context.Context, msg ReloadSourceInput) error {
	ctrl, err := openSession(ctx, c.sessions, "reload", msg.SessionID)
	if err != nil {
		return err
	}
	result, err := ctrl.ReloadSource(ctx)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "rinsight.command.reload", map[string]any{
		"session": ctrl.SessionID(),
		"status":  result.Status,
	})
	return nil
}
