package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

// ToggleThemeInput flips the session theme.
type ToggleThemeInput struct {
	SessionID string `json:"session_id"`
}

// ToggleThemeCommand flips and persists the dark/light preference.
type ToggleThemeCommand struct {
	sessions  sessionOpener
	telemetry Telemetry
}

// NewToggleThemeCommand creates the command.
func NewToggleThemeCommand(sessions sessionOpener, telemetry Telemetry) *ToggleThemeCommand {
	return &ToggleThemeCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleThemeInput] = (*ToggleThemeCommand)(nil)

// Execute delegates to the session controller.
func (c *ToggleThemeCommand) Execute(ctx context.Context, msg ToggleThemeInput) error {
	ctrl, err := openSession(ctx, c.sessions, "theme", msg.SessionID)
	if err != nil {
		return err
	}
	theme, err := ctrl.ToggleTheme(ctx)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "rinsight.command.theme", map[string]any{
		"session": ctrl.SessionID(),
		"theme":   string(theme),
	})
	return nil
}
