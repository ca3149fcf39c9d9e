package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
)

// RetryInput re-runs a fetch. An empty Category retries the active tab.
type RetryInput struct {
	SessionID string `json:"session_id"`
	Category  string `json:"category,omitempty"`
}

// RetryCommand re-invokes the fetch/render path without changing tabs.
type RetryCommand struct {
	sessions  sessionOpener
	telemetry Telemetry
}

// NewRetryCommand creates the command.
func NewRetryCommand(sessions sessionOpener, telemetry Telemetry) *RetryCommand {
	return &RetryCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RetryInput] = (*RetryCommand)(nil)

// Execute refreshes the requested or active category.
func (c *RetryCommand) Execute(ctx context.Context, msg RetryInput) error {
	ctrl, err := openSession(ctx, c.sessions, "retry", msg.SessionID)
	if err != nil {
		return err
	}
	category := ctrl.Active()
	if msg.Category != "" {
		parsed, ok := dashboard.ParseCategory(msg.Category)
		if !ok {
			return &dashboard.ValidationError{Field: "category", Message: "unknown category " + msg.Category}
		}
		category = parsed
	}
	if err := ctrl.Refresh(ctx, category); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "rinsight.command.retry", map[string]any{
		"session":  ctrl.SessionID(),
		"category": string(category),
	})
	return nil
}
