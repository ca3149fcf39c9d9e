package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

// SearchKeywordsInput sets the keyword text filter.
type SearchKeywordsInput struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// FilterKeywordsInput sets the keyword category filter ("all" clears it).
type FilterKeywordsInput struct {
	SessionID string `json:"session_id"`
	Category  string `json:"category"`
}

// SortKeywordsInput sorts the keyword table by frequency.
type SortKeywordsInput struct {
	SessionID string `json:"session_id"`
}

// SearchKeywordsCommand applies the text filter.
type SearchKeywordsCommand struct {
	sessions  sessionOpener
	telemetry Telemetry
}

// NewSearchKeywordsCommand creates the command.
func NewSearchKeywordsCommand(sessions sessionOpener, telemetry Telemetry) *SearchKeywordsCommand {
	return &SearchKeywordsCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SearchKeywordsInput] = (*SearchKeywordsCommand)(nil)

// Execute re-renders the keyword table with the new text filter.
func (c *SearchKeywordsCommand) Execute(ctx context.Context, msg SearchKeywordsInput) error {
	ctrl, err := openSession(ctx, c.sessions, "keyword search", msg.SessionID)
	if err != nil {
		return err
	}
	rows := ctrl.SearchKeywords(ctx, msg.Text)
	c.telemetry.Record(ctx, "rinsight.command.keyword_search", map[string]any{
		"session": ctrl.SessionID(),
		"rows":    len(rows),
	})
	return nil
}

// FilterKeywordsCommand applies the category filter.
type FilterKeywordsCommand struct {
	sessions  sessionOpener
	telemetry Telemetry
}

// NewFilterKeywordsCommand creates the command.
func NewFilterKeywordsCommand(sessions sessionOpener, telemetry Telemetry) *FilterKeywordsCommand {
	return &FilterKeywordsCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[FilterKeywordsInput] = (*FilterKeywordsCommand)(nil)

// Execute re-renders the keyword table with the new category filter.
func (c *FilterKeywordsCommand) Execute(ctx context.Context, msg FilterKeywordsInput) error {
	ctrl, err := openSession(ctx, c.sessions, "keyword filter", msg.SessionID)
	if err != nil {
		return err
	}
	rows, err := ctrl.FilterKeywords(ctx, msg.Category)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "rinsight.command.keyword_filter", map[string]any{
		"session":  ctrl.SessionID(),
		"category": msg.Category,
		"rows":     len(rows),
	})
	return nil
}

// SortKeywordsCommand sorts the current keyword rows by frequency.
type SortKeywordsCommand struct {
	sessions  sessionOpener
	telemetry Telemetry
}

// NewSortKeywordsCommand creates the command.
func NewSortKeywordsCommand(sessions sessionOpener, telemetry Telemetry) *SortKeywordsCommand {
	return &SortKeywordsCommand{sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SortKeywordsInput] = (*SortKeywordsCommand)(nil)

// Execute sorts and re-renders the keyword table.
func (c *SortKeywordsCommand) Execute(ctx context.Context, msg SortKeywordsInput) error {
	ctrl, err := openSession(ctx, c.sessions, "keyword sort", msg.SessionID)
	if err != nil {
		return err
	}
	rows := ctrl.SortKeywordsByFrequency(ctx)
	c.telemetry.Record(ctx, "rinsight.command.keyword_sort", map[string]any{
		"session": ctrl.SessionID(),
		"rows":    len(rows),
	})
	return nil
}
