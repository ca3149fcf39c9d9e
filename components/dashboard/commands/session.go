package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
)

// sessionOpener resolves the view session a command acts on.
type sessionOpener interface {
	Open(ctx context.Context, sessionID string) (*dashboard.Controller, error)
}

func openSession(ctx context.Context, sessions sessionOpener, name, sessionID string) (*dashboard.Controller, error) {
	if sessions == nil {
		return nil, errors.New(name + " command requires service")
	}
	return sessions.Open(ctx, sessionID)
}
