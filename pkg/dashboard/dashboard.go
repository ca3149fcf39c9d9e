package dashboard

import (
	core "github.com/goliatone/go-rinsight/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Controller is one view session.
type Controller = core.Controller

// ViewSnapshot is the transport-facing copy of a view.
type ViewSnapshot = core.ViewSnapshot

// Backend is the scoring service contract.
type Backend = core.Backend

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}
