package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
	"github.com/goliatone/go-rinsight/components/dashboard/fiberroutes"
	"github.com/goliatone/go-rinsight/components/dashboard/gorouter"
	"github.com/goliatone/go-rinsight/components/dashboard/httpapi"
)

const shutdownTimeout = 5 * time.Second

type serveCmd struct {
	Addr       string `help:"Listen address (overrides server.addr)."`
	BasePath   string `name:"base-path" help:"Mount path (overrides server.base_path)."`
	Engine     string `help:"HTTP engine: router, fiber or http (overrides server.engine)."`
	BackendURL string `name:"backend-url" env:"RINSIGHT_BACKEND_URL" help:"Scoring backend base URL; empty serves demo data."`
	LogLevel   string `name:"log-level" help:"Log level (overrides log.level)."`
}

func (cmd *serveCmd) Run(root *cli, ctx context.Context) error {
	cfg, err := loadConfig(root.Config, overrides{
		Addr:       cmd.Addr,
		BasePath:   cmd.BasePath,
		Engine:     cmd.Engine,
		BackendURL: cmd.BackendURL,
		LogLevel:   cmd.LogLevel,
	})
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("rinsight: template renderer: %w", err)
	}
	api := httpapi.NewHandlers(a.service, a.telemetry, a.logger)
	base := strings.TrimRight(cfg.Server.BasePath, "/")

	a.logger.WithFields(map[string]any{
		"addr":   cfg.Server.Addr,
		"base":   base,
		"engine": cfg.Server.Engine,
	}).Info("rinsight: dashboard ready")

	go a.service.RunJanitor(ctx, cfg.Dashboard.SessionSweep)

	switch cfg.Server.Engine {
	case "http":
		return serveHTTP(ctx, a, newMux(api, renderer, a.broadcast, base))
	case "router":
		server := router.NewFiberAdapter()
		if err := gorouter.Register(gorouter.Config[*fiber.App]{
			Router:    server.Router(),
			API:       api,
			Renderer:  renderer,
			Broadcast: a.broadcast,
			BasePath:  base,
		}); err != nil {
			return err
		}
		return serveRouter(ctx, a, server)
	}
	server := fiber.New(fiber.Config{DisableStartupMessage: true})
	if err := fiberroutes.Register(fiberroutes.Config{
		App:       server,
		Service:   a.service,
		API:       api,
		Renderer:  renderer,
		Broadcast: a.broadcast,
		BasePath:  base,
		Logger:    a.logger,
	}); err != nil {
		return err
	}
	return serveFiber(ctx, a, server)
}

// newMux mounts the page, API and event streams on a net/http mux.
func newMux(api *httpapi.Handlers, renderer dashboard.Renderer, hook *dashboard.BroadcastHook, base string) *http.ServeMux {
	mux := http.NewServeMux()
	api.Mount(mux, base)
	mux.Handle("GET "+base+"/{$}", api.PageHandler(renderer, base))
	if base != "" {
		mux.Handle("GET "+base, api.PageHandler(renderer, base))
	}
	mux.HandleFunc("GET "+base+"/ws", hook.ServeWebSocket)
	mux.HandleFunc("GET "+base+"/events", hook.ServeSSE)
	return mux
}

func serveHTTP(ctx context.Context, a *app, handler http.Handler) error {
	srv := &http.Server{Addr: a.cfg.Server.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.logger.Info("rinsight: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// routerServer is the part of the go-router adapter serve drives.
type routerServer interface {
	Serve(address string) error
	Shutdown(ctx context.Context) error
}

func serveRouter(ctx context.Context, a *app, server routerServer) error {
	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(a.cfg.Server.Addr) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.Info("rinsight: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func serveFiber(ctx context.Context, a *app, server *fiber.App) error {
	errCh := make(chan error, 1)
	go func() { errCh <- server.Listen(a.cfg.Server.Addr) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.Info("rinsight: shutting down")
		return server.ShutdownWithTimeout(shutdownTimeout)
	}
}
