package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
	"github.com/goliatone/go-rinsight/pkg/config"
	dashboardpkg "github.com/goliatone/go-rinsight/pkg/dashboard"
	"github.com/goliatone/go-rinsight/pkg/logger"
	"github.com/goliatone/go-rinsight/pkg/rinsight"
)

// overrides carries CLI flags that win over the config file.
type overrides struct {
	Addr       string
	BasePath   string
	Engine     string
	BackendURL string
	LogLevel   string
}

type app struct {
	cfg       config.Config
	logger    *logrus.Logger
	telemetry dashboard.LogTelemetry
	broadcast *dashboard.BroadcastHook
	service   *dashboardpkg.Service
}

func loadConfig(path string, o overrides) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if o.Addr != "" {
		cfg.Server.Addr = o.Addr
	}
	if o.BasePath != "" {
		cfg.Server.BasePath = o.BasePath
	}
	if o.Engine != "" {
		cfg.Server.Engine = o.Engine
	}
	if o.BackendURL != "" {
		cfg.Backend.BaseURL = o.BackendURL
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	return cfg, cfg.Validate()
}

func newApp(cfg config.Config) (*app, error) {
	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, err
	}
	backend, err := newBackend(cfg.Backend, log)
	if err != nil {
		return nil, err
	}

	chartOpts := []dashboard.ChartFactoryOption{
		dashboard.WithChartCache(dashboard.NewChartCache(cfg.Dashboard.ChartCacheTTL)),
	}
	if cfg.Dashboard.ChartAssetsHost != "" {
		chartOpts = append(chartOpts, dashboard.WithChartAssetsHost(cfg.Dashboard.ChartAssetsHost))
	}

	category, _ := dashboard.ParseCategory(cfg.Dashboard.DefaultCategory)
	telemetry := dashboard.LogTelemetry{Logger: log, Level: logrus.DebugLevel}
	broadcast := dashboard.NewBroadcastHook()
	service := dashboardpkg.NewService(dashboardpkg.Options{
		Backend:         backend,
		Charts:          dashboard.NewChartFactory(chartOpts...),
		ThemeStore:      dashboard.NewInMemoryThemeStore(dashboard.ParseTheme(cfg.Dashboard.DefaultTheme)),
		RefreshHook:     broadcast,
		Telemetry:       telemetry,
		Logger:          log,
		DefaultCategory: category,
		DefaultDates:    cfg.DateRange(),
		SessionTTL:      cfg.Dashboard.SessionTTL,
		MaxSessions:     cfg.Dashboard.MaxSessions,
	})
	broadcast.OnSessionIdle(service.CloseSession)
	return &app{
		cfg:       cfg,
		logger:    log,
		telemetry: telemetry,
		broadcast: broadcast,
		service:   service,
	}, nil
}

func newBackend(cfg config.BackendConfig, log logrus.FieldLogger) (dashboard.Backend, error) {
	if cfg.BaseURL == "" {
		log.Warn("rinsight: no backend url configured, serving demo data")
		return rinsight.NewMockClient(rinsight.DemoData()), nil
	}
	var limiter *rate.Limiter
	if cfg.RPM > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RPM)/60.0), max(cfg.Burst, 1))
	}
	client, err := rinsight.NewHTTPClient(rinsight.HTTPConfig{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Limiter: limiter,
	})
	if err != nil {
		return nil, fmt.Errorf("rinsight: backend client: %w", err)
	}
	log.WithField("url", cfg.BaseURL).Info("rinsight: using remote backend")
	return client, nil
}
