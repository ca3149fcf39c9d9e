package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
)

type snapshotCmd struct {
	Category   string `default:"all" help:"Tab to load before taking the snapshot."`
	Start      string `help:"Start date (YYYY-MM-DD)."`
	End        string `help:"End date (YYYY-MM-DD)."`
	BackendURL string `name:"backend-url" env:"RINSIGHT_BACKEND_URL" help:"Scoring backend base URL; empty uses demo data."`
}

func (cmd *snapshotCmd) Run(root *cli, ctx context.Context) error {
	cfg, err := loadConfig(root.Config, overrides{BackendURL: cmd.BackendURL})
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	ctrl, err := loadCategory(ctx, a.service, cmd.Category, cmd.Start, cmd.End)
	if err != nil {
		return err
	}
	return writeSnapshot(os.Stdout, ctrl.Snapshot(ctx))
}

// loadCategory opens a throwaway session showing category, optionally over
// a custom date range.
func loadCategory(ctx context.Context, service *dashboard.Service, category, start, end string) (*dashboard.Controller, error) {
	ctrl, err := service.NewSession()
	if err != nil {
		return nil, err
	}
	if start != "" || end != "" {
		if err := ctrl.ChangeDateRange(ctx, category, start, end); err != nil {
			return nil, err
		}
	}
	if err := ctrl.SelectTab(ctx, category); err != nil {
		return nil, err
	}
	if banner, ok := ctrl.Banner(); ok && banner.Kind == dashboard.BannerError {
		return nil, fmt.Errorf("rinsight: %s", banner.Message)
	}
	return ctrl, nil
}

func writeSnapshot(w io.Writer, snapshot dashboard.ViewSnapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}
