package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type reportCmd struct {
	Category   string `required:"" help:"Category to report on (academic, financial, ...)."`
	Out        string `type:"path" help:"Output directory." default:"."`
	BackendURL string `name:"backend-url" env:"RINSIGHT_BACKEND_URL" help:"Scoring backend base URL; empty uses demo data."`
}

func (cmd *reportCmd) Run(root *cli, ctx context.Context) error {
	cfg, err := loadConfig(root.Config, overrides{BackendURL: cmd.BackendURL})
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	ctrl, err := loadCategory(ctx, a.service, cmd.Category, "", "")
	if err != nil {
		return err
	}
	report, err := ctrl.Report(cmd.Category)
	if err != nil {
		return err
	}
	path := filepath.Join(cmd.Out, report.Filename)
	if err := os.WriteFile(path, []byte(report.Content), 0o644); err != nil {
		return fmt.Errorf("rinsight: write report: %w", err)
	}
	fmt.Fprintf(os.Stdout, "✓ Wrote %s\n", path)
	return nil
}
