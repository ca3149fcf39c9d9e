package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type cli struct {
	Config string `type:"path" help:"Path to a YAML config file." env:"RINSIGHT_CONFIG"`

	Serve    serveCmd    `cmd:"" default:"1" help:"Serve the stress dashboard over HTTP."`
	Snapshot snapshotCmd `cmd:"" help:"Load one category and print the view snapshot as JSON."`
	Report   reportCmd   `cmd:"" help:"Load one category and write its plain-text report."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var root cli
	kctx := kong.Parse(&root,
		kong.Name("rinsight"),
		kong.Description("rInsight student stress dashboard."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run(&root)
	kctx.FatalIfErrorf(err)
}
