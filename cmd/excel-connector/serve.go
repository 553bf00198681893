package main

import (
	"github.com/spf13/cobra"

	"github.com/kavithaselva95/excel-connector/internal/server"
)

var (
	serveAddr string
	serveDir  string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve conversion and catalog synchronization over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config: :8080)")
	cmd.Flags().StringVar(&serveDir, "dir", "", "Directory served by /api/datasets")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if cmd.Flags().Changed("dir") {
		cfg.Catalog.Directory = serveDir
	}

	ctx, cancel := signalContext()
	defer cancel()

	srv := server.New(server.Options{
		Addr:      cfg.Server.Addr,
		Directory: cfg.Catalog.Directory,
		Format:    cfg.OutputFormat(),
		Convert:   cfg.ConvertOptions(logger),
		Catalog:   cfg.CatalogOptions(logger),
		Logger:    logger,
	})
	return srv.ListenAndServe(ctx)
}
