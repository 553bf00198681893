package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kavithaselva95/excel-connector/pkg/connector/catalog"
	"github.com/kavithaselva95/excel-connector/pkg/connector/output"
)

var (
	catalogOutput  string
	catalogPretty  bool
	maxProfileRows int
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog [dir]",
		Short: "Describe every workbook under a directory as catalog datasets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCatalog,
	}
	cmd.Flags().StringVarP(&catalogOutput, "output", "o", "", "Datasets file (default from config: output.json, - for stdout)")
	cmd.Flags().BoolVar(&catalogPretty, "pretty", true, "Pretty-print JSON output")
	cmd.Flags().IntVar(&sampleSize, "sample-size", 0, "Data rows sampled for type inference")
	cmd.Flags().IntVar(&maxProfileRows, "max-profile-rows", 0, "Rows profiled per field")
	return cmd
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Catalog.Directory = args[0]
	}
	if cmd.Flags().Changed("output") {
		cfg.Catalog.Output = catalogOutput
	}
	if cmd.Flags().Changed("max-profile-rows") {
		cfg.Catalog.MaxProfileRows = maxProfileRows
	}

	ctx, cancel := signalContext()
	defer cancel()

	datasets, err := catalog.Synchronize(ctx, cfg.Catalog.Directory, cfg.CatalogOptions(logger))
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	if cfg.Catalog.Output == "-" || cfg.Catalog.Output == "" {
		return output.EncodeDocument(os.Stdout, datasets, catalogPretty)
	}
	if err := output.WriteDocument(cfg.Catalog.Output, datasets, catalogPretty); err != nil {
		return err
	}
	logger.Info("wrote datasets", "count", len(datasets), "output", cfg.Catalog.Output)
	return nil
}
