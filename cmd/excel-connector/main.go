// Package main provides the CLI entry point for excel-connector.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kavithaselva95/excel-connector/internal/config"
	"github.com/kavithaselva95/excel-connector/pkg/connector"
	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
	"github.com/kavithaselva95/excel-connector/pkg/connector/output"
)

var (
	configPath string
	logLevel   string

	outputPath string
	pretty     bool
	format     string
	sheetsDir  string
	schemaDir  string
	sheets     []string
	sampleSize int
	workers    int
	timeout    string
	formulas   bool
	sqlDriver  string
	sqlDSN     string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "excel-connector [input.xlsx|dir]",
		Short: "Convert spreadsheet sheets into normalized JSON records",
		Long: `excel-connector reads the sheets of xlsx and xls workbooks, infers a column
schema from each header row and emits one JSON record per data row.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Config file (TOML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout); a directory for directory input")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.Flags().StringVar(&format, "format", "", "Output format: json, jsonl")
	rootCmd.Flags().StringVar(&sheetsDir, "sheets-dir", "", "Directory for per-sheet output files")
	rootCmd.Flags().StringVar(&schemaDir, "schema-dir", "", "Directory for per-sheet JSON Schema files")
	rootCmd.Flags().StringArrayVar(&sheets, "sheet", nil, "Sheet to convert (repeatable, default: all)")
	rootCmd.Flags().IntVar(&sampleSize, "sample-size", 0, "Data rows sampled for type inference")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "Sheets converted concurrently")
	rootCmd.Flags().StringVar(&timeout, "timeout", "", "Wall-clock limit for the run, e.g. 30s")
	rootCmd.Flags().BoolVar(&formulas, "formulas", false, "Load formula text alongside values")
	rootCmd.Flags().StringVar(&sqlDriver, "sql-driver", "", "SQL sink driver: sqlite3, postgres")
	rootCmd.Flags().StringVar(&sqlDSN, "sql-dsn", "", "SQL sink data source; enables the SQL sink")

	rootCmd.AddCommand(newCatalogCmd(), newServeCmd())
	return rootCmd
}

// loadConfig reads the config file and applies flags set on the command
// line over it.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("format") {
		cfg.Convert.Format = format
	}
	if flags.Changed("pretty") {
		cfg.Convert.Pretty = pretty
	}
	if flags.Changed("sheet") {
		cfg.Convert.Sheets = sheets
	}
	if flags.Changed("sample-size") {
		cfg.Convert.SampleSize = sampleSize
	}
	if flags.Changed("workers") {
		cfg.Convert.Workers = workers
	}
	if flags.Changed("timeout") {
		cfg.Convert.Timeout = timeout
	}
	if flags.Changed("formulas") {
		cfg.Convert.Formulas = formulas
	}
	if flags.Changed("sql-driver") {
		cfg.SQL.Driver = sqlDriver
	}
	if flags.Changed("sql-dsn") {
		cfg.SQL.DSN = sqlDSN
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, _ := cfg.LogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	info, err := os.Stat(inputPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	opts := cfg.ConvertOptions(logger)
	outFormat := cfg.OutputFormat()

	var wbs []*models.WorkbookData
	if info.IsDir() {
		wbs, err = connector.ConvertDir(ctx, inputPath, opts)
	} else {
		var wb *models.WorkbookData
		wb, err = connector.Convert(ctx, inputPath, opts)
		if wb != nil {
			wbs = append(wbs, wb)
		}
	}
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := writeOutputs(wbs, info.IsDir(), outFormat, cfg.Convert.Pretty); err != nil {
		return err
	}
	if cfg.SQL.DSN != "" {
		if err := writeSQL(ctx, cfg, wbs, logger); err != nil {
			return err
		}
	}

	summary := connector.Summarize(wbs...)
	logger.Info("done", "summary", summary)
	if err := summary.Err(); err != nil {
		return fmt.Errorf("%d sheet(s) failed: %w", summary.FailedSheets, err)
	}
	return nil
}

func writeOutputs(wbs []*models.WorkbookData, dirInput bool, outFormat output.Format, pretty bool) error {
	for _, wb := range wbs {
		stem := strings.TrimSuffix(wb.BookName, filepath.Ext(wb.BookName))

		switch {
		case outputPath != "" && dirInput:
			path := filepath.Join(outputPath, stem+outFormat.Ext())
			if err := output.WriteFile(path, wb, outFormat, pretty); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		case outputPath != "":
			if err := output.WriteFile(outputPath, wb, outFormat, pretty); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		case sheetsDir == "" && schemaDir == "":
			if err := output.WriteWorkbook(os.Stdout, wb, outFormat, pretty); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}

		if sheetsDir != "" {
			dir := sheetsDir
			if dirInput {
				dir = filepath.Join(sheetsDir, stem)
			}
			if _, err := output.WriteSheetFiles(dir, wb, outFormat, pretty); err != nil {
				return fmt.Errorf("failed to write sheet files: %w", err)
			}
		}
		if schemaDir != "" {
			dir := schemaDir
			if dirInput {
				dir = filepath.Join(schemaDir, stem)
			}
			if _, err := output.WriteSchemaFiles(dir, wb); err != nil {
				return fmt.Errorf("failed to write schema files: %w", err)
			}
		}
	}
	return nil
}

func writeSQL(ctx context.Context, cfg *config.Config, wbs []*models.WorkbookData, logger *slog.Logger) error {
	sink, err := output.OpenSQL(ctx, cfg.SQL.Driver, cfg.SQL.DSN)
	if err != nil {
		return fmt.Errorf("failed to open sql sink: %w", err)
	}
	defer sink.Close()
	sink.TablePrefix = cfg.SQL.TablePrefix

	for _, wb := range wbs {
		if err := sink.WriteWorkbook(ctx, wb); err != nil {
			return fmt.Errorf("failed to write sql tables: %w", err)
		}
		logger.Info("wrote sql tables", "file", wb.BookName, "driver", cfg.SQL.Driver)
	}
	return nil
}
