package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tsawler/treetab/internal/cli"
	"github.com/tsawler/treetab/internal/config"
	"github.com/tsawler/treetab/internal/ctxlog"
)

// main is the entrypoint for the treetab command.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW, logW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := ctxlog.New(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	return extract(ctx, outW, cfg)
}

// extract runs the configured extraction and writes the result to w.
func extract(ctx context.Context, w io.Writer, cfg *config.Config) error {
	logger := ctxlog.FromContext(ctx)
	logger.Info("extracting", "input", cfg.Input, "path", cfg.Path, "depth", cfg.Depth, "output", cfg.Output)

	ext := cfg.Extractor(logger)

	var out string
	switch cfg.Output {
	case config.OutputJSON:
		data, err := ext.JSON()
		if err != nil {
			return err
		}
		out = string(data) + "\n"
	default:
		table, err := ext.Table()
		if err != nil {
			return err
		}
		switch cfg.Output {
		case config.OutputMarkdown:
			out = table.ToMarkdown()
		case config.OutputText:
			out = table.GetText()
		default:
			out = table.ToCSV()
		}
		logger.Info("extracted", "rows", table.RowCount(), "columns", table.ColCount())
	}

	_, err := io.WriteString(w, out)
	return err
}
