package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/tsawler/treetab/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Values from the -config file are applied first; flags given explicitly
// override them.
func Parse(args []string, output io.Writer) (*config.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("treetab", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
treetab - Flatten XML, HTML and office documents into tables.

Usage:
  treetab [options] [INPUT]

Arguments:
  INPUT
    Path to an XML, HTML, xlsx, docx, pptx, odt, ods or epub file.

Options:
`)
		flagSet.PrintDefaults()
	}

	defaults := config.Default()
	configFlag := flagSet.String("config", "", "Path to a YAML config file.")
	pathFlag := flagSet.String("path", defaults.Path, "Path expression selecting the nodes that become rows.")
	pFlag := flagSet.String("p", "", "Path expression (shorthand).")
	depthFlag := flagSet.Int("depth", defaults.Depth, "Levels below each selected node expanded into columns.")
	shortenFlag := flagSet.Int("shorten", defaults.Shorten, "Leading segments stripped from column names.")
	sepFlag := flagSet.String("separator", defaults.Separator, "Separator used when shortening column names.")
	formatFlag := flagSet.String("format", "", "Input format. Empty detects it from the file.")
	partFlag := flagSet.String("part", "", "XML part of a ZIP package to read.")
	sheetFlag := flagSet.String("sheet", "", "Worksheet of a spreadsheet to read.")
	encodingFlag := flagSet.String("encoding", "", "Force the input character set, e.g. windows-1252.")
	trimFlag := flagSet.Bool("trim", false, "Trim whitespace around text values.")
	skipNullFlag := flagSet.Bool("skip-null", false, "Leave missing values out of JSON documents.")
	outputFlag := flagSet.String("output", defaults.Output, "Output format. Options: 'csv', 'markdown', 'json', 'text'.")
	oFlag := flagSet.String("o", "", "Output format (shorthand).")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	cfg := &defaults
	if *configFlag != "" {
		loaded, err := config.LoadFile(*configFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		cfg = loaded
		slog.Debug("Config file loaded.", "file", *configFlag)
	}

	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["path"] {
		cfg.Path = *pathFlag
	}
	if set["p"] {
		cfg.Path = *pFlag
	}
	if set["depth"] {
		cfg.Depth = *depthFlag
	}
	if set["shorten"] {
		cfg.Shorten = *shortenFlag
	}
	if set["separator"] {
		cfg.Separator = *sepFlag
	}
	if set["format"] {
		cfg.Format = *formatFlag
	}
	if set["part"] {
		cfg.Part = *partFlag
	}
	if set["sheet"] {
		cfg.Sheet = *sheetFlag
	}
	if set["encoding"] {
		cfg.Encoding = *encodingFlag
	}
	if set["trim"] {
		cfg.TrimSpace = *trimFlag
	}
	if set["skip-null"] {
		cfg.SkipNull = *skipNullFlag
	}
	if set["output"] {
		cfg.Output = *outputFlag
	}
	if set["o"] {
		cfg.Output = *oFlag
	}
	if set["log-format"] {
		cfg.LogFormat = *logFormatFlag
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevelFlag
	}
	if flagSet.NArg() > 0 {
		cfg.Input = flagSet.Arg(0)
	}
	slog.Debug("Input determined.", "input", cfg.Input)

	if cfg.Input == "" {
		slog.Debug("No input provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}
