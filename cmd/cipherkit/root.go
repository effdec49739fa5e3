package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"cipherkit/internal/config"
	"cipherkit/internal/dispatch"
	"cipherkit/internal/paths"
	"cipherkit/internal/slogutil"
	"cipherkit/internal/storage"
	"cipherkit/internal/version"
)

var (
	configFlag   string
	verbosity    int
	quietFlag    bool
	formatFlag   string
	noHistoryOpt bool
)

// runtime state shared by subcommands, set up in PersistentPreRunE
var (
	cfg       *config.Config
	cfgPath   string
	logs      *slogutil.LoggerFactory
	logger    *slog.Logger
	historyDB *storage.DB
)

// lenient marks commands that must run even with an invalid config file.
const lenient = "lenient"

var rootCmd = &cobra.Command{
	Use:   "cipherkit",
	Short: "cipherkit - classical ciphers, digests and a chat command front end",
	Long: `cipherkit enciphers and deciphers text with classical substitution,
encoding and transposition ciphers, computes message digests, hides
ciphertext in images, and answers chat-style commands such as
"/encrypt caesar 5 hello" from a terminal or over HTTP.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupRuntime,
}

func init() {
	rootCmd.SetVersionTemplate("cipherkit version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"Config file (default: ~/.cipherkit/config.toml, or $CIPHERKIT_HOME/config.toml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", string(FormatHuman), "Output format (human, json, yaml, toml)")
	rootCmd.PersistentFlags().BoolVar(&noHistoryOpt, "no-history", false, "Do not journal this run")
}

func setupRuntime(cmd *cobra.Command, args []string) error {
	if _, err := ParseOutputFormat(formatFlag); err != nil {
		return err
	}

	path := configFlag
	if path == "" {
		p, err := paths.GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	path, err := paths.ExpandHome(path)
	if err != nil {
		return err
	}

	loaded, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	cfg, cfgPath = loaded, path

	logs = slogutil.NewLoggerFactory(cfg, os.Stderr)
	if verbosity > 0 || quietFlag {
		logs.SetCLILevel(slogutil.LevelFromVerbosity(verbosity, quietFlag))
	}
	logger = logs.CLILogger()

	if err := cfg.Validate(); err != nil {
		if cmd.Annotations[lenient] == "" {
			return err
		}
		logger.Warn("Invalid configuration", "path", path, "error", err)
	}
	logger.Debug("Configuration loaded", "path", path)
	return nil
}

// closeRuntime releases the journal and log files.
func closeRuntime() {
	if historyDB != nil {
		_ = historyDB.Close()
		historyDB = nil
	}
	if logs != nil {
		_ = logs.Close()
	}
}

// openHistory opens the journal database, or returns nil when the journal
// is disabled by config or --no-history.
func openHistory() (*storage.DB, error) {
	if historyDB != nil {
		return historyDB, nil
	}
	if noHistoryOpt || !cfg.History.Enabled {
		return nil, nil
	}

	path := cfg.History.Path
	if path == "" {
		p, err := paths.GetHistoryPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	path, err := paths.ExpandHome(path)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	historyDB = db
	return db, nil
}

// newDispatcher builds a dispatcher journaling under source. A journal
// that cannot be opened is logged and skipped.
func newDispatcher(source storage.Source) *dispatch.Dispatcher {
	opts := []dispatch.Option{
		dispatch.WithLogger(logger),
		dispatch.WithSource(source),
	}

	db, err := openHistory()
	if err != nil {
		logger.Warn("History disabled", "error", err)
	} else if db != nil {
		opts = append(opts, dispatch.WithRecorder(db))
	}
	return dispatch.New(cfg, opts...)
}

// writeOutput renders v in the --format chosen by the user.
func writeOutput(w io.Writer, v interface{}) error {
	format, err := ParseOutputFormat(formatFlag)
	if err != nil {
		return err
	}
	out, err := FormatResponse(v, format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func newContext() context.Context {
	return context.Background()
}
