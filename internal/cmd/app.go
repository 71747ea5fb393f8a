// Package cmd provides the CLI commands for wikisync.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"

	"github.com/fclairamb/wikisync/internal/version"
)

const envPrefix = "WIKI_"

var (
	// konfig is the global koanf instance.
	konfig = koanf.New(".")
)

// verboseFlag is the shared verbose flag for all commands.
var verboseFlag = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "Enable verbose logging",
}

// LogFormat represents the log output format.
type LogFormat string

const (
	// LogFormatText is the human-readable text format (default).
	LogFormatText LogFormat = "text"
	// LogFormatJSON is the JSON-formatted structured logs.
	LogFormatJSON LogFormat = "json"
)

// getLogFormat returns the configured log format from WIKI_LOG_FORMAT.
func getLogFormat() LogFormat {
	switch strings.ToLower(konfig.String("log_format")) {
	case "json":
		return LogFormatJSON
	default:
		// Invalid values are reported once the logger is set up
		return LogFormatText
	}
}

// setupLogging configures the global logger based on the verbose flag and WIKI_LOG_FORMAT.
func setupLogging(cmd *cli.Command) {
	level := slog.LevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch getLogFormat() {
	case LogFormatJSON:
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case LogFormatText:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))

	if val := strings.ToLower(konfig.String("log_format")); val != "" && val != "text" && val != "json" {
		slog.Warn("Invalid WIKI_LOG_FORMAT value, using text format", "value", val)
	}

	if level == slog.LevelDebug {
		slog.Debug("Verbose logging enabled")
	}
}

// loadEnv reloads konfig from the WIKI_* environment variables, as lowercase
// keys without the prefix (WIKI_API_URL becomes api_url).
func loadEnv() error {
	konfig = koanf.New(".")
	if err := konfig.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(k, envPrefix)), v
		},
	}), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// NewApp creates the CLI application.
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "wiki",
		Usage:   "Browse, edit and export the pages of a remote wiki",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of the wiki API",
				Sources: cli.EnvVars("WIKI_API_URL"),
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Directory holding exported pages and client state",
				Sources: cli.EnvVars("WIKI_DIR"),
			},
			&cli.StringFlag{
				Name:    "lang",
				Usage:   "Language of user messages (en, pt)",
				Sources: cli.EnvVars("WIKI_LANG"),
			},
			verboseFlag,
		},
		Before: func(ctx context.Context, _ *cli.Command) (context.Context, error) {
			return ctx, loadEnv()
		},
		Commands: []*cli.Command{
			listCommand(),
			showCommand(),
			tocCommand(),
			searchCommand(),
			editCommand(),
			createCommand(),
			deleteCommand(),
			uploadCommand(),
			exportCommand(),
			mirrorCommand(),
			shellCommand(),
			serveCommand(),
			mcpCommand(),
			remoteCommand(),
		},
	}
}

// withLogging is the Before hook shared by every subcommand.
func withLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	setupLogging(cmd)
	return ctx, nil
}
