package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// exportCommand creates the export subcommand.
func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a page as <key>.md into the export directory",
		ArgsUsage: "[key]",
		Flags:     []cli.Flag{verboseFlag},
		Before:    withLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := loadConfig(cmd)
			session, err := openSession(ctx, cfg, cmd.Args().First())
			if err != nil {
				return err
			}

			page, err := session.ExportPage()
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			exporter, err := cfg.newExporter()
			if err != nil {
				return err
			}
			result, err := exporter.Write(ctx, page)
			if err != nil {
				return err
			}
			session.NotifyExported(ctx, page)

			displayExportResult(cfg.Dir, result)
			return nil
		},
	}
}

// mirrorCommand creates the mirror subcommand.
func mirrorCommand() *cli.Command {
	return &cli.Command{
		Name:   "mirror",
		Usage:  "Write every page into the export directory and remove deleted ones",
		Flags:  []cli.Flag{verboseFlag},
		Before: withLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := loadConfig(cmd)
			session := cfg.newSession(stderrNotifier())
			if err := session.LoadAll(ctx); err != nil {
				return err
			}

			exporter, err := cfg.newExporter()
			if err != nil {
				return err
			}
			result, err := exporter.Mirror(ctx, session.Cache().Pages())
			if err != nil {
				return err
			}

			displayExportResult(cfg.Dir, result)
			return nil
		},
	}
}
