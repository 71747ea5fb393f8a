package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/fclairamb/wikisync/internal/apperrors"
)

// remoteCommand creates the remote subcommand.
func remoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "remote",
		Usage: "Manage the git remote of the export directory",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the export repository configuration from environment variables",
				Flags:  []cli.Flag{verboseFlag},
				Before: withLogging,
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg := loadConfig(cmd)
					displayRemoteConfig(cfg.Remote, cfg.Dir)
					return nil
				},
			},
			{
				Name:   "test",
				Usage:  "Test connection to the remote repository",
				Flags:  []cli.Flag{verboseFlag},
				Before: withLogging,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := loadConfig(cmd)
					if !cfg.Remote.IsEnabled() {
						return apperrors.ErrRemoteNotConfiguredSetURL
					}
					return displayConnectionTest(ctx, cfg.Remote)
				},
			},
		},
	}
}
