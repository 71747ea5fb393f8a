package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"

	"github.com/fclairamb/wikisync/internal/mcp"
	"github.com/fclairamb/wikisync/internal/preview"
	"github.com/fclairamb/wikisync/internal/render"
	"github.com/fclairamb/wikisync/internal/version"
	"github.com/fclairamb/wikisync/internal/wiki"
)

// serveCommand creates the serve subcommand.
func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTML preview server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "HTTP port to listen on",
				Sources: cli.EnvVars("WIKI_PREVIEW_PORT"),
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Site title shown on every page",
				Value: "Wiki",
			},
			&cli.StringFlag{
				Name:  "style",
				Usage: "Code highlighting style",
				Value: render.DefaultStyle,
			},
			verboseFlag,
		},
		Before: withLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := loadConfig(cmd)
			port := cfg.PreviewPort
			if cmd.IsSet("port") {
				port = cmd.Int("port")
			}

			renderer := render.NewRenderer(render.WithStyle(cmd.String("style")))
			session := wiki.NewSession(cfg.newClient(),
				wiki.WithLogger(slog.Default()),
				wiki.WithMessages(wiki.MessagesFor(cfg.Lang)),
				wiki.WithRenderer(renderer),
			)

			srv := preview.NewServer(&preview.ServerConfig{
				Port:  port,
				Title: cmd.String("title"),
			}, session, renderer, slog.Default())

			return srv.Start(ctx)
		},
	}
}

// mcpCommand creates the mcp subcommand.
func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Expose the wiki as MCP tools over stdio or streamable HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "http",
				Usage: "Listen on this address (e.g. :8081) instead of stdio",
			},
			verboseFlag,
		},
		Before: withLogging,
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg := loadConfig(cmd)
			session := wiki.NewSession(cfg.newClient(),
				wiki.WithLogger(slog.Default()),
				wiki.WithMessages(wiki.MessagesFor(cfg.Lang)),
			)
			s := mcp.NewServer(session)

			if addr := cmd.String("http"); addr != "" {
				slog.Info("starting MCP server", "transport", "http", "addr", addr, "version", version.Version)
				if err := server.NewStreamableHTTPServer(s).Start(addr); err != nil {
					return fmt.Errorf("mcp http server: %w", err)
				}
				return nil
			}

			slog.Debug("starting MCP server", "transport", "stdio", "version", version.Version)
			if err := server.ServeStdio(s); err != nil {
				return fmt.Errorf("mcp stdio server: %w", err)
			}
			return nil
		},
	}
}
