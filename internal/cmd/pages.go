package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/fclairamb/wikisync/internal/apperrors"
	"github.com/fclairamb/wikisync/internal/content"
)

// listCommand creates the list subcommand.
func listCommand() *cli.Command {
	return &cli.Command{
		Name:   "list",
		Usage:  "List every page of the wiki",
		Flags:  []cli.Flag{verboseFlag},
		Before: withLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := loadConfig(cmd)
			session := cfg.newSession(stderrNotifier())

			if err := session.LoadAll(ctx); err != nil {
				return err
			}

			displayPageList(session.Cache().Pages(), NewFileLocation(cfg.statePath()).Fragment())
			return nil
		},
	}
}

// showCommand creates the show subcommand.
func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Display a page, or the last visited one when no key is given",
		ArgsUsage: "[key]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Print the markdown source instead of rendering it",
			},
			&cli.BoolFlag{
				Name:  "html",
				Usage: "Print the rendered HTML",
			},
			verboseFlag,
		},
		Before: withLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			session, err := openSession(ctx, loadConfig(cmd), cmd.Args().First())
			if err != nil {
				return err
			}

			view := session.View()
			if cmd.Bool("html") {
				displayLine("%s", view.HTML)
				return nil
			}
			return displayView(view, cmd.Bool("raw"))
		},
	}
}

// tocCommand creates the toc subcommand.
func tocCommand() *cli.Command {
	return &cli.Command{
		Name:      "toc",
		Usage:     "Display the table of contents of a page",
		ArgsUsage: "[key]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "heading",
				Usage: "Mark the entry with this id as selected",
			},
			verboseFlag,
		},
		Before: withLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			session, err := openSession(ctx, loadConfig(cmd), cmd.Args().First())
			if err != nil {
				return err
			}

			if id := cmd.String("heading"); id != "" {
				if _, ok := session.Heading(id); !ok {
					return fmt.Errorf("heading %s: %w", id, apperrors.ErrHeadingNotFound)
				}
			}

			displayTOC(session.View())
			return nil
		},
	}
}

// searchCommand creates the search subcommand.
func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     fmt.Sprintf("Search page titles and content (at least %d characters)", content.MinQueryLength),
		ArgsUsage: "<query>",
		Flags:     []cli.Flag{verboseFlag},
		Before:    withLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			query := cmd.Args().First()
			if query == "" {
				return apperrors.ErrEmptyInput
			}

			session := loadConfig(cmd).newSession(stderrNotifier())
			if err := session.LoadAll(ctx); err != nil {
				return err
			}

			displaySearchResults(query, session.Search(query))
			return nil
		},
	}
}
