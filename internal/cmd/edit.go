package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/fclairamb/wikisync/internal/apperrors"
	"github.com/fclairamb/wikisync/internal/importer"
	"github.com/fclairamb/wikisync/internal/textdiff"
)

const defaultEditor = "vi"

// editCommand creates the edit subcommand.
func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit a page, show the diff and save it",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read the new content from a file (- for stdin) instead of opening $EDITOR",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show the diff without saving",
			},
			verboseFlag,
		},
		Before: withLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key := cmd.Args().First()
			if key == "" {
				return apperrors.ErrPageKeyRequired
			}

			session, err := openSession(ctx, loadConfig(cmd), key)
			if err != nil {
				return err
			}

			original, err := session.BeginEdit()
			if err != nil {
				return fmt.Errorf("begin edit: %w", err)
			}

			var draft string
			if file := cmd.String("file"); file != "" {
				draft, err = readContent(cmd.Root().Reader, file)
			} else {
				draft, err = editInEditor(ctx, key, original)
			}
			if err != nil {
				return err
			}
			if err := session.UpdateDraft(draft); err != nil {
				return fmt.Errorf("update draft: %w", err)
			}

			diff, err := textdiff.Unified(key+".md", original, draft, textdiff.DefaultContext)
			if err != nil {
				return err
			}
			added, removed := textdiff.Stats(diff)
			displayDiff(diff, added, removed)

			if diff == "" || cmd.Bool("dry-run") {
				session.CancelEdit()
				return nil
			}

			if _, err := session.SaveDraft(ctx); err != nil {
				return fmt.Errorf("save %s: %w", key, err)
			}
			return nil
		},
	}
}

// createCommand creates the create subcommand.
func createCommand() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a page; its key is derived from the name",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Initial content from a file (- for stdin)",
			},
			&cli.StringFlag{
				Name:  "from-url",
				Usage: "Import the initial content from a web page",
			},
			&cli.StringFlag{
				Name:  "selector",
				Usage: "Element of the imported page to keep (#id, .class or tag)",
				Value: "body",
			},
			verboseFlag,
		},
		Before: withLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			body := ""

			switch {
			case cmd.String("from-url") != "":
				doc, err := importer.New().Fetch(ctx, cmd.String("from-url"), cmd.String("selector"))
				if err != nil {
					return fmt.Errorf("import: %w", err)
				}
				if name == "" {
					name = doc.Title
				}
				body = doc.Markdown
			case cmd.String("file") != "":
				var err error
				if body, err = readContent(cmd.Root().Reader, cmd.String("file")); err != nil {
					return err
				}
			}

			if strings.TrimSpace(name) == "" {
				return apperrors.ErrEmptyInput
			}

			session := loadConfig(cmd).newSession(stderrNotifier())
			var err error
			if body == "" {
				_, err = session.Create(ctx, name)
			} else {
				_, err = session.CreateWithContent(ctx, name, body)
			}
			if err != nil {
				return fmt.Errorf("create %q: %w", name, err)
			}

			displayLine("%s", session.View().Breadcrumb)
			return nil
		},
	}
}

// deleteCommand creates the delete subcommand.
func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a page after confirmation",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Do not ask for confirmation",
			},
			verboseFlag,
		},
		Before: withLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key := cmd.Args().First()
			if key == "" {
				return apperrors.ErrPageKeyRequired
			}

			session := loadConfig(cmd).newSession(stderrNotifier())
			if err := session.LoadAll(ctx); err != nil {
				return err
			}

			pending, err := session.RequestDelete(key)
			if err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}

			prompt := fmt.Sprintf(session.Messages().DeleteConfirm, pending.Title)
			if !cmd.Bool("yes") && !confirm(cmd.Root().Reader, cmd.Root().Writer, prompt) {
				session.CancelDelete()
				return apperrors.ErrDeletionCanceled
			}

			return session.ConfirmDelete(ctx)
		},
	}
}

// uploadCommand creates the upload subcommand.
func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload an image, optionally appending a reference to a page",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "page",
				Aliases: []string{"p"},
				Usage:   "Append the image to this page and save it",
			},
			verboseFlag,
		},
		Before: withLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return apperrors.ErrEmptyInput
			}

			cfg := loadConfig(cmd)
			session := cfg.newSession(stderrNotifier())
			if key := cmd.String("page"); key != "" {
				if err := session.Navigate(ctx, key); err != nil {
					return err
				}
				if _, err := session.BeginEdit(); err != nil {
					return fmt.Errorf("begin edit: %w", err)
				}
			}

			f, err := os.Open(path) //nolint:gosec // user-provided path
			if err != nil {
				return fmt.Errorf("open image: %w", err)
			}
			defer func() { _ = f.Close() }()

			url, err := session.UploadImage(ctx, filepath.Base(path), f)
			if err != nil {
				return err
			}
			displayLine("%s", url)

			if session.Editing() {
				if _, err := session.SaveDraft(ctx); err != nil {
					return fmt.Errorf("save page: %w", err)
				}
			}
			return nil
		},
	}
}

// readContent reads a file, or in when path is "-".
func readContent(in io.Reader, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // user-provided path
	}
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return string(data), nil
}

// tempPattern turns a page key into an os.CreateTemp pattern. Path
// separators and the random-part marker are not allowed in the prefix.
func tempPattern(key string) string {
	prefix := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '*' || r == os.PathSeparator {
			return '-'
		}
		return r
	}, key)
	return prefix + "-*.md"
}

// editInEditor opens $EDITOR on a temporary copy of content and returns the edited text.
func editInEditor(ctx context.Context, key, content string) (string, error) {
	tmp, err := os.CreateTemp("", tempPattern(key))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	run := exec.CommandContext(ctx, editor, tmp.Name()) //nolint:gosec // editor chosen by the user
	run.Stdin, run.Stdout, run.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := run.Run(); err != nil {
		return "", fmt.Errorf("run editor: %w", err)
	}

	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("read temp file: %w", err)
	}
	return string(data), nil
}

// confirm asks a yes/no question and reports a yes answer.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprintf(out, "%s [y/N] ", prompt)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "s", "sim":
		return true
	default:
		return false
	}
}
