package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/fclairamb/wikisync/internal/apperrors"
	"github.com/fclairamb/wikisync/internal/content"
	"github.com/fclairamb/wikisync/internal/export"
	"github.com/fclairamb/wikisync/internal/render"
	"github.com/fclairamb/wikisync/internal/wiki"
)

const (
	shellPrompt = "wiki> "

	// shellScrollThreshold is the line, counted from the top of the viewport,
	// a heading must reach to become active.
	shellScrollThreshold = 2
)

// errQuit ends the shell loop.
var errQuit = errors.New("quit")

// lockedWriter serializes writes from the prompt loop and the search timer.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p) //nolint:wrapcheck // plain io.Writer pass-through
}

// Shell is an interactive session over the wiki.
type Shell struct {
	session  *wiki.Session
	renderer *render.Renderer
	terminal *render.Terminal
	exporter func() (*export.Exporter, error)
	search   *wiki.SearchBox
	out      io.Writer
	offset   int
}

// ShellOption configures a Shell.
type ShellOption func(*Shell)

// WithTerminal renders pages with glamour when showing them.
func WithTerminal(t *render.Terminal) ShellOption {
	return func(sh *Shell) {
		sh.terminal = t
	}
}

// WithExporter makes the export command write to the repository opened by
// open on first use. Without it, export prints the page.
func WithExporter(open func() (*export.Exporter, error)) ShellOption {
	return func(sh *Shell) {
		var once sync.Once
		var exporter *export.Exporter
		var err error
		sh.exporter = func() (*export.Exporter, error) {
			once.Do(func() { exporter, err = open() })
			return exporter, err
		}
	}
}

// NewShell creates a shell over session writing to out. Search results are
// printed once typing pauses for searchDelay.
func NewShell(session *wiki.Session, out io.Writer, renderer *render.Renderer, searchDelay time.Duration, opts ...ShellOption) *Shell {
	sh := &Shell{
		session:  session,
		renderer: renderer,
		out:      out,
	}
	for _, opt := range opts {
		opt(sh)
	}
	sh.search = wiki.NewSearchBox(session, searchDelay, sh.printResults)
	return sh
}

// Run opens the wiki and reads commands from in until EOF or quit.
func (sh *Shell) Run(ctx context.Context, in io.Reader) error {
	defer sh.search.Close()

	if err := sh.session.Start(ctx); err != nil && !errors.Is(err, apperrors.ErrNoPages) {
		return err
	}
	sh.printView()

	scanner := bufio.NewScanner(in)
	for {
		sh.printf("%s", shellPrompt)
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err() //nolint:wrapcheck // context cancellation
		}

		err := sh.Exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			sh.printf("error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// Exec runs one shell command line.
//
//nolint:gocyclo,cyclop,funlen // command dispatch
func (sh *Shell) Exec(ctx context.Context, line string) error {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "":
		return nil
	case "quit", "exit":
		return errQuit
	case "help":
		sh.printf("%s", shellHelp)
		return nil

	case "ls":
		if err := sh.session.LoadAll(ctx); err != nil {
			return err
		}
		current := sh.session.Current()
		for _, p := range sh.session.Cache().Pages() {
			marker := "  "
			if p.Key == current {
				marker = "* "
			}
			sh.printf("%s%s - %s\n", marker, p.Key, p.Title)
		}
		return nil
	case "open":
		if err := sh.session.Navigate(ctx, arg); err != nil {
			return err
		}
		sh.offset = 0
		sh.printView()
		return nil
	case "follow":
		followed, err := sh.session.FollowLink(ctx, arg)
		if err != nil {
			return err
		}
		if !followed {
			sh.printf("external link: %s\n", arg)
			return nil
		}
		sh.offset = 0
		sh.printView()
		return nil
	case "show":
		sh.printView()
		return nil
	case "toc":
		view := sh.session.View()
		sh.printf("%s", formatTOC(view.TOC, view.Active))
		return nil
	case "heading":
		h, ok := sh.session.Heading(arg)
		if !ok {
			return fmt.Errorf("heading %s: %w", arg, apperrors.ErrHeadingNotFound)
		}
		sh.printf("> %s\n", h.Text)
		return nil
	case "scroll":
		offset, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("scroll offset %q: %w", arg, err)
		}
		sh.offset = max(0, offset)
		outline := sh.renderer.Outline(sh.session.View().Markdown)
		active := sh.session.Highlight(render.LineBoxes(outline, sh.offset), shellScrollThreshold)
		if active == "" {
			sh.printf("line %d: no active section\n", sh.offset)
			return nil
		}
		sh.printf("line %d: %s\n", sh.offset, active)
		return nil
	case "find":
		sh.search.Input(arg)
		return nil

	case "edit":
		on, err := sh.session.ToggleEditMode()
		if err != nil {
			return err
		}
		sh.printf("edit mode: %t\n", on)
		return nil
	case "draft":
		draft, err := sh.session.Draft()
		if err != nil {
			return err
		}
		sh.printf("%s\n", draft)
		return nil
	case "set":
		return sh.session.UpdateDraft(unescape(arg))
	case "append":
		draft, err := sh.session.Draft()
		if err != nil {
			return err
		}
		return sh.session.UpdateDraft(draft + unescape(arg))
	case "select":
		var start, end int
		if _, err := fmt.Sscanf(arg, "%d %d", &start, &end); err != nil {
			return fmt.Errorf("select %q: %w", arg, err)
		}
		return sh.session.SetSelection(start, end)
	case "bold", "italic", "code", "link":
		before, after := markdownWrap(name)
		_, err := sh.session.InsertMarkdown(before, after)
		return err
	case "save":
		if _, err := sh.session.SaveDraft(ctx); err != nil {
			return err
		}
		sh.printView()
		return nil
	case "cancel":
		sh.session.CancelEdit()
		return nil

	case "new":
		page, err := sh.session.Create(ctx, arg)
		if err != nil {
			return err
		}
		if page != nil {
			sh.printView()
		}
		return nil
	case "rm":
		key := arg
		if key == "" {
			key = sh.session.Current()
		}
		pending, err := sh.session.RequestDelete(key)
		if err != nil {
			return err
		}
		sh.printf(sh.session.Messages().DeleteConfirm+" (yes/no)\n", pending.Title)
		return nil
	case "yes":
		if err := sh.session.ConfirmDelete(ctx); err != nil {
			return err
		}
		sh.printView()
		return nil
	case "no":
		sh.session.CancelDelete()
		return nil

	case "export":
		return sh.export(ctx)
	case "upload":
		return sh.upload(ctx, arg)
	}

	return fmt.Errorf("%w %q (try help)", apperrors.ErrUnknownCommand, name)
}

func (sh *Shell) export(ctx context.Context) error {
	page, err := sh.session.ExportPage()
	if err != nil {
		return err
	}
	if sh.exporter == nil {
		sh.printf("%s\n%s\n", page.Filename, page.Content)
		sh.session.NotifyExported(ctx, page)
		return nil
	}
	exporter, err := sh.exporter()
	if err != nil {
		return err
	}
	result, err := exporter.Write(ctx, page)
	if err != nil {
		return err
	}
	sh.session.NotifyExported(ctx, page)
	sh.printf("exported %s (committed: %t)\n", page.Filename, result.Committed)
	return nil
}

func (sh *Shell) upload(ctx context.Context, path string) error {
	if path == "" {
		return apperrors.ErrEmptyInput
	}
	f, err := os.Open(path) //nolint:gosec // user-provided path
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	url, err := sh.session.UploadImage(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}
	sh.printf("%s\n", url)
	return nil
}

func (sh *Shell) printView() {
	view := sh.session.View()
	if view.Key == "" && !view.NotFound {
		return
	}
	sh.printf("%s\n\n", view.Breadcrumb)

	body := view.Markdown
	if sh.terminal != nil && !view.NotFound {
		if rendered, err := sh.terminal.Render(body); err == nil {
			body = rendered
		}
	}
	sh.printf("%s\n", body)
}

func (sh *Shell) printResults(query string, results []content.Result) {
	if len(results) == 0 {
		sh.printf("no match for %q\n", query)
		return
	}
	for _, r := range results {
		sh.printf("  %s - %s\n", r.Key, r.Title)
	}
}

func (sh *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(sh.out, format, args...)
}

// markdownWrap returns the markers a formatting command wraps the selection with.
func markdownWrap(name string) (string, string) {
	switch name {
	case "bold":
		return "**", "**"
	case "italic":
		return "_", "_"
	case "code":
		return "`", "`"
	default:
		return "[", "](url)"
	}
}

// unescape turns the two-character sequence \n into a newline.
func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

const shellHelp = `navigation:  ls | open <key> | follow <href> | show | toc | heading <id> | scroll <line> | find <text>
editing:     edit | draft | set <text> | append <text> | select <start> <end> | bold | italic | code | link | save | cancel
pages:       new <name> | rm [key] then yes/no | export | upload <file>
             help | quit
`

// shellCommand creates the shell subcommand.
func shellCommand() *cli.Command {
	return &cli.Command{
		Name:   "shell",
		Usage:  "Browse and edit the wiki interactively",
		Flags:  []cli.Flag{verboseFlag},
		Before: withLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := loadConfig(cmd)
			out := &lockedWriter{w: cmd.Root().Writer}

			notifier := wiki.NotifierFunc(func(_ context.Context, level wiki.Level, message string) {
				_, _ = fmt.Fprintf(out, "[%s] %s\n", level, message)
			})
			renderer := render.NewRenderer()
			session := cfg.newSession(notifier, wiki.WithRenderer(renderer))

			opts := []ShellOption{WithExporter(cfg.newExporter)}
			if term, err := newTerminal(); err == nil {
				opts = append(opts, WithTerminal(term))
			} else {
				slog.Warn("Terminal rendering disabled", "error", err)
			}

			return NewShell(session, out, renderer, cfg.SearchDebounce, opts...).Run(ctx, cmd.Root().Reader)
		},
	}
}
