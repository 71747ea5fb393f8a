package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fclairamb/wikisync/internal/content"
	"github.com/fclairamb/wikisync/internal/export"
	"github.com/fclairamb/wikisync/internal/render"
	"github.com/fclairamb/wikisync/internal/store"
	"github.com/fclairamb/wikisync/internal/wiki"
	"github.com/fclairamb/wikisync/internal/wikiapi"
)

// displayPageList displays the cached pages in list order.
//
//nolint:forbidigo // CLI user output function
func displayPageList(pages []wikiapi.Page, current string) {
	if len(pages) == 0 {
		fmt.Println("No pages.")
		return
	}
	for _, p := range pages {
		marker := "  "
		if p.Key == current {
			marker = "* "
		}
		fmt.Printf("%s%s - %q\n", marker, p.Key, p.Title)
	}
	fmt.Printf("\n%d page(s)\n", len(pages))
}

// displayView displays a page: breadcrumb, then the body rendered for the terminal
// or as raw markdown.
//
//nolint:forbidigo // CLI user output function
func displayView(view wiki.View, raw bool) error {
	fmt.Println(view.Breadcrumb)
	fmt.Println()

	if raw {
		fmt.Println(view.Markdown)
		return nil
	}

	term, err := newTerminal()
	if err != nil {
		return err
	}
	out, err := term.Render(view.Markdown)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// formatTOC indents table of contents entries by level and marks the active one.
func formatTOC(toc []render.Heading, active string) string {
	var sb strings.Builder
	for _, h := range toc {
		marker := "  "
		if h.ID == active {
			marker = "> "
		}
		sb.WriteString(marker)
		sb.WriteString(strings.Repeat("  ", h.Level-2))
		sb.WriteString(h.Text)
		sb.WriteString("  (")
		sb.WriteString(h.ID)
		sb.WriteString(")\n")
	}
	return sb.String()
}

// displayTOC displays the table of contents of a view.
//
//nolint:forbidigo // CLI user output function
func displayTOC(view wiki.View) {
	if len(view.TOC) == 0 {
		fmt.Printf("%s has no sections.\n", view.Title)
		return
	}
	fmt.Print(formatTOC(view.TOC, view.Active))
}

// displaySearchResults displays the pages matching a query.
//
//nolint:forbidigo // CLI user output function
func displaySearchResults(query string, results []content.Result) {
	if len(results) == 0 {
		fmt.Printf("No page matches %q.\n", query)
		return
	}
	for _, r := range results {
		fmt.Printf("  %s - %q\n", r.Key, r.Title)
	}
}

// displayDiff displays a unified diff with its line counts.
//
//nolint:forbidigo // CLI user output function
func displayDiff(diff string, added, removed int) {
	if diff == "" {
		fmt.Println("No changes.")
		return
	}
	fmt.Print(diff)
	fmt.Printf("\n%d line(s) added, %d line(s) removed\n", added, removed)
}

// displayExportResult displays what an export wrote to the repository.
//
//nolint:forbidigo // CLI user output function
func displayExportResult(dir string, result *export.Result) {
	for _, f := range result.Written {
		fmt.Printf("  wrote   %s\n", f)
	}
	for _, f := range result.Unchanged {
		fmt.Printf("  same    %s\n", f)
	}
	for _, f := range result.Removed {
		fmt.Printf("  removed %s\n", f)
	}
	for _, key := range result.Skipped {
		fmt.Printf("  skipped %s (not a valid file name)\n", key)
	}
	switch {
	case result.Pushed:
		fmt.Printf("Committed and pushed to %s\n", dir)
	case result.Committed:
		fmt.Printf("Committed to %s\n", dir)
	default:
		fmt.Printf("Exported to %s\n", dir)
	}
}

// displayLine prints one line of user output.
//
//nolint:forbidigo // CLI user output function
func displayLine(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// displayRemoteConfig displays the remote git configuration.
//
//nolint:forbidigo // CLI user output function
func displayRemoteConfig(cfg *store.RemoteConfig, dir string) {
	fmt.Println("Export Repository Configuration")
	fmt.Println()
	fmt.Printf("Dir:      %s\n", dir)
	fmt.Printf("Commit:   %t\n", cfg.IsCommitEnabled())

	if cfg.URL == "" {
		fmt.Println("\nRemote: not configured (set WIKI_GIT_URL to enable)")
		return
	}

	fmt.Printf("URL:      %s\n", cfg.URL)
	if cfg.IsSSH() {
		fmt.Println("Auth:     SSH (using ssh-agent)")
	} else {
		if cfg.Password != "" {
			fmt.Println("Auth:     HTTPS (token configured)")
		} else {
			fmt.Println("Auth:     HTTPS (WARNING: WIKI_GIT_PASS not set)")
		}
	}
	fmt.Printf("Push:     %t\n", cfg.IsPushEnabled())
	fmt.Printf("Branch:   %s\n", cfg.Branch)
	fmt.Printf("User:     %s\n", cfg.User)
	fmt.Printf("Email:    %s\n", cfg.Email)
}

// displayConnectionTest tests the connection and displays the result.
//
//nolint:forbidigo // CLI user output function
func displayConnectionTest(ctx context.Context, cfg *store.RemoteConfig) error {
	fmt.Printf("Testing connection to %s...\n", cfg.URL)

	if testErr := cfg.TestConnection(ctx); testErr != nil {
		return fmt.Errorf("connection test failed: %w", testErr)
	}

	fmt.Println("Connection successful!")
	return nil
}
