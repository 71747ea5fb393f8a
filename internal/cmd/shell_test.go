package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fclairamb/wikisync/internal/render"
	"github.com/fclairamb/wikisync/internal/wiki"
	"github.com/fclairamb/wikisync/internal/wikiapi"
	"github.com/fclairamb/wikisync/internal/wikiapi/wikiapitest"
)

const introContent = "# Intro\n\n## Goals\n\nWhy we build it.\n\n## Usage\n\nRun it."

// safeBuffer is a bytes.Buffer usable from the search timer goroutine.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestShell(t *testing.T) (*Shell, *safeBuffer, *wikiapitest.Server) {
	t.Helper()

	api := wikiapitest.NewServer(
		wikiapi.Page{ID: "1", Key: "intro", Title: "Intro", Content: introContent},
		wikiapi.Page{ID: "2", Key: "setup", Title: "Setup", Content: "# Setup\n\nInstall the cat tools. See [intro](#intro)."},
	)
	t.Cleanup(api.Close)

	out := &safeBuffer{}
	notifier := wiki.NotifierFunc(func(_ context.Context, level wiki.Level, message string) {
		_, _ = fmt.Fprintf(out, "[%s] %s\n", level, message)
	})
	renderer := render.NewRenderer()
	session := wiki.NewSession(api.APIClient(),
		wiki.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		wiki.WithNotifier(notifier),
		wiki.WithRenderer(renderer),
	)

	return NewShell(session, out, renderer, 10*time.Millisecond), out, api
}

func TestShell_Session(t *testing.T) {
	t.Parallel()

	sh, out, api := newTestShell(t)

	script := strings.Join([]string{
		"ls",
		"toc",
		"scroll 0",
		"scroll 5",
		"scroll 10",
		"heading heading-1",
		"edit",
		`append \nMore text.`,
		"save",
		"new Release Notes",
		"rm release-notes",
		"yes",
		"bogus",
		"quit",
		"ls",
	}, "\n")

	require.NoError(t, sh.Run(context.Background(), strings.NewReader(script)))

	output := out.String()
	assert.Contains(t, output, "Home > Intro")
	assert.Contains(t, output, "* intro - Intro\n  setup - Setup\n")
	assert.Contains(t, output, "  Goals  (heading-0)\n  Usage  (heading-1)\n")
	assert.Contains(t, output, "line 0: heading-0\n")
	assert.Contains(t, output, "line 5: heading-1\n")
	assert.Contains(t, output, "line 10: no active section\n")
	assert.Contains(t, output, "> Usage\n")
	assert.Contains(t, output, "edit mode: true\n")
	assert.Contains(t, output, "[info] Saving...\n")
	assert.Contains(t, output, "[success] Page saved on the server!\n")
	assert.Contains(t, output, "[success] Page \"Release Notes\" created!\n")
	assert.Contains(t, output, "Delete page \"Release Notes\"? (yes/no)\n")
	assert.Contains(t, output, "[success] Page \"Release Notes\" deleted!\n")
	assert.Contains(t, output, "error: unknown command \"bogus\"")

	// start, ls, reload after create, reload after delete; quit skips the last ls
	assert.Equal(t, 4, api.Calls("list"))

	pages := api.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, introContent+"\nMore text.", pages[0].Content)
	assert.Equal(t, "intro", sh.session.Current())
}

func TestShell_FollowAndFind(t *testing.T) {
	t.Parallel()

	sh, out, _ := newTestShell(t)
	ctx := context.Background()
	require.NoError(t, sh.session.Start(ctx))

	require.NoError(t, sh.Exec(ctx, "open setup"))
	require.NoError(t, sh.Exec(ctx, "follow #intro"))
	assert.Equal(t, "intro", sh.session.Current())

	require.NoError(t, sh.Exec(ctx, "follow https://example.com"))
	assert.Contains(t, out.String(), "external link: https://example.com\n")

	require.NoError(t, sh.Exec(ctx, "find ca"))
	require.NoError(t, sh.Exec(ctx, "find cat"))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "  setup - Setup\n")
	}, time.Second, 5*time.Millisecond)
}

func TestShell_FormattingAndCancel(t *testing.T) {
	t.Parallel()

	sh, out, api := newTestShell(t)
	ctx := context.Background()
	require.NoError(t, sh.session.Start(ctx))

	require.Error(t, sh.Exec(ctx, "draft"))
	require.NoError(t, sh.Exec(ctx, "edit"))
	require.NoError(t, sh.Exec(ctx, "set hello world"))
	require.NoError(t, sh.Exec(ctx, "select 6 11"))
	require.NoError(t, sh.Exec(ctx, "bold"))
	require.NoError(t, sh.Exec(ctx, "draft"))
	assert.Contains(t, out.String(), "hello **world**\n")

	require.NoError(t, sh.Exec(ctx, "edit"))
	assert.Contains(t, out.String(), "edit mode: false\n")
	require.Error(t, sh.Exec(ctx, "save"))
	assert.Zero(t, api.Calls("update"))
}

func TestShell_ExportPrintsWithoutRepository(t *testing.T) {
	t.Parallel()

	sh, out, _ := newTestShell(t)
	ctx := context.Background()
	require.NoError(t, sh.session.Start(ctx))

	require.NoError(t, sh.Exec(ctx, "export"))
	assert.Contains(t, out.String(), "intro.md\n"+introContent+"\n")
	assert.Contains(t, out.String(), "[success] Page exported!\n")
}

func TestShell_CancelDelete(t *testing.T) {
	t.Parallel()

	sh, _, api := newTestShell(t)
	ctx := context.Background()
	require.NoError(t, sh.session.Start(ctx))

	require.NoError(t, sh.Exec(ctx, "rm setup"))
	require.NoError(t, sh.Exec(ctx, "no"))
	require.Error(t, sh.Exec(ctx, "yes"))
	assert.Zero(t, api.Calls("delete"))
}

func TestMarkdownWrap(t *testing.T) {
	t.Parallel()

	tests := map[string][2]string{
		"bold":   {"**", "**"},
		"italic": {"_", "_"},
		"code":   {"`", "`"},
		"link":   {"[", "](url)"},
	}
	for name, want := range tests {
		before, after := markdownWrap(name)
		assert.Equal(t, want, [2]string{before, after}, name)
	}
}
