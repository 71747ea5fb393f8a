package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/fclairamb/wikisync/internal/export"
	"github.com/fclairamb/wikisync/internal/preview"
	"github.com/fclairamb/wikisync/internal/render"
	"github.com/fclairamb/wikisync/internal/store"
	"github.com/fclairamb/wikisync/internal/wiki"
	"github.com/fclairamb/wikisync/internal/wikiapi"
)

const defaultDir = "wiki"

// Config is the resolved client configuration.
type Config struct {
	APIURL         string        // WIKI_API_URL or --api-url
	Timeout        time.Duration // WIKI_TIMEOUT
	RateInterval   time.Duration // WIKI_RATE_INTERVAL
	Lang           string        // WIKI_LANG or --lang
	SearchDebounce time.Duration // WIKI_SEARCH_DEBOUNCE
	Dir            string        // WIKI_DIR or --dir
	PreviewPort    int           // WIKI_PREVIEW_PORT
	Remote         *store.RemoteConfig
}

// loadConfig merges command flags over the environment loaded into konfig.
func loadConfig(cmd *cli.Command) *Config {
	cfg := &Config{
		APIURL:         konfig.String("api_url"),
		Timeout:        durationKey("timeout"),
		RateInterval:   wikiapi.DefaultRateInterval,
		Lang:           konfig.String("lang"),
		SearchDebounce: durationKey("search_debounce"),
		Dir:            konfig.String("dir"),
		PreviewPort:    konfig.Int("preview_port"),
		Remote:         loadRemoteConfig(),
	}

	if konfig.Exists("rate_interval") {
		cfg.RateInterval = durationKey("rate_interval")
	}

	if v := cmd.String("api-url"); v != "" {
		cfg.APIURL = v
	}
	if v := cmd.String("lang"); v != "" {
		cfg.Lang = v
	}
	if v := cmd.String("dir"); v != "" {
		cfg.Dir = v
	}
	if cfg.APIURL == "" {
		cfg.APIURL = wikiapi.DefaultBaseURL
	}
	if cfg.Dir == "" {
		cfg.Dir = defaultDir
	}
	if cfg.PreviewPort <= 0 {
		cfg.PreviewPort = preview.DefaultPort
	}

	return cfg
}

// loadRemoteConfig builds the export repository settings from WIKI_GIT_* and
// WIKI_COMMIT / WIKI_PUSH.
func loadRemoteConfig() *store.RemoteConfig {
	cfg := &store.RemoteConfig{
		URL:      konfig.String("git_url"),
		Password: konfig.String("git_pass"),
		Branch:   konfig.String("git_branch"),
		User:     konfig.String("git_user"),
		Email:    konfig.String("git_email"),
		Commit:   parseBool(konfig.String("commit")),
	}
	if konfig.Exists("push") {
		push := parseBool(konfig.String("push"))
		cfg.Push = &push
	}
	return cfg.WithDefaults()
}

// durationKey parses a duration value, returning zero when unset or invalid.
func durationKey(key string) time.Duration {
	val := konfig.String(key)
	if val == "" {
		return 0
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		slog.Warn("Invalid duration, ignoring", "key", strings.ToUpper(envPrefix+key), "value", val)
		return 0
	}
	return d
}

// parseBool parses a boolean environment variable value.
func parseBool(val string) bool {
	val = strings.ToLower(val)
	return val == "true" || val == "1" || val == "yes"
}

// newClient creates the wiki API client.
func (c *Config) newClient() *wikiapi.Client {
	return wikiapi.NewClient(
		wikiapi.WithBaseURL(c.APIURL),
		wikiapi.WithTimeout(c.Timeout),
		wikiapi.WithRateInterval(c.RateInterval),
		wikiapi.WithLogger(slog.Default()),
	)
}

// newSession creates a session over the configured API. The session reopens
// the last visited page from the state file.
func (c *Config) newSession(notifier wiki.Notifier, opts ...wiki.Option) *wiki.Session {
	base := []wiki.Option{
		wiki.WithLogger(slog.Default()),
		wiki.WithMessages(wiki.MessagesFor(c.Lang)),
		wiki.WithLocation(NewFileLocation(c.statePath())),
		wiki.WithNotifier(notifier),
	}
	return wiki.NewSession(c.newClient(), append(base, opts...)...)
}

// newExporter opens the export repository.
func (c *Config) newExporter() (*export.Exporter, error) {
	st, err := store.NewLocalStore(c.Dir,
		store.WithRemoteConfig(c.Remote),
		store.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	return export.NewExporter(st,
		export.WithLogger(slog.Default()),
		export.WithCommit(c.Remote.IsCommitEnabled()),
		export.WithPush(c.Remote.IsPushEnabled()),
	), nil
}

// newTerminal creates the glamour renderer used for page output (WIKI_TERMINAL_STYLE).
func newTerminal() (*render.Terminal, error) {
	return render.NewTerminal(render.DefaultTerminalWidth, konfig.String("terminal_style"))
}

func (c *Config) statePath() string {
	return filepath.Join(c.Dir, stateDir, stateFile)
}

// openSession creates a session and opens key, or the last visited page when key is empty.
func openSession(ctx context.Context, cfg *Config, key string) (*wiki.Session, error) {
	session := cfg.newSession(stderrNotifier())
	if key == "" {
		if err := session.Start(ctx); err != nil {
			return nil, fmt.Errorf("open wiki: %w", err)
		}
		return session, nil
	}
	if err := session.Navigate(ctx, key); err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	return session, nil
}

// stderrNotifier prints session notifications on stderr.
func stderrNotifier() wiki.Notifier {
	return wiki.NotifierFunc(func(_ context.Context, level wiki.Level, message string) {
		_, _ = fmt.Fprintf(os.Stderr, "[%s] %s\n", level, message)
	})
}
