package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/fclairamb/wikisync/internal/apperrors"
)

// Defaults for commit metadata and the tracked branch.
const (
	DefaultBranch = "main"
	DefaultUser   = "wikisync"
	DefaultEmail  = "wikisync@local"
)

// RemoteConfig holds configuration for the export repository's git remote.
type RemoteConfig struct {
	URL      string // Remote git repository URL (WIKI_GIT_URL)
	Password string // Password/token for HTTPS auth (WIKI_GIT_PASS)
	Branch   string // Target branch (WIKI_GIT_BRANCH)
	User     string // Commit author name (WIKI_GIT_USER)
	Email    string // Commit author email (WIKI_GIT_EMAIL)
	Commit   bool   // Commit after each export (WIKI_COMMIT)
	Push     *bool  // Push after commits (WIKI_PUSH), nil means auto-detect
}

// WithDefaults fills unset fields with their defaults.
func (c *RemoteConfig) WithDefaults() *RemoteConfig {
	if c == nil {
		c = &RemoteConfig{}
	}
	if c.Branch == "" {
		c.Branch = DefaultBranch
	}
	if c.User == "" {
		c.User = DefaultUser
	}
	if c.Email == "" {
		c.Email = DefaultEmail
	}
	return c
}

// IsEnabled returns true if a remote is configured.
func (c *RemoteConfig) IsEnabled() bool {
	return c != nil && c.URL != ""
}

// IsSSH returns true if the URL is an SSH URL.
func (c *RemoteConfig) IsSSH() bool {
	if c == nil || c.URL == "" {
		return false
	}
	return strings.HasPrefix(c.URL, "git@") || strings.HasPrefix(c.URL, "ssh://")
}

// IsCommitEnabled returns true if exports are committed.
func (c *RemoteConfig) IsCommitEnabled() bool {
	return c != nil && c.Commit
}

// IsPushEnabled returns true if commits are pushed.
// When WIKI_PUSH is not set, it defaults to true if WIKI_GIT_URL is set.
func (c *RemoteConfig) IsPushEnabled() bool {
	if c == nil {
		return false
	}
	if c.Push != nil {
		return *c.Push
	}
	return c.URL != ""
}

// GetAuth returns the authentication method matching the remote URL.
func (c *RemoteConfig) GetAuth() (transport.AuthMethod, error) {
	if !c.IsEnabled() {
		return nil, apperrors.ErrRemoteNotConfigured
	}

	if c.IsSSH() {
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			return nil, fmt.Errorf("create SSH agent auth: %w", err)
		}
		return auth, nil
	}

	if c.Password == "" {
		return nil, apperrors.ErrHTTPSPasswordRequired
	}

	return &http.BasicAuth{
		Username: "oauth2",
		Password: c.Password,
	}, nil
}

// TestConnection lists the remote references to check connectivity and credentials.
func (c *RemoteConfig) TestConnection(ctx context.Context) error {
	if !c.IsEnabled() {
		return apperrors.ErrRemoteNotConfiguredSetURL
	}

	auth, err := c.GetAuth()
	if err != nil {
		return fmt.Errorf("get auth: %w", err)
	}

	rem := git.NewRemote(nil, &config.RemoteConfig{
		Name: "origin",
		URLs: []string{c.URL},
	})

	if _, err := rem.ListContext(ctx, &git.ListOptions{Auth: auth}); err != nil {
		if err.Error() == msgRemoteRepoEmpty {
			return nil
		}
		return fmt.Errorf("list remote: %w", err)
	}

	return nil
}
