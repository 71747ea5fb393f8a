package store

import (
	"context"
	"errors"
	"testing"

	"github.com/fclairamb/wikisync/internal/apperrors"
)

func TestRemoteConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	var cfg *RemoteConfig
	cfg = cfg.WithDefaults()

	if cfg.Branch != DefaultBranch || cfg.User != DefaultUser || cfg.Email != DefaultEmail {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	custom := (&RemoteConfig{Branch: "pages"}).WithDefaults()
	if custom.Branch != "pages" {
		t.Errorf("explicit branch overwritten: %q", custom.Branch)
	}
}

func TestRemoteConfig_IsPushEnabled(t *testing.T) {
	t.Parallel()

	no := false
	tests := []struct {
		name string
		cfg  *RemoteConfig
		want bool
	}{
		{"nil", nil, false},
		{"no url", &RemoteConfig{}, false},
		{"url implies push", &RemoteConfig{URL: "https://git.example.com/wiki.git"}, true},
		{"explicit off", &RemoteConfig{URL: "https://git.example.com/wiki.git", Push: &no}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.cfg.IsPushEnabled(); got != tt.want {
				t.Errorf("IsPushEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRemoteConfig_GetAuth(t *testing.T) {
	t.Parallel()

	if _, err := (&RemoteConfig{}).GetAuth(); !errors.Is(err, apperrors.ErrRemoteNotConfigured) {
		t.Errorf("expected ErrRemoteNotConfigured, got %v", err)
	}

	cfg := &RemoteConfig{URL: "https://git.example.com/wiki.git"}
	if _, err := cfg.GetAuth(); !errors.Is(err, apperrors.ErrHTTPSPasswordRequired) {
		t.Errorf("expected ErrHTTPSPasswordRequired, got %v", err)
	}

	cfg.Password = "token"
	auth, err := cfg.GetAuth()
	if err != nil {
		t.Fatalf("GetAuth failed: %v", err)
	}
	if auth.Name() != "http-basic-auth" {
		t.Errorf("unexpected auth method %q", auth.Name())
	}

	if !(&RemoteConfig{URL: "git@github.com:acme/wiki.git"}).IsSSH() {
		t.Error("expected scp-style URL to be SSH")
	}
}

func TestRemoteConfig_TestConnectionNotConfigured(t *testing.T) {
	t.Parallel()

	err := (&RemoteConfig{}).TestConnection(context.Background())
	if !errors.Is(err, apperrors.ErrRemoteNotConfiguredSetURL) {
		t.Errorf("expected ErrRemoteNotConfiguredSetURL, got %v", err)
	}
}
