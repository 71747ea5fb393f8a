package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/fclairamb/wikisync/internal/apperrors"
)

const (
	msgRemoteRepoEmpty = "remote repository is empty"

	// File and directory permissions.
	dirPerm  = 0750 // Directory permissions: rwxr-x---
	filePerm = 0600 // File permissions: rw-------
)

// ErrTransactionDone is returned when a committed or rolled back transaction is reused.
var ErrTransactionDone = errors.New("transaction already finished")

// LocalStore implements Store on a local directory tracked by git.
type LocalStore struct {
	rootPath     string
	repo         *git.Repository
	mu           sync.RWMutex
	logger       *slog.Logger
	remoteConfig *RemoteConfig
}

// LocalStoreOption configures LocalStore.
type LocalStoreOption func(*LocalStore)

// WithLogger sets a custom logger for the store.
func WithLogger(l *slog.Logger) LocalStoreOption {
	return func(s *LocalStore) {
		s.logger = l
	}
}

// WithRemoteConfig sets the remote git configuration.
func WithRemoteConfig(cfg *RemoteConfig) LocalStoreOption {
	return func(s *LocalStore) {
		s.remoteConfig = cfg
	}
}

// NewLocalStore opens the repository at path. A missing directory is cloned
// from the remote when one is configured, and initialized otherwise.
func NewLocalStore(path string, opts ...LocalStoreOption) (*LocalStore, error) {
	store := &LocalStore{
		rootPath: path,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(store)
	}
	store.remoteConfig = store.remoteConfig.WithDefaults()

	repo, err := store.initializeRepository(path)
	if err != nil {
		return nil, err
	}

	store.repo = repo
	return store, nil
}

// Root returns the directory of the store.
func (s *LocalStore) Root() string {
	return s.rootPath
}

// RemoteConfig returns the remote configuration.
func (s *LocalStore) RemoteConfig() *RemoteConfig {
	return s.remoteConfig
}

// Read reads a file from the store.
func (s *LocalStore) Read(ctx context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath) //nolint:gosec // resolved inside the store root
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	s.logger.DebugContext(ctx, "Read file", "path", path, "size", len(data))
	return data, nil
}

// Exists checks if a file exists.
func (s *LocalStore) Exists(_ context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fullPath, err := s.resolve(path)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(fullPath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// List lists files in a directory. A missing directory lists as empty.
func (s *LocalStore) List(ctx context.Context, dir string) ([]FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fullPath, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, entry.Name()),
			IsDir:   entry.IsDir(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	s.logger.DebugContext(ctx, "Listed directory", "dir", dir, "count", len(files))
	return files, nil
}

// Write writes content to a file without staging it.
func (s *LocalStore) Write(ctx context.Context, path string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := writeFile(fullPath, content); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	s.logger.DebugContext(ctx, "Wrote file", "path", path, "size", len(content))
	return nil
}

// Delete deletes a file. A missing file is not an error.
func (s *LocalStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file %s: %w", path, err)
	}

	s.logger.DebugContext(ctx, "Deleted file", "path", path)
	return nil
}

// BeginTx starts a new transaction.
func (s *LocalStore) BeginTx(_ context.Context) (Transaction, error) {
	return &localTransaction{store: s}, nil
}

// HeadMessage returns the message of the last commit, empty when there is none.
func (s *LocalStore) HeadMessage() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, err := s.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get head: %w", err)
	}

	commit, err := s.repo.CommitObject(ref.Hash())
	if err != nil {
		return "", fmt.Errorf("get head commit: %w", err)
	}
	return commit.Message, nil
}

// Pull fetches and merges the configured branch. It is a no-op without a remote.
func (s *LocalStore) Pull(ctx context.Context) error {
	if !s.remoteConfig.IsEnabled() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	auth, err := s.remoteConfig.GetAuth()
	if err != nil {
		return fmt.Errorf("get auth: %w", err)
	}

	worktree, err := s.repo.Worktree()
	if err != nil {
		return fmt.Errorf("get worktree: %w", err)
	}

	s.logger.InfoContext(ctx, "Pulling from remote", "url", s.remoteConfig.URL, "branch", s.remoteConfig.Branch)

	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(s.remoteConfig.Branch),
		Auth:          auth,
	})
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "Pull complete")
		return nil
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		return nil
	case err.Error() == msgRemoteRepoEmpty:
		s.logger.InfoContext(ctx, "Remote repository is empty, nothing to pull")
		return nil
	default:
		return fmt.Errorf("pull: %w", err)
	}
}

// Push pushes local commits. It is a no-op without a remote.
func (s *LocalStore) Push(ctx context.Context) error {
	if !s.remoteConfig.IsEnabled() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	auth, err := s.remoteConfig.GetAuth()
	if err != nil {
		return fmt.Errorf("get auth: %w", err)
	}

	s.logger.InfoContext(ctx, "Pushing to remote", "url", s.remoteConfig.URL, "branch", s.remoteConfig.Branch)

	err = s.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		Auth:       auth,
	})
	if err != nil {
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			s.logger.InfoContext(ctx, "Nothing to push")
			return nil
		}
		return fmt.Errorf("push: %w", err)
	}

	s.logger.InfoContext(ctx, "Push complete")
	return nil
}

// localTransaction implements Transaction. Only the paths it touched are staged.
type localTransaction struct {
	store   *LocalStore
	changes []change
	mu      sync.Mutex
	done    bool
}

type change struct {
	path    string
	content []byte // nil means delete
}

// Write stages a file write.
func (t *localTransaction) Write(path string, content []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return ErrTransactionDone
	}
	if _, err := t.store.resolve(path); err != nil {
		return err
	}
	if content == nil {
		content = []byte{}
	}
	t.changes = append(t.changes, change{path: path, content: content})
	return nil
}

// Delete stages a file deletion.
func (t *localTransaction) Delete(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return ErrTransactionDone
	}
	if _, err := t.store.resolve(path); err != nil {
		return err
	}
	t.changes = append(t.changes, change{path: path})
	return nil
}

// Commit applies the staged changes and records a commit when anything changed.
func (t *localTransaction) Commit(message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return ErrTransactionDone
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	worktree, err := t.store.repo.Worktree()
	if err != nil {
		return fmt.Errorf("get worktree: %w", err)
	}

	for i := range t.changes {
		if err := t.applyChange(&t.changes[i], worktree); err != nil {
			return err
		}
	}
	t.done = true

	status, err := worktree.Status()
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}

	hasChanges := false
	for _, st := range status {
		if st.Staging != git.Unmodified && st.Staging != git.Untracked {
			hasChanges = true
			break
		}
	}
	if !hasChanges {
		t.store.logger.Debug("Nothing to commit")
		return nil
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  t.store.remoteConfig.User,
			Email: t.store.remoteConfig.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	t.store.logger.Info("Committed", "hash", hash.String()[:7], "files", len(t.changes))
	return nil
}

// Rollback discards all pending changes.
func (t *localTransaction) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.changes = nil
	t.done = true
	return nil
}

func (t *localTransaction) applyChange(c *change, worktree *git.Worktree) error {
	fullPath, err := t.store.resolve(c.path)
	if err != nil {
		return err
	}

	if c.content == nil {
		if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete %s: %w", c.path, err)
		}
		// Untracked files have nothing to remove from the index.
		_, _ = worktree.Remove(c.path)
		return nil
	}

	if err := writeFile(fullPath, c.content); err != nil {
		return fmt.Errorf("write %s: %w", c.path, err)
	}
	if _, err := worktree.Add(c.path); err != nil {
		return fmt.Errorf("git add %s: %w", c.path, err)
	}
	return nil
}

// resolve maps a store path to a file system path. Absolute paths and paths
// that climb out of the root are rejected.
func (s *LocalStore) resolve(path string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(path)) {
		return "", fmt.Errorf("%q: %w", path, apperrors.ErrPathOutsideStore)
	}
	return filepath.Join(s.rootPath, filepath.FromSlash(path)), nil
}

func writeFile(fullPath string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(fullPath), dirPerm); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	if err := os.WriteFile(fullPath, content, filePerm); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *LocalStore) initializeRepository(path string) (*git.Repository, error) {
	if _, err := os.Stat(path); err != nil && s.remoteConfig.IsEnabled() {
		return s.cloneFromRemote(path)
	}
	return s.openOrCreateLocalRepo(path)
}

func (s *LocalStore) cloneFromRemote(path string) (*git.Repository, error) {
	s.logger.Info("Cloning export repository", "url", s.remoteConfig.URL, "branch", s.remoteConfig.Branch)

	auth, err := s.remoteConfig.GetAuth()
	if err != nil {
		return nil, fmt.Errorf("get auth: %w", err)
	}

	repo, err := git.PlainClone(path, false, &git.CloneOptions{
		URL:           s.remoteConfig.URL,
		Auth:          auth,
		ReferenceName: plumbing.NewBranchReferenceName(s.remoteConfig.Branch),
		SingleBranch:  true,
	})
	if err == nil {
		return repo, nil
	}
	if err.Error() != msgRemoteRepoEmpty {
		return nil, fmt.Errorf("clone repository: %w", err)
	}

	s.logger.Info("Remote repository is empty, initializing locally")
	if err := os.MkdirAll(path, dirPerm); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	return s.initNewRepo(path)
}

func (s *LocalStore) openOrCreateLocalRepo(path string) (*git.Repository, error) {
	if err := os.MkdirAll(path, dirPerm); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	repo, err := git.PlainOpen(path)
	if err == nil {
		return s.ensureRemoteConfigured(repo)
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open git repo: %w", err)
	}

	return s.initNewRepo(path)
}

func (s *LocalStore) initNewRepo(path string) (*git.Repository, error) {
	repo, err := git.PlainInitWithOptions(path, &git.PlainInitOptions{
		InitOptions: git.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(s.remoteConfig.Branch),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("init git repo: %w", err)
	}

	if s.remoteConfig.IsEnabled() {
		if err := s.addRemote(repo); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (s *LocalStore) ensureRemoteConfigured(repo *git.Repository) (*git.Repository, error) {
	if !s.remoteConfig.IsEnabled() {
		return repo, nil
	}
	if _, err := repo.Remote("origin"); err == nil {
		return repo, nil
	}

	s.logger.Info("Adding remote origin to existing repository", "url", s.remoteConfig.URL)
	if err := s.addRemote(repo); err != nil {
		return nil, err
	}
	return repo, nil
}

func (s *LocalStore) addRemote(repo *git.Repository) error {
	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{s.remoteConfig.URL},
	}); err != nil {
		return fmt.Errorf("add remote origin: %w", err)
	}
	return nil
}
