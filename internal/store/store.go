// Package store keeps exported wiki pages in a local git repository.
package store

import (
	"context"
	"time"
)

// FileInfo represents file metadata.
type FileInfo struct {
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Store abstracts the directory pages are exported to.
type Store interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
	List(ctx context.Context, dir string) ([]FileInfo, error)

	Write(ctx context.Context, path string, content []byte) error
	Delete(ctx context.Context, path string) error

	// BeginTx groups writes into one commit.
	BeginTx(ctx context.Context) (Transaction, error)

	// Pull brings in remote commits so a following push fast-forwards.
	Pull(ctx context.Context) error
	Push(ctx context.Context) error
}

// Transaction groups multiple operations into one commit.
type Transaction interface {
	Write(path string, content []byte) error
	Delete(path string) error
	Commit(message string) error
	Rollback() error
}
