// Package storage abstracts the folder/file backend the pipeline reads
// evidence from and persists artifacts to.
package storage

import "context"

// Entry is one child of a listed directory.
type Entry struct {
	ID    string // backend identifier; a path for the local backend
	Name  string
	IsDir bool
}

// Backend lists and reads visit folders and durably persists artifacts.
// A completed Write must be visible to subsequent Reads before it returns.
type Backend interface {
	List(ctx context.Context, dir string) ([]Entry, error)
	Read(ctx context.Context, id string) ([]byte, error)
	Write(ctx context.Context, dir, name string, data []byte) error
	EnsureDir(ctx context.Context, parent, name string) (string, error)
	Exists(ctx context.Context, dir, name string) (bool, error)
}
