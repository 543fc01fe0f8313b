package storage

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
)

// Local is a filesystem-backed Backend. It takes an afero.Fs so tests can run
// against an in-memory filesystem.
type Local struct {
	fs afero.Fs
}

// NewLocal creates a Local backend over the given filesystem.
func NewLocal(fs afero.Fs) *Local {
	return &Local{fs: fs}
}

func (l *Local) List(_ context.Context, dir string) ([]Entry, error) {
	infos, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return nil, eris.Wrapf(err, "storage: list %s", dir)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{
			ID:    filepath.Join(dir, info.Name()),
			Name:  info.Name(),
			IsDir: info.IsDir(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (l *Local) Read(_ context.Context, id string) ([]byte, error) {
	data, err := afero.ReadFile(l.fs, id)
	if err != nil {
		return nil, eris.Wrapf(err, "storage: read %s", id)
	}
	return data, nil
}

func (l *Local) Write(_ context.Context, dir, name string, data []byte) error {
	if err := l.fs.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "storage: mkdir %s", dir)
	}
	path := filepath.Join(dir, name)
	if err := afero.WriteFile(l.fs, path, data, 0o644); err != nil {
		return eris.Wrapf(err, "storage: write %s", path)
	}
	return nil
}

func (l *Local) EnsureDir(_ context.Context, parent, name string) (string, error) {
	path := filepath.Join(parent, name)
	if err := l.fs.MkdirAll(path, 0o755); err != nil {
		return "", eris.Wrapf(err, "storage: ensure dir %s", path)
	}
	return path, nil
}

func (l *Local) Exists(_ context.Context, dir, name string) (bool, error) {
	ok, err := afero.Exists(l.fs, filepath.Join(dir, name))
	if err != nil {
		return false, eris.Wrapf(err, "storage: stat %s", filepath.Join(dir, name))
	}
	return ok, nil
}
