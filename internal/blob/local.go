package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalOpener serves the container/blob layout from a directory on disk.
type LocalOpener struct {
	root string
}

func NewLocalOpener(root string) *LocalOpener {
	return &LocalOpener{root: filepath.Clean(root)}
}

func (o *LocalOpener) path(location string) (string, error) {
	container, name, err := SplitLocation(location)
	if err != nil {
		return "", err
	}
	return filepath.Join(o.root, container, filepath.FromSlash(name)), nil
}

func (o *LocalOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := o.path(location)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
		}
		return nil, err
	}
	return f, nil
}

func (o *LocalOpener) Upload(ctx context.Context, location string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := o.path(location)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", location, err)
	}
	return f.Close()
}
