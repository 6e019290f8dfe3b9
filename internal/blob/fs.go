package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FS stores blobs as files under a root directory. Keys are slash
// separated relative paths.
type FS struct {
	root string
}

func NewFS(root string) *FS {
	return &FS{root: root}
}

func (f *FS) path(key string) string {
	return filepath.Join(f.root, filepath.FromSlash(strings.TrimPrefix(key, "/")))
}

func (f *FS) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	p := f.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return 0, err
	}
	tmp := p + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(file, r)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return 0, err
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	return n, nil
}

func (f *FS) Get(ctx context.Context, key string, rng *ByteRange) (io.ReadCloser, error) {
	file, err := os.Open(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	if rng == nil {
		return file, nil
	}
	if _, err := file.Seek(rng.Start, io.SeekStart); err != nil {
		file.Close()
		return nil, err
	}
	return &limitedFile{Reader: io.LimitReader(file, rng.Len()), file: file}, nil
}

func (f *FS) Head(ctx context.Context, key string) (int64, error) {
	info, err := os.Stat(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotExist
		}
		return 0, err
	}
	return info.Size(), nil
}

func (f *FS) Delete(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

type limitedFile struct {
	io.Reader
	file *os.File
}

func (l *limitedFile) Close() error { return l.file.Close() }
