package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"
)

// ErrNotExist is returned by Open when no proof has the given name.
var ErrNotExist = errors.New("proof not found")

// ProofStore persists proof bytes under a stored name.
type ProofStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Uploader checks and saves proofs and derives their public URL.
type Uploader struct {
	Store   ProofStore
	Policy  Policy
	BaseURL string
	Now     func() time.Time
}

// Stored describes a saved proof.
type Stored struct {
	Name        string
	URL         string
	ContentType string
	Size        int64
}

// Save validates fh and, only if it passes, writes it to the store.
func (u *Uploader) Save(ctx context.Context, fh *multipart.FileHeader) (Stored, error) {
	ct, err := u.Policy.Check(fh)
	if err != nil {
		return Stored{}, err
	}

	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	name := StoredName(now(), fh.Filename)

	f, err := fh.Open()
	if err != nil {
		return Stored{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	if err := u.Store.Save(ctx, name, f, fh.Size, ct); err != nil {
		return Stored{}, fmt.Errorf("store proof %s: %w", name, err)
	}
	return Stored{Name: name, URL: PublicURL(u.BaseURL, name), ContentType: ct, Size: fh.Size}, nil
}

// LocalStore writes proofs into a directory on disk.
type LocalStore struct {
	Dir string
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{Dir: dir}, nil
}

func (s *LocalStore) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	path := filepath.Join(s.Dir, filepath.Base(name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.Dir, filepath.Base(name)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotExist
	}
	return f, err
}
