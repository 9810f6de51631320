// Package storage keeps uploaded recordings on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/oklog/ulid/v2"

	"zoo-assistant/internal/domain"
)

// UploadStore writes uploads under dir as <ulid>_<sanitized name>.
// ULIDs sort by time, so a directory listing is in arrival order.
type UploadStore struct {
	dir      string
	maxBytes int64
}

func NewUploadStore(dir string, maxBytes int64) (*UploadStore, error) {
	if dir == "" {
		return nil, domain.ErrInvalidArgument
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &UploadStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *UploadStore) Dir() string { return s.dir }

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// SanitizeName strips directories and anything outside letters, digits, dot,
// underscore and dash.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "upload"
	}
	if r := []rune(name); len(r) > 100 {
		name = string(r[len(r)-100:])
	}
	return name
}

// Save copies r to a new file and returns its path and size. Reading more than
// maxBytes aborts with domain.ErrUploadTooLarge and removes the partial file;
// the returned path then names the file that was discarded.
func (s *UploadStore) Save(name string, r io.Reader) (string, int64, error) {
	path := filepath.Join(s.dir, ulid.Make().String()+"_"+SanitizeName(name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create upload: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = domain.ErrUploadTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, domain.ErrUploadTooLarge) {
			return path, n, err
		}
		return "", n, fmt.Errorf("write upload: %w", err)
	}
	return path, n, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *UploadStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
