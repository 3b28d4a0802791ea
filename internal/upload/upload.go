// Package upload stores problem screenshots on local disk.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/yourname/leettrack/internal"
)

const (
	MaxScreenshotSize = 5 << 20
	// URLPrefix is where the API serves the upload directory.
	URLPrefix = "/uploads/"
	sniffLen  = 3072
)

var (
	ErrTooLarge = fmt.Errorf("%w: screenshot exceeds 5MB", internal.ErrInvalidInput)
	ErrNotImage = fmt.Errorf("%w: only image files are allowed", internal.ErrInvalidInput)
	ErrForeign  = fmt.Errorf("%w: not a screenshot issued by this server", internal.ErrInvalidInput)
)

type Store struct {
	dir    string
	logger internal.Logger
}

func NewStore(dir string, logger internal.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

func (s *Store) Dir() string { return s.dir }

// SaveFile stores a multipart upload and returns its public URL.
func (s *Store) SaveFile(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxScreenshotSize {
		return "", ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("upload: open: %w", err)
	}
	defer f.Close()
	return s.Save(f)
}

// Save sniffs r, rejects anything that is not an image or is over
// MaxScreenshotSize, and writes it under a random name.
func (s *Store) Save(r io.Reader) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("upload: read: %w", err)
	}
	head = head[:n]

	mtype := mimetype.Detect(head)
	// svg is served inline and can carry scripts
	if !strings.HasPrefix(mtype.String(), "image/") || mtype.Is("image/svg+xml") {
		return "", ErrNotImage
	}

	name := uuid.NewString() + mtype.Extension()
	dst := filepath.Join(s.dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("upload: create: %w", err)
	}

	body := io.MultiReader(bytes.NewReader(head), r)
	written, err := io.Copy(out, io.LimitReader(body, MaxScreenshotSize+1))
	closeErr := out.Close()
	if err == nil && written > MaxScreenshotSize {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dst)
		return "", err
	}

	s.logger.Debugf("stored screenshot %s (%s, %d bytes)", name, mtype.String(), written)
	return URLPrefix + name, nil
}

// fileName returns the on-disk name behind url when url has the shape Save
// issues: URLPrefix, a uuid, and an optional extension.
func fileName(url string) (string, bool) {
	name, ok := strings.CutPrefix(url, URLPrefix)
	if !ok || name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", false
	}
	if _, err := uuid.Parse(strings.TrimSuffix(name, filepath.Ext(name))); err != nil {
		return "", false
	}
	return name, true
}

// Remove deletes a file previously returned by Save. URLs outside the upload
// prefix and files already gone are ignored; anything else under the prefix
// that Save could not have issued is refused.
func (s *Store) Remove(url string) error {
	if !strings.HasPrefix(url, URLPrefix) {
		return nil
	}
	name, ok := fileName(url)
	if !ok {
		return ErrForeign
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
