package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/giftstore-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/giftstore-backend/pkg/errors"
	"github.com/angelmondragon/giftstore-backend/pkg/logger"
)

const (
	sniffLen        = 512
	maxNameAttempts = 100
)

// File describes a stored upload.
type File struct {
	Name    string
	ModTime time.Time
}

// Storage keeps uploads of one kind in a flat directory on local disk.
type Storage struct {
	kind enums.MediaKind
	dir  string
	logg *logger.Logger
	now  func() time.Time
}

// NewStorage creates dir if needed.
func NewStorage(kind enums.MediaKind, dir string, logg *logger.Logger) (*Storage, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid media kind %q", kind)
	}
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("upload directory required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{kind: kind, dir: dir, logg: logg, now: time.Now}, nil
}

func (s *Storage) Dir() string { return s.dir }

// Save validates and writes one upload, returning the stored file name
// "<field>-<unix millis><ext>".
func (s *Storage) Save(ctx context.Context, field string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable upload")
	}
	defer src.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable upload")
	}
	head = head[:n]

	mimeType, consistent := detectMimeType(fh.Header.Get("Content-Type"), head)
	if !consistent || !mimeAllowed(s.kind, mimeType) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be %s", field, allowedMimeDescription(s.kind))).
			WithDetails(map[string]any{"field": field, "filename": fh.Filename, "mime_type": mimeType})
	}

	dst, name, err := s.create(field, extensionForMime(s.kind, mimeType))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store upload")
	}
	_, err = io.Copy(dst, io.MultiReader(bytes.NewReader(head), src))
	err = multierr.Append(err, dst.Close())
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store upload")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"media_kind": s.kind.String(),
		"file":       name,
		"bytes":      fh.Size,
		"mime_type":  mimeType,
	})
	s.logg.Debug(logCtx, "media.saved")
	return name, nil
}

// SaveAll stores every file or none: on failure the files already written in
// this call are removed before the error is returned.
func (s *Storage) SaveAll(ctx context.Context, field string, files []*multipart.FileHeader) ([]string, error) {
	names := make([]string, 0, len(files))
	for _, fh := range files {
		name, err := s.Save(ctx, field, fh)
		if err != nil {
			if rmErr := s.Remove(ctx, names...); rmErr != nil {
				s.logg.Error(ctx, "media.rollback_failed", rmErr)
			}
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Remove deletes the named files. Missing files are ignored.
func (s *Storage) Remove(ctx context.Context, names ...string) error {
	var errs error
	for _, name := range names {
		if name == "" {
			continue
		}
		if name != filepath.Base(name) || name == "." || name == ".." {
			errs = multierr.Append(errs, fmt.Errorf("refusing to remove %q", name))
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = multierr.Append(errs, err)
		}
	}
	if errs == nil && len(names) > 0 {
		s.logg.Debug(s.logg.WithField(ctx, "files", names), "media.removed")
	}
	return errs
}

// List returns the regular files currently stored.
func (s *Storage) List(ctx context.Context) ([]File, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		files = append(files, File{Name: entry.Name(), ModTime: info.ModTime()})
	}
	return files, nil
}

// create opens a new file exclusively, appending -1, -2... when two uploads
// land on the same millisecond.
func (s *Storage) create(field, ext string) (*os.File, string, error) {
	base := sanitizeField(field) + "-" + strconv.FormatInt(s.now().UnixMilli(), 10)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := base + ext
		if attempt > 0 {
			name = base + "-" + strconv.Itoa(attempt) + ext
		}
		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("no free file name for %s", base)
}

func sanitizeField(field string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return -1
	}, field)
	if clean == "" {
		return "file"
	}
	return clean
}
