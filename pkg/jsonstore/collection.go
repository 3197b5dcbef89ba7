// Package jsonstore persists whole collections of records as indented JSON
// arrays on local disk. Every write replaces the file atomically and all
// read-modify-write cycles on a collection are serialized.
package jsonstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/angelmondragon/giftstore-backend/pkg/metrics"
)

const defaultFileMode fs.FileMode = 0o644

type options struct {
	locker  Locker
	metrics *metrics.StoreMetrics
	mode    fs.FileMode
}

// Option customizes a Collection.
type Option func(*options)

// WithLocker adds a cross-process lock acquired after the in-process one.
func WithLocker(l Locker) Option {
	return func(o *options) { o.locker = l }
}

func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithFileMode(mode fs.FileMode) Option {
	return func(o *options) { o.mode = mode }
}

// Collection is a JSON array of T stored in a single file.
type Collection[T any] struct {
	name    string
	path    string
	local   *MutexLocker
	remote  Locker
	metrics *metrics.StoreMetrics
	mode    fs.FileMode
}

// NewCollection binds a collection name to its file path.
func NewCollection[T any](name, path string, opts ...Option) (*Collection[T], error) {
	if name == "" {
		return nil, errors.New("collection name is required")
	}
	if path == "" {
		return nil, errors.New("collection path is required")
	}
	cfg := options{mode: defaultFileMode}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Collection[T]{
		name:    name,
		path:    path,
		local:   NewMutexLocker(),
		remote:  cfg.locker,
		metrics: cfg.metrics,
		mode:    cfg.mode,
	}, nil
}

func (c *Collection[T]) Name() string { return c.name }
func (c *Collection[T]) Path() string { return c.path }

// Load returns every record in the collection. A missing or blank file is an
// empty collection; malformed JSON is reported as an error.
func (c *Collection[T]) Load(ctx context.Context) (records []T, err error) {
	start := time.Now()
	defer func() { c.metrics.Observe(c.name, "load", time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.read()
}

// Save replaces the collection contents with records.
func (c *Collection[T]) Save(ctx context.Context, records []T) (err error) {
	start := time.Now()
	defer func() { c.metrics.Observe(c.name, "save", time.Since(start), err) }()

	release, err := c.lock(ctx)
	if err != nil {
		return err
	}
	defer release()
	return c.write(records)
}

// Update runs a read-modify-write cycle under the collection lock. The records
// returned by fn are persisted; if fn fails nothing is written.
func (c *Collection[T]) Update(ctx context.Context, fn func(records []T) ([]T, error)) (err error) {
	start := time.Now()
	defer func() { c.metrics.Observe(c.name, "update", time.Since(start), err) }()

	release, err := c.lock(ctx)
	if err != nil {
		return err
	}
	defer release()

	records, err := c.read()
	if err != nil {
		return err
	}
	next, err := fn(records)
	if err != nil {
		return err
	}
	return c.write(next)
}

// View runs fn against a snapshot taken under the collection lock.
func (c *Collection[T]) View(ctx context.Context, fn func(records []T) error) error {
	release, err := c.lock(ctx)
	if err != nil {
		return err
	}
	defer release()

	records, err := c.read()
	if err != nil {
		return err
	}
	return fn(records)
}

func (c *Collection[T]) lock(ctx context.Context) (func(), error) {
	releaseLocal, err := c.local.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", c.name, err)
	}
	if c.remote == nil {
		return func() { releaseLocal(context.Background()) }, nil
	}
	releaseRemote, err := c.remote.Lock(ctx)
	if err != nil {
		releaseLocal(context.Background())
		return nil, fmt.Errorf("lock %s: %w", c.name, err)
	}
	return func() {
		// The remote lock expires on its own if this release fails.
		_ = releaseRemote(context.Background())
		releaseLocal(context.Background())
	}, nil
}

func (c *Collection[T]) read() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", c.name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.name, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func (c *Collection[T]) write(records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	if err := writeFileAtomic(c.path, data, c.mode); err != nil {
		return fmt.Errorf("write %s: %w", c.name, err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it into
// place so readers never observe a partial document.
func writeFileAtomic(path string, data []byte, mode fs.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, mode); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
