package jsonstore

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Sequence hands out identifiers of the form <prefix><NNN>, zero padded to
// three digits. The highest number ever issued is kept in a sidecar file so a
// deleted record's identifier is never handed out again.
//
// Next must be called while the owning collection is locked.
type Sequence struct {
	prefix string
	path   string
	mu     sync.Mutex
}

// NewSequence builds a sequence persisted at path (usually "<collection>.seq").
func NewSequence(prefix, path string) (*Sequence, error) {
	if prefix == "" {
		return nil, errors.New("sequence prefix is required")
	}
	if path == "" {
		return nil, errors.New("sequence path is required")
	}
	return &Sequence{prefix: prefix, path: path}, nil
}

// SidecarPath returns the conventional sequence file for a collection file.
func SidecarPath(collectionPath string) string {
	return collectionPath + ".seq"
}

// Next returns the identifier after both the stored high-water mark and the
// largest identifier present in existing.
func (s *Sequence) Next(existing []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	high, err := s.readHighWater()
	if err != nil {
		return "", err
	}
	for _, id := range existing {
		if n, ok := s.number(id); ok && n > high {
			high = n
		}
	}
	next := high + 1
	if err := writeFileAtomic(s.path, []byte(strconv.Itoa(next)+"\n"), defaultFileMode); err != nil {
		return "", fmt.Errorf("persist sequence %s: %w", s.prefix, err)
	}
	return s.Format(next), nil
}

// Format renders n with the sequence prefix.
func (s *Sequence) Format(n int) string {
	return fmt.Sprintf("%s%03d", s.prefix, n)
}

func (s *Sequence) number(id string) (int, bool) {
	if !strings.HasPrefix(id, s.prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, s.prefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (s *Sequence) readHighWater() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read sequence %s: %w", s.prefix, err)
	}
	raw := string(bytes.TrimSpace(data))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse sequence %s: %w", s.prefix, err)
	}
	return n, nil
}
