package wordquiz

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Storage is the byte-store collaborator the pipeline hands documents to and
// fetches word lists from. Keys use forward slashes ("uploads/a.xlsx",
// "generated/questions_....pdf").
type Storage interface {
	Upload(key string, data []byte, contentType string) error
	Open(key string) ([]byte, error)
	// List returns keys under prefix with the given extension (lowercase,
	// with dot), newest first.
	List(prefix, ext string) ([]string, error)
	// URL returns a directly fetchable location for a stored object.
	URL(key string) (string, error)
}

// LocalStorage keeps objects as plain files under a root directory.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates the root directory if needed.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	return &LocalStorage{root: root}, nil
}

func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *LocalStorage) Upload(key string, data []byte, contentType string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	VerboseLog("Stored %s (%d bytes, %s)", key, len(data), contentType)
	return nil
}

func (s *LocalStorage) Open(key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// URL has no presigning to do for local files; it resolves the key to an
// absolute path on disk.
func (s *LocalStorage) URL(key string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	return filepath.Abs(p)
}

func (s *LocalStorage) List(prefix, ext string) ([]string, error) {
	base, err := s.path(prefix)
	if err != nil {
		return nil, err
	}
	type entry struct {
		key string
		mod int64
	}
	var entries []entry
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ext) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		entries = append(entries, entry{key: filepath.ToSlash(rel), mod: info.ModTime().UnixNano()})
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].mod != entries[j].mod {
			return entries[i].mod > entries[j].mod
		}
		return entries[i].key < entries[j].key
	})
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys, nil
}
