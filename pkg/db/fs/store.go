package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-playground/validator"
	"github.com/mitchellh/go-homedir"
	"github.com/trusttrade/trusttrade/pkg/db"
	"github.com/trusttrade/trusttrade/pkg/runtime"
	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFilename = "interests.yaml"
)

var (
	validate = validator.New()
)

// Store keeps interest records in a single yaml file.
type Store struct {
	sync.Mutex
	Path string `validate:"required"`

	entries map[v1.ID]db.Interest
}

// New opens the store at path, reading any records already there. An empty
// path uses the user's state directory.
func New(path string) (*Store, error) {
	if path == "" {
		p, err := runtime.StateFile(DefaultFilename)
		if err != nil {
			return nil, fmt.Errorf("unable to locate interest log: %w", err)
		}
		path = p
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("unable to expand %s: %w", path, err)
	}

	s := Store{Path: expanded, entries: map[v1.ID]db.Interest{}}
	if err := validate.Struct(&s); err != nil {
		return nil, err
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", s.Path, err)
	}

	var list []db.Interest
	if err := yaml.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("unable to parse %s: %w", s.Path, err)
	}
	for i, in := range list {
		if err := validate.Struct(in); err != nil {
			return fmt.Errorf("invalid interest %d in %s: %w", i, s.Path, err)
		}
		if prev, ok := s.entries[in.AssetID]; ok && prev.At.After(in.At) {
			continue
		}
		s.entries[in.AssetID] = in
	}
	return nil
}

func (s *Store) StoragePath() string {
	return s.Path
}

func (s *Store) Get(id v1.ID) (db.Interest, error) {
	s.Lock()
	defer s.Unlock()
	in, ok := s.entries[id]
	if !ok {
		return db.Interest{}, db.ErrNoInterestFound
	}
	return in, nil
}

// Record stores in, replacing any earlier record for the same asset, and
// writes the whole log back to disk.
func (s *Store) Record(in db.Interest) error {
	if err := validate.Struct(in); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	prev, existed := s.entries[in.AssetID]
	s.entries[in.AssetID] = in
	if err := s.write(); err != nil {
		if existed {
			s.entries[in.AssetID] = prev
		} else {
			delete(s.entries, in.AssetID)
		}
		return err
	}
	return nil
}

// ListAll returns records newest first.
func (s *Store) ListAll() ([]db.Interest, error) {
	s.Lock()
	defer s.Unlock()
	return s.sorted(), nil
}

func (s *Store) sorted() []db.Interest {
	list := make([]db.Interest, 0, len(s.entries))
	for _, in := range s.entries {
		list = append(list, in)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].At.Equal(list[j].At) {
			return list[i].AssetID < list[j].AssetID
		}
		return list[i].At.After(list[j].At)
	})
	return list
}

// write replaces the file atomically. Callers hold the lock.
func (s *Store) write() error {
	b, err := yaml.Marshal(s.sorted())
	if err != nil {
		return fmt.Errorf("unable to marshal interests: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("unable to create %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, ".interests-*.yaml")
	if err != nil {
		return fmt.Errorf("unable to write interests: %w", err)
	}
	defer os.Remove(f.Name()) //nolint:errcheck

	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("unable to write interests: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("unable to sync interests: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), s.Path)
}

var _ db.InterestLog = (*Store)(nil)
