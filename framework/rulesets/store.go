package rulesets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/km-arc/go-payload/framework/http/validation"
)

// Store holds rule sets by name. It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	sets map[string]*RuleSet
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{sets: make(map[string]*RuleSet)}
}

// Put adds or replaces a rule set.
func (s *Store) Put(rs *RuleSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[rs.Name] = rs
}

// Get returns the rule set called name, or ErrNotFound.
func (s *Store) Get(name string) (*RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs, ok := s.sets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return rs, nil
}

// Names returns the stored names, sorted.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.sets))
	for n := range s.sets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len is the number of stored rule sets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sets)
}

func isRuleSetFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// LoadDir reads every *.yaml, *.yml and *.json file under dir, verifies it
// against reg (when non-nil) and stores it. A missing dir loads nothing.
// The first bad file aborts the load; rule sets read before it stay stored.
func (s *Store) LoadDir(dir string, reg *validation.Registry, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		log.Warn("rule set directory not found", "dir", dir)
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isRuleSetFile(path) {
			return nil
		}
		rs, err := ReadFile(path)
		if err != nil {
			return err
		}
		if reg != nil {
			if err := rs.Verify(reg); err != nil {
				return err
			}
		}
		s.mu.RLock()
		_, dup := s.sets[rs.Name]
		s.mu.RUnlock()
		if dup {
			return fmt.Errorf("%w: duplicate name %q in %s", ErrInvalidRuleSet, rs.Name, path)
		}
		s.Put(rs)
		log.Debug("rule set loaded", "name", rs.Name, "file", path, "fields", len(rs.Rules))
		return nil
	})
}
