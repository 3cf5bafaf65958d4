package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Theme is the dashboard color scheme preference
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"

	fileName = "theme"
)

// Store persists the theme preference as a single file
// ⭐ SSOT: 테마 상태는 이 스토어에서만 읽고 씀
type Store struct {
	path    string
	mu      sync.Mutex
	current Theme
}

// NewStore creates a store rooted at dir. An empty dir falls back to the
// user config directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		dir = filepath.Join(base, "kscreener")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create theme dir: %w", err)
	}

	s := &Store{path: filepath.Join(dir, fileName)}
	s.current = s.load()
	return s, nil
}

// load reads the persisted theme, falling back to Light
func (s *Store) load() Theme {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Light
	}

	switch Theme(strings.TrimSpace(string(data))) {
	case Dark:
		return Dark
	default:
		return Light
	}
}

// Current returns the active theme
func (s *Store) Current() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set persists the given theme. Repeated identical writes are no-ops.
func (s *Store) Set(t Theme) error {
	if t != Light && t != Dark {
		return fmt.Errorf("unknown theme: %q", t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t == s.current {
		return nil
	}

	if err := os.WriteFile(s.path, []byte(t), 0o644); err != nil {
		return fmt.Errorf("persist theme: %w", err)
	}

	s.current = t
	return nil
}

// Toggle flips between light and dark and persists the result
func (s *Store) Toggle() (Theme, error) {
	next := Light
	if s.Current() == Light {
		next = Dark
	}

	if err := s.Set(next); err != nil {
		return "", err
	}
	return next, nil
}
