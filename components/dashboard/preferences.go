package dashboard

import (
	"context"
	"fmt"
	"sync"
)

// ThemeStore persists the per-session theme preference.
type ThemeStore interface {
	Theme(ctx context.Context, sessionID string) (Theme, error)
	SaveTheme(ctx context.Context, sessionID string, theme Theme) error
}

// InMemoryThemeStore provides a concurrency-safe default store.
type InMemoryThemeStore struct {
	mu       sync.RWMutex
	data     map[string]Theme
	fallback Theme
}

// NewInMemoryThemeStore creates an empty store answering fallback for
// sessions that never saved a preference.
func NewInMemoryThemeStore(fallback Theme) *InMemoryThemeStore {
	return &InMemoryThemeStore{
		data:     make(map[string]Theme),
		fallback: ParseTheme(string(fallback)),
	}
}

// Theme returns the stored preference or the fallback.
func (s *InMemoryThemeStore) Theme(_ context.Context, sessionID string) (Theme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if theme, ok := s.data[sessionID]; ok {
		return theme, nil
	}
	return s.fallback, nil
}

// SaveTheme persists the preference for a session.
func (s *InMemoryThemeStore) SaveTheme(_ context.Context, sessionID string, theme Theme) error {
	if sessionID == "" {
		return fmt.Errorf("theme store requires session id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = ParseTheme(string(theme))
	return nil
}
