package contacts

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Compile-time assertion that MemStore satisfies the Store interface.
var _ Store = (*MemStore)(nil)

// MemStore is a thread-safe, in-memory implementation of [Store].
// The zero value is ready to use.
type MemStore struct {
	mu       sync.RWMutex
	contacts map[string]Contact
}

// NewMemStore returns an initialised [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{
		contacts: make(map[string]Contact),
	}
}

// Add implements [Store.Add].
func (s *MemStore) Add(ctx context.Context, c Contact) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.contacts == nil {
		s.contacts = make(map[string]Contact)
	}
	if _, exists := s.contacts[c.DisplayName]; exists {
		return fmt.Errorf("contacts: add %q: %w", c.DisplayName, ErrDuplicateName)
	}
	s.contacts[c.DisplayName] = c
	return nil
}

// Get implements [Store.Get].
func (s *MemStore) Get(ctx context.Context, displayName string) (Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[displayName]
	if !ok {
		return Contact{}, ErrNotFound
	}
	return c, nil
}

// List implements [Store.List]. The returned slice is owned by the caller;
// ordering by display name keeps ambiguity shortlists stable across runs.
func (s *MemStore) List(ctx context.Context) ([]Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		result = append(result, c)
	}
	slices.SortFunc(result, func(a, b Contact) int {
		return strings.Compare(a.DisplayName, b.DisplayName)
	})
	return result, nil
}

// Remove implements [Store.Remove].
func (s *MemStore) Remove(ctx context.Context, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contacts[displayName]; !ok {
		return ErrNotFound
	}
	delete(s.contacts, displayName)
	return nil
}
