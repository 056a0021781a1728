package credstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/vamshidandi/jobportal/internal/domain"
)

// MemoryStore keeps the pair in process memory. Used by tests and by runs
// that explicitly opt out of persistence.
type MemoryStore struct {
	mu      sync.Mutex
	pair    domain.TokenPair
	present bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, pair domain.TokenPair) error {
	if !pair.Complete() {
		return fmt.Errorf("refusing to save partial token pair")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	s.present = true
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (domain.TokenPair, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair, s.present, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = domain.TokenPair{}
	s.present = false
	return nil
}
