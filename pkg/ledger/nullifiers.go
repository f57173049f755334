package ledger

import (
	"fmt"
	"sync"

	"nomoscl/pkg/cl"
	"nomoscl/pkg/metrics"
)

// NullifierSet records spent notes.
type NullifierSet struct {
	spent map[cl.Nullifier]struct{}
	mu    sync.RWMutex
}

func NewNullifierSet() *NullifierSet {
	return &NullifierSet{spent: make(map[cl.Nullifier]struct{})}
}

func (s *NullifierSet) Contains(nf cl.Nullifier) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.spent[nf]
	return ok
}

func (s *NullifierSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.spent)
}

// Insert marks nf as spent.
func (s *NullifierSet) Insert(nf cl.Nullifier) error {
	return s.InsertAll(nf)
}

// InsertAll marks every nullifier as spent, or none of them if any is already
// spent or repeated.
func (s *NullifierSet) InsertAll(nfs ...cl.Nullifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[cl.Nullifier]struct{}, len(nfs))
	for _, nf := range nfs {
		if _, ok := s.spent[nf]; ok {
			return fmt.Errorf("%w: %s", ErrAlreadySpent, nf.Hex())
		}
		if _, ok := batch[nf]; ok {
			return fmt.Errorf("%w: %s", ErrAlreadySpent, nf.Hex())
		}
		batch[nf] = struct{}{}
	}
	for nf := range batch {
		s.spent[nf] = struct{}{}
	}
	metrics.NullifierSetSize.Set(float64(len(s.spent)))
	return nil
}
