package zkvm

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
)

// Guest is a program whose execution a Prover attests to. Run checks the
// statement against the private input and returns the public values to commit
// to the journal.
type Guest interface {
	Image() ImageID
	Run(private any) (any, error)
}

// Prover produces receipts for registered guests.
type Prover interface {
	Prove(ctx context.Context, id ImageID, private any) (*Receipt, error)
}

// Verifier checks receipts. It never decodes the journal.
type Verifier interface {
	Verify(r *Receipt, id ImageID) bool
}

// Registry maps image IDs to guests.
type Registry struct {
	mu     sync.RWMutex
	guests map[ImageID]Guest
}

func NewRegistry(guests ...Guest) *Registry {
	r := &Registry{guests: make(map[ImageID]Guest)}
	for _, g := range guests {
		r.Register(g)
	}
	return r
}

func (r *Registry) Register(g Guest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guests[g.Image()] = g
}

func (r *Registry) Lookup(id ImageID) (Guest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.guests[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownImage, id)
	}
	return g, nil
}

// execute runs the guest and returns its encoded journal.
func (r *Registry) execute(id ImageID, private any) ([]byte, error) {
	g, err := r.Lookup(id)
	if err != nil {
		return nil, err
	}
	public, err := g.Run(private)
	if err != nil {
		return nil, fmt.Errorf("guest %s: %w", id, err)
	}
	journal, err := rlp.EncodeToBytes(public)
	if err != nil {
		return nil, fmt.Errorf("failed to encode journal: %w", err)
	}
	return journal, nil
}
