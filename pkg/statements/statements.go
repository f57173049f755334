// Package statements defines the guest programs proved by the ledger: the
// input-spend statement, the output-opening statement and the nullifier-only
// statement.
package statements

import (
	"errors"

	"nomoscl/pkg/zkvm"
)

var (
	ErrDecode       = zkvm.ErrDecode
	ErrPrivateInput = errors.New("unexpected private input type")
)

// Guests returns every statement guest, ready for zkvm.NewRegistry.
func Guests() []zkvm.Guest {
	return []zkvm.Guest{inputGuest{}, outputGuest{}, nullifierGuest{}}
}

// NewRegistry registers every statement guest.
func NewRegistry() *zkvm.Registry {
	return zkvm.NewRegistry(Guests()...)
}
