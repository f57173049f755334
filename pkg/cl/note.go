package cl

import (
	"encoding/binary"
	"fmt"
	"io"

	"nomoscl/pkg/crypto"
)

// DeathConstraint identifies the program that must authorize spending a note.
// The zero value means the note is unconstrained.
type DeathConstraint [32]byte

// NoteCommitment binds a note's contents to its owner and nonce.
type NoteCommitment [32]byte

func (c NoteCommitment) Hex() string {
	return crypto.Hex(c[:])
}

// NoteWitness is the plaintext of a note.
type NoteWitness struct {
	Balance         BalanceWitness
	DeathConstraint DeathConstraint
	State           [32]byte
}

// NewNoteWitness creates an unconstrained note with a fresh balance blinding.
func NewNoteWitness(value uint64, unit string, state [32]byte, rng io.Reader) (NoteWitness, error) {
	bw, err := RandomBalanceWitness(value, unit, rng)
	if err != nil {
		return NoteWitness{}, fmt.Errorf("failed to create note: %w", err)
	}
	return NoteWitness{Balance: bw, State: state}, nil
}

// WithDeathConstraint returns a copy of n that requires dc to be satisfied
// when spent.
func (n NoteWitness) WithDeathConstraint(dc DeathConstraint) NoteWitness {
	n.DeathConstraint = dc
	return n
}

// Commit hashes the note contents together with the owner's nullifier
// commitment and the note nonce. The balance blinding is not part of the
// preimage, so re-blinding a note leaves its commitment unchanged.
func (n NoteWitness) Commit(nfPk NullifierCommitment, nonce NullifierNonce) NoteCommitment {
	var value [8]byte
	binary.LittleEndian.PutUint64(value[:], n.Balance.Value)
	up := n.Balance.UnitPoint()
	unit := up.Bytes()

	return crypto.Sha256(crypto.TagNoteCommit,
		value[:],
		unit[:],
		n.State[:],
		n.DeathConstraint[:],
		nfPk[:],
		nonce[:],
	)
}
