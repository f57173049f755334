package cl

import (
	"fmt"
	"io"

	"nomoscl/pkg/crypto"
)

// NullifierSecret is the spending key of a note. Whoever knows it can derive
// the nullifier of every note committed to its NullifierCommitment.
type NullifierSecret [16]byte

// NullifierCommitment is the public hash of a NullifierSecret. Notes commit
// to it so the secret never appears on the ledger.
type NullifierCommitment [32]byte

// NullifierNonce individualizes the nullifiers of notes sharing a secret.
type NullifierNonce [16]byte

// Nullifier is published when a note is spent.
type Nullifier [32]byte

// RandomNullifierSecret reads a fresh secret from rng.
func RandomNullifierSecret(rng io.Reader) (NullifierSecret, error) {
	var sk NullifierSecret
	if _, err := io.ReadFull(rng, sk[:]); err != nil {
		return sk, fmt.Errorf("failed to sample nullifier secret: %w", err)
	}
	return sk, nil
}

// Commit derives the nullifier commitment of sk.
func (sk NullifierSecret) Commit() NullifierCommitment {
	return crypto.Blake2s(crypto.TagNullCommit, sk[:])
}

// String keeps secrets out of logs.
func (sk NullifierSecret) String() string {
	return "NullifierSecret(redacted)"
}

func (c NullifierCommitment) Hex() string {
	return crypto.Hex(c[:])
}

// RandomNullifierNonce reads a fresh nonce from rng.
func RandomNullifierNonce(rng io.Reader) (NullifierNonce, error) {
	var n NullifierNonce
	if _, err := io.ReadFull(rng, n[:]); err != nil {
		return n, fmt.Errorf("failed to sample nullifier nonce: %w", err)
	}
	return n, nil
}

// NewNullifier derives the nullifier of the note with the given nonce.
func NewNullifier(sk NullifierSecret, nonce NullifierNonce) Nullifier {
	return crypto.Blake2s(crypto.TagNullifier, sk[:], nonce[:])
}

func (n Nullifier) Hex() string {
	return crypto.Hex(n[:])
}
