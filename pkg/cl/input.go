package cl

import (
	"fmt"
	"io"
)

// Input is the public view of a spent note.
type Input struct {
	NoteComm  NoteCommitment
	Nullifier Nullifier
	Balance   Balance
}

// InputWitness holds what the spender knows about the note being spent.
type InputWitness struct {
	Note  NoteWitness
	NfSk  NullifierSecret
	Nonce NullifierNonce
}

// InputProof is the opening of an Input, bound to the partial transaction it
// appears in. DeathProof is passed to the DeathConstraintVerifier.
type InputProof struct {
	Witness    InputWitness
	PtxRoot    PtxRoot
	DeathProof []byte
}

// RandomInputWitness wraps note with a fresh spending key and nonce.
func RandomInputWitness(note NoteWitness, rng io.Reader) (InputWitness, error) {
	sk, err := RandomNullifierSecret(rng)
	if err != nil {
		return InputWitness{}, err
	}
	nonce, err := RandomNullifierNonce(rng)
	if err != nil {
		return InputWitness{}, err
	}
	return InputWitness{Note: note, NfSk: sk, Nonce: nonce}, nil
}

// NoteCommitment returns the commitment of the note being spent.
func (w InputWitness) NoteCommitment() NoteCommitment {
	return w.Note.Commit(w.NfSk.Commit(), w.Nonce)
}

// Commit derives the public input.
func (w InputWitness) Commit() Input {
	return Input{
		NoteComm:  w.NoteCommitment(),
		Nullifier: NewNullifier(w.NfSk, w.Nonce),
		Balance:   w.Note.Balance.Commit(),
	}
}

// ToOutputWitness returns the witness of the output that created this note.
func (w InputWitness) ToOutputWitness() OutputWitness {
	return OutputWitness{Note: w.Note, NfPk: w.NfSk.Commit(), Nonce: w.Nonce}
}

// Prove opens i with w for the partial transaction rooted at ptxRoot.
func (i Input) Prove(w InputWitness, ptxRoot PtxRoot, deathProof []byte) (InputProof, error) {
	if w.Commit() != i {
		return InputProof{}, fmt.Errorf("%w: witness does not open input %s", ErrProofFailed, i.NoteComm.Hex())
	}
	return InputProof{Witness: w, PtxRoot: ptxRoot, DeathProof: deathProof}, nil
}

// Verify checks proof against i and ptxRoot for an unconstrained note.
func (i Input) Verify(ptxRoot PtxRoot, proof InputProof) bool {
	return i.VerifyWith(ptxRoot, proof, Unconstrained)
}

// VerifyWith is Verify with the note's death constraint checked by dv.
func (i Input) VerifyWith(ptxRoot PtxRoot, proof InputProof, dv DeathConstraintVerifier) bool {
	if proof.PtxRoot != ptxRoot {
		return false
	}
	if proof.Witness.Commit() != i {
		return false
	}
	return dv.VerifyDeathConstraint(proof.Witness.Note.DeathConstraint, ptxRoot, proof.DeathProof)
}

// Bytes returns note_comm ‖ nullifier ‖ balance.
func (i Input) Bytes() [96]byte {
	var out [96]byte
	bal := i.Balance.Bytes()
	copy(out[0:32], i.NoteComm[:])
	copy(out[32:64], i.Nullifier[:])
	copy(out[64:96], bal[:])
	return out
}
