package cl

import (
	"fmt"
	"io"
)

// Output is the public view of a created note.
type Output struct {
	NoteComm NoteCommitment
	Balance  Balance
}

// OutputWitness holds the note being created and its recipient.
type OutputWitness struct {
	Note  NoteWitness
	NfPk  NullifierCommitment
	Nonce NullifierNonce
}

type OutputProof struct {
	Witness OutputWitness
}

// RandomOutputWitness addresses note to owner under a fresh nonce.
func RandomOutputWitness(note NoteWitness, owner NullifierCommitment, rng io.Reader) (OutputWitness, error) {
	nonce, err := RandomNullifierNonce(rng)
	if err != nil {
		return OutputWitness{}, err
	}
	return OutputWitness{Note: note, NfPk: owner, Nonce: nonce}, nil
}

// CommitNote returns the note commitment of the output.
func (w OutputWitness) CommitNote() NoteCommitment {
	return w.Note.Commit(w.NfPk, w.Nonce)
}

// Commit derives the public output.
func (w OutputWitness) Commit() Output {
	return Output{
		NoteComm: w.CommitNote(),
		Balance:  w.Note.Balance.Commit(),
	}
}

func (o Output) Prove(w OutputWitness) (OutputProof, error) {
	if w.Commit() != o {
		return OutputProof{}, fmt.Errorf("%w: witness does not open output %s", ErrProofFailed, o.NoteComm.Hex())
	}
	return OutputProof{Witness: w}, nil
}

func (o Output) Verify(proof OutputProof) bool {
	return proof.Witness.Commit() == o
}

// Bytes returns note_comm ‖ balance.
func (o Output) Bytes() [64]byte {
	var out [64]byte
	bal := o.Balance.Bytes()
	copy(out[0:32], o.NoteComm[:])
	copy(out[32:64], bal[:])
	return out
}
