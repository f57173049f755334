package cl

import (
	"fmt"
	"io"

	"nomoscl/pkg/crypto"
	"nomoscl/pkg/merkle"
)

const (
	MaxInputs  = 8
	MaxOutputs = 8
)

// PtxRoot commits to every input and output of a partial transaction.
type PtxRoot [32]byte

// RandomPtxRoot is handy for proving a lone input outside any partial tx.
func RandomPtxRoot(rng io.Reader) (PtxRoot, error) {
	var r PtxRoot
	if _, err := io.ReadFull(rng, r[:]); err != nil {
		return r, fmt.Errorf("failed to sample ptx root: %w", err)
	}
	return r, nil
}

func (r PtxRoot) Hex() string {
	return crypto.Hex(r[:])
}

// PartialTx is an unbalanced group of inputs and outputs.
type PartialTx struct {
	Inputs  []Input
	Outputs []Output
}

type PartialTxWitness struct {
	Inputs  []InputWitness
	Outputs []OutputWitness
}

type PartialTxProof struct {
	Inputs  []InputProof
	Outputs []OutputProof
}

// PartialTxFromWitness commits every input and output of w.
func PartialTxFromWitness(w PartialTxWitness) (PartialTx, error) {
	if len(w.Inputs) > MaxInputs {
		return PartialTx{}, fmt.Errorf("%w: %d > %d", ErrTooManyInputs, len(w.Inputs), MaxInputs)
	}
	if len(w.Outputs) > MaxOutputs {
		return PartialTx{}, fmt.Errorf("%w: %d > %d", ErrTooManyOutputs, len(w.Outputs), MaxOutputs)
	}

	ptx := PartialTx{
		Inputs:  make([]Input, len(w.Inputs)),
		Outputs: make([]Output, len(w.Outputs)),
	}
	for i := range w.Inputs {
		ptx.Inputs[i] = w.Inputs[i].Commit()
	}
	for i := range w.Outputs {
		ptx.Outputs[i] = w.Outputs[i].Commit()
	}
	return ptx, nil
}

// CheckBounds rejects partial transactions with more than MaxInputs inputs or
// MaxOutputs outputs. Roots and paths of such a partial are undefined.
func (p PartialTx) CheckBounds() error {
	if len(p.Inputs) > MaxInputs {
		return fmt.Errorf("%w: %d > %d", ErrTooManyInputs, len(p.Inputs), MaxInputs)
	}
	if len(p.Outputs) > MaxOutputs {
		return fmt.Errorf("%w: %d > %d", ErrTooManyOutputs, len(p.Outputs), MaxOutputs)
	}
	return nil
}

func (p PartialTx) inputLeaves() [][32]byte {
	elems := make([][]byte, len(p.Inputs))
	for i := range p.Inputs {
		b := p.Inputs[i].Bytes()
		elems[i] = b[:]
	}
	return merkle.PaddedLeaves(MaxInputs, elems)
}

func (p PartialTx) outputLeaves() [][32]byte {
	elems := make([][]byte, len(p.Outputs))
	for i := range p.Outputs {
		b := p.Outputs[i].Bytes()
		elems[i] = b[:]
	}
	return merkle.PaddedLeaves(MaxOutputs, elems)
}

func (p PartialTx) InputRoot() [32]byte {
	return merkle.Root(p.inputLeaves())
}

func (p PartialTx) OutputRoot() [32]byte {
	return merkle.Root(p.outputLeaves())
}

// InputPath proves inclusion of input idx under InputRoot.
func (p PartialTx) InputPath(idx int) merkle.Path {
	return merkle.GeneratePath(p.inputLeaves(), idx)
}

// OutputPath proves inclusion of output idx under OutputRoot.
func (p PartialTx) OutputPath(idx int) merkle.Path {
	return merkle.GeneratePath(p.outputLeaves(), idx)
}

// Root is node(input_root, output_root).
func (p PartialTx) Root() PtxRoot {
	return merkle.Node(p.InputRoot(), p.OutputRoot())
}

// Balance returns Σ output balances − Σ input balances.
func (p PartialTx) Balance() Balance {
	in := make([]Balance, len(p.Inputs))
	for i := range p.Inputs {
		in[i] = p.Inputs[i].Balance
	}
	out := make([]Balance, len(p.Outputs))
	for i := range p.Outputs {
		out[i] = p.Outputs[i].Balance
	}
	return SumBalances(out...).Sub(SumBalances(in...))
}

// Equal compares inputs and outputs element-wise.
func (p PartialTx) Equal(o PartialTx) bool {
	if len(p.Inputs) != len(o.Inputs) || len(p.Outputs) != len(o.Outputs) {
		return false
	}
	for i := range p.Inputs {
		if p.Inputs[i] != o.Inputs[i] {
			return false
		}
	}
	for i := range p.Outputs {
		if p.Outputs[i] != o.Outputs[i] {
			return false
		}
	}
	return true
}

// Prove opens every input and output of p. Input proofs are bound to p.Root().
func (p PartialTx) Prove(w PartialTxWitness) (PartialTxProof, error) {
	return p.ProveWith(w, nil)
}

// ProveWith is Prove with a death-constraint attestation per input.
// deathProofs may be nil or must have one entry per input.
func (p PartialTx) ProveWith(w PartialTxWitness, deathProofs [][]byte) (PartialTxProof, error) {
	if deathProofs != nil && len(deathProofs) != len(p.Inputs) {
		return PartialTxProof{}, fmt.Errorf("%w: %d death proofs for %d inputs", ErrProofFailed, len(deathProofs), len(p.Inputs))
	}
	if len(w.Inputs) != len(p.Inputs) || len(w.Outputs) != len(p.Outputs) {
		return PartialTxProof{}, fmt.Errorf("%w: witness shape does not match partial tx", ErrProofFailed)
	}

	root := p.Root()
	proof := PartialTxProof{
		Inputs:  make([]InputProof, len(p.Inputs)),
		Outputs: make([]OutputProof, len(p.Outputs)),
	}
	for i := range p.Inputs {
		var dp []byte
		if deathProofs != nil {
			dp = deathProofs[i]
		}
		ip, err := p.Inputs[i].Prove(w.Inputs[i], root, dp)
		if err != nil {
			return PartialTxProof{}, fmt.Errorf("input %d: %w", i, err)
		}
		proof.Inputs[i] = ip
	}
	for i := range p.Outputs {
		op, err := p.Outputs[i].Prove(w.Outputs[i])
		if err != nil {
			return PartialTxProof{}, fmt.Errorf("output %d: %w", i, err)
		}
		proof.Outputs[i] = op
	}
	return proof, nil
}

// Verify checks proof for a partial tx of unconstrained notes.
func (p PartialTx) Verify(proof PartialTxProof) bool {
	return p.VerifyWith(proof, Unconstrained)
}

// VerifyWith checks proof with death constraints delegated to dv.
func (p PartialTx) VerifyWith(proof PartialTxProof, dv DeathConstraintVerifier) bool {
	if len(proof.Inputs) != len(p.Inputs) || len(proof.Outputs) != len(p.Outputs) {
		return false
	}
	root := p.Root()
	for i := range p.Inputs {
		if !p.Inputs[i].VerifyWith(root, proof.Inputs[i], dv) {
			return false
		}
	}
	for i := range p.Outputs {
		if !p.Outputs[i].Verify(proof.Outputs[i]) {
			return false
		}
	}
	return true
}
