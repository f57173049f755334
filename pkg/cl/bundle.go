package cl

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"nomoscl/pkg/crypto"
)

// Bundle is a set of partial transactions that must balance as a whole.
type Bundle struct {
	Partials []PartialTx
}

// BundleWitness carries the partial witnesses and the aggregate blinding
// r = Σ output blindings − Σ input blindings across all partials.
type BundleWitness struct {
	Partials        []PartialTxWitness
	BalanceBlinding fr.Element
}

// BundleProof reveals the aggregate blinding so anyone can check that the
// bundle commits to zero value.
type BundleProof struct {
	Partials        []PartialTxProof
	BalanceBlinding fr.Element
}

// BundleFromWitness commits every partial of w.
func BundleFromWitness(w BundleWitness) (Bundle, error) {
	b := Bundle{Partials: make([]PartialTx, len(w.Partials))}
	for i := range w.Partials {
		ptx, err := PartialTxFromWitness(w.Partials[i])
		if err != nil {
			return Bundle{}, fmt.Errorf("partial %d: %w", i, err)
		}
		b.Partials[i] = ptx
	}
	return b, nil
}

// ComputeBalanceBlinding sums output blindings minus input blindings of w.
func (w BundleWitness) ComputeBalanceBlinding() fr.Element {
	var r fr.Element
	for _, ptx := range w.Partials {
		for _, in := range ptx.Inputs {
			r.Sub(&r, &in.Note.Balance.Blinding)
		}
		for _, out := range ptx.Outputs {
			r.Add(&r, &out.Note.Balance.Blinding)
		}
	}
	return r
}

// Balance sums the balances of all partials.
func (b Bundle) Balance() Balance {
	bs := make([]Balance, len(b.Partials))
	for i := range b.Partials {
		bs[i] = b.Partials[i].Balance()
	}
	return SumBalances(bs...)
}

// IsBalanced reports whether the bundle commits to zero value under blinding,
// i.e. Σ balances == 0·G + blinding·H.
func (b Bundle) IsBalanced(blinding fr.Element) bool {
	zero := commitToPoint(0, crypto.Generator(), blinding)
	return b.Balance().Equal(zero)
}

// Prove checks the bundle's structural rules against w and opens every
// partial. Every failure wraps ErrProofFailed.
func (b Bundle) Prove(w BundleWitness) (BundleProof, error) {
	if len(w.Partials) != len(b.Partials) {
		return BundleProof{}, fmt.Errorf("%w: %d partial witnesses for %d partials", ErrProofFailed, len(w.Partials), len(b.Partials))
	}

	expected, err := BundleFromWitness(w)
	if err != nil {
		return BundleProof{}, fmt.Errorf("%w: %v", ErrProofFailed, err)
	}
	for i := range b.Partials {
		if !b.Partials[i].Equal(expected.Partials[i]) {
			return BundleProof{}, fmt.Errorf("%w: partial %d does not match its witness", ErrProofFailed, i)
		}
	}

	if err := b.CheckUnique(); err != nil {
		return BundleProof{}, err
	}
	if !b.IsBalanced(w.BalanceBlinding) {
		return BundleProof{}, fmt.Errorf("%w: bundle is not balanced", ErrProofFailed)
	}

	proof := BundleProof{
		Partials:        make([]PartialTxProof, len(b.Partials)),
		BalanceBlinding: w.BalanceBlinding,
	}
	for i := range b.Partials {
		pp, err := b.Partials[i].Prove(w.Partials[i])
		if err != nil {
			return BundleProof{}, fmt.Errorf("partial %d: %w", i, err)
		}
		proof.Partials[i] = pp
	}
	return proof, nil
}

// CheckUnique reports a duplicate input or output note commitment across
// all partials.
func (b Bundle) CheckUnique() error {
	inputs := make(map[NoteCommitment]struct{})
	outputs := make(map[NoteCommitment]struct{})
	for _, ptx := range b.Partials {
		for _, in := range ptx.Inputs {
			if _, dup := inputs[in.NoteComm]; dup {
				return fmt.Errorf("%w: duplicate input note %s", ErrProofFailed, in.NoteComm.Hex())
			}
			inputs[in.NoteComm] = struct{}{}
		}
		for _, out := range ptx.Outputs {
			if _, dup := outputs[out.NoteComm]; dup {
				return fmt.Errorf("%w: duplicate output note %s", ErrProofFailed, out.NoteComm.Hex())
			}
			outputs[out.NoteComm] = struct{}{}
		}
	}
	return nil
}

// Verify checks every partial proof and the balance equation.
func (b Bundle) Verify(proof BundleProof) bool {
	return b.VerifyWith(proof, Unconstrained)
}

func (b Bundle) VerifyWith(proof BundleProof, dv DeathConstraintVerifier) bool {
	if len(proof.Partials) != len(b.Partials) {
		return false
	}
	if b.CheckUnique() != nil {
		return false
	}
	for i := range b.Partials {
		if !b.Partials[i].VerifyWith(proof.Partials[i], dv) {
			return false
		}
	}
	return b.IsBalanced(proof.BalanceBlinding)
}
