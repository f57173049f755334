package ledger

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"nomoscl/pkg/cl"
	"nomoscl/pkg/statements"
	"nomoscl/pkg/zkvm"
)

// InputProof is a receipt of the input-spend statement. DeathProof is the
// opaque attestation handed to the ledger's death-constraint verifier.
type InputProof struct {
	Receipt    *zkvm.Receipt
	DeathProof []byte
}

// Public decodes the statement's public values.
func (p *InputProof) Public() (statements.InputPublic, error) {
	return statements.DecodeInputPublic(p.Receipt)
}

// Verify checks that the receipt is valid and proves exactly expected.
func (p *InputProof) Verify(v zkvm.Verifier, expected statements.InputPublic) bool {
	if p == nil || p.Receipt == nil {
		return false
	}
	pub, err := p.Public()
	if err != nil {
		return false
	}
	return pub == expected && v.Verify(p.Receipt, statements.InputImageID)
}

// ProveInput proves that w spends a note held in commitments.
func ProveInput(ctx context.Context, prover zkvm.Prover, w cl.InputWitness, commitments *CommitmentSet) (*InputProof, error) {
	cm := w.ToOutputWitness().CommitNote()
	path, ok := commitments.PathFor(cm)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommitment, cm.Hex())
	}
	r, err := prover.Prove(ctx, statements.InputImageID, statements.InputPrivate{Input: w, CmPath: path})
	if err != nil {
		return nil, fmt.Errorf("failed to prove input: %w", err)
	}
	return &InputProof{Receipt: r}, nil
}

// OutputProof is a receipt of the output-opening statement.
type OutputProof struct {
	Receipt *zkvm.Receipt
}

func (p *OutputProof) Public() (statements.OutputPublic, error) {
	return statements.DecodeOutputPublic(p.Receipt)
}

// Verify checks that the receipt is valid and opens exactly expected.
func (p *OutputProof) Verify(v zkvm.Verifier, expected statements.OutputPublic) bool {
	if p == nil || p.Receipt == nil {
		return false
	}
	pub, err := p.Public()
	if err != nil {
		return false
	}
	return pub == expected && v.Verify(p.Receipt, statements.OutputImageID)
}

// ProveOutput proves that the output committed by w opens to a u64 value.
func ProveOutput(ctx context.Context, prover zkvm.Prover, w cl.OutputWitness) (*OutputProof, error) {
	r, err := prover.Prove(ctx, statements.OutputImageID, statements.OutputPrivate{Output: w})
	if err != nil {
		return nil, fmt.Errorf("failed to prove output: %w", err)
	}
	return &OutputProof{Receipt: r}, nil
}

// NullifierProof is a receipt of the nullifier-only statement.
type NullifierProof struct {
	Receipt *zkvm.Receipt
}

func (p *NullifierProof) Public() (statements.NullifierPublic, error) {
	return statements.DecodeNullifierPublic(p.Receipt)
}

func (p *NullifierProof) Verify(v zkvm.Verifier, expected statements.NullifierPublic) bool {
	if p == nil || p.Receipt == nil {
		return false
	}
	pub, err := p.Public()
	if err != nil {
		return false
	}
	return pub == expected && v.Verify(p.Receipt, statements.NullifierImageID)
}

// ProveNullifier proves that nfSk owns the note created by out, which is held
// in commitments.
func ProveNullifier(ctx context.Context, prover zkvm.Prover, nfSk cl.NullifierSecret, out cl.OutputWitness, commitments *CommitmentSet) (*NullifierProof, error) {
	cm := out.CommitNote()
	path, ok := commitments.PathFor(cm)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommitment, cm.Hex())
	}
	priv := statements.NullifierPrivate{NfSk: nfSk, Output: out, CmPath: path}
	r, err := prover.Prove(ctx, statements.NullifierImageID, priv)
	if err != nil {
		return nil, fmt.Errorf("failed to prove nullifier: %w", err)
	}
	return &NullifierProof{Receipt: r}, nil
}

// ProveBundle checks w against its bundle without the prover, then proves
// every input and output concurrently. The result is ready for
// Ledger.ApplyBundle.
func ProveBundle(ctx context.Context, prover zkvm.Prover, w cl.BundleWitness, commitments *CommitmentSet) (*Submission, error) {
	return ProveBundleWith(ctx, prover, w, commitments, nil)
}

// ProveBundleWith is ProveBundle for notes with death constraints.
// deathProofs[i][j] is attached to input j of partial i; missing entries
// stay empty.
func ProveBundleWith(ctx context.Context, prover zkvm.Prover, w cl.BundleWitness, commitments *CommitmentSet, deathProofs [][][]byte) (*Submission, error) {
	bundle, err := cl.BundleFromWitness(w)
	if err != nil {
		return nil, err
	}
	if _, err := bundle.Prove(w); err != nil {
		return nil, err
	}

	spends := make([][]*InputProof, len(w.Partials))
	outputs := make([][]*OutputProof, len(w.Partials))
	g, ctx := errgroup.WithContext(ctx)
	for i, ptx := range w.Partials {
		spends[i] = make([]*InputProof, len(ptx.Inputs))
		for j, in := range ptx.Inputs {
			g.Go(func() error {
				p, err := ProveInput(ctx, prover, in, commitments)
				if err != nil {
					return fmt.Errorf("partial %d input %d: %w", i, j, err)
				}
				if i < len(deathProofs) && j < len(deathProofs[i]) {
					p.DeathProof = deathProofs[i][j]
				}
				spends[i][j] = p
				return nil
			})
		}
		outputs[i] = make([]*OutputProof, len(ptx.Outputs))
		for j, out := range ptx.Outputs {
			g.Go(func() error {
				p, err := ProveOutput(ctx, prover, out)
				if err != nil {
					return fmt.Errorf("partial %d output %d: %w", i, j, err)
				}
				outputs[i][j] = p
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Submission{
		Bundle:          bundle,
		BalanceBlinding: w.BalanceBlinding,
		Spends:          spends,
		Outputs:         outputs,
	}, nil
}
