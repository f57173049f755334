package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog/log"

	"nomoscl/pkg/cl"
	"nomoscl/pkg/metrics"
	"nomoscl/pkg/statements"
	"nomoscl/pkg/zkvm"
)

// Submission is a bundle together with everything the ledger needs to accept
// it without seeing any witness: the aggregate blinding, one input-spend
// proof per input, indexed like Bundle.Partials[i].Inputs[j], and one
// output-opening proof per output, indexed like Bundle.Partials[i].Outputs[j].
type Submission struct {
	Bundle          cl.Bundle
	BalanceBlinding fr.Element
	Spends          [][]*InputProof
	Outputs         [][]*OutputProof
}

// Ledger holds the note commitment accumulator and the nullifier set and
// applies bundles to them one at a time.
type Ledger struct {
	commitments *CommitmentSet
	nullifiers  *NullifierSet
	verifier    zkvm.Verifier
	deaths      cl.DeathConstraintVerifier
	height      uint64
	mu          sync.Mutex
}

type Option func(*Ledger)

// WithDeathConstraintVerifier sets the verifier consulted for every spent
// note. The default is cl.Unconstrained.
func WithDeathConstraintVerifier(dv cl.DeathConstraintVerifier) Option {
	return func(l *Ledger) {
		l.deaths = dv
	}
}

// New creates an empty ledger whose accumulator has 2^depth slots.
func New(verifier zkvm.Verifier, depth int, opts ...Option) *Ledger {
	l := &Ledger{
		commitments: NewCommitmentSet(depth),
		nullifiers:  NewNullifierSet(),
		verifier:    verifier,
		deaths:      cl.Unconstrained,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) Commitments() *CommitmentSet {
	return l.commitments
}

func (l *Ledger) Nullifiers() *NullifierSet {
	return l.nullifiers
}

// Height is the number of bundles applied.
func (l *Ledger) Height() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.height
}

// Mint appends outputs without spending anything. It seeds a ledger with
// genesis notes.
func (l *Ledger) Mint(outputs ...cl.Output) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cms := make([]cl.NoteCommitment, len(outputs))
	for i := range outputs {
		cms[i] = outputs[i].NoteComm
	}
	if err := l.commitments.Append(cms...); err != nil {
		return err
	}
	log.Info().Int("notes", len(cms)).Msg("Minted notes")
	return nil
}

// ApplyBundle verifies sub and, if it is valid, spends its inputs and appends
// its outputs. A rejected bundle leaves the ledger unchanged.
func (l *Ledger) ApplyBundle(sub *Submission) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	bundle := sub.Bundle
	for i, ptx := range bundle.Partials {
		if err := ptx.CheckBounds(); err != nil {
			return l.reject("too_large", fmt.Errorf("partial %d: %w", i, err))
		}
	}
	if err := bundle.CheckUnique(); err != nil {
		return l.reject("duplicate", err)
	}
	if !bundle.IsBalanced(sub.BalanceBlinding) {
		return l.reject("unbalanced", fmt.Errorf("%w: bundle is not balanced", cl.ErrProofFailed))
	}
	if len(sub.Spends) != len(bundle.Partials) {
		return l.reject("spend_proof", fmt.Errorf("%w: %d proof groups for %d partials", ErrInvalidSpendProof, len(sub.Spends), len(bundle.Partials)))
	}
	if len(sub.Outputs) != len(bundle.Partials) {
		return l.reject("output_proof", fmt.Errorf("%w: %d proof groups for %d partials", ErrInvalidOutputProof, len(sub.Outputs), len(bundle.Partials)))
	}

	var nfs []cl.Nullifier
	var cms []cl.NoteCommitment
	for i, ptx := range bundle.Partials {
		if len(sub.Spends[i]) != len(ptx.Inputs) {
			return l.reject("spend_proof", fmt.Errorf("%w: partial %d has %d proofs for %d inputs", ErrInvalidSpendProof, i, len(sub.Spends[i]), len(ptx.Inputs)))
		}
		if len(sub.Outputs[i]) != len(ptx.Outputs) {
			return l.reject("output_proof", fmt.Errorf("%w: partial %d has %d proofs for %d outputs", ErrInvalidOutputProof, i, len(sub.Outputs[i]), len(ptx.Outputs)))
		}
		root := ptx.Root()
		for j, in := range ptx.Inputs {
			if err := l.checkSpend(in, root, sub.Spends[i][j]); err != nil {
				reason := "spend_proof"
				if errors.Is(err, ErrDeathConstraint) {
					reason = "death_constraint"
				}
				return l.reject(reason, fmt.Errorf("partial %d input %d: %w", i, j, err))
			}
			if l.nullifiers.Contains(in.Nullifier) {
				return l.reject("already_spent", fmt.Errorf("%w: %s", ErrAlreadySpent, in.Nullifier.Hex()))
			}
			nfs = append(nfs, in.Nullifier)
		}
		for j, out := range ptx.Outputs {
			if !sub.Outputs[i][j].Verify(l.verifier, statements.OutputPublic{Output: out}) {
				return l.reject("output_proof", fmt.Errorf("%w: partial %d output %d (%s)", ErrInvalidOutputProof, i, j, out.NoteComm.Hex()))
			}
			cms = append(cms, out.NoteComm)
		}
	}

	// both checks run before either set changes
	if err := l.commitments.CheckAppend(cms...); err != nil {
		return l.reject("outputs", err)
	}
	if err := l.nullifiers.InsertAll(nfs...); err != nil {
		return l.reject("already_spent", err)
	}
	if err := l.commitments.Append(cms...); err != nil {
		// unreachable while l.mu is held
		return fmt.Errorf("failed to append outputs after spending: %w", err)
	}

	l.height++
	metrics.BundlesAccepted.Inc()
	root := l.commitments.CurrentRoot()
	log.Info().
		Uint64("height", l.height).
		Int("partials", len(bundle.Partials)).
		Int("spent", len(nfs)).
		Int("created", len(cms)).
		Hex("root", root[:]).
		Msg("Applied bundle")
	return nil
}

// checkSpend verifies that proof proves in against a root the accumulator
// has had, and that the note's death constraint accepts the spending partial.
func (l *Ledger) checkSpend(in cl.Input, ptxRoot cl.PtxRoot, proof *InputProof) error {
	if proof == nil || proof.Receipt == nil {
		return fmt.Errorf("%w: missing proof", ErrInvalidSpendProof)
	}
	pub, err := proof.Public()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSpendProof, err)
	}
	if !l.commitments.IsKnownRoot(pub.CmRoot) {
		return fmt.Errorf("%w: %x", ErrUnknownRoot, pub.CmRoot[:8])
	}
	expected := statements.InputPublic{CmRoot: pub.CmRoot, Input: in, DeathConstraint: pub.DeathConstraint}
	if !proof.Verify(l.verifier, expected) {
		return fmt.Errorf("%w: receipt does not prove input %s", ErrInvalidSpendProof, in.NoteComm.Hex())
	}
	if !l.deaths.VerifyDeathConstraint(pub.DeathConstraint, ptxRoot, proof.DeathProof) {
		return fmt.Errorf("%w: note %s", ErrDeathConstraint, in.NoteComm.Hex())
	}
	return nil
}

func (l *Ledger) reject(reason string, err error) error {
	metrics.BundlesRejected.WithLabelValues(reason).Inc()
	log.Warn().Err(err).Str("reason", reason).Msg("Rejected bundle")
	return err
}
