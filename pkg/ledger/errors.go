package ledger

import "errors"

var (
	ErrAlreadySpent        = errors.New("nullifier already spent")
	ErrUnknownCommitment   = errors.New("unknown note commitment")
	ErrDuplicateCommitment = errors.New("note commitment already exists")
	ErrAccumulatorFull     = errors.New("commitment accumulator full")
	ErrUnknownRoot         = errors.New("unknown commitment root")
	ErrInvalidSpendProof   = errors.New("invalid spend proof")
	ErrInvalidOutputProof  = errors.New("invalid output proof")
	ErrDeathConstraint     = errors.New("death constraint not satisfied")
)
