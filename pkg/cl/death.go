package cl

// DeathConstraintVerifier checks the attestation that a note's death
// constraint accepted the partial transaction spending it.
type DeathConstraintVerifier interface {
	VerifyDeathConstraint(constraint DeathConstraint, ptxRoot PtxRoot, proof []byte) bool
}

// DeathConstraintFunc adapts a function to DeathConstraintVerifier.
type DeathConstraintFunc func(constraint DeathConstraint, ptxRoot PtxRoot, proof []byte) bool

func (f DeathConstraintFunc) VerifyDeathConstraint(constraint DeathConstraint, ptxRoot PtxRoot, proof []byte) bool {
	return f(constraint, ptxRoot, proof)
}

// Unconstrained accepts notes whose death constraint is zero and rejects all
// others.
var Unconstrained DeathConstraintVerifier = DeathConstraintFunc(
	func(constraint DeathConstraint, _ PtxRoot, _ []byte) bool {
		return constraint == DeathConstraint{}
	},
)
