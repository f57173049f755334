package cl

import "errors"

var (
	// ErrProofFailed is returned when a witness does not open to the claimed
	// public value, or when a partial transaction or bundle breaks a
	// structural rule (duplicate note commitment, unbalanced aggregate).
	ErrProofFailed = errors.New("proof failed")

	ErrInvalidBalance = errors.New("invalid balance encoding")
	ErrTooManyInputs  = errors.New("too many inputs")
	ErrTooManyOutputs = errors.New("too many outputs")
)
