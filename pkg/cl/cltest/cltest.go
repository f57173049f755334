// Package cltest builds notes, witnesses and bundles for tests.
package cltest

import (
	"io"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"nomoscl/pkg/cl"
)

// RNG returns a deterministic randomness source for seed.
func RNG(seed byte) io.Reader {
	return rand.NewChaCha8([32]byte{seed})
}

// Note creates an unconstrained note with a random blinding.
func Note(t testing.TB, rng io.Reader, value uint64, unit string) cl.NoteWitness {
	t.Helper()
	n, err := cl.NewNoteWitness(value, unit, [32]byte{}, rng)
	require.NoError(t, err)
	return n
}

// Input creates a spendable witness for value units of unit.
func Input(t testing.TB, rng io.Reader, value uint64, unit string) cl.InputWitness {
	t.Helper()
	w, err := cl.RandomInputWitness(Note(t, rng, value, unit), rng)
	require.NoError(t, err)
	return w
}

// Output creates a witness paying value units of unit to a fresh owner.
func Output(t testing.TB, rng io.Reader, value uint64, unit string) cl.OutputWitness {
	t.Helper()
	sk, err := cl.RandomNullifierSecret(rng)
	require.NoError(t, err)
	w, err := cl.RandomOutputWitness(Note(t, rng, value, unit), sk.Commit(), rng)
	require.NoError(t, err)
	return w
}

// SwapWitness returns a two-party bundle: the first partial spends 10 NMO and
// 23 ETH for 4840 CRV, the second spends 4840 CRV for 10 NMO and 23 ETH.
func SwapWitness(t testing.TB, rng io.Reader) cl.BundleWitness {
	t.Helper()
	alice := cl.PartialTxWitness{
		Inputs: []cl.InputWitness{
			Input(t, rng, 10, "NMO"),
			Input(t, rng, 23, "ETH"),
		},
		Outputs: []cl.OutputWitness{
			Output(t, rng, 4840, "CRV"),
		},
	}
	bob := cl.PartialTxWitness{
		Inputs: []cl.InputWitness{
			Input(t, rng, 4840, "CRV"),
		},
		Outputs: []cl.OutputWitness{
			Output(t, rng, 10, "NMO"),
			Output(t, rng, 23, "ETH"),
		},
	}
	w := cl.BundleWitness{Partials: []cl.PartialTxWitness{alice, bob}}
	w.BalanceBlinding = w.ComputeBalanceBlinding()
	return w
}
