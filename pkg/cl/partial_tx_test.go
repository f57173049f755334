package cl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomoscl/pkg/cl"
	"nomoscl/pkg/cl/cltest"
	"nomoscl/pkg/merkle"
)

func TestPartialTxBalance(t *testing.T) {
	rng := cltest.RNG(20)
	nmo := cltest.Input(t, rng, 10, "NMO")
	eth := cltest.Input(t, rng, 23, "ETH")
	crv := cltest.Output(t, rng, 4840, "CRV")

	w := cl.PartialTxWitness{
		Inputs:  []cl.InputWitness{nmo, eth},
		Outputs: []cl.OutputWitness{crv},
	}
	ptx, err := cl.PartialTxFromWitness(w)
	require.NoError(t, err)

	expected := crv.Note.Balance.Commit().
		Sub(nmo.Note.Balance.Commit()).
		Sub(eth.Note.Balance.Commit())
	assert.True(t, ptx.Balance().Equal(expected))
}

func TestPartialTxRootAndPaths(t *testing.T) {
	rng := cltest.RNG(21)
	w := cl.PartialTxWitness{
		Inputs:  []cl.InputWitness{cltest.Input(t, rng, 1, "NMO"), cltest.Input(t, rng, 2, "NMO")},
		Outputs: []cl.OutputWitness{cltest.Output(t, rng, 3, "NMO")},
	}
	ptx, err := cl.PartialTxFromWitness(w)
	require.NoError(t, err)

	assert.Equal(t, cl.PtxRoot(merkle.Node(ptx.InputRoot(), ptx.OutputRoot())), ptx.Root())

	for i, in := range ptx.Inputs {
		b := in.Bytes()
		p := ptx.InputPath(i)
		assert.Len(t, p, 3)
		assert.True(t, merkle.VerifyPath(merkle.Leaf(b[:]), p, ptx.InputRoot()))
	}
	for i, out := range ptx.Outputs {
		b := out.Bytes()
		assert.True(t, merkle.VerifyPath(merkle.Leaf(b[:]), ptx.OutputPath(i), ptx.OutputRoot()))
	}
}

func TestPartialTxProof(t *testing.T) {
	rng := cltest.RNG(22)
	w := cl.PartialTxWitness{
		Inputs:  []cl.InputWitness{cltest.Input(t, rng, 10, "NMO")},
		Outputs: []cl.OutputWitness{cltest.Output(t, rng, 10, "NMO")},
	}
	ptx, err := cl.PartialTxFromWitness(w)
	require.NoError(t, err)

	proof, err := ptx.Prove(w)
	require.NoError(t, err)
	assert.True(t, ptx.Verify(proof))
	assert.Equal(t, ptx.Root(), proof.Inputs[0].PtxRoot)

	// the same proofs do not verify once the partial tx changes
	other := ptx
	other.Outputs = append([]cl.Output{}, ptx.Outputs...)
	other.Outputs = append(other.Outputs, cltest.Output(t, rng, 1, "NMO").Commit())
	assert.False(t, other.Verify(cl.PartialTxProof{Inputs: proof.Inputs, Outputs: append(proof.Outputs, proof.Outputs[0])}))

	w.Inputs[0].Nonce[0] ^= 1
	_, err = ptx.Prove(w)
	assert.ErrorIs(t, err, cl.ErrProofFailed)
}

func TestPartialTxBounds(t *testing.T) {
	rng := cltest.RNG(23)
	var w cl.PartialTxWitness
	for range cl.MaxInputs + 1 {
		w.Inputs = append(w.Inputs, cltest.Input(t, rng, 1, "NMO"))
	}
	_, err := cl.PartialTxFromWitness(w)
	assert.ErrorIs(t, err, cl.ErrTooManyInputs)

	w.Inputs = w.Inputs[:cl.MaxInputs]
	for range cl.MaxOutputs + 1 {
		w.Outputs = append(w.Outputs, cltest.Output(t, rng, 1, "NMO"))
	}
	_, err = cl.PartialTxFromWitness(w)
	assert.ErrorIs(t, err, cl.ErrTooManyOutputs)

	w.Outputs = w.Outputs[:cl.MaxOutputs]
	ptx, err := cl.PartialTxFromWitness(w)
	require.NoError(t, err)
	assert.Len(t, ptx.InputPath(cl.MaxInputs-1), 3)
	require.NoError(t, ptx.CheckBounds())

	wide := ptx
	wide.Inputs = append(append([]cl.Input{}, ptx.Inputs...), ptx.Inputs[0])
	assert.ErrorIs(t, wide.CheckBounds(), cl.ErrTooManyInputs)

	tall := ptx
	tall.Outputs = append(append([]cl.Output{}, ptx.Outputs...), ptx.Outputs[0])
	assert.ErrorIs(t, tall.CheckBounds(), cl.ErrTooManyOutputs)
}
