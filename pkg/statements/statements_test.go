package statements

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomoscl/pkg/cl"
	"nomoscl/pkg/cl/cltest"
	"nomoscl/pkg/merkle"
	"nomoscl/pkg/zkvm"
)

// commitmentTree returns the padded leaves over the note commitments of outs.
func commitmentTree(outs ...cl.OutputWitness) [][32]byte {
	elems := make([][]byte, len(outs))
	for i, o := range outs {
		cm := o.CommitNote()
		elems[i] = cm[:]
	}
	return merkle.PaddedLeaves(8, elems)
}

func TestInputStatement(t *testing.T) {
	rng := cltest.RNG(40)
	spend := cltest.Input(t, rng, 10, "NMO")
	other := cltest.Output(t, rng, 5, "ETH")

	leaves := commitmentTree(other, spend.ToOutputWitness())
	root := merkle.Root(leaves)
	priv := InputPrivate{Input: spend, CmPath: merkle.GeneratePath(leaves, 1)}

	pub, err := ExecuteInput(priv)
	require.NoError(t, err)
	assert.Equal(t, InputPublic{CmRoot: root, Input: spend.Commit()}, pub)
	require.NoError(t, CheckInput(pub, priv))

	wrongPath := priv
	wrongPath.CmPath = merkle.GeneratePath(leaves, 0)
	assert.ErrorIs(t, CheckInput(pub, wrongPath), cl.ErrProofFailed)

	wrongWitness := priv
	wrongWitness.Input.Nonce[0] ^= 1
	assert.ErrorIs(t, CheckInput(pub, wrongWitness), cl.ErrProofFailed)

	badSide := priv
	badSide.CmPath = append(merkle.Path{}, priv.CmPath...)
	badSide.CmPath[0].Side = merkle.Side(9)
	_, err = ExecuteInput(badSide)
	assert.ErrorIs(t, err, cl.ErrProofFailed)
}

func TestNullifierStatement(t *testing.T) {
	rng := cltest.RNG(41)
	sk, err := cl.RandomNullifierSecret(rng)
	require.NoError(t, err)
	out, err := cl.RandomOutputWitness(cltest.Note(t, rng, 10, "NMO"), sk.Commit(), rng)
	require.NoError(t, err)

	leaves := commitmentTree(cltest.Output(t, rng, 1, "NMO"), cltest.Output(t, rng, 2, "NMO"), out)
	priv := NullifierPrivate{NfSk: sk, Output: out, CmPath: merkle.GeneratePath(leaves, 2)}

	pub, err := ExecuteNullifier(priv)
	require.NoError(t, err)
	assert.Equal(t, merkle.Root(leaves), pub.CmRoot)
	assert.Equal(t, cl.NewNullifier(sk, out.Nonce), pub.Nf)
	require.NoError(t, CheckNullifier(pub, priv))

	// the nullifier matches the one an input spending the same note reveals
	in := cl.InputWitness{Note: out.Note, NfSk: sk, Nonce: out.Nonce}
	assert.Equal(t, in.Commit().Nullifier, pub.Nf)

	thief := priv
	thief.NfSk[0] ^= 1
	_, err = ExecuteNullifier(thief)
	assert.ErrorIs(t, err, cl.ErrProofFailed)

	elsewhere := priv
	elsewhere.CmPath = merkle.GeneratePath(leaves, 1)
	assert.ErrorIs(t, CheckNullifier(pub, elsewhere), cl.ErrProofFailed)
}

func TestGuestsThroughExecutor(t *testing.T) {
	ctx := context.Background()
	prover := zkvm.NewExecutorProver(NewRegistry())
	rng := cltest.RNG(42)

	spend := cltest.Input(t, rng, 4840, "CRV")
	leaves := commitmentTree(spend.ToOutputWitness())
	priv := InputPrivate{Input: spend, CmPath: merkle.GeneratePath(leaves, 0)}

	r, err := prover.Prove(ctx, InputImageID, priv)
	require.NoError(t, err)
	assert.True(t, prover.Verify(r, InputImageID))
	assert.False(t, prover.Verify(r, NullifierImageID))

	pub, err := DecodeInputPublic(r)
	require.NoError(t, err)
	assert.Equal(t, spend.Commit(), pub.Input)
	assert.Equal(t, merkle.Root(leaves), pub.CmRoot)

	_, err = DecodeNullifierPublic(r)
	assert.ErrorIs(t, err, ErrDecode)

	// pointers are accepted as well
	_, err = prover.Prove(ctx, InputImageID, &priv)
	require.NoError(t, err)

	_, err = prover.Prove(ctx, NullifierImageID, priv)
	assert.ErrorIs(t, err, ErrPrivateInput)

	npriv := NullifierPrivate{NfSk: spend.NfSk, Output: spend.ToOutputWitness(), CmPath: priv.CmPath}
	r, err = prover.Prove(ctx, NullifierImageID, npriv)
	require.NoError(t, err)
	npub, err := DecodeNullifierPublic(r)
	require.NoError(t, err)
	assert.Equal(t, spend.Commit().Nullifier, npub.Nf)
}

func TestInputStatementCarriesDeathConstraint(t *testing.T) {
	rng := cltest.RNG(43)
	spend := cltest.Input(t, rng, 7, "NMO")
	spend.Note = spend.Note.WithDeathConstraint(cl.DeathConstraint{0xde, 0xad})

	leaves := commitmentTree(spend.ToOutputWitness())
	priv := InputPrivate{Input: spend, CmPath: merkle.GeneratePath(leaves, 0)}

	pub, err := ExecuteInput(priv)
	require.NoError(t, err)
	assert.Equal(t, cl.DeathConstraint{0xde, 0xad}, pub.DeathConstraint)

	unconstrained := pub
	unconstrained.DeathConstraint = cl.DeathConstraint{}
	assert.ErrorIs(t, CheckInput(unconstrained, priv), cl.ErrProofFailed)
}

func TestOutputStatement(t *testing.T) {
	ctx := context.Background()
	prover := zkvm.NewExecutorProver(NewRegistry())
	out := cltest.Output(t, cltest.RNG(44), 1000, "NMO")

	pub, err := ExecuteOutput(OutputPrivate{Output: out})
	require.NoError(t, err)
	assert.Equal(t, out.Commit(), pub.Output)
	require.NoError(t, CheckOutput(pub, OutputPrivate{Output: out}))

	inflated := out
	inflated.Note.Balance.Value++
	assert.ErrorIs(t, CheckOutput(pub, OutputPrivate{Output: inflated}), cl.ErrProofFailed)

	r, err := prover.Prove(ctx, OutputImageID, &OutputPrivate{Output: out})
	require.NoError(t, err)
	assert.True(t, prover.Verify(r, OutputImageID))
	assert.False(t, prover.Verify(r, InputImageID))

	decoded, err := DecodeOutputPublic(r)
	require.NoError(t, err)
	assert.Equal(t, pub, decoded)

	_, err = prover.Prove(ctx, OutputImageID, InputPrivate{})
	assert.ErrorIs(t, err, ErrPrivateInput)
}
