package cl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomoscl/pkg/cl"
	"nomoscl/pkg/cl/cltest"
	"nomoscl/pkg/crypto"
)

func TestNullifierCommitmentVectors(t *testing.T) {
	var ones, max cl.NullifierSecret
	for i := range ones {
		ones[i] = 1
		max[i] = 0xff
	}

	assert.Equal(t, "0x384318f9864fe57647bac344e2afdc500a672dedb29d2dc63b004e940e4b382a", cl.NullifierSecret{}.Commit().Hex())
	assert.Equal(t, "0x0fd667e6bb39fbdc35d6265726154b839638ea90bcf4e736953ccf27ca5f870b", ones.Commit().Hex())
	assert.Equal(t, "0x1cb78e487eb0b3116389311fdde84cd3f619a4d7f487b29bf5a002eed3784d75", max.Commit().Hex())
}

func TestNullifierUniqueness(t *testing.T) {
	rng := cltest.RNG(1)
	sk, err := cl.RandomNullifierSecret(rng)
	require.NoError(t, err)

	seen := make(map[cl.Nullifier]struct{})
	for range 64 {
		nonce, err := cl.RandomNullifierNonce(rng)
		require.NoError(t, err)
		nf := cl.NewNullifier(sk, nonce)
		assert.NotContains(t, seen, nf)
		seen[nf] = struct{}{}
		assert.Equal(t, nf, cl.NewNullifier(sk, nonce))
	}
}

func TestNullifierSecretIsRedacted(t *testing.T) {
	sk := cl.NullifierSecret{0xde, 0xad}
	assert.NotContains(t, sk.String(), "dead")
}

func TestNoteCommitmentIgnoresBlinding(t *testing.T) {
	rng := cltest.RNG(2)
	a := cltest.Note(t, rng, 10, "NMO")
	b := a
	b.Balance.Blinding = scalar(t, 9)
	require.NotEqual(t, a.Balance.Blinding, b.Balance.Blinding)

	sk, err := cl.RandomNullifierSecret(rng)
	require.NoError(t, err)
	nonce, err := cl.RandomNullifierNonce(rng)
	require.NoError(t, err)

	assert.Equal(t, a.Commit(sk.Commit(), nonce), b.Commit(sk.Commit(), nonce))
	assert.False(t, a.Balance.Commit().Equal(b.Balance.Commit()))
}

func TestNoteCommitmentBindsEveryField(t *testing.T) {
	rng := cltest.RNG(3)
	note := cltest.Note(t, rng, 10, "NMO")
	sk, err := cl.RandomNullifierSecret(rng)
	require.NoError(t, err)
	nonce, err := cl.RandomNullifierNonce(rng)
	require.NoError(t, err)
	base := note.Commit(sk.Commit(), nonce)

	value := note
	value.Balance.Value++
	unit := note
	unit.Balance.Unit = "ETH"
	state := note
	state.State[0] ^= 1
	constrained := note.WithDeathConstraint(cl.DeathConstraint(crypto.Blake2s("death", []byte("always"))))

	for name, n := range map[string]cl.NoteWitness{
		"value": value, "unit": unit, "state": state, "death constraint": constrained,
	} {
		assert.NotEqual(t, base, n.Commit(sk.Commit(), nonce), name)
	}

	otherNonce := nonce
	otherNonce[0] ^= 1
	assert.NotEqual(t, base, note.Commit(sk.Commit(), otherNonce))

	otherSk := sk
	otherSk[0] ^= 1
	assert.NotEqual(t, base, note.Commit(otherSk.Commit(), nonce))
}
