package crypto

import (
	"crypto/sha256"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"golang.org/x/crypto/blake2s"
)

// Domain separation tags. These are part of the wire format and must not change.
const (
	TagHashToCurve  = "NOMOS_HASH_TO_CURVE"
	TagBlinding     = "NOMOS_CL_PEDERSON_COMMITMENT_BLINDING"
	TagNoteCommit   = "NOMOS_CL_NOTE_COMMIT"
	TagNullCommit   = "NOMOS_CL_NULL_COMMIT"
	TagNullifier    = "NOMOS_CL_NULLIFIER"
	TagMerkleLeaf   = "NOMOS_MERKLE_LEAF"
	TagMerkleNode   = "NOMOS_MERKLE_NODE"
	TagImageID      = "NOMOS_ZKVM_IMAGE"
	TagExecutorSeal = "NOMOS_ZKVM_EXECUTOR_SEAL"
)

// HashToCurve maps arbitrary bytes to a point of BN254 G1 using the
// RFC 9380 simplified SWU map under the NOMOS_HASH_TO_CURVE tag.
func HashToCurve(msg []byte) bn254.G1Affine {
	p, err := bn254.HashToG1(msg, []byte(TagHashToCurve))
	if err != nil {
		// only reachable with a DST longer than 255 bytes
		panic(fmt.Sprintf("hash to curve: %v", err))
	}
	return p
}

// Blake2s returns BLAKE2s-256(tag || parts...).
func Blake2s(tag string, parts ...[]byte) [32]byte {
	h, err := blake2s.New256(nil)
	if err != nil {
		panic(fmt.Sprintf("blake2s: %v", err))
	}
	h.Write([]byte(tag))
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Sha256 returns SHA-256(tag || parts...).
func Sha256(tag string, parts ...[]byte) [32]byte {
	h := sha256.New()
	h.Write([]byte(tag))
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
