package crypto

import (
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// RandomScalar draws a uniformly distributed scalar from rng. 48 bytes are
// reduced modulo r so the bias is negligible.
func RandomScalar(rng io.Reader) (fr.Element, error) {
	var buf [48]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return fr.Element{}, fmt.Errorf("failed to read randomness: %w", err)
	}
	n := new(big.Int).SetBytes(buf[:])
	n.Mod(n, fr.Modulus())
	var s fr.Element
	s.SetBigInt(n)
	return s, nil
}

// ScalarFromUint64 lifts v into the scalar field.
func ScalarFromUint64(v uint64) fr.Element {
	var s fr.Element
	s.SetUint64(v)
	return s
}

// RandomBytes fills a fresh n-byte slice from rng.
func RandomBytes(rng io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rng, b); err != nil {
		return nil, fmt.Errorf("failed to read randomness: %w", err)
	}
	return b, nil
}

// Hex renders b as 0x-prefixed lowercase hex.
func Hex(b []byte) string {
	return hexutil.Encode(b)
}
