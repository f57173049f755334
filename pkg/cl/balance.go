package cl

import (
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/rlp"

	"nomoscl/pkg/crypto"
)

// Balance is a Pedersen commitment value·unit_point + blinding·H. Balances of
// the same unit add and subtract linearly in value and blinding.
type Balance struct {
	point crypto.G1
}

// BalanceWitness is the opening of a Balance.
type BalanceWitness struct {
	Value    uint64
	Unit     string
	Blinding fr.Element
}

// UnitPoint maps an asset unit name to its group element.
func UnitPoint(unit string) crypto.G1 {
	return crypto.HashToCurve([]byte(unit))
}

// CommitBalance commits to value units of unit under blinding.
func CommitBalance(value uint64, unit string, blinding fr.Element) Balance {
	return commitToPoint(value, UnitPoint(unit), blinding)
}

func commitToPoint(value uint64, unit crypto.G1, blinding fr.Element) Balance {
	p := crypto.MultiExp(
		[]crypto.G1{unit, crypto.BlindingGenerator()},
		[]fr.Element{crypto.ScalarFromUint64(value), blinding},
	)
	return Balance{point: p}
}

// NewBalanceWitness builds a witness with an explicit blinding factor.
func NewBalanceWitness(value uint64, unit string, blinding fr.Element) BalanceWitness {
	return BalanceWitness{Value: value, Unit: unit, Blinding: blinding}
}

// RandomBalanceWitness draws the blinding factor from rng.
func RandomBalanceWitness(value uint64, unit string, rng io.Reader) (BalanceWitness, error) {
	r, err := crypto.RandomScalar(rng)
	if err != nil {
		return BalanceWitness{}, fmt.Errorf("failed to sample blinding: %w", err)
	}
	return NewBalanceWitness(value, unit, r), nil
}

// Commit returns the public commitment of the witness.
func (w BalanceWitness) Commit() Balance {
	return CommitBalance(w.Value, w.Unit, w.Blinding)
}

// UnitPoint returns the group element of the witness unit.
func (w BalanceWitness) UnitPoint() crypto.G1 {
	return UnitPoint(w.Unit)
}

// SumBalances adds balances together. The empty sum is the identity.
func SumBalances(bs ...Balance) Balance {
	points := make([]crypto.G1, len(bs))
	for i := range bs {
		points[i] = bs[i].point
	}
	return Balance{point: crypto.Sum(points...)}
}

// Add returns b + o.
func (b Balance) Add(o Balance) Balance {
	return Balance{point: crypto.Sum(b.point, o.point)}
}

// Sub returns b − o.
func (b Balance) Sub(o Balance) Balance {
	return Balance{point: crypto.Sub(b.point, o.point)}
}

// Equal reports whether both commitments are the same group element.
func (b Balance) Equal(o Balance) bool {
	return b.point.Equal(&o.point)
}

// Point exposes the underlying group element.
func (b Balance) Point() crypto.G1 {
	return b.point
}

// Bytes returns the 32-byte compressed encoding.
func (b Balance) Bytes() [32]byte {
	return b.point.Bytes()
}

func (b Balance) String() string {
	enc := b.Bytes()
	return crypto.Hex(enc[:])
}

// BalanceFromBytes decodes a compressed commitment. Bytes that are not a
// canonical encoding of a group element are rejected.
func BalanceFromBytes(buf []byte) (Balance, error) {
	var p crypto.G1
	if len(buf) != 32 {
		return Balance{}, fmt.Errorf("%w: got %d bytes, want 32", ErrInvalidBalance, len(buf))
	}
	if _, err := p.SetBytes(buf); err != nil {
		return Balance{}, fmt.Errorf("%w: %v", ErrInvalidBalance, err)
	}
	return Balance{point: p}, nil
}

// EncodeRLP writes the compressed encoding as an RLP byte string.
func (b Balance) EncodeRLP(w io.Writer) error {
	enc := b.Bytes()
	return rlp.Encode(w, enc[:])
}

// DecodeRLP reads a compressed encoding written by EncodeRLP.
func (b *Balance) DecodeRLP(s *rlp.Stream) error {
	raw, err := s.Bytes()
	if err != nil {
		return err
	}
	dec, err := BalanceFromBytes(raw)
	if err != nil {
		return err
	}
	*b = dec
	return nil
}
