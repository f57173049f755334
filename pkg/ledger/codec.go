package ledger

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/rlp"

	"nomoscl/pkg/cl"
	"nomoscl/pkg/zkvm"
)

// submissionRLP is the wire form of a Submission. The blinding travels as its
// canonical 32-byte encoding.
type submissionRLP struct {
	Partials        []cl.PartialTx
	BalanceBlinding []byte
	Spends          [][]spendRLP
	Outputs         [][]*zkvm.Receipt
}

type spendRLP struct {
	Receipt    *zkvm.Receipt
	DeathProof []byte
}

// MarshalBinary encodes s as RLP.
func (s *Submission) MarshalBinary() ([]byte, error) {
	b := s.BalanceBlinding.Bytes()
	wire := submissionRLP{
		Partials:        s.Bundle.Partials,
		BalanceBlinding: b[:],
		Spends:          make([][]spendRLP, len(s.Spends)),
		Outputs:         make([][]*zkvm.Receipt, len(s.Outputs)),
	}
	for i, group := range s.Spends {
		wire.Spends[i] = make([]spendRLP, len(group))
		for j, p := range group {
			if p == nil || p.Receipt == nil {
				return nil, fmt.Errorf("%w: partial %d input %d has no proof", ErrInvalidSpendProof, i, j)
			}
			wire.Spends[i][j] = spendRLP{Receipt: p.Receipt, DeathProof: p.DeathProof}
		}
	}
	for i, group := range s.Outputs {
		wire.Outputs[i] = make([]*zkvm.Receipt, len(group))
		for j, p := range group {
			if p == nil || p.Receipt == nil {
				return nil, fmt.Errorf("%w: partial %d output %d has no proof", ErrInvalidOutputProof, i, j)
			}
			wire.Outputs[i][j] = p.Receipt
		}
	}
	return rlp.EncodeToBytes(&wire)
}

// UnmarshalBinary decodes a Submission written by MarshalBinary. Partials
// larger than cl.MaxInputs or cl.MaxOutputs are rejected.
func (s *Submission) UnmarshalBinary(data []byte) error {
	var wire submissionRLP
	if err := rlp.DecodeBytes(data, &wire); err != nil {
		return fmt.Errorf("%w: %v", zkvm.ErrDecode, err)
	}
	for i, ptx := range wire.Partials {
		if err := ptx.CheckBounds(); err != nil {
			return fmt.Errorf("partial %d: %w", i, err)
		}
	}
	var blinding fr.Element
	if err := blinding.SetBytesCanonical(wire.BalanceBlinding); err != nil {
		return fmt.Errorf("%w: balance blinding: %v", zkvm.ErrDecode, err)
	}

	spends := make([][]*InputProof, len(wire.Spends))
	for i, group := range wire.Spends {
		spends[i] = make([]*InputProof, len(group))
		for j, p := range group {
			spends[i][j] = &InputProof{Receipt: p.Receipt, DeathProof: p.DeathProof}
		}
	}
	outputs := make([][]*OutputProof, len(wire.Outputs))
	for i, group := range wire.Outputs {
		outputs[i] = make([]*OutputProof, len(group))
		for j, r := range group {
			outputs[i][j] = &OutputProof{Receipt: r}
		}
	}
	*s = Submission{
		Bundle:          cl.Bundle{Partials: wire.Partials},
		BalanceBlinding: blinding,
		Spends:          spends,
		Outputs:         outputs,
	}
	return nil
}
