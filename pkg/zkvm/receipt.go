package zkvm

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"nomoscl/pkg/crypto"
)

var (
	ErrDecode          = errors.New("journal decode error")
	ErrUnknownImage    = errors.New("unknown guest image")
	ErrPoolClosed      = errors.New("prover pool closed")
	ErrJournalTooLarge = errors.New("journal too large")
)

// ImageID names a guest program.
type ImageID [32]byte

// NewImageID derives the image ID of the guest called name.
func NewImageID(name string) ImageID {
	return crypto.Blake2s(crypto.TagImageID, []byte(name))
}

func (id ImageID) String() string {
	return crypto.Hex(id[:8])
}

// Receipt is the output of a proving run: the public journal committed by the
// guest and a backend-specific seal over it.
type Receipt struct {
	Image   ImageID
	Journal []byte
	Seal    []byte
}

// Decode deserializes the journal into v.
func (r *Receipt) Decode(v any) error {
	if err := rlp.DecodeBytes(r.Journal, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// Bytes serializes the whole receipt.
func (r *Receipt) Bytes() ([]byte, error) {
	return rlp.EncodeToBytes(r)
}

// ReceiptFromBytes is the inverse of Receipt.Bytes.
func ReceiptFromBytes(b []byte) (*Receipt, error) {
	var r Receipt
	if err := rlp.DecodeBytes(b, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &r, nil
}
