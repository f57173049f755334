package zkvm

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	nativemimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

const (
	// JournalWords is the number of field elements a journal is packed into.
	JournalWords = 16
	// wordSize keeps every chunk below the BN254 scalar modulus.
	wordSize = 31
	// MaxJournalSize is the largest journal the Groth16 backend can seal.
	MaxJournalSize = JournalWords * wordSize
)

// JournalCircuit binds a journal to a guest image:
// MiMC(image, length, words...) == digest. Length and Words are packed from
// the journal itself, so they hide nothing from a verifier holding it.
type JournalCircuit struct {
	// Public inputs
	Image  frontend.Variable `gnark:",public"`
	Digest frontend.Variable `gnark:",public"`

	// Private inputs
	Length frontend.Variable               `gnark:",secret"`
	Words  [JournalWords]frontend.Variable `gnark:",secret"`
}

func (c *JournalCircuit) Define(api frontend.API) error {
	api.AssertIsLessOrEqual(c.Length, MaxJournalSize)

	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Write(c.Image, c.Length)
	h.Write(c.Words[:]...)
	api.AssertIsEqual(h.Sum(), c.Digest)
	return nil
}

// journalElements is the native counterpart of the circuit inputs.
type journalElements struct {
	image  fr.Element
	digest fr.Element
	length fr.Element
	words  [JournalWords]fr.Element
}

func packJournal(id ImageID, journal []byte) (*journalElements, error) {
	if len(journal) > MaxJournalSize {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrJournalTooLarge, len(journal), MaxJournalSize)
	}

	var e journalElements
	e.image.SetBytes(id[:])
	e.length.SetUint64(uint64(len(journal)))
	for i := range e.words {
		lo := i * wordSize
		if lo >= len(journal) {
			break
		}
		hi := min(lo+wordSize, len(journal))
		e.words[i].SetBytes(journal[lo:hi])
	}

	h := nativemimc.NewMiMC()
	write := func(x *fr.Element) error {
		b := x.Bytes()
		_, err := h.Write(b[:])
		return err
	}
	if err := write(&e.image); err != nil {
		return nil, err
	}
	if err := write(&e.length); err != nil {
		return nil, err
	}
	for i := range e.words {
		if err := write(&e.words[i]); err != nil {
			return nil, err
		}
	}
	if err := e.digest.SetBytesCanonical(h.Sum(nil)); err != nil {
		return nil, fmt.Errorf("failed to read digest: %w", err)
	}
	return &e, nil
}

// assignment returns the full witness assignment for the circuit.
func (e *journalElements) assignment() *JournalCircuit {
	a := e.publicAssignment()
	a.Length = bigOf(&e.length)
	for i := range e.words {
		a.Words[i] = bigOf(&e.words[i])
	}
	return a
}

// publicAssignment returns an assignment holding only the public inputs.
func (e *journalElements) publicAssignment() *JournalCircuit {
	return &JournalCircuit{Image: bigOf(&e.image), Digest: bigOf(&e.digest)}
}

func bigOf(x *fr.Element) *big.Int {
	return x.BigInt(new(big.Int))
}
