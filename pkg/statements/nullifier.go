package statements

import (
	"fmt"

	"nomoscl/pkg/cl"
	"nomoscl/pkg/merkle"
	"nomoscl/pkg/zkvm"
)

// NullifierImageID identifies the nullifier-only guest.
var NullifierImageID = zkvm.NewImageID("nomos-cl/nullifier")

// NullifierPublic is the journal of the nullifier-only statement: Nf is the
// nullifier of a note included under CmRoot.
type NullifierPublic struct {
	CmRoot [32]byte
	Nf     cl.Nullifier
}

type NullifierPrivate struct {
	NfSk   cl.NullifierSecret
	Output cl.OutputWitness
	CmPath merkle.Path
}

// ExecuteNullifier evaluates the nullifier-only statement.
func ExecuteNullifier(priv NullifierPrivate) (NullifierPublic, error) {
	if priv.Output.NfPk != priv.NfSk.Commit() {
		return NullifierPublic{}, fmt.Errorf("%w: nullifier secret does not own the note", cl.ErrProofFailed)
	}
	leaf := merkle.Leaf(noteLeaf(priv.Output.CommitNote()))
	root := merkle.PathRoot(leaf, priv.CmPath)
	if !merkle.VerifyPath(leaf, priv.CmPath, root) {
		return NullifierPublic{}, fmt.Errorf("%w: malformed commitment path", cl.ErrProofFailed)
	}
	return NullifierPublic{
		CmRoot: root,
		Nf:     cl.NewNullifier(priv.NfSk, priv.Output.Nonce),
	}, nil
}

// CheckNullifier reports whether priv proves the claimed pub.
func CheckNullifier(pub NullifierPublic, priv NullifierPrivate) error {
	got, err := ExecuteNullifier(priv)
	if err != nil {
		return err
	}
	if got != pub {
		return fmt.Errorf("%w: witness does not prove nullifier %s", cl.ErrProofFailed, pub.Nf.Hex())
	}
	return nil
}

func DecodeNullifierPublic(r *zkvm.Receipt) (NullifierPublic, error) {
	var pub NullifierPublic
	if err := r.Decode(&pub); err != nil {
		return NullifierPublic{}, err
	}
	return pub, nil
}

type nullifierGuest struct{}

func (nullifierGuest) Image() zkvm.ImageID { return NullifierImageID }

func (nullifierGuest) Run(private any) (any, error) {
	switch priv := private.(type) {
	case NullifierPrivate:
		return ExecuteNullifier(priv)
	case *NullifierPrivate:
		return ExecuteNullifier(*priv)
	default:
		return nil, fmt.Errorf("%w: got %T, want NullifierPrivate", ErrPrivateInput, private)
	}
}
