package statements

import (
	"fmt"

	"nomoscl/pkg/cl"
	"nomoscl/pkg/merkle"
	"nomoscl/pkg/zkvm"
)

// InputImageID identifies the input-spend guest.
var InputImageID = zkvm.NewImageID("nomos-cl/input")

// InputPublic is the journal of the input-spend statement: a note included
// under CmRoot opens to Input and carries DeathConstraint.
type InputPublic struct {
	CmRoot          [32]byte
	Input           cl.Input
	DeathConstraint cl.DeathConstraint
}

type InputPrivate struct {
	Input  cl.InputWitness
	CmPath merkle.Path
}

// ExecuteInput evaluates the input-spend statement and returns the public
// values it proves.
func ExecuteInput(priv InputPrivate) (InputPublic, error) {
	leaf := merkle.Leaf(noteLeaf(priv.Input.ToOutputWitness().CommitNote()))
	root := merkle.PathRoot(leaf, priv.CmPath)
	if !merkle.VerifyPath(leaf, priv.CmPath, root) {
		return InputPublic{}, fmt.Errorf("%w: malformed commitment path", cl.ErrProofFailed)
	}
	return InputPublic{
		CmRoot:          root,
		Input:           priv.Input.Commit(),
		DeathConstraint: priv.Input.Note.DeathConstraint,
	}, nil
}

// CheckInput reports whether priv proves the claimed pub.
func CheckInput(pub InputPublic, priv InputPrivate) error {
	got, err := ExecuteInput(priv)
	if err != nil {
		return err
	}
	if got.Input != pub.Input {
		return fmt.Errorf("%w: witness does not open input %s", cl.ErrProofFailed, pub.Input.NoteComm.Hex())
	}
	if got.DeathConstraint != pub.DeathConstraint {
		return fmt.Errorf("%w: note carries a different death constraint", cl.ErrProofFailed)
	}
	if got.CmRoot != pub.CmRoot {
		return fmt.Errorf("%w: note is not included under root %x", cl.ErrProofFailed, pub.CmRoot[:4])
	}
	return nil
}

// DecodeInputPublic reads the public values of an input-spend receipt.
func DecodeInputPublic(r *zkvm.Receipt) (InputPublic, error) {
	var pub InputPublic
	if err := r.Decode(&pub); err != nil {
		return InputPublic{}, err
	}
	return pub, nil
}

type inputGuest struct{}

func (inputGuest) Image() zkvm.ImageID { return InputImageID }

func (inputGuest) Run(private any) (any, error) {
	switch priv := private.(type) {
	case InputPrivate:
		return ExecuteInput(priv)
	case *InputPrivate:
		return ExecuteInput(*priv)
	default:
		return nil, fmt.Errorf("%w: got %T, want InputPrivate", ErrPrivateInput, private)
	}
}

func noteLeaf(cm cl.NoteCommitment) []byte {
	return cm[:]
}
