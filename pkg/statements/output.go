package statements

import (
	"fmt"

	"nomoscl/pkg/cl"
	"nomoscl/pkg/zkvm"
)

// OutputImageID identifies the output-opening guest.
var OutputImageID = zkvm.NewImageID("nomos-cl/output")

// OutputPublic is the journal of the output-opening statement: Output commits
// to a note whose balance opens to a u64 value of a single unit.
type OutputPublic struct {
	Output cl.Output
}

type OutputPrivate struct {
	Output cl.OutputWitness
}

func ExecuteOutput(priv OutputPrivate) (OutputPublic, error) {
	return OutputPublic{Output: priv.Output.Commit()}, nil
}

// CheckOutput reports whether priv proves the claimed pub.
func CheckOutput(pub OutputPublic, priv OutputPrivate) error {
	got, err := ExecuteOutput(priv)
	if err != nil {
		return err
	}
	if got != pub {
		return fmt.Errorf("%w: witness does not open output %s", cl.ErrProofFailed, pub.Output.NoteComm.Hex())
	}
	return nil
}

func DecodeOutputPublic(r *zkvm.Receipt) (OutputPublic, error) {
	var pub OutputPublic
	if err := r.Decode(&pub); err != nil {
		return OutputPublic{}, err
	}
	return pub, nil
}

type outputGuest struct{}

func (outputGuest) Image() zkvm.ImageID { return OutputImageID }

func (outputGuest) Run(private any) (any, error) {
	switch priv := private.(type) {
	case OutputPrivate:
		return ExecuteOutput(priv)
	case *OutputPrivate:
		return ExecuteOutput(*priv)
	default:
		return nil, fmt.Errorf("%w: got %T, want OutputPrivate", ErrPrivateInput, private)
	}
}
