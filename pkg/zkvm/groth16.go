package zkvm

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/rs/zerolog/log"

	"nomoscl/pkg/metrics"
)

// Groth16Prover executes guests and seals their journals with a Groth16
// proof over JournalCircuit. The seal attests that the holder of the proving
// key committed this journal under this image. It does not prove the guest's
// execution: the circuit's secret inputs are derivable from the public
// journal, so anyone holding the proving key can seal any journal. Treat it
// as a keyed attestation, not a soundness proof of the statement.
type Groth16Prover struct {
	registry     *Registry
	r1cs         constraint.ConstraintSystem
	provingKey   groth16.ProvingKey
	verifyingKey groth16.VerifyingKey
}

// CompileJournalCircuit compiles JournalCircuit over BN254.
func CompileJournalCircuit() (constraint.ConstraintSystem, error) {
	var circuit JournalCircuit
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("failed to compile circuit: %w", err)
	}
	return ccs, nil
}

// NewGroth16Prover compiles the journal circuit and loads its keys from
// pkPath and vkPath, running a fresh setup (and saving the result) when they
// are missing. Empty paths keep the keys in memory only.
func NewGroth16Prover(registry *Registry, pkPath, vkPath string) (*Groth16Prover, error) {
	ccs, err := CompileJournalCircuit()
	if err != nil {
		return nil, err
	}

	var pk groth16.ProvingKey
	var vk groth16.VerifyingKey
	if pkPath == "" || vkPath == "" {
		pk, vk, err = groth16.Setup(ccs)
	} else {
		pk, vk, err = SetupOrLoadKeys(ccs, pkPath, vkPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to setup keys: %w", err)
	}

	log.Info().
		Int("constraints", ccs.GetNbConstraints()).
		Int("max_journal_bytes", MaxJournalSize).
		Msg("Groth16 journal prover ready")

	return &Groth16Prover{
		registry:     registry,
		r1cs:         ccs,
		provingKey:   pk,
		verifyingKey: vk,
	}, nil
}

func (p *Groth16Prover) Prove(ctx context.Context, id ImageID, private any) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	receipt, err := p.prove(id, private)
	if err != nil {
		metrics.ProofsTotal.WithLabelValues("groth16", "failed").Inc()
		return nil, err
	}
	metrics.ProofsTotal.WithLabelValues("groth16", "ok").Inc()
	metrics.ProofDuration.WithLabelValues("groth16").Observe(time.Since(start).Seconds())

	log.Debug().
		Str("image", id.String()).
		Int("journal_bytes", len(receipt.Journal)).
		Int("seal_bytes", len(receipt.Seal)).
		Dur("elapsed", time.Since(start)).
		Msg("Sealed journal")
	return receipt, nil
}

func (p *Groth16Prover) prove(id ImageID, private any) (*Receipt, error) {
	journal, err := p.registry.execute(id, private)
	if err != nil {
		return nil, err
	}
	elems, err := packJournal(id, journal)
	if err != nil {
		return nil, err
	}

	witness, err := frontend.NewWitness(elems.assignment(), ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("failed to create witness: %w", err)
	}
	proof, err := groth16.Prove(p.r1cs, p.provingKey, witness)
	if err != nil {
		return nil, fmt.Errorf("failed to generate proof: %w", err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize proof: %w", err)
	}
	return &Receipt{Image: id, Journal: journal, Seal: buf.Bytes()}, nil
}

// Verify recomputes the public inputs from the receipt's journal and checks
// the seal against them.
func (p *Groth16Prover) Verify(r *Receipt, id ImageID) bool {
	if err := p.verify(r, id); err != nil {
		log.Debug().Err(err).Str("image", id.String()).Msg("Receipt rejected")
		return false
	}
	return true
}

func (p *Groth16Prover) verify(r *Receipt, id ImageID) error {
	if r == nil {
		return fmt.Errorf("nil receipt")
	}
	if r.Image != id {
		return fmt.Errorf("receipt for image %s, want %s", r.Image, id)
	}
	elems, err := packJournal(id, r.Journal)
	if err != nil {
		return err
	}
	publicWitness, err := frontend.NewWitness(elems.publicAssignment(), ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("failed to create public witness: %w", err)
	}

	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(r.Seal)); err != nil {
		return fmt.Errorf("failed to deserialize proof: %w", err)
	}
	return groth16.Verify(proof, p.verifyingKey, publicWitness)
}

// SetupOrLoadKeys loads Groth16 keys from disk, or generates and saves them
// when either file cannot be read.
func SetupOrLoadKeys(ccs constraint.ConstraintSystem, pkPath, vkPath string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk, pkErr := LoadProvingKey(pkPath)
	vk, vkErr := LoadVerifyingKey(vkPath)
	if pkErr == nil && vkErr == nil {
		log.Info().Str("pk", pkPath).Str("vk", vkPath).Msg("Loaded Groth16 keys")
		return pk, vk, nil
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, err
	}
	if err := SaveProvingKey(pkPath, pk); err != nil {
		return nil, nil, err
	}
	if err := SaveVerifyingKey(vkPath, vk); err != nil {
		return nil, nil, err
	}
	log.Info().Str("pk", pkPath).Str("vk", vkPath).Msg("Generated Groth16 keys")
	return pk, vk, nil
}

func SaveProvingKey(path string, pk groth16.ProvingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = pk.WriteTo(f)
	return err
}

func SaveVerifyingKey(path string, vk groth16.VerifyingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = vk.WriteTo(f)
	return err
}

func LoadProvingKey(path string) (groth16.ProvingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pk := groth16.NewProvingKey(ecc.BN254)
	_, err = pk.ReadFrom(f)
	return pk, err
}

func LoadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vk := groth16.NewVerifyingKey(ecc.BN254)
	_, err = vk.ReadFrom(f)
	return vk, err
}
