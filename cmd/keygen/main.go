package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nomoscl/pkg/zkvm"
)

func main() {
	// Configure logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	pkPath := flag.String("pk", "journal.pk", "output path of the proving key")
	vkPath := flag.String("vk", "journal.vk", "output path of the verifying key")
	force := flag.Bool("force", false, "overwrite existing keys")
	flag.Parse()

	if !*force {
		for _, p := range []string{*pkPath, *vkPath} {
			if _, err := os.Stat(p); err == nil {
				log.Fatal().Str("path", p).Msg("Key file exists, pass -force to overwrite")
			}
		}
	}

	ccs, err := zkvm.CompileJournalCircuit()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compile journal circuit")
	}
	log.Info().Int("constraints", ccs.GetNbConstraints()).Msg("Compiled journal circuit")

	// SetupOrLoadKeys only generates when loading fails
	_ = os.Remove(*pkPath)
	_ = os.Remove(*vkPath)
	if _, _, err := zkvm.SetupOrLoadKeys(ccs, *pkPath, *vkPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to generate keys")
	}

	fmt.Println("Generated Groth16 journal keys")
	fmt.Println("------------------------------")
	fmt.Printf("Proving Key:   %s\n", *pkPath)
	fmt.Printf("Verifying Key: %s\n", *vkPath)
	fmt.Println("\nTo use them with the ledger:")
	fmt.Printf("CL_PROVER=groth16 ./nomoscl -config config.yaml  # with proving_key_file: %s, verifying_key_file: %s\n", *pkPath, *vkPath)
}
