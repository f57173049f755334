package zkvm

import (
	"bytes"
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"nomoscl/pkg/crypto"
	"nomoscl/pkg/metrics"
)

// ExecutorProver runs guests without generating a proof. Its seal is a plain
// digest of the journal, so receipts are only trustworthy within the process
// that produced them. Use it for development and tests.
type ExecutorProver struct {
	registry *Registry
}

func NewExecutorProver(registry *Registry) *ExecutorProver {
	return &ExecutorProver{registry: registry}
}

func (p *ExecutorProver) Prove(ctx context.Context, id ImageID, private any) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	journal, err := p.registry.execute(id, private)
	if err != nil {
		metrics.ProofsTotal.WithLabelValues("executor", "failed").Inc()
		return nil, err
	}
	seal := executorSeal(id, journal)
	metrics.ProofsTotal.WithLabelValues("executor", "ok").Inc()
	metrics.ProofDuration.WithLabelValues("executor").Observe(time.Since(start).Seconds())

	log.Debug().
		Str("image", id.String()).
		Int("journal_bytes", len(journal)).
		Dur("elapsed", time.Since(start)).
		Msg("Executed guest")

	return &Receipt{Image: id, Journal: journal, Seal: seal[:]}, nil
}

func (p *ExecutorProver) Verify(r *Receipt, id ImageID) bool {
	if r == nil || r.Image != id {
		return false
	}
	seal := executorSeal(id, r.Journal)
	return bytes.Equal(r.Seal, seal[:])
}

func executorSeal(id ImageID, journal []byte) [32]byte {
	return crypto.Blake2s(crypto.TagExecutorSeal, id[:], journal)
}
