package zkvm

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"nomoscl/pkg/metrics"
)

// Result is the outcome of a pooled proof request.
type Result struct {
	Receipt *Receipt
	Err     error
}

type job struct {
	ctx     context.Context
	id      ImageID
	private any
	result  chan Result
}

// Pool runs proof requests on a fixed number of workers so that callers can
// await several long-running proofs at once. Pool is itself a Prover.
type Pool struct {
	prover Prover
	jobs   chan job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeOnce sync.Once
}

func NewPool(prover Prover, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		prover: prover,
		jobs:   make(chan job, workers),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	log.Info().Int("workers", workers).Msg("Prover pool started")
	return p
}

func (p *Pool) worker(n int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case j := <-p.jobs:
			metrics.ProverQueueDepth.Dec()
			if err := j.ctx.Err(); err != nil {
				j.result <- Result{Err: err}
				continue
			}
			r, err := p.prover.Prove(j.ctx, j.id, j.private)
			if err != nil {
				log.Debug().Err(err).Int("worker", n).Str("image", j.id.String()).Msg("Proof request failed")
			}
			j.result <- Result{Receipt: r, Err: err}
		}
	}
}

// Submit queues a proof request. The returned channel receives exactly one
// Result unless the pool is closed first.
func (p *Pool) Submit(ctx context.Context, id ImageID, private any) (<-chan Result, error) {
	if p.ctx.Err() != nil {
		return nil, ErrPoolClosed
	}
	j := job{ctx: ctx, id: id, private: private, result: make(chan Result, 1)}
	metrics.ProverQueueDepth.Inc()
	select {
	case p.jobs <- j:
		return j.result, nil
	case <-ctx.Done():
		metrics.ProverQueueDepth.Dec()
		return nil, ctx.Err()
	case <-p.ctx.Done():
		metrics.ProverQueueDepth.Dec()
		return nil, ErrPoolClosed
	}
}

// Prove submits a request and waits for its result.
func (p *Pool) Prove(ctx context.Context, id ImageID, private any) (*Receipt, error) {
	ch, err := p.Submit(ctx, id, private)
	if err != nil {
		return nil, err
	}
	select {
	case res := <-ch:
		return res.Receipt, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, ErrPoolClosed
	}
}

// Close stops the workers. Requests still queued are dropped.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.cancel()
		p.wg.Wait()
		log.Info().Msg("Prover pool stopped")
	})
}
