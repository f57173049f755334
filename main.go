package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"nomoscl/pkg/cl"
	"nomoscl/pkg/core"
	"nomoscl/pkg/ledger"
	"nomoscl/pkg/rpc"
	"nomoscl/pkg/statements"
	"nomoscl/pkg/zkvm"
)

// backend is a proving backend that can also check its own receipts.
type backend interface {
	zkvm.Prover
	zkvm.Verifier
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	config, err := core.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := core.SetupLogging(config); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logging: %v\n", err)
		os.Exit(1)
	}

	prover, err := newBackend(config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create prover")
	}
	pool := zkvm.NewPool(prover, config.ProverWorkers)
	defer pool.Close()

	l := ledger.New(prover, config.MerkleTreeDepth)

	ctx, cancel := context.WithTimeout(context.Background(), config.ProveTimeout)
	defer cancel()
	if err := runSwap(ctx, pool, l, rand.Reader); err != nil {
		log.Fatal().Err(err).Msg("Swap bundle failed")
	}

	if config.MetricsAddr == "" && config.RPCAddr == "" {
		return
	}

	var metricsSrv *http.Server
	if config.MetricsAddr != "" {
		metricsSrv = &http.Server{Addr: config.MetricsAddr, Handler: promhttp.Handler()}
		go func() {
			log.Info().Str("addr", config.MetricsAddr).Msg("Serving metrics")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	var rpcServer *rpc.Server
	if config.RPCAddr != "" {
		rpcServer = rpc.NewServer(l, config.RPCAddr)
		if err := rpcServer.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start RPC server")
		}
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	// Graceful shutdown
	stopServers(context.Background(), rpcServer, metricsSrv)
}

// stopServers stops whichever servers were started and logs their errors.
func stopServers(ctx context.Context, rpcServer *rpc.Server, metricsSrv *http.Server) {
	if rpcServer != nil {
		if err := rpcServer.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop RPC server")
		}
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to stop metrics server")
		}
	}
}

func newBackend(config *core.Config) (backend, error) {
	registry := statements.NewRegistry()
	switch config.Prover {
	case core.ProverGroth16:
		p, err := zkvm.NewGroth16Prover(registry, config.ProvingKeyFile, config.VerifyingKeyFile)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return zkvm.NewExecutorProver(registry), nil
	}
}

// runSwap mints three notes and settles a two-party swap of 10 NMO and
// 23 ETH against 4840 CRV.
func runSwap(ctx context.Context, prover zkvm.Prover, l *ledger.Ledger, rng io.Reader) error {
	alice, err := swapSide(rng, []note{{10, "NMO"}, {23, "ETH"}}, []note{{4840, "CRV"}})
	if err != nil {
		return err
	}
	bob, err := swapSide(rng, []note{{4840, "CRV"}}, []note{{10, "NMO"}, {23, "ETH"}})
	if err != nil {
		return err
	}

	w := cl.BundleWitness{Partials: []cl.PartialTxWitness{alice, bob}}
	w.BalanceBlinding = w.ComputeBalanceBlinding()

	for _, ptx := range w.Partials {
		for _, in := range ptx.Inputs {
			if err := l.Mint(in.ToOutputWitness().Commit()); err != nil {
				return fmt.Errorf("failed to mint: %w", err)
			}
		}
	}

	sub, err := ledger.ProveBundle(ctx, prover, w, l.Commitments())
	if err != nil {
		return fmt.Errorf("failed to prove bundle: %w", err)
	}
	return l.ApplyBundle(sub)
}

type note struct {
	value uint64
	unit  string
}

func swapSide(rng io.Reader, spend, create []note) (cl.PartialTxWitness, error) {
	var w cl.PartialTxWitness
	for _, n := range spend {
		nw, err := cl.NewNoteWitness(n.value, n.unit, [32]byte{}, rng)
		if err != nil {
			return w, err
		}
		in, err := cl.RandomInputWitness(nw, rng)
		if err != nil {
			return w, err
		}
		w.Inputs = append(w.Inputs, in)
	}
	for _, n := range create {
		nw, err := cl.NewNoteWitness(n.value, n.unit, [32]byte{}, rng)
		if err != nil {
			return w, err
		}
		owner, err := cl.RandomNullifierSecret(rng)
		if err != nil {
			return w, err
		}
		out, err := cl.RandomOutputWitness(nw, owner.Commit(), rng)
		if err != nil {
			return w, err
		}
		w.Outputs = append(w.Outputs, out)
	}
	return w, nil
}
