// Package metrics holds the Prometheus collectors of the prover and ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Prover
	ProofsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nomoscl_proofs_total",
			Help: "Total number of proof requests by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	ProofDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nomoscl_proof_duration_seconds",
			Help:    "Proof generation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"backend"},
	)

	ProverQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nomoscl_prover_queue_depth",
		Help: "Number of proof requests waiting for a worker",
	})

	// Ledger
	BundlesAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nomoscl_bundles_accepted_total",
		Help: "Total number of bundles applied to the ledger",
	})

	BundlesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nomoscl_bundles_rejected_total",
			Help: "Total number of bundles rejected by the ledger",
		},
		[]string{"reason"},
	)

	NullifierSetSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nomoscl_nullifier_set_size",
		Help: "Number of spent nullifiers",
	})

	CommitmentSetSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nomoscl_commitment_set_size",
		Help: "Number of note commitments in the accumulator",
	})
)
