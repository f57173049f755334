package core

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProverExecutor = "executor"
	ProverGroth16  = "groth16"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	// Proving backend
	Prover           string        `yaml:"prover"`
	ProvingKeyFile   string        `yaml:"proving_key_file"`
	VerifyingKeyFile string        `yaml:"verifying_key_file"`
	ProverWorkers    int           `yaml:"prover_workers"`
	ProveTimeout     time.Duration `yaml:"prove_timeout"`

	// Ledger
	MerkleTreeDepth int `yaml:"merkle_tree_depth"`

	// Observability
	LogLevel    string `yaml:"log_level"`
	LogJSON     bool   `yaml:"log_json"`
	MetricsAddr string `yaml:"metrics_addr"`

	// JSON-RPC listen address. Empty disables the server.
	RPCAddr string `yaml:"rpc_addr"`
	// AllowDevProver lets the executor backend, whose seals anyone can
	// compute, accept bundles over RPC.
	AllowDevProver bool `yaml:"allow_dev_prover"`
}

func DefaultConfig() *Config {
	return &Config{
		Prover:          ProverExecutor,
		ProverWorkers:   4,
		ProveTimeout:    5 * time.Minute,
		MerkleTreeDepth: 8, // 256 notes
		LogLevel:        "info",
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig and then applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CL_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CL_PROVER"); v != "" {
		c.Prover = v
	}
	if v := os.Getenv("CL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("CL_METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}
	if v := os.Getenv("CL_RPC_ADDR"); v != "" {
		c.RPCAddr = v
	}
	if v := os.Getenv("CL_ALLOW_DEV_PROVER"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: CL_ALLOW_DEV_PROVER: %v", ErrInvalidConfig, err)
		}
		c.AllowDevProver = b
	}
	if v := os.Getenv("CL_PROVER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: CL_PROVER_WORKERS: %v", ErrInvalidConfig, err)
		}
		c.ProverWorkers = n
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Prover {
	case ProverExecutor, ProverGroth16:
	default:
		return fmt.Errorf("%w: unknown prover %q", ErrInvalidConfig, c.Prover)
	}
	if c.ProverWorkers < 1 {
		return fmt.Errorf("%w: prover_workers must be positive, got %d", ErrInvalidConfig, c.ProverWorkers)
	}
	if c.ProveTimeout <= 0 {
		return fmt.Errorf("%w: prove_timeout must be positive", ErrInvalidConfig)
	}
	if c.MerkleTreeDepth < 1 || c.MerkleTreeDepth > 32 {
		return fmt.Errorf("%w: merkle_tree_depth must be in [1, 32], got %d", ErrInvalidConfig, c.MerkleTreeDepth)
	}
	if c.RPCAddr != "" && c.Prover == ProverExecutor && !c.AllowDevProver {
		return fmt.Errorf("%w: rpc_addr with the executor prover requires allow_dev_prover", ErrInvalidConfig)
	}
	if (c.ProvingKeyFile == "") != (c.VerifyingKeyFile == "") {
		return fmt.Errorf("%w: proving and verifying key files must be set together", ErrInvalidConfig)
	}
	return nil
}
