package core

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
prover: groth16
proving_key_file: journal.pk
verifying_key_file: journal.vk
prove_timeout: 30s
merkle_tree_depth: 12
rpc_addr: 127.0.0.1:8545
`), 0o600))

	t.Setenv("CL_LOG_LEVEL", "debug")
	t.Setenv("CL_PROVER_WORKERS", "2")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ProverGroth16, cfg.Prover)
	assert.Equal(t, "journal.pk", cfg.ProvingKeyFile)
	assert.Equal(t, 30*time.Second, cfg.ProveTimeout)
	assert.Equal(t, 12, cfg.MerkleTreeDepth)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.ProverWorkers)
	assert.Equal(t, "127.0.0.1:8545", cfg.RPCAddr)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prover: groth16\n"), 0o600))
	t.Setenv("CL_PROVER", "executor")
	t.Setenv("CL_RPC_ADDR", ":9545")
	t.Setenv("CL_ALLOW_DEV_PROVER", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ProverExecutor, cfg.Prover)
	assert.Equal(t, ":9545", cfg.RPCAddr)
	assert.True(t, cfg.AllowDevProver)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("merkle_tree_depth: [1"), 0o600))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	t.Setenv("CL_PROVER_WORKERS", "many")
	_, err = LoadConfig("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"prover":    func(c *Config) { c.Prover = "risc0" },
		"workers":   func(c *Config) { c.ProverWorkers = 0 },
		"timeout":   func(c *Config) { c.ProveTimeout = 0 },
		"depth":     func(c *Config) { c.MerkleTreeDepth = 33 },
		"key files": func(c *Config) { c.ProvingKeyFile = "journal.pk" },
		"dev rpc":   func(c *Config) { c.RPCAddr = ":8545" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestValidateRPCProver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RPCAddr = ":8545"
	require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.AllowDevProver = true
	assert.NoError(t, cfg.Validate())

	cfg.AllowDevProver = false
	cfg.Prover = ProverGroth16
	assert.NoError(t, cfg.Validate())

	t.Setenv("CL_ALLOW_DEV_PROVER", "sometimes")
	assert.ErrorIs(t, DefaultConfig().ApplyEnv(), ErrInvalidConfig)
}

func TestSetupLogging(t *testing.T) {
	defer func(l zerolog.Logger, lvl zerolog.Level) {
		log.Logger = l
		zerolog.SetGlobalLevel(lvl)
	}(log.Logger, zerolog.GlobalLevel())

	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	cfg.LogJSON = true
	require.NoError(t, setupLogging(cfg, &buf))

	log.Info().Msg("hidden")
	log.Warn().Str("root", "0xabc").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"root":"0xabc"`)

	cfg.LogLevel = "loud"
	assert.ErrorIs(t, setupLogging(cfg, &buf), ErrInvalidConfig)
}
