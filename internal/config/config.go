// Package config holds the tunables shared across the wallet core and the
// demo CLI: polling cadence, RLP field-size limits, RPC timeouts, and the
// target network's chain ID and EIP-155 policy.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configurable parameters for the wallet core.
type Config struct {
	// MineInterval is how often RawTx polls for a transaction receipt.
	MineInterval time.Duration
	// WaitPendingTimeout bounds the total receipt-polling time.
	WaitPendingTimeout time.Duration
	// ReasonableMaxLen caps any single RLP field's length.
	ReasonableMaxLen int
	// RPCTimeout bounds a single JSON-RPC request/response round trip.
	RPCTimeout time.Duration

	// ChainID is the EIP-155 chain identifier.
	ChainID uint32
	// EIP155 toggles replay-protected signing.
	EIP155 bool

	// NodeURL is the JSON-RPC endpoint the demo CLI connects to.
	NodeURL string
	// PrivateKeyHex, if set, seeds the demo CLI's account non-interactively.
	PrivateKeyHex string
}

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		MineInterval:       3 * time.Second,
		WaitPendingTimeout: 30 * time.Second,
		ReasonableMaxLen:   8192,
		RPCTimeout:         15 * time.Second,

		ChainID: 1,
		EIP155:  true,
	}
}

// FromEnv returns a Config populated from OS environment variables,
// falling back to defaults for unset values.
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv("MINE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.MineInterval = d
		}
	}
	if v := os.Getenv("WAIT_PENDING_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WaitPendingTimeout = d
		}
	}
	if v := os.Getenv("RLP_MAX_LEN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ReasonableMaxLen = n
		}
	}
	if v := os.Getenv("RPC_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RPCTimeout = d
		}
	}
	if v := os.Getenv("CHAIN_ID"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.ChainID = uint32(n)
		}
	}
	if v := os.Getenv("EIP155"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EIP155 = b
		}
	}
	if v := os.Getenv("NODE_URL"); v != "" {
		cfg.NodeURL = v
	}
	if v := os.Getenv("PRIVATE_KEY_HEX"); v != "" {
		cfg.PrivateKeyHex = v
	}

	return cfg
}

// FromDotEnv loads a ".env" file at path into the process environment
// before reading Config from it, letting the demo CLI keep secrets out of
// the shell. A missing file is not an error: it falls through to whatever
// is already set in the OS environment.
func FromDotEnv(path string) Config {
	if err := godotenv.Load(path); err != nil {
		slog.Default().With("component", "config").Debug("no .env file loaded", "path", path, "error", err)
	}
	return FromEnv()
}
