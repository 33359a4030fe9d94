// SPDX-License-Identifier: MIT

package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"provernet-core/types"
)

// Config carries operator-local runtime settings loaded from the
// environment (optionally via a .env file). Engine-level parameters
// live in core.Config; this layer holds what differs per operator.
type Config struct {
	ProposerAddress types.Address
	ProposerPrivKey []byte
	RPCPort         string
	ConfigPath      string
	GenesisPath     string
	DataDir         string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		RPCPort:     getEnv("RPC_PORT", "8545"),
		ConfigPath:  getEnv("CONFIG_PATH", ""),
		GenesisPath: getEnv("GENESIS_PATH", ""),
		DataDir:     getEnv("DATA_DIR", "./provernet-data"),
	}

	proposerAddrStr := cleanEnvValue(os.Getenv("PROPOSER_ADDRESS"))
	proposerPrivStr := cleanEnvValue(os.Getenv("PROPOSER_PRIVATE_KEY"))

	if proposerPrivStr != "" {
		privBytes, err := hex.DecodeString(proposerPrivStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PROPOSER_PRIVATE_KEY: %w", err)
		}
		cfg.ProposerPrivKey = privBytes

		addr, err := types.AddressFromPrivateKey(privBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to derive address from private key: %w", err)
		}
		cfg.ProposerAddress = addr
	} else if proposerAddrStr != "" {
		addr, err := types.HexToAddress(proposerAddrStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PROPOSER_ADDRESS: %w", err)
		}
		cfg.ProposerAddress = addr
	} else {
		_, addr, _ := types.GenerateKey()
		cfg.ProposerAddress = addr
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func cleanEnvValue(val string) string {
	val = strings.TrimSpace(val)
	if idx := strings.Index(val, "#"); idx != -1 {
		val = strings.TrimSpace(val[:idx])
	}
	return val
}
