// SPDX-License-Identifier: MIT

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
)

type EngineConfig struct {
	EngineAddress   string `json:"engine_address"`
	TrustedProposer string `json:"trusted_proposer"`
	TipRecipient    string `json:"tip_recipient"`
	ForwardBudget   uint64 `json:"forward_budget"`

	BondAmount string `json:"bond_amount"`
	FeeToken   string `json:"fee_token"`
}

type AirdropConfig struct {
	Root         string `json:"root"`
	PublisherURL string `json:"publisher_url"`
	PollSeconds  uint64 `json:"poll_seconds"`
	Treasury     string `json:"treasury"`
}

type NodeConfig struct {
	RPCListenAddress string `json:"rpc"`
	DataDir          string `json:"data_dir"`
	GenesisFile      string `json:"genesis"`
	LogLevel         string `json:"log"`
}

type Config struct {
	Engine  EngineConfig  `json:"engine"`
	Airdrop AirdropConfig `json:"airdrop"`
	Node    NodeConfig    `json:"node"`
}

func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			EngineAddress:   "0x0000000000000000000000000000000000000010",
			TrustedProposer: "",
			TipRecipient:    "",
			ForwardBudget:   200_000,
			BondAmount:      "1000000000000000000",
			FeeToken:        "",
		},
		Airdrop: AirdropConfig{
			Root:         "",
			PublisherURL: "",
			PollSeconds:  30,
			Treasury:     "0x0000000000000000000000000000000000000099",
		},
		Node: NodeConfig{
			RPCListenAddress: "0.0.0.0:8545",
			DataDir:          "./provernet-data",
			GenesisFile:      "./config/genesis.json",
			LogLevel:         "info",
		},
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("cannot open config file: %w", err)
		}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid config json: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, fmt.Errorf("environment override error: %w", err)
	}

	return cfg, validate(cfg)
}

func applyEnvOverrides(cfg *Config) error {
	parseUint := func(key string, field *uint64) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s invalid numeric value: %s", key, v)
		}
		*field = n
		return nil
	}

	if err := parseUint("PROVERNET_FORWARD_BUDGET", &cfg.Engine.ForwardBudget); err != nil {
		return err
	}
	if err := parseUint("PROVERNET_AIRDROP_POLL", &cfg.Airdrop.PollSeconds); err != nil {
		return err
	}

	if v := os.Getenv("PROVERNET_ENGINE_ADDRESS"); v != "" {
		cfg.Engine.EngineAddress = v
	}
	if v := os.Getenv("PROVERNET_PROPOSER"); v != "" {
		cfg.Engine.TrustedProposer = v
	}
	if v := os.Getenv("PROVERNET_TIP_RECIPIENT"); v != "" {
		cfg.Engine.TipRecipient = v
	}
	if v := os.Getenv("PROVERNET_BOND_AMOUNT"); v != "" {
		cfg.Engine.BondAmount = v
	}
	if v := os.Getenv("PROVERNET_FEE_TOKEN"); v != "" {
		cfg.Engine.FeeToken = v
	}
	if v := os.Getenv("PROVERNET_AIRDROP_ROOT"); v != "" {
		cfg.Airdrop.Root = v
	}
	if v := os.Getenv("PROVERNET_AIRDROP_PUBLISHER"); v != "" {
		cfg.Airdrop.PublisherURL = v
	}
	if v := os.Getenv("PROVERNET_AIRDROP_TREASURY"); v != "" {
		cfg.Airdrop.Treasury = v
	}
	if v := os.Getenv("PROVERNET_RPC"); v != "" {
		cfg.Node.RPCListenAddress = v
	}
	if v := os.Getenv("PROVERNET_DATA_DIR"); v != "" {
		cfg.Node.DataDir = v
	}
	if v := os.Getenv("PROVERNET_LOG"); v != "" {
		cfg.Node.LogLevel = v
	}

	return nil
}

func validate(c Config) error {
	checkAddr := func(name, v string, required bool) error {
		if v == "" {
			if required {
				return fmt.Errorf("%s address is required", name)
			}
			return nil
		}
		if !strings.HasPrefix(v, "0x") {
			return fmt.Errorf("%s address invalid format: %s", name, v)
		}
		return nil
	}

	if err := checkAddr("engine", c.Engine.EngineAddress, true); err != nil {
		return err
	}
	if err := checkAddr("trusted_proposer", c.Engine.TrustedProposer, false); err != nil {
		return err
	}
	if err := checkAddr("tip_recipient", c.Engine.TipRecipient, false); err != nil {
		return err
	}
	if err := checkAddr("fee_token", c.Engine.FeeToken, false); err != nil {
		return err
	}
	if err := checkAddr("airdrop treasury", c.Airdrop.Treasury, false); err != nil {
		return err
	}

	if _, ok := new(big.Int).SetString(c.Engine.BondAmount, 10); !ok {
		return fmt.Errorf("invalid bond_amount format: %s", c.Engine.BondAmount)
	}

	if c.Engine.ForwardBudget == 0 {
		return errors.New("forward_budget must be > 0")
	}

	if c.Airdrop.Root != "" && !strings.HasPrefix(c.Airdrop.Root, "0x") {
		return fmt.Errorf("airdrop root invalid format: %s", c.Airdrop.Root)
	}

	if c.Node.DataDir == "" {
		return errors.New("data_dir cannot be empty")
	}

	return nil
}
