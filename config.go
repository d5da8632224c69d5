package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rpcpool/polkadot-faithful/scaledecode"
	"github.com/rpcpool/polkadot-faithful/scaleinfo"
)

// ChainConfig describes one chain: where to reach it and how to render its
// data.
type ChainConfig struct {
	Name        string `yaml:"name"`
	RPC         string `yaml:"rpc"`
	GenesisHash string `yaml:"genesis_hash"`

	SS58Prefix    *uint16 `yaml:"ss58_prefix"`
	TokenSymbol   string  `yaml:"token_symbol"`
	TokenDecimals *uint8  `yaml:"token_decimals"`
}

// LoadChainConfig reads a chain config from a YAML file.
func LoadChainConfig(path string) (*ChainConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain config: %w", err)
	}
	var config ChainConfig
	if err := yaml.Unmarshal(raw, &config); err != nil {
		return nil, fmt.Errorf("failed to parse chain config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chain config %s: %w", path, err)
	}
	return &config, nil
}

// Validate checks the config fields that have a verifiable shape.
func (c *ChainConfig) Validate() error {
	if c.GenesisHash != "" {
		raw, err := scaleinfo.DecodeHex(c.GenesisHash)
		if err != nil {
			return fmt.Errorf("genesis_hash: %w", err)
		}
		if len(raw) != 32 {
			return fmt.Errorf("genesis_hash: expected 32 bytes, got %d", len(raw))
		}
	}
	return nil
}

// GenesisHashBytes returns the configured genesis hash, nil when absent.
func (c *ChainConfig) GenesisHashBytes() *[32]byte {
	if c == nil || c.GenesisHash == "" {
		return nil
	}
	raw, err := scaleinfo.DecodeHex(c.GenesisHash)
	if err != nil || len(raw) != 32 {
		return nil
	}
	var out [32]byte
	copy(out[:], raw)
	return &out
}

// RenderOptions translates the config into rendering options.
func (c *ChainConfig) RenderOptions() scaledecode.RenderOptions {
	if c == nil {
		return scaledecode.RenderOptions{}
	}
	return scaledecode.RenderOptions{
		SS58Prefix:    c.SS58Prefix,
		TokenSymbol:   c.TokenSymbol,
		TokenDecimals: c.TokenDecimals,
	}
}
