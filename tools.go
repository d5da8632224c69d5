package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/rpcpool/polkadot-faithful/scaleinfo"
)

// loadMetadataFlag is shared by every decode command.
func loadMetadataFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "metadata",
		Usage:    "Path to the chain metadata JSON file (pallets, extrinsic descriptor, type registry).",
		EnvVars:  []string{"POLKADOT_FAITHFUL_METADATA"},
		Required: true,
	}
}

func chainConfigFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "chain-config",
		Usage:   "Path to a chain config YAML file (genesis hash, SS58 prefix, token info).",
		EnvVars: []string{"POLKADOT_FAITHFUL_CHAIN_CONFIG"},
	}
}

func loadMetadata(cctx *cli.Context) (*scaleinfo.Metadata, error) {
	path := cctx.String("metadata")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}
	return scaleinfo.MetadataFromJSON(raw)
}

func loadChainConfigIfAny(cctx *cli.Context) (*ChainConfig, error) {
	path := cctx.String("chain-config")
	if path == "" {
		return nil, nil
	}
	return LoadChainConfig(path)
}

// readHexArg reads hex bytes from the command line argument, or from stdin
// when the argument is "-" or absent.
func readHexArg(cctx *cli.Context, position int) ([]byte, error) {
	arg := cctx.Args().Get(position)
	if arg == "" || arg == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		arg = strings.TrimSpace(string(raw))
	}
	return scaleinfo.DecodeHex(arg)
}
