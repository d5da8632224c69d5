package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/rpcpool/polkadot-faithful/jsonbuilder"
	"github.com/rpcpool/polkadot-faithful/scalebuf"
	"github.com/rpcpool/polkadot-faithful/scaledecode"
)

func newCmd_DecodeSignable() *cli.Command {
	return &cli.Command{
		Name:        "decode-signable",
		Usage:       "Decode a signable payload (hex) against chain metadata.",
		ArgsUsage:   "<hex-payload | ->",
		Description: "Decode a signable payload (call bytes followed by signed-extension bytes), verify the extension invariants, and print it as JSON. The genesis hash from the chain config, when present, is checked against the payload.",
		Flags: []cli.Flag{
			loadMetadataFlag(),
			chainConfigFlag(),
		},
		Action: func(cctx *cli.Context) error {
			meta, err := loadMetadata(cctx)
			if err != nil {
				return err
			}
			chainConfig, err := loadChainConfigIfAny(cctx)
			if err != nil {
				return err
			}
			raw, err := readHexArg(cctx, 0)
			if err != nil {
				return err
			}
			klog.V(2).Infof("decoding signable payload of %d bytes", len(raw))

			signable, err := scaledecode.DecodeAsSignable(scalebuf.Bytes(raw), meta, chainConfig.GenesisHashBytes())
			if err != nil {
				return err
			}

			opts := chainConfig.RenderOptions()
			out := jsonbuilder.NewObject().
				Value("call", scaledecode.RenderExtended(scaledecode.ExtendedData{Data: signable.Call}, opts)).
				Array("extensions", func(list *jsonbuilder.ArrayBuilder) {
					for i := range signable.Extensions {
						list.Add(scaledecode.RenderExtended(signable.Extensions[i], opts))
					}
				})
			rendered, err := out.Bytes()
			if err != nil {
				return err
			}
			fmt.Println(string(rendered))
			return nil
		},
	}
}
