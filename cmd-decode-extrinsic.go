package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/rpcpool/polkadot-faithful/scalebuf"
	"github.com/rpcpool/polkadot-faithful/scaledecode"
)

func newCmd_DecodeExtrinsic() *cli.Command {
	var debugDump bool
	return &cli.Command{
		Name:        "decode-extrinsic",
		Usage:       "Decode an unchecked extrinsic (hex) against chain metadata.",
		ArgsUsage:   "<hex-extrinsic | ->",
		Description: "Decode a length-prefixed unchecked extrinsic, signed or unsigned, and print it as JSON. Reads hex from the argument or stdin.",
		Flags: []cli.Flag{
			loadMetadataFlag(),
			chainConfigFlag(),
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "Dump the raw decoded tree instead of rendered JSON.",
				Destination: &debugDump,
			},
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
			klog.V(2).Infof("decoding extrinsic of %d bytes", len(raw))

			extrinsic, err := scaledecode.DecodeAsUncheckedExtrinsic(scalebuf.Bytes(raw), meta)
			if err != nil {
				return err
			}
			if debugDump {
				spew.Dump(extrinsic)
				return nil
			}
			rendered, err := scaledecode.RenderUncheckedExtrinsic(extrinsic, chainConfig.RenderOptions()).Bytes()
			if err != nil {
				return err
			}
			fmt.Println(string(rendered))
			return nil
		},
	}
}
