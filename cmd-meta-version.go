package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/rpcpool/polkadot-faithful/jsonbuilder"
	"github.com/rpcpool/polkadot-faithful/scaledecode"
)

func newCmd_MetaVersion() *cli.Command {
	return &cli.Command{
		Name:        "meta-version",
		Usage:       "Print the spec name and version found in the metadata.",
		Description: "Decode the System.Version constant from the metadata and print the spec name and spec version it declares.",
		Flags: []cli.Flag{
			loadMetadataFlag(),
		},
		Action: func(cctx *cli.Context) error {
			meta, err := loadMetadata(cctx)
			if err != nil {
				return err
			}
			nameVersion, err := scaledecode.SpecNameVersionFromMetadata(meta)
			if err != nil {
				return err
			}
			rendered, err := jsonbuilder.NewObject().
				String("spec_name", nameVersion.SpecName).
				String("spec_version", nameVersion.PrintedSpecVersion).
				Bytes()
			if err != nil {
				return err
			}
			fmt.Println(string(rendered))
			return nil
		},
	}
}
