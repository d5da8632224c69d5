package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/rpcpool/polkadot-faithful/chainrpc"
	"github.com/rpcpool/polkadot-faithful/jsonbuilder"
	"github.com/rpcpool/polkadot-faithful/scalebuf"
	"github.com/rpcpool/polkadot-faithful/scaledecode"
	"github.com/rpcpool/polkadot-faithful/scaleinfo"
	"github.com/rpcpool/polkadot-faithful/storagedata"
)

func newCmd_DecodeStorage() *cli.Command {
	var valueHex string
	var fetchRPC string
	return &cli.Command{
		Name:        "decode-storage",
		Usage:       "Decode a storage key (and its value) against chain metadata.",
		ArgsUsage:   "<hex-key | ->",
		Description: "Locate the storage entry whose prefix opens the key, parse the hashed key parts, and decode the value. The value comes from --value, or is fetched from the node given --rpc.",
		Flags: []cli.Flag{
			loadMetadataFlag(),
			chainConfigFlag(),
			&cli.StringFlag{
				Name:        "value",
				Usage:       "Hex-encoded storage value for the key.",
				Destination: &valueHex,
			},
			&cli.StringFlag{
				Name:        "rpc",
				Usage:       "Node JSON-RPC endpoint to fetch the storage value from (used when --value is absent).",
				EnvVars:     []string{"POLKADOT_FAITHFUL_RPC"},
				Destination: &fetchRPC,
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
			key, err := readHexArg(cctx, 0)
			if err != nil {
				return err
			}

			pallet, entry, err := storagedata.FindEntryForKey(meta, key)
			if err != nil {
				return err
			}
			if entry == nil {
				return fmt.Errorf("no storage entry in metadata matches the key prefix")
			}
			klog.V(2).Infof("key matches %s.%s", pallet.Name, entry.Name)

			var value []byte
			switch {
			case valueHex != "":
				value, err = scaleinfo.DecodeHex(valueHex)
				if err != nil {
					return err
				}
			case fetchRPC != "":
				client := chainrpc.NewClient(fetchRPC)
				value, err = client.GetStorage(cctx.Context, key)
				if err != nil {
					return err
				}
				if value == nil {
					return fmt.Errorf("node has no value under this key")
				}
			default:
				return fmt.Errorf("either --value or --rpc is required")
			}

			storage, err := storagedata.DecodeAsStorageEntry(scalebuf.Bytes(key), scalebuf.Bytes(value), entry, meta.Types)
			if err != nil {
				return err
			}

			opts := chainConfig.RenderOptions()
			out := jsonbuilder.NewObject().
				String("pallet", pallet.Name).
				String("entry", entry.Name).
				Value("key", renderKeyData(storage.Key, opts)).
				Value("value", scaledecode.RenderExtended(storage.Value, opts))
			if storage.Docs != "" {
				out.String("docs", storage.Docs)
			}
			rendered, err := out.Bytes()
			if err != nil {
				return err
			}
			fmt.Println(string(rendered))
			return nil
		},
	}
}

func renderKeyData(key storagedata.KeyData, opts scaledecode.RenderOptions) any {
	switch k := key.(type) {
	case storagedata.KeyPlain:
		return "plain"
	case storagedata.KeySingleHash:
		return renderKeyPart(k.Content, opts)
	case storagedata.KeyTupleHash:
		out := jsonbuilder.NewArray()
		for _, part := range k.Content {
			out.Add(renderKeyPart(part, opts))
		}
		return out
	default:
		return fmt.Sprintf("%T", key)
	}
}

func renderKeyPart(part storagedata.KeyPart, opts scaledecode.RenderOptions) any {
	switch p := part.(type) {
	case storagedata.KeyPartHash:
		return jsonbuilder.NewObject().
			String("hasher", p.Hash.Hasher.String()).
			Hex("hash", p.Hash.Hash).
			Uint("type_id", uint64(p.Hash.TypeID))
	case storagedata.KeyPartParsed:
		return scaledecode.RenderExtended(p.Data, opts)
	default:
		return fmt.Sprintf("%T", part)
	}
}
