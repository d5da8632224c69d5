package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ryanuber/go-glob"
	"github.com/schollz/progressbar/v3"
	concurrently "github.com/tejzpr/ordered-concurrently/v3"
	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/rpcpool/polkadot-faithful/chainrpc"
	"github.com/rpcpool/polkadot-faithful/jsonbuilder"
	"github.com/rpcpool/polkadot-faithful/scalebuf"
	"github.com/rpcpool/polkadot-faithful/scaledecode"
	"github.com/rpcpool/polkadot-faithful/scaleinfo"
)

func newCmd_DecodeBlock() *cli.Command {
	var rpcEndpoint string
	var blockHash string
	var blockNumber uint64
	var keepGoing bool
	var callFilter string
	return &cli.Command{
		Name:        "decode-block",
		Usage:       "Fetch a block over RPC and decode every extrinsic in it.",
		Description: "Fetch a block (by hash, by number, or the chain head) from a node and decode all its extrinsics against the provided metadata.",
		Flags: []cli.Flag{
			loadMetadataFlag(),
			chainConfigFlag(),
			&cli.StringFlag{
				Name:        "rpc",
				Usage:       "Node JSON-RPC endpoint.",
				EnvVars:     []string{"POLKADOT_FAITHFUL_RPC"},
				Destination: &rpcEndpoint,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "hash",
				Usage:       "Block hash to fetch (defaults to the chain head).",
				Destination: &blockHash,
			},
			&cli.Uint64Flag{
				Name:        "number",
				Usage:       "Block number to fetch (resolved to a hash via the node).",
				Destination: &blockNumber,
			},
			&cli.BoolFlag{
				Name:        "keep-going",
				Usage:       "Report extrinsics that fail to decode instead of stopping at the first failure.",
				Destination: &keepGoing,
			},
			&cli.StringFlag{
				Name:        "filter",
				Usage:       "Only output calls whose pallet.call matches this glob (e.g. 'Balances.*').",
				Destination: &callFilter,
			},
			&cli.UintFlag{
				Name:  "w",
				Usage: "Number of decode workers (defaults to the number of CPUs).",
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

			client := chainrpc.NewClient(rpcEndpoint)
			hash := blockHash
			if hash == "" && cctx.IsSet("number") {
				hash, err = client.GetBlockHash(cctx.Context, blockNumber)
				if err != nil {
					return err
				}
			}
			block, err := client.GetBlock(cctx.Context, hash)
			if err != nil {
				return err
			}
			klog.Infof("block %s: %d extrinsics", block.Header.Number, len(block.Extrinsics))

			opts := chainConfig.RenderOptions()
			numWorkers := cctx.Uint("w")
			if numWorkers == 0 {
				numWorkers = uint(runtime.NumCPU())
			}

			workerInputChan := make(chan concurrently.WorkFunction, numWorkers)
			outputChan := concurrently.Process(
				cctx.Context,
				workerInputChan,
				&concurrently.Options{PoolSize: int(numWorkers), OutChannelBuffer: int(numWorkers)},
			)
			go func() {
				defer close(workerInputChan)
				for i, printed := range block.Extrinsics {
					workerInputChan <- extrinsicDecodeJob{
						index:   i,
						printed: printed,
						meta:    meta,
					}
				}
			}()

			bar := progressbar.Default(int64(len(block.Extrinsics)), "decoding extrinsics")
			decoded := jsonbuilder.NewArray()
			var firstErr error
			for result := range outputChan {
				res := result.Value.(extrinsicDecodeResult)
				bar.Add(1)
				if res.err != nil {
					if !keepGoing {
						if firstErr == nil {
							firstErr = fmt.Errorf("extrinsic %d: %w", res.index, res.err)
						}
						continue
					}
					klog.Warningf("extrinsic %d: %v", res.index, res.err)
					decoded.AddObject(func(elem *jsonbuilder.OrderedObject) {
						elem.Int("index", int64(res.index)).String("error", res.err.Error())
					})
					continue
				}
				if callFilter != "" && !glob.Glob(callFilter, res.extrinsic.Call.Pallet+"."+res.extrinsic.Call.Name) {
					continue
				}
				decoded.Add(scaledecode.RenderUncheckedExtrinsic(res.extrinsic, opts))
			}
			bar.Finish()
			if firstErr != nil {
				return firstErr
			}

			out := jsonbuilder.NewObject().
				String("number", block.Header.Number).
				String("parent_hash", block.Header.ParentHash).
				Value("extrinsics", decoded)
			rendered, err := out.Bytes()
			if err != nil {
				return err
			}
			fmt.Println(string(rendered))
			return nil
		},
	}
}

// extrinsicDecodeJob decodes one hex extrinsic on a worker; results come
// back in submission order.
type extrinsicDecodeJob struct {
	index   int
	printed string
	meta    *scaleinfo.Metadata
}

type extrinsicDecodeResult struct {
	index     int
	extrinsic *scaledecode.UncheckedExtrinsic
	err       error
}

func (w extrinsicDecodeJob) Run(ctx context.Context) interface{} {
	raw, err := scaleinfo.DecodeHex(w.printed)
	if err != nil {
		return extrinsicDecodeResult{index: w.index, err: err}
	}
	extrinsic, err := scaledecode.DecodeAsUncheckedExtrinsic(scalebuf.Bytes(raw), w.meta)
	if err != nil {
		return extrinsicDecodeResult{index: w.index, err: err}
	}
	return extrinsicDecodeResult{index: w.index, extrinsic: extrinsic}
}
