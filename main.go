package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

func main() {
	// set up a context that is canceled when a command is interrupted
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// set up a signal handler to cancel the context
	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGTERM, syscall.SIGINT)

		select {
		case <-interrupt:
			fmt.Println()
			klog.Info("received interrupt signal")
			cancel()
		case <-ctx.Done():
		}

		// Allow any further SIGTERM or SIGINT to kill process
		signal.Stop(interrupt)
	}()

	app := &cli.App{
		Name:        "polkadot-faithful CLI",
		Version:     GitCommit,
		Description: "CLI to decode substrate chain data (extrinsics, signable payloads, storage entries) against V14 runtime metadata.",
		Flags:       NewKlogFlagSet(),
		Commands: []*cli.Command{
			newCmd_DecodeExtrinsic(),
			newCmd_DecodeSignable(),
			newCmd_DecodeStorage(),
			newCmd_DecodeBlock(),
			newCmd_MetaVersion(),
			newCmd_Version(),
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.RunContext(ctx, os.Args); err != nil {
		klog.Fatal(err)
	}
}
