package main

import (
	"flag"
	"fmt"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

func NewKlogFlagSet() []cli.Flag {
	fs := flag.NewFlagSet("klog", flag.PanicOnError)
	klog.InitFlags(fs)

	fs.Set("v", "2")
	fs.Set("logtostderr", "true")

	return []cli.Flag{
		// "log_dir", "", "If non-empty, write log files in this directory (no effect when -logtostderr=true)")
		&cli.StringFlag{
			Name:    "log_dir",
			Usage:   "If non-empty, write log files in this directory (no effect when -logtostderr=true)",
			EnvVars: []string{"POLKADOT_FAITHFUL_LOG_DIR"},
			Action: func(cctx *cli.Context, v string) error {
				if v != "" {
					fs.Set("log_dir", v)
				}
				return nil
			},
		},
		// "log_file", "", "If non-empty, use this log file (no effect when -logtostderr=true)")
		&cli.StringFlag{
			Name:    "log_file",
			Usage:   "If non-empty, use this log file (no effect when -logtostderr=true)",
			EnvVars: []string{"POLKADOT_FAITHFUL_LOG_FILE"},
			Action: func(cctx *cli.Context, v string) error {
				if v != "" {
					fs.Set("log_file", v)
				}
				return nil
			},
		},
		// "logtostderr", true, "log to standard error instead of files")
		&cli.BoolFlag{
			Name:        "logtostderr",
			Usage:       "log to standard error instead of files",
			EnvVars:     []string{"POLKADOT_FAITHFUL_LOGTOSTDERR"},
			DefaultText: "true",
			Action: func(cctx *cli.Context, v bool) error {
				fs.Set("logtostderr", fmt.Sprint(v))
				return nil
			},
		},
		// "v", "number for the log level verbosity")
		&cli.IntFlag{
			Name:    "v",
			Usage:   "number for the log level verbosity",
			EnvVars: []string{"POLKADOT_FAITHFUL_V"},
			Value:   2,
			Action: func(cctx *cli.Context, v int) error {
				fs.Set("v", fmt.Sprint(v))
				return nil
			},
		},
		// "vmodule", "comma-separated list of pattern=N settings for file-filtered logging")
		&cli.StringFlag{
			Name:    "vmodule",
			Usage:   "comma-separated list of pattern=N settings for file-filtered logging",
			EnvVars: []string{"POLKADOT_FAITHFUL_VMODULE"},
			Action: func(cctx *cli.Context, v string) error {
				if v != "" {
					fs.Set("vmodule", v)
				}
				return nil
			},
		},
	}
}
