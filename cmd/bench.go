package cmd

import (
	"os"

	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
	"github.com/yilin0518/Advanced-DB/bench"
)

// readOptions loads the TOML config (defaults when no path is given) and
// applies the environment overlay.
func readOptions(conf string) (bench.Options, error) {
	opts := bench.DefaultOptions()
	if conf != "" {
		content, err := os.ReadFile(conf)
		if err != nil {
			return opts, errors.Trace(err)
		}
		if opts, err = bench.DecodeOptions(string(content)); err != nil {
			return opts, err
		}
	}
	if err := opts.OverlayEnv(); err != nil {
		return opts, err
	}
	return opts, nil
}

func newBenchCmd() *cobra.Command {
	var conf string
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the full benchmark: load, baseline pass, indexed passes, report",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readOptions(conf)
			if err != nil {
				return err
			}
			_, err = bench.NewOrchestrator(opts).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&conf, "config", "", "benchmark config path (TOML)")
	return cmd
}
