package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/yilin0518/Advanced-DB/bench"
	"github.com/yilin0518/Advanced-DB/store"
)

func newLoadCmd() *cobra.Command {
	var conf string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Create the schema and bulk-load the dataset, without benchmarking",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readOptions(conf)
			if err != nil {
				return err
			}
			conn, err := store.WaitAndConnect(opts.Store, 10, 5*time.Second)
			if err != nil {
				return err
			}
			defer conn.Close()
			loader := bench.NewLoader(conn, opts.Load)
			if err := loader.EnsureSchema(); err != nil {
				return err
			}
			if _, err := loader.Run(opts.Load.DatasetDir); err != nil {
				return err
			}
			have, err := loader.Present()
			if err != nil {
				return err
			}
			checks, err := loader.Integrity(have)
			if err != nil {
				return err
			}
			for _, c := range checks {
				if c.Dangling > 0 {
					cmd.Printf("integrity: %v.%v has %v values missing from %v.%v\n",
						c.Table, c.Column, c.Dangling, c.RefTable, c.RefColumn)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&conf, "config", "", "benchmark config path (TOML)")
	return cmd
}
