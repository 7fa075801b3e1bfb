package cmd

import (
	"github.com/spf13/cobra"
	"github.com/yilin0518/Advanced-DB/datagen"
	"github.com/yilin0518/Advanced-DB/olist"
)

func newDatagenCmd() *cobra.Command {
	var (
		dir    string
		orders int
		seed   int64
		tables []string
	)
	cmd := &cobra.Command{
		Use:   "datagen",
		Short: "Generate a synthetic dataset with the benchmark's file layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := datagen.Generate(datagen.Options{
				Dir:    dir,
				Seed:   seed,
				Orders: orders,
				Tables: tables,
			})
			if err != nil {
				return err
			}
			for _, name := range olist.LoadOrder {
				if n, ok := counts[name]; ok {
					cmd.Printf("%v: %d rows\n", name, n)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "./dataset", "directory to write CSV files into")
	cmd.Flags().IntVar(&orders, "orders", 1000, "number of orders to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = wall clock)")
	cmd.Flags().StringSliceVar(&tables, "tables", nil, "subset of tables to write")
	return cmd
}
