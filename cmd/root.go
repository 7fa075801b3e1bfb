package cmd

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "olistbench",
		Short: "Relational store benchmark on the Olist e-commerce dataset",
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize()
	rootCmd.AddCommand(newBenchCmd())
	rootCmd.AddCommand(newLoadCmd())
	rootCmd.AddCommand(newDatagenCmd())
	rootCmd.AddCommand(newReportCmd())
}
