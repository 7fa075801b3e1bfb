package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/yilin0518/Advanced-DB/bench"
	"github.com/yilin0518/Advanced-DB/report"
)

func newReportCmd() *cobra.Command {
	var resultPath, outDir string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a result.json into markdown and charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := bench.ReadResult(resultPath)
			if err != nil {
				return err
			}
			dir := outDir
			if dir == "" {
				dir = filepath.Dir(resultPath)
			}
			if err := report.Render(dir, r); err != nil {
				return err
			}
			cmd.Printf("report written to %v\n", filepath.Join(dir, report.ReportFile))
			return nil
		},
	}
	cmd.Flags().StringVar(&resultPath, "result", "./report/result.json", "path of a result.json")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (defaults to the result's directory)")
	return cmd
}
