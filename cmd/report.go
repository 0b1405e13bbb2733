package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/pkg/export"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Replay a fixture and print the maintenance report",
	RunE:  runReport,
}

func init() {
	addFixtureFlag(reportCmd)
	reportCmd.Flags().String("format", "json", "output format: json or csv")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "csv" {
		return fmt.Errorf("unknown format %q", format)
	}
	r, err := loadReplay(cmd)
	if err != nil {
		return err
	}
	defer r.stop()

	rep, err := r.engine.GenerateReport(cmd.Context())
	if err != nil {
		return err
	}
	if format == "csv" {
		return export.WriteCSV(cmd.OutOrStdout(), rep.Recommendations)
	}
	return export.WriteJSON(cmd.OutOrStdout(), rep)
}
