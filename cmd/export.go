package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleethealth/pkg/export"
)

var exportFlags dashboardFlags
var exportFormat, exportPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered fleet as csv, json or an html chart page",
	RunE:  runExport,
}

func init() {
	exportFlags.register(exportCmd, true)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "export format: "+strings.Join(export.Formats, ", "))
	exportCmd.Flags().StringVar(&exportPath, "out", "", "output file, stdout when empty")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	v, err := fetchView(cmd, exportFlags)
	if err != nil {
		return err
	}
	report := export.Report{Vehicles: v.Filtered, Summary: v.Summary, FleetScore: v.FleetScore}
	if exportPath == "" {
		return export.Write(cmd.OutOrStdout(), exportFormat, report)
	}
	f, err := os.Create(exportPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", exportPath, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.Write(f, exportFormat, report)
}
