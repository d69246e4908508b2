package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var viewFlags dashboardFlags
var viewOutput string

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Print the filtered fleet overview",
	RunE:  runView,
}

var detailFlags dashboardFlags
var detailOutput string

var detailCmd = &cobra.Command{
	Use:   "detail <vehicle-id>",
	Short: "Print the battery health detail of one vehicle",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetail,
}

func init() {
	viewFlags.register(viewCmd, true)
	viewCmd.Flags().StringVarP(&viewOutput, "output", "o", "table", "output format: table, json or yaml")
	detailFlags.register(detailCmd, false)
	detailCmd.Flags().StringVarP(&detailOutput, "output", "o", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(viewCmd, detailCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	v, err := fetchView(cmd, viewFlags)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if viewOutput == "table" {
		renderOverview(out, v)
		return nil
	}
	return encode(out, viewOutput, struct {
		Filter   any `json:"filter" yaml:"filter"`
		Summary  any `json:"summary" yaml:"summary"`
		Score    any `json:"fleet_score,omitempty" yaml:"fleet_score,omitempty"`
		Vehicles any `json:"vehicles" yaml:"vehicles"`
	}{v.Filter, v.Summary, v.FleetScore, v.Filtered})
}

func runDetail(cmd *cobra.Command, args []string) error {
	f := detailFlags
	f.req.Vehicle = args[0]
	v, err := fetchView(cmd, f)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if detailOutput == "table" {
		renderDetail(out, v.Detail)
		return nil
	}
	return encode(out, detailOutput, v.Detail.Payload)
}

// encode writes v as JSON or YAML. YAML goes through JSON first so both
// formats share the json field names.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
