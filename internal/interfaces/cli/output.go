package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/TextCoder/internal/intelligence/rules"
	codingtypes "github.com/turtacn/TextCoder/pkg/types/coding"
)

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// renderTable writes an ASCII table with the given header.
func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
}

// dimensionRows pairs every value column of r with its reason column.
func dimensionRows(r codingtypes.Result) [][]string {
	return [][]string{
		{"agent_supernatural", strconv.Itoa(r.AgentSupernatural), r.ReasonAgent},
		{"presence", r.PresenceLabel, r.ReasonPresence},
		{"visual", strconv.Itoa(r.Visual), r.ReasonVisual},
		{"auditory", strconv.Itoa(r.Auditory), r.ReasonAuditory},
		{"tactile", strconv.Itoa(r.Tactile), r.ReasonTactile},
		{"olfactory", strconv.Itoa(r.Olfactory), r.ReasonOlfactory},
		{"gustatory", strconv.Itoa(r.Gustatory), r.ReasonGustatory},
		{"sensorimotor", strconv.Itoa(r.Sensorimotor), r.ReasonSensorimotor},
		{"conf", strconv.Itoa(r.Conf), ""},
		{"motor", strconv.Itoa(r.Motor), r.ReasonMotor},
		{"object", strconv.Itoa(r.Object), r.ReasonObject},
		{"valence", r.ValenceLabel, r.ReasonValence},
		{"setting", r.SettingHits, r.ReasonSetting},
	}
}

// colorizeValue highlights fired dimensions.
func colorizeValue(v string) string {
	switch v {
	case "", "0":
		return v
	case "1", rules.ValencePositive:
		return color.GreenString(v)
	case rules.ValenceNegativeHigh:
		return color.RedString(v)
	case rules.ValenceNegativeLow:
		return color.YellowString(v)
	default:
		return color.CyanString(v)
	}
}

// printResult renders one coded text in the selected format.
func printResult(cmd *cobra.Command, format string, res codingtypes.Result) error {
	switch format {
	case FormatJSON:
		return printJSON(cmd, res)
	case FormatTable:
		rows := dimensionRows(res)
		for _, row := range rows {
			if row[0] != "conf" {
				row[1] = colorizeValue(row[1])
			}
		}
		renderTable(cmd.OutOrStdout(), []string{"Dimension", "Value", "Reason"}, rows)
		return nil
	default:
		out := cmd.OutOrStdout()
		for _, row := range dimensionRows(res) {
			if row[2] == "" {
				fmt.Fprintf(out, "%-18s %s\n", row[0], row[1])
				continue
			}
			fmt.Fprintf(out, "%-18s %s  (%s)\n", row[0], colorizeValue(row[1]), row[2])
		}
		return nil
	}
}

// printList renders a flat list of names.
func printList(cmd *cobra.Command, format, title string, items []string) error {
	switch format {
	case FormatJSON:
		if items == nil {
			items = []string{}
		}
		return printJSON(cmd, items)
	case FormatTable:
		rows := make([][]string, len(items))
		for i, it := range items {
			rows[i] = []string{strconv.Itoa(i + 1), it}
		}
		renderTable(cmd.OutOrStdout(), []string{"#", strings.ToUpper(title)}, rows)
		return nil
	default:
		for _, it := range items {
			fmt.Fprintln(cmd.OutOrStdout(), it)
		}
		return nil
	}
}

//Personal.AI order the ending
