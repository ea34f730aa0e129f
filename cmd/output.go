package cmd

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// tierColor highlights strong matches green and NONE red.
func tierColor(tier string) string {
	switch tier {
	case "EXACT", "PRIMARY":
		return color.GreenString(tier)
	case "RELATED":
		return color.CyanString(tier)
	case "NONE":
		return color.RedString(tier)
	default:
		return color.YellowString(tier)
	}
}

func yesNo(ok bool) string {
	if ok {
		return color.GreenString("yes")
	}
	return color.RedString("no")
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func itoa(n int) string { return strconv.Itoa(n) }

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
