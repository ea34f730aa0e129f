package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cats"},
	Short:   "List the categories of the loaded taxonomy",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		listing := appInstance.MatchService.ListCategories()
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, listing)
		}

		fmt.Fprintf(out, "Taxonomy %s from %s: %d categories, %d edges\n",
			listing.GraphVersion, listing.Source, len(listing.Categories), listing.EdgeCount)
		table := newTable(out, "Key", "Name", "Primary", "Related", "Fallback", "Incoming")
		for _, c := range listing.Categories {
			table.Append([]string{
				c.Key,
				orDash(c.DisplayName),
				joinOrDash(c.Primary),
				joinOrDash(c.Related),
				joinOrDash(c.Fallback),
				itoa(c.Incoming),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
