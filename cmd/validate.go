package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"admatch/internal/clix"
)

var validateCmd = &cobra.Command{
	Use:   "validate <interest>...",
	Short: "Check whether campaign interests are covered by available categories",
	Long: `Validates proposed interests against the content categories that are
actually available. Interests scoring below RELATED are reported as
uncovered, with suggested categories to target instead. The check is
advisory and never fails because of coverage.

Without --categories the inventory's current category set is used.`,
	Example: `  admatch validate programming cooking --categories technology,ai`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		available := clix.ParseList(cmd.Flags(), "categories")

		outcome, err := appInstance.MatchService.ValidateInterests(cmd.Context(), args, available)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, outcome)
		}

		fmt.Fprintf(out, "Available categories: %s\n", joinOrDash(outcome.AvailableCategories))
		table := newTable(out, "Interest", "Covered", "Best Score", "Matching", "Suggested")
		var warnings []string
		for _, r := range outcome.Reports {
			table.Append([]string{
				r.Interest,
				yesNo(r.HasCoverage),
				itoa(r.BestScore),
				joinOrDash(r.MatchingCategories),
				joinOrDash(r.SuggestedCategories),
			})
			if r.Warning != "" {
				warnings = append(warnings, r.Warning)
			}
		}
		table.Render()
		for _, w := range warnings {
			fmt.Fprintln(out, color.YellowString("warning:"), w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("categories", "", "Comma separated available categories (default: inventory categories)")
}
