package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"admatch/internal/clix"
	"admatch/internal/models"
)

var scoreCmd = &cobra.Command{
	Use:   "score <interest> <category>",
	Short: "Score one interest, or ads, against a content category",
	Long: `Scores an interest against a content category and prints the match tier.

With --ads, every ad in the file (JSON array, or "-" for stdin) is scored
against the category using its best matching interest instead. With
--ad-id, the ad is loaded from the configured inventory.`,
	Example: `  admatch score programming technology
  admatch score --ads ads.json technology
  admatch score --ad-id ad-42 technology`,
	Args: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("ads")
		adID, _ := cmd.Flags().GetString("ad-id")
		if path != "" || adID != "" {
			return cobra.ExactArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		svc := appInstance.MatchService

		if adID, _ := cmd.Flags().GetString("ad-id"); adID != "" {
			outcome, err := svc.ScoreStoredAd(cmd.Context(), adID, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(out, outcome)
			}
			r := outcome.Result
			fmt.Fprintf(out, "ad %s -> %s: %s (%d) via %s\n",
				r.AdID, categoryLabel(args[0], outcome.CategoryName), tierColor(r.Tier), r.Score, orDash(r.MatchedInterest))
			return nil
		}

		adsPath, _ := cmd.Flags().GetString("ads")
		if adsPath == "" {
			outcome := svc.ScoreInterest(args[0], args[1])
			if jsonOutput {
				return printJSON(out, outcome)
			}
			fmt.Fprintf(out, "%s -> %s: %s (%d)\n",
				outcome.Interest, categoryLabel(outcome.Category, outcome.CategoryName), tierColor(outcome.Tier), outcome.Score)
			return nil
		}

		ads, err := clix.ReadAds(adsPath, cmd.InOrStdin())
		if err != nil {
			return err
		}
		category := args[0]
		results := make([]models.MatchResult, 0, len(ads))
		for i, ad := range ads {
			result, err := svc.ScoreAd(ad, category)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipping ad #%d: %v\n", i, err)
				continue
			}
			results = append(results, result)
		}
		if jsonOutput {
			return printJSON(out, results)
		}
		table := newTable(out, "Ad", "Tier", "Score", "Matched Interest")
		for _, r := range results {
			table.Append([]string{r.AdID, tierColor(r.Tier), itoa(r.Score), orDash(r.MatchedInterest)})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().String("ads", "", "JSON file of ads to score (\"-\" for stdin)")
	scoreCmd.Flags().String("ad-id", "", "Score this inventory ad")
	scoreCmd.MarkFlagsMutuallyExclusive("ads", "ad-id")
}

func categoryLabel(category, displayName string) string {
	if displayName == "" {
		return category
	}
	return fmt.Sprintf("%s (%s)", category, displayName)
}
