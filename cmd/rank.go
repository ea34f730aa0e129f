package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"admatch/internal/clix"
	"admatch/internal/services"
)

var rankCmd = &cobra.Command{
	Use:   "rank [category]",
	Short: "Rank ads by relevance to a content category",
	Long: `Ranks ads for a content category, best match first. Ties are broken by
remaining budget, remaining frequency cap, age and finally ad id.

Ads come from --ads (a JSON array, or "-" for stdin). With --content the
category and candidate ads are read from the configured inventory instead.`,
	Example: `  admatch rank technology --ads ads.json --limit 5
  admatch rank --content video-42 --exclude-zero`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		cfg := appInstance.Config
		flags := cmd.Flags()

		limit, err := clix.ParseLimit(flags, cfg.Ranking.DefaultLimit, cfg.Ranking.MaxLimit)
		if err != nil {
			return err
		}
		if all, _ := flags.GetBool("all"); all {
			limit = 0
		}
		excludeZero, _ := flags.GetBool("exclude-zero")
		opts := services.RankOptions{Limit: limit, ExcludeZero: excludeZero}

		contentID, _ := flags.GetString("content")
		adsPath, _ := flags.GetString("ads")

		var outcome *services.RankOutcome
		switch {
		case contentID != "":
			if len(args) > 0 || adsPath != "" {
				return fmt.Errorf("--content cannot be combined with a category or --ads")
			}
			outcome, err = appInstance.MatchService.RankForContent(cmd.Context(), contentID, opts)
			if err != nil {
				return err
			}
		case len(args) == 1 && adsPath != "":
			ads, err := clix.ReadAds(adsPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			outcome = appInstance.MatchService.Rank(args[0], ads, opts)
		default:
			return fmt.Errorf("provide a category with --ads, or --content")
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), outcome)
		}
		printRankOutcome(cmd.OutOrStdout(), outcome)
		return nil
	},
}

func printRankOutcome(w io.Writer, outcome *services.RankOutcome) {
	header := fmt.Sprintf("Category %s (taxonomy %s): %d candidates", outcome.Category, outcome.GraphVersion, outcome.Candidates)
	if outcome.ContentID != "" {
		header = fmt.Sprintf("Content %s, %s", outcome.ContentID, header)
	}
	fmt.Fprintln(w, header)
	if outcome.Truncated {
		fmt.Fprintln(w, color.YellowString("candidate limit reached: only part of the inventory was ranked"))
	}

	if len(outcome.Results) == 0 {
		fmt.Fprintln(w, "No ads ranked.")
	} else {
		table := newTable(w, "#", "Ad", "Tier", "Score", "Matched Interest")
		for i, r := range outcome.Results {
			table.Append([]string{itoa(i + 1), r.AdID, tierColor(r.Tier), itoa(r.Score), orDash(r.MatchedInterest)})
		}
		table.Render()
	}

	for _, s := range outcome.Skipped {
		fmt.Fprintf(w, "%s ad #%d %s: %s\n", color.YellowString("skipped"), s.Index, orDash(s.AdID), s.Reason)
	}
}

func init() {
	rootCmd.AddCommand(rankCmd)
	rankCmd.Flags().String("ads", "", "JSON file of candidate ads (\"-\" for stdin)")
	rankCmd.Flags().String("content", "", "Rank inventory ads for this content item id")
	rankCmd.Flags().Int("limit", 0, "Maximum number of results (default ranking.default_limit)")
	rankCmd.Flags().Bool("all", false, "Return the full ordering")
	rankCmd.Flags().Bool("exclude-zero", false, "Drop ads that do not match at all")
}
