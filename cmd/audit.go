package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"admatch/internal/clix"
	"admatch/internal/models"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run coverage audits over the ad inventory",
	Long: `A coverage audit validates every inventory ad's interests against the
categories the inventory carries and records which interests have no
content to match.`,
}

var auditEnqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Schedule a coverage audit for the worker",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		audit, err := appInstance.AuditService.Enqueue(cmd.Context(), clix.ParseList(cmd.Flags(), "categories"))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, audit)
		}
		fmt.Fprintf(out, "Audit %s %s. Check it with: admatch audit show %s\n", audit.ID, audit.Status, audit.ID)
		return nil
	},
}

var auditShowCmd = &cobra.Command{
	Use:   "show <audit-id>",
	Short: "Show a stored coverage audit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		audit, err := appInstance.AuditService.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), audit)
		}
		printAudit(cmd.OutOrStdout(), audit)
		return nil
	},
}

var auditRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a coverage audit in this process",
	Long:  `Runs a coverage audit synchronously, without a worker. The report is stored when Redis is configured.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		audit, err := appInstance.AuditService.Run(cmd.Context(), uuid.NewString(), clix.ParseList(cmd.Flags(), "categories"))
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), audit)
		}
		printAudit(cmd.OutOrStdout(), audit)
		return nil
	},
}

func printAudit(w io.Writer, audit *models.CoverageAudit) {
	status := audit.Status
	switch status {
	case models.AuditStatusCompleted:
		status = color.GreenString(status)
	case models.AuditStatusFailed:
		status = color.RedString(status)
	default:
		status = color.YellowString(status)
	}
	fmt.Fprintf(w, "Audit %s: %s\n", audit.ID, status)
	if audit.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", audit.Error)
	}
	if audit.GraphVersion != "" {
		fmt.Fprintf(w, "Taxonomy: %s\n", audit.GraphVersion)
	}
	fmt.Fprintf(w, "Categories: %s\n", joinOrDash(audit.InventoryCategories))
	fmt.Fprintf(w, "Ads scanned: %d, uncovered interests: %d\n", audit.AdsScanned, audit.UncoveredInterests)
	if audit.AdsSkipped > 0 {
		fmt.Fprintln(w, color.YellowString("Ads skipped: %d", audit.AdsSkipped))
	}

	if len(audit.Ads) == 0 {
		return
	}
	table := newTable(w, "Ad", "Interest", "Best Score", "Suggested")
	for _, ad := range audit.Ads {
		for _, r := range ad.Reports {
			if r.HasCoverage {
				continue
			}
			table.Append([]string{ad.AdID, r.Interest, itoa(r.BestScore), joinOrDash(r.SuggestedCategories)})
		}
	}
	table.Render()
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditEnqueueCmd, auditShowCmd, auditRunCmd)
	for _, c := range []*cobra.Command{auditEnqueueCmd, auditRunCmd} {
		c.Flags().String("categories", "", "Comma separated categories to audit against (default: inventory categories)")
	}
}
