package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"admatch/internal/taxonomy"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Inspect and reload taxonomy artifacts",
}

var taxonomyCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Load a taxonomy artifact without serving it",
	Long: `Compiles a taxonomy artifact and reports every structural problem found.
Edges whose reverse direction carries a different tier (or none) are listed
as asymmetries; they are legal but often unintended. Use --strict to fail
on them.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipAppAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		g, err := taxonomy.LoadFile(args[0])
		if err != nil {
			var loadErr *taxonomy.LoadError
			if errors.As(err, &loadErr) {
				fmt.Fprintf(out, "%s %s\n", color.RedString("INVALID"), loadErr.Source)
				for _, p := range loadErr.Problems {
					fmt.Fprintf(out, "  - %s\n", p)
				}
				return fmt.Errorf("%d problem(s) found: %w", len(loadErr.Problems), taxonomy.ErrInvalidTaxonomy)
			}
			return err
		}

		asymmetries := g.Asymmetries()
		if jsonOutput {
			return printJSON(out, map[string]any{
				"version":     g.Version(),
				"snapshot_id": g.SnapshotID(),
				"categories":  g.CategoryCount(),
				"edges":       g.EdgeCount(),
				"asymmetries": asymmetries,
			})
		}

		fmt.Fprintf(out, "%s %s: version %s, %d categories, %d edges\n",
			color.GreenString("OK"), args[0], g.Version(), g.CategoryCount(), g.EdgeCount())
		if len(asymmetries) > 0 {
			fmt.Fprintf(out, "%d asymmetric edge(s):\n", len(asymmetries))
			table := newTable(out, "Source", "Target", "Forward", "Reverse")
			for _, a := range asymmetries {
				table.Append([]string{a.Source, a.Target, a.Forward.String(), a.Reverse.String()})
			}
			table.Render()
		}

		if strict, _ := cmd.Flags().GetBool("strict"); strict && len(asymmetries) > 0 {
			return fmt.Errorf("%d asymmetric edge(s) found", len(asymmetries))
		}
		return nil
	},
}

var taxonomyReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the configured taxonomy and notify serving instances",
	Long: `Loads the configured taxonomy artifact and, when reload.broadcast is
enabled, publishes a reload notice so every running server swaps to the new
graph. A server can also be reloaded directly with SIGHUP or
POST /api/v1/admin/taxonomy/reload.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		outcome, err := appInstance.ReloadService.Reload(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, outcome)
		}
		fmt.Fprintf(out, "%s taxonomy %s (%d categories, %d edges)\n",
			color.GreenString("Loaded"), outcome.GraphVersion, outcome.Categories, outcome.Edges)
		if outcome.Broadcast {
			fmt.Fprintln(out, "Reload notice published to serving instances.")
		} else {
			fmt.Fprintln(out, color.YellowString("No reload notice was published; enable reload.broadcast to notify servers."))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(taxonomyCmd)
	taxonomyCmd.AddCommand(taxonomyCheckCmd, taxonomyReloadCmd)
	taxonomyCheckCmd.Flags().Bool("strict", false, "Fail when asymmetric edges are found")
}
