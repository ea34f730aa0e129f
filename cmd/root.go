package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"admatch/internal/app"
	"admatch/internal/config"
)

// skipAppAnnotation marks commands that run without building the App.
const skipAppAnnotation = "admatch/skip-app"

var (
	configFile string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "admatch",
	Short: "Ad-to-content relevance matching",
	Long: `admatch scores and ranks ads against content categories using a
taxonomy of related categories, and checks whether campaign interests are
covered by the categories your inventory actually carries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is given, print help.
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !needsApp(cmd) {
			return nil
		}

		cfg, err := loadValidatedConfig()
		if err != nil {
			return err
		}

		appInstance, err := app.NewApp(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		// Store the app instance in the command's context
		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appInstance, err := GetAppFromContext(cmd.Context()); err == nil {
			appInstance.Close()
		}
	},
}

// needsApp reports whether cmd runs against a loaded taxonomy and backends.
func needsApp(cmd *cobra.Command) bool {
	if cmd == cmd.Root() || cmd.Name() == "help" {
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" || c.Annotations[skipAppAnnotation] == "true" {
			return false
		}
	}
	return true
}

func loadValidatedConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := app.ConfigureLogging(cfg); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return cfg, nil
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}

// Define a custom type for the context key to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext retrieves the app instance stored by PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	if ctx == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON instead of tables")

	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the taxonomy, inventory and Redis connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}

		g := appInstance.Taxonomy.Current()
		fmt.Fprintf(out, "%s taxonomy %s (version %s, %d categories, %d edges)\n",
			color.GreenString("OK"), appInstance.TaxonomyPath, g.Version(), g.CategoryCount(), g.EdgeCount())

		failed := false
		if appInstance.Inventory == nil {
			fmt.Fprintf(out, "%s inventory not configured\n", color.YellowString("--"))
		} else if err := appInstance.Inventory.Ping(ctx); err != nil {
			fmt.Fprintf(out, "%s inventory (%s): %v\n", color.RedString("FAIL"), appInstance.Config.Inventory.Driver, err)
			failed = true
		} else {
			fmt.Fprintf(out, "%s inventory (%s)\n", color.GreenString("OK"), appInstance.Config.Inventory.Driver)
		}

		if appInstance.Redis == nil {
			fmt.Fprintf(out, "%s redis not configured (audits and reload broadcast disabled)\n", color.YellowString("--"))
		} else if err := appInstance.Redis.Ping(ctx).Err(); err != nil {
			fmt.Fprintf(out, "%s redis %s: %v\n", color.RedString("FAIL"), appInstance.Config.Redis.Address, err)
			failed = true
		} else {
			fmt.Fprintf(out, "%s redis %s\n", color.GreenString("OK"), appInstance.Config.Redis.Address)
		}

		if failed {
			return fmt.Errorf("one or more checks failed")
		}
		return nil
	},
}
