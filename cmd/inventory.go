package cmd

import (
	"fmt"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"admatch/internal/clix"
	"admatch/internal/models"
	"admatch/internal/store"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Manage the ad and content inventory store",
}

var inventoryImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import ads and content items from a JSON file",
	Long: `Imports a JSON document of the form {"ads": [...], "content": [...]}
into the configured inventory store. Existing records with the same id are
replaced. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if appInstance.Inventory == nil {
			return models.ErrInventoryUnavailable
		}
		doc, err := clix.ReadInventory(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		ads, items, failed := importInventory(cmd, appInstance.Inventory, doc)
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d ads and %d content items", ads, items)
		if failed > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ", %s", color.RedString("%d failed", failed))
		}
		fmt.Fprintln(cmd.OutOrStdout())
		if failed > 0 {
			return fmt.Errorf("%d record(s) could not be imported", failed)
		}
		return nil
	},
}

func importInventory(cmd *cobra.Command, w store.InventoryWriter, doc *clix.Inventory) (ads, items, failed int) {
	ctx := cmd.Context()
	for i, ad := range doc.Ads {
		if err := w.SaveAd(ctx, ad); err != nil {
			log.WithField("index", i).WithError(err).Warn("failed to import ad")
			fmt.Fprintf(cmd.ErrOrStderr(), "ad #%d: %v\n", i, err)
			failed++
			continue
		}
		ads++
	}
	for i, item := range doc.Content {
		if err := w.SaveContentItem(ctx, item); err != nil {
			log.WithField("index", i).WithError(err).Warn("failed to import content item")
			fmt.Fprintf(cmd.ErrOrStderr(), "content #%d: %v\n", i, err)
			failed++
			continue
		}
		items++
	}
	return ads, items, failed
}

var inventoryCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the content categories the inventory currently carries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if appInstance.Inventory == nil {
			return models.ErrInventoryUnavailable
		}
		categories, err := appInstance.Inventory.ListInventoryCategories(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), categories)
		}
		for _, c := range categories {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
	inventoryCmd.AddCommand(inventoryImportCmd, inventoryCategoriesCmd)
}
