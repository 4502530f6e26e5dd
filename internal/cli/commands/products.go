package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lvraikkonen/azure-calculator/internal/catalog"
	"github.com/lvraikkonen/azure-calculator/internal/cli/config"
	"github.com/lvraikkonen/azure-calculator/internal/cli/ui"
)

var productsCategory string

// productsCmd is the products command
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "browse the product catalog",
	Long: `List the built-in product catalog with monthly prices.

Prices are shown in your configured currency (see 'azcalc config set-currency').`,
	Example: `  # List all products
  $ azcalc products

  # List compute products only
  $ azcalc products -c compute`,
	Args: cobra.NoArgs,
	RunE: runProducts,
}

func init() {
	productsCmd.Flags().StringVarP(&productsCategory, "category", "c", "", "Filter by category (compute/database/storage/networking/data)")
	productsCmd.SilenceUsage = true
}

func runProducts(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	products := catalog.ByCategory(productsCategory)
	if len(products) == 0 {
		ui.PrintWarning("no products in category '%s'", productsCategory)
		fmt.Printf("\nAvailable categories: %s\n", strings.Join(catalog.Categories(), ", "))
		return nil
	}

	if productsCategory == "" {
		ui.PrintBold("☁️  产品目录 (共 %d 项)", len(products))
	} else {
		ui.PrintBold("☁️  产品目录 - %s (共 %d 项)", productsCategory, len(products))
	}
	fmt.Println()
	fmt.Print(ui.RenderProductTable(products, cfg.Currency))

	return nil
}
