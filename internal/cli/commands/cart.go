package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lvraikkonen/azure-calculator/internal/cart"
	"github.com/lvraikkonen/azure-calculator/internal/catalog"
	"github.com/lvraikkonen/azure-calculator/internal/cli/config"
	"github.com/lvraikkonen/azure-calculator/internal/cli/loader"
	"github.com/lvraikkonen/azure-calculator/internal/cli/ui"
	"github.com/lvraikkonen/azure-calculator/internal/domain"
)

var cartApplyFile string

// cartCmd is the cart command group
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "manage the product selection list",
	Long: `Manage the local product selection list and its monthly cost.

The list is stored in ~/.azcalc/cart.json and shared with the chat TUI:
bundles applied there (Ctrl+R) show up here and vice versa.`,
	Example: `  # Show the current selection
  $ azcalc cart show

  # Add a product (repeat to increase quantity)
  $ azcalc cart add app-service

  # Set an exact quantity (0 removes)
  $ azcalc cart set app-service 3

  # Replace the selection with a bundle from a YAML file
  $ azcalc cart apply -f bundle.yaml`,
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "show the selection and monthly cost",
	Args:  cobra.NoArgs,
	RunE:  runCartShow,
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "add a product to the selection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartAdd,
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product-id> <quantity>",
	Short: "set a product's quantity, 0 removes it",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartSet,
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "remove a product from the selection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartRemove,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "empty the selection",
	Args:  cobra.NoArgs,
	RunE:  runCartClear,
}

var cartApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "replace the selection with a bundle from a YAML file",
	Example: `  # bundle.yaml:
  #   kind: Bundle
  #   spec:
  #     name: 自定义组合
  #     products:
  #       - id: app-service
  #         quantity: 2
  $ azcalc cart apply -f bundle.yaml`,
	Args: cobra.NoArgs,
	RunE: runCartApply,
}

func init() {
	cartApplyCmd.Flags().StringVarP(&cartApplyFile, "filename", "f", "", "Path to the bundle YAML file (required)")
	cartApplyCmd.MarkFlagRequired("filename")

	cartCmd.AddCommand(cartShowCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartSetCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)
	cartCmd.AddCommand(cartApplyCmd)

	for _, c := range cartCmd.Commands() {
		c.SilenceUsage = true
	}
}

// loadCart 读取配置与清单, 清单损坏时按空清单继续。
func loadCart() (*config.Config, *cart.Store, *cart.Cart, error) {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return nil, nil, nil, fmt.Errorf("config load failed")
	}
	cartPath, err := config.CartPath()
	if err != nil {
		return nil, nil, nil, err
	}
	store := cart.NewStore(cartPath)
	selection, err := store.Load()
	if err != nil {
		ui.PrintWarning("selection file unreadable, starting from empty: %v", err)
	}
	return cfg, store, selection, nil
}

func runCartShow(cmd *cobra.Command, args []string) error {
	cfg, _, selection, err := loadCart()
	if err != nil {
		return err
	}
	ui.PrintBold("🛒 产品清单")
	fmt.Println()
	fmt.Println(ui.RenderCart(selection.Items(), cfg.Currency))
	return nil
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	cfg, store, selection, err := loadCart()
	if err != nil {
		return err
	}

	product, err := catalog.ByID(args[0])
	if err != nil {
		ui.PrintError("unknown product '%s'", args[0])
		fmt.Println("\nRun 'azcalc products' to see available product ids.")
		return fmt.Errorf("product not found")
	}

	selection.Add(product)
	if err := store.Save(selection); err != nil {
		ui.PrintError("failed to save selection: %v", err)
		return fmt.Errorf("save failed")
	}

	ui.PrintSuccess("已添加 %s", product.Name)
	fmt.Println(ui.RenderCartSummary(selection.Len(), selection.Total(), cfg.Currency))
	return nil
}

func runCartSet(cmd *cobra.Command, args []string) error {
	cfg, store, selection, err := loadCart()
	if err != nil {
		return err
	}

	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		ui.PrintError("invalid quantity '%s'", args[1])
		return fmt.Errorf("invalid arguments")
	}

	if err := selection.UpdateQuantity(args[0], quantity); err != nil {
		if domain.IsNotFound(err) {
			ui.PrintError("'%s' is not in the selection", args[0])
			return fmt.Errorf("product not found")
		}
		ui.PrintError("failed to update quantity: %v", err)
		return fmt.Errorf("update failed")
	}
	if err := store.Save(selection); err != nil {
		ui.PrintError("failed to save selection: %v", err)
		return fmt.Errorf("save failed")
	}

	if quantity <= 0 {
		ui.PrintSuccess("已移除 %s", args[0])
	} else {
		ui.PrintSuccess("已更新 %s 数量为 %d", args[0], quantity)
	}
	fmt.Println(ui.RenderCartSummary(selection.Len(), selection.Total(), cfg.Currency))
	return nil
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	cfg, store, selection, err := loadCart()
	if err != nil {
		return err
	}

	if err := selection.Remove(args[0]); err != nil {
		ui.PrintError("'%s' is not in the selection", args[0])
		return fmt.Errorf("product not found")
	}
	if err := store.Save(selection); err != nil {
		ui.PrintError("failed to save selection: %v", err)
		return fmt.Errorf("save failed")
	}

	ui.PrintSuccess("已移除 %s", args[0])
	fmt.Println(ui.RenderCartSummary(selection.Len(), selection.Total(), cfg.Currency))
	return nil
}

func runCartClear(cmd *cobra.Command, args []string) error {
	_, store, selection, err := loadCart()
	if err != nil {
		return err
	}

	selection.Clear()
	if err := store.Save(selection); err != nil {
		ui.PrintError("failed to save selection: %v", err)
		return fmt.Errorf("save failed")
	}

	ui.PrintSuccess("清单已清空")
	return nil
}

func runCartApply(cmd *cobra.Command, args []string) error {
	cfg, store, selection, err := loadCart()
	if err != nil {
		return err
	}

	file, err := loader.LoadFromFile(cartApplyFile)
	if err != nil {
		ui.PrintError("failed to load bundle file: %v", err)
		return fmt.Errorf("invalid bundle file")
	}

	bundle := file.ToBundle()
	selection.ApplyBundle(bundle)
	if err := store.Save(selection); err != nil {
		ui.PrintError("failed to save selection: %v", err)
		return fmt.Errorf("save failed")
	}

	ui.PrintSuccess("已应用 %s", bundle.Name)
	fmt.Println()
	fmt.Println(ui.RenderCart(selection.Items(), cfg.Currency))
	return nil
}
