package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lvraikkonen/azure-calculator/internal/catalog"
	"github.com/lvraikkonen/azure-calculator/internal/cli/config"
	"github.com/lvraikkonen/azure-calculator/internal/cli/ui"
)

// configCmd is the config command group
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "view and change local settings",
	Long: `View and change settings stored in ~/.azcalc/config.json.

Settings:
  currency   Price display currency (USD/CNY/EUR)
  stream     Chat backend mode: 'real' talks to the server, 'mock' runs
             a local simulated advisor without a backend`,
	Example: `  # Show current settings
  $ azcalc config view

  # Show prices in CNY
  $ azcalc config set-currency CNY

  # Use the real streaming backend in chat
  $ azcalc config set-stream real`,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigView,
}

var configSetCurrencyCmd = &cobra.Command{
	Use:   "set-currency <code>",
	Short: "set the price display currency",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetCurrency,
}

var configSetStreamCmd = &cobra.Command{
	Use:   "set-stream <real|mock>",
	Short: "switch chat between the real backend and local mock",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetStream,
}

func init() {
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configSetCurrencyCmd)
	configCmd.AddCommand(configSetStreamCmd)

	for _, c := range configCmd.Commands() {
		c.SilenceUsage = true
	}
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	streamMode := "mock"
	if cfg.UseRealAPI {
		streamMode = "real"
	}
	loginState := "未登录"
	if cfg.IsAuthenticated() {
		loginState = fmt.Sprintf("已登录 (%s)", cfg.Username)
	}

	configPath, _ := config.Path()
	ui.PrintBold("⚙️  当前配置")
	fmt.Println()
	fmt.Printf("  server:    %s\n", cfg.Server)
	fmt.Printf("  currency:  %s\n", cfg.Currency)
	fmt.Printf("  stream:    %s\n", streamMode)
	fmt.Printf("  auth:      %s\n", loginState)
	fmt.Printf("  file:      %s\n", configPath)
	return nil
}

func runConfigSetCurrency(cmd *cobra.Command, args []string) error {
	currency := strings.ToUpper(args[0])
	if !catalog.IsSupportedCurrency(currency) {
		ui.PrintError("unsupported currency '%s'", args[0])
		fmt.Printf("\nSupported: %s\n", strings.Join(catalog.SupportedCurrencies(), ", "))
		return fmt.Errorf("invalid arguments")
	}

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}
	cfg.Currency = currency
	if err := cfg.Save(); err != nil {
		ui.PrintError("failed to save config: %v", err)
		return fmt.Errorf("config save failed")
	}

	ui.PrintSuccess("货币已设置为 %s, 示例价格 %s", currency, catalog.FormatPrice(9.99, currency))
	return nil
}

func runConfigSetStream(cmd *cobra.Command, args []string) error {
	var useReal bool
	switch args[0] {
	case "real":
		useReal = true
	case "mock":
		useReal = false
	default:
		ui.PrintError("invalid mode '%s', must be 'real' or 'mock'", args[0])
		return fmt.Errorf("invalid arguments")
	}

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}
	cfg.UseRealAPI = useReal
	if err := cfg.Save(); err != nil {
		ui.PrintError("failed to save config: %v", err)
		return fmt.Errorf("config save failed")
	}

	if useReal {
		ui.PrintSuccess("聊天已切换到真实后端 (%s)", cfg.Server)
		if !cfg.IsAuthenticated() {
			ui.PrintWarning("尚未登录, 先运行 'azcalc login'")
		}
	} else {
		ui.PrintSuccess("聊天已切换到本地模拟模式")
	}
	return nil
}
