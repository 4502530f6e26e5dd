// Package commands 定义 azcalc 的全部子命令。
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/spf13/cobra"

	"github.com/lvraikkonen/azure-calculator/internal/cli/config"
	"github.com/lvraikkonen/azure-calculator/internal/cli/ui"
	"github.com/lvraikkonen/azure-calculator/pkg/logger"
)

const version = "0.1.0"

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "azcalc",
	Short:   "Azure 成本计算器 CLI",
	Version: version,
	Long: `A command-line Azure cost calculator with an AI advisor.
Browse the product catalog, maintain a selection list with monthly cost
totals, and chat with the advisor to get recommended service bundles.`,
	Example: `  # Authenticate with backend
  $ azcalc login -u admin

  # Browse the product catalog
  $ azcalc products

  # Start interactive advisor chat
  $ azcalc chat

  # Show the current selection and monthly cost
  $ azcalc cart show`,
	PersistentPreRunE: setupLogging,
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(formatVersion())
	return rootCmd.Execute()
}

func init() {
	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(adviseCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(configCmd)

	// Set custom template with bold uppercase headers
	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

// setupLogging 把日志写到配置目录下的文件, 避免刷花终端界面。
// Hertz 客户端内部日志也走同一个 slog 输出。
func setupLogging(cmd *cobra.Command, args []string) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	cfg := logger.Config{
		Level:    "info",
		Format:   "text",
		Output:   "file",
		FilePath: filepath.Join(dir, "azcalc.log"),
	}
	if err := logger.Setup(cfg); err != nil {
		// 日志目录不可写时退回 stderr, 不阻塞命令执行
		cfg.Output = "stderr"
		cfg.FilePath = ""
		if err := logger.Setup(cfg); err != nil {
			return err
		}
	}
	hlog.SetLogger(logger.NewHertzSlogAdapter(slog.Default()))
	return nil
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

// formatVersion formats the version output
func formatVersion() string {
	return fmt.Sprintf("azcalc version %s\n", version)
}
