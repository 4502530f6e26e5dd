package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lvraikkonen/azure-calculator/internal/cart"
	"github.com/lvraikkonen/azure-calculator/internal/cli/ui"
)

var exportOutput string

// exportCmd is the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "export the selection list as CSV",
	Long: `Export the current selection list as CSV with per-item and total
monthly cost, converted to your configured currency.

Writes to stdout unless -o is given.`,
	Example: `  # Print CSV to stdout
  $ azcalc export

  # Write to a file
  $ azcalc export -o costs.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default stdout)")
	exportCmd.SilenceUsage = true
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, _, selection, err := loadCart()
	if err != nil {
		return err
	}

	if selection.Len() == 0 {
		ui.PrintWarning("selection list is empty, nothing to export")
		return nil
	}

	if exportOutput == "" {
		return cart.ExportCSV(os.Stdout, selection, cfg.Currency)
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		ui.PrintError("failed to create output file: %v", err)
		return fmt.Errorf("export failed")
	}
	defer f.Close()

	if err := cart.ExportCSV(f, selection, cfg.Currency); err != nil {
		ui.PrintError("failed to write CSV: %v", err)
		return fmt.Errorf("export failed")
	}

	ui.PrintSuccess("已导出 %d 项产品到 %s", selection.Len(), exportOutput)
	return nil
}
