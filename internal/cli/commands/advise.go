package commands

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/lvraikkonen/azure-calculator/internal/advisor"
	"github.com/lvraikkonen/azure-calculator/internal/cart"
	"github.com/lvraikkonen/azure-calculator/internal/catalog"
	"github.com/lvraikkonen/azure-calculator/internal/cli/config"
	"github.com/lvraikkonen/azure-calculator/internal/cli/ui"
)

var (
	adviseBusiness string
	adviseScale    string
	adviseApply    bool
)

// adviseCmd is the advise command
var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "get a recommended bundle for your workload",
	Long: `Recommend a preset service bundle based on business type and scale.

Runs without a backend. Prompts interactively for any profile field not
given via flags. Use 'azcalc chat' for the conversational advisor instead.`,
	Example: `  # Interactive questionnaire
  $ azcalc advise

  # Non-interactive, apply the bundle to the selection list
  $ azcalc advise -b web -s small --apply`,
	Args: cobra.NoArgs,
	RunE: runAdvise,
}

func init() {
	adviseCmd.Flags().StringVarP(&adviseBusiness, "business", "b", "", "Business type (web/data)")
	adviseCmd.Flags().StringVarP(&adviseScale, "scale", "s", "", "Business scale (small/medium)")
	adviseCmd.Flags().BoolVarP(&adviseApply, "apply", "a", false, "Apply the recommended bundle to the selection list")
	adviseCmd.SilenceUsage = true
}

func runAdvise(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	if adviseBusiness == "" {
		prompt := &survey.Select{
			Message: "你的业务类型是什么?",
			Options: []string{advisor.BusinessWeb, advisor.BusinessData},
			Description: func(value string, index int) string {
				if value == advisor.BusinessWeb {
					return "Web 应用 / API 服务"
				}
				return "数据处理 / 分析"
			},
		}
		if err := survey.AskOne(prompt, &adviseBusiness); err != nil {
			ui.PrintError("failed to read answer: %v", err)
			return fmt.Errorf("input failed")
		}
	}

	if adviseScale == "" {
		prompt := &survey.Select{
			Message: "你的业务规模是?",
			Options: []string{advisor.ScaleSmall, advisor.ScaleMedium},
			Description: func(value string, index int) string {
				if value == advisor.ScaleSmall {
					return "小型, 基础配置"
				}
				return "中型, 标准配置"
			},
		}
		if err := survey.AskOne(prompt, &adviseScale); err != nil {
			ui.PrintError("failed to read answer: %v", err)
			return fmt.Errorf("input failed")
		}
	}

	adv := advisor.New()
	adv.SetProfile(adviseBusiness, adviseScale)

	bundle, err := adv.Recommend()
	if err != nil {
		ui.PrintError("no preset bundle for %s/%s", adviseBusiness, adviseScale)
		fmt.Printf("\nAvailable presets: %s\n", strings.Join(catalog.SolutionKeys(), ", "))
		return fmt.Errorf("recommendation failed")
	}

	fmt.Println()
	fmt.Println(ui.RenderBundleTree(&bundle, cfg.Currency))

	if !adviseApply {
		fmt.Println()
		ui.PrintInfo("Add --apply to replace your selection list with this bundle.")
		return nil
	}

	cartPath, err := config.CartPath()
	if err != nil {
		return err
	}
	store := cart.NewStore(cartPath)
	selection, err := store.Load()
	if err != nil {
		ui.PrintWarning("existing selection unreadable, starting from empty: %v", err)
	}
	selection.ApplyBundle(&bundle)
	if err := store.Save(selection); err != nil {
		ui.PrintError("failed to save selection: %v", err)
		return fmt.Errorf("save failed")
	}

	fmt.Println()
	ui.PrintSuccess("已将 %s 应用到产品清单 (%d 项)", bundle.Name, selection.Len())
	return nil
}
