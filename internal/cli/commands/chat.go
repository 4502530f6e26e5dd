package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/lvraikkonen/azure-calculator/internal/advisor"
	"github.com/lvraikkonen/azure-calculator/internal/cart"
	"github.com/lvraikkonen/azure-calculator/internal/chat"
	"github.com/lvraikkonen/azure-calculator/internal/cli/client"
	"github.com/lvraikkonen/azure-calculator/internal/cli/config"
	"github.com/lvraikkonen/azure-calculator/internal/cli/tui"
	"github.com/lvraikkonen/azure-calculator/internal/cli/ui"
	"github.com/lvraikkonen/azure-calculator/internal/stream"
)

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "chat with the cost advisor",
	Long: `Start an interactive chat session with the cost advisor.

With a message argument, sends a single non-streaming message and prints
the full reply instead of entering the interactive session.

Features:
  • 实时流式输出
  • 推荐方案卡片, 一键应用到产品清单
  • 追问建议, Tab 快速填入`,
	Example: `  # Start interactive chat
  $ azcalc chat

  # One-shot question, full reply at once
  $ azcalc chat "我的业务类型是数据处理"

  # Keyboard controls (interactive mode):
  • 输入消息按 Enter 发送
  • 流式回复中按 Esc 取消
  • Ctrl+R 应用推荐方案到清单`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.SilenceUsage = true
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	// 真实后端模式需要登录; 模拟模式直接可用
	var apiClient *client.APIClient
	if cfg.UseRealAPI {
		if !cfg.IsAuthenticated() {
			ui.PrintError("not authenticated, please login first")
			fmt.Println("\nRun 'azcalc login' to authenticate.")
			return fmt.Errorf("authentication required")
		}
		apiClient, err = client.NewAPIClient(cfg.Server, cfg.AccessToken)
		if err != nil {
			ui.PrintError("failed to create client: %v", err)
			return fmt.Errorf("client creation failed")
		}
	}

	if len(args) == 1 {
		return runChatOneShot(apiClient, args[0])
	}

	cartPath, err := config.CartPath()
	if err != nil {
		return err
	}
	store := cart.NewStore(cartPath)
	selection, err := store.Load()
	if err != nil {
		slog.Warn("cart file unreadable, starting empty", "error", err)
	}

	ui.ClearScreen()
	ui.PrintChatWelcomeBanner()

	var transport stream.Transport
	if apiClient != nil {
		transport = apiClient
	}
	program := tui.NewChatProgram(tui.Options{
		Transport: transport,
		Manager:   chat.NewManager(),
		Advisor:   advisor.New(),
		Cart:      selection,
		CartStore: store,
		Currency:  cfg.Currency,
		Logger:    slog.Default(),
	})
	if err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chat TUI: %w", err)
	}

	return nil
}

// runChatOneShot 非流式单发消息, 模拟模式下返回固定兜底文案。
func runChatOneShot(apiClient *client.APIClient, content string) error {
	if apiClient == nil {
		fmt.Println(chat.FallbackReply(content))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	resp, err := apiClient.SendMessage(ctx, content, "")
	if err != nil {
		ui.PrintError("failed to send message: %v", err)
		return fmt.Errorf("request failed")
	}

	fmt.Println(resp.Content)
	return nil
}
