package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/lvraikkonen/azure-calculator/internal/cli/client"
	"github.com/lvraikkonen/azure-calculator/internal/cli/config"
	"github.com/lvraikkonen/azure-calculator/internal/cli/ui"
)

// conversationsCmd is the conversations command group
var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "manage chat conversations on the backend",
	Long: `List, inspect, rename and delete chat conversations.

Requires authentication, see 'azcalc login'.`,
	Example: `  # List conversations
  $ azcalc conversations list

  # Show full history of one conversation
  $ azcalc conversations get <id>

  # Rename a conversation
  $ azcalc conversations rename <id> "新标题"

  # Delete a conversation
  $ azcalc conversations delete <id>`,
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "list conversations",
	Args:  cobra.NoArgs,
	RunE:  runConversationsList,
}

var conversationsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "show a conversation's message history",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsGet,
}

var conversationsRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "rename a conversation",
	Args:  cobra.ExactArgs(2),
	RunE:  runConversationsRename,
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsDelete,
}

func init() {
	conversationsCmd.AddCommand(conversationsListCmd)
	conversationsCmd.AddCommand(conversationsGetCmd)
	conversationsCmd.AddCommand(conversationsRenameCmd)
	conversationsCmd.AddCommand(conversationsDeleteCmd)

	for _, c := range conversationsCmd.Commands() {
		c.SilenceUsage = true
	}
}

// authedClient 加载配置并构造已认证的客户端, 未登录时报错。
func authedClient() (*client.APIClient, error) {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return nil, fmt.Errorf("config load failed")
	}
	if !cfg.IsAuthenticated() {
		ui.PrintError("not authenticated, please login first")
		fmt.Println("\nRun 'azcalc login' to authenticate.")
		return nil, fmt.Errorf("authentication required")
	}
	apiClient, err := client.NewAPIClient(cfg.Server, cfg.AccessToken)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return nil, fmt.Errorf("client creation failed")
	}
	return apiClient, nil
}

func runConversationsList(cmd *cobra.Command, args []string) error {
	apiClient, err := authedClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	summaries, err := apiClient.ListConversations(ctx)
	if err != nil {
		ui.PrintError("failed to list conversations: %v", err)
		return fmt.Errorf("request failed")
	}

	if len(summaries) == 0 {
		ui.PrintInfo("no conversations yet, start one with 'azcalc chat'")
		return nil
	}

	ui.PrintBold("💬 对话列表 (共 %d 个)", len(summaries))
	fmt.Println()
	for _, s := range summaries {
		title := s.Title
		if title == "" {
			title = "(未命名)"
		}
		fmt.Printf("  • %s  %s\n", runewidth.FillRight(title, 24), s.ID)
		if s.LastMessagePreview != "" {
			fmt.Printf("    %s\n", s.LastMessagePreview)
		}
	}
	return nil
}

func runConversationsGet(cmd *cobra.Command, args []string) error {
	apiClient, err := authedClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conv, err := apiClient.GetConversation(ctx, args[0])
	if err != nil {
		ui.PrintError("failed to get conversation: %v", err)
		return fmt.Errorf("request failed")
	}

	ui.PrintBold("💬 %s", conv.Title)
	fmt.Println()
	for _, m := range conv.Messages {
		speaker := "🤖 顾问"
		if m.Role == "user" {
			speaker = "👤 你"
		}
		fmt.Printf("%s:\n%s\n\n", speaker, m.Content)
	}
	return nil
}

func runConversationsRename(cmd *cobra.Command, args []string) error {
	apiClient, err := authedClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiClient.RenameConversation(ctx, args[0], args[1]); err != nil {
		ui.PrintError("failed to rename conversation: %v", err)
		return fmt.Errorf("request failed")
	}

	ui.PrintSuccess("已重命名为 %s", args[1])
	return nil
}

func runConversationsDelete(cmd *cobra.Command, args []string) error {
	apiClient, err := authedClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiClient.DeleteConversation(ctx, args[0]); err != nil {
		ui.PrintError("failed to delete conversation: %v", err)
		return fmt.Errorf("request failed")
	}

	ui.PrintSuccess("已删除对话 %s", args[0])
	return nil
}
