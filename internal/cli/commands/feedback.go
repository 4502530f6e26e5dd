package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lvraikkonen/azure-calculator/internal/cli/types"
	"github.com/lvraikkonen/azure-calculator/internal/cli/ui"
)

var (
	feedbackDown    bool
	feedbackComment string
)

// feedbackCmd is the feedback command
var feedbackCmd = &cobra.Command{
	Use:   "feedback <message-id>",
	Short: "rate an advisor reply",
	Long: `Send thumbs-up or thumbs-down feedback for an advisor message.

Defaults to thumbs-up, use --down for negative feedback.
Requires authentication, see 'azcalc login'.`,
	Example: `  # Thumbs up
  $ azcalc feedback msg-123

  # Thumbs down with a comment
  $ azcalc feedback msg-123 --down -m "推荐的方案超出预算"`,
	Args: cobra.ExactArgs(1),
	RunE: runFeedback,
}

func init() {
	feedbackCmd.Flags().BoolVar(&feedbackDown, "down", false, "Send thumbs-down instead of thumbs-up")
	feedbackCmd.Flags().StringVarP(&feedbackComment, "message", "m", "", "Optional comment")
	feedbackCmd.SilenceUsage = true
}

func runFeedback(cmd *cobra.Command, args []string) error {
	apiClient, err := authedClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	feedbackType := types.FeedbackThumbsUp
	if feedbackDown {
		feedbackType = types.FeedbackThumbsDown
	}

	resp, err := apiClient.SendFeedback(ctx, types.FeedbackRequest{
		MessageID:    args[0],
		FeedbackType: feedbackType,
		Comment:      feedbackComment,
	})
	if err != nil {
		ui.PrintError("failed to send feedback: %v", err)
		return fmt.Errorf("request failed")
	}

	if feedbackType == types.FeedbackThumbsUp {
		ui.PrintSuccess("已发送 👍 反馈 (id: %s)", resp.ID)
	} else {
		ui.PrintSuccess("已发送 👎 反馈 (id: %s)", resp.ID)
	}
	return nil
}
