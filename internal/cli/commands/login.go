package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/lvraikkonen/azure-calculator/internal/cli/client"
	"github.com/lvraikkonen/azure-calculator/internal/cli/config"
	"github.com/lvraikkonen/azure-calculator/internal/cli/ui"
)

var loginUsername string

// loginCmd is the login command
var loginCmd = &cobra.Command{
	Use:   "login [server]",
	Short: "authenticate with the backend",
	Long: `Authenticate with the backend and save credentials locally.

Your access token will be stored in ~/.azcalc/config.json and used
automatically for all subsequent commands. The token remains valid until
it expires or you login again.

If server is not provided, defaults to ` + config.DefaultServer + `.`,
	Example: `  # Login to default server
  $ azcalc login

  # Login to custom server
  $ azcalc login http://api.example.com:8000

  # Login with username (will prompt for password)
  $ azcalc login -u admin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username for authentication")

	// Silence usage to avoid showing help on every error
	loginCmd.SilenceUsage = true
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	loginServer := cfg.Server
	if len(args) > 0 {
		loginServer = args[0]
	}

	if loginUsername == "" {
		prompt := &survey.Input{
			Message: "Username:",
		}
		if err := survey.AskOne(prompt, &loginUsername, survey.WithValidator(survey.Required)); err != nil {
			ui.PrintError("failed to read username: %v", err)
			return fmt.Errorf("input failed")
		}
	}

	var password string
	prompt := &survey.Password{
		Message: "Password:",
	}
	if err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required)); err != nil {
		ui.PrintError("failed to read password: %v", err)
		return fmt.Errorf("input failed")
	}

	apiClient, err := client.NewAPIClient(loginServer, "")
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	ui.PrintInfo("Connecting to %s...", loginServer)

	resp, err := apiClient.Login(ctx, loginUsername, password)
	if err != nil {
		ui.PrintErrorBox("Login Failed", err.Error())
		return fmt.Errorf("authentication failed")
	}

	cfg.Server = loginServer
	cfg.AccessToken = resp.AccessToken
	cfg.Username = resp.User.Username
	cfg.UserID = resp.User.ID

	if err := cfg.Save(); err != nil {
		ui.PrintError("failed to save config: %v", err)
		return fmt.Errorf("config save failed")
	}

	configPath, _ := config.Path()
	successContent := fmt.Sprintf(`Username:     %s
User ID:      %s
Config saved: %s`,
		resp.User.Username,
		resp.User.ID,
		configPath,
	)

	ui.PrintSuccessBox("✓ Login Successful", successContent)

	fmt.Println()
	ui.PrintInfo("You can now use the following commands:")
	ui.PrintBold("  azcalc chat       # Chat with the advisor")
	ui.PrintBold("  azcalc products   # Browse the catalog")

	return nil
}
