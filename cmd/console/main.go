// cmd/console/main.go
//
// This is the entry point for the stan-blog console.
// Running `console` with no subcommand launches the TUI; `console upload`
// drives the batch-upload pipeline headlessly for scripting.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/stan-blog/console/internal/api"
	"github.com/stan-blog/console/internal/config"
	"github.com/stan-blog/console/internal/logbook"
	"github.com/stan-blog/console/internal/tui"
)

var (
	flagServerURL string
	flagToken     string
)

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "Terminal admin console for the stan-blog platform",
	Long: `The console manages a stan-blog deployment from the terminal:
plan progress notes with image galleries, article drafting with AI title
generation, vocabulary entries, and user accounts.

Configuration lives in ~/.blogconsole/config.yaml; BLOG_SERVER_URL and
BLOG_ACCESS_TOKEN override the stored server settings.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Access token (overrides config)")
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(publishImageCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads config and builds the shared api client and logbook.
func bootstrap() (*config.Config, *api.Client, *logbook.Logbook, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve home directory: %w", err)
	}
	if err := config.InitConsoleDir(home); err != nil {
		return nil, nil, nil, fmt.Errorf("initialize %s: %w", config.ConsoleDir, err)
	}
	cfg, err := config.NewConfig(home)
	if err != nil {
		return nil, nil, nil, err
	}
	if flagServerURL != "" {
		cfg.File.Server.URL = flagServerURL
	}
	if flagToken != "" {
		cfg.File.Server.Token = flagToken
	}

	lb, err := logbook.New(filepath.Join(cfg.LogsDir(), "session.log"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open logbook: %w", err)
	}

	client, err := api.New(cfg.ServerURL(),
		api.WithToken(cfg.AccessToken()),
		api.WithLogger(lb),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, client, lb, nil
}

func runTUI() error {
	cfg, client, lb, err := bootstrap()
	if err != nil {
		return err
	}
	defer lb.Close()

	app, err := tui.NewApp(cfg, client, lb)
	if err != nil {
		return err
	}
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
