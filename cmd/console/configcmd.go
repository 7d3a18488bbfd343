package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stan-blog/console/internal/config"
)

// configCmd updates the stored settings in ~/.blogconsole/config.yaml.
// Unlike the --server/--token flags, these changes persist across launches.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Update stored console settings",
}

var configSetServerCmd = &cobra.Command{
	Use:   "set-server [url]",
	Short: "Store the backend base URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadStoredConfig()
		if err != nil {
			return err
		}
		if err := cfg.SetServerURL(args[0]); err != nil {
			return err
		}
		fmt.Printf("Server URL set to %s\n", cfg.ServerURL())
		return nil
	},
}

var configSetTokenCmd = &cobra.Command{
	Use:   "set-token [token]",
	Short: "Store the access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadStoredConfig()
		if err != nil {
			return err
		}
		if err := cfg.SetAccessToken(args[0]); err != nil {
			return err
		}
		fmt.Println("Access token updated")
		return nil
	},
}

// loadStoredConfig reads config.yaml without the env overrides, so a
// persisted change never bakes a session's environment into the file.
func loadStoredConfig() (*config.Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	if err := config.InitConsoleDir(home); err != nil {
		return nil, fmt.Errorf("initialize %s: %w", config.ConsoleDir, err)
	}
	return config.NewStoredConfig(home)
}

func init() {
	configCmd.AddCommand(configSetServerCmd)
	configCmd.AddCommand(configSetTokenCmd)
}
