package cli

import (
	"fmt"
	"os"

	"github.com/opsgate/opsgate/internal/config"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("OpsGate Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("OpsGate Status")
		fmt.Printf("Version: %s\n", version)

		configPath, err := config.ConfigPath()
		if err == nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				fmt.Println("Config:  found (" + configPath + ")")
			} else {
				fmt.Println("Config:  not found, using defaults (" + configPath + ")")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Config warning: %v\n", err)
		}
		fmt.Printf("Data dir: %s\n", cfg.Paths.DataDir)
		fmt.Printf("Max retries: %d\n", cfg.Agent.MaxRetries)

		if cfg.Agent.LedgerEnabled {
			fmt.Println("Ledger:  enabled (" + cfg.LedgerPath() + ")")
		} else {
			fmt.Println("Ledger:  disabled")
		}
		if cfg.Stream.Enabled {
			fmt.Printf("Stream:  enabled (%s -> %s)\n", cfg.Stream.Brokers, cfg.Stream.Topic)
		} else {
			fmt.Println("Stream:  disabled")
		}
		if cfg.Notify.Slack.Enabled {
			fmt.Printf("Slack:   enabled (#%s)\n", cfg.Notify.Slack.Channel)
		} else {
			fmt.Println("Slack:   disabled")
		}

		fmt.Println("Status:  Ready")
	},
}
