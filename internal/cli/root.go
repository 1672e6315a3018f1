package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/opsgate/opsgate/internal/cli.version=1.2.3"
	version = "0.3.0"
	logo    = "\n" +
		"   ___              ____       _\n" +
		"  / _ \\ _ __  ___ / ___| __ _| |_ ___\n" +
		" | | | | '_ \\/ __| |  _ / _` | __/ _ \\\n" +
		" | |_| | |_) \\__ \\ |_| | (_| | ||  __/\n" +
		"  \\___/| .__/|___/\\____|\\__,_|\\__\\___|\n" +
		"       |_|\n"
)

var rootCmd = &cobra.Command{
	Use:   "opsgate",
	Short: "OpsGate - approval-gated ops agent",
	Long:  color.CyanString(logo) + "\nA turn-based ops agent that gates destructive actions behind human approval.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(toolsCmd)
}
