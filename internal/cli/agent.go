package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/opsgate/opsgate/internal/config"
	"github.com/spf13/cobra"
)

var (
	agentMessage   string
	agentSessionID string
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Send one command to the agent",
	Run:   runAgent,
}

func init() {
	agentCmd.Flags().StringVarP(&agentMessage, "message", "m", "", "Command to send to the agent")
	agentCmd.Flags().StringVarP(&agentSessionID, "session", "s", "cli:default", "Session key")
}

func runAgent(cmd *cobra.Command, args []string) {
	if agentMessage == "" {
		fmt.Println("Error: --message is required")
		os.Exit(1)
	}

	printHeader("OpsGate Agent")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config warning: %v (using defaults)\n", err)
	}

	rt, err := newRuntime(cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	answer := rt.Controller.Turn(context.Background(), agentSessionID, agentMessage)
	fmt.Println("\n" + answer)
}
