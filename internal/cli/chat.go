package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/opsgate/opsgate/internal/config"
	"github.com/spf13/cobra"
)

var chatSessionID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive multi-turn session with the agent",
	Run:   runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSessionID, "session", "s", "cli:default", "Session key")
}

func runChat(cmd *cobra.Command, args []string) {
	printHeader("OpsGate Chat")

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

	fmt.Println("Commands: read <path> | get <key> | delete <path> | update <key> <field>=<value>")
	fmt.Println("Destructive actions ask for APPROVE or DENY. Type 'exit' to quit.")
	fmt.Println()

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(color.GreenString("you> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		answer := rt.Controller.Turn(ctx, chatSessionID, line)
		fmt.Println(color.CyanString("opsgate>"), answer)
		fmt.Println()
	}
}
