package cli

import (
	"fmt"
	"os"

	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/internal/tools"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered tools and their risk tiers",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("OpsGate Tools")

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

		tierNames := map[int]string{
			tools.TierReadOnly:    "read-only",
			tools.TierWrite:       "write",
			tools.TierDestructive: "destructive (requires approval)",
		}
		for _, tool := range rt.Registry.List() {
			tier := tools.ToolTier(tool)
			fmt.Printf("%-15s tier %d  %-32s %s\n", tool.Name(), tier, tierNames[tier], tool.Description())
		}
	},
}
