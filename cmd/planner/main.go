package main

import (
	"os"
	"visit-planner-service/internal/config"
	"visit-planner-service/internal/platform/logging"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Territory clustering and weekly visit planning",
	Long: `planner groups client records into capacity-bounded days, orders the
days by distance from the depot and sequences each day with a
nearest-neighbor walk.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
		logging.SetupWithWriter(config.Get("ENVIRONMENT", "development"), os.Stderr)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
