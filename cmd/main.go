package main

import (
	"fmt"
	"os"

	"BlackjackAdvisor/config"

	"github.com/spf13/cobra"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "advisor",
		Short: "Card counting advisor for a camera-watched blackjack table",
		Long: `advisor turns per-frame card detections into a running/true count,
hand tracking, shuffle detection and strategy / bet recommendations.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Load(configPath)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml",
		"config file, empty to use defaults and ADVISOR_* env only")
	rootCmd.AddCommand(serveCmd, simulateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
