package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/streetsignal/streetsignal/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "streetsignal",
	Short: "Street-level retail intelligence for postal districts",
	Long:  "Ranks the commercial streets of postal districts by POI count, using OpenStreetMap data fetched through rate-limited postcodes.io, Nominatim and Overpass queries.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
