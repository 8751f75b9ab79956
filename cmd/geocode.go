package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode [district]...",
	Short: "Resolve district centroids",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, district := range args {
			coord, resolveErr := a.resolver.Resolve(ctx, district)
			if resolveErr != nil {
				fmt.Printf("%s\tERROR: %v\n", district, resolveErr)
				continue
			}
			fmt.Printf("%s\t%f\t%f\n", district, coord.Lat, coord.Lon)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}
