package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "hopebridge",
		Short: "HopeBridge admin and donor console",
		Long: `HopeBridge serves the admin and donor console of the HopeBridge platform API.

Every admin listing can also be browsed and exported from the terminal:
  hopebridge browse campaigns
  hopebridge export donations -f status=success -o donations.csv

Configuration is read from the environment, after loading --env-file when present.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the environment")

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newBrowseCmd(),
		newExportCmd(),
		newJobsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
