// Command dkgsim runs a threshold key generation ceremony among simulated
// parties in one process.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dkgsim",
	Short: "Simulate a Feldman VSS distributed key generation",
	Long: "Run a t-of-n distributed key generation between in-process parties,\n" +
		"optionally with parties that deal corrupted shares.",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newRunCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
