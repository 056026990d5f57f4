package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build info - injected via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// configPath is the persistent --config flag shared by every subcommand.
// Empty means the standard lookup (./config.yaml, /etc/server/config.yaml).
var configPath string

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Batteries-included HTTP server",
	Long:  `server runs and inspects an HTTP server with managed middleware, diagnostics and a graceful lifecycle.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: search ./config.yaml, /etc/server/)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
