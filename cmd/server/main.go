// Package main runs the notes API server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "notesapi"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// overrides holds flag values that take precedence over the environment.
type overrides struct {
	port     string
	env      string
	store    string
	logLevel string
}

func rootCmd() *cobra.Command {
	var o overrides

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Notes REST API",
		Long: `notesapi serves create, read, update and delete operations on notes
identified by a caller supplied noteId.

Configuration is read from the environment (and a .env file if present);
flags override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.port, "port", "p", "", "Port to listen on (overrides PORT)")
	flags.StringVar(&o.env, "env", "", "Deployment mode: development or production (overrides APP_ENV)")
	flags.StringVar(&o.store, "store", "", "Store driver: mongo, mysql or memory (overrides STORE_DRIVER)")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})

	return cmd
}
