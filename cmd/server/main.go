package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tsuserver",
		Short: "Roleplay courtroom server",
		Long: `tsuserver hosts Danganronpa-style roleplay sessions.

Clients connect over raw TCP or WebSocket, pick a character and chat
in-character or out-of-character inside areas. Running without a
subcommand is the same as "serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := serveCmd()
	rootCmd.Flags().AddFlagSet(serve.Flags())
	rootCmd.RunE = serve.RunE

	rootCmd.AddCommand(
		serve,
		hashpassCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
