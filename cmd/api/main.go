package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd returns the CLI. Running it without a subcommand starts the server.
func newRootCmd() *cobra.Command {
	var port string

	root := &cobra.Command{
		Use:   "skillsprint-api",
		Short: "SkillSprint learning roadmap API",
		Long: `Serves the SkillSprint HTTP API: Firebase-authenticated roadmap generation backed by
Google Gemini, the skill suggestion catalog and the static web client.

Configuration is read from the environment (PORT, NODE_ENV, GEMINI_API_KEY, FIREBASE_*, ...).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), port)
		},
	}
	root.PersistentFlags().StringVar(&port, "port", "", "listen port (overrides PORT)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), port)
		},
	})
	root.AddCommand(newHealthcheckCmd(&port))

	return root
}
