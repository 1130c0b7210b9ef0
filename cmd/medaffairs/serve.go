package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/medaffairs/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search and research over HTTP",
	Long: `Serve exposes the research agent as a JSON API:

  GET  /healthz
  GET  /api/search?q=&max=&clinical=&phase=&recent=
  GET  /api/abstracts/{pmid}
  POST /api/research   {"query", "task", "clinical", "phase", "recent_years", "max_results", "focus"}

The server stops gracefully on interrupt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Server.Addr
		}
		a, closeGen, err := newAgent(cmd.Context(), io.Discard)
		if err != nil {
			return err
		}
		defer closeGen()
		return server.New(a, version).ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")
	rootCmd.AddCommand(serveCmd)
}
