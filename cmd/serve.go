package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve [host[:port]]",
	Aliases: []string{"s"},
	Short:   "Serve the source directory with in-memory bundles",
	Long: `Run the esbuild development server. Bundles are rebuilt on request and
served from memory; every other file comes straight from the source
directory. The address defaults to the "serve" configuration key, then to
127.0.0.1 on the default port.

Examples:
  sitepack serve
  sitepack serve :3000
  sitepack serve 0.0.0.0:8080`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	addr := sess.config.Serve
	if len(args) == 1 {
		addr = args[0]
	}

	ctx, stop := signalContext(context.Background())
	defer stop()

	return sess.orchestrator.Serve(ctx, addr, func(host string, port uint16) {
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s:%d/ (Ctrl+C to stop)\n",
			sess.config.Source, host, port)
	})
}
