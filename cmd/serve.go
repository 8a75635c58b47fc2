package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quick-calculator/calcdir/internal/services"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the preview server with live reload",
	Long: `Serve every published page from memory. With --watch, edits to content
documents, label bundles or the allowlist reload the content and refresh
connected browsers. A reload that fails keeps the last good content live.

Endpoints:
  /, /{locale}/                Locale home pages
  /{slug}, /{locale}/{slug}    Calculator pages
  /healthz                     Server status
  /api/paths                   Published paths as JSON
  /api/validate                Validation report (?format=json|yaml|text&only=...)

Examples:
  calcdir serve                    # Serve on localhost:8080
  calcdir serve --watch            # Reload on content changes
  calcdir serve -p 3000            # Serve on port 3000`,
	RunE: runServe,
}

var (
	serveFlags *StandardFlags
	serveWatch bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveFlags = AddStandardFlags(serveCmd, "server")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "Reload when content changes")
	serveCmd.Flags().Duration("watch-delay", 0, "Debounce window for content changes (default server.watch_delay)")
	_ = viper.BindPFlag("server.watch_delay", serveCmd.Flags().Lookup("watch-delay"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	svc := services.NewServeService(cfg, services.DefaultLoader(cfg, logger), logger)

	return svc.Serve(ctx, services.ServeOptions{
		Watch: serveWatch,
		Ready: func(url string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s\n", url)
		},
	})
}
