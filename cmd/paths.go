package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quick-calculator/calcdir/internal/app"
	"github.com/quick-calculator/calcdir/internal/paths"
	"github.com/quick-calculator/calcdir/internal/seo"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List every published (locale, slug) path",
	Long: `List the pages a build publishes: every global locale crossed with every
calculator, followed by the extended locales for allowlisted calculators.

Examples:
  calcdir paths                # Table with URLs
  calcdir paths -o json        # JSON array of {locale, slug}
  calcdir paths --locale de    # Only one locale`,
	RunE: runPaths,
}

var (
	pathsFlags  *StandardFlags
	pathsLocale string
)

func init() {
	rootCmd.AddCommand(pathsCmd)

	pathsFlags = AddStandardFlags(pathsCmd, "output")
	pathsCmd.Flags().StringVar(&pathsLocale, "locale", "", "Only list paths of this locale")
}

func runPaths(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	snap, err := app.Load(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	list := snap.Paths()
	if pathsLocale != "" {
		list = paths.ByLocale(list)[pathsLocale]
		if list == nil {
			list = []paths.Path{}
		}
	}

	out := cmd.OutOrStdout()
	if pathsFlags.OutputFormat != "table" {
		return writeStructured(out, pathsFlags.OutputFormat, list)
	}

	site := app.Site(cfg)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LOCALE\tSLUG\tURL")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Locale, p.Slug, seo.PageURL(site, snap.Policy, p.Locale, p.Slug))
	}

	return w.Flush()
}
