package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quick-calculator/calcdir/internal/services"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Write the static site",
	Long: `Render every published (locale, calculator) page to disk, plus locale home
pages, per-locale sitemaps, a sitemap index, robots.txt, a 404 page and a
manifest of everything written.

A page that cannot be rendered is reported and skipped; the rest of the site
is still written. The command exits non-zero if any page failed.

Examples:
  calcdir build                    # Build into build.output_dir
  calcdir build -o public          # Build into ./public
  calcdir build --clean            # Remove the output directory first
  calcdir build --workers 1        # Render pages one at a time`,
	RunE: runBuild,
}

var (
	buildOutput     string
	buildWorkers    int
	buildClean      bool
	buildNoSitemaps bool
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Output directory (default build.output_dir)")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "Parallel page renderers (default build.workers, 0 means one per CPU)")
	buildCmd.Flags().BoolVar(&buildClean, "clean", false, "Remove the output directory before building")
	buildCmd.Flags().BoolVar(&buildNoSitemaps, "no-sitemaps", false, "Skip sitemaps and robots.txt")

	_ = viper.BindPFlag("build.workers", buildCmd.Flags().Lookup("workers"))
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	svc := services.NewBuildService(cfg, services.DefaultLoader(cfg, logger), logger)
	res, err := svc.Build(ctx, services.BuildOptions{
		Output:     buildOutput,
		Workers:    buildWorkers,
		Clean:      buildClean,
		NoSitemaps: buildNoSitemaps,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Output\t%s\n", res.OutputDir)
	fmt.Fprintf(w, "Pages\t%d\n", len(res.Pages))
	fmt.Fprintf(w, "Other files\t%d\n", len(res.Files))
	fmt.Fprintf(w, "Failures\t%d\n", len(res.Failures))
	fmt.Fprintf(w, "Duration\t%s\n", res.Duration.Round(time.Millisecond))
	if err := w.Flush(); err != nil {
		return err
	}

	for _, f := range res.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s\n", f.Error())
	}
	if !res.Success {
		return fmt.Errorf("%d of %d pages failed", len(res.Failures), len(res.Failures)+len(res.Pages))
	}

	return nil
}
