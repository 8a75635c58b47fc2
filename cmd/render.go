package cmd

import (
	"github.com/spf13/cobra"

	"github.com/quick-calculator/calcdir/internal/app"
	"github.com/quick-calculator/calcdir/internal/content"
	"github.com/quick-calculator/calcdir/internal/seo"
)

var renderCmd = &cobra.Command{
	Use:   "render <locale> <slug>",
	Short: "Render one calculator page",
	Long: `Resolve a (locale, slug) pair exactly as the server and the build do and
print the result. An unknown slug, a locale the calculator is not published
in, or a missing translation is reported as not found.

Examples:
  calcdir render en bmi-calculator            # Full HTML document
  calcdir render es bmi-calculator -f json    # Content, metadata and schema`,
	Args: cobra.ExactArgs(2),
	RunE: runRender,
}

var renderFormat string

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "html", "Output format (html, json, yaml)")
	AddFlagValidation(renderCmd, "format", func(format string) error {
		return ValidateFormat(format, []string{"html", "json", "yaml"})
	})
}

// renderedPage is the structured form of a rendered page.
type renderedPage struct {
	Locale     string                 `json:"locale" yaml:"locale"`
	Slug       string                 `json:"slug" yaml:"slug"`
	Component  string                 `json:"component" yaml:"component"`
	Registered bool                   `json:"registered" yaml:"registered"`
	Content    *content.LocaleContent `json:"content" yaml:"content"`
	Metadata   seo.Metadata           `json:"metadata" yaml:"metadata"`
	Schema     seo.Graph              `json:"schema" yaml:"-"`
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	snap, err := app.Load(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	page, err := snap.Renderer.Render(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if renderFormat == "html" {
		return page.Document().Render(cmd.Context(), out)
	}

	return writeStructured(out, renderFormat, renderedPage{
		Locale:     page.Locale,
		Slug:       page.Slug,
		Component:  page.ComponentID,
		Registered: page.Registered,
		Content:    page.Content,
		Metadata:   page.Metadata,
		Schema:     page.Schema,
	})
}
