package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quick-calculator/calcdir/internal/app"
	"github.com/quick-calculator/calcdir/internal/services"
	"github.com/quick-calculator/calcdir/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:     "validate",
	Aliases: []string{"v"},
	Short:   "Validate translations and component registrations",
	Long: `Validate every calculator document and label bundle against the base
locale, and every calculator's component against the registry.

Missing keys, missing global-locale sections, missing base-locale sections,
likely untranslated English text and unregistered components are critical.
Extra keys, empty values and missing sections of allowlisted extended locales
are warnings. The command exits non-zero when any critical issue is found.

Examples:
  calcdir validate                           # Text report
  calcdir validate --format json             # JSON report on stdout
  calcdir validate --report out/report.json  # Also write the report to a file
  calcdir validate --only translations       # Translation checks only
  calcdir validate --watch                   # Re-run on every content change`,
	RunE: runValidate,
}

var (
	validateFormat string
	validateReport string
	validateOnly   string
	validateWatch  bool
)

// errValidationFailed makes the process exit non-zero without repeating the
// report on stderr.
var errValidationFailed = fmt.Errorf("validation failed")

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Report format (text, json, yaml)")
	validateCmd.Flags().StringVar(&validateReport, "report", "", "Also write the report to this file (.json or .yaml)")
	validateCmd.Flags().StringVar(&validateOnly, "only", "", "Run only one validator (translations, components)")
	validateCmd.Flags().BoolVarP(&validateWatch, "watch", "w", false, "Re-validate whenever content changes")

	AddFlagValidation(validateCmd, "format", func(format string) error {
		return ValidateFormat(format, validation.Formats)
	})
}

func runValidate(cmd *cobra.Command, args []string) error {
	scope, err := app.ParseScope(validateOnly)
	if err != nil {
		return err
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	svc := services.NewValidateService(cfg, services.DefaultLoader(cfg, logger), logger)
	opts := services.ValidateOptions{
		Scope:      scope,
		Format:     validateFormat,
		Out:        cmd.OutOrStdout(),
		ReportFile: validateReport,
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if validateWatch {
		return svc.Watch(ctx, opts, nil, func(err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "validation run failed: %v\n", err)
		})
	}

	report, err := svc.Validate(ctx, opts)
	if err != nil {
		return err
	}
	if report.Failed() {
		cmd.SilenceErrors = true

		return errValidationFailed
	}

	return nil
}
