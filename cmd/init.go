package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quick-calculator/calcdir/internal/services"
)

var initCmd = &cobra.Command{
	Use:     "init [dir]",
	Aliases: []string{"i"},
	Short:   "Create a calculator directory project",
	Long: `Create .calcdir.yml, the content and label directories, an empty
extended-locale allowlist and an example calculator translated into every
global locale. Existing files are kept unless --force is given.

Examples:
  calcdir init                 # Initialize the current directory
  calcdir init my-site         # Initialize ./my-site
  calcdir init --minimal       # Skip the example calculator`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initMinimal bool
	initForce   bool
	initBaseURL string
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initMinimal, "minimal", false, "Minimal setup without the example calculator")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
	initCmd.Flags().StringVar(&initBaseURL, "base-url", "https://example.com", "Public base URL of the site")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	res, err := services.NewInitService().InitProject(services.InitOptions{
		ProjectDir: dir,
		Minimal:    initMinimal,
		Force:      initForce,
		BaseURL:    initBaseURL,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range res.Files {
		fmt.Fprintf(out, "created %s\n", f)
	}
	fmt.Fprintf(out, "Initialized calculator directory in %s (%s)\n", dir, res)

	return nil
}
