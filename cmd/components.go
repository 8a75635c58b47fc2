package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quick-calculator/calcdir/internal/app"
	"github.com/quick-calculator/calcdir/internal/calculators"
)

var componentsCmd = &cobra.Command{
	Use:     "components",
	Aliases: []string{"list", "l"},
	Short:   "List registered calculator components",
	Long: `List every registered component id with its category and the calculators
whose content names it. Components named by content but not registered are
listed with status "missing".

Examples:
  calcdir components              # Table
  calcdir components -o yaml      # YAML`,
	RunE: runComponents,
}

var componentsFlags *StandardFlags

func init() {
	rootCmd.AddCommand(componentsCmd)

	componentsFlags = AddStandardFlags(componentsCmd, "output")
}

// componentInfo is one row of the components listing.
type componentInfo struct {
	ID       string   `json:"id" yaml:"id"`
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	Status   string   `json:"status" yaml:"status"`
	UsedBy   []string `json:"usedBy" yaml:"usedBy"`
}

func runComponents(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	snap, err := app.Load(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	usedBy := make(map[string][]string)
	for _, record := range snap.Store.Records() {
		if record.ComponentID != "" {
			usedBy[record.ComponentID] = append(usedBy[record.ComponentID], record.Slug)
		}
	}

	var rows []componentInfo
	for _, id := range snap.Registry.IDs() {
		row := componentInfo{ID: id, Status: "registered", UsedBy: usedBy[id]}
		if e, ok := calculators.Lookup(id); ok {
			row.Category = string(e.Category)
		}
		if len(row.UsedBy) == 0 {
			row.Status = "unused"
		}
		rows = append(rows, row)
	}
	for id, slugs := range usedBy {
		if !snap.Registry.Has(id) {
			rows = append(rows, componentInfo{ID: id, Status: "missing", UsedBy: slugs})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	for i := range rows {
		sort.Strings(rows[i].UsedBy)
		if rows[i].UsedBy == nil {
			rows[i].UsedBy = []string{}
		}
	}

	out := cmd.OutOrStdout()
	if componentsFlags.OutputFormat != "table" {
		return writeStructured(out, componentsFlags.OutputFormat, rows)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMPONENT\tCATEGORY\tSTATUS\tUSED BY")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", r.ID, r.Category, r.Status, len(r.UsedBy))
	}

	return w.Flush()
}
