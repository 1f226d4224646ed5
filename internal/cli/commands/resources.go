package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/resourcemeta/internal/cli/ui"
)

// resourceSummary is one row of the 'resources' listing
type resourceSummary struct {
	Class      string   `json:"class"`
	ShortName  string   `json:"short_name"`
	Backend    string   `json:"backend,omitempty"`
	ReadOnly   bool     `json:"read_only,omitempty"`
	Operations []string `json:"operations"`
}

// newResourcesCommand creates the 'resources' command
func newResourcesCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "resources",
		Short: "List all declared resource classes",
		Long: `List all declared resource classes.

Every class is resolved, so declaration errors such as duplicate operation names
or broken links are reported here. Use 'resolve <class>' to view the operations
of a specific class.`,
		Example: `  # List all resources
  resourcemeta resources

  # List resources in JSON format
  resourcemeta resources --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			a, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.close()

			collections, err := a.pipeline.ResolveAll(cmd.Context())
			if err != nil {
				return err
			}

			summaries := make([]resourceSummary, 0, len(collections))
			for _, c := range collections {
				s := resourceSummary{Class: c.Class(), Operations: make([]string, 0)}
				if c.Len() > 0 {
					s.ShortName = c.At(0).ShortName
				}
				if registry := a.set.Managers.ManagerForClass(c.Class()); registry != nil {
					s.Backend = registry.Backend()
					s.ReadOnly = registry.IsReadOnly(c.Class())
				}
				for _, op := range c.AllOperations() {
					s.Operations = append(s.Operations, op.Name())
				}
				summaries = append(summaries, s)
			}

			out := cmd.OutOrStdout()
			if format != formatTable {
				return writeStructured(out, format, summaries)
			}

			table := ui.NewTable(out, []string{"CLASS", "SHORT NAME", "BACKEND", "READ ONLY", "OPERATIONS"}, &ui.TableOptions{NoColor: opts.noColor})
			for _, s := range summaries {
				readOnly := ""
				if s.ReadOnly {
					readOnly = "yes"
				}
				table.AddRow(s.Class, s.ShortName, s.Backend, readOnly, strconv.Itoa(len(s.Operations)))
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json or yaml")

	return cmd
}
