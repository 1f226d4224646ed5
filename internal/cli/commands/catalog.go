package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/resourcemeta/internal/cli/ui"
)

// newCatalogCommand creates the 'catalog' command
func newCatalogCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Probe the database for the tables of mapped classes",
		Long: `Probe the configured database for the tables of the relational mappings.

Reports whether every mapped class has a table or a view and which mapped
columns are missing. Classes backed by a view are resolved as read-only. Every
successful probe issues a new schema version used in metadata cache keys.

Supported databases: PostgreSQL (postgres://) and SQLite (sqlite:// or a file path).`,
		Example: `  # Probe the database from resourcemeta.yaml
  resourcemeta catalog

  # Probe another database
  DATABASE_URL=postgres://localhost/library resourcemeta catalog`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			a, err := loadApp(cmd.Context(), opts, true)
			if err != nil {
				ui.CatalogFailure(err).Write(cmd.ErrOrStderr(), opts.noColor)
				return errReported
			}
			defer a.close()

			out := cmd.OutOrStdout()
			if format != formatTable {
				return writeStructured(out, format, a.report)
			}

			table := ui.NewTable(out, []string{"CLASS", "TABLE", "KIND", "MISSING COLUMNS"}, &ui.TableOptions{NoColor: opts.noColor})
			for _, t := range a.report.Tables {
				table.AddRow(t.Class, t.Name, t.Kind.String(), strings.Join(t.MissingColumns, ", "))
			}
			table.Render()
			fmt.Fprintln(out)

			if missing := a.report.Missing(); len(missing) > 0 {
				ui.Warning(fmt.Sprintf("No table found for %s.", strings.Join(missing, ", "))).Write(out, opts.noColor)
			}
			if views := a.report.Views(); len(views) > 0 {
				ui.Info(fmt.Sprintf("Read-only (view): %s.", strings.Join(views, ", "))).Write(out, opts.noColor)
			}
			ui.Success("Schema version "+a.report.Version).Write(out, opts.noColor)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json or yaml")

	return cmd
}
