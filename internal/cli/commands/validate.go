package commands

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/resourcemeta/internal/cli/ui"
	"github.com/conduit-lang/resourcemeta/internal/metadata/identifier"
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
	"github.com/conduit-lang/resourcemeta/internal/orm/validation"
)

// newValidateCommand creates the 'validate' command
func newValidateCommand(opts *rootOptions) *cobra.Command {
	var (
		format       string
		uriVariables map[string]string
	)

	cmd := &cobra.Command{
		Use:   "validate <class> <operation> [query]",
		Short: "Validate request parameters against an operation",
		Long: `Validate a query string against the parameters of an operation.

The constraints derived from the parameter schemas are evaluated the way they
would be for an incoming request. All violations are reported at once, keyed by
the parameter path. The command exits with an error when a violation is found.`,
		Example: `  # Validate a collection query
  resourcemeta validate Book get_collection 'page=0&itemsPerPage=500'

  # Validate uri variables of an item operation
  resourcemeta validate Book get --uri-var id=42

  # Composite identifiers may be given one by one
  resourcemeta validate Shelf get --uri-var room=b --uri-var position=3

  # Report violations as JSON
  resourcemeta validate Book get_collection 'order[title]=up' --format json`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatTable && format != formatJSON {
				return fmt.Errorf("unsupported format %q (use table or json)", format)
			}

			query := url.Values{}
			if len(args) == 3 {
				var err error
				query, err = url.ParseQuery(strings.TrimPrefix(args[2], "?"))
				if err != nil {
					return fmt.Errorf("invalid query string: %w", err)
				}
			}

			a, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.close()

			collection, err := a.resolve(cmd, args[0])
			if err != nil {
				return err
			}
			op, err := a.findOperation(cmd, collection, args[1])
			if err != nil {
				return err
			}

			engine := validation.NewEngine(a.logger)
			err = engine.Validate(cmd.Context(), op, query, compositeVariables(op, uriVariables))

			violations, rejected := validation.AsValidationErrors(err)
			if err != nil && !rejected {
				return err
			}

			out := cmd.OutOrStdout()
			if format == formatJSON {
				if violations == nil {
					violations = validation.NewValidationErrors()
				}
				if err := writeStructured(out, formatJSON, violations); err != nil {
					return err
				}
				if violations.HasErrors() {
					return errReported
				}
				return nil
			}

			if violations == nil {
				ui.Success(fmt.Sprintf("%s parameters are valid", op.Name())).Write(out, opts.noColor)
				return nil
			}

			ui.Rejected(op.Name(), violations.Count()).Write(cmd.ErrOrStderr(), opts.noColor)
			table := ui.NewTable(out, []string{"PATH", "MESSAGE"}, &ui.TableOptions{NoColor: opts.noColor})
			for _, path := range violations.Paths() {
				for _, message := range violations.Fields[path] {
					table.AddRow(path, message)
				}
			}
			table.Render()
			return errReported
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table or json")
	cmd.Flags().StringToStringVar(&uriVariables, "uri-var", nil, "URI variable values, e.g. --uri-var id=42")

	return cmd
}

// compositeVariables folds identifier values given one by one into the composite
// variable of op, unless that variable was given itself
func compositeVariables(op resource.Operation, variables map[string]string) map[string]string {
	out := make(map[string]string, len(variables))
	for k, v := range variables {
		out[k] = v
	}

	for _, link := range op.URIVariables() {
		if !link.CompositeIdentifier {
			continue
		}
		if _, ok := out[link.ParameterName]; ok {
			continue
		}

		values := make(map[string]string, len(link.Identifiers))
		for _, id := range link.Identifiers {
			if v, ok := out[id]; ok {
				values[id] = v
			}
		}
		if len(values) == len(link.Identifiers) {
			out[link.ParameterName] = identifier.Format(values, link.Identifiers)
		}
	}
	return out
}
