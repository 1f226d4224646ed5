package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/resourcemeta/internal/cli/ui"
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
)

// newResolveCommand creates the 'resolve' command
func newResolveCommand(opts *rootOptions) *cobra.Command {
	var (
		format    string
		operation string
	)

	cmd := &cobra.Command{
		Use:   "resolve <class>",
		Short: "Resolve the metadata of a resource class",
		Long: `Resolve the complete metadata of a resource class.

Runs the class through the resolution chain: declared operations are completed
with names, uri templates and uri variables, backend providers and processors,
validated parameters, and links between related resources.`,
		Example: `  # Show the operations of Book
  resourcemeta resolve Book

  # Show one operation with its uri variables and parameters
  resourcemeta resolve Book --operation get_collection

  # Output in JSON format for tooling
  resourcemeta resolve Book --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
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

			out := cmd.OutOrStdout()
			if operation != "" {
				op, err := a.findOperation(cmd, collection, operation)
				if err != nil {
					return err
				}
				if format == formatTable {
					writeOperationTable(out, op, opts.noColor)
					return nil
				}
				return writeStructured(out, format, op)
			}

			if format == formatTable {
				writeCollectionTable(out, collection, opts.noColor)
				return nil
			}
			return writeStructured(out, format, collection)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json or yaml")
	cmd.Flags().StringVarP(&operation, "operation", "o", "", "Show a single operation by name or kind")

	return cmd
}

// resolve creates the collection of class, reporting unknown classes with suggestions
func (a *app) resolve(cmd *cobra.Command, class string) (*resource.Collection, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	collection, err := a.pipeline.Create(ctx, class)
	if resource.IsResourceClassNotFound(err) {
		suggestions := ui.Suggest(class, a.pipeline.Classes())
		ui.ClassNotFound(class, suggestions).Write(cmd.ErrOrStderr(), a.noColor)
		return nil, errReported
	}
	return collection, err
}

// findOperation looks an operation up by name, then by kind (e.g. get_collection)
func (a *app) findOperation(cmd *cobra.Command, c *resource.Collection, name string) (resource.Operation, error) {
	op, err := c.Operation(name)
	if err == nil {
		return op, nil
	}
	if !errors.Is(err, resource.ErrOperationNotFound) {
		return resource.Operation{}, err
	}

	if kind, kindErr := resource.ParseOperationKind(name); kindErr == nil {
		for _, candidate := range c.AllOperations() {
			if candidate.Kind() == kind {
				return candidate, nil
			}
		}
	}

	names := make([]string, 0)
	for _, candidate := range c.AllOperations() {
		names = append(names, candidate.Name())
	}
	suggestions := ui.Suggest(name, names)
	ui.OperationNotFound(c.Class(), name, suggestions).Write(cmd.ErrOrStderr(), a.noColor)
	return resource.Operation{}, errReported
}
