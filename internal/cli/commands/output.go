package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/resourcemeta/internal/cli/ui"
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
)

// Output formats
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// errReported marks a failure whose details were already written to stderr
var errReported = errors.New("command failed")

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported format %q (use table, json or yaml)", format)
	}
}

// writeStructured encodes v as indented JSON or as YAML. YAML output goes through
// the JSON encoding so both formats share the same field names.
func writeStructured(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	if format == formatJSON {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

// writeCollectionTable renders every resource block with its operations
func writeCollectionTable(w io.Writer, c *resource.Collection, noColor bool) {
	for i, r := range c.Resources() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		ui.Header(w, r.Class, noColor)

		kv := ui.NewKeyValueTable(w, noColor)
		kv.AddRow("Short name", r.ShortName)
		kv.AddRow("Description", r.Description)
		kv.AddRow("URI template", r.URITemplate)
		kv.Render()
		fmt.Fprintln(w)

		table := ui.NewTable(w, []string{"NAME", "METHOD", "URI TEMPLATE", "PROVIDER", "PROCESSOR"}, &ui.TableOptions{NoColor: noColor})
		for _, op := range r.Operations.All() {
			table.AddRow(op.Name(), op.Method(), op.URITemplate(), op.Provider(), op.Processor())
		}
		for _, op := range r.GraphQLOperations.All() {
			table.AddRow(op.Name(), "graphql", "", op.Provider(), op.Processor())
		}
		table.Render()
	}
}

// writeOperationTable renders the details of one operation
func writeOperationTable(w io.Writer, op resource.Operation, noColor bool) {
	ui.Header(w, op.Name(), noColor)

	kv := ui.NewKeyValueTable(w, noColor)
	kv.AddRow("Class", op.Class())
	kv.AddRow("Kind", op.Kind().String())
	kv.AddRow("Method", op.Method())
	kv.AddRow("URI template", op.URITemplate())
	kv.AddRow("Route name", op.RouteName())
	kv.AddRow("Provider", op.Provider())
	kv.AddRow("Processor", op.Processor())
	if so := op.StateOptions(); so != nil {
		kv.AddRow("State options", fmt.Sprintf("%s class=%s links=%s", so.Backend(), so.PersistenceClass(), so.LinksHandler()))
	}
	kv.AddRow("Filters", strings.Join(op.Filters(), ", "))
	kv.Render()

	if links := op.URIVariables(); len(links) > 0 {
		fmt.Fprintln(w)
		table := ui.NewTable(w, []string{"VARIABLE", "FROM CLASS", "TO CLASS", "FROM PROPERTY", "TO PROPERTY", "IDENTIFIERS"}, &ui.TableOptions{NoColor: noColor})
		for _, l := range links {
			table.AddRow(l.ParameterName, l.FromClass, l.ToClass, l.FromProperty, l.ToProperty, strings.Join(l.Identifiers, ", "))
		}
		table.Render()
	}

	if params := op.Parameters().All(); len(params) > 0 {
		fmt.Fprintln(w)
		table := ui.NewTable(w, []string{"PARAMETER", "IN", "PROPERTY", "FILTER", "CONSTRAINTS"}, &ui.TableOptions{NoColor: noColor})
		for _, p := range params {
			constraints := make([]string, 0, len(p.Constraints()))
			for _, c := range p.Constraints() {
				constraints = append(constraints, c.String())
			}
			table.AddRow(p.Key(), p.Location().String(), p.Property(), p.Filter(), strings.Join(constraints, ", "))
		}
		table.Render()
	}
}
