package bulk

import (
	"strings"

	"github.com/artie-labs/bulksync/lib/config/constants"
	"github.com/artie-labs/bulksync/lib/typing"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

// request is everything about [Args] that can be checked without a round-trip.
type request struct {
	table         string
	mode          constants.Mode
	mappings      []Mapping
	sourceIndexes []int
	qualifiers    []string
	batchSize     int
	physical      *PhysicalPseudo
}

func (e *Engine) validate(mode constants.Mode, args Args) (request, error) {
	if args.TableID == nil {
		return request{}, newConfigurationError("", "table is required")
	}

	req := request{table: args.TableID.FullyQualifiedName(), mode: mode}
	if !constants.IsValidMode(mode) {
		return request{}, newConfigurationError(req.table, "mode %q is invalid", mode)
	}

	if args.Rows == nil {
		return request{}, newConfigurationError(req.table, "rows are required")
	}

	req.batchSize = typing.DefaultValueFromPtr(args.BatchSize, max(min(args.Rows.Len(), e.maxBatchSize), 1))
	if req.batchSize <= 0 {
		return request{}, newConfigurationError(req.table, "batch size must be positive, got: %d", req.batchSize)
	}

	if args.Options.Timeout < 0 {
		return request{}, newConfigurationError(req.table, "timeout cannot be negative")
	}

	switch policy := args.Staging.(type) {
	case PhysicalPseudo:
		req.physical = &policy
	case *PhysicalPseudo:
		req.physical = policy
	}

	if req.physical != nil && !e.dest.Dialect().SupportsTransactionalDDL() {
		return request{}, newConfigurationError(req.table, "%s cannot stage into a physical table inside a transaction", e.dest.Label())
	}

	// Nothing will be staged, mappings and qualifiers cannot be checked against an empty source.
	if args.Rows.Len() == 0 {
		return req, nil
	}

	fieldIndexes := make(map[string]int)
	for i, field := range args.Rows.Fields() {
		key := strings.ToLower(field)
		if _, ok := fieldIndexes[key]; ok {
			return request{}, newConfigurationError(req.table, "source field %q is duplicated", field)
		}
		fieldIndexes[key] = i
	}

	mappings := args.Mappings
	if len(mappings) == 0 {
		for _, field := range args.Rows.Fields() {
			mappings = append(mappings, Mapping{Source: field, Destination: field})
		}
	}

	if len(mappings) == 0 {
		return request{}, newConfigurationError(req.table, "no columns are mapped")
	}

	destinations := make(map[string]bool)
	for _, mapping := range mappings {
		if mapping.Source == "" || mapping.Destination == "" {
			return request{}, newConfigurationError(req.table, "mapping is missing a source or destination: %+v", mapping)
		}

		index, ok := fieldIndexes[strings.ToLower(mapping.Source)]
		if !ok {
			return request{}, newConfigurationError(req.table, "mapped source field %q does not exist", mapping.Source)
		}

		key := strings.ToLower(mapping.Destination)
		if destinations[key] {
			return request{}, newConfigurationError(req.table, "destination column %q is mapped more than once", mapping.Destination)
		}
		destinations[key] = true

		req.mappings = append(req.mappings, mapping)
		req.sourceIndexes = append(req.sourceIndexes, index)
	}

	seen := make(map[string]bool)
	for _, qualifier := range args.Qualifiers {
		key := strings.ToLower(qualifier)
		if seen[key] {
			return request{}, newConfigurationError(req.table, "qualifier %q is duplicated", qualifier)
		}
		seen[key] = true

		if !destinations[key] {
			return request{}, newConfigurationError(req.table, "qualifier %q is not a mapped column", qualifier)
		}
		req.qualifiers = append(req.qualifiers, qualifier)
	}

	return req, nil
}

type resolvedMapping struct {
	// columns are the staged destination columns in mapping order, [sourceIndexes] lines up with them.
	columns       []columns.Column
	sourceIndexes []int
	qualifiers    []columns.Column
	updateColumns []columns.Column
	insertColumns []columns.Column
}

// resolve matches the request against the destination's columns. Names are matched case-insensitively and take
// the destination's spelling.
func resolve(req request, destinationColumns []columns.Column, keepIdentity bool) (resolvedMapping, error) {
	var resolved resolvedMapping
	for i, mapping := range req.mappings {
		col, ok := columns.Find(destinationColumns, mapping.Destination)
		if !ok {
			return resolvedMapping{}, newConfigurationError(req.table, "column %q does not exist", mapping.Destination)
		}

		resolved.columns = append(resolved.columns, col)
		resolved.sourceIndexes = append(resolved.sourceIndexes, req.sourceIndexes[i])
	}

	if req.mode != constants.Insert {
		qualifiers, err := resolveQualifiers(req, destinationColumns, resolved.columns)
		if err != nil {
			return resolvedMapping{}, err
		}
		resolved.qualifiers = qualifiers
	}

	resolved.updateColumns = columns.WithoutIdentity(columns.Exclude(resolved.columns, columns.ColumnNames(resolved.qualifiers)))
	resolved.insertColumns = resolved.columns
	if !keepIdentity {
		resolved.insertColumns = columns.WithoutIdentity(resolved.columns)
	}

	switch req.mode {
	case constants.Update:
		if len(resolved.updateColumns) == 0 {
			return resolvedMapping{}, newConfigurationError(req.table, "there are no mapped columns to update besides the qualifiers and identity columns")
		}
	case constants.Merge, constants.Replace, constants.Insert:
		if len(resolved.insertColumns) == 0 {
			return resolvedMapping{}, newConfigurationError(req.table, "there are no mapped columns to insert")
		}
	}

	return resolved, nil
}

func resolveQualifiers(req request, destinationColumns, mapped []columns.Column) ([]columns.Column, error) {
	names := req.qualifiers
	if len(names) == 0 {
		defaults := columns.PrimaryKeys(destinationColumns)
		if len(defaults) == 0 {
			defaults = columns.IdentityColumns(destinationColumns)
		}

		if len(defaults) == 0 {
			return nil, newConfigurationError(req.table, "no qualifiers were supplied and the table has no primary key or identity column")
		}
		names = columns.ColumnNames(defaults)
	}

	qualifiers := make([]columns.Column, len(names))
	for i, name := range names {
		col, ok := columns.Find(mapped, name)
		if !ok {
			return nil, newConfigurationError(req.table, "qualifier %q is not a mapped column", name)
		}
		qualifiers[i] = col
	}

	return qualifiers, nil
}
