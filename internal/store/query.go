package store

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Filter is an equality filter over index record fields.
// Every entry must match every field exactly; a filter on a field that is
// structurally absent from an index record never matches that record. This
// is what makes tombstoning work: a delete's index omits isCurrent, so an
// isCurrent = "true" filter can never surface it.
type Filter map[string]string

// fieldNamePattern restricts filterable field names. Field names are
// interpolated into the json_extract path, so they must stay inert; values
// are always parameterized.
var fieldNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Query returns every message whose index record matches the filter,
// scoped to the tenant. Deterministic ordering as in QueryRecord.
func (s *Store) Query(ctx context.Context, tenant string, filter Filter) ([]Entry, error) {
	where, params, err := compileFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	sqlText := `
		SELECT ` + entryColumns + `
		FROM messages
		WHERE tenant = ?` + where + `
		ORDER BY message_timestamp ASC, cid COLLATE BINARY ASC`
	args := append([]any{tenant}, params...)

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query: iterate: %w", err)
	}
	return entries, nil
}

// compileFilter converts a Filter into a parameterized WHERE fragment over
// json_extract(idx, ...). Keys are sorted so the compiled SQL is
// deterministic for the same filter.
func compileFilter(filter Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	fields := make([]string, 0, len(filter))
	for f := range filter {
		if !fieldNamePattern.MatchString(f) {
			return "", nil, fmt.Errorf("invalid filter field %q", f)
		}
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	params := make([]any, 0, len(fields))
	for _, f := range fields {
		fmt.Fprintf(&b, " AND json_extract(idx, '$.%s') = ?", f)
		params = append(params, filter[f])
	}
	return b.String(), params, nil
}
