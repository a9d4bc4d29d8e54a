// Package sqlutil provides SQL identifier quoting helpers for PgArchive.
package sqlutil

import (
	"regexp"

	"github.com/jackc/pgx/v5"
)

// QuoteIdentifier quotes a single Postgres identifier (table, column, or
// schema name), doubling any embedded double quotes.
// Example: "my_table" -> `"my_table"`
func QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// QuoteQualified quotes a schema-qualified identifier, e.g. schema.table.
func QuoteQualified(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

// validIdentifierRegex matches valid unquoted Postgres identifier characters.
// Only IsValidIdentifier and QuoteIdentifierSafe use it; table names from
// CLI flags and archive suffixes are quoted with QuoteIdentifier and
// QuoteQualified without passing through this check.
var validIdentifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// IsValidIdentifier reports whether name is safe to treat as a bare
// Postgres identifier.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// QuoteIdentifierSafe validates name before quoting it, returning an error
// for anything that isn't a plain identifier.
func QuoteIdentifierSafe(name string) (string, error) {
	if !IsValidIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return QuoteIdentifier(name), nil
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must start with a letter or underscore and contain only alphanumerics and underscores)"
}
