package airtable

import (
	"fmt"
	"strings"
)

// EqualsField builds a filterByFormula clause matching a field exactly.
func EqualsField(field, value string) string {
	return fmt.Sprintf(`{%s}="%s"`, field, escapeValue(value))
}

// And combines formula clauses with AND().
func And(clauses ...string) string {
	return fmt.Sprintf("AND(%s)", strings.Join(clauses, ","))
}

// escapeValue escapes double quotes so user input cannot break out of
// the formula string literal.
func escapeValue(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
