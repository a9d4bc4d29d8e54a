package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdentifier_Valid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Simple table name", input: "users", expected: `"users"`},
		{name: "Table with underscore", input: "order_items", expected: `"order_items"`},
		{name: "Mixed case", input: "MyTable", expected: `"MyTable"`},
		{name: "Numeric characters", input: "table123", expected: `"table123"`},
		{name: "Empty string", input: "", expected: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := QuoteIdentifier(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestQuoteIdentifier_EscapeDoubleQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Embedded double quote", input: `my"table`, expected: `"my""table"`},
		{name: "Multiple double quotes", input: `ta"bl"e`, expected: `"ta""bl""e"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := QuoteIdentifier(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestQuoteQualified(t *testing.T) {
	assert.Equal(t, `"public"."orders"`, QuoteQualified("public", "orders"))
}

func TestIsValidIdentifier_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "Simple name", input: "users"},
		{name: "With underscore", input: "order_items"},
		{name: "Mixed case", input: "MyTable"},
		{name: "Numeric suffix", input: "table123"},
		{name: "Leading underscore", input: "_private"},
		{name: "Uppercase", input: "CUSTOMERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, IsValidIdentifier(tt.input))
		})
	}
}

func TestIsValidIdentifier_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "Empty string", input: ""},
		{name: "With space", input: "my table"},
		{name: "With hyphen", input: "my-table"},
		{name: "With dot", input: "db.table"},
		{name: "With double quote", input: `my"table`},
		{name: "With special chars", input: "table@123"},
		{name: "SQL injection attempt", input: "users; DROP TABLE users--"},
		{name: "Leading digit", input: "123table"},
		{name: "With parentheses", input: "table(1)"},
		{name: "With quotes", input: "table'name"},
		{name: "With asterisk", input: "table*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, IsValidIdentifier(tt.input))
		})
	}
}

func TestQuoteIdentifierSafe_Valid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Simple name", input: "users", expected: `"users"`},
		{name: "With underscore", input: "order_items", expected: `"order_items"`},
		{name: "Mixed case", input: "MyTable", expected: `"MyTable"`},
		{name: "Numeric suffix", input: "table123", expected: `"table123"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := QuoteIdentifierSafe(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestQuoteIdentifierSafe_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "Empty string", input: ""},
		{name: "With space", input: "my table"},
		{name: "With hyphen", input: "my-table"},
		{name: "With double quote", input: `my"table`},
		{name: "SQL injection", input: "users; DROP TABLE users--"},
		{name: "With special chars", input: "table@name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := QuoteIdentifierSafe(tt.input)
			assert.Error(t, err)
			assert.Empty(t, result)
			assert.IsType(t, &InvalidIdentifierError{}, err)
			assert.Contains(t, err.Error(), "invalid identifier")
			assert.Contains(t, err.Error(), tt.input)
		})
	}
}

func TestInvalidIdentifierError_Error(t *testing.T) {
	err := &InvalidIdentifierError{Name: "bad@table"}
	expected := "invalid identifier: bad@table (must start with a letter or underscore and contain only alphanumerics and underscores)"
	assert.Equal(t, expected, err.Error())
}
