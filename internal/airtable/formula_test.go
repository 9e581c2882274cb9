package airtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualsField(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		expected string
	}{
		{
			name:     "plain value",
			field:    "name",
			value:    "Brésil",
			expected: `{name}="Brésil"`,
		},
		{
			name:     "value with quotes is escaped",
			field:    "deviceId",
			value:    `abc"def`,
			expected: `{deviceId}="abc\"def"`,
		},
		{
			name:     "empty value",
			field:    "name",
			value:    "",
			expected: `{name}=""`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EqualsField(tt.field, tt.value))
		})
	}
}

func TestAnd(t *testing.T) {
	formula := And(
		EqualsField("category", "destination"),
		EqualsField("deviceId", "device-1"),
	)
	assert.Equal(t, `AND({category}="destination",{deviceId}="device-1")`, formula)
}
