package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acrofill/acrofill/internal/pdf/extraction"
	"github.com/acrofill/acrofill/internal/pdf/proximity"
)

func TestBuildMappingPrompt(t *testing.T) {
	fields := []extraction.FormField{
		{Name: "name", Type: extraction.FieldTypeText, ContextText: "Left: Name:"},
		{Name: "color", Type: extraction.FieldTypeSelect, Options: []string{"Red", "Blue"}},
		{Name: "", Type: extraction.FieldTypeText},
	}

	prompt, names := buildMappingPrompt(defaultMappingPrompt, "Alice prefers blue.", fields)

	require.Equal(t, []string{"name", "color"}, names)
	assert.True(t, strings.HasPrefix(prompt, defaultMappingPrompt))
	assert.Contains(t, prompt, "TEXT CONTENT TO EXTRACT FROM:\nAlice prefers blue.")
	assert.Contains(t, prompt, "FORM FIELDS TO FILL:\n")
	assert.Contains(t, prompt, "- name (Type: text) - Context: Left: Name:")
	assert.Contains(t, prompt, "- color (Type: select) - Options: Red, Blue")
	assert.Contains(t, prompt, "- Keys are the exact field names: name, color")
	assert.Contains(t, prompt, "use an empty string \"\"")
	assert.True(t, strings.HasSuffix(prompt,
		"Example format:\n{\n\"field_name_1\": \"extracted_value_1\",\n\"field_name_2\": \"extracted_value_2\"\n}"))
}

func TestFieldDetailLine(t *testing.T) {
	line := fieldDetailLine(extraction.FormField{Name: "email", Type: extraction.FieldTypeText})
	assert.Equal(t, "- email (Type: text)", line)

	line = fieldDetailLine(extraction.FormField{Name: "email"})
	assert.Equal(t, "- email (Type: Unknown)", line)

	// The no-context placeholder is noise, not context.
	line = fieldDetailLine(extraction.FormField{
		Name: "email", Type: extraction.FieldTypeText, ContextText: proximity.NoContextFound,
	})
	assert.Equal(t, "- email (Type: text)", line)

	line = fieldDetailLine(extraction.FormField{
		Name: "plan", Type: extraction.FieldTypeSelect,
		ContextText: "Above: Plan", Options: []string{"Basic", "Pro"},
	})
	assert.Equal(t, "- plan (Type: select) - Context: Above: Plan - Options: Basic, Pro", line)
}
