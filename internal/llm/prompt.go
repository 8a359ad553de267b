package llm

import (
	"fmt"
	"strings"

	"github.com/acrofill/acrofill/internal/pdf/extraction"
	"github.com/acrofill/acrofill/internal/pdf/proximity"
)

// buildMappingPrompt assembles the value-extraction prompt. Only named
// fields participate; the returned names preserve catalog order and are
// the keys the model is told to answer with.
func buildMappingPrompt(basePrompt, textContent string, fields []extraction.FormField) (string, []string) {
	var details []string
	var names []string
	for _, f := range fields {
		if f.Name == "" {
			continue
		}
		names = append(names, f.Name)
		details = append(details, fieldDetailLine(f))
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\nTEXT CONTENT TO EXTRACT FROM:\n")
	b.WriteString(textContent)
	b.WriteString("\n\nFORM FIELDS TO FILL:\n")
	b.WriteString(strings.Join(details, "\n"))
	b.WriteString("\n\nPlease provide a JSON object where:\n")
	b.WriteString("- Keys are the exact field names: ")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString("\n- Values are the appropriate information extracted from the text content\n")
	b.WriteString("- If no information is found for a field, use an empty string \"\"\n\n")
	b.WriteString("Example format:\n{\n\"field_name_1\": \"extracted_value_1\",\n\"field_name_2\": \"extracted_value_2\"\n}")
	return b.String(), names
}

// fieldDetailLine renders one field for the mapping prompt. The
// no-context placeholder carries no signal and is left out.
func fieldDetailLine(f extraction.FormField) string {
	fieldType := string(f.Type)
	if fieldType == "" {
		fieldType = "Unknown"
	}
	line := fmt.Sprintf("- %s (Type: %s)", f.Name, fieldType)
	if f.ContextText != "" && f.ContextText != proximity.NoContextFound {
		line += fmt.Sprintf(" - Context: %s", f.ContextText)
	}
	if len(f.Options) > 0 {
		line += fmt.Sprintf(" - Options: %s", strings.Join(f.Options, ", "))
	}
	return line
}
