package llm

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveMapping writes the mapping as indented JSON, the layout the fill
// operation reads back.
func SaveMapping(mapping FieldMapping, path string) error {
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode mapping: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping file: %w", err)
	}
	return nil
}
