package extraction

// FieldType classifies an AcroForm field by how it is filled.
type FieldType string

const (
	FieldTypeText       FieldType = "text"
	FieldTypeCheckbox   FieldType = "checkbox"
	FieldTypeRadio      FieldType = "radio"
	FieldTypePushbutton FieldType = "pushbutton"
	FieldTypeSelect     FieldType = "select"
	FieldTypeSignature  FieldType = "signature"
	FieldTypeUnknown    FieldType = "unknown"
)

// FormField describes one field from a PDF's AcroForm catalog.
//
// Rect is the widget rectangle [x0 y0 x1 y1] in bottom-origin page
// coordinates; it is empty when neither the field nor its first widget
// carries one. Page is the zero-based page index, 0 when the page cannot
// be determined. ContextText and Understanding start empty and are filled
// by the labeling and description stages.
type FormField struct {
	Name          string    `json:"name"`
	Type          FieldType `json:"type"`
	Rect          []float64 `json:"rect"`
	Page          int       `json:"page"`
	Options       []string  `json:"options,omitempty"`
	Value         string    `json:"value,omitempty"`
	ContextText   string    `json:"context_text,omitempty"`
	Understanding string    `json:"understanding,omitempty"`
	ReadOnly      bool      `json:"read_only,omitempty"`
	Required      bool      `json:"required,omitempty"`
}
