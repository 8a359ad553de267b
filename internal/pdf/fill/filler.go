// Package fill writes values into AcroForm fields and saves the result as
// a new document. The source file is never modified.
package fill

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/acrofill/acrofill/internal/pdf/extraction"
)

const (
	offState        = "Off"
	fallbackOnState = "Yes"
)

// Result reports what a fill pass did. UnmatchedKeys are mapping keys
// that matched no field name, sorted.
type Result struct {
	FilledCount   int      `json:"filled_count"`
	TotalFields   int      `json:"total_fields"`
	OutputPath    string   `json:"output_path"`
	UnmatchedKeys []string `json:"unmatched_keys,omitempty"`
}

// Filler applies field mappings to PDF forms.
type Filler struct{}

// NewFiller creates a form filler.
func NewFiller() *Filler {
	return &Filler{}
}

// Fill writes the mapped values into the form fields of the PDF at path
// and saves the document to outputPath, creating the output directory
// when needed. Text and choice fields receive string values; button
// fields receive boolean values translated to their appearance states.
// A field that cannot be filled is logged and skipped, never fatal.
func (f *Filler) Fill(path string, mapping map[string]any, outputPath string) (*Result, error) {
	if len(mapping) == 0 {
		return nil, fmt.Errorf("mapping contains no values")
	}

	ctx, err := extraction.ReadContext(path)
	if err != nil {
		return nil, err
	}

	fieldsArr, err := formFields(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{OutputPath: outputPath}
	matched := make(map[string]struct{}, len(mapping))

	for _, ref := range fieldsArr {
		fieldDict, err := ctx.DereferenceDict(ref)
		if err != nil || fieldDict == nil {
			continue
		}
		result.TotalFields++

		name := extraction.FieldName(ctx, fieldDict)
		if name == "" {
			continue
		}
		value, ok := mapping[name]
		if !ok {
			log.Printf("No mapping value for field %q, leaving it unchanged", name)
			continue
		}
		matched[name] = struct{}{}

		if err := applyValue(ctx, fieldDict, value); err != nil {
			log.Printf("Failed to fill field %q: %v", name, err)
			continue
		}
		result.FilledCount++
	}

	for key := range mapping {
		if _, ok := matched[key]; !ok {
			result.UnmatchedKeys = append(result.UnmatchedKeys, key)
		}
	}
	sort.Strings(result.UnmatchedKeys)
	if len(result.UnmatchedKeys) > 0 {
		log.Printf("Mapping keys with no matching form field: %s", strings.Join(result.UnmatchedKeys, ", "))
	}

	if err := writeContext(ctx, outputPath); err != nil {
		return nil, err
	}
	return result, nil
}

// formFields returns the document's /Fields array or an error when the
// document carries no fillable form.
func formFields(ctx *model.Context) (types.Array, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to access PDF catalog: %w", err)
	}
	acroObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, fmt.Errorf("PDF does not contain form fields")
	}
	acroDict, err := ctx.DereferenceDict(acroObj)
	if err != nil || acroDict == nil {
		return nil, fmt.Errorf("PDF does not contain form fields")
	}
	fieldsObj, found := acroDict.Find("Fields")
	if !found {
		return nil, fmt.Errorf("PDF does not contain form fields")
	}
	fieldsArr, err := ctx.DereferenceArray(fieldsObj)
	if err != nil || len(fieldsArr) == 0 {
		return nil, fmt.Errorf("PDF does not contain form fields")
	}
	return fieldsArr, nil
}

// applyValue writes one mapping value into a field dict. Object surgery
// on arbitrary documents can break; failures surface as errors.
func applyValue(ctx *model.Context, fieldDict types.Dict, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("value application failure: %v", r)
		}
	}()

	switch extraction.RawFieldType(ctx, fieldDict) {
	case "Tx", "Ch":
		setStringValue(fieldDict, valueString(value))
	case "Btn":
		if b, ok := value.(bool); ok {
			state := offState
			if b {
				state = onState(ctx, fieldDict)
			}
			setButtonState(ctx, fieldDict, state)
		} else {
			setStringValue(fieldDict, valueString(value))
		}
	default:
		setStringValue(fieldDict, valueString(value))
	}
	return nil
}

// literalEscaper escapes the characters with syntactic meaning inside a
// PDF literal string.
var literalEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

func setStringValue(fieldDict types.Dict, value string) {
	fieldDict["V"] = types.StringLiteral(literalEscaper.Replace(value))
}

// valueString renders a mapping value for a string-valued field. JSON
// decoding yields strings, bools, float64s and nulls; anything else is
// formatted with %v.
func valueString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// onState finds a button field's "on" appearance state: the first non-Off
// key of an /AP /N dictionary on the field or one of its kids, in sorted
// key order so repeated runs pick the same state. Falls back to "Yes"
// when no appearance stream names one.
func onState(ctx *model.Context, fieldDict types.Dict) string {
	if state, ok := onStateFromAppearance(ctx, fieldDict); ok {
		return state
	}
	for _, kid := range fieldKids(ctx, fieldDict) {
		if state, ok := onStateFromAppearance(ctx, kid); ok {
			return state
		}
	}
	return fallbackOnState
}

func onStateFromAppearance(ctx *model.Context, dict types.Dict) (string, bool) {
	nDict, ok := normalAppearance(ctx, dict)
	if !ok {
		return "", false
	}

	states := make([]string, 0, len(nDict))
	for state := range nDict {
		if state != offState {
			states = append(states, state)
		}
	}
	if len(states) == 0 {
		return "", false
	}
	sort.Strings(states)
	return states[0], true
}

// setButtonState writes the state into the field's /V and /AS and updates
// each kid's /AS. A kid may only show a state its own appearance streams
// define; otherwise it shows Off.
func setButtonState(ctx *model.Context, fieldDict types.Dict, state string) {
	fieldDict["V"] = types.Name(state)
	fieldDict["AS"] = types.Name(state)

	for _, kid := range fieldKids(ctx, fieldDict) {
		kidState := offState
		if hasAppearanceState(ctx, kid, state) {
			kidState = state
		}
		kid["AS"] = types.Name(kidState)
	}
}

func hasAppearanceState(ctx *model.Context, dict types.Dict, state string) bool {
	nDict, ok := normalAppearance(ctx, dict)
	if !ok {
		return false
	}
	_, found := nDict.Find(state)
	return found
}

// normalAppearance returns the /AP /N dictionary of an annotation.
func normalAppearance(ctx *model.Context, dict types.Dict) (types.Dict, bool) {
	apObj, found := dict.Find("AP")
	if !found {
		return nil, false
	}
	apDict, err := ctx.DereferenceDict(apObj)
	if err != nil || apDict == nil {
		return nil, false
	}
	nObj, found := apDict.Find("N")
	if !found {
		return nil, false
	}
	nDict, err := ctx.DereferenceDict(nObj)
	if err != nil || nDict == nil {
		return nil, false
	}
	return nDict, true
}

func fieldKids(ctx *model.Context, fieldDict types.Dict) []types.Dict {
	kidsObj, found := fieldDict.Find("Kids")
	if !found {
		return nil
	}
	kids, err := ctx.DereferenceArray(kidsObj)
	if err != nil {
		return nil
	}

	out := make([]types.Dict, 0, len(kids))
	for _, kid := range kids {
		if dict, err := ctx.DereferenceDict(kid); err == nil && dict != nil {
			out = append(out, dict)
		}
	}
	return out
}

// LoadMapping reads a JSON object of field name to value from path.
func LoadMapping(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	var mapping map[string]any
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %w", path, err)
	}
	if mapping == nil {
		return nil, fmt.Errorf("mapping file %s does not contain a JSON object", path)
	}
	return mapping, nil
}

// DefaultOutputName derives the filename for a filled copy of inputPath:
// the input stem with a "_filled" suffix.
func DefaultOutputName(inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "_filled.pdf"
}

// writeContext saves the modified document, creating the output directory
// when needed.
func writeContext(ctx *model.Context, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := api.WriteContext(ctx, f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write filled PDF: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to finalize output file: %w", err)
	}
	return nil
}
