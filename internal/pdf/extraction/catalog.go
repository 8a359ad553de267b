// Package extraction reads AcroForm field catalogs. Documents are opened
// with relaxed validation so the many slightly malformed forms in the
// wild still yield their fields; individual attributes that cannot be
// decoded degrade to zero values instead of failing the document.
package extraction

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Field flag bits from the field dictionary's /Ff entry.
const (
	flagReadOnly   = 1
	flagRequired   = 1 << 1
	flagRadio      = 1 << 15
	flagPushbutton = 1 << 16
)

// maxInheritDepth caps /Parent chains when resolving inherited field
// attributes.
const maxInheritDepth = 32

// Extractor reads form field catalogs out of PDF files.
type Extractor struct{}

// NewExtractor creates a form field extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ReadContext opens a PDF with relaxed validation and a verified page
// count. Shared by extraction and filling so both see the same documents.
func ReadContext(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF structure: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to determine page count: %w", err)
	}
	return ctx, nil
}

// ExtractFormFields returns every field in the document's AcroForm
// catalog, in catalog order. A document without an AcroForm or without
// fields yields an empty slice and no error; only an unreadable document
// is an error.
func (e *Extractor) ExtractFormFields(path string) ([]FormField, error) {
	ctx, err := ReadContext(path)
	if err != nil {
		return nil, err
	}
	return extractFromContext(ctx)
}

func extractFromContext(ctx *model.Context) ([]FormField, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to access PDF catalog: %w", err)
	}

	acroObj, found := rootDict.Find("AcroForm")
	if !found {
		return []FormField{}, nil
	}
	acroDict, err := ctx.DereferenceDict(acroObj)
	if err != nil || acroDict == nil {
		return []FormField{}, nil
	}

	fieldsObj, found := acroDict.Find("Fields")
	if !found {
		return []FormField{}, nil
	}
	fieldsArr, err := ctx.DereferenceArray(fieldsObj)
	if err != nil || len(fieldsArr) == 0 {
		return []FormField{}, nil
	}

	pages := buildPageLookup(ctx, rootDict)

	fields := make([]FormField, 0, len(fieldsArr))
	for _, ref := range fieldsArr {
		fieldDict, err := ctx.DereferenceDict(ref)
		if err != nil || fieldDict == nil {
			continue
		}
		fields = append(fields, processField(ctx, pages, fieldDict, ref))
	}
	return fields, nil
}

func processField(ctx *model.Context, pages *pageLookup, fieldDict types.Dict, fieldObj types.Object) FormField {
	flags := fieldFlags(ctx, fieldDict)
	rect, w := fieldRect(ctx, fieldDict)

	return FormField{
		Name:     FieldName(ctx, fieldDict),
		Type:     fieldType(ctx, fieldDict, flags),
		Rect:     rect,
		Page:     pages.resolve(ctx, fieldDict, w, fieldObj),
		Options:  decodeOptions(ctx, fieldDict),
		Value:    fieldValue(ctx, fieldDict),
		ReadOnly: flags&flagReadOnly > 0,
		Required: flags&flagRequired > 0,
	}
}

// FieldName returns the field's partial name (/T), empty when absent or
// undecodable.
func FieldName(ctx *model.Context, dict types.Dict) string {
	obj, found := dict.Find("T")
	if !found {
		return ""
	}
	name, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil)
	if err != nil {
		return ""
	}
	return name
}

// RawFieldType returns the field's /FT name ("Tx", "Btn", "Ch" or "Sig"),
// consulting ancestors when the terminal field inherits it. Empty when no
// /FT can be found.
func RawFieldType(ctx *model.Context, dict types.Dict) string {
	return rawFieldType(ctx, dict, 0)
}

func rawFieldType(ctx *model.Context, dict types.Dict, depth int) string {
	if depth >= maxInheritDepth {
		return ""
	}
	if obj, found := dict.Find("FT"); found {
		if name, err := ctx.DereferenceName(obj, model.V10, nil); err == nil {
			return string(name)
		}
	}
	if parentObj, found := dict.Find("Parent"); found {
		if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
			return rawFieldType(ctx, parentDict, depth+1)
		}
	}
	return ""
}

// fieldType maps the raw /FT name to a FieldType, splitting button fields
// by their flag bits.
func fieldType(ctx *model.Context, dict types.Dict, flags int) FieldType {
	switch RawFieldType(ctx, dict) {
	case "Tx":
		return FieldTypeText
	case "Ch":
		return FieldTypeSelect
	case "Sig":
		return FieldTypeSignature
	case "Btn":
		switch {
		case flags&flagPushbutton > 0:
			return FieldTypePushbutton
		case flags&flagRadio > 0:
			return FieldTypeRadio
		default:
			return FieldTypeCheckbox
		}
	default:
		return FieldTypeUnknown
	}
}

func fieldFlags(ctx *model.Context, dict types.Dict) int {
	obj, found := dict.Find("Ff")
	if !found {
		return 0
	}
	flags, err := ctx.DereferenceInteger(obj)
	if err != nil || flags == nil {
		return 0
	}
	flagValue := *flags
	return int(flagValue)
}

// fieldValue renders the current /V for display: string values as-is,
// name values (checkbox and radio states) as their text.
func fieldValue(ctx *model.Context, dict types.Dict) string {
	obj, found := dict.Find("V")
	if !found {
		return ""
	}
	if s, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
		return s
	}
	if n, err := ctx.DereferenceName(obj, model.V10, nil); err == nil {
		return string(n)
	}
	return ""
}

// widget is a field's first /Kids entry. objNr is the kid's object
// number, -1 when the entry is not an indirect reference.
type widget struct {
	dict  types.Dict
	objNr int
}

func firstWidget(ctx *model.Context, fieldDict types.Dict) *widget {
	kidsObj, found := fieldDict.Find("Kids")
	if !found {
		return nil
	}
	kids, err := ctx.DereferenceArray(kidsObj)
	if err != nil || len(kids) == 0 {
		return nil
	}

	w := widget{objNr: -1}
	if ref, ok := kids[0].(types.IndirectRef); ok {
		w.objNr = ref.ObjectNumber.Value()
	}
	if dict, err := ctx.DereferenceDict(kids[0]); err == nil {
		w.dict = dict
	}
	if w.dict == nil && w.objNr < 0 {
		return nil
	}
	return &w
}

// fieldRect returns the field's rectangle, falling back to the first
// widget when the field dict has none. The widget is returned either way
// for page resolution.
func fieldRect(ctx *model.Context, fieldDict types.Dict) ([]float64, *widget) {
	w := firstWidget(ctx, fieldDict)
	if rect := rectFloats(ctx, fieldDict); len(rect) == 4 {
		return rect, w
	}
	if w != nil && w.dict != nil {
		if rect := rectFloats(ctx, w.dict); len(rect) == 4 {
			return rect, w
		}
	}
	return []float64{}, w
}

// rectFloats decodes a 4-number /Rect. One undecodable coordinate drops
// the whole rectangle.
func rectFloats(ctx *model.Context, dict types.Dict) []float64 {
	obj, found := dict.Find("Rect")
	if !found {
		return nil
	}
	arr, err := ctx.DereferenceArray(obj)
	if err != nil || len(arr) != 4 {
		return nil
	}

	rect := make([]float64, 0, 4)
	for _, coord := range arr {
		num, err := ctx.DereferenceNumber(coord)
		if err != nil {
			return nil
		}
		rect = append(rect, num)
	}
	return rect
}
