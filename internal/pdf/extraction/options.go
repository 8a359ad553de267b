package extraction

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// decodeOptions renders a choice field's /Opt array. Plain string entries
// are kept as-is. Two-element [export, display] pairs keep the display
// value, falling back to the export value and then to a placeholder
// naming both. Name entries keep their text. Anything else is skipped.
// Order is preserved and duplicates are kept.
func decodeOptions(ctx *model.Context, fieldDict types.Dict) []string {
	obj, found := fieldDict.Find("Opt")
	if !found {
		return nil
	}
	arr, err := ctx.DereferenceArray(obj)
	if err != nil {
		return nil
	}

	var options []string
	for _, item := range arr {
		if s, err := ctx.DereferenceStringOrHexLiteral(item, model.V10, nil); err == nil {
			options = append(options, s)
			continue
		}
		if pair, err := ctx.DereferenceArray(item); err == nil {
			if len(pair) == 2 {
				options = append(options, pairOption(ctx, pair[0], pair[1]))
			}
			continue
		}
		if name, err := ctx.DereferenceName(item, model.V10, nil); err == nil {
			options = append(options, string(name))
		}
	}
	return options
}

// pairOption picks the display half of an [export, display] pair.
func pairOption(ctx *model.Context, export, display types.Object) string {
	if s, err := ctx.DereferenceStringOrHexLiteral(display, model.V10, nil); err == nil {
		return s
	}
	if s, err := ctx.DereferenceStringOrHexLiteral(export, model.V10, nil); err == nil {
		return s
	}
	return fmt.Sprintf("[Non-string option: %v, %v]", export, display)
}
