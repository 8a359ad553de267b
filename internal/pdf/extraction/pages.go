package extraction

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// maxTreeDepth caps the page-tree walk.
const maxTreeDepth = 64

// pageLookup maps object numbers to zero-based page indexes: pageByObj
// for the page dicts themselves, annotByObj for every annotation listed
// in a page's /Annots array. Built once per document.
type pageLookup struct {
	pageByObj  map[int]int
	annotByObj map[int]int
}

func buildPageLookup(ctx *model.Context, rootDict types.Dict) *pageLookup {
	lookup := &pageLookup{
		pageByObj:  make(map[int]int),
		annotByObj: make(map[int]int),
	}
	pagesObj, found := rootDict.Find("Pages")
	if !found {
		return lookup
	}
	next := 0
	lookup.walk(ctx, pagesObj, 0, &next)
	return lookup
}

func (l *pageLookup) walk(ctx *model.Context, node types.Object, depth int, next *int) {
	if depth >= maxTreeDepth {
		return
	}
	dict, err := ctx.DereferenceDict(node)
	if err != nil || dict == nil {
		return
	}

	if typeObj, found := dict.Find("Type"); found {
		if name, err := ctx.DereferenceName(typeObj, model.V10, nil); err == nil && string(name) == "Page" {
			l.recordPage(ctx, node, dict, *next)
			*next++
			return
		}
	}

	kidsObj, found := dict.Find("Kids")
	if !found {
		return
	}
	kids, err := ctx.DereferenceArray(kidsObj)
	if err != nil {
		return
	}
	for _, kid := range kids {
		l.walk(ctx, kid, depth+1, next)
	}
}

func (l *pageLookup) recordPage(ctx *model.Context, node types.Object, dict types.Dict, index int) {
	if ref, ok := node.(types.IndirectRef); ok {
		l.pageByObj[ref.ObjectNumber.Value()] = index
	}

	annotsObj, found := dict.Find("Annots")
	if !found {
		return
	}
	annots, err := ctx.DereferenceArray(annotsObj)
	if err != nil {
		return
	}
	for _, annot := range annots {
		if ref, ok := annot.(types.IndirectRef); ok {
			l.annotByObj[ref.ObjectNumber.Value()] = index
		}
	}
}

// resolve determines a field's zero-based page, trying in order: an
// explicit nonnegative /Page integer on the field, the /P reference of
// the field or its first widget, then membership of either in a page's
// /Annots array. Fields that defeat every route land on page 0.
func (l *pageLookup) resolve(ctx *model.Context, fieldDict types.Dict, w *widget, fieldObj types.Object) int {
	if obj, found := fieldDict.Find("Page"); found {
		if page, err := ctx.DereferenceInteger(obj); err == nil && page != nil && *page >= 0 {
			return int(*page)
		}
	}
	if idx, ok := l.pageForRef(fieldDict); ok {
		return idx
	}
	if w != nil && w.dict != nil {
		if idx, ok := l.pageForRef(w.dict); ok {
			return idx
		}
	}
	if ref, ok := fieldObj.(types.IndirectRef); ok {
		if idx, ok := l.annotByObj[ref.ObjectNumber.Value()]; ok {
			return idx
		}
	}
	if w != nil && w.objNr >= 0 {
		if idx, ok := l.annotByObj[w.objNr]; ok {
			return idx
		}
	}
	return 0
}

func (l *pageLookup) pageForRef(dict types.Dict) (int, bool) {
	obj, found := dict.Find("P")
	if !found {
		return 0, false
	}
	ref, ok := obj.(types.IndirectRef)
	if !ok {
		return 0, false
	}
	idx, ok := l.pageByObj[ref.ObjectNumber.Value()]
	return idx, ok
}
