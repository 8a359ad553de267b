package pdf

import (
	"github.com/acrofill/acrofill/internal/pdf/extraction"
	"github.com/acrofill/acrofill/internal/pdf/proximity"
	"github.com/acrofill/acrofill/internal/pdf/words"
)

// pageWords caches the word index of a single page so fields sharing a page
// share one extraction pass.
type pageWords struct {
	words []words.Word
	info  words.PageInfo
	err   error
}

// AttachContext runs the proximity heuristics for every field and stores the
// resulting label text in ContextText. Fields with invalid coordinates or page
// indices receive the engine's diagnostic text instead. It returns the number
// of fields that got a real label and the document page count.
func AttachContext(ex *words.Extractor, engine *proximity.Engine, path string, fields []extraction.FormField) (int, int) {
	pageCount, err := ex.PageCount(path)
	if err != nil {
		for i := range fields {
			fields[i].ContextText = proximity.Failed(fields[i].Page, err.Error()).Text()
		}
		return 0, 0
	}

	labeled := 0
	pages := make(map[int]*pageWords)
	for i := range fields {
		field := &fields[i]
		req := proximity.Request{
			PageIndex: field.Page,
			PageCount: pageCount,
			Rect:      field.Rect,
		}
		if field.Page >= 0 && field.Page < pageCount && len(field.Rect) == 4 {
			pw, ok := pages[field.Page]
			if !ok {
				pw = &pageWords{}
				pw.words, pw.info, pw.err = ex.PageWords(path, field.Page+1)
				pages[field.Page] = pw
			}
			if pw.err != nil {
				field.ContextText = proximity.Failed(field.Page, pw.err.Error()).Text()
				continue
			}
			req.PageHeight = pw.info.Height
			req.Words = pw.words
		}
		res := engine.ComputeContext(req)
		field.ContextText = res.Text()
		if res.Found() {
			labeled++
		}
	}
	return labeled, pageCount
}
