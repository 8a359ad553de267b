package words

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageBreak separates pages in DocumentText output.
const PageBreak = "\n---- Page Break ----\n"

// US Letter, the fallback when a page carries no usable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// maxParentDepth caps the page-tree walk when resolving an inherited
// MediaBox.
const maxParentDepth = 32

// Extractor reads positioned words and plain text out of PDF files. Each
// call opens and closes the file; no state is kept between calls.
type Extractor struct{}

// NewExtractor creates a word extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// PageCount returns the number of pages in the document.
func (e *Extractor) PageCount(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	return r.NumPage(), nil
}

// PageWords returns the words on the given 1-based page together with the
// dimensions of that page.
func (e *Extractor) PageWords(path string, pageNumber int) ([]Word, PageInfo, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	if pageNumber < 1 || pageNumber > r.NumPage() {
		return nil, PageInfo{}, fmt.Errorf("page %d out of range: document has %d page(s)", pageNumber, r.NumPage())
	}

	page := r.Page(pageNumber)
	if page.V.IsNull() {
		return nil, PageInfo{}, fmt.Errorf("page %d is not available", pageNumber)
	}

	info := pageSize(page)
	ws, err := safePageWords(page, info.Height)
	if err != nil {
		return nil, info, fmt.Errorf("failed to read words from page %d: %w", pageNumber, err)
	}
	return ws, info, nil
}

// DocumentText returns the plain text of every page joined by PageBreak,
// the layout the LLM prompts expect. Pages that fail to decode contribute
// an empty segment so page positions stay aligned.
func (e *Extractor) DocumentText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	parts := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		parts = append(parts, pageText(r.Page(i)))
	}
	return strings.Join(parts, PageBreak), nil
}

// safePageWords isolates the content-stream walk, which can panic on
// malformed input.
func safePageWords(page pdf.Page, pageHeight float64) (ws []Word, err error) {
	defer func() {
		if r := recover(); r != nil {
			ws = nil
			err = fmt.Errorf("content parse failure: %v", r)
		}
	}()
	return Group(page.Content().Text, pageHeight), nil
}

// pageText extracts a single page's plain text, tolerating decode
// failures.
func pageText(page pdf.Page) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// pageSize resolves the page MediaBox, walking up the page tree for an
// inherited box and falling back to US Letter.
func pageSize(page pdf.Page) PageInfo {
	v := page.V
	for depth := 0; depth < maxParentDepth && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if !box.IsNull() && box.Len() == 4 {
			width := box.Index(2).Float64() - box.Index(0).Float64()
			height := box.Index(3).Float64() - box.Index(1).Float64()
			if width > 0 && height > 0 {
				return PageInfo{Width: width, Height: height}
			}
		}
		v = v.Key("Parent")
	}
	return PageInfo{Width: defaultPageWidth, Height: defaultPageHeight}
}
