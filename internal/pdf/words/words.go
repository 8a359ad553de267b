// Package words extracts positioned word tokens from PDF pages. The
// underlying library reports individual glyph runs with baseline
// coordinates in bottom-origin page space; this package groups the runs
// into rows, merges them into words, and converts the boxes to top-origin
// coordinates, the orientation the proximity heuristics reason in.
package words

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Grouping tunables. Runs whose baselines differ by less than rowTolerance
// share a row; runs on a row merge into one word while the horizontal gap
// between them stays under gapFactor of the font size.
const (
	rowTolerance      = 3.0
	gapFactor         = 0.3
	fallbackGap       = 3.0
	defaultWordHeight = 12.0
)

// WordID identifies a word within a page. Block is always 0 (single text
// column assumption), Line is the row index counted from the top of the
// page, Word is the position within the row.
type WordID struct {
	Block int `json:"block"`
	Line  int `json:"line"`
	Word  int `json:"word"`
}

// Word is one whitespace-delimited token with its bounding box in
// top-origin coordinates: YTop < YBottom, both measured down from the top
// edge of the page.
type Word struct {
	Text    string  `json:"text"`
	X0      float64 `json:"x0"`
	YTop    float64 `json:"y_top"`
	X1      float64 `json:"x1"`
	YBottom float64 `json:"y_bottom"`
	ID      WordID  `json:"id"`
}

// PageInfo carries the page dimensions the words were measured against.
type PageInfo struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Group converts raw glyph runs into words with stable per-page IDs.
// pageHeight is needed to flip baselines into top-origin boxes.
func Group(texts []pdf.Text, pageHeight float64) []Word {
	var out []Word
	for line, row := range groupRows(texts) {
		ws := mergeRow(row, pageHeight)
		for i := range ws {
			ws[i].ID = WordID{Block: 0, Line: line, Word: i}
		}
		out = append(out, ws...)
	}
	return out
}

// groupRows buckets runs into baseline rows ordered top to bottom and
// sorts each row left to right. The bucket anchor is the first run seen
// for the row, so slowly drifting baselines stay together.
func groupRows(texts []pdf.Text) [][]pdf.Text {
	if len(texts) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		// Bottom-origin baselines: larger Y sits higher on the page.
		return sorted[i].Y > sorted[j].Y
	})

	var rows [][]pdf.Text
	rowY := 0.0
	for _, t := range sorted {
		if len(rows) == 0 || rowY-t.Y > rowTolerance {
			rows = append(rows, []pdf.Text{t})
			rowY = t.Y
			continue
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], t)
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

// mergeRow concatenates adjacent runs into words. A whitespace-only run or
// a horizontal gap wider than the font-size fraction ends the current word.
func mergeRow(row []pdf.Text, pageHeight float64) []Word {
	var out []Word
	var cur *wordBuilder

	flush := func() {
		if cur == nil {
			return
		}
		if w, ok := cur.build(pageHeight); ok {
			out = append(out, w)
		}
		cur = nil
	}

	for _, t := range row {
		if strings.TrimSpace(t.S) == "" {
			flush()
			continue
		}
		if cur != nil && t.X-cur.endX > cur.maxGap() {
			flush()
		}
		if cur == nil {
			cur = &wordBuilder{x0: t.X, endX: t.X, baseline: t.Y}
		}
		cur.add(t)
	}
	flush()
	return out
}

type wordBuilder struct {
	text     strings.Builder
	x0       float64
	endX     float64
	baseline float64
	fontSize float64
}

func (b *wordBuilder) add(t pdf.Text) {
	b.text.WriteString(t.S)
	if end := t.X + t.W; end > b.endX {
		b.endX = end
	}
	if t.FontSize > b.fontSize {
		b.fontSize = t.FontSize
	}
}

func (b *wordBuilder) maxGap() float64 {
	if b.fontSize > 0 {
		return gapFactor * b.fontSize
	}
	return fallbackGap
}

func (b *wordBuilder) build(pageHeight float64) (Word, bool) {
	text := strings.TrimSpace(b.text.String())
	if text == "" {
		return Word{}, false
	}
	height := b.fontSize
	if height <= 0 {
		height = defaultWordHeight
	}
	return Word{
		Text:    text,
		X0:      b.x0,
		X1:      b.endX,
		YTop:    pageHeight - (b.baseline + height),
		YBottom: pageHeight - b.baseline,
	}, true
}
