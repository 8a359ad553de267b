// Package proximity locates the page text that labels a form field. Three
// passes inspect the words around the field rectangle: words directly to
// the left, words directly above, and words nearest the field center. Each
// pass keeps at most three words; words kept by an earlier pass are
// claimed and skipped by later ones so a label is reported once.
package proximity

import (
	"fmt"
	"math"
	"sort"

	"github.com/acrofill/acrofill/internal/pdf/geom"
	"github.com/acrofill/acrofill/internal/pdf/words"
)

// Default tuning, in points. A word qualifies for the left pass when its
// right edge sits within LeftMarginX of the field and its vertical extent
// lines up within VerticalTol; for the above pass when its bottom sits
// within AboveMarginY over the field and the horizontal extents come
// within HorizontalTol; and for the nearest pass when its center is
// strictly closer than MaxDistance to the field center.
const (
	DefaultLeftMarginX   = 70.0
	DefaultVerticalTol   = 10.0
	DefaultAboveMarginY  = 30.0
	DefaultHorizontalTol = 50.0
	DefaultMaxDistance   = 150.0
)

// keepPerPass caps how many words each pass contributes.
const keepPerPass = 3

// Engine runs the proximity passes. The zero value is unusable; construct
// with NewEngine and adjust the margins if a document family needs it.
type Engine struct {
	LeftMarginX   float64
	VerticalTol   float64
	AboveMarginY  float64
	HorizontalTol float64
	MaxDistance   float64
}

// NewEngine creates an engine with the default margins.
func NewEngine() *Engine {
	return &Engine{
		LeftMarginX:   DefaultLeftMarginX,
		VerticalTol:   DefaultVerticalTol,
		AboveMarginY:  DefaultAboveMarginY,
		HorizontalTol: DefaultHorizontalTol,
		MaxDistance:   DefaultMaxDistance,
	}
}

// Request describes one field to label. Rect is the raw widget rectangle
// in bottom-origin page coordinates; Words are the page's words in
// top-origin coordinates as produced by the words package.
type Request struct {
	PageIndex  int
	PageCount  int
	Rect       []float64
	PageHeight float64
	Words      []words.Word
}

// ComputeContext runs the passes for one field. It always returns a
// usable Result: bad input and internal failures come back as tagged
// outcomes, never as errors or panics.
func (e *Engine) ComputeContext(req Request) (res Result) {
	if req.PageIndex < 0 || len(req.Rect) != 4 {
		return Result{Outcome: OutcomeInvalidInput, PageIndex: req.PageIndex}
	}
	if req.PageIndex >= req.PageCount {
		return Result{Outcome: OutcomePageOutOfRange, PageIndex: req.PageIndex}
	}

	defer func() {
		if r := recover(); r != nil {
			res = Failed(req.PageIndex, fmt.Sprint(r))
		}
	}()

	field := geom.Rect{X0: req.Rect[0], Y0: req.Rect[1], X1: req.Rect[2], Y1: req.Rect[3]}
	// Rect Y grows upward; the words use top-origin boxes, so the field's
	// upper edge Y1 flips to its top coordinate.
	fieldTop := geom.FlipY(req.PageHeight, field.Y1)
	fieldBottom := geom.FlipY(req.PageHeight, field.Y0)

	claimed := make(map[words.WordID]struct{})
	res = Result{Outcome: OutcomeNoneFound, PageIndex: req.PageIndex}
	res.Left = e.leftPass(req.Words, field, fieldTop, fieldBottom, claimed)
	res.Above = e.abovePass(req.Words, field, fieldTop, claimed)
	res.Closest = e.nearestPass(req.Words, field, req.PageHeight, claimed)
	if len(res.Left)+len(res.Above)+len(res.Closest) > 0 {
		res.Outcome = OutcomeFound
	}
	return res
}

// leftPass collects words ending just left of the field whose vertical
// extent lines up with it, preferring the words closest to the field edge
// and, on ties, the ones higher on the page.
func (e *Engine) leftPass(ws []words.Word, field geom.Rect, fieldTop, fieldBottom float64, claimed map[words.WordID]struct{}) []string {
	var cands []words.Word
	for _, w := range ws {
		if w.X1 >= field.X0 || field.X0-w.X1 >= e.LeftMarginX {
			continue
		}
		aligned := math.Abs(w.YBottom-fieldTop) < e.VerticalTol ||
			math.Abs(w.YTop-fieldBottom) < e.VerticalTol ||
			(w.YTop < fieldBottom && w.YBottom > fieldTop)
		if aligned {
			cands = append(cands, w)
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].X1 != cands[j].X1 {
			return cands[i].X1 > cands[j].X1
		}
		return cands[i].YTop < cands[j].YTop
	})
	return claimTop(cands, claimed)
}

// abovePass collects unclaimed words just above the field whose horizontal
// extent comes near it, preferring the rows closest to the field and, on
// ties, left-to-right order.
func (e *Engine) abovePass(ws []words.Word, field geom.Rect, fieldTop float64, claimed map[words.WordID]struct{}) []string {
	var cands []words.Word
	for _, w := range ws {
		if _, ok := claimed[w.ID]; ok {
			continue
		}
		if w.YBottom >= fieldTop || fieldTop-w.YBottom >= e.AboveMarginY {
			continue
		}
		if math.Max(field.X0, w.X0) >= math.Min(field.X1, w.X1)+e.HorizontalTol {
			continue
		}
		cands = append(cands, w)
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].YBottom != cands[j].YBottom {
			return cands[i].YBottom > cands[j].YBottom
		}
		return cands[i].X0 < cands[j].X0
	})
	return claimTop(cands, claimed)
}

type scored struct {
	dist float64
	text string
}

// nearestPass collects unclaimed words whose center falls strictly within
// MaxDistance of the field center. Distances are measured in the page's
// bottom-origin space, so word centers are flipped back before comparing.
// This pass claims nothing; it is the last one to run.
func (e *Engine) nearestPass(ws []words.Word, field geom.Rect, pageHeight float64, claimed map[words.WordID]struct{}) []string {
	fieldCX, fieldCY := field.Center()
	maxSq := e.MaxDistance * e.MaxDistance

	var cands []scored
	for _, w := range ws {
		if _, ok := claimed[w.ID]; ok {
			continue
		}
		cx := (w.X0 + w.X1) / 2
		cy := geom.FlipY(pageHeight, (w.YTop+w.YBottom)/2)
		dx, dy := cx-fieldCX, cy-fieldCY
		if d := dx*dx + dy*dy; d < maxSq {
			cands = append(cands, scored{dist: d, text: w.Text})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
	if len(cands) > keepPerPass {
		cands = cands[:keepPerPass]
	}

	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.text)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// claimTop keeps the first keepPerPass candidates and marks exactly those
// as claimed; candidates beyond the cap stay available to later passes.
func claimTop(cands []words.Word, claimed map[words.WordID]struct{}) []string {
	limit := keepPerPass
	if len(cands) < limit {
		limit = len(cands)
	}
	if limit == 0 {
		return nil
	}
	out := make([]string, 0, limit)
	for _, w := range cands[:limit] {
		out = append(out, w.Text)
		claimed[w.ID] = struct{}{}
	}
	return out
}
