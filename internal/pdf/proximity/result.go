package proximity

import (
	"fmt"
	"strings"
)

// Outcome classifies a contextual-text computation.
type Outcome int

const (
	// OutcomeFound means at least one pass captured nearby text.
	OutcomeFound Outcome = iota
	// OutcomeNoneFound means the passes ran but no word qualified.
	OutcomeNoneFound
	// OutcomeInvalidInput means the request carried a negative page index
	// or a rectangle without four coordinates.
	OutcomeInvalidInput
	// OutcomePageOutOfRange means the page index points past the document.
	OutcomePageOutOfRange
	// OutcomeFailed means the computation itself broke; Reason says how.
	OutcomeFailed
)

// NoContextFound is the text reported when the passes complete without
// finding any nearby words. Downstream prompt builders treat it as "no
// context available" rather than as usable text.
const NoContextFound = "No distinct contextual text found nearby (or heuristics need tuning)."

const (
	invalidInputText = "Invalid page index or field coordinates for contextual analysis."
	outOfRangeFormat = "Page index %d out of bounds for contextual analysis."
	failedPrefix     = "Error during contextual text extraction: "
)

// Result carries the words each pass captured, or the reason nothing was
// produced. Callers render it with Text; errors never escape the engine.
type Result struct {
	Outcome   Outcome
	PageIndex int
	Left      []string
	Above     []string
	Closest   []string
	Reason    string
}

// Failed builds a Result describing a broken computation.
func Failed(pageIndex int, reason string) Result {
	return Result{Outcome: OutcomeFailed, PageIndex: pageIndex, Reason: reason}
}

// Found reports whether any pass captured text.
func (r Result) Found() bool {
	return r.Outcome == OutcomeFound
}

// Text renders the result as a single human-readable line. Captured words
// are grouped per pass and the groups joined with " | ", the closest-words
// group first.
func (r Result) Text() string {
	switch r.Outcome {
	case OutcomeInvalidInput:
		return invalidInputText
	case OutcomePageOutOfRange:
		return fmt.Sprintf(outOfRangeFormat, r.PageIndex)
	case OutcomeFailed:
		return failedPrefix + r.Reason
	}

	var segments []string
	if len(r.Closest) > 0 {
		segments = append(segments, "Closest: "+strings.Join(r.Closest, " "))
	}
	if len(r.Left) > 0 {
		segments = append(segments, "Left: "+strings.Join(r.Left, " "))
	}
	if len(r.Above) > 0 {
		segments = append(segments, "Above: "+strings.Join(r.Above, " "))
	}
	if len(segments) == 0 {
		return NoContextFound
	}
	return strings.Join(segments, " | ")
}
