package proximity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultText(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{
			name: "all passes",
			result: Result{
				Outcome: OutcomeFound,
				Left:    []string{"Last", "Name:"},
				Above:   []string{"Applicant"},
				Closest: []string{"Signature"},
			},
			want: "Closest: Signature | Left: Last Name: | Above: Applicant",
		},
		{
			name:   "left only",
			result: Result{Outcome: OutcomeFound, Left: []string{"Name:"}},
			want:   "Left: Name:",
		},
		{
			name: "closest and above",
			result: Result{
				Outcome: OutcomeFound,
				Above:   []string{"Date"},
				Closest: []string{"of", "birth"},
			},
			want: "Closest: of birth | Above: Date",
		},
		{
			name:   "none found",
			result: Result{Outcome: OutcomeNoneFound},
			want:   NoContextFound,
		},
		{
			name:   "invalid input",
			result: Result{Outcome: OutcomeInvalidInput, PageIndex: -1},
			want:   "Invalid page index or field coordinates for contextual analysis.",
		},
		{
			name:   "page out of range",
			result: Result{Outcome: OutcomePageOutOfRange, PageIndex: 7},
			want:   "Page index 7 out of bounds for contextual analysis.",
		},
		{
			name:   "failed",
			result: Failed(2, "boom"),
			want:   "Error during contextual text extraction: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Text())
		})
	}
}

func TestResultFound(t *testing.T) {
	assert.True(t, Result{Outcome: OutcomeFound}.Found())
	assert.False(t, Result{Outcome: OutcomeNoneFound}.Found())
	assert.False(t, Result{Outcome: OutcomeInvalidInput}.Found())
	assert.False(t, Result{Outcome: OutcomePageOutOfRange}.Found())
	assert.False(t, Result{Outcome: OutcomeFailed}.Found())
}

func TestFailed(t *testing.T) {
	res := Failed(4, "content parse failure")

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, 4, res.PageIndex)
	assert.Equal(t, "content parse failure", res.Reason)
}
