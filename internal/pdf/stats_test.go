package pdf

import (
	"os"
	"strings"
	"testing"

	"github.com/acrofill/acrofill/internal/pdf/pdftest"
)

func TestStats_GetFormStats(t *testing.T) {
	stats := NewStats(1024 * 1024)

	tempDir, err := os.MkdirTemp("", "pdf_stats_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	formPath := pdftest.WriteFormPDF(t, tempDir)

	result, err := stats.GetFormStats(PDFFormStatsRequest{Path: formPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Path != formPath {
		t.Errorf("expected Path=%s but got %s", formPath, result.Path)
	}
	if result.Size == 0 {
		t.Error("expected non-zero size")
	}
	if result.Pages != 1 {
		t.Errorf("expected 1 page but got %d", result.Pages)
	}
	if result.ModifiedDate == "" {
		t.Error("expected modified date")
	}
	if result.TotalFields != 3 {
		t.Errorf("expected 3 fields but got %d", result.TotalFields)
	}
	if result.NamedFields != 3 {
		t.Errorf("expected 3 named fields but got %d", result.NamedFields)
	}

	expectedTypes := map[string]int{"text": 1, "checkbox": 1, "select": 1}
	for typ, count := range expectedTypes {
		if result.FieldsByType[typ] != count {
			t.Errorf("expected %d %s field(s) but got %d", count, typ, result.FieldsByType[typ])
		}
	}

	if result.FieldsWithOptions != 1 {
		t.Errorf("expected 1 field with options but got %d", result.FieldsWithOptions)
	}

	// The page carries one label; the text field picks it up by the left
	// heuristic and the checkbox by distance. The choice field is too far away.
	if result.LabeledFields != 2 {
		t.Errorf("expected 2 labeled fields but got %d", result.LabeledFields)
	}
	if result.UnlabeledFields != 1 {
		t.Errorf("expected 1 unlabeled field but got %d", result.UnlabeledFields)
	}

	if result.ReadOnlyFields != 0 {
		t.Errorf("expected no read-only fields but got %d", result.ReadOnlyFields)
	}
	if result.RequiredFields != 0 {
		t.Errorf("expected no required fields but got %d", result.RequiredFields)
	}
}

func TestStats_GetFormStatsWithoutForm(t *testing.T) {
	stats := NewStats(1024 * 1024)

	tempDir, err := os.MkdirTemp("", "pdf_stats_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	plainPath := pdftest.WritePlainPDF(t, tempDir)

	result, err := stats.GetFormStats(PDFFormStatsRequest{Path: plainPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalFields != 0 {
		t.Errorf("expected 0 fields but got %d", result.TotalFields)
	}
	if result.Pages != 1 {
		t.Errorf("expected 1 page but got %d", result.Pages)
	}
	if len(result.FieldsByType) != 0 {
		t.Errorf("expected empty type map but got %v", result.FieldsByType)
	}
}

func TestStats_GetFormStatsErrors(t *testing.T) {
	stats := NewStats(1024 * 1024)

	if _, err := stats.GetFormStats(PDFFormStatsRequest{Path: ""}); err == nil {
		t.Error("expected error for empty path")
	}

	_, err := stats.GetFormStats(PDFFormStatsRequest{Path: "/non/existent/file.pdf"})
	if err == nil || !strings.Contains(err.Error(), "file does not exist") {
		t.Errorf("expected file does not exist error but got %v", err)
	}
}
