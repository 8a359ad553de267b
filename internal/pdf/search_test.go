package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/acrofill/acrofill/internal/pdf/pdftest"
)

// newSearchDir builds a directory tree with two valid PDFs, one invalid PDF
// and one non-PDF file.
func newSearchDir(t *testing.T) string {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "pdf_search_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	pdftest.WriteFormPDF(t, tempDir)

	subDir := filepath.Join(tempDir, "archive")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatalf("failed to create subdirectory: %v", err)
	}
	pdftest.WritePlainPDF(t, subDir)

	if err := os.WriteFile(filepath.Join(tempDir, "empty.pdf"), []byte{}, 0o644); err != nil {
		t.Fatalf("failed to create empty PDF: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("notes"), 0o644); err != nil {
		t.Fatalf("failed to create text file: %v", err)
	}

	return tempDir
}

func TestSearch_SearchDirectory(t *testing.T) {
	search := NewSearch(1024 * 1024)
	tempDir := newSearchDir(t)

	tests := []struct {
		name          string
		query         string
		expectedNames []string
	}{
		{
			name:          "no query returns all valid PDFs",
			query:         "",
			expectedNames: []string{"form.pdf", "plain.pdf"},
		},
		{
			name:          "query filters by filename",
			query:         "form",
			expectedNames: []string{"form.pdf"},
		},
		{
			name:          "query with no matches",
			query:         "zzz",
			expectedNames: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := search.SearchDirectory(PDFSearchDirectoryRequest{
				Directory: tempDir,
				Query:     tt.query,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.TotalCount != len(tt.expectedNames) {
				t.Fatalf("expected %d files but got %d: %+v", len(tt.expectedNames), result.TotalCount, result.Files)
			}

			found := make(map[string]bool)
			for _, f := range result.Files {
				found[f.Name] = true
				if f.Size == 0 {
					t.Errorf("expected non-zero size for %s", f.Name)
				}
				if f.ModifiedTime == "" {
					t.Errorf("expected modified time for %s", f.Name)
				}
			}
			for _, name := range tt.expectedNames {
				if !found[name] {
					t.Errorf("expected %s in results: %+v", name, result.Files)
				}
			}

			if result.SearchQuery != tt.query {
				t.Errorf("expected SearchQuery=%q but got %q", tt.query, result.SearchQuery)
			}
		})
	}
}

func TestSearch_SearchDirectoryErrors(t *testing.T) {
	search := NewSearch(1024 * 1024)

	if _, err := search.SearchDirectory(PDFSearchDirectoryRequest{Directory: ""}); err == nil {
		t.Error("expected error for empty directory")
	}

	_, err := search.SearchDirectory(PDFSearchDirectoryRequest{Directory: "/non/existent/dir"})
	if err == nil || !strings.Contains(err.Error(), "directory does not exist") {
		t.Errorf("expected directory does not exist error but got %v", err)
	}
}

func TestSearch_FindPDFsInDirectoryLimited(t *testing.T) {
	search := NewSearch(1024 * 1024)
	tempDir := newSearchDir(t)

	// PDFs inside hidden directories are skipped
	hiddenDir := filepath.Join(tempDir, ".cache")
	if err := os.MkdirAll(hiddenDir, 0o755); err != nil {
		t.Fatalf("failed to create hidden dir: %v", err)
	}
	pdftest.WriteFormPDF(t, hiddenDir)

	files, err := search.FindPDFsInDirectoryLimited(tempDir, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files but got %d: %+v", len(files), files)
	}
	for _, f := range files {
		if strings.Contains(f.Path, ".cache") {
			t.Errorf("hidden directory should be skipped: %s", f.Path)
		}
	}

	limited, err := search.FindPDFsInDirectoryLimited(tempDir, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 file with limit 1 but got %d", len(limited))
	}
}

func TestSearch_CountPDFsInDirectory(t *testing.T) {
	search := NewSearch(1024 * 1024)
	tempDir := newSearchDir(t)

	count, err := search.CountPDFsInDirectory(tempDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 PDFs but got %d", count)
	}
}

func TestSearch_MatchesQuery(t *testing.T) {
	search := NewSearch(1024 * 1024)

	tests := []struct {
		name     string
		filename string
		query    string
		expected bool
	}{
		{
			name:     "substring match",
			filename: "invoice_2024.pdf",
			query:    "invoice",
			expected: true,
		},
		{
			name:     "substring within word",
			filename: "report.pdf",
			query:    "port",
			expected: true,
		},
		{
			name:     "word-based match ignores order",
			filename: "invoice_2024.pdf",
			query:    "2024 invoice",
			expected: true,
		},
		{
			name:     "word-based match across separators",
			filename: "tax-return (final).pdf",
			query:    "tax final",
			expected: true,
		},
		{
			name:     "missing query word",
			filename: "invoice_2024.pdf",
			query:    "invoice draft",
			expected: false,
		},
		{
			name:     "no match",
			filename: "report.pdf",
			query:    "missing",
			expected: false,
		},
		{
			name:     "empty query matches",
			filename: "report.pdf",
			query:    "",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := search.matchesQuery(tt.filename, tt.query)
			if result != tt.expected {
				t.Errorf("matchesQuery(%q, %q) = %v, expected %v", tt.filename, tt.query, result, tt.expected)
			}
		})
	}
}

func TestSearch_SplitIntoWords(t *testing.T) {
	search := NewSearch(1024 * 1024)

	words := search.splitIntoWords("Tax-Return (Final)_v2")
	expected := []string{"tax", "return", "final", "v2"}

	if len(words) != len(expected) {
		t.Fatalf("expected %d words but got %d: %v", len(expected), len(words), words)
	}
	for i, w := range expected {
		if words[i] != w {
			t.Errorf("expected word %d to be %q but got %q", i, w, words[i])
		}
	}
}
