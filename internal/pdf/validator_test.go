package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/acrofill/acrofill/internal/pdf/pdftest"
)

func TestValidator_ValidateFile(t *testing.T) {
	validator := NewValidator(1024 * 1024) // 1MB limit

	tempDir, err := os.MkdirTemp("", "pdf_validator_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	formPath := pdftest.WriteFormPDF(t, tempDir)

	tests := []struct {
		name        string
		req         PDFValidateFileRequest
		expectValid bool
	}{
		{
			name:        "valid form PDF",
			req:         PDFValidateFileRequest{Path: formPath},
			expectValid: true,
		},
		{
			name:        "empty path",
			req:         PDFValidateFileRequest{Path: ""},
			expectValid: false,
		},
		{
			name:        "non-existent file",
			req:         PDFValidateFileRequest{Path: "/non/existent/file.pdf"},
			expectValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator.ValidateFile(tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result == nil {
				t.Fatalf("result should not be nil")
			}

			if result.Valid != tt.expectValid {
				t.Errorf("expected Valid=%v but got %v (message: %s)", tt.expectValid, result.Valid, result.Message)
			}
			if result.Path != tt.req.Path {
				t.Errorf("expected Path=%s but got %s", tt.req.Path, result.Path)
			}
			if !tt.expectValid && result.Message == "" {
				t.Errorf("expected validation message for invalid file")
			}
			if tt.expectValid && result.Message != "" {
				t.Errorf("expected no message for valid file but got %s", result.Message)
			}
		})
	}
}

func TestValidator_ValidateFileInfo(t *testing.T) {
	validator := NewValidator(1024 * 1024) // 1MB limit

	tempDir, err := os.MkdirTemp("", "pdf_validator_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	largePDFPath := filepath.Join(tempDir, "large.pdf")
	emptyPDFPath := filepath.Join(tempDir, "empty.pdf")
	nonPDFPath := filepath.Join(tempDir, "document.txt")

	if err := os.WriteFile(largePDFPath, make([]byte, 2*1024*1024), 0o644); err != nil {
		t.Fatalf("failed to create large PDF: %v", err)
	}
	if err := os.WriteFile(emptyPDFPath, []byte{}, 0o644); err != nil {
		t.Fatalf("failed to create empty PDF: %v", err)
	}
	if err := os.WriteFile(nonPDFPath, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("failed to create non-PDF: %v", err)
	}

	formPath := pdftest.WriteFormPDF(t, tempDir)

	tests := []struct {
		name     string
		filePath string
		errorMsg string
	}{
		{
			name:     "valid PDF file",
			filePath: formPath,
		},
		{
			name:     "large PDF file",
			filePath: largePDFPath,
			errorMsg: "file too large",
		},
		{
			name:     "empty PDF file",
			filePath: emptyPDFPath,
			errorMsg: "file is empty",
		},
		{
			name:     "non-PDF file",
			filePath: nonPDFPath,
			errorMsg: "file is not a PDF",
		},
		{
			name:     "directory instead of file",
			filePath: tempDir,
			errorMsg: "path is a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileInfo, err := os.Stat(tt.filePath)
			if err != nil {
				t.Fatalf("failed to stat file: %v", err)
			}

			err = validator.ValidateFileInfo(tt.filePath, fileInfo)

			if tt.errorMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q but got none", tt.errorMsg)
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("expected error containing %q but got %q", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestValidator_IsValidPDF(t *testing.T) {
	validator := NewValidator(1024 * 1024) // 1MB limit

	tempDir, err := os.MkdirTemp("", "pdf_validator_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	formPath := pdftest.WriteFormPDF(t, tempDir)

	fakePath := filepath.Join(tempDir, "fake.pdf")
	if err := os.WriteFile(fakePath, []byte("This is not a PDF file"), 0o644); err != nil {
		t.Fatalf("failed to create fake PDF: %v", err)
	}

	tests := []struct {
		name     string
		filePath string
		expected bool
	}{
		{
			name:     "valid PDF",
			filePath: formPath,
			expected: true,
		},
		{
			name:     "empty path",
			filePath: "",
			expected: false,
		},
		{
			name:     "non-existent file",
			filePath: "/non/existent/file.pdf",
			expected: false,
		},
		{
			name:     "PDF extension but not PDF content",
			filePath: fakePath,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.IsValidPDF(tt.filePath)
			if result != tt.expected {
				t.Errorf("expected %v but got %v", tt.expected, result)
			}
		})
	}
}

func TestNewValidator(t *testing.T) {
	maxFileSize := int64(2 * 1024 * 1024) // 2MB
	validator := NewValidator(maxFileSize)

	if validator == nil {
		t.Fatal("NewValidator returned nil")
	}

	if validator.maxFileSize != maxFileSize {
		t.Errorf("expected maxFileSize=%d but got %d", maxFileSize, validator.maxFileSize)
	}
}

func BenchmarkValidator_ValidateFileInfo(b *testing.B) {
	validator := NewValidator(1024 * 1024)

	tempDir, err := os.MkdirTemp("", "pdf_validator_bench")
	if err != nil {
		b.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	testFile := filepath.Join(tempDir, "test.pdf")
	if err := os.WriteFile(testFile, make([]byte, 1024), 0o644); err != nil {
		b.Fatalf("failed to create test file: %v", err)
	}

	fileInfo, err := os.Stat(testFile)
	if err != nil {
		b.Fatalf("failed to stat file: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = validator.ValidateFileInfo(testFile, fileInfo)
	}
}
