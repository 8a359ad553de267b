package pdf

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/acrofill/acrofill/internal/pdf/extraction"
	"github.com/acrofill/acrofill/internal/pdf/pdftest"
)

func newTestService(t *testing.T, pdfDir, outputDir string) *Service {
	t.Helper()
	service, err := NewService(ServiceConfig{
		MaxFileSize:     100 * 1024 * 1024,
		PDFDirectory:    pdfDir,
		OutputDirectory: outputDir,
		ServerName:      "mcp-pdf-formfill",
		Version:         "test",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service
}

func TestNewService(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	service := newTestService(t, tempDir, "")
	if service.GetMaxFileSize() != 100*1024*1024 {
		t.Errorf("unexpected max file size: %d", service.GetMaxFileSize())
	}
	if err := service.ValidateConfiguration(); err != nil {
		t.Errorf("unexpected configuration error: %v", err)
	}
}

func TestNewService_EmptyDirectory(t *testing.T) {
	_, err := NewService(ServiceConfig{MaxFileSize: 1024})
	if err == nil {
		t.Fatal("expected error for empty PDF directory")
	}
	if !strings.Contains(err.Error(), "failed to create path validator") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_ValidateConfiguration(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	tests := []struct {
		name        string
		maxFileSize int64
		wantErr     bool
	}{
		{"valid size", 50 * 1024 * 1024, false},
		{"zero size", 0, true},
		{"negative size", -1, true},
		{"too large", 2 * 1024 * 1024 * 1024, true},
		{"exactly 1GB", 1024 * 1024 * 1024, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewService(ServiceConfig{
				MaxFileSize:  tt.maxFileSize,
				PDFDirectory: tempDir,
			})
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}
			err = service.ValidateConfiguration()
			if tt.wantErr && err == nil {
				t.Error("expected configuration error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected configuration error: %v", err)
			}
		})
	}
}

func TestService_PDFExtractFormFields(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := pdftest.WriteFormPDF(t, tempDir)
	service := newTestService(t, tempDir, "")

	result, err := service.PDFExtractFormFields(PDFExtractFormFieldsRequest{Path: pdfPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Path != pdfPath {
		t.Errorf("expected path %s but got %s", pdfPath, result.Path)
	}
	if result.TotalCount != 3 || len(result.Fields) != 3 {
		t.Fatalf("expected 3 fields but got %d", result.TotalCount)
	}
	if result.Pages != 1 {
		t.Errorf("expected 1 page but got %d", result.Pages)
	}

	byName := make(map[string]extraction.FormField)
	for _, f := range result.Fields {
		byName[f.Name] = f
	}

	name, ok := byName["name"]
	if !ok {
		t.Fatal("expected a field called name")
	}
	if name.Type != extraction.FieldTypeText {
		t.Errorf("expected text type but got %s", name.Type)
	}
	if name.ContextText != "Left: Name:" {
		t.Errorf("unexpected context text: %q", name.ContextText)
	}

	color, ok := byName["color"]
	if !ok {
		t.Fatal("expected a field called color")
	}
	if len(color.Options) == 0 {
		t.Error("expected choice field options")
	}
}

func TestService_SecurityValidation(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	outsideDir, err := os.MkdirTemp("", "pdf_service_outside")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(outsideDir)

	outsidePath := pdftest.WriteFormPDF(t, outsideDir)
	service := newTestService(t, tempDir, "")

	checks := []struct {
		name string
		call func() error
	}{
		{"extract", func() error {
			_, err := service.PDFExtractFormFields(PDFExtractFormFieldsRequest{Path: outsidePath})
			return err
		}},
		{"stats", func() error {
			_, err := service.PDFFormStats(PDFFormStatsRequest{Path: outsidePath})
			return err
		}},
		{"fill", func() error {
			_, err := service.PDFFillForm(PDFFillFormRequest{Path: outsidePath, Mapping: map[string]any{"name": "x"}})
			return err
		}},
		{"autofill", func() error {
			_, err := service.PDFAutoFillForm(context.Background(), PDFAutoFillFormRequest{Path: outsidePath, TextPath: outsidePath})
			return err
		}},
		{"describe", func() error {
			_, err := service.PDFDescribeFormFields(context.Background(), PDFDescribeFormFieldsRequest{Path: outsidePath})
			return err
		}},
		{"validate", func() error {
			_, err := service.PDFValidateFile(PDFValidateFileRequest{Path: outsidePath})
			return err
		}},
		{"search", func() error {
			_, err := service.PDFSearchDirectory(PDFSearchDirectoryRequest{Directory: outsideDir})
			return err
		}},
	}

	for _, check := range checks {
		t.Run(check.name, func(t *testing.T) {
			err := check.call()
			if err == nil {
				t.Fatal("expected security validation error")
			}
			if !strings.Contains(err.Error(), "security validation failed") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestService_PDFFillForm(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	outputDir, err := os.MkdirTemp("", "pdf_service_output")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(outputDir)

	pdfPath := pdftest.WriteFormPDF(t, tempDir)
	service := newTestService(t, tempDir, outputDir)

	result, err := service.PDFFillForm(PDFFillFormRequest{
		Path: pdfPath,
		Mapping: map[string]any{
			"name":      "Alice Smith",
			"subscribe": true,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOutput := filepath.Join(outputDir, "form_filled.pdf")
	if result.OutputPath != wantOutput {
		t.Errorf("expected output path %s but got %s", wantOutput, result.OutputPath)
	}
	if result.FilledCount != 2 {
		t.Errorf("expected 2 filled fields but got %d", result.FilledCount)
	}
	if result.TotalFields != 3 {
		t.Errorf("expected 3 total fields but got %d", result.TotalFields)
	}
	if len(result.UnmatchedKeys) != 0 {
		t.Errorf("unexpected unmatched keys: %v", result.UnmatchedKeys)
	}

	if _, err := os.Stat(result.OutputPath); err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}

	// The original must remain untouched and the copy must carry the values.
	fields, err := extraction.NewExtractor().ExtractFormFields(result.OutputPath)
	if err != nil {
		t.Fatalf("failed to re-extract filled PDF: %v", err)
	}
	values := make(map[string]string)
	for _, f := range fields {
		values[f.Name] = f.Value
	}
	if values["name"] != "Alice Smith" {
		t.Errorf("expected filled name value but got %q", values["name"])
	}
	if values["subscribe"] != "On" {
		t.Errorf("expected checkbox state On but got %q", values["subscribe"])
	}

	original, err := extraction.NewExtractor().ExtractFormFields(pdfPath)
	if err != nil {
		t.Fatalf("failed to re-extract original PDF: %v", err)
	}
	for _, f := range original {
		if f.Name == "name" && f.Value != "" {
			t.Errorf("original PDF was modified: name=%q", f.Value)
		}
	}
}

func TestService_PDFFillForm_MappingFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := pdftest.WriteFormPDF(t, tempDir)
	mappingPath := filepath.Join(tempDir, "mapping.json")
	mapping := `{"name": "Bob", "unknown_field": "ignored"}`
	if err := os.WriteFile(mappingPath, []byte(mapping), 0o600); err != nil {
		t.Fatalf("failed to write mapping file: %v", err)
	}

	service := newTestService(t, tempDir, "")

	result, err := service.PDFFillForm(PDFFillFormRequest{
		Path:        pdfPath,
		MappingPath: mappingPath,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Without an output directory the filled copy lands next to the input.
	wantOutput := filepath.Join(tempDir, "form_filled.pdf")
	if result.OutputPath != wantOutput {
		t.Errorf("expected output path %s but got %s", wantOutput, result.OutputPath)
	}
	if result.FilledCount != 1 {
		t.Errorf("expected 1 filled field but got %d", result.FilledCount)
	}
	if len(result.UnmatchedKeys) != 1 || result.UnmatchedKeys[0] != "unknown_field" {
		t.Errorf("unexpected unmatched keys: %v", result.UnmatchedKeys)
	}
}

func TestService_PDFFillForm_NoMapping(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := pdftest.WriteFormPDF(t, tempDir)
	service := newTestService(t, tempDir, "")

	_, err = service.PDFFillForm(PDFFillFormRequest{Path: pdfPath})
	if err == nil {
		t.Fatal("expected error for missing mapping")
	}
	if !strings.Contains(err.Error(), "no mapping values provided") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_PDFFillForm_OutputPathValidation(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	outputDir, err := os.MkdirTemp("", "pdf_service_output")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(outputDir)

	elsewhereDir, err := os.MkdirTemp("", "pdf_service_elsewhere")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(elsewhereDir)

	pdfPath := pdftest.WriteFormPDF(t, tempDir)
	service := newTestService(t, tempDir, outputDir)
	mapping := map[string]any{"name": "Carol"}

	// Explicit targets inside the output directory are accepted.
	custom := filepath.Join(outputDir, "custom.pdf")
	result, err := service.PDFFillForm(PDFFillFormRequest{Path: pdfPath, Mapping: mapping, OutputPath: custom})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OutputPath != custom {
		t.Errorf("expected output path %s but got %s", custom, result.OutputPath)
	}

	// Targets inside the PDF directory are accepted too.
	inPlace := filepath.Join(tempDir, "copy.pdf")
	if _, err := service.PDFFillForm(PDFFillFormRequest{Path: pdfPath, Mapping: mapping, OutputPath: inPlace}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Anything outside both directories is rejected.
	outside := filepath.Join(elsewhereDir, "escape.pdf")
	_, err = service.PDFFillForm(PDFFillFormRequest{Path: pdfPath, Mapping: mapping, OutputPath: outside})
	if err == nil {
		t.Fatal("expected security validation error")
	}
	if !strings.Contains(err.Error(), "security validation failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_PDFFormStats(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := pdftest.WriteFormPDF(t, tempDir)
	service := newTestService(t, tempDir, "")

	result, err := service.PDFFormStats(PDFFormStatsRequest{Path: pdfPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalFields != 3 {
		t.Errorf("expected 3 fields but got %d", result.TotalFields)
	}
	if result.FieldsByType["text"] != 1 {
		t.Errorf("expected 1 text field but got %d", result.FieldsByType["text"])
	}
}

func TestService_PDFAutoFillForm_MissingAPIKey(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := pdftest.WriteFormPDF(t, tempDir)
	textPath := filepath.Join(tempDir, "source.txt")
	if err := os.WriteFile(textPath, []byte("Name: Alice Smith"), 0o600); err != nil {
		t.Fatalf("failed to write text file: %v", err)
	}

	service := newTestService(t, tempDir, "")

	_, err = service.PDFAutoFillForm(context.Background(), PDFAutoFillFormRequest{
		Path:     pdfPath,
		TextPath: textPath,
	})
	if err == nil {
		t.Fatal("expected error without a Gemini API key")
	}
	if !strings.Contains(err.Error(), "gemini API key is not configured") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_PDFAutoFillForm_NoFormFields(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := pdftest.WritePlainPDF(t, tempDir)
	textPath := filepath.Join(tempDir, "source.txt")
	if err := os.WriteFile(textPath, []byte("Name: Alice Smith"), 0o600); err != nil {
		t.Fatalf("failed to write text file: %v", err)
	}

	service := newTestService(t, tempDir, "")

	_, err = service.PDFAutoFillForm(context.Background(), PDFAutoFillFormRequest{
		Path:     pdfPath,
		TextPath: textPath,
	})
	if err == nil {
		t.Fatal("expected error for PDF without form fields")
	}
	if !strings.Contains(err.Error(), "does not contain form fields") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_PDFDescribeFormFields_MissingAPIKey(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := pdftest.WriteFormPDF(t, tempDir)
	service := newTestService(t, tempDir, "")

	_, err = service.PDFDescribeFormFields(context.Background(), PDFDescribeFormFieldsRequest{Path: pdfPath})
	if err == nil {
		t.Fatal("expected error without an OpenAI API key")
	}
	if !strings.Contains(err.Error(), "openAI API key is not configured") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_PDFValidateFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := pdftest.WriteFormPDF(t, tempDir)
	service := newTestService(t, tempDir, "")

	result, err := service.PDFValidateFile(PDFValidateFileRequest{Path: pdfPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Valid {
		t.Errorf("expected valid PDF: %s", result.Message)
	}

	missing := filepath.Join(tempDir, "missing.pdf")
	result, err = service.PDFValidateFile(PDFValidateFileRequest{Path: missing})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid {
		t.Error("expected invalid result for missing file")
	}
	if !strings.Contains(result.Message, "file does not exist") {
		t.Errorf("unexpected message: %s", result.Message)
	}
}

func TestService_PDFSearchDirectory(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	pdftest.WriteFormPDF(t, tempDir)
	service := newTestService(t, tempDir, "")

	// An empty directory falls back to the configured one.
	result, err := service.PDFSearchDirectory(PDFSearchDirectoryRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Directory != tempDir {
		t.Errorf("expected directory %s but got %s", tempDir, result.Directory)
	}
	if result.TotalCount != 1 || result.Files[0].Name != "form.pdf" {
		t.Errorf("unexpected search result: %+v", result.Files)
	}
}

func TestService_IsValidPDF(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := pdftest.WriteFormPDF(t, tempDir)
	service := newTestService(t, tempDir, "")

	if !service.IsValidPDF(pdfPath) {
		t.Error("expected fixture to be a valid PDF")
	}
	if service.IsValidPDF(filepath.Join(tempDir, "missing.pdf")) {
		t.Error("expected missing file to be invalid")
	}

	count, err := service.CountPDFsInDirectory(tempDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 PDF but got %d", count)
	}
}
