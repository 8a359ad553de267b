package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Validator checks that files are PDFs the service is willing to open.
type Validator struct {
	maxFileSize int64
}

// NewValidator returns a validator that rejects files larger than
// maxFileSize bytes.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// ValidateFile checks a PDF file end to end, including opening it with
// the PDF reader. Validation failures land in the result message
// rather than in the returned error.
func (v *Validator) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{Path: req.Path}
	if err := v.check(req.Path); err != nil {
		result.Message = err.Error()
		return result, nil
	}
	result.Valid = true
	return result, nil
}

// IsValidPDF reports whether the file passes full validation.
func (v *Validator) IsValidPDF(filePath string) bool {
	return v.check(filePath) == nil
}

// check stats the file, applies the metadata checks, and then opens
// the file to prove it parses as a PDF.
func (v *Validator) check(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return err
	}

	f, _, err := pdf.Open(filePath)
	if err != nil {
		return fmt.Errorf("invalid PDF file: %w", err)
	}
	defer f.Close()

	return nil
}

// ValidateFileInfo applies the checks that need no file contents: the
// path must name a regular .pdf file within the size limit. Directory
// scans use it to discard candidates without opening them.
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	if !hasPDFExtension(filePath) {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}
	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}
	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}
	return nil
}

// hasPDFExtension reports whether the path names a .pdf file.
func hasPDFExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
