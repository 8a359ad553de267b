package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/acrofill/acrofill/internal/pdf/extraction"
	"github.com/acrofill/acrofill/internal/pdf/proximity"
	"github.com/acrofill/acrofill/internal/pdf/words"
)

// Stats summarizes the form fields of a PDF file
type Stats struct {
	validator *Validator
	extractor *extraction.Extractor
	words     *words.Extractor
	engine    *proximity.Engine
}

// NewStats creates a new form stats analyzer with the specified constraints
func NewStats(maxFileSize int64) *Stats {
	return &Stats{
		validator: NewValidator(maxFileSize),
		extractor: extraction.NewExtractor(),
		words:     words.NewExtractor(),
		engine:    proximity.NewEngine(),
	}
}

// GetFormStats returns form field statistics for a single PDF file
func (s *Stats) GetFormStats(req PDFFormStatsRequest) (*PDFFormStatsResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	// Check if file exists and get basic info
	fileInfo, err := os.Stat(req.Path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", req.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	// Validate file
	if err := s.validator.ValidateFileInfo(req.Path, fileInfo); err != nil {
		return nil, err
	}

	fields, err := s.extractor.ExtractFormFields(req.Path)
	if err != nil {
		return nil, err
	}
	labeled, pageCount := AttachContext(s.words, s.engine, req.Path, fields)

	result := &PDFFormStatsResult{
		Path:          req.Path,
		Size:          fileInfo.Size(),
		Pages:         pageCount,
		ModifiedDate:  fileInfo.ModTime().Format("2006-01-02 15:04:05"),
		TotalFields:   len(fields),
		FieldsByType:  make(map[string]int),
		LabeledFields: labeled,
	}
	for _, f := range fields {
		result.FieldsByType[string(f.Type)]++
		if f.Name != "" {
			result.NamedFields++
		}
		if len(f.Options) > 0 {
			result.FieldsWithOptions++
		}
		if f.ReadOnly {
			result.ReadOnlyFields++
		}
		if f.Required {
			result.RequiredFields++
		}
	}
	result.UnlabeledFields = result.TotalFields - result.LabeledFields

	// Add document metadata if available
	s.extractMetadata(req.Path, result)

	return result, nil
}

// extractMetadata safely extracts document info from the PDF trailer
func (s *Stats) extractMetadata(path string, result *PDFFormStatsResult) {
	defer func() {
		// Recover from any panics during metadata extraction
		if recover() != nil {
			// Metadata extraction failed, but we can continue with field stats
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	trailer := r.Trailer()
	if trailer.IsNull() {
		return
	}

	info := trailer.Key("Info")
	if info.IsNull() {
		return
	}

	if title := info.Key("Title"); !title.IsNull() {
		if titleStr := title.String(); titleStr != "" {
			result.Title = strings.TrimSpace(titleStr)
		}
	}

	if author := info.Key("Author"); !author.IsNull() {
		if authorStr := author.String(); authorStr != "" {
			result.Author = strings.TrimSpace(authorStr)
		}
	}
}
