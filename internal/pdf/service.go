package pdf

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/acrofill/acrofill/internal/llm"
	"github.com/acrofill/acrofill/internal/pdf/extraction"
	"github.com/acrofill/acrofill/internal/pdf/fill"
	"github.com/acrofill/acrofill/internal/pdf/proximity"
	"github.com/acrofill/acrofill/internal/pdf/security"
	"github.com/acrofill/acrofill/internal/pdf/words"
)

// ServiceConfig carries the settings the form service needs from the server configuration
type ServiceConfig struct {
	MaxFileSize     int64
	PDFDirectory    string
	OutputDirectory string
	ServerName      string
	Version         string
	LLM             llm.Config
}

// Service handles PDF form operations by orchestrating the form components
type Service struct {
	config          ServiceConfig
	extractor       *extraction.Extractor
	words           *words.Extractor
	engine          *proximity.Engine
	filler          *fill.Filler
	validator       *Validator
	search          *Search
	stats           *Stats
	llm             *llm.Service
	pathValidator   *security.PathValidator
	outputValidator *security.PathValidator
	serverInfo      *PDFServerInfo
}

// NewService creates a new PDF form service with all components
func NewService(cfg ServiceConfig) (*Service, error) {
	pathValidator, err := security.NewPathValidator(cfg.PDFDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	s := &Service{
		config:        cfg,
		extractor:     extraction.NewExtractor(),
		words:         words.NewExtractor(),
		engine:        proximity.NewEngine(),
		filler:        fill.NewFiller(),
		validator:     NewValidator(cfg.MaxFileSize),
		search:        NewSearch(cfg.MaxFileSize),
		stats:         NewStats(cfg.MaxFileSize),
		llm:           llm.NewService(cfg.LLM),
		pathValidator: pathValidator,
	}
	if cfg.OutputDirectory != "" {
		outputValidator, err := security.NewPathValidator(cfg.OutputDirectory)
		if err != nil {
			return nil, fmt.Errorf("failed to create output path validator: %w", err)
		}
		s.outputValidator = outputValidator
	}
	s.serverInfo = NewPDFServerInfo(s)
	return s, nil
}

// PDFExtractFormFields extracts the form field catalog of a PDF file,
// including the contextual label text inferred for every field
func (s *Service) PDFExtractFormFields(req PDFExtractFormFieldsRequest) (*PDFExtractFormFieldsResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	fields, err := s.extractor.ExtractFormFields(req.Path)
	if err != nil {
		return nil, err
	}
	_, pages := AttachContext(s.words, s.engine, req.Path, fields)

	return &PDFExtractFormFieldsResult{
		Path:       req.Path,
		Fields:     fields,
		TotalCount: len(fields),
		Pages:      pages,
	}, nil
}

// PDFFormStats returns summary statistics about the form fields of a PDF file
func (s *Service) PDFFormStats(req PDFFormStatsRequest) (*PDFFormStatsResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.stats.GetFormStats(req)
}

// PDFFillForm writes mapping values into the form fields of a PDF file and
// saves the result as a new document
func (s *Service) PDFFillForm(req PDFFillFormRequest) (*PDFFillFormResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	mapping := req.Mapping
	if len(mapping) == 0 && req.MappingPath != "" {
		if err := s.pathValidator.ValidatePath(req.MappingPath); err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
		loaded, err := fill.LoadMapping(req.MappingPath)
		if err != nil {
			return nil, err
		}
		mapping = loaded
	}
	if len(mapping) == 0 {
		return nil, fmt.Errorf("no mapping values provided: supply mapping or mapping_path")
	}

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = s.defaultOutputPath(req.Path)
	} else if err := s.validateOutputPath(outputPath); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	res, err := s.filler.Fill(req.Path, mapping, outputPath)
	if err != nil {
		return nil, err
	}
	return &PDFFillFormResult{
		Path:          req.Path,
		OutputPath:    res.OutputPath,
		FilledCount:   res.FilledCount,
		TotalFields:   res.TotalFields,
		UnmatchedKeys: res.UnmatchedKeys,
	}, nil
}

// PDFAutoFillForm extracts the form fields, asks the value mapper for a
// field-to-value mapping based on the text file, and fills the form with it
func (s *Service) PDFAutoFillForm(ctx context.Context, req PDFAutoFillFormRequest) (*PDFAutoFillFormResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.pathValidator.ValidatePath(req.TextPath); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	fields, err := s.extractor.ExtractFormFields(req.Path)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("PDF does not contain form fields: %s", req.Path)
	}
	AttachContext(s.words, s.engine, req.Path, fields)

	mappingPath := req.MappingPath
	if mappingPath == "" {
		mappingPath = filepath.Join(s.outputDir(req.Path), llm.DefaultMappingName)
	} else if err := s.validateOutputPath(mappingPath); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	mapping, err := s.llm.MapFieldValues(ctx, fields, req.TextPath, mappingPath)
	if err != nil {
		return nil, err
	}
	if len(mapping) == 0 {
		return nil, fmt.Errorf("model produced no field mapping for %s", req.Path)
	}

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = s.defaultOutputPath(req.Path)
	} else if err := s.validateOutputPath(outputPath); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	res, err := s.filler.Fill(req.Path, mapping, outputPath)
	if err != nil {
		return nil, err
	}
	return &PDFAutoFillFormResult{
		Path:          req.Path,
		TextPath:      req.TextPath,
		OutputPath:    res.OutputPath,
		MappingPath:   mappingPath,
		Mapping:       mapping,
		FilledCount:   res.FilledCount,
		TotalFields:   res.TotalFields,
		UnmatchedKeys: res.UnmatchedKeys,
	}, nil
}

// PDFDescribeFormFields generates a natural-language description of every
// named form field from the field properties and the document text
func (s *Service) PDFDescribeFormFields(ctx context.Context, req PDFDescribeFormFieldsRequest) (*PDFDescribeFormFieldsResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	fields, err := s.extractor.ExtractFormFields(req.Path)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("PDF does not contain form fields: %s", req.Path)
	}
	AttachContext(s.words, s.engine, req.Path, fields)

	documentText, err := s.words.DocumentText(req.Path)
	if err != nil {
		log.Printf("Warning: could not extract document text from %s: %v", req.Path, err)
		documentText = ""
	}

	missing, err := s.llm.DescribeFields(ctx, fields, documentText)
	if err != nil {
		return nil, err
	}

	described := 0
	for _, f := range fields {
		if f.Understanding != "" {
			described++
		}
	}

	return &PDFDescribeFormFieldsResult{
		Path:           req.Path,
		Fields:         fields,
		DescribedCount: described,
		MissingFields:  missing,
	}, nil
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.validator.ValidateFile(req)
}

// PDFSearchDirectory searches for PDF files in a directory
func (s *Service) PDFSearchDirectory(req PDFSearchDirectoryRequest) (*PDFSearchDirectoryResult, error) {
	// If no directory specified, use configured directory
	if req.Directory == "" {
		req.Directory = s.pathValidator.GetConfiguredDirectory()
	}

	// Validate directory is within configured bounds
	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	return s.search.SearchDirectory(req)
}

// PDFServerInfo returns comprehensive server information and usage guidance
func (s *Service) PDFServerInfo(ctx context.Context, _ PDFServerInfoRequest) (*PDFServerInfoResult, error) {
	return s.serverInfo.GetServerInfo(ctx)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.config.MaxFileSize
}

// IsValidPDF performs a quick validation check on a file
func (s *Service) IsValidPDF(filePath string) bool {
	return s.validator.IsValidPDF(filePath)
}

// CountPDFsInDirectory counts the number of valid PDF files in a directory
func (s *Service) CountPDFsInDirectory(directory string) (int, error) {
	return s.search.CountPDFsInDirectory(directory)
}

// ValidateConfiguration validates the service configuration
func (s *Service) ValidateConfiguration() error {
	if s.config.MaxFileSize <= 0 {
		return fmt.Errorf("maxFileSize must be greater than 0")
	}

	if s.config.MaxFileSize > 1024*1024*1024 { // 1GB limit
		return fmt.Errorf("maxFileSize cannot exceed 1GB")
	}

	return nil
}

// outputDir returns the directory filled documents and mappings are written
// to when the request does not name one
func (s *Service) outputDir(inputPath string) string {
	if s.config.OutputDirectory != "" {
		return s.config.OutputDirectory
	}
	return filepath.Dir(inputPath)
}

func (s *Service) defaultOutputPath(inputPath string) string {
	return filepath.Join(s.outputDir(inputPath), fill.DefaultOutputName(inputPath))
}

// validateOutputPath accepts caller-supplied write targets inside either the
// configured PDF directory or the configured output directory.
func (s *Service) validateOutputPath(path string) error {
	if err := s.pathValidator.ValidatePath(path); err == nil {
		return nil
	}
	if s.outputValidator != nil {
		return s.outputValidator.ValidatePath(path)
	}
	return fmt.Errorf("output path is outside the configured directory: %s", path)
}
