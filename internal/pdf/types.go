package pdf

import (
	"github.com/acrofill/acrofill/internal/pdf/extraction"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}

// Request Types

// PDFExtractFormFieldsRequest represents a request to extract form fields from a PDF file
type PDFExtractFormFieldsRequest struct {
	Path string `json:"path"`
}

// PDFFormStatsRequest represents a request for form field statistics of a PDF file
type PDFFormStatsRequest struct {
	Path string `json:"path"`
}

// PDFFillFormRequest represents a request to fill form fields in a PDF file.
// Values come either from the inline Mapping or from a JSON file at MappingPath.
type PDFFillFormRequest struct {
	Path        string         `json:"path"`
	Mapping     map[string]any `json:"mapping,omitempty"`
	MappingPath string         `json:"mapping_path,omitempty"`
	OutputPath  string         `json:"output_path,omitempty"`
}

// PDFAutoFillFormRequest represents a request to fill a form with values
// extracted from a free-text source by the value mapper
type PDFAutoFillFormRequest struct {
	Path        string `json:"path"`
	TextPath    string `json:"text_path"`
	MappingPath string `json:"mapping_path,omitempty"`
	OutputPath  string `json:"output_path,omitempty"`
}

// PDFDescribeFormFieldsRequest represents a request to generate natural-language
// descriptions for the form fields of a PDF file
type PDFDescribeFormFieldsRequest struct {
	Path string `json:"path"`
}

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// PDFSearchDirectoryRequest represents a request to search for PDF files in a directory
type PDFSearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
}

// PDFServerInfoRequest represents a request to get server information and capabilities
type PDFServerInfoRequest struct {
	// No parameters needed for server info
}

// Response Types

// PDFExtractFormFieldsResult represents the extracted form field catalog of a PDF file
type PDFExtractFormFieldsResult struct {
	Path       string                 `json:"path"`
	Fields     []extraction.FormField `json:"fields"`
	TotalCount int                    `json:"total_count"`
	Pages      int                    `json:"pages"`
}

// PDFFormStatsResult represents summary statistics about the form fields of a PDF file
type PDFFormStatsResult struct {
	Path              string         `json:"path"`
	Size              int64          `json:"size"`
	Pages             int            `json:"pages"`
	ModifiedDate      string         `json:"modified_date"`
	Title             string         `json:"title,omitempty"`
	Author            string         `json:"author,omitempty"`
	TotalFields       int            `json:"total_fields"`
	NamedFields       int            `json:"named_fields"`
	FieldsByType      map[string]int `json:"fields_by_type"`
	FieldsWithOptions int            `json:"fields_with_options"`
	LabeledFields     int            `json:"labeled_fields"`
	UnlabeledFields   int            `json:"unlabeled_fields"`
	ReadOnlyFields    int            `json:"read_only_fields"`
	RequiredFields    int            `json:"required_fields"`
}

// PDFFillFormResult represents the result of a form fill operation
type PDFFillFormResult struct {
	Path          string   `json:"path"`
	OutputPath    string   `json:"output_path"`
	FilledCount   int      `json:"filled_count"`
	TotalFields   int      `json:"total_fields"`
	UnmatchedKeys []string `json:"unmatched_keys,omitempty"`
}

// PDFAutoFillFormResult represents the result of an automatic form fill operation
type PDFAutoFillFormResult struct {
	Path          string         `json:"path"`
	TextPath      string         `json:"text_path"`
	OutputPath    string         `json:"output_path"`
	MappingPath   string         `json:"mapping_path"`
	Mapping       map[string]any `json:"mapping"`
	FilledCount   int            `json:"filled_count"`
	TotalFields   int            `json:"total_fields"`
	UnmatchedKeys []string       `json:"unmatched_keys,omitempty"`
}

// PDFDescribeFormFieldsResult represents the catalog enriched with field descriptions
type PDFDescribeFormFieldsResult struct {
	Path           string                 `json:"path"`
	Fields         []extraction.FormField `json:"fields"`
	DescribedCount int                    `json:"described_count"`
	MissingFields  []string               `json:"missing_fields,omitempty"`
}

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Message string `json:"message,omitempty"`
}

// PDFSearchDirectoryResult represents the result of a PDF search operation
type PDFSearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// PDFServerInfoResult represents server information and usage guidance
type PDFServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	OutputDirectory   string     `json:"output_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	UsageGuidance     string     `json:"usage_guidance"`
}
