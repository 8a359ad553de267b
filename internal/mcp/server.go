package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/acrofill/acrofill/internal/config"
	"github.com/acrofill/acrofill/internal/pdf"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Register PDF extract form fields tool
	pdfExtractFormFieldsTool := mcp.NewTool(
		"pdf_extract_form_fields",
		mcp.WithDescription("Extract the form field catalog from a PDF file, including nearby label text for each field"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfExtractFormFieldsTool, s.handlePDFExtractFormFields)

	// Register PDF form stats tool
	pdfFormStatsTool := mcp.NewTool(
		"pdf_form_stats",
		mcp.WithDescription("Get summary statistics about the form fields of a PDF file"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfFormStatsTool, s.handlePDFFormStats)

	// Register PDF fill form tool
	pdfFillFormTool := mcp.NewTool(
		"pdf_fill_form",
		mcp.WithDescription("Fill PDF form fields from a field-to-value mapping and save the result as a new file"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithObject("mapping",
			mcp.Description("Field name to value mapping applied to the form"),
		),
		mcp.WithString("mapping_path",
			mcp.Description("Path to a JSON file holding the mapping (used when mapping is not given)"),
		),
		mcp.WithString("output_path",
			mcp.Description("Where to write the filled PDF (defaults to <name>_filled.pdf)"),
		),
	)
	s.mcpServer.AddTool(pdfFillFormTool, s.handlePDFFillForm)

	// Register PDF auto fill form tool
	pdfAutoFillFormTool := mcp.NewTool(
		"pdf_auto_fill_form",
		mcp.WithDescription("Map values from a text file onto PDF form fields using Gemini and fill the form"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithString("text_path",
			mcp.Required(),
			mcp.Description("Path to the text file the field values are read from"),
		),
		mcp.WithString("mapping_path",
			mcp.Description("Where to save the generated mapping JSON (defaults to mapping.json next to the output)"),
		),
		mcp.WithString("output_path",
			mcp.Description("Where to write the filled PDF (defaults to <name>_filled.pdf)"),
		),
	)
	s.mcpServer.AddTool(pdfAutoFillFormTool, s.handlePDFAutoFillForm)

	// Register PDF describe form fields tool
	pdfDescribeFormFieldsTool := mcp.NewTool(
		"pdf_describe_form_fields",
		mcp.WithDescription("Generate natural-language descriptions of PDF form fields using an OpenAI-compatible model"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfDescribeFormFieldsTool, s.handlePDFDescribeFormFields)

	// Register PDF validate file tool
	pdfValidateFileTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription("Validate if a file is a readable PDF"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfValidateFileTool, s.handlePDFValidateFile)

	// Register PDF search directory tool
	pdfSearchDirectoryTool := mcp.NewTool(
		"pdf_search_directory",
		mcp.WithDescription("Search for PDF files in a directory with optional fuzzy search"),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query for fuzzy matching"),
		),
	)
	s.mcpServer.AddTool(pdfSearchDirectoryTool, s.handlePDFSearchDirectory)

	// Register PDF server info tool
	pdfServerInfoTool := mcp.NewTool(
		"pdf_server_info",
		mcp.WithDescription("Get server information, available tools, directory contents, and usage guidance"),
	)
	s.mcpServer.AddTool(pdfServerInfoTool, s.handlePDFServerInfo)
}

// Handler functions
func (s *Server) handlePDFExtractFormFields(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFExtractFormFieldsRequest{Path: path}
	result, err := s.pdfService.PDFExtractFormFields(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatPDFExtractFormFieldsResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFFormStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFFormStatsRequest{Path: path}
	result, err := s.pdfService.PDFFormStats(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatPDFFormStatsResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFFillForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()

	req := pdf.PDFFillFormRequest{Path: path}

	// The mapping usually arrives as a JSON object, but some clients
	// serialize object parameters as strings.
	switch mapping := args["mapping"].(type) {
	case map[string]any:
		req.Mapping = mapping
	case string:
		if mapping != "" {
			var parsed map[string]any
			if err := json.Unmarshal([]byte(mapping), &parsed); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid mapping JSON: %v", err)), nil
			}
			req.Mapping = parsed
		}
	}

	if mappingPath, ok := args["mapping_path"].(string); ok {
		req.MappingPath = mappingPath
	}
	if outputPath, ok := args["output_path"].(string); ok {
		req.OutputPath = outputPath
	}

	result, err := s.pdfService.PDFFillForm(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatPDFFillFormResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFAutoFillForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	textPath, err := request.RequireString("text_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()

	req := pdf.PDFAutoFillFormRequest{
		Path:     path,
		TextPath: textPath,
	}
	if mappingPath, ok := args["mapping_path"].(string); ok {
		req.MappingPath = mappingPath
	}
	if outputPath, ok := args["output_path"].(string); ok {
		req.OutputPath = outputPath
	}

	result, err := s.pdfService.PDFAutoFillForm(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatPDFAutoFillFormResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFDescribeFormFields(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFDescribeFormFieldsRequest{Path: path}
	result, err := s.pdfService.PDFDescribeFormFields(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatPDFDescribeFormFieldsResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFValidateFileRequest{Path: path}
	result, err := s.pdfService.PDFValidateFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable", result.Path)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.PDFDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}

	req := pdf.PDFSearchDirectoryRequest{
		Directory: directory,
		Query:     query,
	}

	result, err := s.pdfService.PDFSearchDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No PDF files found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatPDFSearchDirectoryResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := pdf.PDFServerInfoRequest{}
	result, err := s.pdfService.PDFServerInfo(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatPDFServerInfoResult(result)
	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods
func (s *Server) formatPDFExtractFormFieldsResult(result *pdf.PDFExtractFormFieldsResult) string {
	text := fmt.Sprintf("Form fields for: %s\n", result.Path)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Total fields: %d\n", result.TotalCount)

	if result.TotalCount == 0 {
		text += "\nThe document has no form fields.\n"
		return text
	}

	text += "\nFields:\n"
	for i, field := range result.Fields {
		text += fmt.Sprintf("%d. %s\n", i+1, field.Name)
		text += fmt.Sprintf("   Type: %s\n", field.Type)
		text += fmt.Sprintf("   Page: %d\n", field.Page+1)
		if len(field.Rect) == 4 {
			text += fmt.Sprintf("   Rect: [%.1f %.1f %.1f %.1f]\n",
				field.Rect[0], field.Rect[1], field.Rect[2], field.Rect[3])
		}
		if field.ContextText != "" {
			text += fmt.Sprintf("   Label: %s\n", field.ContextText)
		}
		if len(field.Options) > 0 {
			text += fmt.Sprintf("   Options: %s\n", strings.Join(field.Options, ", "))
		}
		if field.Value != "" {
			text += fmt.Sprintf("   Value: %s\n", field.Value)
		}
		if field.Required {
			text += "   Required: true\n"
		}
		if field.ReadOnly {
			text += "   Read-only: true\n"
		}
		if field.Understanding != "" {
			text += fmt.Sprintf("   Understanding: %s\n", field.Understanding)
		}
		if i < len(result.Fields)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatPDFFormStatsResult(result *pdf.PDFFormStatsResult) string {
	text := "PDF Form Statistics\n"
	text += fmt.Sprintf("File: %s\n", result.Path)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Modified: %s\n", result.ModifiedDate)

	if result.Title != "" {
		text += fmt.Sprintf("Title: %s\n", result.Title)
	}
	if result.Author != "" {
		text += fmt.Sprintf("Author: %s\n", result.Author)
	}

	text += fmt.Sprintf("Total form fields: %d\n", result.TotalFields)
	text += fmt.Sprintf("Named fields: %d\n", result.NamedFields)

	if len(result.FieldsByType) > 0 {
		types := make([]string, 0, len(result.FieldsByType))
		for fieldType := range result.FieldsByType {
			types = append(types, fieldType)
		}
		sort.Strings(types)

		text += "Fields by type:\n"
		for _, fieldType := range types {
			text += fmt.Sprintf("  %s: %d\n", fieldType, result.FieldsByType[fieldType])
		}
	}

	text += fmt.Sprintf("Fields with options: %d\n", result.FieldsWithOptions)
	text += fmt.Sprintf("Labeled fields: %d\n", result.LabeledFields)
	text += fmt.Sprintf("Unlabeled fields: %d\n", result.UnlabeledFields)
	text += fmt.Sprintf("Read-only fields: %d\n", result.ReadOnlyFields)
	text += fmt.Sprintf("Required fields: %d\n", result.RequiredFields)

	return text
}

func (s *Server) formatPDFFillFormResult(result *pdf.PDFFillFormResult) string {
	text := fmt.Sprintf("Filled %d of %d form fields in %s\n",
		result.FilledCount, result.TotalFields, result.Path)
	text += fmt.Sprintf("Output: %s\n", result.OutputPath)

	if len(result.UnmatchedKeys) > 0 {
		text += fmt.Sprintf("Unmatched mapping keys: %s\n", strings.Join(result.UnmatchedKeys, ", "))
	}

	return text
}

func (s *Server) formatPDFAutoFillFormResult(result *pdf.PDFAutoFillFormResult) string {
	text := fmt.Sprintf("Filled %d of %d form fields in %s\n",
		result.FilledCount, result.TotalFields, result.Path)
	text += fmt.Sprintf("Source text: %s\n", result.TextPath)
	text += fmt.Sprintf("Output: %s\n", result.OutputPath)
	text += fmt.Sprintf("Mapping saved to: %s\n", result.MappingPath)

	if len(result.Mapping) > 0 {
		names := make([]string, 0, len(result.Mapping))
		for name := range result.Mapping {
			names = append(names, name)
		}
		sort.Strings(names)

		text += "\nMapped values:\n"
		for _, name := range names {
			text += fmt.Sprintf("  %s: %v\n", name, result.Mapping[name])
		}
	}

	if len(result.UnmatchedKeys) > 0 {
		text += fmt.Sprintf("\nUnmatched mapping keys: %s\n", strings.Join(result.UnmatchedKeys, ", "))
	}

	return text
}

func (s *Server) formatPDFDescribeFormFieldsResult(result *pdf.PDFDescribeFormFieldsResult) string {
	text := fmt.Sprintf("Form field descriptions for: %s\n", result.Path)
	text += fmt.Sprintf("Described %d of %d fields\n", result.DescribedCount, len(result.Fields))

	text += "\nFields:\n"
	for i, field := range result.Fields {
		text += fmt.Sprintf("%d. %s (%s)\n", i+1, field.Name, field.Type)
		if field.ContextText != "" {
			text += fmt.Sprintf("   Label: %s\n", field.ContextText)
		}
		if field.Understanding != "" {
			text += fmt.Sprintf("   Description: %s\n", field.Understanding)
		}
	}

	if len(result.MissingFields) > 0 {
		text += fmt.Sprintf("\nFields without a description: %s\n", strings.Join(result.MissingFields, ", "))
	}

	return text
}

func (s *Server) formatPDFSearchDirectoryResult(result *pdf.PDFSearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatPDFServerInfoResult(result *pdf.PDFServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", result.DefaultDirectory)
	if result.OutputDirectory != "" {
		text += fmt.Sprintf("📁 Output Directory: %s\n", result.OutputDirectory)
	}
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", result.MaxFileSize/(1024*1024))

	// Directory contents
	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No PDF files found in default directory\n\n"
	}

	// Available tools
	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	// Usage guidance
	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	} else {
		return s.runStdioMode(ctx)
	}
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting PDF form server in stdio mode")
		log.Printf("PDF directory: %s", s.config.PDFDirectory)
		if s.config.OutputDirectory != "" {
			log.Printf("Output directory: %s", s.config.OutputDirectory)
		}
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// For now, we'll just use stdio mode since the mark3labs library
	// handles the transport differently
	log.Printf("Server mode not yet implemented with mark3labs/mcp-go")
	log.Printf("Falling back to stdio mode")
	return s.runStdioMode(ctx)
}
