// Package main implements the acrofill command line tool for inspecting,
// mapping, and filling PDF form fields.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/acrofill/acrofill/internal/llm"
	"github.com/acrofill/acrofill/internal/pdf"
	"github.com/acrofill/acrofill/internal/pdf/extraction"
	"github.com/acrofill/acrofill/internal/pdf/fill"
	"github.com/acrofill/acrofill/internal/pdf/proximity"
	"github.com/acrofill/acrofill/internal/pdf/words"
)

// Version information for the CLI
var version = "dev" // This will be set by build flags

const (
	formatText = "text"
	formatJSON = "json"
)

// catalogOutput is the JSON shape produced by the extract and describe
// commands.
type catalogOutput struct {
	Path          string                 `json:"path"`
	Pages         int                    `json:"pages"`
	TotalCount    int                    `json:"total_count"`
	Fields        []extraction.FormField `json:"fields"`
	MissingFields []string               `json:"missing_fields,omitempty"`
}

// mappingOutput is the JSON shape produced by the map command.
type mappingOutput struct {
	Path        string           `json:"path"`
	MappingPath string           `json:"mapping_path"`
	Mapping     llm.FieldMapping `json:"mapping"`
}

func main() {
	log.SetFlags(0)

	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "acrofill",
		Usage:   "Inspect, map, and fill PDF form fields",
		Version: version,
		Commands: []*cli.Command{
			extractCommand(),
			mapCommand(),
			fillCommand(),
			autofillCommand(),
			describeCommand(),
		},
	}
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "List the form fields of a PDF with their label context",
		Flags: []cli.Flag{
			inputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			input := cmd.String("input")
			fields, pages, err := extractCatalog(input)
			if err != nil {
				return err
			}
			if format == formatJSON {
				return printJSON(catalogOutput{
					Path:       input,
					Pages:      pages,
					TotalCount: len(fields),
					Fields:     fields,
				})
			}
			printCatalog(input, fields, pages)
			return nil
		},
	}
}

func mapCommand() *cli.Command {
	return &cli.Command{
		Name:  "map",
		Usage: "Map values from a text document onto form fields using Gemini",
		Flags: []cli.Flag{
			inputFlag(),
			textFlag(),
			mappingFlag("where to save the mapping JSON", false),
			outputDirFlag(),
			modelFlag("Gemini model to use"),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			input := cmd.String("input")
			fields, _, err := extractCatalog(input)
			if err != nil {
				return err
			}
			mappingPath := cmd.String("mapping")
			if mappingPath == "" {
				mappingPath = filepath.Join(outputDir(cmd, input), llm.DefaultMappingName)
			}
			service := newLLMService(cmd.String("model"), "")
			mapping, err := service.MapFieldValues(ctx, fields, cmd.String("text"), mappingPath)
			if err != nil {
				return err
			}
			if len(mapping) == 0 {
				return fmt.Errorf("model produced no field mapping for %s", input)
			}
			if format == formatJSON {
				return printJSON(mappingOutput{
					Path:        input,
					MappingPath: mappingPath,
					Mapping:     mapping,
				})
			}
			fmt.Printf("Mapped %d field(s), saved to %s\n", len(mapping), mappingPath)
			printMapping(mapping)
			return nil
		},
	}
}

func fillCommand() *cli.Command {
	return &cli.Command{
		Name:  "fill",
		Usage: "Fill form fields from a saved mapping file",
		Flags: []cli.Flag{
			inputFlag(),
			mappingFlag("path to the mapping JSON", true),
			outputFlag(),
			outputDirFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			input := cmd.String("input")
			mapping, err := fill.LoadMapping(cmd.String("mapping"))
			if err != nil {
				return err
			}
			result, err := fillForm(cmd, input, mapping)
			if err != nil {
				return err
			}
			if format == formatJSON {
				return printJSON(result)
			}
			printFillResult(result)
			return nil
		},
	}
}

func autofillCommand() *cli.Command {
	return &cli.Command{
		Name:  "autofill",
		Usage: "Map values from a text document and fill the form in one step",
		Flags: []cli.Flag{
			inputFlag(),
			textFlag(),
			mappingFlag("where to save the intermediate mapping JSON", false),
			outputFlag(),
			outputDirFlag(),
			modelFlag("Gemini model to use"),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			input := cmd.String("input")
			fields, _, err := extractCatalog(input)
			if err != nil {
				return err
			}
			mappingPath := cmd.String("mapping")
			if mappingPath == "" {
				mappingPath = filepath.Join(outputDir(cmd, input), llm.DefaultMappingName)
			}
			service := newLLMService(cmd.String("model"), "")
			mapping, err := service.MapFieldValues(ctx, fields, cmd.String("text"), mappingPath)
			if err != nil {
				return err
			}
			if len(mapping) == 0 {
				return fmt.Errorf("model produced no field mapping for %s", input)
			}
			result, err := fillForm(cmd, input, mapping)
			if err != nil {
				return err
			}
			if format == formatJSON {
				return printJSON(result)
			}
			fmt.Printf("Mapping saved to %s\n", mappingPath)
			printMapping(mapping)
			printFillResult(result)
			return nil
		},
	}
}

func describeCommand() *cli.Command {
	return &cli.Command{
		Name:  "describe",
		Usage: "Generate plain language descriptions of form fields using OpenAI",
		Flags: []cli.Flag{
			inputFlag(),
			modelFlag("OpenAI model to use"),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			input := cmd.String("input")
			fields, pages, err := extractCatalog(input)
			if err != nil {
				return err
			}
			documentText, err := words.NewExtractor().DocumentText(input)
			if err != nil {
				log.Printf("Warning: could not extract document text from %s: %v", input, err)
				documentText = ""
			}
			service := newLLMService("", cmd.String("model"))
			missing, err := service.DescribeFields(ctx, fields, documentText)
			if err != nil {
				return err
			}
			if format == formatJSON {
				return printJSON(catalogOutput{
					Path:          input,
					Pages:         pages,
					TotalCount:    len(fields),
					Fields:        fields,
					MissingFields: missing,
				})
			}
			printCatalog(input, fields, pages)
			if len(missing) > 0 {
				fmt.Printf("\nFields without a description: %s\n", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}

func inputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "path to the PDF form",
		Required: true,
	}
}

func textFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "text",
		Aliases:  []string{"t"},
		Usage:    "path to the text document values are read from",
		Required: true,
	}
}

func mappingFlag(usage string, required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "mapping",
		Aliases:  []string{"m"},
		Usage:    usage,
		Required: required,
	}
}

func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "where to write the filled PDF",
	}
}

func outputDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "output-dir",
		Usage: "directory for generated files (defaults to the input's directory)",
	}
}

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "format",
		Usage: "output format: text or json",
		Value: formatText,
	}
}

func modelFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "model",
		Usage: usage,
	}
}

// outputFormat validates the --format flag.
func outputFormat(cmd *cli.Command) (string, error) {
	format := cmd.String("format")
	switch format {
	case formatText, formatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// outputDir resolves the directory generated files land in.
func outputDir(cmd *cli.Command, inputPath string) string {
	if dir := cmd.String("output-dir"); dir != "" {
		return dir
	}
	return filepath.Dir(inputPath)
}

// extractCatalog reads the form field catalog of a PDF and attaches
// nearby label text to each field.
func extractCatalog(path string) ([]extraction.FormField, int, error) {
	fields, err := extraction.NewExtractor().ExtractFormFields(path)
	if err != nil {
		return nil, 0, err
	}
	_, pages := pdf.AttachContext(words.NewExtractor(), proximity.NewEngine(), path, fields)
	return fields, pages, nil
}

// fillForm writes the filled PDF, defaulting the output path to
// <stem>_filled.pdf next to the input or under --output-dir.
func fillForm(cmd *cli.Command, input string, mapping map[string]interface{}) (*fill.Result, error) {
	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = filepath.Join(outputDir(cmd, input), fill.DefaultOutputName(input))
	}
	return fill.NewFiller().Fill(input, mapping, outputPath)
}

// newLLMService builds the model service from environment keys. The
// --model flag overrides the provider default.
func newLLMService(geminiModel, openAIModel string) *llm.Service {
	return llm.NewService(llm.Config{
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   geminiModel,
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:   openAIModel,
	})
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printCatalog(path string, fields []extraction.FormField, pages int) {
	fmt.Printf("%s: %d page(s), %d form field(s)\n", path, pages, len(fields))
	for i, field := range fields {
		fmt.Printf("\n[%d] %s\n", i+1, field.Name)
		fmt.Printf("    Type: %s\n", field.Type)
		fmt.Printf("    Page: %d\n", field.Page+1)
		if len(field.Rect) == 4 {
			fmt.Printf("    Rect: [%.1f %.1f %.1f %.1f]\n", field.Rect[0], field.Rect[1], field.Rect[2], field.Rect[3])
		}
		if field.ContextText != "" {
			fmt.Printf("    Label: %s\n", field.ContextText)
		}
		if len(field.Options) > 0 {
			fmt.Printf("    Options: %s\n", strings.Join(field.Options, ", "))
		}
		if field.Value != "" {
			fmt.Printf("    Value: %s\n", field.Value)
		}
		if field.Required {
			fmt.Printf("    Required: true\n")
		}
		if field.ReadOnly {
			fmt.Printf("    Read-only: true\n")
		}
		if field.Understanding != "" {
			fmt.Printf("    Description: %s\n", field.Understanding)
		}
	}
}

func printMapping(mapping llm.FieldMapping) {
	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %v\n", name, mapping[name])
	}
}

func printFillResult(result *fill.Result) {
	fmt.Printf("Filled %d of %d form fields\n", result.FilledCount, result.TotalFields)
	fmt.Printf("Output: %s\n", result.OutputPath)
	if len(result.UnmatchedKeys) > 0 {
		fmt.Printf("Unmatched mapping keys: %s\n", strings.Join(result.UnmatchedKeys, ", "))
	}
}
