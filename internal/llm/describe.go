package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/acrofill/acrofill/internal/pdf/extraction"
)

const describeSystemPrompt = "You are an AI assistant highly skilled in analyzing PDF forms. " +
	"For each form field described below, your task is to provide a concise (1-2 sentences) description " +
	"of what information or type of content is expected to be filled into that field. " +
	"Base your description on the field's properties (like its name, type, and nearby text) " +
	"AND your understanding of the entire PDF document's content, which is also provided. " +
	"Your output MUST be a single, valid JSON object. The keys of this JSON object must be the exact field names " +
	"for which details were provided, and the values must be your generated concise description strings for each field."

const noDocumentTextNote = "Note: No text could be extracted from the PDF document, or the document is text-free. " +
	"Base descriptions on field properties alone if necessary."

// DescribeFields asks the model for a short description of each named
// field and writes it into that field's Understanding, in place. The
// returned names are the fields the response did not cover.
func (s *Service) DescribeFields(ctx context.Context, fields []extraction.FormField, documentText string) ([]string, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no form fields to describe")
	}
	if s.config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("openAI API key is not configured")
	}

	prompt, names := buildDescribePrompt(documentText, fields)
	if len(names) == 0 {
		return nil, fmt.Errorf("no named form fields to describe")
	}

	body, err := s.requestDescriptions(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var descriptions map[string]any
	if err := json.Unmarshal([]byte(body), &descriptions); err != nil {
		return nil, fmt.Errorf("model response is not a JSON object: %w", err)
	}

	updated, missing := applyDescriptions(fields, names, descriptions)
	log.Printf("Applied %d field description(s), %d missing from the response", updated, len(missing))
	return missing, nil
}

// buildDescribePrompt assembles the description request. Only named
// fields participate; a text-free document is stated explicitly so the
// model falls back to field properties instead of inventing content.
func buildDescribePrompt(documentText string, fields []extraction.FormField) (string, []string) {
	var blocks []string
	var names []string
	for _, f := range fields {
		if f.Name == "" {
			continue
		}
		names = append(names, f.Name)
		blocks = append(blocks, fieldDetailBlock(f))
	}

	docText := strings.TrimSpace(documentText)
	if docText == "" {
		docText = noDocumentTextNote
	}

	var b strings.Builder
	b.WriteString("Please generate a concise (1-2 sentences) description for each of the following form fields, ")
	b.WriteString("explaining what information is expected to be filled in. Consider all information provided: ")
	b.WriteString("the properties of each field and the full text of the PDF document.\n\n")
	b.WriteString("FORM FIELDS DETAILS:\n")
	b.WriteString(strings.Join(blocks, "\n\n"))
	b.WriteString("\n\n-- FULL PDF DOCUMENT TEXT START ---\n")
	b.WriteString(docText)
	b.WriteString("\n-- FULL PDF DOCUMENT TEXT END ---\n\n")
	b.WriteString("Provide your output as a single JSON object, mapping each field name to its concise description string.")
	return b.String(), names
}

// fieldDetailBlock renders one field for the description prompt.
func fieldDetailBlock(f extraction.FormField) string {
	fieldType := string(f.Type)
	if fieldType == "" {
		fieldType = "N/A"
	}
	context := f.ContextText
	if context == "" {
		context = "N/A"
	}

	block := fmt.Sprintf("Field Name: %s\n  Type: %s\n  Nearby Contextual Text: %s", f.Name, fieldType, context)
	if len(f.Options) > 0 {
		block += fmt.Sprintf("\n  Options: %s", strings.Join(f.Options, ", "))
	}
	return block
}

// requestDescriptions runs one chat completion in JSON mode.
func (s *Service) requestDescriptions(ctx context.Context, prompt string) (string, error) {
	opts := []option.RequestOption{option.WithAPIKey(s.config.OpenAIAPIKey)}
	if s.config.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.config.OpenAIBaseURL))
	}
	client := openai.NewClient(opts...)

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.openAIModel()),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(describeSystemPrompt),
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", fmt.Errorf("description request failed: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("model returned an empty response")
	}
	return completion.Choices[0].Message.Content, nil
}

// applyDescriptions writes each returned description into its field's
// Understanding. requested lists the names sent to the model; names the
// response skipped or answered with a non-string come back as missing.
func applyDescriptions(fields []extraction.FormField, requested []string, descriptions map[string]any) (int, []string) {
	wanted := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		wanted[name] = struct{}{}
	}

	updated := 0
	var missing []string
	for i := range fields {
		name := fields[i].Name
		if _, ok := wanted[name]; !ok {
			continue
		}
		value, ok := descriptions[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		text, ok := value.(string)
		if !ok {
			log.Printf("Description for field %q is not a string, skipping", name)
			missing = append(missing, name)
			continue
		}
		fields[i].Understanding = strings.TrimSpace(text)
		updated++
	}
	return updated, missing
}
