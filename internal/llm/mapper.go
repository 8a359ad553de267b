package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/acrofill/acrofill/internal/pdf/extraction"
)

// MapFieldValues asks Gemini to pull a value for each named field out of
// the text file at textPath and saves the decoded mapping to mappingPath
// (skipped when empty). Bad inputs are errors; an unusable model response
// is not. That case yields an empty mapping so the caller can decide
// whether an empty result is fatal for its workflow.
func (s *Service) MapFieldValues(ctx context.Context, fields []extraction.FormField, textPath, mappingPath string) (FieldMapping, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no form fields to map")
	}
	if s.config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}

	data, err := os.ReadFile(textPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read text content file: %w", err)
	}
	textContent := string(data)
	if strings.TrimSpace(textContent) == "" {
		return nil, fmt.Errorf("text content file %s is empty", textPath)
	}

	prompt, names := buildMappingPrompt(s.mappingPrompt(), textContent, fields)
	if len(names) == 0 {
		return nil, fmt.Errorf("no named form fields to map")
	}

	body, err := s.generateMapping(ctx, prompt)
	if err != nil {
		log.Printf("Field mapping request failed: %v", err)
		return FieldMapping{}, nil
	}

	mapping, err := parseMappingResponse(body)
	if err != nil {
		log.Printf("Failed to parse field mapping response: %v", err)
		return FieldMapping{}, nil
	}

	if mappingPath != "" {
		if err := SaveMapping(mapping, mappingPath); err != nil {
			log.Printf("Failed to save field mapping to %s: %v", mappingPath, err)
		}
	}
	return mapping, nil
}

// generateMapping runs one Gemini completion. Temperature is kept low:
// the task is extraction, not generation.
func (s *Service) generateMapping(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.config.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature:        genai.Ptr[float32](0.2),
		TopP:               genai.Ptr[float32](0.9),
		MaxOutputTokens:    4096,
		ResponseModalities: []string{"TEXT"},
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdOff},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdOff},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdOff},
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdOff},
		},
		SystemInstruction: genai.NewContentFromText(s.systemInstruction(), genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, s.geminiModel(),
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, config)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return resp.Text(), nil
}

// parseMappingResponse decodes the model output, tolerating prose around
// the JSON object by slicing from the first "{" to the last "}".
func parseMappingResponse(body string) (FieldMapping, error) {
	jsonStr := body
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start >= 0 && end > start {
		jsonStr = body[start : end+1]
	}

	var mapping FieldMapping
	if err := json.Unmarshal([]byte(jsonStr), &mapping); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if mapping == nil {
		return nil, fmt.Errorf("response is not a JSON object")
	}
	return mapping, nil
}
