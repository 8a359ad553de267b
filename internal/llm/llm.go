// Package llm maps document text onto form fields and describes fields
// using hosted language models: Gemini for value mapping, an OpenAI
// compatible endpoint for field descriptions. Prompt assembly is local
// and deterministic; only the final generation calls leave the process.
package llm

// Defaults used when the configuration leaves the matching knob empty.
const (
	DefaultGeminiModel = "gemini-2.0-flash-001"
	DefaultOpenAIModel = "gpt-4o"

	// DefaultMappingName is the filename a generated mapping is saved
	// under when the caller does not pick one.
	DefaultMappingName = "auto_fill_mapping.json"

	defaultSystemInstruction = "You are a helpful assistant that can extract information from text and fill out PDF forms accurately. Always respond with valid JSON."
	defaultMappingPrompt     = "Extract relevant information from the provided text and fill out the form fields with appropriate values:"
)

// Config carries API credentials and model choices. Empty model,
// instruction and prompt values fall back to the defaults above; the API
// keys have no fallback and gate their respective operations.
type Config struct {
	GeminiAPIKey      string
	GeminiModel       string
	SystemInstruction string
	MappingPrompt     string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

// FieldMapping is a decoded model response: field name to value.
type FieldMapping = map[string]any

// Service runs the model-backed operations.
type Service struct {
	config Config
}

// NewService creates a model service with the given configuration.
func NewService(config Config) *Service {
	return &Service{config: config}
}

func (s *Service) geminiModel() string {
	if s.config.GeminiModel != "" {
		return s.config.GeminiModel
	}
	return DefaultGeminiModel
}

func (s *Service) openAIModel() string {
	if s.config.OpenAIModel != "" {
		return s.config.OpenAIModel
	}
	return DefaultOpenAIModel
}

func (s *Service) systemInstruction() string {
	if s.config.SystemInstruction != "" {
		return s.config.SystemInstruction
	}
	return defaultSystemInstruction
}

func (s *Service) mappingPrompt() string {
	if s.config.MappingPrompt != "" {
		return s.config.MappingPrompt
	}
	return defaultMappingPrompt
}
