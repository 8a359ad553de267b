package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/acrofill/acrofill/internal/llm"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the PDF form fill server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// PDF configuration
	PDFDirectory    string
	OutputDirectory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes

	// Language model configuration
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

// DefaultConfig returns a configuration with sensible defaults. API keys
// default to the conventional GEMINI_API_KEY and OPENAI_API_KEY variables
// so existing environments work without ACROFILL_ prefixed duplicates.
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:          ModeStdio, // Default to stdio mode for MCP compatibility
		Host:          DefaultHost,
		Port:          DefaultPort,
		PDFDirectory:  currentDir,
		Version:       "1.0.0",
		ServerName:    "mcp-pdf-formfill",
		LogLevel:      DefaultLogLevel,
		MaxFileSize:   DefaultMaxFileSize,
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   llm.DefaultGeminiModel,
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: "",
		OpenAIModel:   llm.DefaultOpenAIModel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}
	if cfg.OutputDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.OutputDirectory); err == nil {
			cfg.OutputDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix: ACROFILL_PDF_DIRECTORY maps to pdf-directory
	viper.SetEnvPrefix("ACROFILL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Define flags with Viper
	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("pdf-directory", cfg.PDFDirectory)
	viper.SetDefault("output-directory", cfg.OutputDirectory)
	viper.SetDefault("log-level", cfg.LogLevel)
	viper.SetDefault("max-file-size", cfg.MaxFileSize)
	viper.SetDefault("gemini-api-key", cfg.GeminiAPIKey)
	viper.SetDefault("gemini-model", cfg.GeminiModel)
	viper.SetDefault("openai-api-key", cfg.OpenAIAPIKey)
	viper.SetDefault("openai-base-url", cfg.OpenAIBaseURL)
	viper.SetDefault("openai-model", cfg.OpenAIModel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("pdf-directory", cfg.PDFDirectory, "Directory containing PDF files")
	pflag.String("output-directory", cfg.OutputDirectory, "Directory filled documents are written to (defaults to the PDF directory)")
	pflag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("max-file-size", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("gemini-api-key", cfg.GeminiAPIKey, "Gemini API key for automatic form filling")
	pflag.String("gemini-model", cfg.GeminiModel, "Gemini model used for field mapping")
	pflag.String("openai-api-key", cfg.OpenAIAPIKey, "OpenAI API key for field descriptions")
	pflag.String("openai-base-url", cfg.OpenAIBaseURL, "OpenAI-compatible base URL (empty for the official endpoint)")
	pflag.String("openai-model", cfg.OpenAIModel, "OpenAI model used for field descriptions")
}

// bindFlagsToViper binds command line flags to viper configuration.
// Flag names double as viper keys, so the whole set binds at once.
func bindFlagsToViper() {
	_ = viper.BindPFlags(pflag.CommandLine)
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP PDF FormFill - A Model Context Protocol server for filling PDF forms\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --pdf-directory=/path/to/forms          "+
			"# stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --pdf-directory=/path/to/forms # server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --output-directory=/path/to/filled      "+
			"# write filled documents elsewhere\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  ACROFILL_MODE             Server mode\n")
		fmt.Fprintf(os.Stderr, "  ACROFILL_HOST             Server host\n")
		fmt.Fprintf(os.Stderr, "  ACROFILL_PORT             Server port\n")
		fmt.Fprintf(os.Stderr, "  ACROFILL_PDF_DIRECTORY    PDF directory\n")
		fmt.Fprintf(os.Stderr, "  ACROFILL_OUTPUT_DIRECTORY Output directory\n")
		fmt.Fprintf(os.Stderr, "  ACROFILL_LOG_LEVEL        Log level\n")
		fmt.Fprintf(os.Stderr, "  ACROFILL_MAX_FILE_SIZE    Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  ACROFILL_GEMINI_API_KEY   Gemini API key (falls back to GEMINI_API_KEY)\n")
		fmt.Fprintf(os.Stderr, "  ACROFILL_GEMINI_MODEL     Gemini model\n")
		fmt.Fprintf(os.Stderr, "  ACROFILL_OPENAI_API_KEY   OpenAI API key (falls back to OPENAI_API_KEY)\n")
		fmt.Fprintf(os.Stderr, "  ACROFILL_OPENAI_BASE_URL  OpenAI-compatible base URL\n")
		fmt.Fprintf(os.Stderr, "  ACROFILL_OPENAI_MODEL     OpenAI model\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("pdf-directory")
	cfg.OutputDirectory = viper.GetString("output-directory")
	cfg.LogLevel = viper.GetString("log-level")
	cfg.MaxFileSize = viper.GetInt64("max-file-size")
	cfg.GeminiAPIKey = viper.GetString("gemini-api-key")
	cfg.GeminiModel = viper.GetString("gemini-model")
	cfg.OpenAIAPIKey = viper.GetString("openai-api-key")
	cfg.OpenAIBaseURL = viper.GetString("openai-base-url")
	cfg.OpenAIModel = viper.GetString("openai-model")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate PDF directory
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Check if PDF directory exists, create if it doesn't
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	// Same for the output directory when one is configured
	if c.OutputDirectory != "" {
		if _, err := os.Stat(c.OutputDirectory); os.IsNotExist(err) {
			if err := os.MkdirAll(c.OutputDirectory, DefaultDirPerm); err != nil {
				return fmt.Errorf("cannot create output directory %s: %w", c.OutputDirectory, err)
			}
		} else if err != nil {
			return fmt.Errorf("cannot access output directory %s: %w", c.OutputDirectory, err)
		}
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration with API
// keys redacted, safe for logging
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, OutputDirectory: %s, "+
		"LogLevel: %s, MaxFileSize: %d, GeminiModel: %s, GeminiAPIKey: %s, OpenAIModel: %s, "+
		"OpenAIBaseURL: %s, OpenAIAPIKey: %s}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.OutputDirectory,
		c.LogLevel, c.MaxFileSize, c.GeminiModel, redactSecret(c.GeminiAPIKey), c.OpenAIModel,
		c.OpenAIBaseURL, redactSecret(c.OpenAIAPIKey))
}

func redactSecret(value string) string {
	if value == "" {
		return "unset"
	}
	return "redacted"
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
