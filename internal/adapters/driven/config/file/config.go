package file

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where configuration is looked up when no --config
// flag is given.
const DefaultConfigPath = "config.yaml"

// Config holds the full application configuration as loaded from YAML.
type Config struct {
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Postgres PostgresConfig `yaml:"postgres"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Query    QueryConfig    `yaml:"query"`
}

// OpenAIConfig configures the embedding and chat model provider.
type OpenAIConfig struct {
	// APIKey authenticates against the provider. The OPENAI_API_KEY
	// environment variable overrides the file value.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the API endpoint for compatible providers.
	BaseURL string `yaml:"base_url"`

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string `yaml:"embedding_model"`

	// ChatModel is the chat completion model name.
	ChatModel string `yaml:"chat_model"`
}

// PostgresConfig configures the document store connection.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DBName   string `yaml:"dbname"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// IngestConfig configures the ingestion pipeline.
type IngestConfig struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int `yaml:"chunk_size"`

	// ChunkOverlap is the number of characters repeated between
	// consecutive chunks.
	ChunkOverlap int `yaml:"chunk_overlap"`

	// BatchSize is how many chunks are embedded per provider request.
	BatchSize int `yaml:"batch_size"`
}

// QueryConfig configures the query pipeline.
type QueryConfig struct {
	// MaxContextTokens is the approximate token budget for assembled
	// context.
	MaxContextTokens int `yaml:"max_context_tokens"`

	// PromptFile is the path of the answer-generation prompt template.
	PromptFile string `yaml:"prompt_file"`
}

// defaults returns the configuration used when fields are absent from the
// file.
func defaults() Config {
	return Config{
		OpenAI: OpenAIConfig{
			EmbeddingModel: "text-embedding-3-small",
			ChatModel:      "gpt-4o-mini",
		},
		Postgres: PostgresConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Ingest: IngestConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			BatchSize:    100,
		},
		Query: QueryConfig{
			MaxContextTokens: 3000,
			PromptFile:       "rag_prompt.md",
		},
	}
}

// LoadConfig reads the YAML file at path, applies defaults for missing
// fields and environment overrides, and validates the result. A missing
// file is an error: the connection and API settings have no usable
// zero values.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyEnv overrides file values with environment variables where set.
func (c *Config) applyEnv() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.OpenAI.APIKey = key
	}
	if password := os.Getenv("OCEANRAG_DB_PASSWORD"); password != "" {
		c.Postgres.Password = password
	}
}

// Validate reports the first fatal configuration problem. Invalid
// configuration stops the program before any pipeline work starts.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required (or set OPENAI_API_KEY)")
	}
	if c.Postgres.DBName == "" {
		return fmt.Errorf("postgres.dbname is required")
	}
	if c.Postgres.User == "" {
		return fmt.Errorf("postgres.user is required")
	}
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("ingest.chunk_size must be positive")
	}
	if c.Ingest.ChunkOverlap < 0 {
		return fmt.Errorf("ingest.chunk_overlap must not be negative")
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap must be smaller than ingest.chunk_size")
	}
	if c.Ingest.BatchSize <= 0 {
		return fmt.Errorf("ingest.batch_size must be positive")
	}
	if c.Query.MaxContextTokens <= 0 {
		return fmt.Errorf("query.max_context_tokens must be positive")
	}
	return nil
}
