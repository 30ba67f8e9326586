package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`

	LLM struct {
		PrimaryModel   string  `yaml:"primary_model"`
		SecondaryModel string  `yaml:"secondary_model"`
		FallbackModel  string  `yaml:"fallback_model"`
		OpenAIKey      string  `yaml:"openai_key"`
		OllamaBaseURL  string  `yaml:"ollama_base_url"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float64 `yaml:"temperature"`
	} `yaml:"llm"`

	Embedding struct {
		Mode        string `yaml:"mode"` // "live" or "stub"
		Provider    string `yaml:"provider"`
		Model       string `yaml:"model"`
		Dimension   int    `yaml:"dimension"`
		Hybrid      bool   `yaml:"hybrid"`
		MaxFeatures int    `yaml:"max_features"`
	} `yaml:"embedding"`

	Database struct {
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
		BatchSize int    `yaml:"batch_size"`
	} `yaml:"database"`

	Qdrant struct {
		URL        string `yaml:"url"`
		APIKey     string `yaml:"api_key"`
		Collection string `yaml:"collection"`
	} `yaml:"qdrant"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Retrieval struct {
		TopK         int      `yaml:"top_k"`
		RerankK      int      `yaml:"rerank_k"`
		MinScore     float64  `yaml:"min_score"`
		AllowedTypes []string `yaml:"allowed_types"`
	} `yaml:"retrieval"`

	Chunker struct {
		ChunkSize int `yaml:"chunk_size"`
		Overlap   int `yaml:"overlap"`
	} `yaml:"chunker"`

	Loader struct {
		RateLimit      float64 `yaml:"rate_limit"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"loader"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/scribe/config.yaml"),
			"/etc/scribe/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8000
	}

	if config.LLM.PrimaryModel == "" {
		config.LLM.PrimaryModel = "gpt-4o"
	}
	if config.LLM.SecondaryModel == "" {
		config.LLM.SecondaryModel = "mistral"
	}
	if config.LLM.OllamaBaseURL == "" {
		config.LLM.OllamaBaseURL = "http://localhost:11434"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}

	if config.Embedding.Mode == "" {
		config.Embedding.Mode = "live"
	}
	if config.Embedding.Provider == "" {
		config.Embedding.Provider = "ollama"
	}
	if config.Embedding.Dimension == 0 {
		config.Embedding.Dimension = 1536
	}
	if config.Embedding.MaxFeatures == 0 {
		config.Embedding.MaxFeatures = 1024
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "content_chunks"
	}
	if config.Database.BatchSize == 0 {
		config.Database.BatchSize = 100
	}

	if config.Qdrant.Collection == "" {
		config.Qdrant.Collection = "content_chunks"
	}

	if config.Redis.Addr == "" {
		config.Redis.Addr = "localhost:6379"
	}

	if config.Retrieval.TopK == 0 {
		config.Retrieval.TopK = 20
	}
	if config.Retrieval.RerankK == 0 {
		config.Retrieval.RerankK = 8
	}
	if config.Retrieval.MinScore == 0 {
		config.Retrieval.MinScore = 0.75
	}

	if config.Chunker.ChunkSize == 0 {
		config.Chunker.ChunkSize = 800
	}
	if config.Chunker.Overlap == 0 {
		config.Chunker.Overlap = 100
	}

	if config.Loader.RateLimit == 0 {
		config.Loader.RateLimit = 2.0
	}
	if config.Loader.TimeoutSeconds == 0 {
		config.Loader.TimeoutSeconds = 30
	}
}

func mergeWithEnv(config *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.LLM.OpenAIKey = key
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.OllamaBaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if qdrantURL := os.Getenv("QDRANT_URL"); qdrantURL != "" {
		config.Qdrant.URL = qdrantURL
	}
	if qdrantKey := os.Getenv("QDRANT_API_KEY"); qdrantKey != "" {
		config.Qdrant.APIKey = qdrantKey
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		config.Redis.Addr = redisAddr
	}
}
