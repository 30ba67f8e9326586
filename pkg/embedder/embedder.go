package embedder

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"math/rand"

	"github.com/fatih/color"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Mode selects between live provider calls and the deterministic stub. The
// stub exists to keep the pipeline runnable without credentials; its vectors
// carry no meaning and must never back a production index.
type Mode string

const (
	ModeLive Mode = "live"
	ModeStub Mode = "stub"
)

// EmbedderConfig represents the configuration for an embedding client.
type EmbedderConfig struct {
	Mode      Mode
	Provider  string // "openai" or "ollama"
	Model     string
	BaseURL   string // Ollama server URL
	APIKey    string // OpenAI key
	Dimension int
}

// embeddingClient is the slice of the provider SDK the embedder needs. Both
// langchaingo's openai.LLM and ollama.LLM satisfy it.
type embeddingClient interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

type Embedder struct {
	config EmbedderConfig
	client embeddingClient
}

func NewWithConfig(config EmbedderConfig) (*Embedder, error) {
	if config.Mode == "" {
		config.Mode = ModeLive
	}
	if config.Provider == "" {
		config.Provider = "ollama"
	}
	if config.Dimension == 0 {
		config.Dimension = 1536
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}

	e := &Embedder{config: config}

	switch config.Mode {
	case ModeStub:
		log.Printf("%s embedder running in stub mode: vectors are deterministic noise, not semantics",
			color.YellowString("WARN"))
		return e, nil
	case ModeLive:
	default:
		return nil, fmt.Errorf("unknown embedding mode %q", config.Mode)
	}

	switch config.Provider {
	case "openai":
		if config.APIKey == "" {
			return nil, fmt.Errorf("openai embedder: %w", ErrMissingCredentials)
		}
		if config.Model == "" {
			config.Model = "text-embedding-3-small"
		}
		client, err := openai.New(
			openai.WithToken(config.APIKey),
			openai.WithEmbeddingModel(config.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai embedder: %w", err)
		}
		e.client = client
	case "ollama":
		if config.Model == "" {
			config.Model = "nomic-embed-text:latest"
		}
		client, err := ollama.New(
			ollama.WithModel(config.Model),
			ollama.WithServerURL(config.BaseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ollama embedder: %w", err)
		}
		e.client = client
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", config.Provider)
	}

	e.config = config
	return e, nil
}

// Embed returns one vector per input text, in input order. Provider errors
// propagate to the caller; retries belong at the call site.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if e.config.Mode == ModeStub {
		out := make([][]float32, len(texts))
		for i, t := range texts {
			out[i] = stubVector(t, e.config.Dimension)
		}
		return out, nil
	}

	vectors, err := e.client.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(vectors))
	}
	return vectors, nil
}

func (e *Embedder) Dimension() int {
	return e.config.Dimension
}

// stubVector derives a reproducible vector from the text itself so repeated
// embeds of the same input agree, which the round-trip tests rely on.
func stubVector(text string, dim int) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = rng.Float32()
	}
	return vec
}
