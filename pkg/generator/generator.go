package generator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/xhad/scribe/internal/models"
	"github.com/xhad/scribe/pkg/prompt"
)

// GeneratorConfig represents the configuration for the generation engine.
// Primary, Secondary, and Fallback name the models tried in order when the
// request does not pin one.
type GeneratorConfig struct {
	Primary   string
	Secondary string
	Fallback  string

	OpenAIKey     string
	OllamaBaseURL string
	MaxTokens     int
	Temperature   float64
}

// Generator invokes a language model with a built prompt, walking the
// fallback chain on provider failure. Transient-failure retry beyond the
// chain belongs to the caller.
type Generator struct {
	config GeneratorConfig
}

func NewWithConfig(config GeneratorConfig) (*Generator, error) {
	if config.Primary == "" {
		config.Primary = "gpt-4o"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.OllamaBaseURL == "" {
		config.OllamaBaseURL = "http://localhost:11434"
	}

	return &Generator{config: config}, nil
}

// Generate builds the prompt from the request and context, then tries each
// model in the chain until one answers. The returned metadata carries the
// ids of the context documents under "used_docs".
func (g *Generator) Generate(ctx context.Context, req models.ContentRequest, contextDocs []models.RetrievalCandidate, cfg models.GenerationConfig) (*models.GeneratedResult, error) {
	userPrompt := prompt.Build(req, contextDocs)

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, prompt.SystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = g.config.Temperature
	}

	var lastErr error
	for _, name := range g.chain(cfg.Model) {
		model, err := g.newModel(name)
		if err != nil {
			lastErr = err
			continue
		}

		resp, err := model.GenerateContent(ctx, content,
			llms.WithTemperature(temperature),
			llms.WithMaxTokens(g.config.MaxTokens),
		)
		if err != nil {
			log.Printf("model %s failed, trying next in chain: %v", name, err)
			lastErr = fmt.Errorf("model %s: %w", name, err)
			continue
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
			lastErr = fmt.Errorf("model %s returned no content", name)
			continue
		}

		usedDocs := make([]string, 0, len(contextDocs))
		for _, d := range contextDocs {
			usedDocs = append(usedDocs, d.ID)
		}

		return &models.GeneratedResult{
			GeneratedText: resp.Choices[0].Content,
			Model:         name,
			Metadata: map[string]interface{}{
				"used_docs": usedDocs,
			},
		}, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no models configured")
	}
	return nil, fmt.Errorf("generation failed: %w", lastErr)
}

// chain lists the model names to try, the request's pick first, without
// duplicates or blanks.
func (g *Generator) chain(requested string) []string {
	ordered := []string{requested, g.config.Primary, g.config.Secondary, g.config.Fallback}

	var out []string
	seen := make(map[string]bool)
	for _, name := range ordered {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// newModel picks the provider by model name: OpenAI model families go to the
// OpenAI client when a key is configured, everything else to Ollama.
func (g *Generator) newModel(name string) (llms.Model, error) {
	if g.config.OpenAIKey != "" && isOpenAIModel(name) {
		return openai.New(
			openai.WithToken(g.config.OpenAIKey),
			openai.WithModel(name),
		)
	}
	return ollama.New(
		ollama.WithModel(name),
		ollama.WithServerURL(g.config.OllamaBaseURL),
	)
}

func isOpenAIModel(name string) bool {
	return strings.HasPrefix(name, "gpt-") || strings.HasPrefix(name, "o1") || strings.HasPrefix(name, "o3")
}
