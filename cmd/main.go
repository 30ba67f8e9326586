package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/xhad/scribe/internal/models"
	"github.com/xhad/scribe/internal/types"
	"github.com/xhad/scribe/pkg/config"
	"github.com/xhad/scribe/pkg/embedder"
	"github.com/xhad/scribe/pkg/filters"
	"github.com/xhad/scribe/pkg/formatter"
	"github.com/xhad/scribe/pkg/generator"
	"github.com/xhad/scribe/pkg/ingest"
	"github.com/xhad/scribe/pkg/loader"
	"github.com/xhad/scribe/pkg/pipeline"
	"github.com/xhad/scribe/pkg/postprocess"
	"github.com/xhad/scribe/pkg/queue"
	"github.com/xhad/scribe/pkg/retriever"
	"github.com/xhad/scribe/pkg/store"
	"github.com/xhad/scribe/server"
)

type flags struct {
	ConfigPath string
	Serve      bool
	Worker     bool
	IngestURLs string
	IngestRSS  string
	Generate   string
	Format     string
	Style      string
}

func main() {
	f := parseFlags()

	if err := run(f); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() flags {
	var f flags

	flag.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	flag.BoolVar(&f.Serve, "serve", false, "Run the HTTP API server")
	flag.BoolVar(&f.Worker, "worker", false, "Run a background generation worker")
	flag.StringVar(&f.IngestURLs, "ingest-url", "", "Comma-separated URLs to ingest")
	flag.StringVar(&f.IngestRSS, "ingest-rss", "", "Comma-separated RSS feed URLs to ingest")
	flag.StringVar(&f.Generate, "generate", "", "Generate content for the given topic and print it")
	flag.StringVar(&f.Format, "format", "markdown", "Output format: markdown, html, or plain")
	flag.StringVar(&f.Style, "style", "", "Style: professional_conversational, casual, technical, or creative")
	flag.Parse()

	return f
}

func run(f flags) error {
	cfg, err := config.LoadConfig(f.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		return fmt.Errorf("invalid config: %d error(s)", len(errs))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	emb, err := embedder.NewWithConfig(embedder.EmbedderConfig{
		Mode:      embedder.Mode(cfg.Embedding.Mode),
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		BaseURL:   cfg.LLM.OllamaBaseURL,
		APIKey:    cfg.LLM.OpenAIKey,
		Dimension: cfg.Embedding.Dimension,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %v", err)
	}

	vectorStore, err := store.Open(store.VectorStoreConfig{
		ConnString:   cfg.Database.URL,
		TableName:    cfg.Database.TableName,
		BatchSize:    cfg.Database.BatchSize,
		QdrantURL:    cfg.Qdrant.URL,
		QdrantAPIKey: cfg.Qdrant.APIKey,
		Collection:   cfg.Qdrant.Collection,
		VectorDim:    cfg.Embedding.Dimension,
		SearchLimit:  cfg.Retrieval.TopK,
	})
	if err != nil {
		return fmt.Errorf("failed to open vector store: %v", err)
	}
	defer vectorStore.Close()

	switch {
	case f.IngestURLs != "" || f.IngestRSS != "":
		return runIngest(ctx, cfg, emb, vectorStore, splitList(f.IngestURLs), splitList(f.IngestRSS))
	case f.Generate != "":
		return runGenerate(ctx, cfg, emb, vectorStore, f)
	case f.Worker:
		return runWorker(ctx, cfg, emb, vectorStore)
	case f.Serve:
		return runServe(ctx, cfg, emb, vectorStore)
	default:
		flag.Usage()
		return fmt.Errorf("nothing to do: pass -serve, -worker, -generate, -ingest-url, or -ingest-rss")
	}
}

func newPipeline(cfg *config.Config, emb *embedder.Embedder, vectorStore types.VectorStore, format formatter.Format, style formatter.Style) (*pipeline.Pipeline, error) {
	r := retriever.NewWithConfig(retriever.RetrieverConfig{
		TopK:    cfg.Retrieval.TopK,
		RerankK: cfg.Retrieval.RerankK,
		Policy: filters.Policy{
			MinScore:     float32(cfg.Retrieval.MinScore),
			AllowedTypes: cfg.Retrieval.AllowedTypes,
		},
	}, emb, vectorStore)

	g, err := generator.NewWithConfig(generator.GeneratorConfig{
		Primary:       cfg.LLM.PrimaryModel,
		Secondary:     cfg.LLM.SecondaryModel,
		Fallback:      cfg.LLM.FallbackModel,
		OpenAIKey:     cfg.LLM.OpenAIKey,
		OllamaBaseURL: cfg.LLM.OllamaBaseURL,
		MaxTokens:     cfg.LLM.MaxTokens,
		Temperature:   cfg.LLM.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generator: %v", err)
	}

	return pipeline.NewWithConfig(pipeline.PipelineConfig{
		SearchTopK:   cfg.Retrieval.TopK,
		StageTimeout: 2 * time.Minute,
		OnTransition: func(s pipeline.State) {
			log.Printf("pipeline: %s", s)
		},
	}, r, g,
		postprocess.New(nil, nil),
		formatter.NewWithConfig(formatter.FormatterConfig{
			Style:        style,
			OutputFormat: format,
			AddMetadata:  true,
		}),
	), nil
}

func runIngest(ctx context.Context, cfg *config.Config, emb *embedder.Embedder, vectorStore types.VectorStore, urls, feeds []string) error {
	color.Blue("\nIngesting %d URLs and %d feeds\n", len(urls), len(feeds))

	bar := getProgressBar(len(urls)+len(feeds), " Ingesting sources...")

	ld := loader.NewWithConfig(loader.LoaderConfig{
		RateLimit: cfg.Loader.RateLimit,
		Timeout:   time.Duration(cfg.Loader.TimeoutSeconds) * time.Second,
	})

	in := ingest.NewWithConfig(ingest.IngestConfig{
		ChunkSize: cfg.Chunker.ChunkSize,
		Overlap:   cfg.Chunker.Overlap,
		BatchSize: cfg.Database.BatchSize,
		OnProgress: func(string) {
			bar.Add(1)
		},
	}, ld, emb, vectorStore)

	if err := in.Run(ctx, urls, feeds); err != nil {
		bar.Finish()
		return fmt.Errorf("ingest failed: %v", err)
	}
	bar.Finish()

	color.Green("✓ Ingest complete\n")
	return nil
}

func runGenerate(ctx context.Context, cfg *config.Config, emb *embedder.Embedder, vectorStore types.VectorStore, f flags) error {
	p, err := newPipeline(cfg, emb, vectorStore, formatter.Format(f.Format), formatter.Style(f.Style))
	if err != nil {
		return err
	}

	spinner := getSpinner(" Generating content...")
	result, err := p.Run(ctx, pipeline.Request{
		ContentRequest: models.ContentRequest{Topic: f.Generate},
	})
	spinner.Finish()

	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(result.FormattedText)
	return nil
}

func runWorker(ctx context.Context, cfg *config.Config, emb *embedder.Embedder, vectorStore types.VectorStore) error {
	p, err := newPipeline(cfg, emb, vectorStore, formatter.FormatMarkdown, "")
	if err != nil {
		return err
	}

	q, err := queue.NewWithConfig(queue.QueueConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %v", err)
	}
	defer q.Close()

	color.Cyan("worker started, waiting for tasks")

	return q.Work(ctx, func(ctx context.Context, payload []byte) ([]byte, error) {
		var req pipeline.Request
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("bad task payload: %v", err)
		}

		result, err := p.Run(ctx, req)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	})
}

func runServe(ctx context.Context, cfg *config.Config, emb *embedder.Embedder, vectorStore types.VectorStore) error {
	p, err := newPipeline(cfg, emb, vectorStore, formatter.FormatMarkdown, "")
	if err != nil {
		return err
	}

	// Async endpoints need Redis; without it the server still answers
	// synchronous requests. taskQueue stays a nil interface unless the
	// connection succeeds.
	var taskQueue types.Queue
	if cfg.Redis.Addr != "" {
		q, err := queue.NewWithConfig(queue.QueueConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Printf("%s redis unavailable, async endpoints disabled: %v", color.YellowString("WARN"), err)
		} else {
			defer q.Close()
			taskQueue = q
		}
	}

	s := server.NewWithConfig(server.ServerConfig{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, p, taskQueue)

	return s.ListenAndServe(ctx)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("items"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
