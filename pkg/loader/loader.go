// Package loader fetches raw documents from the outside world: web pages
// and RSS feeds. Loaders stay small and return plain documents; cleaning
// beyond whitespace normalization belongs to later stages.
package loader

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/xhad/scribe/internal/models"
	"golang.org/x/time/rate"
)

type LoaderConfig struct {
	RateLimit float64 // requests per second against remote hosts
	Timeout   time.Duration
}

type Loader struct {
	config  LoaderConfig
	client  *http.Client
	limiter *rate.Limiter
	parser  *gofeed.Parser
}

func NewWithConfig(config LoaderConfig) *Loader {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2
	}

	client := &http.Client{Timeout: config.Timeout}
	parser := gofeed.NewParser()
	parser.Client = client

	return &Loader{
		config:  config,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		parser:  parser,
	}
}

// LoadURL fetches one page and extracts its visible text.
func (l *Loader) LoadURL(ctx context.Context, url string) (models.Document, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return models.Document{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Document{}, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Document{}, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	doc.Find("script, style, noscript").Remove()
	text := cleanText(doc.Find("body").Text())

	return models.Document{
		ID:        uuid.NewString(),
		Text:      text,
		SourceURL: url,
		Metadata: map[string]interface{}{
			"source": url,
		},
	}, nil
}

// LoadRSS fetches a feed and returns one document per entry, preferring the
// entry summary and falling back to the title.
func (l *Loader) LoadRSS(ctx context.Context, feedURL string) ([]models.Document, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := l.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}

	docs := make([]models.Document, 0, len(feed.Items))
	for _, item := range feed.Items {
		text := item.Description
		if text == "" {
			text = item.Title
		}
		meta := map[string]interface{}{
			"title": item.Title,
		}
		if item.Published != "" {
			meta["published"] = item.Published
		}
		docs = append(docs, models.Document{
			ID:        uuid.NewString(),
			Text:      cleanText(text),
			SourceURL: item.Link,
			Metadata:  meta,
		})
	}
	return docs, nil
}

// cleanText normalizes intra-line whitespace but keeps blank lines as
// paragraph boundaries for the chunker.
func cleanText(text string) string {
	lines := strings.Split(text, "\n")

	var out []string
	blank := true
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
