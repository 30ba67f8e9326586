// Package formatter applies the final style and output-format pass and
// attaches provenance metadata.
package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/xhad/scribe/internal/models"
	"github.com/xhad/scribe/pkg/postprocess"
)

// Style names the supported tone transforms. Only casual has concrete
// behavior today; technical and creative are extension points.
type Style string

const (
	StyleCasual       Style = "casual"
	StyleTechnical    Style = "technical"
	StyleCreative     Style = "creative"
	StyleProfessional Style = "professional_conversational"
)

// Format names the supported output encodings.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatPlain    Format = "plain"
)

// FormatterConfig sets the transforms applied to every result.
type FormatterConfig struct {
	Style        Style
	OutputFormat Format
	AddMetadata  bool
}

type Formatter struct {
	config FormatterConfig
}

func NewWithConfig(config FormatterConfig) Formatter {
	if config.Style == "" {
		config.Style = StyleProfessional
	}
	if config.OutputFormat == "" {
		config.OutputFormat = FormatMarkdown
	}
	return Formatter{config: config}
}

// Format normalizes whitespace, applies the style and output transforms, and
// optionally attaches the provenance metadata block.
func (f *Formatter) Format(processed *models.ProcessedResult) *models.FormattedResult {
	text := postprocess.NormalizeWhitespace(processed.CleanedText)
	text = applyStyle(text, f.config.Style)

	switch f.config.OutputFormat {
	case FormatMarkdown:
		text = toMarkdown(text, titleOf(processed.Metadata))
	case FormatHTML:
		text = fmt.Sprintf("<html><body><p>%s</p></body></html>", text)
	case FormatPlain:
	}

	result := &models.FormattedResult{FormattedText: text}

	if f.config.AddMetadata {
		var sources interface{}
		if processed.Metadata != nil {
			sources = processed.Metadata["used_docs"]
		}
		result.Metadata = map[string]interface{}{
			"model":         processed.Model,
			"generated_at":  time.Now().UTC().Format("2006-01-02T15:04:05Z"),
			"sources":       sources,
			"style_applied": string(f.config.Style),
			"format":        string(f.config.OutputFormat),
		}
	}

	return result
}

var contractions = []struct{ from, to string }{
	{"do not", "don't"},
	{"Do not", "Don't"},
	{"cannot", "can't"},
	{"Cannot", "Can't"},
	{"will not", "won't"},
	{"Will not", "Won't"},
	{"it is", "it's"},
	{"It is", "It's"},
}

func applyStyle(text string, style Style) string {
	switch style {
	case StyleCasual:
		for _, c := range contractions {
			text = strings.ReplaceAll(text, c.from, c.to)
		}
	case StyleTechnical:
		// Extension point: sentence shortening, passive-voice reduction.
	case StyleCreative:
		// Extension point: sign-offs, figurative phrasing.
	}
	return text
}

func toMarkdown(text, title string) string {
	if title == "" {
		return text
	}
	return fmt.Sprintf("# %s\n\n%s", title, text)
}

func titleOf(metadata map[string]interface{}) string {
	if metadata == nil {
		return ""
	}
	title, _ := metadata["title"].(string)
	return title
}
