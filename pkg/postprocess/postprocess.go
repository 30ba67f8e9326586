// Package postprocess cleans raw generated text and computes quality
// metrics before formatting.
package postprocess

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/xhad/scribe/internal/models"
)

// maxPhraseWords bounds the repeated-phrase collapse: immediate repeats of
// up to this many words are folded into one occurrence.
const maxPhraseWords = 4

type Postprocessor struct {
	factual    Verifier
	plagiarism Verifier
}

// New builds a postprocessor with the given verifiers. Nil verifiers fall
// back to the noop doubles, which always pass; wire real ones for any
// deployment that needs actual confidence.
func New(factual, plagiarism Verifier) *Postprocessor {
	if factual == nil {
		factual = NoopFactualCheck{}
	}
	if plagiarism == nil {
		plagiarism = NoopPlagiarismScan{}
	}
	return &Postprocessor{factual: factual, plagiarism: plagiarism}
}

// Postprocess normalizes whitespace, collapses immediately-repeated phrases,
// and computes the requested metrics over the cleaned text.
func (p *Postprocessor) Postprocess(ctx context.Context, generated *models.GeneratedResult, seoKeywords []string, runFactualCheck, runPlagiarism bool) (*models.ProcessedResult, error) {
	text := NormalizeWhitespace(generated.GeneratedText)
	text = RemoveRedundantPhrases(text)

	metrics := models.Metrics{}
	if len(seoKeywords) > 0 {
		metrics.KeywordDensity = KeywordDensity(text, seoKeywords)
	}
	if runFactualCheck {
		verdict, err := p.factual.Verify(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("factual check failed: %w", err)
		}
		metrics.FactualVerdict = string(verdict.Status)
	}
	if runPlagiarism {
		verdict, err := p.plagiarism.Verify(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("plagiarism scan failed: %w", err)
		}
		metrics.PlagiarismScore = verdict.Score
	}

	return &models.ProcessedResult{
		CleanedText: text,
		Metrics:     metrics,
		Model:       generated.Model,
		Metadata:    generated.Metadata,
	}, nil
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeWhitespace collapses runs of whitespace into single spaces and
// trims the edges.
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// RemoveRedundantPhrases folds immediate case-insensitive repeats of short
// phrases ("In conclusion, in conclusion" style filler) into one occurrence.
// The first occurrence is kept; a repeat may carry trailing punctuation,
// which survives the fold. Call after NormalizeWhitespace so tokens are
// single-space separated.
func RemoveRedundantPhrases(text string) string {
	tokens := strings.Split(text, " ")
	for {
		next, changed := collapseOnce(tokens)
		tokens = next
		if !changed {
			break
		}
	}
	return strings.Join(tokens, " ")
}

// collapseOnce makes one left-to-right pass, folding each immediate repeat
// it finds. Runs of three or more repeats need further passes, which
// RemoveRedundantPhrases drives to a fixpoint.
func collapseOnce(tokens []string) ([]string, bool) {
	out := make([]string, 0, len(tokens))
	changed := false

	i := 0
	for i < len(tokens) {
		matched := false
		for n := maxPhraseWords; n >= 1; n-- {
			if i+2*n > len(tokens) {
				continue
			}
			if !phraseRepeats(tokens[i:i+n], tokens[i+n:i+2*n]) {
				continue
			}
			// Keep the first phrase; punctuation trailing the repeat's final
			// word survives the fold.
			trailer := tokens[i+2*n-1][len(wordPart(tokens[i+2*n-1])):]
			for k := 0; k < n; k++ {
				tok := tokens[i+k]
				if k == n-1 {
					tok += trailer
				}
				out = append(out, tok)
			}
			i += 2 * n
			matched = true
			changed = true
			break
		}
		if !matched {
			out = append(out, tokens[i])
			i++
		}
	}
	return out, changed
}

// phraseRepeats reports whether b is an immediate repeat of a. Every word of
// a must be bare (no trailing punctuation, since only whitespace separates
// the occurrences); the final word of b may carry a trailer.
func phraseRepeats(a, b []string) bool {
	for k := range a {
		if wordPart(a[k]) != a[k] || a[k] == "" {
			return false
		}
		bw := b[k]
		if k < len(a)-1 && wordPart(bw) != bw {
			return false
		}
		if !strings.EqualFold(a[k], wordPart(bw)) {
			return false
		}
	}
	return true
}

var wordRe = regexp.MustCompile(`^[\p{L}\p{N}_]+`)

func wordPart(token string) string {
	return wordRe.FindString(token)
}

// KeywordDensity reports each keyword's occurrence count as a percentage of
// the total word count, case-insensitive substring matching, rounded to two
// decimals.
func KeywordDensity(text string, keywords []string) map[string]float64 {
	totalWords := len(strings.Fields(text))
	if totalWords == 0 {
		totalWords = 1
	}

	lower := strings.ToLower(text)
	densities := make(map[string]float64, len(keywords))
	for _, kw := range keywords {
		count := strings.Count(lower, strings.ToLower(kw))
		densities[kw] = math.Round(float64(count)/float64(totalWords)*100*100) / 100
	}
	return densities
}
