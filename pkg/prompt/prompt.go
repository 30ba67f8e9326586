// Package prompt assembles the instruction handed to the generation model
// from a content request and the retrieved context. Every optional request
// field has a default, so building a prompt never fails.
package prompt

import (
	"fmt"
	"strings"

	"github.com/xhad/scribe/internal/models"
)

const SystemPrompt = `You are an elite content-generation system tasked with producing publication-ready material.
You must:
- Write with the specified style and maintain the requested tone.
- Target the specified audience.
- Use ONLY the supplied context for factual claims. Never fabricate or speculate.
- Cite or reference the provided context sources inline (e.g., [Source 1]) whenever you state a fact.
- If critical information is missing, explicitly say so rather than guessing.
- Prioritize clarity, logical flow, and SEO best practices.`

// NoContextSentinel appears in the prompt when retrieval produced nothing.
const NoContextSentinel = "No context provided."

// Defaults for the independently defaultable request fields.
const (
	DefaultType      = "article"
	DefaultTopic     = "general"
	DefaultTone      = "neutral"
	DefaultStyle     = "standard"
	DefaultAudience  = "general"
	DefaultExpertise = "general"
	DefaultWordCount = 500
)

// ApplyDefaults fills the zero-valued fields of a content request. The input
// is taken by value; callers keep their original untouched.
func ApplyDefaults(req models.ContentRequest) models.ContentRequest {
	if req.Type == "" {
		req.Type = DefaultType
	}
	if req.Topic == "" {
		req.Topic = DefaultTopic
	}
	if req.Tone == "" {
		req.Tone = DefaultTone
	}
	if req.Style == "" {
		req.Style = DefaultStyle
	}
	if req.TargetAudience == "" {
		req.TargetAudience = DefaultAudience
	}
	if req.AudienceExpertise == "" {
		req.AudienceExpertise = DefaultExpertise
	}
	if req.WordCount == 0 {
		req.WordCount = DefaultWordCount
	}
	return req
}

// Build merges the defaulted request with the flattened context into the
// fixed instructional template.
func Build(req models.ContentRequest, contextDocs []models.RetrievalCandidate) string {
	data := ApplyDefaults(req)

	contextText := NoContextSentinel
	if len(contextDocs) > 0 {
		parts := make([]string, 0, len(contextDocs))
		for _, doc := range contextDocs {
			parts = append(parts, doc.Text)
		}
		contextText = strings.Join(parts, "\n")
	}

	keywords := "none specified"
	if len(data.SEOKeywords) > 0 {
		keywords = strings.Join(data.SEOKeywords, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Objective:\nCreate a %s focused on %q of roughly %d words,\noptimized for %s (%s).\n\n",
		data.Type, data.Topic, data.WordCount, data.TargetAudience, data.AudienceExpertise)
	fmt.Fprintf(&b, "Available Context:\n%s\n\n", contextText)
	b.WriteString("Detailed Instructions:\n")
	fmt.Fprintf(&b, "- Tone & Voice: %s\n", data.Tone)
	fmt.Fprintf(&b, "- Style Guide: %s (adopt consistent formatting, headings, bullet points as needed)\n", data.Style)
	fmt.Fprintf(&b, "- SEO Keywords/Phrases: %s - weave these in naturally without keyword stuffing.\n", keywords)
	fmt.Fprintf(&b, "- Approx. Length: %d words\n", data.WordCount)
	b.WriteString("- Formatting: Use Markdown for headings, subheadings, bullet points, and code snippets as needed.\n")
	b.WriteString("- Structure: Start with a compelling hook/intro, develop key arguments or insights in well-labeled sections, and end with a concise conclusion or call to action.\n")
	b.WriteString("- Citations: Reference context sources explicitly (e.g., [Source 2]) for every factual statement.\n")
	b.WriteString("- CTA: Encourage readers to comment, share, or try examples if relevant.\n")
	b.WriteString("- Integrity: If the context does not supply enough evidence for a claim, clearly state that the data is unavailable.\n")
	if data.AdditionalInstructions != "" {
		fmt.Fprintf(&b, "- Additional Instructions: %s\n", data.AdditionalInstructions)
	}
	b.WriteString("- Output must be clean, professional, and ready for immediate publication.\n")

	return b.String()
}
