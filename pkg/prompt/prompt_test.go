package prompt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xhad/scribe/internal/models"
	"github.com/xhad/scribe/pkg/prompt"
)

func TestBuild_EmptyRequestUsesDefaults(t *testing.T) {
	out := prompt.Build(models.ContentRequest{}, nil)

	assert.Contains(t, out, prompt.NoContextSentinel)
	assert.Contains(t, out, `"general"`)
	assert.Contains(t, out, "Create a article")
	assert.Contains(t, out, "roughly 500 words")
	assert.Contains(t, out, "none specified")
	assert.Contains(t, out, "Tone & Voice: neutral")
}

func TestBuild_ContextJoined(t *testing.T) {
	docs := []models.RetrievalCandidate{
		{ID: "1", Text: "First source paragraph."},
		{ID: "2", Text: "Second source paragraph."},
	}
	out := prompt.Build(models.ContentRequest{Topic: "vector search"}, docs)

	assert.Contains(t, out, "First source paragraph.\nSecond source paragraph.")
	assert.NotContains(t, out, prompt.NoContextSentinel)
	assert.Contains(t, out, `"vector search"`)
}

func TestBuild_KeywordsAndInstructions(t *testing.T) {
	req := models.ContentRequest{
		Topic:                  "embeddings",
		SEOKeywords:            []string{"vector", "similarity"},
		AdditionalInstructions: "include a summary table",
	}
	out := prompt.Build(req, nil)

	assert.Contains(t, out, "vector, similarity")
	assert.Contains(t, out, "include a summary table")
}

func TestApplyDefaults_DoesNotMutateInput(t *testing.T) {
	req := models.ContentRequest{}
	_ = prompt.ApplyDefaults(req)
	assert.Empty(t, req.Type)

	got := prompt.ApplyDefaults(models.ContentRequest{Tone: "witty"})
	assert.Equal(t, "witty", got.Tone)
	assert.Equal(t, prompt.DefaultStyle, got.Style)
}
