package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/scribe/internal/models"
	"github.com/xhad/scribe/pkg/formatter"
	"github.com/xhad/scribe/pkg/pipeline"
	"github.com/xhad/scribe/pkg/postprocess"
)

type fakeRetriever struct {
	docs []models.RetrievalCandidate
	err  error
}

func (f fakeRetriever) Retrieve(_ context.Context, _ string, _, rerankK int) ([]models.RetrievalCandidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	if rerankK < len(f.docs) {
		return f.docs[:rerankK], nil
	}
	return f.docs, nil
}

type fakeGenerator struct {
	text string
	err  error
}

func (f fakeGenerator) Generate(_ context.Context, _ models.ContentRequest, docs []models.RetrievalCandidate, _ models.GenerationConfig) (*models.GeneratedResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	used := make([]string, 0, len(docs))
	for _, d := range docs {
		used = append(used, d.ID)
	}
	return &models.GeneratedResult{
		GeneratedText: f.text,
		Model:         "fake-model",
		Metadata:      map[string]interface{}{"used_docs": used},
	}, nil
}

func newPipeline(r fakeRetriever, g fakeGenerator, states *[]pipeline.State) *pipeline.Pipeline {
	cfg := pipeline.PipelineConfig{
		OnTransition: func(s pipeline.State) { *states = append(*states, s) },
	}
	return pipeline.NewWithConfig(cfg, r, g,
		postprocess.New(nil, nil),
		formatter.NewWithConfig(formatter.FormatterConfig{
			OutputFormat: formatter.FormatPlain,
			AddMetadata:  true,
		}),
	)
}

func TestPipeline_HappyPathStates(t *testing.T) {
	var states []pipeline.State
	p := newPipeline(
		fakeRetriever{docs: []models.RetrievalCandidate{{ID: "d1", Text: "context text"}}},
		fakeGenerator{text: "generated  article   text"},
		&states,
	)

	result, err := p.Run(context.Background(), pipeline.Request{
		ContentRequest: models.ContentRequest{Topic: "testing"},
	})
	require.NoError(t, err)

	assert.Equal(t, []pipeline.State{
		pipeline.StateReceived,
		pipeline.StateRetrieved,
		pipeline.StateGenerated,
		pipeline.StatePostprocessed,
		pipeline.StateFormatted,
		pipeline.StateDone,
	}, states)

	// Whitespace collapsed by postprocess, provenance attached by formatter.
	assert.Equal(t, "generated article text", result.FormattedText)
	assert.Equal(t, "fake-model", result.Metadata["model"])
	assert.Equal(t, []string{"d1"}, result.Metadata["sources"])
}

func TestPipeline_RetrievalFailureIsOpaque(t *testing.T) {
	var states []pipeline.State
	p := newPipeline(
		fakeRetriever{err: errors.New("pinecone exploded: auth token leaked detail")},
		fakeGenerator{text: "unused"},
		&states,
	)

	_, err := p.Run(context.Background(), pipeline.Request{})
	require.Error(t, err)

	// Caller sees the opaque sentinel, not backend detail.
	assert.ErrorIs(t, err, pipeline.ErrFailed)
	assert.NotContains(t, err.Error(), "auth token")
	assert.Equal(t, pipeline.StateFailed, states[len(states)-1])
}

func TestPipeline_GenerationFailure(t *testing.T) {
	var states []pipeline.State
	p := newPipeline(
		fakeRetriever{},
		fakeGenerator{err: errors.New("model unavailable")},
		&states,
	)

	_, err := p.Run(context.Background(), pipeline.Request{})
	assert.ErrorIs(t, err, pipeline.ErrFailed)

	// Failed after RETRIEVED, never reached GENERATED.
	assert.Contains(t, states, pipeline.StateRetrieved)
	assert.NotContains(t, states, pipeline.StateGenerated)
	assert.Equal(t, pipeline.StateFailed, states[len(states)-1])
}

func TestPipeline_MaxRetrievalDocsRespected(t *testing.T) {
	docs := make([]models.RetrievalCandidate, 10)
	for i := range docs {
		docs[i] = models.RetrievalCandidate{ID: string(rune('a' + i)), Text: "doc"}
	}

	var states []pipeline.State
	p := newPipeline(fakeRetriever{docs: docs}, fakeGenerator{text: "out"}, &states)

	result, err := p.Run(context.Background(), pipeline.Request{
		GenerationConfig: models.GenerationConfig{MaxRetrievalDocs: 3},
	})
	require.NoError(t, err)

	sources, ok := result.Metadata["sources"].([]string)
	require.True(t, ok)
	assert.Len(t, sources, 3)
}
