// Package pipeline sequences one content-generation request through
// retrieval, generation, postprocessing, and formatting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/xhad/scribe/internal/models"
	"github.com/xhad/scribe/internal/types"
	"github.com/xhad/scribe/pkg/formatter"
	"github.com/xhad/scribe/pkg/postprocess"
)

// State is the pipeline's position for one request. Transitions run strictly
// in order; Failed is terminal and reachable from any state.
type State string

const (
	StateReceived      State = "RECEIVED"
	StateRetrieved     State = "RETRIEVED"
	StateGenerated     State = "GENERATED"
	StatePostprocessed State = "POSTPROCESSED"
	StateFormatted     State = "FORMATTED"
	StateDone          State = "DONE"
	StateFailed        State = "FAILED"
)

// ErrFailed is the opaque error surfaced to callers when any stage fails.
// Stage detail goes to the log, not to the caller.
var ErrFailed = errors.New("content generation failed")

// Request is the canonical payload: one content request plus its generation
// config. Field names and defaults are fixed here; "topic" is the retrieval
// query.
type Request struct {
	ContentRequest   models.ContentRequest   `json:"content_request"`
	GenerationConfig models.GenerationConfig `json:"generation_config"`
}

// PipelineConfig tunes one pipeline instance. StageTimeout bounds each
// external call (retrieval, generation); zero disables deadlines.
type PipelineConfig struct {
	SearchTopK   int
	StageTimeout time.Duration

	// OnTransition, when set, observes every state change.
	OnTransition func(State)
}

type Pipeline struct {
	config        PipelineConfig
	retriever     types.Retriever
	generator     types.Generator
	postprocessor *postprocess.Postprocessor
	formatter     formatter.Formatter
}

func NewWithConfig(config PipelineConfig, r types.Retriever, g types.Generator, p *postprocess.Postprocessor, f formatter.Formatter) *Pipeline {
	if config.SearchTopK == 0 {
		config.SearchTopK = 20
	}
	return &Pipeline{
		config:        config,
		retriever:     r,
		generator:     g,
		postprocessor: p,
		formatter:     f,
	}
}

// Run processes one request to completion. Any stage failure moves the run
// to FAILED and returns the opaque ErrFailed; there is no retry and no
// partial result.
func (p *Pipeline) Run(ctx context.Context, req Request) (*models.FormattedResult, error) {
	p.transition(StateReceived)

	maxDocs := req.GenerationConfig.MaxRetrievalDocs
	if maxDocs <= 0 {
		maxDocs = 8
	}

	candidates, err := withDeadline(ctx, p.config.StageTimeout, func(ctx context.Context) ([]models.RetrievalCandidate, error) {
		return p.retriever.Retrieve(ctx, req.ContentRequest.Topic, p.config.SearchTopK, maxDocs)
	})
	if err != nil {
		return nil, p.fail(StateReceived, fmt.Errorf("retrieval: %w", err))
	}
	p.transition(StateRetrieved)

	generated, err := withDeadline(ctx, p.config.StageTimeout, func(ctx context.Context) (*models.GeneratedResult, error) {
		return p.generator.Generate(ctx, req.ContentRequest, candidates, req.GenerationConfig)
	})
	if err != nil {
		return nil, p.fail(StateRetrieved, fmt.Errorf("generation: %w", err))
	}
	p.transition(StateGenerated)

	processed, err := p.postprocessor.Postprocess(ctx, generated, req.ContentRequest.SEOKeywords, true, true)
	if err != nil {
		return nil, p.fail(StateGenerated, fmt.Errorf("postprocess: %w", err))
	}
	p.transition(StatePostprocessed)

	result := p.formatter.Format(processed)
	p.transition(StateFormatted)

	p.transition(StateDone)
	return result, nil
}

func (p *Pipeline) transition(s State) {
	if p.config.OnTransition != nil {
		p.config.OnTransition(s)
	}
}

func (p *Pipeline) fail(from State, err error) error {
	log.Printf("pipeline failed after %s: %v", from, err)
	p.transition(StateFailed)
	return ErrFailed
}

// withDeadline bounds one external call with the configured stage timeout.
func withDeadline[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}
