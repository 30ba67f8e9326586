package postprocess

import "context"

// VerdictStatus is the outcome of a verification stage.
type VerdictStatus string

const (
	VerdictPass         VerdictStatus = "pass"
	VerdictFail         VerdictStatus = "fail"
	VerdictInconclusive VerdictStatus = "inconclusive"
)

// Verdict is a structured verification result. Score carries a stage-defined
// number, e.g. a plagiarism similarity in [0,1].
type Verdict struct {
	Status VerdictStatus
	Reason string
	Score  float64
}

// Verifier checks generated text against some quality criterion. Real
// implementations might cross-check entities against retrieved context or
// call an external scanning API.
type Verifier interface {
	Verify(ctx context.Context, text string) (Verdict, error)
}

// NoopFactualCheck is a test double that passes everything. It must not be
// wired into a production configuration: a pass from it carries no
// confidence at all.
type NoopFactualCheck struct{}

func (NoopFactualCheck) Verify(ctx context.Context, text string) (Verdict, error) {
	return Verdict{Status: VerdictPass, Reason: "factual check skipped (noop verifier)"}, nil
}

// NoopPlagiarismScan is a test double that reports zero similarity for any
// input. Same caveat as NoopFactualCheck.
type NoopPlagiarismScan struct{}

func (NoopPlagiarismScan) Verify(ctx context.Context, text string) (Verdict, error) {
	return Verdict{Status: VerdictInconclusive, Reason: "plagiarism scan skipped (noop verifier)", Score: 0.0}, nil
}
