package models

// Document is a raw unit of content produced by a loader. Immutable once
// created; the chunker is its only consumer.
type Document struct {
	ID        string
	Text      string
	SourceURL string
	Metadata  map[string]interface{}
}

// Chunk is a bounded segment of a document. The metadata map is shared with
// the parent document, not copied.
type Chunk struct {
	ID       string
	Text     string
	Metadata map[string]interface{}
	Vector   []float32
}

// VectorRecord is the unit stored in a vector backend. IDs are unique within
// one store instance; re-upserting an id overwrites the prior record.
type VectorRecord struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata map[string]interface{}
}

// RetrievalCandidate is a per-query match returned by a vector store. Score
// is always cosine similarity in [0,1], higher is better; each backend
// converts its native ordering at the store boundary.
type RetrievalCandidate struct {
	ID       string
	Text     string
	Score    float32
	Metadata map[string]interface{}
}

// ContentRequest describes the article a caller wants generated. Every
// optional field has a default applied by the prompt builder.
type ContentRequest struct {
	Type                   string   `json:"type"`
	Topic                  string   `json:"topic"`
	TargetAudience         string   `json:"target_audience,omitempty"`
	AudienceExpertise      string   `json:"audience_expertise,omitempty"`
	WordCount              int      `json:"word_count,omitempty"`
	Tone                   string   `json:"tone,omitempty"`
	Style                  string   `json:"style,omitempty"`
	SEOKeywords            []string `json:"seo_keywords,omitempty"`
	AdditionalInstructions string   `json:"additional_instructions,omitempty"`
}

// GenerationConfig is supplied per request alongside the content request.
type GenerationConfig struct {
	Model            string  `json:"model,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	MaxRetrievalDocs int     `json:"max_retrieval_docs,omitempty"`
}

// GeneratedResult is the raw output of a generation call.
type GeneratedResult struct {
	GeneratedText string                 `json:"generated_text"`
	Model         string                 `json:"model"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// ProcessedResult is the postprocessor's output.
type ProcessedResult struct {
	CleanedText string                 `json:"cleaned_text"`
	Metrics     Metrics                `json:"metrics"`
	Model       string                 `json:"model"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Metrics holds the quality numbers the postprocessor computes. Zero-value
// fields mean the corresponding check was not requested.
type Metrics struct {
	KeywordDensity  map[string]float64 `json:"keyword_density,omitempty"`
	FactualVerdict  string             `json:"factual_verdict,omitempty"`
	PlagiarismScore float64            `json:"plagiarism_score"`
}

// FormattedResult is the formatter's output and the pipeline's terminal value.
type FormattedResult struct {
	FormattedText string                 `json:"formatted_text"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}
