package embedder

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// TFIDF is a sparse vectorizer with a capped vocabulary, used as the sparse
// half of hybrid embeddings. It must be fit over the ingest corpus before
// transforming.
type TFIDF struct {
	maxFeatures  int
	vocabulary   map[string]int
	idf          []float64
	tokenPattern *regexp.Regexp
	prepared     bool
}

func NewTFIDF(maxFeatures int) *TFIDF {
	if maxFeatures <= 0 {
		maxFeatures = 1024
	}
	return &TFIDF{
		maxFeatures:  maxFeatures,
		vocabulary:   make(map[string]int),
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
	}
}

// Fit builds the vocabulary and IDF table from the corpus, keeping the
// maxFeatures terms with the highest document frequency.
func (t *TFIDF) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for tf-idf fit")
	}

	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range t.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return errors.New("no tokens found in corpus")
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > t.maxFeatures {
		terms = terms[:t.maxFeatures]
	}
	sort.Strings(terms)

	t.vocabulary = make(map[string]int, len(terms))
	t.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		t.vocabulary[term] = i
		t.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	t.prepared = true
	return nil
}

// Transform computes the L2-normalized TF-IDF vector for one text.
func (t *TFIDF) Transform(text string) ([]float32, error) {
	if !t.prepared {
		return nil, errors.New("tf-idf vectorizer not fit")
	}

	vec := make([]float64, len(t.idf))
	tf := make(map[int]int)
	total := 0
	for _, tok := range t.tokenize(text) {
		if idx, ok := t.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total > 0 {
		for idx, count := range tf {
			vec[idx] = float64(count) / float64(total) * t.idf[idx]
		}
		norm := 0.0
		for _, v := range vec {
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for i := range vec {
				vec[i] /= norm
			}
		}
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out, nil
}

func (t *TFIDF) Dimension() int {
	return len(t.idf)
}

func (t *TFIDF) tokenize(text string) []string {
	matches := t.tokenPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.ToLower(m))
	}
	return out
}
