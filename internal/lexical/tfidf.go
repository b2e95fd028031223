// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lexical scores a target text against a corpus with a TF-IDF
// model built fresh from each call's inputs and cosine similarity.
package lexical

import (
	"errors"
	"math"
	"sort"

	"github.com/pdiddy/copycheck/pkg/types"
)

// ErrVectorization is returned when the combined texts yield no vocabulary,
// for example when every input is empty, whitespace, or stop words.
var ErrVectorization = errors.New("empty vocabulary: no terms could be extracted from the compared texts")

// Scorer computes lexical similarity. It holds no state across calls and
// is safe for concurrent use.
type Scorer struct {
	tok Tokenizer
}

// NewScorer creates a scorer from the lexical configuration.
func NewScorer(cfg types.LexicalConfig) *Scorer {
	return &Scorer{tok: NewTokenizer(cfg.StopWords, cfg.MinTokenLength)}
}

// Score returns, for each corpus text in order, the cosine similarity in
// [0, 1] between its TF-IDF vector and the target's. The vocabulary and
// document frequencies span the target plus every corpus text.
func (s *Scorer) Score(target string, corpus []string) ([]float64, error) {
	if len(corpus) == 0 {
		return []float64{}, nil
	}

	docs := make([][]string, 0, len(corpus)+1)
	for _, text := range corpus {
		docs = append(docs, s.tok.Tokenize(text))
	}
	docs = append(docs, s.tok.Tokenize(target))

	m, err := fitModel(docs)
	if err != nil {
		return nil, err
	}

	targetVec := m.vectors[len(docs)-1]
	scores := make([]float64, len(corpus))
	for i := range corpus {
		scores[i] = cosine(targetVec, m.vectors[i])
	}
	return scores, nil
}

// term is one non-zero coordinate of a document vector.
type term struct {
	idx    int
	weight float64
}

// sparse is a document vector with coordinates sorted by term index, so
// sums always run in the same order and results are reproducible.
type sparse []term

type model struct {
	vocab   map[string]int
	idf     []float64
	vectors []sparse
}

// fitModel builds the vocabulary, smoothed inverse document frequencies
// idf(t) = ln((1+n)/(1+df(t))) + 1, and an L2-normalized tf·idf vector per
// document.
func fitModel(docs [][]string) (*model, error) {
	vocab := make(map[string]int)
	var df []int
	counts := make([]map[int]float64, len(docs))
	for i, tokens := range docs {
		tf := make(map[int]float64)
		for _, tok := range tokens {
			idx, ok := vocab[tok]
			if !ok {
				idx = len(vocab)
				vocab[tok] = idx
				df = append(df, 0)
			}
			if tf[idx] == 0 {
				df[idx]++
			}
			tf[idx]++
		}
		counts[i] = tf
	}
	if len(vocab) == 0 {
		return nil, ErrVectorization
	}

	n := float64(len(docs))
	idf := make([]float64, len(df))
	for i, d := range df {
		idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	vectors := make([]sparse, len(docs))
	for i, tf := range counts {
		v := make(sparse, 0, len(tf))
		for idx, c := range tf {
			v = append(v, term{idx: idx, weight: c * idf[idx]})
		}
		sort.Slice(v, func(a, b int) bool { return v[a].idx < v[b].idx })
		normalize(v)
		vectors[i] = v
	}

	return &model{vocab: vocab, idf: idf, vectors: vectors}, nil
}

func normalize(v sparse) {
	var sum float64
	for _, t := range v {
		sum += t.weight * t.weight
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i].weight /= norm
	}
}

// cosine returns the dot product of two L2-normalized vectors, clamped to
// [0, 1]. A zero vector has similarity 0 with everything.
func cosine(a, b sparse) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].idx == b[j].idx:
			dot += a[i].weight * b[j].weight
			i++
			j++
		case a[i].idx < b[j].idx:
			i++
		default:
			j++
		}
	}
	return math.Max(0, math.Min(1, dot))
}
