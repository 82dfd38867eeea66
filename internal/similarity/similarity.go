// Package similarity scores how close a predicted snippet is to the
// reference migration.
package similarity

import (
	"errors"
	"math"
	"regexp"
	"strings"
)

// Scorer compares a candidate snippet with a reference snippet written in
// language and returns a score in [0, 1].
type Scorer interface {
	Similarity(candidate, reference, language string) (float64, error)
}

// ErrEmptyReference is returned when there is nothing to compare against.
var ErrEmptyReference = errors.New("similarity: empty reference")

// CodeBLEU blends corpus BLEU with a keyword-weighted unigram match, the
// lexical half of the CodeBLEU metric. Weights are normalized, so only their
// ratio matters.
type CodeBLEU struct {
	BLEUWeight     float64
	WeightedWeight float64

	// MaxOrder is the largest n-gram order used by BLEU.
	MaxOrder int
}

// Default returns the scorer used when none is configured.
func Default() *CodeBLEU {
	return &CodeBLEU{BLEUWeight: 0.5, WeightedWeight: 0.5, MaxOrder: 4}
}

// Similarity implements Scorer.
func (s *CodeBLEU) Similarity(candidate, reference, language string) (float64, error) {
	ref := Tokenize(reference)
	if len(ref) == 0 {
		return 0, ErrEmptyReference
	}
	cand := Tokenize(candidate)
	if len(cand) == 0 {
		return 0, nil
	}

	total := s.BLEUWeight + s.WeightedWeight
	if total <= 0 {
		return 0, errors.New("similarity: weights must sum to a positive value")
	}

	bleu := BLEU(cand, ref, s.maxOrder())
	weighted := WeightedMatch(cand, ref, Keywords(language))
	return clamp((s.BLEUWeight*bleu + s.WeightedWeight*weighted) / total), nil
}

func (s *CodeBLEU) maxOrder() int {
	if s.MaxOrder <= 0 {
		return 4
	}
	return s.MaxOrder
}

var tokenPattern = regexp.MustCompile(`\w+|[^\s\w]`)

// Tokenize splits code into identifiers, numbers and single punctuation runes.
func Tokenize(code string) []string {
	return tokenPattern.FindAllString(code, -1)
}

// BLEU computes sentence-level BLEU with clipped n-gram precision, a brevity
// penalty, and epsilon smoothing for orders with no matches. Orders longer
// than the candidate are left out.
func BLEU(cand, ref []string, maxOrder int) float64 {
	if len(cand) == 0 || len(ref) == 0 {
		return 0
	}

	const epsilon = 0.1
	logSum := 0.0
	orders := 0
	for n := 1; n <= maxOrder; n++ {
		candCounts := ngrams(cand, n)
		possible := len(cand) - n + 1
		if possible <= 0 {
			break
		}
		refCounts := ngrams(ref, n)
		matches := 0
		for gram, c := range candCounts {
			matches += min(c, refCounts[gram])
		}
		p := float64(matches) / float64(possible)
		if matches == 0 {
			p = epsilon / float64(possible)
		}
		logSum += math.Log(p)
		orders++
	}

	return brevityPenalty(len(cand), len(ref)) * math.Exp(logSum/float64(orders))
}

// WeightedMatch is clipped unigram precision where keywords count five times
// as much as other tokens.
func WeightedMatch(cand, ref []string, keywords map[string]struct{}) float64 {
	if len(cand) == 0 || len(ref) == 0 {
		return 0
	}

	weight := func(tok string) float64 {
		if _, ok := keywords[tok]; ok {
			return 1.0
		}
		return 0.2
	}

	refCounts := ngrams(ref, 1)
	candCounts := ngrams(cand, 1)
	var matched, possible float64
	for gram, c := range candCounts {
		w := weight(gram)
		possible += w * float64(c)
		matched += w * float64(min(c, refCounts[gram]))
	}
	if possible == 0 {
		return 0
	}
	return brevityPenalty(len(cand), len(ref)) * matched / possible
}

func brevityPenalty(candLen, refLen int) float64 {
	if candLen >= refLen {
		return 1
	}
	return math.Exp(1 - float64(refLen)/float64(candLen))
}

func ngrams(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], "\x00")]++
	}
	return counts
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
