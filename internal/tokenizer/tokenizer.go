// Package tokenizer measures text length in model tokens and materializes
// token spans. It provides a precise tiktoken-backed implementation and a
// whitespace heuristic used when the encoding cannot be loaded.
package tokenizer

import (
	"fmt"
	"math"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// encodingName is the BPE encoding used for precise counting. cl100k_base is
// what GPT-4-era models use and a reasonable proxy for most embedding models.
const encodingName = "cl100k_base"

// approxTokensPerWord is the empirical token/word ratio used by the
// heuristic counter.
const approxTokensPerWord = 1.3

// Span is a materialized sequence of token units. Joining the units in order
// reproduces the encoded text (modulo whitespace normalization for the
// heuristic tokenizer).
type Span []string

// Text reassembles the span into text.
func (s Span) Text() string {
	return strings.Join(s, "")
}

// Tokenizer maps text to token units and back. Implementations must be
// deterministic for identical input and safe for concurrent reads.
type Tokenizer interface {
	// Count returns the number of tokens in text.
	Count(text string) int
	// Encode materializes text as a token span.
	Encode(text string) Span
	// Decode reassembles a token span into text.
	Decode(span Span) string
	// Approximate reports whether counts are heuristic estimates rather
	// than exact model token counts. Callers apply a safety margin when
	// this is true.
	Approximate() bool
}

// New returns the precise tokenizer when the encoding is available, falling
// back to the heuristic counter otherwise. The returned bool is true when the
// fallback is in use, so callers can log the degraded mode.
func New() (Tokenizer, bool) {
	tok, err := NewTiktoken()
	if err != nil {
		return NewHeuristic(), true
	}
	return tok, false
}

// Tiktoken counts tokens with a real BPE encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the cl100k_base encoding. Loading can fail when the BPE
// ranks are not cached locally and cannot be fetched.
func NewTiktoken() (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", encodingName, err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Count returns the exact number of BPE tokens in text.
func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// Encode materializes each BPE token as its decoded text fragment.
func (t *Tiktoken) Encode(text string) Span {
	ids := t.enc.Encode(text, nil, nil)
	span := make(Span, len(ids))
	for i, id := range ids {
		span[i] = t.enc.Decode([]int{id})
	}
	return span
}

// Decode reassembles a span into the original text.
func (t *Tiktoken) Decode(span Span) string {
	return span.Text()
}

// Approximate always returns false for the BPE tokenizer.
func (t *Tiktoken) Approximate() bool {
	return false
}

// Heuristic estimates token counts from whitespace-delimited words. It is
// used when no precise tokenizer is available; counts are scaled by the
// empirical token/word ratio.
type Heuristic struct{}

// NewHeuristic returns the fallback word-based counter.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Count estimates the token count as words * 1.3, rounded up so the
// estimate errs toward overestimating rather than busting a real budget.
func (h *Heuristic) Count(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) * approxTokensPerWord))
}

// Encode splits text into whitespace-delimited words. Each word keeps a
// trailing space so the span reassembles into normalized text.
func (h *Heuristic) Encode(text string) Span {
	words := strings.Fields(text)
	span := make(Span, len(words))
	for i, w := range words {
		if i < len(words)-1 {
			span[i] = w + " "
		} else {
			span[i] = w
		}
	}
	return span
}

// Decode reassembles a span. Whitespace is normalized to single spaces.
func (h *Heuristic) Decode(span Span) string {
	return span.Text()
}

// Approximate always returns true for the heuristic counter.
func (h *Heuristic) Approximate() bool {
	return true
}
