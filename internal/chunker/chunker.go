// Package chunker splits normalized document text into token-bounded,
// sentence-aligned, overlapping chunks and assembles each chunk's output
// record. It is the core of the ingestion pipeline; everything upstream
// (loaders) and downstream (exporters, vector sinks) collaborates through
// its Chunk records.
package chunker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ragbuilder/internal/tokenizer"
)

const (
	// MinChunkSize and MaxChunkSize bound the per-chunk token budget.
	// Out-of-range values are clamped, not rejected, so the engine stays
	// robust to UI misuse.
	MinChunkSize = 150
	MaxChunkSize = 500
	// DefaultChunkSize is used when Options.ChunkSize is zero.
	DefaultChunkSize = 280

	// MaxOverlap bounds the token budget shared between consecutive
	// chunks. Overlap is additionally kept below the chunk size to
	// guarantee forward progress.
	MaxOverlap = 120
	// DefaultOverlap is the overlap applied by the CLI and API defaults.
	DefaultOverlap = 40

	// approxMarginDivisor shrinks the effective budget by 10% when only
	// the heuristic token counter is available, so chunks stay inside the
	// true model budget once a precise tokenizer is applied downstream.
	approxMarginDivisor = 10
)

// ErrInvalidOptions is returned for parameter values that cannot be clamped,
// such as negative sizes. All other irregular values are clamped instead.
var ErrInvalidOptions = errors.New("invalid chunk options")

// Options are the engine's only configuration surface.
type Options struct {
	// ChunkSize is the per-chunk token budget. Zero selects
	// DefaultChunkSize; values outside [MinChunkSize, MaxChunkSize] are
	// clamped to the nearest bound; negative values are rejected.
	ChunkSize int
	// Overlap is the token budget seeded from the previous chunk's
	// trailing sentence units. Values above MaxOverlap or at or above the
	// chunk size are clamped; negative values are rejected.
	Overlap int
}

// Clamped applies the documented clamping policy and rejects values that
// cannot be clamped.
func (o Options) Clamped() (Options, error) {
	if o.ChunkSize < 0 {
		return o, fmt.Errorf("%w: chunk size %d is negative", ErrInvalidOptions, o.ChunkSize)
	}
	if o.Overlap < 0 {
		return o, fmt.Errorf("%w: overlap %d is negative", ErrInvalidOptions, o.Overlap)
	}
	if o.ChunkSize == 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.ChunkSize < MinChunkSize {
		o.ChunkSize = MinChunkSize
	}
	if o.ChunkSize > MaxChunkSize {
		o.ChunkSize = MaxChunkSize
	}
	if o.Overlap > MaxOverlap {
		o.Overlap = MaxOverlap
	}
	if o.Overlap >= o.ChunkSize {
		o.Overlap = o.ChunkSize - 1
	}
	return o, nil
}

// Chunk is the engine's unit of output: a contiguous, trimmed span of the
// source document with its token count and an independent metadata copy.
// Chunks are immutable once emitted.
type Chunk struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	TokenCount int      `json:"token_count"`
	Metadata   Metadata `json:"metadata"`
}

// Engine splits documents into chunks. It is stateless across calls; a
// single Engine may be shared by concurrent workers as long as its tokenizer
// is safe for concurrent reads.
type Engine struct {
	tok tokenizer.Tokenizer
}

// New creates an engine on top of the given tokenizer.
func New(tok tokenizer.Tokenizer) *Engine {
	return &Engine{tok: tok}
}

// Chunk splits document text into ordered, overlapping, sentence-aligned
// chunks within the configured token budget.
//
// Sentence integrity outranks strict size compliance: a single sentence unit
// whose own token count exceeds the budget is emitted as its own oversized
// chunk rather than being cut mid-sentence. Empty input yields an empty
// sequence, not an error.
func (e *Engine) Chunk(text string, meta Metadata, opts Options) ([]Chunk, error) {
	opts, err := opts.Clamped()
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return []Chunk{}, nil
	}

	budget := opts.ChunkSize
	if e.tok.Approximate() {
		budget -= budget / approxMarginDivisor
		if budget < 1 {
			budget = 1
		}
	}

	groups := e.buildChunks(splitUnits(text), budget, opts.Overlap)

	updated := time.Now().UTC().Format("2006-01-02")
	chunks := make([]Chunk, 0, len(groups))
	for i, units := range groups {
		body := strings.TrimSpace(strings.Join(units, " "))
		m := meta.Clone()
		m.ChunkIndex = i + 1
		m.Updated = updated
		chunks = append(chunks, Chunk{
			ID:         ChunkID(m.Slug, m.Section, m.ChunkIndex),
			Text:       body,
			TokenCount: e.tok.Count(body),
			Metadata:   m,
		})
	}
	return chunks, nil
}

// ChunkID builds the deterministic chunk identifier "<slug>:<section>:<NNN>".
func ChunkID(slug, section string, index int) string {
	return fmt.Sprintf("%s:%s:%03d", slug, section, index)
}

// buildChunks greedily accumulates sentence units into chunks of at most
// budget tokens, seeding each chunk after the first with the maximal suffix
// of the previous chunk's units that fits in overlap tokens. Seed units
// count toward the budget; if seeds would crowd out the next unit they are
// dropped from the front until it fits, preserving the suffix property.
func (e *Engine) buildChunks(units []string, budget, overlap int) [][]string {
	var groups [][]string

	var cur []string
	curTokens := 0
	seeds := 0 // leading overlap units in cur

	for _, u := range units {
		c := e.tok.Count(u)

		if len(cur) > seeds && curTokens+c > budget {
			groups = append(groups, cur)
			cur, curTokens = e.overlapSuffix(cur, overlap)
			seeds = len(cur)
		}

		if c > budget {
			// Oversized sentence unit: emitted whole, on its own.
			groups = append(groups, []string{u})
			cur, curTokens = e.overlapSuffix([]string{u}, overlap)
			seeds = len(cur)
			continue
		}

		for len(cur) == seeds && seeds > 0 && curTokens+c > budget {
			curTokens -= e.tok.Count(cur[0])
			cur = cur[1:]
			seeds--
		}

		cur = append(cur, u)
		curTokens += c
	}

	// A trailing chunk made only of overlap seeds would duplicate the
	// previous chunk, so it is not emitted.
	if len(cur) > seeds {
		groups = append(groups, cur)
	}
	return groups
}

// overlapSuffix returns the maximal suffix of units whose combined token
// count fits in the overlap budget, with the combined count.
func (e *Engine) overlapSuffix(units []string, overlap int) ([]string, int) {
	if overlap <= 0 {
		return nil, 0
	}
	total := 0
	i := len(units)
	for i > 0 {
		c := e.tok.Count(units[i-1])
		if total+c > overlap {
			break
		}
		total += c
		i--
	}
	if i == len(units) {
		return nil, 0
	}
	suffix := make([]string, len(units)-i)
	copy(suffix, units[i:])
	return suffix, total
}
