package pipeline

import (
	"math"
	"sort"
)

// RunStats summarizes one ingest run.
type RunStats struct {
	// DocsProcessed is the number of documents chunked this run.
	DocsProcessed int `json:"docs_processed"`
	// DocsSkipped is the number of documents skipped because their
	// content hash matched the manifest.
	DocsSkipped int `json:"docs_skipped"`
	// DocsFailed is the number of documents that could not be processed.
	DocsFailed int `json:"docs_failed"`
	// Chunks is the total number of chunks emitted.
	Chunks int `json:"chunks"`
	// OversizedChunks counts chunks over the token budget, i.e. single
	// sentence units too large to fit. These are emitted by design.
	OversizedChunks int `json:"oversized_chunks"`
	// TokenStats summarizes per-chunk token counts.
	TokenStats TokenStats `json:"token_stats"`
}

// TokenStats describes the distribution of token counts across chunks.
type TokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// computeTokenStats computes min, max, mean, and p95 from token counts.
func computeTokenStats(counts []int) TokenStats {
	if len(counts) == 0 {
		return TokenStats{}
	}

	sorted := make([]int, len(counts))
	copy(sorted, counts)
	sort.Ints(sorted)

	sum := 0
	for _, c := range sorted {
		sum += c
	}
	mean := float64(sum) / float64(len(sorted))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	return TokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}
