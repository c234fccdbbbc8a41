package chunker

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"ragbuilder/internal/tokenizer"
)

// newTestEngine uses the heuristic tokenizer so token arithmetic in tests is
// deterministic: a unit of n words counts ceil(n * 1.3) tokens.
func newTestEngine() *Engine {
	return New(tokenizer.NewHeuristic())
}

func testMeta() Metadata {
	return Metadata{
		Title:   "Privacy Policy",
		Slug:    "privacy-policy",
		Section: "Data Retention",
		Tags:    []string{"privacy", "gdpr"},
	}
}

// manySentences builds n distinct ten-word sentences (13 heuristic tokens
// each).
func manySentences(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "This is sentence number %d with some extra padding. ", i)
	}
	return b.String()
}

func TestOptionsClamped(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    Options
		wantErr bool
	}{
		{
			name: "zero size selects default",
			opts: Options{ChunkSize: 0, Overlap: 0},
			want: Options{ChunkSize: DefaultChunkSize, Overlap: 0},
		},
		{
			name: "small size clamps up",
			opts: Options{ChunkSize: 100, Overlap: 0},
			want: Options{ChunkSize: MinChunkSize, Overlap: 0},
		},
		{
			name: "large size clamps down",
			opts: Options{ChunkSize: 600, Overlap: 40},
			want: Options{ChunkSize: MaxChunkSize, Overlap: 40},
		},
		{
			name: "large overlap clamps down",
			opts: Options{ChunkSize: 200, Overlap: 300},
			want: Options{ChunkSize: 200, Overlap: MaxOverlap},
		},
		{
			name: "in-range values pass through",
			opts: Options{ChunkSize: 280, Overlap: 40},
			want: Options{ChunkSize: 280, Overlap: 40},
		},
		{
			name:    "negative size rejected",
			opts:    Options{ChunkSize: -1},
			wantErr: true,
		},
		{
			name:    "negative overlap rejected",
			opts:    Options{ChunkSize: 280, Overlap: -5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.Clamped()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidOptions) {
					t.Fatalf("Clamped() error = %v, want ErrInvalidOptions", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Clamped() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Clamped() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChunkInvalidOptions(t *testing.T) {
	e := newTestEngine()
	_, err := e.Chunk("Some text.", testMeta(), Options{ChunkSize: -10})
	if !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("Chunk() error = %v, want ErrInvalidOptions", err)
	}
}

func TestChunkEmptyInput(t *testing.T) {
	e := newTestEngine()
	for _, text := range []string{"", "   ", "\n\n\t"} {
		chunks, err := e.Chunk(text, testMeta(), Options{})
		if err != nil {
			t.Fatalf("Chunk(%q) error = %v", text, err)
		}
		if len(chunks) != 0 {
			t.Errorf("Chunk(%q) returned %d chunks, want 0", text, len(chunks))
		}
	}
}

func TestChunkID(t *testing.T) {
	if got := ChunkID("privacy-policy", "Main", 7); got != "privacy-policy:Main:007" {
		t.Errorf("ChunkID() = %q, want %q", got, "privacy-policy:Main:007")
	}
	if got := ChunkID("a", "B", 123); got != "a:B:123" {
		t.Errorf("ChunkID() = %q, want %q", got, "a:B:123")
	}
}

func TestChunkRecords(t *testing.T) {
	e := newTestEngine()
	meta := testMeta()
	text := manySentences(60) // 780 heuristic tokens, several chunks at any budget

	chunks, err := e.Chunk(text, meta, Options{ChunkSize: 280, Overlap: 0})
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("Chunk() returned %d chunks, want several", len(chunks))
	}

	today := time.Now().UTC().Format("2006-01-02")
	for i, c := range chunks {
		if c.Metadata.ChunkIndex != i+1 {
			t.Errorf("chunk %d has index %d, want %d", i, c.Metadata.ChunkIndex, i+1)
		}
		wantID := fmt.Sprintf("privacy-policy:Data Retention:%03d", i+1)
		if c.ID != wantID {
			t.Errorf("chunk %d ID = %q, want %q", i, c.ID, wantID)
		}
		if strings.TrimSpace(c.Text) == "" {
			t.Errorf("chunk %d has empty text", i)
		}
		if c.TokenCount <= 0 || c.TokenCount > 280 {
			t.Errorf("chunk %d token count = %d, want in (0, 280]", i, c.TokenCount)
		}
		if c.Metadata.Slug != meta.Slug || c.Metadata.Section != meta.Section {
			t.Errorf("chunk %d metadata = %+v, want slug/section preserved", i, c.Metadata)
		}
		if c.Metadata.Updated != today {
			t.Errorf("chunk %d updated = %q, want %q", i, c.Metadata.Updated, today)
		}
	}
}

func TestChunkDeterministic(t *testing.T) {
	e := newTestEngine()
	text := manySentences(40)

	first, err := e.Chunk(text, testMeta(), Options{ChunkSize: 200, Overlap: 40})
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	second, err := e.Chunk(text, testMeta(), Options{ChunkSize: 200, Overlap: 40})
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Chunk() is not deterministic for identical input")
	}
}

func TestChunkOverlapContinuity(t *testing.T) {
	e := newTestEngine()
	text := manySentences(40)

	chunks, err := e.Chunk(text, testMeta(), Options{ChunkSize: 150, Overlap: 26})
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("Chunk() returned %d chunks, want several", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		// Each chunk opens with trailing sentences of its predecessor.
		firstSentence := strings.SplitAfter(chunks[i].Text, ".")[0]
		if !strings.Contains(chunks[i-1].Text, firstSentence) {
			t.Errorf("chunk %d does not open with overlap from chunk %d:\nfirst sentence: %q",
				i+1, i, firstSentence)
		}
	}
}

func TestChunkOversizedSentence(t *testing.T) {
	e := newTestEngine()
	// One 200-word sentence with no internal boundaries: 260 heuristic
	// tokens, over any permitted budget.
	giant := strings.Repeat("word ", 199) + "end."

	chunks, err := e.Chunk(giant, testMeta(), Options{ChunkSize: 150, Overlap: 0})
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Chunk() returned %d chunks, want 1 oversized chunk", len(chunks))
	}
	if chunks[0].TokenCount <= 150 {
		t.Errorf("oversized chunk token count = %d, want > 150", chunks[0].TokenCount)
	}
}

func TestChunkMetadataIsolation(t *testing.T) {
	e := newTestEngine()
	meta := testMeta()
	chunks, err := e.Chunk(manySentences(60), meta, Options{ChunkSize: 280})
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("want at least 2 chunks, got %d", len(chunks))
	}

	chunks[0].Metadata.Tags[0] = "mutated"
	if meta.Tags[0] == "mutated" {
		t.Error("mutating a chunk's tags changed the input metadata")
	}
	if chunks[1].Metadata.Tags[0] == "mutated" {
		t.Error("chunks share a tags slice")
	}
}

// White-box coverage of the grouping algorithm at tiny budgets the public
// API clamps away. Each "X." unit counts 2 heuristic tokens.
func TestBuildChunks(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name    string
		units   []string
		budget  int
		overlap int
		want    [][]string
	}{
		{
			name:    "no overlap packs greedily",
			units:   []string{"A.", "B.", "C.", "D."},
			budget:  4,
			overlap: 0,
			want:    [][]string{{"A.", "B."}, {"C.", "D."}},
		},
		{
			name:    "overlap seeds each following chunk",
			units:   []string{"A.", "B.", "C.", "D."},
			budget:  4,
			overlap: 2,
			want:    [][]string{{"A.", "B."}, {"B.", "C."}, {"C.", "D."}},
		},
		{
			name:    "seeds are trimmed to admit the next unit",
			units:   []string{"A.", "B.", "C."},
			budget:  4,
			overlap: 4,
			want:    [][]string{{"A.", "B."}, {"B.", "C."}},
		},
		{
			name:    "everything fits in one chunk",
			units:   []string{"A.", "B."},
			budget:  10,
			overlap: 2,
			want:    [][]string{{"A.", "B."}},
		},
		{
			name:    "oversized unit stands alone",
			units:   []string{"A.", "one two three four five six.", "B."},
			budget:  4,
			overlap: 2,
			want:    [][]string{{"A."}, {"one two three four five six."}, {"B."}},
		},
		{
			name:    "single oversized unit",
			units:   []string{"one two three four five six."},
			budget:  4,
			overlap: 0,
			want:    [][]string{{"one two three four five six."}},
		},
		{
			name:    "no trailing seed-only chunk",
			units:   []string{"A.", "B."},
			budget:  2,
			overlap: 2,
			want:    [][]string{{"A."}, {"B."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.buildChunks(tt.units, tt.budget, tt.overlap)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("buildChunks(%v, %d, %d) = %v, want %v",
					tt.units, tt.budget, tt.overlap, got, tt.want)
			}
		})
	}
}

func TestOverlapSuffix(t *testing.T) {
	e := newTestEngine()

	units := []string{"A.", "B.", "C."} // 2 tokens each

	suffix, total := e.overlapSuffix(units, 4)
	if !reflect.DeepEqual(suffix, []string{"B.", "C."}) || total != 4 {
		t.Errorf("overlapSuffix(4) = %v (%d tokens), want [B. C.] (4)", suffix, total)
	}

	suffix, total = e.overlapSuffix(units, 2)
	if !reflect.DeepEqual(suffix, []string{"C."}) || total != 2 {
		t.Errorf("overlapSuffix(2) = %v (%d tokens), want [C.] (2)", suffix, total)
	}

	if suffix, _ = e.overlapSuffix(units, 0); suffix != nil {
		t.Errorf("overlapSuffix(0) = %v, want nil", suffix)
	}

	if suffix, _ = e.overlapSuffix(units, 1); suffix != nil {
		t.Errorf("overlapSuffix(1) = %v, want nil when nothing fits", suffix)
	}

	// The whole input never comes back as its own overlap.
	if suffix, _ = e.overlapSuffix([]string{"A."}, 100); suffix != nil {
		t.Errorf("overlapSuffix() = %v, want nil when all units fit", suffix)
	}
}
