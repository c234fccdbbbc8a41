package chunker

// Metadata is the recognized-field record attached to every chunk. All
// fields are optional except Slug and Section, which default to
// caller-supplied values or the empty string. The engine never mutates its
// input metadata; each emitted chunk carries an independent copy with
// ChunkIndex and Updated filled in.
type Metadata struct {
	Title         string   `json:"title,omitempty" yaml:"title"`
	Slug          string   `json:"slug" yaml:"slug"`
	Section       string   `json:"section" yaml:"section"`
	Jurisdiction  string   `json:"jurisdiction,omitempty" yaml:"jurisdiction"`
	DocType       string   `json:"doc_type,omitempty" yaml:"doc_type"`
	Version       string   `json:"version,omitempty" yaml:"version"`
	EffectiveDate string   `json:"effective_date,omitempty" yaml:"effective_date"`
	ReviewDate    string   `json:"review_date,omitempty" yaml:"review_date"`
	Owner         string   `json:"owner,omitempty" yaml:"owner"`
	SourceURL     string   `json:"source_url,omitempty" yaml:"source_url"`
	Tags          []string `json:"tags,omitempty" yaml:"tags"`
	SourceFormat  string   `json:"source_format,omitempty" yaml:"-"`

	// ChunkIndex is assigned by the engine in emission order, starting at 1.
	ChunkIndex int `json:"chunk_index,omitempty" yaml:"-"`
	// Updated is the processing date (UTC, YYYY-MM-DD), set by the engine.
	Updated string `json:"updated,omitempty" yaml:"-"`
}

// Clone returns a deep copy of the metadata. The tag list is copied so
// chunks share no mutable state.
func (m Metadata) Clone() Metadata {
	out := m
	if m.Tags != nil {
		out.Tags = make([]string, len(m.Tags))
		copy(out.Tags, m.Tags)
	}
	return out
}
