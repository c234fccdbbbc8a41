package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ragbuilder/internal/exporter"
	"ragbuilder/internal/pipeline"
)

var (
	chunkSize       int
	chunkOverlap    int
	chunkSlug       string
	chunkSection    string
	chunkOut        string
	chunkEmbeddings bool
)

// chunkCmd chunks a single document and writes the records to stdout or a
// file.
var chunkCmd = &cobra.Command{
	Use:   "chunk <file>",
	Short: "Chunk a single document into token-bounded pieces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}

		deps, err := buildDeps(chunkEmbeddings)
		if err != nil {
			return err
		}
		defer deps.Close()

		size, overlap := resolveChunkParams(cmd, chunkSize, chunkOverlap)
		records, err := deps.Pipeline.IngestFile(ctx, absPath, filepath.Base(absPath), pipeline.Options{
			ChunkSize:  size,
			Overlap:    overlap,
			Slug:       chunkSlug,
			Section:    chunkSection,
			Embeddings: chunkEmbeddings,
		})
		if err != nil {
			return err
		}
		if records == nil {
			fmt.Fprintln(os.Stderr, "file unchanged since last run, nothing to do")
			return nil
		}

		if chunkOut != "" {
			if err := exporter.Save(chunkOut, records); err != nil {
				return err
			}
			fmt.Printf("wrote %d chunks to %s\n", len(records), chunkOut)
			return nil
		}
		return exporter.WriteJSONL(os.Stdout, records)
	},
}

func init() {
	chunkCmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "token budget per chunk (default from config)")
	chunkCmd.Flags().IntVar(&chunkOverlap, "overlap", 0, "overlap token budget (default from config)")
	chunkCmd.Flags().StringVar(&chunkSlug, "slug", "", "slug override (default: filename)")
	chunkCmd.Flags().StringVar(&chunkSection, "section", "", "section label (default: front-matter, then \"Main\")")
	chunkCmd.Flags().StringVarP(&chunkOut, "out", "o", "", "output file (.jsonl or .csv); stdout when empty")
	chunkCmd.Flags().BoolVar(&chunkEmbeddings, "embeddings", false, "attach embeddings to each chunk")
	rootCmd.AddCommand(chunkCmd)
}
