package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragbuilder/internal/exporter"
	"ragbuilder/internal/pipeline"
)

var (
	batchChunkSize  int
	batchOverlap    int
	batchSection    string
	batchSlugPrefix string
	batchOut        string
	batchEmbeddings bool
)

// batchCmd ingests every supported document under a folder and reports run
// statistics.
var batchCmd = &cobra.Command{
	Use:   "batch <folder>",
	Short: "Chunk every supported document in a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		deps, err := buildDeps(batchEmbeddings)
		if err != nil {
			return err
		}
		defer deps.Close()

		size, overlap := resolveChunkParams(cmd, batchChunkSize, batchOverlap)
		result, err := deps.Pipeline.IngestFolder(ctx, args[0], pipeline.Options{
			ChunkSize:  size,
			Overlap:    overlap,
			Section:    batchSection,
			SlugPrefix: batchSlugPrefix,
			Embeddings: batchEmbeddings,
		})
		if err != nil {
			return err
		}

		if batchOut != "" && len(result.Records) > 0 {
			if err := exporter.Save(batchOut, result.Records); err != nil {
				return err
			}
			fmt.Printf("wrote %d chunks to %s\n", len(result.Records), batchOut)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Stats)
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchChunkSize, "chunk-size", 0, "token budget per chunk (default from config)")
	batchCmd.Flags().IntVar(&batchOverlap, "overlap", 0, "overlap token budget (default from config)")
	batchCmd.Flags().StringVar(&batchSection, "section", "", "section label for documents without one")
	batchCmd.Flags().StringVar(&batchSlugPrefix, "slug-prefix", "", "prefix applied to derived slugs")
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "output file (.jsonl or .csv)")
	batchCmd.Flags().BoolVar(&batchEmbeddings, "embeddings", false, "attach embeddings and upsert to the vector store")
	rootCmd.AddCommand(batchCmd)
}
