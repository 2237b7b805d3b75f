package main

import (
	"fmt"
	"os"

	"github.com/edugen/edugen/retriever"
	"github.com/spf13/cobra"
)

var ingestFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed curriculum standards and load them into pgvector",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		f, err := os.Open(ingestFile)
		if err != nil {
			return err
		}
		defer f.Close()
		docs, err := retriever.ReadDocuments(f)
		if err != nil {
			return err
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.store.EnsureSchema(ctx); err != nil {
			return err
		}
		ingester := retriever.NewIngester(a.embedder, a.store,
			retriever.WithBatchSize(a.cfg.Retrieval.BatchSize),
			retriever.WithIngestLogger(a.logger),
		)
		n, err := ingester.Ingest(ctx, docs)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ingested %d of %d documents\n", n, len(docs))
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "all_basecode_embeddings.json", "JSON file of curriculum records")
}
