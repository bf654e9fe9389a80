package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/coherentnotebook/entropy/internal/causal"
	"github.com/coherentnotebook/entropy/internal/clustering"
	"github.com/coherentnotebook/entropy/internal/entropy"
	"github.com/coherentnotebook/entropy/internal/notebook"
	"github.com/coherentnotebook/entropy/internal/propagation"
	"github.com/coherentnotebook/entropy/internal/service"
	"github.com/coherentnotebook/entropy/internal/store"
	"github.com/coherentnotebook/entropy/pkg/config"
)

var submitAuthorSeed byte

var submitCmd = &cobra.Command{
	Use:   "submit <notebook-id> <content>",
	Short: "Submit a new entry to a notebook",
	Long: `Submit runs the full write path against a notebook: it assigns the
entry a causal position, computes its integration cost against the
coherence snapshot held by this process's engine, persists the entry,
and enqueues a propagation job for the entries its cost affects. The
snapshot is not rebuilt from storage: each invocation starts from an
empty snapshot, so the cost does not reflect the notebook's earlier
entries. Intended for manual testing and scripting; it is not the
system's only write path; a long-running process embedding
internal/service is the intended integration point for a real
collaborator.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runSubmit(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().Uint8Var(&submitAuthorSeed, "author", 1, "deterministic test author id seed (1-255)")
}

func runSubmit(notebookIDArg, content string) {
	notebookID, err := uuid.Parse(notebookIDArg)
	if err != nil {
		fmt.Printf("Invalid notebook id %q: %v\n", notebookIDArg, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	s, err := store.Open(cfg.Database.Path)
	if err != nil {
		fmt.Printf("Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	if err := s.InitSchema(); err != nil {
		fmt.Printf("Error initializing schema: %v\n", err)
		os.Exit(1)
	}

	exists, err := s.NotebookExists(context.Background(), notebookID)
	if err != nil {
		fmt.Printf("Error checking notebook: %v\n", err)
		os.Exit(1)
	}
	if !exists {
		fmt.Printf("Notebook %s is not registered\n", notebookID)
		os.Exit(1)
	}

	clusterCfg := clustering.Config{
		SimilarityThreshold: cfg.Clustering.SimilarityThreshold,
		MaxClusters:         cfg.Clustering.MaxClusters,
	}
	engine := entropy.New(clusterCfg, s)
	position := causal.NewService(s.DB())
	queue := propagation.NewQueue()
	notebookSvc := service.NewNotebook(engine, position, s, queue)

	author := testAuthorID(submitAuthorSeed)
	if err := s.CreateAuthor(context.Background(), author, nil); err != nil {
		fmt.Printf("Error registering author: %v\n", err)
		os.Exit(1)
	}

	entry := notebook.NewEntry(service.NewEntryID(), author, []byte(content), "text/plain")

	stamped, err := notebookSvc.SubmitEntry(context.Background(), notebookID, entry)
	if err != nil {
		fmt.Printf("Error submitting entry: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Entry %s submitted\n", stamped.ID)
	fmt.Printf("  Sequence: %d\n", stamped.CausalPosition.Sequence)
	fmt.Printf("  Catalog shift: %.4f\n", stamped.IntegrationCost.CatalogShift)
	fmt.Printf("  Entries revised: %d\n", stamped.IntegrationCost.EntriesRevised)
	fmt.Printf("  References broken: %d\n", stamped.IntegrationCost.ReferencesBroken)
	fmt.Printf("  Orphan: %v\n", stamped.IntegrationCost.Orphan)
	fmt.Printf("  Queued propagation jobs: %d\n", queue.Len())
}

// testAuthorID derives a deterministic AuthorID from a small seed, for
// the CLI's manual-testing use case where registering a real author
// keypair out of band would be overkill.
func testAuthorID(seed byte) notebook.AuthorID {
	var id notebook.AuthorID
	for i := range id {
		id[i] = seed
	}
	return id
}
