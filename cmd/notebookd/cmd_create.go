package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/coherentnotebook/entropy/internal/notebook"
	"github.com/coherentnotebook/entropy/internal/store"
	"github.com/coherentnotebook/entropy/pkg/config"
)

var createOwnerSeed byte

var createNotebookCmd = &cobra.Command{
	Use:   "create-notebook <name>",
	Short: "Register a new notebook",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCreateNotebook(args[0])
	},
}

func init() {
	rootCmd.AddCommand(createNotebookCmd)
	createNotebookCmd.Flags().Uint8Var(&createOwnerSeed, "owner", 1, "deterministic test owner id seed (1-255)")
}

func runCreateNotebook(name string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureConfigDir(); err != nil {
		fmt.Printf("Error creating config directory: %v\n", err)
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

	owner := testAuthorID(createOwnerSeed)
	if err := s.CreateAuthor(context.Background(), owner, nil); err != nil {
		fmt.Printf("Error registering owner: %v\n", err)
		os.Exit(1)
	}

	id := notebook.NotebookID(uuid.New())
	if err := s.CreateNotebook(context.Background(), id, name, owner); err != nil {
		fmt.Printf("Error creating notebook: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Notebook %q created\n", name)
	fmt.Printf("  ID: %s\n", id)
	fmt.Printf("  Owner seed: %d\n", createOwnerSeed)
}
