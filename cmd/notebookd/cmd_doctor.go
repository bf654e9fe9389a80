package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coherentnotebook/entropy/internal/store"
	"github.com/coherentnotebook/entropy/pkg/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run a system check",
	Long:  `Run a system check to verify configuration and the store are reachable.`,
	Run: func(cmd *cobra.Command, args []string) {
		runDoctor()
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor() {
	fmt.Println("notebookd System Check")
	fmt.Println("=======================")
	fmt.Println()

	allOK := true

	fmt.Print("Configuration... ")
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		allOK = false
	} else {
		fmt.Println("OK")
	}

	fmt.Print("Store... ")
	if cfg != nil {
		if _, err := os.Stat(cfg.Database.Path); os.IsNotExist(err) {
			fmt.Println("NOT INITIALIZED (will be created on first use)")
		} else {
			s, err := store.Open(cfg.Database.Path)
			if err != nil {
				fmt.Printf("ERROR: %v\n", err)
				allOK = false
			} else {
				fmt.Println("OK")
				s.Close()
			}
		}
		fmt.Printf("  Path: %s\n", cfg.Database.Path)
	}

	fmt.Println()
	if allOK {
		fmt.Println("All core systems operational!")
	} else {
		fmt.Println("Some issues detected. Please review the errors above.")
	}

	fmt.Println()
	fmt.Println("Configuration:")
	if cfg != nil {
		fmt.Printf("  Config dir: %s\n", config.ConfigPath())
		fmt.Printf("  Similarity threshold: %.2f\n", cfg.Clustering.SimilarityThreshold)
		fmt.Printf("  Propagation poll interval: %s\n", cfg.Propagation.PollInterval)
	}
}
