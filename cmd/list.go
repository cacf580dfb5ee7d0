package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dialectic-ai/dialectic/internal/benchmark"
	"github.com/dialectic-ai/dialectic/internal/strategy"
)

func newListCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available strategies and benchmarks",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Available strategies:\n\n")
			for _, def := range strategy.NewRegistry().List() {
				fmt.Printf("  - %s\n", def.ID)
				fmt.Printf("    Description: %s\n", def.Description)
				fmt.Printf("    Turns: %d\n\n", def.MaxTurns)
			}

			ids, err := benchmark.List(dataDir)
			if err != nil {
				return fmt.Errorf("failed to list benchmarks: %w", err)
			}

			if len(ids) == 0 {
				fmt.Println("No benchmarks found.")
				return nil
			}

			fmt.Printf("Available benchmarks:\n\n")
			for _, id := range ids {
				def, err := benchmark.Load(id, dataDir)
				if err != nil {
					fmt.Printf("  - %s (error loading: %v)\n", id, err)
					continue
				}
				fmt.Printf("  - %s\n", def.ID)
				fmt.Printf("    Name: %s\n", def.Name)
				fmt.Printf("    Description: %s\n", def.Description)
				fmt.Printf("    Format: %s\n", def.AnswerFormat)
				fmt.Printf("    Questions: %d\n\n", len(def.Questions))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "External benchmark directory")

	return cmd
}
