package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dialectic",
	Short: "Multi-agent dialogue evaluation for language models",
	Long: `dialectic orchestrates structured dialogues between language model agents
(debate, cooperative, teacher-student) and measures whether talking it out
improves answers. Every benchmark question is solved twice: once by a single
model playing both agents (simulated) and once by two agents with independent
conversation histories (dual), and the two outcomes are scored side by side.

Live debates can be watched over the HTTP API's SSE stream, and all tools are
also exposed over the Model Context Protocol.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}
	},
}

var (
	buildCommit = "unknown"
	buildDate   = "unknown"
)

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// SetBuildInfo sets the commit and build date for the version command.
func SetBuildInfo(commit, date string) {
	buildCommit = commit
	buildDate = date
}

// Execute is the main entry point for the CLI application.
func Execute() {
	// Local development keeps credentials in a .env file; absence is fine.
	_ = godotenv.Load()

	rootCmd.SetVersionTemplate(`{{printf "dialectic version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newListCmd())

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}
