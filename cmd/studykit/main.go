// Package main provides the studykit CLI for generating study artifacts
// from local text files.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/studykit/studykit/internal/artifact"
	"github.com/studykit/studykit/internal/cache"
	"github.com/studykit/studykit/internal/config"
	"github.com/studykit/studykit/internal/genai"
	"github.com/studykit/studykit/internal/keypool"
)

var (
	flagStyle  string
	flagDepth  string
	flagLength string
	flagCount  int
)

var rootCmd = &cobra.Command{
	Use:   "studykit",
	Short: "Generate study artifacts from a document",
	Long: `CLI for the studykit generation core.

Reads a plain-text document and produces a summary, flashcards, a mindmap or
a chat answer using the hosted generation service.

Environment variables:
  STUDYKIT_API_KEY     API credential (required; _2, _3, ... for more keys)
  STUDYKIT_CONFIG      Optional path to a YAML config file`,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file>",
	Short: "Generate a customized summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService()
		if err != nil {
			return err
		}
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}

		res, err := svc.Summary(cmd.Context(), doc, artifact.SummaryOptions{
			Style:  flagStyle,
			Depth:  flagDepth,
			Length: flagLength,
		})
		if err != nil {
			return err
		}
		fmt.Println(res.Value)
		return nil
	},
}

var flashcardsCmd = &cobra.Command{
	Use:   "flashcards <file>",
	Short: "Generate study flashcards as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService()
		if err != nil {
			return err
		}
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}

		set, err := svc.Flashcards(cmd.Context(), doc, flagCount)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(set.Cards, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var mindmapCmd = &cobra.Command{
	Use:   "mindmap <file>",
	Short: "Generate a markdown mindmap",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService()
		if err != nil {
			return err
		}
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}

		res, err := svc.Mindmap(cmd.Context(), doc)
		if err != nil {
			return err
		}
		fmt.Println(res.Value)
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat <file> <question>",
	Short: "Ask a question about a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService()
		if err != nil {
			return err
		}
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}

		answer, err := svc.Chat(cmd.Context(), doc, args[1])
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().StringVar(&flagStyle, "style", artifact.StyleConceptual, "summary style: conceptual, mathematical, bullet-points, detailed")
	summarizeCmd.Flags().StringVar(&flagDepth, "depth", artifact.DepthIntermediate, "summary depth: basic, intermediate, advanced")
	summarizeCmd.Flags().StringVar(&flagLength, "length", artifact.LengthMedium, "summary length: short, medium, long")
	flashcardsCmd.Flags().IntVar(&flagCount, "count", artifact.DefaultFlashcardCount, "number of flashcards to generate")

	rootCmd.AddCommand(summarizeCmd, flashcardsCmd, mindmapCmd, chatCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildService assembles the generation stack the same way the server does.
func buildService() (*artifact.Service, error) {
	cfg, err := config.Load(config.Env("STUDYKIT_CONFIG", ""))
	if err != nil {
		return nil, err
	}

	pool, err := keypool.New(config.Credentials())
	if err != nil {
		return nil, fmt.Errorf("%w (set %s)", err, config.CredentialEnvPrefix)
	}

	clientOpts := []genai.ClientOption{}
	if cfg.Generation.Model != "" {
		clientOpts = append(clientOpts, genai.WithModel(cfg.Generation.Model))
	}
	client := genai.NewClient(clientOpts...)
	invoker := genai.NewInvoker(pool,
		genai.WithMaxAttempts(cfg.Generation.MaxAttempts),
		genai.WithBackoffBase(cfg.Generation.BackoffBase()),
	)
	generator := genai.NewService(client, invoker, slog.Default())

	store := cache.New(
		cache.WithCapacity(cfg.Cache.Capacity),
		cache.WithTTL(cfg.Cache.TTL()),
	)
	return artifact.NewService(generator, store, slog.Default()), nil
}

func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(data), nil
}
