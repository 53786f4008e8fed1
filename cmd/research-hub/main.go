package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/research-intel/research-hub/pkg/config"
	"github.com/research-intel/research-hub/pkg/research"
	"github.com/spf13/cobra"
)

var (
	topic       string
	tavilyKey   string
	lmStudioURL string
	model       string
)

func main() {
	// Setup structured logging
	handler := slog.NewTextHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(handler))

	// Load .env file
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, as long as env vars are set
	}

	rootCmd := &cobra.Command{
		Use:   "research-hub",
		Short: "A terminal-based research assistant",
		Long:  `research-hub drafts a research plan with a local LM Studio model and gathers web findings for the topic through multi-query Tavily searches.`,
		Run: func(cmd *cobra.Command, args []string) {

			// Check if topic provided via flags
			topicFlagChanged := cmd.Flags().Changed("topic")

			if !topicFlagChanged {
				// Interactive Mode
				reader := bufio.NewReader(os.Stdin)

				fmt.Print("Enter research topic: ")
				input, _ := reader.ReadString('\n')
				topic = strings.TrimSpace(input)
				if topic == "" {
					slog.Error("Topic cannot be empty")
					os.Exit(1)
				}
			} else {
				// Non-Interactive Mode (Flag provided)
				if topic == "" {
					slog.Error("--topic flag provided but empty")
					os.Exit(1)
				}
			}

			cfg := loadConfig()
			if cfg.TavilyApiKey == "" {
				slog.Warn("TAVILY_API_KEY is not set, web searches will fail")
			}

			slog.Info("Starting research", "topic", topic, "model", cfg.Model)

			result := research.Run(context.Background(), topic, cfg)
			printResult(result)
		},
	}

	rootCmd.Flags().StringVarP(&topic, "topic", "t", "", "The research topic")
	rootCmd.PersistentFlags().StringVar(&tavilyKey, "tavily-key", "", "Tavily API key (overrides TAVILY_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&lmStudioURL, "lm-url", "", "LM Studio base URL (overrides LM_STUDIO_URL)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Model identifier (overrides LM_STUDIO_MODEL)")

	rootCmd.AddCommand(testCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig merges environment configuration with command line overrides.
func loadConfig() research.Config {
	cfg := config.Load()

	rcfg := research.Config{
		TavilyApiKey:   cfg.TavilyApiKey,
		LMStudioURL:    cfg.LMStudioURL,
		Model:          cfg.Model,
		RequestTimeout: cfg.RequestTimeout,
		MaxRetries:     cfg.MaxRetries,
		Temperature:    &cfg.Temperature,
		MaxTokens:      cfg.MaxTokens,
	}
	if tavilyKey != "" {
		rcfg.TavilyApiKey = tavilyKey
	}
	if lmStudioURL != "" {
		rcfg.LMStudioURL = lmStudioURL
	}
	if model != "" {
		rcfg.Model = model
	}
	return rcfg
}

func printResult(result research.Result) {
	fmt.Println()
	fmt.Println("# Research Plan")
	fmt.Println()
	fmt.Println(result.ResearchPlan)
	fmt.Println()
	fmt.Println("# Search Results")
	fmt.Println(result.SearchResults)
	if result.Error != "" {
		fmt.Println()
		fmt.Println("# Errors")
		fmt.Println(result.Error)
	}
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test connectivity to Tavily and LM Studio",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			status := research.TestConnections(context.Background(), cfg)

			fmt.Printf("Tavily:    %s\n", statusWord(status.Tavily))
			fmt.Printf("LM Studio: %s\n", statusWord(status.LMStudio))

			if !status.Tavily || !status.LMStudio {
				os.Exit(1)
			}
		},
	}
}

func statusWord(ok bool) string {
	if ok {
		return "connected"
	}
	return "unreachable"
}
