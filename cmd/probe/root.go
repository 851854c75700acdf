package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	gateway "github.com/avishaychauhan/EchoLabs/common/llm"
	"github.com/avishaychauhan/EchoLabs/core/config"
	"github.com/avishaychauhan/EchoLabs/internal/llm"
)

var version = "dev"

// probe carries the gateway every subcommand shares. It is built in
// PersistentPreRunE so flags are parsed first.
type probe struct {
	provider string
	model    string
	client   gateway.Client
}

func newRootCommand() *cobra.Command {
	p := &probe{}

	cmd := &cobra.Command{
		Use:   "echolens-probe",
		Short: "Drive the echolens transcript pipeline offline",
		Long: `echolens-probe runs the intent classifier, the analyzers and the summary
deduplicator directly, printing their JSON output.

The model backend comes from the same LLM_* environment as the server. Use
--provider mock to answer every stage from keyword rules with no credential.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&p.provider, "provider", "", "Override LLM_PROVIDER (openai, anthropic or mock)")
	cmd.PersistentFlags().StringVar(&p.model, "model", "", "Override LLM_MODEL")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if *debugLogging {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		return p.connect()
	}

	cmd.AddCommand(newClassifyCommand(p))
	cmd.AddCommand(newChartCommand(p))
	cmd.AddCommand(newReferenceCommand(p))
	cmd.AddCommand(newContextCommand())
	cmd.AddCommand(newSweepCommand(p))
	cmd.AddCommand(newDedupCommand())
	cmd.AddCommand(newRunCommand(p))

	return cmd
}

func (p *probe) connect() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if p.provider != "" {
		cfg.LLM.Provider = strings.ToLower(p.provider)
	}
	if p.model != "" {
		cfg.LLM.Model = p.model
	}

	if cfg.LLM.Provider == gateway.ProviderMock {
		p.client = gateway.WithTimeout(llm.NewKeywordClient(), cfg.LLM.Timeout)
		return nil
	}

	client, err := gateway.New(gateway.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: gateway.Temp(cfg.LLM.Temperature),
	})
	if err != nil {
		return fmt.Errorf("creating llm client: %w", err)
	}
	if !gateway.Configured(client) {
		slog.Warn("no LLM_API_KEY set, model stages will fall back", "provider", cfg.LLM.Provider)
	}
	p.client = gateway.WithTimeout(client, cfg.LLM.Timeout)
	return nil
}

func execute() error {
	return newRootCommand().Execute()
}

// inputText joins the positional arguments, or reads file when set. A file
// of "-" reads stdin.
func inputText(cmd *cobra.Command, args []string, file string) (string, error) {
	if file == "" {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return "", fmt.Errorf("no input text: pass it as arguments or use --file")
		}
		return text, nil
	}

	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("input %s is empty", file)
	}
	return text, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
