// Package cli wires the command line surface: flags, config resolution and
// the job run with its summary report.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/officetrans/go-office-translator/internal/config"
	"github.com/officetrans/go-office-translator/internal/document"
	"github.com/officetrans/go-office-translator/internal/logger"
	"github.com/officetrans/go-office-translator/internal/translator"
	"github.com/officetrans/go-office-translator/pkg/providers"
	"github.com/officetrans/go-office-translator/pkg/providers/identity"
	"github.com/officetrans/go-office-translator/pkg/providers/openai"
	"github.com/officetrans/go-office-translator/pkg/translation"
)

var (
	cfgFile       string
	sourceLang    string
	targetLang    string
	outputDir     string
	glossaryPath  string
	blacklistPath string
	providerName  string
	modelName     string
	contextText   string
	debugMode     bool
	dryRun        bool
)

// NewRootCommand builds the officetrans root command.
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "officetrans [flags] file...",
		Short: "Translate PowerPoint and Excel files while preserving formatting",
		Long: `officetrans translates the text of .pptx and .xlsx files while
preserving their structure: runs keep their formatting, tables keep their
layout, and shapes grow to fit translated text that no longer fits.

Supported providers:
  - openai:   OpenAI-compatible chat completion backends
  - identity: returns the input unchanged (offline dry runs)`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./officetrans.toml, $HOME/.officetrans)")
	rootCmd.PersistentFlags().StringVarP(&sourceLang, "source", "s", "", "source language (BCP 47 tag, empty = auto-detect)")
	rootCmd.PersistentFlags().StringVarP(&targetLang, "target", "t", "", "target language (BCP 47 tag)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "directory for translated files (default: next to input)")
	rootCmd.PersistentFlags().StringVar(&glossaryPath, "glossary", "", "TOML glossary file")
	rootCmd.PersistentFlags().StringVar(&blacklistPath, "blacklist", "", "TOML blacklist of terms to keep untranslated")
	rootCmd.PersistentFlags().StringVar(&providerName, "provider", "", "translation provider (openai, identity)")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "model name for the openai provider")
	rootCmd.PersistentFlags().StringVar(&contextText, "context", "", "background context passed with every request")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "run the full pipeline with the identity provider")

	rootCmd.AddCommand(newInitConfigCommand())

	return rootCmd
}

func newInitConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a commented starter config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "officetrans.toml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
}

func run(ctx context.Context, inputs []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(cfg.Debug)
	defer func() {
		_ = log.Sync()
	}()

	service, err := buildService(cfg)
	if err != nil {
		return err
	}

	blacklist, err := loadBlacklist(cfg.BlacklistPath)
	if err != nil {
		return err
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	pterm.DefaultSection.Printf("Translating %d file(s) to %s", len(inputs), cfg.TargetLang)
	spinner, _ := pterm.DefaultSpinner.Start("translating...")

	coordinator := translator.NewCoordinator(cfg, service, blacklist, log)
	results, criticalErr := coordinator.Run(ctx, inputs, outputDir)

	if criticalErr != nil {
		spinner.Fail("translation halted")
	} else {
		spinner.Success("translation finished")
	}

	printSummary(results)

	if criticalErr != nil {
		color.Red("critical backend failure, remaining files were skipped: %v", criticalErr)
		return criticalErr
	}
	for _, r := range results {
		if r.Status == translator.StatusFailed {
			return fmt.Errorf("%d file(s) failed", countFailed(results))
		}
	}
	return nil
}

// applyFlags lets command line flags override file and environment config.
func applyFlags(cfg *config.Config) {
	if sourceLang != "" {
		cfg.SourceLang = sourceLang
	}
	if targetLang != "" {
		cfg.TargetLang = targetLang
	}
	if glossaryPath != "" {
		cfg.GlossaryPath = glossaryPath
	}
	if blacklistPath != "" {
		cfg.BlacklistPath = blacklistPath
	}
	if providerName != "" {
		cfg.Provider = providerName
	}
	if modelName != "" {
		cfg.Model = modelName
	}
	if contextText != "" {
		cfg.Context = contextText
	}
	if debugMode {
		cfg.Debug = true
	}
	if dryRun {
		cfg.Provider = "identity"
	}
}

func buildService(cfg *config.Config) (translation.Service, error) {
	switch cfg.Provider {
	case "identity":
		return identity.New(), nil
	case "openai":
		pc := providers.DefaultConfig()
		pc.APIKey = cfg.APIKey
		pc.BaseURL = cfg.BaseURL
		if cfg.Model != "" {
			pc.Model = cfg.Model
		}
		if cfg.RequestTimeout > 0 {
			pc.Timeout = time.Duration(cfg.RequestTimeout) * time.Second
		}
		return openai.New(pc), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func loadBlacklist(path string) ([]document.BlacklistEntry, error) {
	entries, err := config.LoadBlacklist(path)
	if err != nil {
		return nil, err
	}
	blacklist := make([]document.BlacklistEntry, 0, len(entries))
	for _, e := range entries {
		blacklist = append(blacklist, document.BlacklistEntry{
			Term:          e.Term,
			CaseSensitive: e.CaseSensitive,
		})
	}
	return blacklist, nil
}

func printSummary(results []translator.FileResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"File", "Status", "Units", "Took", "Output"})
	for _, r := range results {
		status := string(r.Status)
		switch r.Status {
		case translator.StatusTranslated:
			status = text.FgGreen.Sprint(status)
		case translator.StatusFailed:
			status = text.FgRed.Sprint(status)
		case translator.StatusSkipped:
			status = text.FgYellow.Sprint(status)
		}
		out := r.Output
		if r.Status != translator.StatusTranslated {
			out = r.Detail
		}
		t.AppendRow(table.Row{r.Input, status, r.Units, r.Duration.Round(time.Millisecond), out})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func countFailed(results []translator.FileResult) int {
	n := 0
	for _, r := range results {
		if r.Status == translator.StatusFailed {
			n++
		}
	}
	return n
}
