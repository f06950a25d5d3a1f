// Package main provides the CLI entry point for keydoc.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/keydoc/keydoc-go/pkg/keydoc"
	"github.com/keydoc/keydoc-go/pkg/keydoc/config"
	"github.com/keydoc/keydoc-go/pkg/keydoc/input"
	"github.com/keydoc/keydoc-go/pkg/keydoc/summarize"
)

var (
	outputPath   string
	configPath   string
	excelBook    string
	excelDir     string
	jsonDir      string
	templatesDir string
	promptsDir   string
	maxWords     int
	checkOnly    bool
	useDefaults  bool
	verbose      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "keydoc [document]",
		Short: "Resolve {{TYPE!...}} keywords in text documents",
		Long: `keydoc reads a text document, resolves every {{TYPE!arg!...}} keyword
against spreadsheets, JSON files, templates, interactive prompts and an
AI summarizer, and writes the resolved document.`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().StringVar(&configPath, "config", "keydoc.yaml", "Config file path")
	rootCmd.Flags().StringVar(&excelBook, "excel", "", "Default workbook for XL keywords without a selector")
	rootCmd.Flags().StringVar(&excelDir, "excel-dir", "", "Directory for workbook lookups")
	rootCmd.Flags().StringVar(&jsonDir, "json-dir", "", "Directory for JSON file lookups")
	rootCmd.Flags().StringVar(&templatesDir, "templates-dir", "", "Directory for template lookups")
	rootCmd.Flags().StringVar(&promptsDir, "prompts-dir", "", "Directory for AI prompt lookups")
	rootCmd.Flags().IntVar(&maxWords, "words", 0, "Default AI summary word budget")
	rootCmd.Flags().BoolVar(&checkOnly, "check", false, "Report missing resources and prompts without resolving")
	rootCmd.Flags().BoolVar(&useDefaults, "use-defaults", false, "Answer prompts with their declared defaults")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log each substitution")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// .env carries the API key in development setups; absence is fine.
	_ = godotenv.Load()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	opts, err := buildOptions()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := keydoc.New(opts)
	defer r.Close()

	if checkOnly {
		return runCheck(ctx, r, string(data))
	}

	res, err := r.Resolve(ctx, string(data))
	if err != nil {
		return fmt.Errorf("resolution aborted: %w", err)
	}
	for _, w := range res.Warnings {
		log.Printf("warning: offset %d: %s", w.Offset, w.Message)
	}
	for _, d := range res.Diagnostics {
		log.Printf("unresolved: %s", d)
	}
	if verbose {
		for _, s := range res.Substitutions {
			log.Printf("resolved %s at %d", s.Keyword, s.Start)
		}
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(res.Text), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		fmt.Println(res.Text)
	}

	if len(res.Diagnostics) > 0 {
		return fmt.Errorf("%d keyword(s) left unresolved", len(res.Diagnostics))
	}
	return nil
}

func runCheck(ctx context.Context, r *keydoc.Resolver, text string) error {
	rep, err := r.Preflight(ctx, text)
	if err != nil {
		return err
	}
	for _, m := range rep.Missing {
		fmt.Printf("missing %s: %s\n", m.Kind, m.Name)
	}
	for _, req := range rep.Inputs {
		fmt.Printf("prompt %s: %s\n", req.Kind, req.Label)
	}
	for _, d := range rep.Diagnostics {
		fmt.Printf("unresolvable: %s\n", d)
	}
	if !rep.Clean() {
		return fmt.Errorf("document is not ready to resolve")
	}
	fmt.Println("document is ready to resolve")
	return nil
}

// buildOptions layers the config file under the command-line flags.
func buildOptions() (keydoc.Options, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return keydoc.Options{}, err
	}

	opts := keydoc.DefaultOptions()
	opts.TemplateDir = pick(templatesDir, cfg.Paths.Templates)
	opts.JSONDir = pick(jsonDir, cfg.Paths.JSON)
	opts.ExcelDir = pick(excelDir, cfg.Paths.Excel)
	opts.PromptDir = pick(promptsDir, cfg.Paths.Prompts)
	opts.DefaultWorkbook = excelBook
	opts.MaxWords = cfg.AI.Words
	if maxWords > 0 {
		opts.MaxWords = maxWords
	}

	if useDefaults {
		opts.Inputs = input.Defaults{}
	} else {
		opts.Inputs = input.Form{}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		opts.Summarizer = summarize.NewGemini(summarize.Config{
			APIKey:   key,
			Model:    cfg.AI.Model,
			Endpoint: cfg.AI.Endpoint,
		})
	}
	return opts, nil
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
