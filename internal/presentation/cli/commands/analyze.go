package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ducktyper-ai/quacktokenscope/internal/application"
	"github.com/ducktyper-ai/quacktokenscope/internal/application/analyzer"
	"github.com/ducktyper-ai/quacktokenscope/internal/application/ports"
	"github.com/ducktyper-ai/quacktokenscope/internal/domain/token"
	"github.com/ducktyper-ai/quacktokenscope/internal/presentation/cli/output"
)

// analyzeFlags holds the flags for the analyze command.
type analyzeFlags struct {
	File       string
	Tokenizers []string
	Top        int
}

var analyzeOpts analyzeFlags

// analyzeReportJSON is the per-variant payload for JSON output.
type analyzeReportJSON struct {
	Summary *token.Summary         `json:"summary"`
	Top     []token.FrequencyEntry `json:"top_tokens"`
}

// analyzeResultJSON is the analyze command's JSON output shape.
type analyzeResultJSON struct {
	Length  int                          `json:"length"`
	Reports map[string]analyzeReportJSON `json:"reports"`
	Ranking []token.RankedVariant        `json:"ranking"`
	Errors  map[string]string            `json:"errors,omitempty"`
}

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Analyze text across tokenizer variants",
		Long: `Tokenize text with every ready tokenizer variant and compare the results.

For each variant the command reports token counts, distinct tokens, the
type-token ratio, average token length, and compression, plus the most
frequent tokens. Variants are ranked by token efficiency.

Examples:
  # Analyze a string with every variant
  qts analyze "the quick brown fox"

  # Analyze a file with selected variants
  qts analyze --file article.txt --tokenizer tiktoken --tokenizer words

  # Read from stdin
  cat article.txt | qts analyze -

  # Show the 10 most frequent tokens per variant
  qts analyze "the quick brown fox" --top 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeOpts.File, "file", "f", "", "read text from file")
	cmd.Flags().StringSliceVarP(&analyzeOpts.Tokenizers, "tokenizer", "t", nil, "variants to run (default: all ready)")
	cmd.Flags().IntVar(&analyzeOpts.Top, "top", 5, "number of top tokens to show per variant (0 to hide)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}
	formatter := GetFormatter()
	ctx := cmd.Context()

	text, err := readInputText(args, analyzeOpts.File)
	if err != nil {
		return err
	}

	if err := ensureTokenizersReady(ctx, container); err != nil {
		return err
	}

	var result *analyzer.Result
	if len(analyzeOpts.Tokenizers) > 0 {
		result, err = container.Analyzer().AnalyzeWith(ctx, text, analyzeOpts.Tokenizers)
	} else {
		result, err = container.Analyzer().Analyze(ctx, text)
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(buildAnalyzeJSON(result, analyzeOpts.Top))
	}

	renderer := output.NewReportRenderer(formatter)
	renderer.RenderResult(result, variantInfos(container), analyzeOpts.Top)
	return nil
}

// buildAnalyzeJSON shapes an analysis result for JSON output.
func buildAnalyzeJSON(result *analyzer.Result, topN int) analyzeResultJSON {
	out := analyzeResultJSON{
		Length:  len(result.Text),
		Reports: make(map[string]analyzeReportJSON, len(result.Reports)),
		Ranking: result.Ranking,
	}
	for name, report := range result.Reports {
		out.Reports[name] = analyzeReportJSON{
			Summary: report.Summary,
			Top:     report.Frequency.Top(topN),
		}
	}
	if len(result.Errors) > 0 {
		out.Errors = make(map[string]string, len(result.Errors))
		for name, err := range result.Errors {
			out.Errors[name] = err.Error()
		}
	}
	return out
}

// variantInfos collects display metadata for every registered variant.
func variantInfos(container *application.Container) map[string]ports.TokenizerInfo {
	infos := make(map[string]ports.TokenizerInfo)
	reg := container.Registry()
	for _, name := range reg.List() {
		if tok := reg.Get(name); tok != nil {
			infos[name] = tok.Info()
		}
	}
	return infos
}

// readInputText resolves the text to analyze from the positional argument,
// the --file flag, or stdin when the argument is "-".
func readInputText(args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	}

	if len(args) == 1 {
		if args[0] == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return "", fmt.Errorf("failed to read stdin: %w", err)
			}
			return string(data), nil
		}
		if strings.TrimSpace(args[0]) == "" {
			return "", fmt.Errorf("text must not be empty")
		}
		return args[0], nil
	}

	return "", fmt.Errorf("provide text as an argument, via --file, or '-' for stdin")
}
