package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ducktyper-ai/quacktokenscope/internal/application/analyzer"
	"github.com/ducktyper-ai/quacktokenscope/internal/domain/pricing"
	"github.com/ducktyper-ai/quacktokenscope/internal/domain/scenario"
	"github.com/ducktyper-ai/quacktokenscope/internal/presentation/cli/output"
)

// costFlags holds the flags for the cost command.
type costFlags struct {
	Model        string
	Tokenizer    string
	File         string
	InputTokens  int
	OutputTokens int
	WhatIf       bool
	Compare      bool
	AltModels    []string
}

var costOpts costFlags

// costResultJSON is the cost command's JSON output shape.
type costResultJSON struct {
	Cost      *pricing.CostBreakdown   `json:"cost,omitempty"`
	Compare   []*pricing.CostBreakdown `json:"compare,omitempty"`
	Scenarios []scenario.Scenario      `json:"scenarios,omitempty"`
}

// NewCostCmd creates the cost command.
func NewCostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost [text]",
		Short: "Estimate API cost for a token count or text",
		Long: `Estimate what processing would cost under a model's pricing.

Token counts come either from explicit flags or from tokenizing the given
text with the chosen variant. Costs are computed per 1K tokens from the
pricing table, which can be extended or overridden in the config.

Examples:
  # Explicit token counts
  qts cost --model gpt-4-turbo --input-tokens 1000 --output-tokens 500

  # Count the input tokens by tokenizing text
  qts cost "the quick brown fox" --model gpt-4-turbo --output-tokens 200

  # Compare every model in the pricing table
  qts cost --input-tokens 1000 --output-tokens 500 --compare

  # What-if sweep: output ratios, other tokenizers, other models
  qts cost "the quick brown fox" --what-if --alt-model gpt-3.5-turbo`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCost,
	}

	cmd.Flags().StringVarP(&costOpts.Model, "model", "m", "gpt-4-turbo", "model to price against")
	cmd.Flags().StringVarP(&costOpts.Tokenizer, "tokenizer", "t", "tiktoken", "variant used to count input tokens from text")
	cmd.Flags().StringVarP(&costOpts.File, "file", "f", "", "read text from file")
	cmd.Flags().IntVar(&costOpts.InputTokens, "input-tokens", 0, "input token count (overridden by text)")
	cmd.Flags().IntVar(&costOpts.OutputTokens, "output-tokens", 0, "expected output token count")
	cmd.Flags().BoolVar(&costOpts.WhatIf, "what-if", false, "run the what-if scenario sweep")
	cmd.Flags().BoolVar(&costOpts.Compare, "compare", false, "compare cost across every model in the table")
	cmd.Flags().StringSliceVar(&costOpts.AltModels, "alt-model", nil, "additional models for the what-if sweep")

	return cmd
}

func runCost(cmd *cobra.Command, args []string) error {
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}
	formatter := GetFormatter()
	ctx := cmd.Context()

	inputTokens := costOpts.InputTokens
	var result *analyzer.Result

	// When text is given, count its tokens with the chosen variant. The
	// what-if sweep additionally wants every other variant's count, so it
	// runs the full fleet.
	if len(args) == 1 || costOpts.File != "" {
		text, err := readInputText(args, costOpts.File)
		if err != nil {
			return err
		}
		if err := ensureTokenizersReady(ctx, container); err != nil {
			return err
		}

		if costOpts.WhatIf {
			result, err = container.Analyzer().Analyze(ctx, text)
		} else {
			result, err = container.Analyzer().AnalyzeWith(ctx, text, []string{costOpts.Tokenizer})
		}
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		report, ok := result.Reports[costOpts.Tokenizer]
		if !ok {
			return fmt.Errorf("tokenizer %q did not produce a report", costOpts.Tokenizer)
		}
		inputTokens = report.Summary.TotalTokens
	} else if !cmd.Flags().Changed("input-tokens") {
		return fmt.Errorf("provide text or --input-tokens")
	}

	if inputTokens < 0 || costOpts.OutputTokens < 0 {
		return fmt.Errorf("token counts must be non-negative")
	}

	calc := container.Calculator()
	renderer := output.NewReportRenderer(formatter)
	jsonOut := costResultJSON{}

	if costOpts.Compare {
		costs := calc.Compare(inputTokens, costOpts.OutputTokens)
		if formatter.Format() == output.FormatJSON {
			jsonOut.Compare = costs
			return formatter.JSON(jsonOut)
		}
		renderer.RenderComparison(costs)
		return nil
	}

	cost, err := calc.Compute(costOpts.Model, inputTokens, costOpts.OutputTokens)
	if err != nil {
		return fmt.Errorf("cost computation failed: %w", err)
	}
	jsonOut.Cost = cost

	var scenarios []scenario.Scenario
	if costOpts.WhatIf {
		base := scenario.Base{
			Tokenizer:    costOpts.Tokenizer,
			Model:        costOpts.Model,
			InputTokens:  inputTokens,
			OutputTokens: costOpts.OutputTokens,
		}
		sweep := scenario.DefaultSweep()
		sweep.AltModels = costOpts.AltModels
		if result != nil {
			for _, ranked := range result.Ranking {
				if ranked.Tokenizer == costOpts.Tokenizer {
					continue
				}
				sweep.AltTokenizers = append(sweep.AltTokenizers, scenario.Alternative{
					Tokenizer:   ranked.Tokenizer,
					InputTokens: ranked.TotalTokens,
				})
			}
		}

		scenarios, err = scenario.Explore(base, sweep, calc)
		if err != nil {
			return fmt.Errorf("what-if exploration failed: %w", err)
		}
		jsonOut.Scenarios = scenarios
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(jsonOut)
	}

	renderer.RenderCost(cost)
	if costOpts.WhatIf {
		renderer.RenderScenarios(scenarios)
	}
	return nil
}
