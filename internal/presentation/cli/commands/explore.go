package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/ducktyper-ai/quacktokenscope/internal/application"
	"github.com/ducktyper-ai/quacktokenscope/internal/application/analyzer"
	"github.com/ducktyper-ai/quacktokenscope/internal/presentation/cli/output"
)

// exploreFlags holds the flags for the explore command.
type exploreFlags struct {
	Model string
	Top   int
}

var exploreOpts exploreFlags

// NewExploreCmd creates the explore command for interactive REPL mode.
func NewExploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Interactive tokenization REPL",
		Long: `Start an interactive tokenization session.

Each line you enter is analyzed by every ready tokenizer variant, and the
summary statistics and efficiency ranking are printed immediately.

Special commands:
  /exit, /quit    - Exit the session
  /help           - Show help message
  /top <n>        - Set how many top tokens to show
  /model <name>   - Set the model used by /cost
  /cost           - Price the last analyzed text under the current model
  /tokenizers     - Show variant status

Examples:
  # Start an exploration session
  qts explore

  # Start with a specific pricing model
  qts explore --model gpt-3.5-turbo`,
		Args: cobra.NoArgs,
		RunE: runExplore,
	}

	cmd.Flags().StringVarP(&exploreOpts.Model, "model", "m", "gpt-4-turbo",
		"model used by the /cost command")
	cmd.Flags().IntVar(&exploreOpts.Top, "top", 3,
		"number of top tokens to show per variant (0 to hide)")

	return cmd
}

// runExplore executes the interactive exploration REPL.
func runExplore(cmd *cobra.Command, args []string) error {
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}
	formatter := GetFormatter()
	ctx := cmd.Context()

	if err := ensureTokenizersReady(ctx, container); err != nil {
		return err
	}

	renderer := output.NewReportRenderer(formatter)

	formatter.Header("Token Exploration")
	formatter.Item("Variants", strings.Join(container.Registry().ListReady(), ", "))
	formatter.Item("Model", exploreOpts.Model)
	formatter.Println("")
	formatter.Info("Type text and press Enter. Type /help for commands.")
	formatter.Println("")

	rl, err := readline.New("qts> ")
	if err != nil {
		return fmt.Errorf("could not create readline: %w", err)
	}
	defer rl.Close()

	currentModel := exploreOpts.Model
	topN := exploreOpts.Top
	var lastResult *analyzer.Result

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			shouldExit, err := handleExploreCommand(line, container, renderer, &currentModel, &topN, lastResult)
			if err != nil {
				formatter.Error("%s", err.Error())
				continue
			}
			if shouldExit {
				break
			}
			continue
		}

		result, err := container.Analyzer().Analyze(ctx, line)
		if err != nil {
			formatter.Error("%s", err.Error())
			continue
		}
		lastResult = result

		renderer.RenderResult(result, variantInfos(container), topN)
	}

	formatter.Info("Exploration session ended.")
	return nil
}

// handleExploreCommand handles special REPL commands.
// Returns (shouldExit, error).
func handleExploreCommand(line string, container *application.Container, renderer *output.ReportRenderer, currentModel *string, topN *int, lastResult *analyzer.Result) (bool, error) {
	formatter := GetFormatter()
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}

	switch strings.ToLower(parts[0]) {
	case "/exit", "/quit":
		return true, nil

	case "/help":
		formatter.Header("Exploration Commands")
		formatter.Item("/exit, /quit", "Exit the session")
		formatter.Item("/help", "Show this help message")
		formatter.Item("/top <n>", "Set how many top tokens to show")
		formatter.Item("/model <name>", "Set the model used by /cost")
		formatter.Item("/cost", "Price the last analyzed text")
		formatter.Item("/tokenizers", "Show variant status")
		formatter.Println("")
		return false, nil

	case "/top":
		if len(parts) != 2 {
			return false, fmt.Errorf("usage: /top <n>")
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 0 {
			return false, fmt.Errorf("top must be a non-negative number")
		}
		*topN = n
		formatter.Success("Showing top %d tokens", n)
		return false, nil

	case "/model":
		if len(parts) != 2 {
			return false, fmt.Errorf("usage: /model <name>")
		}
		if !container.Calculator().Has(parts[1]) {
			return false, fmt.Errorf("unknown model %q (see the pricing table in your config)", parts[1])
		}
		*currentModel = parts[1]
		formatter.Success("Pricing against %s", parts[1])
		return false, nil

	case "/cost":
		if lastResult == nil {
			return false, fmt.Errorf("analyze some text first")
		}
		if len(lastResult.Ranking) == 0 {
			return false, fmt.Errorf("no report to price")
		}
		// Price the winner's count as input, with an equal output estimate.
		winner := lastResult.Ranking[0]
		cost, err := container.Calculator().Compute(*currentModel, winner.TotalTokens, winner.TotalTokens)
		if err != nil {
			return false, err
		}
		renderer.RenderCost(cost)
		return false, nil

	case "/tokenizers":
		reg := container.Registry()
		for _, name := range reg.List() {
			tok := reg.Get(name)
			if tok == nil {
				continue
			}
			if tok.Initialized() {
				formatter.Success("%s (%s)", name, tok.WinningStrategy())
			} else if failure := reg.Failure(name); failure != nil {
				formatter.Error("%s: %v", name, failure)
			} else {
				formatter.Warning("%s: not initialized", name)
			}
		}
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %s (try /help)", parts[0])
	}
}
