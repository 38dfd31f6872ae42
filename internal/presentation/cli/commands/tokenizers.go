package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ducktyper-ai/quacktokenscope/internal/presentation/cli/output"
)

// tokenizerStatusJSON is the tokenizers command's per-variant JSON shape.
type tokenizerStatusJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Guild       string `json:"guild"`
	Ready       bool   `json:"ready"`
	Strategy    string `json:"strategy,omitempty"`
	VocabSize   int    `json:"vocab_size,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewTokenizersCmd creates the tokenizers command.
func NewTokenizersCmd() *cobra.Command {
	var skipInit bool

	cmd := &cobra.Command{
		Use:   "tokenizers",
		Short: "List tokenizer variants and their status",
		Long: `List the registered tokenizer variants.

By default each variant is initialized first, so the listing shows which
initialization strategy won and the vocabulary size. Use --skip-init to
list registration metadata without initializing anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenizers(cmd, skipInit)
		},
	}

	cmd.Flags().BoolVar(&skipInit, "skip-init", false, "list without initializing the variants")

	return cmd
}

func runTokenizers(cmd *cobra.Command, skipInit bool) error {
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}
	formatter := GetFormatter()

	if !skipInit {
		if err := ensureTokenizersReady(cmd.Context(), container); err != nil {
			return err
		}
	}

	reg := container.Registry()
	statuses := make([]tokenizerStatusJSON, 0, reg.Count())
	for _, name := range reg.List() {
		tok := reg.Get(name)
		if tok == nil {
			continue
		}
		info := tok.Info()
		status := tokenizerStatusJSON{
			Name:        info.Name,
			Description: info.Description,
			Guild:       info.Guild,
			Ready:       tok.Initialized(),
		}
		if failure := reg.Failure(name); failure != nil {
			status.Error = failure.Error()
		}
		if status.Ready {
			status.Strategy = tok.WinningStrategy()
			if size, err := tok.VocabSize(); err == nil {
				status.VocabSize = size
			}
		}
		statuses = append(statuses, status)
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(statuses)
	}

	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		state := "registered"
		if s.Ready {
			state = "ready"
		} else if s.Error != "" {
			state = "failed"
		}
		vocab := "-"
		if s.VocabSize > 0 {
			vocab = strconv.Itoa(s.VocabSize)
		}
		strategy := s.Strategy
		if strategy == "" {
			strategy = "-"
		}
		rows = append(rows, []string{s.Name, s.Guild, state, strategy, vocab})
	}

	formatter.Header("Tokenizer Variants")
	formatter.Table(output.TableData{
		Columns: []output.TableColumn{
			{Header: "Name"},
			{Header: "Guild"},
			{Header: "Status"},
			{Header: "Strategy"},
			{Header: "Vocab", Align: output.AlignRight},
		},
		Rows: rows,
	})

	for _, s := range statuses {
		if s.Error != "" {
			formatter.Warning("%s: %s", s.Name, s.Error)
		}
	}

	return nil
}
