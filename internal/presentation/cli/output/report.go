// Package output provides CLI output formatting utilities.
package output

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ducktyper-ai/quacktokenscope/internal/application/analyzer"
	"github.com/ducktyper-ai/quacktokenscope/internal/application/ports"
	"github.com/ducktyper-ai/quacktokenscope/internal/domain/pricing"
	"github.com/ducktyper-ai/quacktokenscope/internal/domain/scenario"
	"github.com/ducktyper-ai/quacktokenscope/internal/domain/token"
)

// ReportRenderer renders token analysis results and cost breakdowns.
type ReportRenderer struct {
	formatter *Formatter
}

// NewReportRenderer creates a report renderer with the given formatter.
func NewReportRenderer(formatter *Formatter) *ReportRenderer {
	return &ReportRenderer{
		formatter: formatter,
	}
}

// RenderResult renders a full analysis result: the summary table, the
// per-variant frequency tables, and the efficiency ranking.
func (r *ReportRenderer) RenderResult(result *analyzer.Result, infos map[string]ports.TokenizerInfo, topN int) {
	r.renderHeader(result)
	r.renderSummaryTable(result, infos)
	r.renderFrequencies(result, topN)
	r.renderRanking(result)
	r.renderErrors(result)
}

// renderHeader renders the analyzed text information.
func (r *ReportRenderer) renderHeader(result *analyzer.Result) {
	r.formatter.Header("Token Analysis")
	preview := result.Text
	if len(preview) > 60 {
		preview = preview[:57] + "..."
	}
	r.formatter.Item("Text", fmt.Sprintf("%q", preview))
	r.formatter.Item("Length", fmt.Sprintf("%d chars", len(result.Text)))
	r.formatter.Item("Variants", strconv.Itoa(len(result.Reports)))
	r.formatter.Println("")
}

// renderSummaryTable renders one row of summary statistics per variant,
// ordered by the efficiency ranking.
func (r *ReportRenderer) renderSummaryTable(result *analyzer.Result, infos map[string]ports.TokenizerInfo) {
	rows := make([][]string, 0, len(result.Reports))
	for _, ranked := range result.Ranking {
		report, ok := result.Reports[ranked.Tokenizer]
		if !ok {
			continue
		}
		name := ranked.Tokenizer
		if info, ok := infos[ranked.Tokenizer]; ok && info.Emoji != "" {
			name = info.Emoji + " " + ranked.Tokenizer
		}
		s := report.Summary
		rows = append(rows, []string{
			name,
			strconv.Itoa(s.TotalTokens),
			strconv.Itoa(s.DistinctTokens),
			fmt.Sprintf("%.3f", s.TypeTokenRatio),
			fmt.Sprintf("%.2f", s.AvgTokenLength),
			fmt.Sprintf("%.2f", s.CompressionRatio),
			formatElapsed(report.Analysis.Elapsed),
		})
	}

	r.formatter.Table(TableData{
		Columns: []TableColumn{
			{Header: "Tokenizer"},
			{Header: "Tokens", Align: AlignRight},
			{Header: "Distinct", Align: AlignRight},
			{Header: "TTR", Align: AlignRight},
			{Header: "Avg Len", Align: AlignRight},
			{Header: "Chars/Tok", Align: AlignRight},
			{Header: "Time", Align: AlignRight},
		},
		Rows: rows,
	})
	r.formatter.Println("")
}

// renderFrequencies renders the top-N token frequency table for each variant.
func (r *ReportRenderer) renderFrequencies(result *analyzer.Result, topN int) {
	if topN <= 0 {
		return
	}

	for _, ranked := range result.Ranking {
		report, ok := result.Reports[ranked.Tokenizer]
		if !ok {
			continue
		}

		r.formatter.SubHeader(fmt.Sprintf("%s: top %d tokens", ranked.Tokenizer, topN))
		rows := make([][]string, 0, topN)
		for i, entry := range report.Frequency.Top(topN) {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				fmt.Sprintf("%q", entry.Token),
				strconv.Itoa(entry.Count),
			})
		}
		r.formatter.Table(TableData{
			Columns: []TableColumn{
				{Header: "#", Align: AlignRight},
				{Header: "Token"},
				{Header: "Count", Align: AlignRight},
			},
			Rows: rows,
		})
		r.formatter.Println("")
	}
}

// renderRanking renders the cross-variant efficiency ranking.
func (r *ReportRenderer) renderRanking(result *analyzer.Result) {
	if len(result.Ranking) < 2 {
		return
	}

	winner := result.Ranking[0]
	r.formatter.Success("Most token-efficient: %s (%d tokens)", winner.Tokenizer, winner.TotalTokens)
	for _, ranked := range result.Ranking[1:] {
		overhead := float64(ranked.TotalTokens-winner.TotalTokens) / float64(winner.TotalTokens) * 100
		r.formatter.BulletItem(fmt.Sprintf("%s: %d tokens (+%.0f%%)",
			ranked.Tokenizer, ranked.TotalTokens, overhead))
	}
	r.formatter.Println("")
}

// renderErrors renders per-variant failures, if any.
func (r *ReportRenderer) renderErrors(result *analyzer.Result) {
	for name, err := range result.Errors {
		r.formatter.Warning("%s failed: %s", name, err.Error())
	}
}

// RenderCost renders a single cost breakdown.
func (r *ReportRenderer) RenderCost(cost *pricing.CostBreakdown) {
	r.formatter.Header(fmt.Sprintf("Cost Estimate: %s", cost.Model))
	r.formatter.Item("Input", fmt.Sprintf("%d tokens → $%.6f", cost.InputTokens, cost.InputCost))
	r.formatter.Item("Output", fmt.Sprintf("%d tokens → $%.6f", cost.OutputTokens, cost.OutputCost))
	r.formatter.Item("Total", fmt.Sprintf("$%.6f", cost.TotalCost))
	r.formatter.Println("")
}

// RenderComparison renders cost breakdowns for several models, cheapest first.
func (r *ReportRenderer) RenderComparison(costs []*pricing.CostBreakdown) {
	rows := make([][]string, 0, len(costs))
	for _, c := range costs {
		rows = append(rows, []string{
			c.Model,
			fmt.Sprintf("$%.6f", c.InputCost),
			fmt.Sprintf("$%.6f", c.OutputCost),
			fmt.Sprintf("$%.6f", c.TotalCost),
		})
	}

	r.formatter.Header("Model Comparison")
	r.formatter.Table(TableData{
		Columns: []TableColumn{
			{Header: "Model"},
			{Header: "Input", Align: AlignRight},
			{Header: "Output", Align: AlignRight},
			{Header: "Total", Align: AlignRight},
		},
		Rows: rows,
	})
	r.formatter.Println("")
}

// RenderScenarios renders what-if scenarios grouped under one header.
func (r *ReportRenderer) RenderScenarios(scenarios []scenario.Scenario) {
	rows := make([][]string, 0, len(scenarios))
	for _, s := range scenarios {
		rows = append(rows, []string{
			string(s.Kind),
			s.Label,
			fmt.Sprintf("$%.6f", s.Cost.TotalCost),
		})
	}

	r.formatter.Header("What-If Scenarios")
	r.formatter.Table(TableData{
		Columns: []TableColumn{
			{Header: "Kind"},
			{Header: "Scenario"},
			{Header: "Total", Align: AlignRight},
		},
		Rows: rows,
	})
	r.formatter.Println("")
}

// RenderRankedList renders a compact ranking, used by the interactive explorer.
func (r *ReportRenderer) RenderRankedList(ranking []token.RankedVariant) {
	for i, ranked := range ranking {
		r.formatter.Println("  %d. %s: %d tokens", i+1, ranked.Tokenizer, ranked.TotalTokens)
	}
}

// formatElapsed renders a duration compactly for table cells.
func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
