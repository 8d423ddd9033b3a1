package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

const (
	rateThresholdHigh   = 0.8
	rateThresholdMedium = 0.5
)

// RenderReport writes report in the given format.
func RenderReport(w io.Writer, report *domain.Report, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable:
		_, err := io.WriteString(w, renderTable(report))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderTable(report *domain.Report) string {
	st := report.Statistics

	var b strings.Builder
	color.New(color.Bold).Fprintf(&b, "Report for %s\n", report.UserID)
	if st.From != "" {
		fmt.Fprintf(&b, "%s to %s, %s days\n", st.From, st.To, humanize.Comma(int64(st.TotalDays)))
	}

	summary := table.NewWriter()
	summary.SetStyle(table.StyleLight)
	summary.AppendRows([]table.Row{
		{"Total records", humanize.Comma(int64(st.TotalRecords))},
		{"Average per day", st.AveragePerDay.String()},
		{"Completion rate", rate(st.CompletionRate)},
		{"Current usage streak", days(st.CurrentUsageStreak)},
	})
	if st.MostCompletions != nil {
		summary.AppendRow(table.Row{"Most completions", fmt.Sprintf("%s (%s)", itemName(report, st.MostCompletions.ItemID), humanize.Comma(int64(st.MostCompletions.Count)))})
	}
	b.WriteString(summary.Render())
	b.WriteString("\n")

	if len(report.Items) == 0 {
		b.WriteString("No items tracked\n")
		return b.String()
	}

	items := table.NewWriter()
	items.SetStyle(table.StyleLight)
	items.AppendHeader(table.Row{"Item", "Goal", "Records", "Days done", "Rate", "Streak", "Best"})
	for _, ir := range report.Items {
		name := ir.Name
		if ir.Archived {
			name += " (archived)"
		}
		items.AppendRow(table.Row{
			name,
			goal(ir.Goal),
			humanize.Comma(int64(ir.TotalRecords)),
			ir.DaysCompleted,
			rate(ir.CompletionRate),
			ir.CurrentStreak,
			ir.BestStreak,
		})
	}
	items.AppendFooter(table.Row{fmt.Sprintf("Total: %d items", len(report.Items))})
	b.WriteString(items.Render())
	b.WriteString("\n")

	return b.String()
}

// rate prints a ratio as a coloured percentage.
func rate(r domain.Ratio) string {
	if !r.Defined {
		return r.String()
	}
	text := fmt.Sprintf("%.0f%%", r.Value*100)
	switch {
	case r.Value >= rateThresholdHigh:
		return color.GreenString(text)
	case r.Value >= rateThresholdMedium:
		return color.YellowString(text)
	default:
		return color.RedString(text)
	}
}

func goal(g int) string {
	if g <= 0 {
		return "-"
	}
	return fmt.Sprint(g)
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return humanize.Comma(int64(n)) + " days"
}

func itemName(report *domain.Report, id string) string {
	for _, ir := range report.Items {
		if ir.ItemID == id {
			return ir.Name
		}
	}
	return id
}
