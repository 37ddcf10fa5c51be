package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/0xmhha/telemetry-monitor/pkg/engine"
	"github.com/0xmhha/telemetry-monitor/pkg/paging"
	"github.com/0xmhha/telemetry-monitor/pkg/snapshot"
	"github.com/0xmhha/telemetry-monitor/pkg/status"
)

// dashboardFormatter renders the styled dashboard.
type dashboardFormatter struct {
	config Config

	titleStyle   lipgloss.Style
	sectionStyle lipgloss.Style
	dimStyle     lipgloss.Style
	activeStyle  lipgloss.Style
	doneStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	cancelStyle  lipgloss.Style
	barStyle     lipgloss.Style
}

func newDashboardFormatter(cfg Config) *dashboardFormatter {
	f := &dashboardFormatter{config: cfg}

	if cfg.ColorEnabled {
		f.titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7dd3fc"))
		f.sectionStyle = lipgloss.NewStyle().Bold(true)
		f.dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
		f.activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80"))
		f.doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#60a5fa"))
		f.errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
		f.cancelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#fbbf24"))
		f.barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#38bdf8"))
	} else {
		plain := lipgloss.NewStyle()
		f.titleStyle = plain
		f.sectionStyle = plain
		f.dimStyle = plain
		f.activeStyle = plain
		f.doneStyle = plain
		f.errorStyle = plain
		f.cancelStyle = plain
		f.barStyle = plain
	}

	return f
}

// FormatViews implements Formatter.FormatViews.
func (f *dashboardFormatter) FormatViews(w io.Writer, v engine.Views) error {
	var b strings.Builder

	f.writeHeader(&b, v)
	f.writeStatus(&b, v.Status)
	f.writeTrend(&b, v)
	f.writeHeatmap(&b, v)
	f.writeSessionTable(&b, "Active Sessions", v.Active)
	f.writeSessionTable(&b, "History", v.History)
	f.writeService(&b, v.Service)

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *dashboardFormatter) writeHeader(b *strings.Builder, v engine.Views) {
	b.WriteString(f.titleStyle.Render("Telemetry Monitor"))

	if !v.FetchedAt.IsZero() {
		b.WriteString("  ")
		b.WriteString(f.dimStyle.Render("fetched " + v.FetchedAt.Format("15:04:05")))
	}
	if v.ZoomLocked {
		b.WriteString("  ")
		b.WriteString(f.cancelStyle.Render("[zoom locked]"))
	}
	if v.Skipped > 0 {
		b.WriteString("  ")
		b.WriteString(f.dimStyle.Render(fmt.Sprintf("(%d malformed entries skipped)", v.Skipped)))
	}
	b.WriteString("\n\n")
}

func (f *dashboardFormatter) writeStatus(b *strings.Builder, c status.Counts) {
	b.WriteString(f.activeStyle.Render(fmt.Sprintf("● %d active", c.Active)))
	b.WriteString("  ")
	b.WriteString(f.doneStyle.Render(fmt.Sprintf("✓ %d finished", c.Finished)))
	b.WriteString("  ")
	b.WriteString(f.errorStyle.Render(fmt.Sprintf("✗ %d %s", c.Error, status.DisplayStatus(snapshot.StatusError))))
	b.WriteString("  ")
	b.WriteString(f.cancelStyle.Render(fmt.Sprintf("⊘ %d cancelled", c.Cancelled)))
	b.WriteString("  ")
	b.WriteString(f.dimStyle.Render(fmt.Sprintf("(total %d)", c.Total())))
	b.WriteString("\n\n")
}

func (f *dashboardFormatter) writeTrend(b *strings.Builder, v engine.Views) {
	b.WriteString(f.sectionStyle.Render("Token Usage"))
	if v.Window > 0 {
		b.WriteString(f.dimStyle.Render(fmt.Sprintf("  (%s buckets)", v.Window)))
	}
	b.WriteString("\n")

	labels := v.Trend.Labels
	values := v.Trend.Values

	var max int64
	labelWidth := 0
	for i, label := range labels {
		if len(label) > labelWidth {
			labelWidth = len(label)
		}
		if i < len(values) && values[i] > max {
			max = values[i]
		}
	}

	barWidth := f.config.Width - labelWidth - 16
	if barWidth < 8 {
		barWidth = 8
	}

	for i, label := range labels {
		var value int64
		if i < len(values) {
			value = values[i]
		}

		bar := ""
		if max > 0 && value > 0 {
			n := int(value * int64(barWidth) / max)
			if n < 1 {
				n = 1
			}
			bar = strings.Repeat("█", n)
		}

		fmt.Fprintf(b, "  %-*s  %s %s\n",
			labelWidth, label,
			f.barStyle.Render(bar),
			f.dimStyle.Render(formatNumber(value)))
	}
	b.WriteString("\n")
}

func (f *dashboardFormatter) writeHeatmap(b *strings.Builder, v engine.Views) {
	b.WriteString(f.sectionStyle.Render("Tool Usage"))
	b.WriteString("\n")

	if len(v.Tools) == 0 {
		b.WriteString(f.dimStyle.Render("  no tools"))
		b.WriteString("\n\n")
		return
	}

	lineWidth := 0
	for _, tile := range v.Tools {
		cell := fmt.Sprintf(" %s %d ", tile.Name, tile.Calls)

		// Tile colors come straight from the aggregation layer.
		style := lipgloss.NewStyle()
		if f.config.ColorEnabled {
			style = style.
				Background(lipgloss.Color(tile.Color)).
				Foreground(lipgloss.Color(tile.TextColor))
		}

		if lineWidth+len(cell)+1 > f.config.Width && lineWidth > 0 {
			b.WriteString("\n")
			lineWidth = 0
		}
		b.WriteString(style.Render(cell))
		b.WriteString(" ")
		lineWidth += len(cell) + 1
	}
	b.WriteString("\n\n")
}

func (f *dashboardFormatter) writeSessionTable(b *strings.Builder, title string, page paging.Page[snapshot.Session]) {
	b.WriteString(f.sectionStyle.Render(title))
	b.WriteString("\n")

	if len(page.Items) == 0 {
		b.WriteString(f.dimStyle.Render("  none"))
		b.WriteString("\n\n")
		return
	}

	questionWidth := f.config.Width - 58
	if questionWidth < 10 {
		questionWidth = 10
	}

	fmt.Fprintf(b, "  %-14s %-10s %-10s %12s  %s\n",
		"SESSION", "USER", "STATUS", "TOKENS", "QUESTION")

	for _, s := range page.Items {
		fmt.Fprintf(b, "  %-14s %-10s %s %12s  %s\n",
			truncate(s.ID, 14),
			truncate(s.UserID, 10),
			f.renderStatus(s.Status),
			formatNumber(s.TokenUsage),
			truncate(s.Question, questionWidth))
	}

	b.WriteString(f.dimStyle.Render(fmt.Sprintf("  page %d/%d (%d total)",
		page.Current, page.TotalPages, page.Total)))
	b.WriteString("\n\n")
}

func (f *dashboardFormatter) renderStatus(s string) string {
	label := fmt.Sprintf("%-10s", truncate(status.DisplayStatus(s), 10))

	switch s {
	case snapshot.StatusRunning, snapshot.StatusCancelling:
		return f.activeStyle.Render(label)
	case snapshot.StatusFinished:
		return f.doneStyle.Render(label)
	case snapshot.StatusError:
		return f.errorStyle.Render(label)
	case snapshot.StatusCancelled:
		return f.cancelStyle.Render(label)
	default:
		return f.dimStyle.Render(label)
	}
}

func (f *dashboardFormatter) writeService(b *strings.Builder, svc snapshot.Service) {
	if svc.TotalSessions == 0 && svc.AvgElapsedSec == 0 {
		return
	}

	b.WriteString(f.sectionStyle.Render("Service"))
	b.WriteString("\n")
	fmt.Fprintf(b, "  sessions: %s  recent completed: %d  avg elapsed: %.1fs\n",
		formatNumber(int64(svc.TotalSessions)),
		svc.RecentCompleted,
		svc.AvgElapsedSec)
	if svc.AvgPrefillTPS > 0 || svc.AvgDecodeTPS > 0 {
		fmt.Fprintf(b, "  prefill: %.1f tps  decode: %.1f tps\n",
			svc.AvgPrefillTPS, svc.AvgDecodeTPS)
	}
	b.WriteString("\n")
}
