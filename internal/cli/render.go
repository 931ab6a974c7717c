package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/evyataryagoni/wataxrate/internal/models"
)

var (
	accent  = lipgloss.Color("#D97706")
	fg      = lipgloss.Color("#E8E6E3")
	dim     = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	rateStyle   = lipgloss.NewStyle().Bold(true).Foreground(fg)
	labelStyle  = lipgloss.NewStyle().Foreground(dim).Width(14)
	dimStyle    = lipgloss.NewStyle().Foreground(dim)
	passStyle   = lipgloss.NewStyle().Foreground(success)
	failStyle   = lipgloss.NewStyle().Foreground(danger)
	warnStyle   = lipgloss.NewStyle().Foreground(warning)
)

// formatPercent renders a fractional rate as a percentage, 0.101 -> "10.10%"
func formatPercent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

func renderTaxInfo(q models.AddressQuery, info *models.TaxInfo) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s, %s %s", q.Street, q.City, q.ZIP)))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString("  " + labelStyle.Render(label) + value + "\n")
	}

	row("Rate", rateStyle.Render(formatPercent(info.Rate)))
	row("Local rate", formatPercent(info.LocalRate))
	if info.Jurisdiction != nil {
		row("Jurisdiction", fmt.Sprintf("%s (%s)", info.Jurisdiction.Name, info.Jurisdiction.Code))
		row("State rate", formatPercent(info.Jurisdiction.StateRate))
	}
	if info.LocationCode != "" {
		row("Location", info.LocationCode)
	}
	if info.Address != nil && info.Address.Period != "" {
		row("Period", info.Address.Period)
	}

	match := passStyle.Render(info.ResultCode.String())
	if info.ResultCode != models.CodeAddressFound {
		match = warnStyle.Render(info.ResultCode.String())
	}
	row("Match", match)

	return b.String()
}

func renderHistory(records []models.LookupRecord) string {
	if len(records) == 0 {
		return dimStyle.Render("No lookups recorded.") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Recent lookups (%d)", len(records))))
	b.WriteString("\n\n")

	for _, r := range records {
		outcome := passStyle.Render(fmt.Sprintf("%-8s", r.Outcome))
		detail := formatPercent(r.Rate)
		if r.Outcome != models.OutcomeSuccess {
			outcome = failStyle.Render(fmt.Sprintf("%-8s", r.Outcome))
			switch {
			case r.StatusCode != 0:
				detail = fmt.Sprintf("HTTP %d", r.StatusCode)
			case r.Outcome == models.OutcomeRejected:
				detail = r.ResultCode.String()
			default:
				detail = fmt.Sprintf("%d attempt(s)", r.Attempts)
			}
		}

		fmt.Fprintf(&b, "  %s  %s  %s, %s %s  %s\n",
			dimStyle.Render(r.LookedUpAt.Local().Format("2006-01-02 15:04:05")),
			outcome,
			r.Street, r.City, r.ZIP,
			dimStyle.Render(detail),
		)
	}
	return b.String()
}
