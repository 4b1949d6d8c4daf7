package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shopmetrics/internal/domain"
)

// HistoryReport renders the period series, one line per date, with the
// growth against the previous line. rates may be shorter than periods;
// missing entries print as zero growth.
func HistoryReport(periods []domain.PeriodComparison, rates []domain.ChangeRate) string {
	var b strings.Builder
	writeTitle(&b, fmt.Sprintf("Period history  %d dates", len(periods)))
	if len(periods) == 0 {
		b.WriteString(dimStyle.Render("  no data"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-6s %7s %8s %7s %8s %5s %5s %10s %10s",
		"Date", "Stores", "Growth", "Active", "Growth", "New", "Risk", "Payments", "Amount")))
	b.WriteString("\n")
	for i, p := range periods {
		var r domain.ChangeRate
		if i < len(rates) {
			r = rates[i]
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("  %-6s", ChartLabel(p.Date))))
		b.WriteString(fmt.Sprintf(" %7s ", count(p.TotalShops)))
		b.WriteString(growthStyle(r.ShopGrowth).Render(fmt.Sprintf("%8s", FormatGrowth(r.ShopGrowth))))
		b.WriteString(fmt.Sprintf(" %7s ", count(p.ActiveShops)))
		b.WriteString(growthStyle(r.ActiveGrowth).Render(fmt.Sprintf("%8s", FormatGrowth(r.ActiveGrowth))))
		b.WriteString(fmt.Sprintf(" %5s %5s %10s %10s\n",
			count(p.NewShops), count(p.RiskShops),
			FormatNumber(p.CumulativePaymentCount), FormatCompactWon(p.CumulativePaymentAmount)))
	}
	return b.String()
}

func growthStyle(g float64) lipgloss.Style {
	switch {
	case g > 0:
		return gainStyle
	case g < 0:
		return lossStyle
	default:
		return dimStyle
	}
}
