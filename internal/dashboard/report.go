// Package dashboard renders metric structs as terminal reports and holds
// the number and date formatting shared by the CLI and the API.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shopmetrics/internal/domain"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	colHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	valueStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	riskStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	kakaoStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	solStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
)

// reportWidth is the width of title bars and section rules.
const reportWidth = 72

func writeTitle(b *strings.Builder, text string) {
	b.WriteString(titleStyle.Width(reportWidth).Render(" " + text))
	b.WriteString("\n")
}

func writeSection(b *strings.Builder, style lipgloss.Style, text string) {
	b.WriteString("\n")
	header := " " + text + " "
	b.WriteString(style.Render(header))
	if n := reportWidth - lipgloss.Width(header) - 1; n > 0 {
		b.WriteString(dimStyle.Render(" " + strings.Repeat("─", n)))
	}
	b.WriteString("\n")
}

// writeRow writes a "label  value" line with an optional dim note.
func writeRow(b *strings.Builder, label, value, note string) {
	b.WriteString(labelStyle.Render(fmt.Sprintf("  %-22s", label)))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%14s", value)))
	if note != "" {
		b.WriteString(dimStyle.Render("  " + note))
	}
	b.WriteString("\n")
}

func count(n int) string { return FormatNumber(int64(n)) }

// KPIReport renders the headline figures of one date.
func KPIReport(k domain.KPIMetrics) string {
	var b strings.Builder
	writeTitle(&b, "Store KPI  "+FormatDate(k.Date))

	writeSection(&b, sectionStyle, "Stores")
	writeRow(&b, "Total", count(k.TotalShops),
		fmt.Sprintf("prepaid %s / postpaid %s", count(k.PrepaidShops), count(k.PostpaidShops)))
	writeRow(&b, "Active", count(k.ActiveShops), "")
	writeRow(&b, "Pending", count(k.PendingShops), "")
	writeRow(&b, "Terminated", count(k.TerminatedShops), "")
	writeRow(&b, "New", count(k.NewShops),
		fmt.Sprintf("prepaid %s / postpaid %s", count(k.NewShopsPrepaid), count(k.NewShopsPostpaid)))
	writeRow(&b, "At risk", count(k.RiskShops),
		fmt.Sprintf("prepaid %s / postpaid %s", count(k.RiskShopsPrepaid), count(k.RiskShopsPostpaid)))

	writeSection(&b, sectionStyle, "Devices")
	writeRow(&b, "Total", FormatNumber(k.TotalDevices),
		fmt.Sprintf("prepaid %s / postpaid %s", FormatNumber(k.DevicesPrepaid), FormatNumber(k.DevicesPostpaid)))
	writeRow(&b, "Per store", fmt.Sprintf("%.2f", k.AvgDevicesPerShop), "")

	writeSection(&b, solStyle, "SolPay (cumulative)")
	writeRow(&b, "Stores", count(k.SolPayShops), "")
	writeRow(&b, "Payments", FormatNumber(k.SolPayTotalCount), "")
	writeRow(&b, "Amount", FormatWon(k.SolPayTotalAmount), "")

	writeSection(&b, kakaoStyle, "KakaoPay (cumulative)")
	writeRow(&b, "Stores", count(k.KakaoPayShops), "")
	writeRow(&b, "Payments", FormatNumber(k.KakaoPayTotalCount), "")
	writeRow(&b, "Amount", FormatWon(k.KakaoPayTotalAmount), "")

	if len(k.RiskShopList) > 0 {
		b.WriteString(RiskReport(k.RiskShopList))
	}
	return b.String()
}

// RiskReport renders the at-risk store list.
func RiskReport(list []domain.ShopAnalysis) string {
	var b strings.Builder
	writeSection(&b, riskStyle, fmt.Sprintf("At-risk stores  %s", count(len(list))))
	if len(list) == 0 {
		b.WriteString(dimStyle.Render("  none"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-10s %-20s %-4s %7s %7s %12s %5s",
		"Code", "Name", "Pay", "Orders", "Pays", "Cum. amount", "Promo")))
	b.WriteString("\n")
	for _, a := range list {
		promo := ""
		if a.KakaoPayPromotion {
			promo += "K"
		}
		if a.SolPayPromotion {
			promo += "S"
		}
		b.WriteString(fmt.Sprintf("  %-10s %-20s %-4s %7s %7s %12s %5s\n",
			a.ShopCode, truncate(a.ShopName, 20), a.PayTypeRaw,
			FormatNumber(a.TotalOrderCount), FormatNumber(a.TotalPaymentCount),
			FormatCompactWon(a.TotalPaymentAmount), promo))
	}
	return b.String()
}

// truncate cuts s to at most n display cells.
func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// ProviderReport renders promotion enrolment against provider use.
func ProviderReport(s domain.ProviderStats) string {
	var b strings.Builder
	writeTitle(&b, "Provider promotions  "+FormatDate(s.Date))
	writeSection(&b, solStyle, "SolPay")
	writeRow(&b, "Promotion stores", count(s.SolPayPromoShops), "")
	writeRow(&b, "Using SolPay", count(s.SolPayActiveShops), "")
	writeRow(&b, "Activation rate", s.SolPayActivationRate+"%", "")
	writeSection(&b, kakaoStyle, "KakaoPay")
	writeRow(&b, "Promotion stores", count(s.KakaoPayPromoShops), "")
	writeRow(&b, "Using KakaoPay", count(s.KakaoPayActiveShops), "all stores")
	return b.String()
}

// changeStyle colours a signed change.
func changeStyle(change int64) lipgloss.Style {
	switch {
	case change > 0:
		return gainStyle
	case change < 0:
		return lossStyle
	default:
		return dimStyle
	}
}
