package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shopmetrics/internal/domain"
)

// amountKeys are the weekly comparison keys that carry money.
var amountKeys = map[string]bool{
	"paymentAmount":       true,
	"kakaoMoneyAmount":    true,
	"solPayAmount":        true,
	"postpaidOrderAmount": true,
	"totalPaymentAmount":  true,
}

func writeWeekly(b *strings.Builder, list []domain.WeeklyComparison) {
	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-28s %12s %12s %12s %7s",
		"", "Last week", "This week", "Change", "Rate")))
	b.WriteString("\n")
	for _, w := range list {
		format := FormatNumber
		if amountKeys[w.Key] {
			format = FormatCompactWon
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("  %-28s", w.Label)))
		b.WriteString(fmt.Sprintf(" %12s %12s ", format(w.LastWeek), format(w.ThisWeek)))
		b.WriteString(changeStyle(w.Change).Render(fmt.Sprintf("%12s %7s", signed(w.Change, format), w.ChangeRate)))
		b.WriteString("\n")
	}
}

func signed(n int64, format func(int64) string) string {
	if n > 0 {
		return "+" + format(n)
	}
	return format(n)
}

func writeCumulative(b *strings.Builder, provider string, c domain.CumulativeStats) {
	writeRow(b, "Activated stores", count(c.ActivatedShops), "")
	writeRow(b, provider+" stores", count(c.ProviderShops), "")
	writeRow(b, "Payments", FormatNumber(c.PaymentCount), provider+" "+FormatNumber(c.ProviderCount))
	writeRow(b, "Amount", FormatWon(c.PaymentAmount), provider+" "+FormatWon(c.ProviderAmount))
}

// PaymentSummaryReport renders the provider activation summary of
// s.Date against s.PrevDate.
func PaymentSummaryReport(s domain.PaymentSummary) string {
	var b strings.Builder
	prev := FormatDate(s.PrevDate)
	if prev == "" {
		prev = "-"
	}
	writeTitle(&b, fmt.Sprintf("Payment summary  %s (vs %s)", FormatDate(s.Date), prev))

	k := s.KakaoPayShops
	writeSection(&b, kakaoStyle, "KakaoPay promotion stores")
	writeRow(&b, "Prepaid", count(k.Prepaid.Active+k.Prepaid.Pending),
		fmt.Sprintf("active %s / pending %s", count(k.Prepaid.Active), count(k.Prepaid.Pending)))
	writeRow(&b, "Postpaid", count(k.Postpaid.Active+k.Postpaid.Pending),
		fmt.Sprintf("active %s / pending %s", count(k.Postpaid.Active), count(k.Postpaid.Pending)))
	writeRow(&b, "Total", count(k.Total), "")

	ka := s.KakaoPayActivation
	writeSection(&b, kakaoStyle, "KakaoPay weekly activation")
	writeWeekly(&b, ka.Weekly)
	writeSection(&b, kakaoStyle, "KakaoPay cumulative")
	writeCumulative(&b, "KakaoMoney", ka.Cumulative)

	sp := s.SolPayShops
	writeSection(&b, solStyle, "SolPay promotion stores")
	writeRow(&b, "Prepaid", count(sp.Total),
		fmt.Sprintf("active %s / pending %s", count(sp.Prepaid.Active), count(sp.Prepaid.Pending)))

	writeSection(&b, solStyle, "SolPay weekly activation")
	writeWeekly(&b, s.SolPayActivation.Weekly)
	writeSection(&b, solStyle, "SolPay cumulative")
	writeCumulative(&b, "SolPay", s.SolPayActivation.Cumulative)

	in := s.NewInflow
	writeSection(&b, sectionStyle, "New inflow")
	writeRow(&b, "KakaoPay new", count(in.KakaoPayNew), "converted "+count(in.KakaoPayConverted))
	writeRow(&b, "SolPay new", count(in.SolPayNew), "converted "+count(in.SolPayConverted))

	c := s.ChurnAndRisk
	writeSection(&b, riskStyle, "Churn and risk")
	writeRow(&b, "Churned stores", count(c.ChurnedShops), "")
	for _, shop := range c.ChurnedShopList {
		b.WriteString(dimStyle.Render(fmt.Sprintf("    %-10s %-20s %-4s %s",
			shop.ShopCode, truncate(shop.ShopName, 20), shop.PayTypeRaw, shop.Promotion)))
		b.WriteString("\n")
	}
	writeRow(&b, "Promotion stores at risk", count(c.PromotionRiskShops), "")
	return b.String()
}

// ---------------------------------------------------------------------------
// Agencies
// ---------------------------------------------------------------------------

// AgencyReport renders one line per agency in the given order.
func AgencyReport(date string, list []domain.AgencyPerformance) string {
	var b strings.Builder
	writeTitle(&b, "Agency performance  "+FormatDate(date))
	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-18s %6s %6s %6s %6s %7s %5s %5s %5s %8s",
		"Agency", "Stores", "Active", "Pend.", "Activ.", "Rate", "Risk", "Churn", "New", "Orders")))
	b.WriteString("\n")
	for _, a := range list {
		name := fmt.Sprintf("  %-18s", truncate(a.AgencyName, 18))
		if a.IsDirect {
			b.WriteString(sectionStyle.Render(name))
		} else {
			b.WriteString(labelStyle.Render(name))
		}
		b.WriteString(fmt.Sprintf(" %6s %6s %6s %6s ",
			count(a.TotalShops), count(a.ActiveShops), count(a.PendingShops), count(a.ActivatedShops)))
		b.WriteString(rateStyle(a.ActivationRate).Render(fmt.Sprintf("%7s", FormatPercent(a.ActivationRate))))
		b.WriteString(fmt.Sprintf(" %5s %5s %5s %8.1f\n",
			count(a.RiskShops), count(a.ChurnedShops), count(a.NewShops), a.AvgOrderCount))
	}
	return b.String()
}

func rateStyle(rate float64) lipgloss.Style {
	switch {
	case rate >= 50:
		return gainStyle
	case rate > 0:
		return valueStyle
	default:
		return lossStyle
	}
}
