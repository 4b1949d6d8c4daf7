package dashboard

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatNumber formats an integer with comma separators.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.WriteString(sign)
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatWon formats an amount as "1,234원".
func FormatWon(n int64) string {
	return FormatNumber(n) + "원"
}

// FormatCompactWon formats large amounts with 억 (1e8) and 만 (1e4) units,
// keeping report columns narrow.
func FormatCompactWon(n int64) string {
	v := float64(n)
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e8:
		return fmt.Sprintf("%.1f억", v/1e8)
	case abs >= 1e4:
		return fmt.Sprintf("%.1f만", v/1e4)
	default:
		return FormatWon(n)
	}
}

// FormatDate turns a YYYYMMDD key into YYYY-MM-DD. Other input is
// returned unchanged.
func FormatDate(key string) string {
	if len(key) != 8 {
		return key
	}
	return key[:4] + "-" + key[4:6] + "-" + key[6:]
}

// ChartLabel turns a YYYYMMDD key into a short MM/DD axis label.
func ChartLabel(key string) string {
	if len(key) != 8 {
		return key
	}
	return key[4:6] + "/" + key[6:]
}

// FormatPercent formats a percentage with one decimal, or "-" for zero.
func FormatPercent(p float64) string {
	if p == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", p)
}

// FormatGrowth formats a signed growth percentage as "+X.X%" or "-X.X%".
func FormatGrowth(g float64) string {
	switch {
	case g > 0:
		return fmt.Sprintf("+%.1f%%", g)
	case g < 0:
		return fmt.Sprintf("%.1f%%", g)
	default:
		return "0.0%"
	}
}
