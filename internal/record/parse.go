// Package record converts between delimited text and the typed payment and
// order records. Parsing is tolerant: malformed rows are dropped and bad
// numbers read as zero, so a parse never fails.
package record

import (
	"strings"

	"shopmetrics/internal/domain"
)

// Minimum field counts below which a row is silently dropped.
const (
	MinPaymentFields = 9
	MinOrderFields   = 20
)

// headerMarkers are field names whose presence on the first line marks it as
// a header row.
var headerMarkers = []string{"pg_yn", "shop_code"}

// SplitLine splits one comma-delimited line into trimmed fields. A double
// quote toggles quoted mode, inside which commas are literal. Quotes never
// escape, so a field holding a quote character mis-parses.
func SplitLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}

// ParseInt strips grouping commas and reads the leading integer of s,
// returning 0 when there is none ("209,300" -> 209300, "12.5" -> 12).
func ParseInt(s string) int64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	var n int64
	digits := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int64(c-'0')
		digits++
	}
	if digits == 0 {
		return 0
	}
	if neg {
		return -n
	}
	return n
}

// dataLines trims text, splits it into lines and drops a detected header
// row and blank lines.
func dataLines(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")

	start := 0
	if isHeader(lines[0]) {
		start = 1
	}

	out := make([]string, 0, len(lines)-start)
	for _, line := range lines[start:] {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

func isHeader(line string) bool {
	for _, m := range headerMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

// ParsePayments parses the content of one payment file (periodic or
// cumulative). Rows with fewer than MinPaymentFields fields are dropped.
func ParsePayments(text string) []domain.PaymentRecord {
	lines := dataLines(text)
	records := make([]domain.PaymentRecord, 0, len(lines))
	for _, line := range lines {
		v := SplitLine(line)
		if len(v) < MinPaymentFields {
			continue
		}
		records = append(records, domain.PaymentRecord{
			PayType:          domain.ParsePayType(v[0]),
			PayTypeRaw:       v[0],
			ShopCode:         v[1],
			ShopName:         v[2],
			Count:            ParseInt(v[3]),
			TotalPrice:       ParseInt(v[4]),
			SolPayAmount:     ParseInt(v[5]),
			SolPayCount:      ParseInt(v[6]),
			KakaoMoneyAmount: ParseInt(v[7]),
			KakaoMoneyCount:  ParseInt(v[8]),
		})
	}
	return records
}

// ParseOrders parses the content of one order file. Rows with fewer than
// MinOrderFields fields are dropped.
func ParseOrders(text string) []domain.OrderRecord {
	lines := dataLines(text)
	records := make([]domain.OrderRecord, 0, len(lines))
	for _, line := range lines {
		v := SplitLine(line)
		if len(v) < MinOrderFields {
			continue
		}
		records = append(records, domain.OrderRecord{
			PayType:          domain.ParsePayType(v[0]),
			PayTypeRaw:       v[0],
			ShopCode:         v[1],
			ShopName:         v[2],
			POSCode:          v[3],
			SolPayPromotion:  domain.Flag(v[4]),
			NicePayPromotion: domain.Flag(v[5]),
			Registered:       v[6],
			FormattedDate:    v[7],
			Company:          v[8],
			PrevCompany:      v[9],
			Status:           domain.ParseShopStatus(v[10]),
			StatusRaw:        v[10],
			FormattedDate2:   v[11],
			DeviceCount:      ParseInt(v[12]),
			TableCount:       ParseInt(v[13]),
			TotalCountAll:    ParseInt(v[14]),
			OrderCountAll:    ParseInt(v[15]),
			TotalCountNoPOS:  ParseInt(v[16]),
			TotalPriceNoPOS:  ParseInt(v[17]),
			OrderCountNoPOS:  ParseInt(v[18]),
			PriceNoPOS:       ParseInt(v[19]),
		})
	}
	return records
}
