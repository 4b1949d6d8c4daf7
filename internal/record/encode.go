package record

import (
	"strconv"
	"strings"

	"shopmetrics/internal/domain"
)

// Header lines written by the encoders.
const (
	PaymentHeader = "pg_yn,shop_code,shop_name,count,total_price,sol_pay_amt,sol_pay_count,kakao_money_amt,kakao_money_count"
	OrderHeader   = "pg_yn,shop_code,shop_name,pos_code,sol_pay_promotion_yn,nice_pay_promotion_yn,ins_datetime,formatted_date,company_name,prev_company_name,shop_status,formatted_date_2,device_count,table_count,total_count_all,order_count_all,total_count_no_pos,total_price_no_pos,order_count_no_pos,price_no_pos"
)

// EncodePayments renders payment records as a header line followed by one
// line per record. The shop name is quoted but not escaped, so names holding
// a comma or quote do not survive a round trip.
func EncodePayments(records []domain.PaymentRecord) string {
	var b strings.Builder
	b.WriteString(PaymentHeader)
	for i := range records {
		r := &records[i]
		b.WriteByte('\n')
		writeFields(&b,
			r.PayTypeText(),
			r.ShopCode,
			quote(r.ShopName),
			itoa(r.Count),
			itoa(r.TotalPrice),
			itoa(r.SolPayAmount),
			itoa(r.SolPayCount),
			itoa(r.KakaoMoneyAmount),
			itoa(r.KakaoMoneyCount),
		)
	}
	return b.String()
}

// EncodeOrders renders order records as a header line followed by one line
// per record, quoting the shop and company name fields.
func EncodeOrders(records []domain.OrderRecord) string {
	var b strings.Builder
	b.WriteString(OrderHeader)
	for i := range records {
		r := &records[i]
		b.WriteByte('\n')
		writeFields(&b,
			r.PayTypeText(),
			r.ShopCode,
			quote(r.ShopName),
			r.POSCode,
			string(r.SolPayPromotion),
			string(r.NicePayPromotion),
			r.Registered,
			r.FormattedDate,
			quote(r.Company),
			quote(r.PrevCompany),
			r.StatusText(),
			r.FormattedDate2,
			itoa(r.DeviceCount),
			itoa(r.TableCount),
			itoa(r.TotalCountAll),
			itoa(r.OrderCountAll),
			itoa(r.TotalCountNoPOS),
			itoa(r.TotalPriceNoPOS),
			itoa(r.OrderCountNoPOS),
			itoa(r.PriceNoPOS),
		)
	}
	return b.String()
}

func writeFields(b *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f)
	}
}

func quote(s string) string { return `"` + s + `"` }

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
