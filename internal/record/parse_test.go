package record

import (
	"reflect"
	"testing"

	"shopmetrics/internal/domain"
)

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"trims", " a , b ,c ", []string{"a", "b", "c"}},
		{"quoted delimiter", `S1,"Acme, Inc.",3`, []string{"S1", "Acme, Inc.", "3"}},
		{"quoted thousands", `"209,300",x`, []string{"209,300", "x"}},
		{"empty fields", ",,", []string{"", "", ""}},
		{"empty line", "", []string{""}},
		{"carriage return trimmed", "a,b\r", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLine(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLine(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestSplitLineQuoteToggles(t *testing.T) {
	// Quotes toggle rather than escape: a doubled quote closes and reopens.
	got := SplitLine(`"say ""hi"", ok",2`)
	want := []string{"say hi, ok", "2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitLine = %q, want %q", got, want)
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"209,300", 209300},
		{"42", 42},
		{" 7 ", 7},
		{"-15", -15},
		{"+3", 3},
		{"12.9", 12},
		{"12abc", 12},
		{"abc", 0},
		{"", 0},
		{"-", 0},
		{"1,234,567", 1234567},
	}
	for _, tt := range tests {
		if got := ParseInt(tt.in); got != tt.want {
			t.Errorf("ParseInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

const paymentCSV = `pg_yn,shop_code,shop_name,count,total_price,sol_pay_amt,sol_pay_count,kakao_money_amt,kakao_money_count
선불,S1,"Acme, Inc.",12,"209,300",1000,2,3000,4
후불,S2,Beta,0,0,0,0,0,0
후불,S3,short,1
`

func TestParsePayments(t *testing.T) {
	got := ParsePayments(paymentCSV)
	if len(got) != 2 {
		t.Fatalf("ParsePayments returned %d records, want 2 (short row dropped)", len(got))
	}

	want := domain.PaymentRecord{
		PayType:          domain.PayPrepaid,
		PayTypeRaw:       "선불",
		ShopCode:         "S1",
		ShopName:         "Acme, Inc.",
		Count:            12,
		TotalPrice:       209300,
		SolPayAmount:     1000,
		SolPayCount:      2,
		KakaoMoneyAmount: 3000,
		KakaoMoneyCount:  4,
	}
	if got[0] != want {
		t.Errorf("first record = %+v, want %+v", got[0], want)
	}
	if got[1].PayType != domain.PayPostpaid {
		t.Errorf("second record PayType = %v, want PayPostpaid", got[1].PayType)
	}
}

func TestParsePaymentsWithoutHeader(t *testing.T) {
	text := "선불,S1,One,1,100,0,0,0,0\n선불,S2,Two,2,200,0,0,0,0"
	got := ParsePayments(text)
	if len(got) != 2 {
		t.Fatalf("ParsePayments returned %d records, want 2", len(got))
	}
	if got[0].ShopCode != "S1" {
		t.Errorf("first ShopCode = %q, want S1 (first line is data)", got[0].ShopCode)
	}
}

func TestParsePaymentsCRLFAndBlank(t *testing.T) {
	text := "pg_yn,shop_code\r\n선불,S1,One,1,100,0,0,0,0\r\n\r\n선불,S2,Two,x,,0,0,0,0\r\n"
	got := ParsePayments(text)
	if len(got) != 2 {
		t.Fatalf("ParsePayments returned %d records, want 2", len(got))
	}
	if got[1].Count != 0 || got[1].TotalPrice != 0 {
		t.Errorf("non-numeric fields = (%d, %d), want zeros", got[1].Count, got[1].TotalPrice)
	}
}

func TestParseEmpty(t *testing.T) {
	if got := ParsePayments(""); len(got) != 0 {
		t.Errorf("ParsePayments(\"\") = %v, want empty", got)
	}
	if got := ParseOrders("   \n  "); len(got) != 0 {
		t.Errorf("ParseOrders(blank) = %v, want empty", got)
	}
}

func orderLine(code, status, prepay string) string {
	return prepay + "," + code + `,"Shop ` + code + `",P1,O,X,2024-01-10 09:00:00,2024-01-10,"Head, Co",Agency A,` +
		status + ",2024-01-11,3,10,25,20,8,\"80,000\",5,50000"
}

func TestParseOrders(t *testing.T) {
	text := OrderHeader + "\n" + orderLine("S1", "이용", "선불") + "\n" + "선불,S9,too,short"
	got := ParseOrders(text)
	if len(got) != 1 {
		t.Fatalf("ParseOrders returned %d records, want 1", len(got))
	}

	o := got[0]
	if o.ShopCode != "S1" || o.ShopName != "Shop S1" || o.POSCode != "P1" {
		t.Errorf("identity fields = %q %q %q", o.ShopCode, o.ShopName, o.POSCode)
	}
	if !o.SolPayPromotion.On() || o.NicePayPromotion.On() {
		t.Errorf("flags = %q/%q, want O/X", o.SolPayPromotion, o.NicePayPromotion)
	}
	if o.Company != "Head, Co" || o.PrevCompany != "Agency A" {
		t.Errorf("companies = %q / %q", o.Company, o.PrevCompany)
	}
	if o.Status != domain.StatusActive || o.StatusRaw != "이용" {
		t.Errorf("status = %v (%q), want active", o.Status, o.StatusRaw)
	}
	if o.DeviceCount != 3 || o.TableCount != 10 || o.TotalCountAll != 25 || o.OrderCountAll != 20 {
		t.Errorf("counts = %d %d %d %d", o.DeviceCount, o.TableCount, o.TotalCountAll, o.OrderCountAll)
	}
	if o.TotalCountNoPOS != 8 || o.TotalPriceNoPOS != 80000 || o.OrderCountNoPOS != 5 || o.PriceNoPOS != 50000 {
		t.Errorf("no-pos figures = %d %d %d %d", o.TotalCountNoPOS, o.TotalPriceNoPOS, o.OrderCountNoPOS, o.PriceNoPOS)
	}
}

func TestParseOrdersUnknownStatusPassesThrough(t *testing.T) {
	got := ParseOrders(orderLine("S1", "휴면", "기타"))
	if len(got) != 1 {
		t.Fatalf("ParseOrders returned %d records, want 1", len(got))
	}
	if got[0].Status != domain.StatusUnknown || got[0].StatusRaw != "휴면" {
		t.Errorf("status = %v (%q), want unknown with raw kept", got[0].Status, got[0].StatusRaw)
	}
	if got[0].PayType != domain.PayUnknown || got[0].PayTypeRaw != "기타" {
		t.Errorf("pay type = %v (%q), want unknown with raw kept", got[0].PayType, got[0].PayTypeRaw)
	}
}
