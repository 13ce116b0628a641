package findash

import (
	"encoding/json"
	"testing"
)

func TestMoneyString(t *testing.T) {
	testCases := []struct {
		in   Money
		want string
	}{
		{in: USD(0), want: "$0.00"},
		{in: USD(1234.5), want: "$1,234.50"},
		{in: USD(36512345), want: "$36,512,345.00"},
		{in: USD(-2500.125), want: "-$2,500.13"},
	}
	for _, tc := range testCases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("%v.String() = %q, want %q", tc.in.Decimal(), got, tc.want)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	got := USD(10).Add(USD(2.5)).Sub(USD(0.5))
	if !got.Equal(USD(12)) {
		t.Errorf("10 + 2.5 - 0.5 = %v, want 12", got)
	}
	if got := M(3, "").Add(USD(1)); got.Currency() != "USD" {
		t.Errorf("empty currency should be weak, got %q", got.Currency())
	}
	defer func() {
		if recover() == nil {
			t.Errorf("adding USD to EUR should panic")
		}
	}()
	USD(1).Add(M(1, "EUR"))
}

func TestMoneyPlain(t *testing.T) {
	if got := USD(50000).Plain(); got != "50000" {
		t.Errorf("Plain() = %q, want 50000", got)
	}
	if got := USD(12.345).Plain(); got != "12.35" {
		t.Errorf("Plain() = %q, want 12.35", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(USD(1234.567))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"currency":"USD","amount":"1234.57","display":"$1,234.57"}`
	if string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}
}

func TestRatio(t *testing.T) {
	r := R(1.456)
	if got := r.String(); got != "1.46" {
		t.Errorf("R(1.456).String() = %q, want 1.46", got)
	}
	if got := R(2).String(); got != "2.00" {
		t.Errorf("R(2).String() = %q, want 2.00", got)
	}
	if !R(0.5).Equal(R(0.499999)) {
		t.Errorf("ratios should be rounded to 2 decimals")
	}
}
