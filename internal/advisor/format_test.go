package advisor

import (
	"strings"
	"testing"

	"github.com/bayti-ai/bayti/internal/calc"
	"github.com/bayti-ai/bayti/internal/tools"
)

func TestFormatResults_EMI(t *testing.T) {
	t.Parallel()
	emi, err := calc.EMI(1_000_000, 4.5, 25)
	if err != nil {
		t.Fatalf("EMI() error: %v", err)
	}
	got := formatResults([]*tools.Result{{Tool: tools.NameCalculateEMI, Payload: emi}})

	for _, want := range []string{
		"For a loan of 1,000,000 AED at 4.5% interest over 25 years:",
		"Monthly EMI: 5,558.32 AED",
		"Total amount payable: 1,667,496.00 AED",
		"Total interest: 667,496.00 AED",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("formatted output missing %q:\n%s", want, got)
		}
	}
}

func TestFormatResults_LTV(t *testing.T) {
	t.Parallel()
	valid, _ := calc.LTV(2_000_000, 500_000)
	got := formatResults([]*tools.Result{{Tool: tools.NameCheckLTV, Payload: valid}})
	if !strings.Contains(got, "Your LTV ratio is 75.0%, which meets UAE expat requirements (maximum 80%).") {
		t.Errorf("valid LTV output = %q", got)
	}

	invalid, _ := calc.LTV(2_000_000, 300_000)
	got = formatResults([]*tools.Result{{Tool: tools.NameCheckLTV, Payload: invalid}})
	if !strings.Contains(got, "exceeds the 80% limit for expats") {
		t.Errorf("invalid LTV output = %q", got)
	}
	if !strings.Contains(got, "minimum down payment of 400,000 AED") {
		t.Errorf("invalid LTV output = %q", got)
	}
}

func TestFormatResults_Upfront(t *testing.T) {
	t.Parallel()
	up, _ := calc.Upfront(1_500_000)
	got := formatResults([]*tools.Result{{Tool: tools.NameUpfrontCosts, Payload: up}})
	if !strings.Contains(got, "For a property worth 1,500,000 AED, the upfront costs are approximately 105,000 AED") {
		t.Errorf("upfront output = %q", got)
	}
	if !strings.Contains(got, "4% transfer fee, 2% agency fee, 1% miscellaneous") {
		t.Errorf("upfront output = %q", got)
	}
}

func TestFormatResults_BuyVsRent(t *testing.T) {
	t.Parallel()
	res, err := calc.BuyVsRent(calc.BuyVsRentInput{
		MonthlyRent:   8000,
		PropertyPrice: 1_000_000,
		StayYears:     10,
		Income:        50_000,
		DownPayment:   300_000,
	})
	if err != nil {
		t.Fatalf("BuyVsRent() error: %v", err)
	}
	got := formatResults([]*tools.Result{{Tool: tools.NameBuyVsRent, Payload: res}})
	if !strings.Contains(got, "I recommend: **BUY**") {
		t.Errorf("buy-vs-rent output = %q", got)
	}
	if !strings.Contains(got, "• Planning to stay more than 5 years") {
		t.Errorf("buy-vs-rent output = %q", got)
	}
	if !strings.Contains(got, "Your estimated monthly EMI would be") {
		t.Errorf("buy-vs-rent output = %q", got)
	}
}

func TestFormatResults_SkipsFailures(t *testing.T) {
	t.Parallel()
	up, _ := calc.Upfront(1_500_000)
	got := formatResults([]*tools.Result{
		{Tool: tools.NameCheckLTV, FailureReason: "Property price must be positive"},
		{Tool: tools.NameUpfrontCosts, Payload: up},
	})
	if strings.Contains(got, "must be positive") {
		t.Errorf("failure leaked into formatted output: %q", got)
	}
	if !strings.Contains(got, "105,000 AED") {
		t.Errorf("successful result missing: %q", got)
	}
}

func TestFormatResults_Empty(t *testing.T) {
	t.Parallel()
	if got := formatResults(nil); got != "" {
		t.Errorf("formatResults(nil) = %q, want empty", got)
	}
	if got := formatResults([]*tools.Result{{Tool: "other", Payload: map[string]any{}}}); got != "" {
		t.Errorf("unrecognized payload output = %q, want empty", got)
	}
}

func TestFormatAED2(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float64
		want string
	}{
		{5558.32, "5,558.32"},
		{1_667_496, "1,667,496.00"},
		{0, "0.00"},
		{999.99, "999.99"},
		{-400_000.5, "-400,000.50"},
	}
	for _, tt := range tests {
		if got := formatAED2(tt.in); got != tt.want {
			t.Errorf("formatAED2(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
