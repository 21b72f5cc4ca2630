package calc

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestEMI(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		loanAmount    float64
		interestRate  float64
		tenureYears   int
		wantEMI       float64
		wantTotal     float64
		wantInterest  float64
		wantErrorCode Code
	}{
		{
			name:         "standard 25 year mortgage",
			loanAmount:   1_000_000,
			interestRate: 4.5,
			tenureYears:  25,
			wantEMI:      5558.32,
			wantTotal:    1_667_496.00,
			wantInterest: 667_496.00,
		},
		{
			name:         "zero interest splits principal evenly",
			loanAmount:   120_000,
			interestRate: 0,
			tenureYears:  10,
			wantEMI:      1000,
			wantTotal:    120_000,
			wantInterest: 0,
		},
		{
			name:          "negative loan amount",
			loanAmount:    -500_000,
			interestRate:  4.5,
			tenureYears:   25,
			wantErrorCode: CodeInvalidAmount,
		},
		{
			name:          "zero loan amount",
			loanAmount:    0,
			interestRate:  4.5,
			tenureYears:   25,
			wantErrorCode: CodeInvalidAmount,
		},
		{
			name:          "tenure below minimum",
			loanAmount:    1_000_000,
			interestRate:  4.5,
			tenureYears:   0,
			wantErrorCode: CodeInvalidTenure,
		},
		{
			name:          "tenure above maximum",
			loanAmount:    1_000_000,
			interestRate:  4.5,
			tenureYears:   26,
			wantErrorCode: CodeInvalidTenure,
		},
		{
			name:          "negative interest rate",
			loanAmount:    1_000_000,
			interestRate:  -0.5,
			tenureYears:   25,
			wantErrorCode: CodeInvalidRate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := EMI(tt.loanAmount, tt.interestRate, tt.tenureYears)
			if tt.wantErrorCode != "" {
				var inputErr *InputError
				if !errors.As(err, &inputErr) {
					t.Fatalf("EMI() error = %v, want *InputError", err)
				}
				if inputErr.Code != tt.wantErrorCode {
					t.Errorf("EMI() error code = %q, want %q", inputErr.Code, tt.wantErrorCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("EMI() unexpected error: %v", err)
			}
			if got.EMI != tt.wantEMI {
				t.Errorf("EMI() = %v, want %v", got.EMI, tt.wantEMI)
			}
			if got.TotalAmount != tt.wantTotal {
				t.Errorf("TotalAmount = %v, want %v", got.TotalAmount, tt.wantTotal)
			}
			if got.TotalInterest != tt.wantInterest {
				t.Errorf("TotalInterest = %v, want %v", got.TotalInterest, tt.wantInterest)
			}
			if got.TenureMonths != tt.tenureYears*12 {
				t.Errorf("TenureMonths = %d, want %d", got.TenureMonths, tt.tenureYears*12)
			}
		})
	}
}

func TestLTV(t *testing.T) {
	t.Parallel()

	t.Run("above cap is reported not errored", func(t *testing.T) {
		t.Parallel()
		got, err := LTV(2_000_000, 300_000)
		if err != nil {
			t.Fatalf("LTV() unexpected error: %v", err)
		}
		if got.IsValid {
			t.Error("IsValid = true, want false for 85% LTV")
		}
		if got.LTVRatio != 85.0 {
			t.Errorf("LTVRatio = %v, want 85.0", got.LTVRatio)
		}
		if got.MinDownPaymentRequired != 400_000 {
			t.Errorf("MinDownPaymentRequired = %v, want 400000", got.MinDownPaymentRequired)
		}
		if got.MaxLoanable != 1_600_000 {
			t.Errorf("MaxLoanable = %v, want 1600000", got.MaxLoanable)
		}
		if got.Message != "LTV exceeds 80%. Minimum down payment required: 400,000 AED" {
			t.Errorf("Message = %q", got.Message)
		}
	})

	t.Run("within cap", func(t *testing.T) {
		t.Parallel()
		got, err := LTV(2_000_000, 500_000)
		if err != nil {
			t.Fatalf("LTV() unexpected error: %v", err)
		}
		if !got.IsValid {
			t.Error("IsValid = false, want true for 75% LTV")
		}
		if got.LTVRatio != 75.0 {
			t.Errorf("LTVRatio = %v, want 75.0", got.LTVRatio)
		}
		if got.LoanAmount != 1_500_000 {
			t.Errorf("LoanAmount = %v, want 1500000", got.LoanAmount)
		}
		if got.Message != "Valid" {
			t.Errorf("Message = %q, want %q", got.Message, "Valid")
		}
	})

	t.Run("exactly at cap is valid", func(t *testing.T) {
		t.Parallel()
		got, err := LTV(1_000_000, 200_000)
		if err != nil {
			t.Fatalf("LTV() unexpected error: %v", err)
		}
		if !got.IsValid {
			t.Error("IsValid = false, want true at exactly 80% LTV")
		}
	})

	errTests := []struct {
		name          string
		propertyPrice float64
		downPayment   float64
		wantErrorCode Code
	}{
		{"zero property price", 0, 100_000, CodeInvalidAmount},
		{"negative down payment", 1_000_000, -1, CodeInvalidDownPayment},
		{"down payment equals price", 1_000_000, 1_000_000, CodeInvalidDownPayment},
		{"down payment exceeds price", 1_000_000, 1_500_000, CodeInvalidDownPayment},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LTV(tt.propertyPrice, tt.downPayment)
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("LTV() error = %v, want *InputError", err)
			}
			if inputErr.Code != tt.wantErrorCode {
				t.Errorf("LTV() error code = %q, want %q", inputErr.Code, tt.wantErrorCode)
			}
		})
	}
}

func TestUpfront(t *testing.T) {
	t.Parallel()

	got, err := Upfront(1_500_000)
	if err != nil {
		t.Fatalf("Upfront() unexpected error: %v", err)
	}
	if got.TransferFee != 60_000 {
		t.Errorf("TransferFee = %v, want 60000", got.TransferFee)
	}
	if got.AgencyFee != 30_000 {
		t.Errorf("AgencyFee = %v, want 30000", got.AgencyFee)
	}
	if got.MiscFee != 15_000 {
		t.Errorf("MiscFee = %v, want 15000", got.MiscFee)
	}
	if got.TotalUpfrontCosts != 105_000 {
		t.Errorf("TotalUpfrontCosts = %v, want 105000", got.TotalUpfrontCosts)
	}
	if got.Percentage != 7 {
		t.Errorf("Percentage = %v, want 7", got.Percentage)
	}
	if got.TotalWithCosts != 1_605_000 {
		t.Errorf("TotalWithCosts = %v, want 1605000", got.TotalWithCosts)
	}

	if _, err := Upfront(0); err == nil {
		t.Error("Upfront(0) error = nil, want invalid amount")
	}
}

func TestBuyVsRent(t *testing.T) {
	t.Parallel()

	t.Run("short stay always rents", func(t *testing.T) {
		t.Parallel()
		got, err := BuyVsRent(BuyVsRentInput{
			MonthlyRent:   5000,
			PropertyPrice: 1_000_000,
			StayYears:     2,
			Income:        50_000,
			DownPayment:   300_000,
		})
		if err != nil {
			t.Fatalf("BuyVsRent() unexpected error: %v", err)
		}
		if got.Recommendation != RecommendRent {
			t.Errorf("Recommendation = %q, want %q", got.Recommendation, RecommendRent)
		}
		if len(got.Reasoning) != 1 {
			t.Fatalf("len(Reasoning) = %d, want 1", len(got.Reasoning))
		}
	})

	t.Run("long stay buys when affordable", func(t *testing.T) {
		t.Parallel()
		got, err := BuyVsRent(BuyVsRentInput{
			MonthlyRent:   8000,
			PropertyPrice: 1_000_000,
			StayYears:     10,
			Income:        50_000,
			DownPayment:   300_000,
		})
		if err != nil {
			t.Fatalf("BuyVsRent() unexpected error: %v", err)
		}
		if got.Recommendation != RecommendBuy {
			t.Errorf("Recommendation = %q, want %q", got.Recommendation, RecommendBuy)
		}
		if !got.IsAffordable {
			t.Error("IsAffordable = false, want true")
		}
		if got.EMIDetails.TenureYears != MaxTenureYears {
			t.Errorf("EMIDetails.TenureYears = %d, want %d", got.EMIDetails.TenureYears, MaxTenureYears)
		}
	})

	t.Run("medium stay compares ownership cost against rent", func(t *testing.T) {
		t.Parallel()
		// Loan 800k at the default 4.5%: first-year interest 3000/month plus
		// ~83 maintenance.
		base := BuyVsRentInput{
			PropertyPrice: 1_000_000,
			StayYears:     4,
			Income:        60_000,
			DownPayment:   200_000,
		}

		cheapRent := base
		cheapRent.MonthlyRent = 2500
		got, err := BuyVsRent(cheapRent)
		if err != nil {
			t.Fatalf("BuyVsRent() unexpected error: %v", err)
		}
		if got.Recommendation != RecommendRent {
			t.Errorf("cheap rent: Recommendation = %q, want %q", got.Recommendation, RecommendRent)
		}

		expensiveRent := base
		expensiveRent.MonthlyRent = 5000
		got, err = BuyVsRent(expensiveRent)
		if err != nil {
			t.Fatalf("BuyVsRent() unexpected error: %v", err)
		}
		if got.Recommendation != RecommendBuy {
			t.Errorf("expensive rent: Recommendation = %q, want %q", got.Recommendation, RecommendBuy)
		}
		if got.MonthlyInterest != 3000 {
			t.Errorf("MonthlyInterest = %v, want 3000", got.MonthlyInterest)
		}
		if got.MaintenanceEstimate != 83.33 {
			t.Errorf("MaintenanceEstimate = %v, want 83.33", got.MaintenanceEstimate)
		}
	})

	t.Run("affordability overrides a buy verdict", func(t *testing.T) {
		t.Parallel()
		got, err := BuyVsRent(BuyVsRentInput{
			MonthlyRent:   8000,
			PropertyPrice: 1_000_000,
			StayYears:     10,
			Income:        10_000,
			DownPayment:   200_000,
		})
		if err != nil {
			t.Fatalf("BuyVsRent() unexpected error: %v", err)
		}
		if got.Recommendation != RecommendRent {
			t.Errorf("Recommendation = %q, want %q", got.Recommendation, RecommendRent)
		}
		if got.IsAffordable {
			t.Error("IsAffordable = true, want false")
		}
		// Both the stay verdict and the override are explained.
		if len(got.Reasoning) != 2 {
			t.Fatalf("len(Reasoning) = %d, want 2", len(got.Reasoning))
		}
	})

	t.Run("insufficient down payment aborts with LTV details", func(t *testing.T) {
		t.Parallel()
		_, err := BuyVsRent(BuyVsRentInput{
			MonthlyRent:   5000,
			PropertyPrice: 1_000_000,
			StayYears:     10,
			Income:        50_000,
			DownPayment:   100_000,
		})
		var ltvErr *LTVRuleError
		if !errors.As(err, &ltvErr) {
			t.Fatalf("BuyVsRent() error = %v, want *LTVRuleError", err)
		}
		if ltvErr.Result.MinDownPaymentRequired != 200_000 {
			t.Errorf("MinDownPaymentRequired = %v, want 200000", ltvErr.Result.MinDownPaymentRequired)
		}
	})

	t.Run("input validation", func(t *testing.T) {
		t.Parallel()
		valid := BuyVsRentInput{
			MonthlyRent:   5000,
			PropertyPrice: 1_000_000,
			StayYears:     5,
			Income:        50_000,
			DownPayment:   300_000,
		}
		mutations := []struct {
			name   string
			mutate func(*BuyVsRentInput)
			code   Code
		}{
			{"zero rent", func(in *BuyVsRentInput) { in.MonthlyRent = 0 }, CodeInvalidAmount},
			{"zero price", func(in *BuyVsRentInput) { in.PropertyPrice = 0 }, CodeInvalidAmount},
			{"zero stay", func(in *BuyVsRentInput) { in.StayYears = 0 }, CodeInvalidTenure},
			{"zero income", func(in *BuyVsRentInput) { in.Income = 0 }, CodeInvalidAmount},
			{"negative down payment", func(in *BuyVsRentInput) { in.DownPayment = -1 }, CodeInvalidDownPayment},
		}
		for _, tt := range mutations {
			in := valid
			tt.mutate(&in)
			_, err := BuyVsRent(in)
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Errorf("%s: error = %v, want *InputError", tt.name, err)
				continue
			}
			if inputErr.Code != tt.code {
				t.Errorf("%s: error code = %q, want %q", tt.name, inputErr.Code, tt.code)
			}
		}
	})
}

func TestFormatAED(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{105_000, "105,000"},
		{1_250_000, "1,250,000"},
		{1_667_496.4, "1,667,496"},
		{-400_000, "-400,000"},
	}
	for _, tt := range tests {
		if got := FormatAED(tt.in); got != tt.want {
			t.Errorf("FormatAED(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// The JSON keys are consumed downstream by the model and the frontend; they
// must not drift.
func TestResultWireKeys(t *testing.T) {
	t.Parallel()

	ltv, err := LTV(2_000_000, 500_000)
	if err != nil {
		t.Fatalf("LTV() unexpected error: %v", err)
	}
	upfront, err := Upfront(1_500_000)
	if err != nil {
		t.Fatalf("Upfront() unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		payload  any
		wantKeys []string
	}{
		{
			"ltv", ltv,
			[]string{"ltv_ratio", "loan_amount", "max_loanable", "min_down_payment_required", "is_valid", "message"},
		},
		{
			"upfront", upfront,
			[]string{"property_price", "transfer_fee", "agency_fee", "misc_fee", "total_upfront_costs", "percentage", "total_with_costs"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := json.Marshal(tt.payload)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			for _, key := range tt.wantKeys {
				if !strings.Contains(string(data), `"`+key+`"`) {
					t.Errorf("marshalled result lacks key %q: %s", key, data)
				}
			}
		})
	}
}
