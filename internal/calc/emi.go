package calc

import "math"

// Standard UAE mortgage tenure bounds in years.
const (
	MinTenureYears = 1
	MaxTenureYears = 25
)

// EMIResult is the breakdown of an equated monthly installment computation.
type EMIResult struct {
	EMI           float64 `json:"emi"`
	TotalAmount   float64 `json:"total_amount"`
	TotalInterest float64 `json:"total_interest"`
	LoanAmount    float64 `json:"loan_amount"`
	InterestRate  float64 `json:"interest_rate"`
	TenureYears   int     `json:"tenure_years"`
	TenureMonths  int     `json:"tenure_months"`
}

// EMI computes the equated monthly installment for a loan of loanAmount AED
// at the given annual interest rate (percent) over tenureYears.
//
// The standard amortization formula is used with a monthly rate of
// rate/12/100. A zero rate degenerates to straight division of the principal
// over the tenure.
func EMI(loanAmount, interestRate float64, tenureYears int) (*EMIResult, error) {
	if loanAmount <= 0 {
		return nil, &InputError{Code: CodeInvalidAmount, Message: "Loan amount must be positive"}
	}
	if tenureYears < MinTenureYears || tenureYears > MaxTenureYears {
		return nil, &InputError{Code: CodeInvalidTenure, Message: "Tenure must be between 1 and 25 years"}
	}
	if interestRate < 0 {
		return nil, &InputError{Code: CodeInvalidRate, Message: "Interest rate cannot be negative"}
	}

	months := tenureYears * 12
	var emi float64
	if interestRate == 0 {
		emi = loanAmount / float64(months)
	} else {
		monthlyRate := interestRate / 12 / 100
		factor := math.Pow(1+monthlyRate, float64(months))
		emi = loanAmount * monthlyRate * factor / (factor - 1)
	}

	emi = round2(emi)
	total := round2(emi * float64(months))
	return &EMIResult{
		EMI:           emi,
		TotalAmount:   total,
		TotalInterest: round2(total - loanAmount),
		LoanAmount:    loanAmount,
		InterestRate:  interestRate,
		TenureYears:   tenureYears,
		TenureMonths:  months,
	}, nil
}
