package calc

import "fmt"

// MaxLTVPercent is the regulatory loan-to-value cap for UAE residential
// mortgages.
const MaxLTVPercent = 80.0

// LTVResult is the outcome of a loan-to-value check.
type LTVResult struct {
	LTVRatio               float64 `json:"ltv_ratio"`
	LoanAmount             float64 `json:"loan_amount"`
	MaxLoanable            float64 `json:"max_loanable"`
	MinDownPaymentRequired float64 `json:"min_down_payment_required"`
	IsValid                bool    `json:"is_valid"`
	PropertyPrice          float64 `json:"property_price"`
	DownPayment            float64 `json:"down_payment"`
	Message                string  `json:"message"`
}

// LTV checks whether financing propertyPrice with the given down payment
// stays within the 80% loan-to-value cap. The check never fails for a cap
// violation; it reports IsValid=false with the minimum required down payment
// instead. Errors are reserved for structurally invalid inputs.
func LTV(propertyPrice, downPayment float64) (*LTVResult, error) {
	if propertyPrice <= 0 {
		return nil, &InputError{Code: CodeInvalidAmount, Message: "Property price must be positive"}
	}
	if downPayment < 0 {
		return nil, &InputError{Code: CodeInvalidDownPayment, Message: "Down payment cannot be negative"}
	}
	if downPayment >= propertyPrice {
		return nil, &InputError{Code: CodeInvalidDownPayment, Message: "Down payment cannot exceed property price"}
	}

	loanAmount := propertyPrice - downPayment
	ratio := round2(loanAmount / propertyPrice * 100)
	maxLoan := round2(propertyPrice * MaxLTVPercent / 100)
	minDown := round2(propertyPrice * (1 - MaxLTVPercent/100))

	res := &LTVResult{
		LTVRatio:               ratio,
		LoanAmount:             loanAmount,
		MaxLoanable:            maxLoan,
		MinDownPaymentRequired: minDown,
		IsValid:                ratio <= MaxLTVPercent,
		PropertyPrice:          propertyPrice,
		DownPayment:            downPayment,
	}
	if res.IsValid {
		res.Message = "Valid"
	} else {
		res.Message = fmt.Sprintf("LTV exceeds %.0f%%. Minimum down payment required: %s AED", MaxLTVPercent, FormatAED(minDown))
	}
	return res, nil
}
