// Package calc implements the deterministic mortgage calculators for the UAE
// property market: EMI, loan-to-value, upfront purchase costs, and the
// buy-vs-rent analysis.
//
// All functions are pure and side-effect free. The advisor loop relies on
// this: the LLM is never allowed to approximate these numbers itself, it can
// only request them through the tool dispatcher. Input violations are
// reported as [*InputError] values, never as panics.
//
// All monetary outputs are in AED and rounded to 2 decimal places.
package calc

import "math"

// Code identifies the class of a calculator input violation.
type Code string

const (
	// CodeInvalidAmount covers non-positive principal, price, rent, or income
	// inputs.
	CodeInvalidAmount Code = "invalid_amount"

	// CodeInvalidTenure covers a loan tenure outside [1, 25] years.
	CodeInvalidTenure Code = "invalid_tenure"

	// CodeInvalidRate covers a negative interest rate.
	CodeInvalidRate Code = "invalid_rate"

	// CodeInvalidDownPayment covers a negative down payment, a down payment
	// at or above the property price, or one that leaves the LTV above the
	// regulatory 80% cap.
	CodeInvalidDownPayment Code = "invalid_down_payment"
)

// InputError describes a calculator input violation. It is always
// recoverable: the dispatcher converts it into a structured tool failure and
// the conversation continues.
type InputError struct {
	// Code classifies the violation.
	Code Code

	// Message is the human-readable reason, phrased for relay to the user.
	Message string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return e.Message
}

// LTVRuleError is returned by [BuyVsRent] when the computed loan-to-value
// ratio exceeds the 80% cap. It carries the full LTV breakdown so callers can
// surface the minimum required down payment alongside the failure.
type LTVRuleError struct {
	// Result is the LTV computation that failed the 80% rule.
	Result *LTVResult
}

// Error implements the error interface.
func (e *LTVRuleError) Error() string {
	return e.Result.Message
}

// round2 rounds x to 2 decimal places, the precision used for all AED
// amounts.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
