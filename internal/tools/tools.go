// Package tools defines the calculator tool catalog exposed to the LLM and
// the dispatcher that validates, coerces, and executes tool calls.
//
// The dispatcher is deliberately forgiving: a bad tool call never aborts the
// conversation. Unknown tools, missing parameters, and handler panics all
// produce a structured failure result that is fed back to the model so it can
// ask the user for the missing information instead.
package tools

import (
	"github.com/bayti-ai/bayti/internal/calc"
	"github.com/bayti-ai/bayti/pkg/provider/llm"
)

// Tool names as advertised to the LLM.
const (
	NameCalculateEMI = "calculate_emi"
	NameCheckLTV     = "check_ltv"
	NameUpfrontCosts = "calculate_upfront_costs"
	NameBuyVsRent    = "buy_vs_rent_analysis"
)

// Spec describes one tool: its LLM-facing schema, the validation rules the
// dispatcher enforces before execution, and the handler that runs it.
type Spec struct {
	Name        string
	Description string

	// Parameters is the JSON schema for the tool arguments, sent verbatim to
	// the LLM.
	Parameters map[string]any

	// Required lists parameters that must be present.
	Required []string

	// Positive lists parameters that must be numeric and strictly positive.
	Positive []string

	// Handler executes the tool. It only runs after validation passed, so it
	// may assume required parameters exist. Returned errors become structured
	// failures.
	Handler func(args map[string]any) (any, error)
}

// Definition returns the tool in the shape the LLM provider expects.
func (s *Spec) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        s.Name,
		Description: s.Description,
		Parameters:  s.Parameters,
	}
}

func numberParam(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc}
}

func integerParam(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func objectSchema(required []string, props map[string]any) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// catalog builds the four calculator tools. Descriptions steer the model
// away from calling tools with placeholder values: every description for a
// price-driven tool tells the model to ask the user first.
func catalog() []*Spec {
	return []*Spec{
		{
			Name: NameCalculateEMI,
			Description: "Calculate Equated Monthly Installment (EMI) for a mortgage loan. " +
				"ALWAYS use this tool when the user asks about monthly payments, EMI, loan installments, or mortgage payments. " +
				"Use this for ANY calculation involving loan amounts, interest rates, and tenure - never calculate manually.",
			Parameters: objectSchema(
				[]string{"loan_amount", "tenure_years"},
				map[string]any{
					"loan_amount":   numberParam("Principal loan amount in AED"),
					"interest_rate": numberParam("Annual interest rate (e.g., 4.5 for 4.5%). Default is 4.5% for UAE market."),
					"tenure_years":  integerParam("Loan tenure in years (maximum 25 years)"),
				},
			),
			Required: []string{"loan_amount", "tenure_years"},
			Positive: []string{"loan_amount"},
			Handler:  handleEMI,
		},
		{
			Name: NameCheckLTV,
			Description: "Check Loan-to-Value (LTV) ratio and validate if the loan meets UAE expat requirements (max 80% LTV). " +
				"Use this when user mentions property price and down payment. " +
				"DO NOT call if property_price is missing, unknown, or zero - ask the user first.",
			Parameters: objectSchema(
				[]string{"property_price", "down_payment"},
				map[string]any{
					"property_price": numberParam("Total property price in AED (must be positive, non-zero)"),
					"down_payment":   numberParam("Down payment amount in AED"),
				},
			),
			Required: []string{"property_price", "down_payment"},
			Positive: []string{"property_price"},
			Handler:  handleLTV,
		},
		{
			Name: NameUpfrontCosts,
			Description: "Calculate upfront costs for property purchase in UAE (7% total: 4% transfer fee, 2% agency fee, 1% misc). " +
				"Always warn users about these hidden costs. " +
				"DO NOT call if property_price is missing, unknown, or zero - ask the user first.",
			Parameters: objectSchema(
				[]string{"property_price"},
				map[string]any{
					"property_price": numberParam("Total property price in AED (must be positive, non-zero)"),
				},
			),
			Required: []string{"property_price"},
			Positive: []string{"property_price"},
			Handler:  handleUpfront,
		},
		{
			Name: NameBuyVsRent,
			Description: "Analyze whether buying or renting is better based on user's situation. " +
				"Use this for buy vs rent recommendations. " +
				"DO NOT call if property_price is missing, unknown, or zero - ask the user first.",
			Parameters: objectSchema(
				[]string{"monthly_rent", "property_price", "stay_years", "income", "down_payment"},
				map[string]any{
					"monthly_rent":   numberParam("Current monthly rent in AED (provide as number, not string, must be positive)"),
					"property_price": numberParam("Property price in AED (provide as number, not string, must be positive and non-zero)"),
					"stay_years":     integerParam("How long the user plans to stay in the property (years, provide as integer, not string)"),
					"income":         numberParam("Monthly income in AED (provide as number, not string, must be positive)"),
					"down_payment":   numberParam("Available down payment in AED (provide as number, not string, must be positive)"),
					"interest_rate":  numberParam("Annual interest rate (default 4.5%, provide as number, not string)"),
				},
			),
			Required: []string{"monthly_rent", "property_price", "stay_years", "income", "down_payment"},
			Positive: []string{"property_price", "monthly_rent", "income", "down_payment", "stay_years"},
			Handler:  handleBuyVsRent,
		},
	}
}

// ─── handlers ────────────────────────────────────────────────────────────────

func handleEMI(args map[string]any) (any, error) {
	rate, ok := floatArg(args, "interest_rate")
	if !ok {
		rate = calc.DefaultInterestRate
	}
	loan, _ := floatArg(args, "loan_amount")
	tenure, _ := intArg(args, "tenure_years")
	return calc.EMI(loan, rate, tenure)
}

func handleLTV(args map[string]any) (any, error) {
	price, _ := floatArg(args, "property_price")
	down, _ := floatArg(args, "down_payment")
	return calc.LTV(price, down)
}

func handleUpfront(args map[string]any) (any, error) {
	price, _ := floatArg(args, "property_price")
	return calc.Upfront(price)
}

func handleBuyVsRent(args map[string]any) (any, error) {
	in := calc.BuyVsRentInput{}
	in.MonthlyRent, _ = floatArg(args, "monthly_rent")
	in.PropertyPrice, _ = floatArg(args, "property_price")
	in.StayYears, _ = intArg(args, "stay_years")
	in.Income, _ = floatArg(args, "income")
	in.DownPayment, _ = floatArg(args, "down_payment")
	in.InterestRate, _ = floatArg(args, "interest_rate")
	return calc.BuyVsRent(in)
}

// floatArg reads a numeric argument. JSON decoding yields float64, but
// coerced string arguments may arrive as int.
func floatArg(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func intArg(args map[string]any, key string) (int, bool) {
	f, ok := floatArg(args, key)
	if !ok {
		return 0, false
	}
	return int(f), true
}
