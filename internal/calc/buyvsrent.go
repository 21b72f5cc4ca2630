package calc

import "fmt"

// Buy-vs-rent analysis parameters.
const (
	// DefaultInterestRate is the assumed annual mortgage rate (percent) when
	// the caller does not supply one.
	DefaultInterestRate = 4.5

	// MaxAffordabilityPercent is the maximum share of monthly income the EMI
	// may consume before the analysis overrides the recommendation to RENT.
	MaxAffordabilityPercent = 30.0

	// AnnualMaintenancePercent estimates yearly maintenance as a share of the
	// property value.
	AnnualMaintenancePercent = 0.1
)

// Recommendation outcomes of a buy-vs-rent analysis.
const (
	RecommendBuy  = "BUY"
	RecommendRent = "RENT"
)

// BuyVsRentInput collects the parameters of a buy-vs-rent analysis.
// InterestRate is optional; zero means [DefaultInterestRate].
type BuyVsRentInput struct {
	MonthlyRent   float64
	PropertyPrice float64
	StayYears     int
	Income        float64
	DownPayment   float64
	InterestRate  float64
}

// BuyVsRentResult is the outcome of a buy-vs-rent analysis.
type BuyVsRentResult struct {
	Recommendation       string     `json:"recommendation"`
	Reasoning            []string   `json:"reasoning"`
	MonthlyRent          float64    `json:"monthly_rent"`
	MonthlyOwnershipCost float64    `json:"monthly_ownership_cost"`
	MonthlyInterest      float64    `json:"monthly_interest"`
	MaintenanceEstimate  float64    `json:"maintenance_estimate"`
	EMI                  float64    `json:"emi"`
	AffordabilityRatio   float64    `json:"affordability_ratio"`
	IsAffordable         bool       `json:"is_affordable"`
	StayYears            int        `json:"stay_years"`
	UpfrontCosts         float64    `json:"upfront_costs"`
	LTVDetails           *LTVResult `json:"ltv_details"`
	EMIDetails           *EMIResult `json:"emi_details"`
}

// BuyVsRent decides whether buying or renting is the better option for the
// given situation.
//
// Decision order:
//  1. Stay under 3 years: RENT, transaction costs outweigh any gain.
//  2. Stay over 5 years: BUY, equity buildup beats rent.
//  3. Otherwise compare monthly ownership cost (first-year interest plus
//     maintenance) against the current rent.
//  4. Last, if the EMI exceeds 30% of monthly income the recommendation is
//     overridden to RENT regardless of the step above.
//
// The underlying mortgage is modeled at the maximum 25-year tenure. A down
// payment below the 80% LTV cap aborts the analysis with [*LTVRuleError].
func BuyVsRent(in BuyVsRentInput) (*BuyVsRentResult, error) {
	if in.MonthlyRent <= 0 {
		return nil, &InputError{Code: CodeInvalidAmount, Message: "Monthly rent must be positive"}
	}
	if in.PropertyPrice <= 0 {
		return nil, &InputError{Code: CodeInvalidAmount, Message: "Property price must be positive"}
	}
	if in.StayYears <= 0 {
		return nil, &InputError{Code: CodeInvalidTenure, Message: "Stay duration must be positive"}
	}
	if in.Income <= 0 {
		return nil, &InputError{Code: CodeInvalidAmount, Message: "Income must be positive"}
	}

	rate := in.InterestRate
	if rate == 0 {
		rate = DefaultInterestRate
	}

	ltv, err := LTV(in.PropertyPrice, in.DownPayment)
	if err != nil {
		return nil, err
	}
	if !ltv.IsValid {
		return nil, &LTVRuleError{Result: ltv}
	}

	loanAmount := in.PropertyPrice - in.DownPayment
	emi, err := EMI(loanAmount, rate, MaxTenureYears)
	if err != nil {
		return nil, err
	}

	// First-year approximation of the interest portion.
	monthlyInterest := loanAmount * rate / 100 / 12
	maintenance := in.PropertyPrice * AnnualMaintenancePercent / 100 / 12
	ownershipCost := monthlyInterest + maintenance

	upfront, err := Upfront(in.PropertyPrice)
	if err != nil {
		return nil, err
	}

	recommendation := RecommendRent
	var reasoning []string
	switch {
	case in.StayYears < 3:
		recommendation = RecommendRent
		reasoning = append(reasoning, fmt.Sprintf(
			"Planning to stay less than 3 years. Transaction costs (%s AED) would outweigh benefits.",
			FormatAED(upfront.TotalUpfrontCosts)))
	case in.StayYears > 5:
		recommendation = RecommendBuy
		reasoning = append(reasoning,
			"Planning to stay more than 5 years. Equity buildup and long-term savings favor buying.")
	case ownershipCost < in.MonthlyRent:
		recommendation = RecommendBuy
		reasoning = append(reasoning, fmt.Sprintf(
			"Monthly ownership cost (%s AED) is less than rent (%s AED).",
			FormatAED(ownershipCost), FormatAED(in.MonthlyRent)))
	default:
		recommendation = RecommendRent
		reasoning = append(reasoning, fmt.Sprintf(
			"Monthly rent (%s AED) is less than ownership cost (%s AED) for now.",
			FormatAED(in.MonthlyRent), FormatAED(ownershipCost)))
	}

	affordability := emi.EMI / in.Income * 100
	affordable := affordability <= MaxAffordabilityPercent
	if !affordable {
		// Affordability always wins over the stay-duration verdict.
		recommendation = RecommendRent
		reasoning = append(reasoning, fmt.Sprintf(
			"EMI (%s AED) is %.1f%% of income. Recommended max is %.0f%%.",
			FormatAED(emi.EMI), affordability, MaxAffordabilityPercent))
	}

	return &BuyVsRentResult{
		Recommendation:       recommendation,
		Reasoning:            reasoning,
		MonthlyRent:          in.MonthlyRent,
		MonthlyOwnershipCost: round2(ownershipCost),
		MonthlyInterest:      round2(monthlyInterest),
		MaintenanceEstimate:  round2(maintenance),
		EMI:                  emi.EMI,
		AffordabilityRatio:   round2(affordability),
		IsAffordable:         affordable,
		StayYears:            in.StayYears,
		UpfrontCosts:         upfront.TotalUpfrontCosts,
		LTVDetails:           ltv,
		EMIDetails:           emi,
	}, nil
}
