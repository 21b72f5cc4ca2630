package calc

// Upfront cost percentages for a UAE property purchase.
const (
	TransferFeePercent = 4.0 // Dubai Land Department transfer fee
	AgencyFeePercent   = 2.0
	MiscFeePercent     = 1.0 // valuation, mortgage registration, admin
)

// UpfrontResult is the breakdown of one-time purchase costs.
type UpfrontResult struct {
	PropertyPrice     float64 `json:"property_price"`
	TransferFee       float64 `json:"transfer_fee"`
	AgencyFee         float64 `json:"agency_fee"`
	MiscFee           float64 `json:"misc_fee"`
	TotalUpfrontCosts float64 `json:"total_upfront_costs"`
	Percentage        float64 `json:"percentage"`
	TotalWithCosts    float64 `json:"total_with_costs"`
}

// Upfront computes the one-time costs of buying a property at the given
// price: 4% transfer fee, 2% agency fee, and 1% miscellaneous fees, for a
// total of 7% on top of the price.
func Upfront(propertyPrice float64) (*UpfrontResult, error) {
	if propertyPrice <= 0 {
		return nil, &InputError{Code: CodeInvalidAmount, Message: "Property price must be positive"}
	}

	transfer := round2(propertyPrice * TransferFeePercent / 100)
	agency := round2(propertyPrice * AgencyFeePercent / 100)
	misc := round2(propertyPrice * MiscFeePercent / 100)
	total := round2(transfer + agency + misc)
	return &UpfrontResult{
		PropertyPrice:     propertyPrice,
		TransferFee:       transfer,
		AgencyFee:         agency,
		MiscFee:           misc,
		TotalUpfrontCosts: total,
		Percentage:        TransferFeePercent + AgencyFeePercent + MiscFeePercent,
		TotalWithCosts:    round2(propertyPrice + total),
	}, nil
}
