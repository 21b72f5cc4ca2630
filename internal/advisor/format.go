package advisor

import (
	"fmt"
	"strings"

	"github.com/bayti-ai/bayti/internal/calc"
	"github.com/bayti-ai/bayti/internal/tools"
)

// FallbackNotice is committed and streamed when tools ran but neither the
// model nor the formatter produced any text. The user must never be left
// without a reply.
const FallbackNotice = "I've calculated the information you requested. Please let me know if you need any clarification."

// formatResults renders successful tool results as user-facing text. It is
// the safety net for models that execute tools and then return an empty final
// message. Failed results are skipped; the model already saw them as tool
// messages and the error path handles user communication.
func formatResults(results []*tools.Result) string {
	var parts []string
	for _, res := range results {
		if res.Failed() {
			continue
		}
		switch payload := res.Payload.(type) {
		case *calc.EMIResult:
			parts = append(parts, fmt.Sprintf(
				"For a loan of %s AED at %.1f%% interest over %d years:\n\n"+
					"• Monthly EMI: %s AED\n"+
					"• Total amount payable: %s AED\n"+
					"• Total interest: %s AED",
				calc.FormatAED(payload.LoanAmount), payload.InterestRate, payload.TenureYears,
				formatAED2(payload.EMI), formatAED2(payload.TotalAmount), formatAED2(payload.TotalInterest)))

		case *calc.LTVResult:
			if payload.IsValid {
				parts = append(parts, fmt.Sprintf(
					"Your LTV ratio is %.1f%%, which meets UAE expat requirements (maximum 80%%).",
					payload.LTVRatio))
			} else {
				parts = append(parts, fmt.Sprintf(
					"Your LTV ratio is %.1f%%, which exceeds the 80%% limit for expats. "+
						"You'll need a minimum down payment of %s AED.",
					payload.LTVRatio, calc.FormatAED(payload.MinDownPaymentRequired)))
			}

		case *calc.UpfrontResult:
			parts = append(parts, fmt.Sprintf(
				"For a property worth %s AED, the upfront costs are approximately %s AED "+
					"(7%% of property price: 4%% transfer fee, 2%% agency fee, 1%% miscellaneous).",
				calc.FormatAED(payload.PropertyPrice), calc.FormatAED(payload.TotalUpfrontCosts)))

		case *calc.BuyVsRentResult:
			var b strings.Builder
			fmt.Fprintf(&b, "Based on your situation, I recommend: **%s**\n\n", payload.Recommendation)
			for i, r := range payload.Reasoning {
				if i > 0 {
					b.WriteByte('\n')
				}
				b.WriteString("• " + r)
			}
			if payload.EMI != 0 {
				fmt.Fprintf(&b, "\n\nYour estimated monthly EMI would be %s AED.", formatAED2(payload.EMI))
			}
			parts = append(parts, b.String())
		}
	}
	return strings.Join(parts, "\n\n")
}

// formatAED2 renders an amount with thousands separators and 2 decimal
// places, e.g. 5558.32 -> "5,558.32".
func formatAED2(x float64) string {
	s := fmt.Sprintf("%.2f", x)
	intPart, frac, _ := strings.Cut(s, ".")
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	return sign + groupThousands(intPart) + "." + frac
}

func groupThousands(digits string) string {
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
