package calc

import (
	"fmt"
	"strings"
)

// FormatAED renders an AED amount with thousands separators and no decimal
// places, e.g. 1250000 -> "1,250,000". Amounts are rounded to the nearest
// dirham.
func FormatAED(x float64) string {
	s := fmt.Sprintf("%.0f", x)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
