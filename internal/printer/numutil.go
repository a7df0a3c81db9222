package printer

import (
	"fmt"
	"strings"
)

// FormatPercent returns a percent with four decimals.
// Examples: "0.0000%", "52.1234%", "100.0000%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.4f%%", p)
}

// FormatDifficulty groups the digits of a decimal difficulty by thousands.
// Values that are not plain digits are returned as is.
func FormatDifficulty(d string) string {
	if d == "" || strings.TrimLeft(d, "0123456789") != "" {
		return d
	}

	var b strings.Builder
	lead := len(d) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(d[:lead])
	for i := lead; i < len(d); i += 3 {
		b.WriteByte(',')
		b.WriteString(d[i : i+3])
	}

	return b.String()
}
