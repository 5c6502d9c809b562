package closing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// groupedThousands matches integers written with dot separators, "15.000"
var groupedThousands = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)

// ToNumber parses a money field. Plain decimals ("15000.50") and Brazilian
// formatted values ("R$ 15.000,50", "15.000,50", "15.000") are accepted;
// anything blank or unparseable is 0.
func ToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	brl := strings.Contains(s, "R$") || strings.Contains(s, ",") || groupedThousands.MatchString(s)
	s = strings.TrimSpace(strings.TrimPrefix(strings.ReplaceAll(s, "R$", ""), "+"))
	s = strings.ReplaceAll(s, " ", "")
	if brl {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatInput renders v the way a user would type it into a field.
// Zero renders as blank.
func FormatInput(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatBRL renders v as Brazilian currency, e.g. "R$ 15.000,50".
func FormatBRL(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "R$ " + humanize.FormatFloat("#.###,##", v)
}
