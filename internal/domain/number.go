package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount reads a scraped numeric cell such as "$1,234.50", "12.5%" or
// "(300)". Blank, "-" and "nan" cells read as zero.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "-", "nan", "n/a":
		return 0, nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(s)
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	if negative {
		v = -v
	}
	return v, nil
}
