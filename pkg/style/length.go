package style

import (
	"strconv"
	"strings"
)

// ParseCornerRadius returns the first numeric token of a border-radius value
// in pixels. Absent, "none" and zero values yield 0.
func ParseCornerRadius(s string) float64 {
	return firstNumber(s)
}

// ParsePixels returns the first numeric token of a length such as "24px".
func ParsePixels(s string) float64 {
	return firstNumber(s)
}

// IsBold reports whether a computed font-weight renders as bold: the keyword
// "bold" or a numeric weight of at least 700.
func IsBold(weight string) bool {
	weight = strings.ToLower(strings.TrimSpace(weight))
	if weight == "bold" {
		return true
	}
	v, err := strconv.ParseFloat(weight, 64)
	return err == nil && v >= 700
}

// HasShadow reports whether a box-shadow value draws anything.
func HasShadow(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s != "" && s != "none"
}

func firstNumber(s string) float64 {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return 0
	}
	tok := numberRe.FindString(s)
	if tok == "" {
		return 0
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0
	}
	return v
}
