package normalize

import "strings"

// NormalizeDate turns DD/MM/YYYY into YYYY-MM-DD, zero-padding day and
// month. Malformed input comes back unchanged.
func NormalizeDate(s string) string {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return s
	}
	for _, p := range parts {
		if !isDigits(p) {
			return s
		}
	}
	day, month, year := parts[0], parts[1], parts[2]
	return year + "-" + zeroPad(month, 2) + "-" + zeroPad(day, 2)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
