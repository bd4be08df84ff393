package cli

import "strings"

// Dash returns "-" for empty values so table cells stay aligned.
func Dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// FormatBool renders a role flag as "yes" or "-" for table output.
func FormatBool(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

// FormatAddresses joins address/network pairs for a single table cell.
func FormatAddresses(pairs [][2]string) string {
	if len(pairs) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p[1] != "" {
			parts = append(parts, p[0]+" ("+p[1]+")")
		} else {
			parts = append(parts, p[0])
		}
	}
	return strings.Join(parts, ", ")
}
