package textutil

import "strings"

// OrDefault returns value unless it is blank.
func OrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// OrDash renders blank table cells as "-".
func OrDash(value string) string { return OrDefault(value, "-") }
