package validator

import (
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidLatitude reports whether lat is a usable latitude.
func IsValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// IsValidLongitude reports whether lng is a usable longitude.
func IsValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}

// ScanTimestampLayout is the fixed layout accepted for explicit scan timestamps.
const ScanTimestampLayout = "2006-01-02 15:04:05"

// ParseScanTimestamp parses an explicit scan timestamp. The instant is
// interpreted as UTC.
func ParseScanTimestamp(s string) (time.Time, bool) {
	t, err := time.Parse(ScanTimestampLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// IsInSlice reports whether value is present in slice.
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}
