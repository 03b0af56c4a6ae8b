package util

import (
	"strconv"
	"strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// FormatFloat renders v with a fixed number of decimals.
func FormatFloat(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// FormatOptional renders v with decimals, or placeholder when v is nil.
func FormatOptional(v *float64, decimals int, placeholder string) string {
	if v == nil {
		return placeholder
	}
	return FormatFloat(*v, decimals)
}

var htmlAngle = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// EscapeAngles replaces angle brackets with their HTML entities.
func EscapeAngles(s string) string {
	return htmlAngle.Replace(s)
}
