package calendar

import (
	"strconv"
	"strings"
)

// Argument extraction with declared fallbacks. Tool arguments arrive as a
// loosely typed mapping decoded from JSON, so numbers are usually float64
// and booleans occasionally strings.

func stringArg(args map[string]any, key, fallback string) string {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}

func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
		return fallback
	default:
		return fallback
	}
}

func boolArg(args map[string]any, key string, fallback bool) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
		return fallback
	default:
		return fallback
	}
}

func successEnvelope(message string, extra map[string]any) map[string]any {
	envelope := map[string]any{
		"status":  "success",
		"message": message,
	}
	for k, v := range extra {
		envelope[k] = v
	}
	return envelope
}

func errorEnvelope(message string, extra map[string]any) map[string]any {
	envelope := map[string]any{
		"status":  "error",
		"message": message,
	}
	for k, v := range extra {
		envelope[k] = v
	}
	return envelope
}
