package analysis

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// The classifier is asked for bare JSON but routinely wraps it in prose or
// markdown fences. Extraction finds the first opening delimiter and the last
// matching closing delimiter and decodes that substring; anything that still
// fails to decode degrades to the caller's typed default.

func extractDelimited(raw string, openDelim, closeDelim byte) (string, bool) {
	start := strings.IndexByte(raw, openDelim)
	end := strings.LastIndexByte(raw, closeDelim)
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

func unmarshalArray[T any](raw string) ([]T, bool) {
	payload, ok := extractDelimited(raw, '[', ']')
	if !ok {
		slog.Warn("[Analysis] No JSON array found in classifier reply",
			slog.String("reply_snippet", snippet(raw)))
		return nil, false
	}

	var out []T
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		slog.Warn("[Analysis] Failed to decode classifier array",
			slog.String("error", err.Error()),
			slog.String("reply_snippet", snippet(raw)))
		return nil, false
	}
	return out, true
}

func unmarshalObject[T any](raw string) (T, bool) {
	var out T

	payload, ok := extractDelimited(raw, '{', '}')
	if !ok {
		slog.Warn("[Analysis] No JSON object found in classifier reply",
			slog.String("reply_snippet", snippet(raw)))
		return out, false
	}

	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		slog.Warn("[Analysis] Failed to decode classifier object",
			slog.String("error", err.Error()),
			slog.String("reply_snippet", snippet(raw)))
		var zero T
		return zero, false
	}
	return out, true
}

func snippet(raw string) string {
	const max = 100
	raw = strings.TrimSpace(raw)
	if len(raw) > max {
		return raw[:max] + "..."
	}
	return raw
}
