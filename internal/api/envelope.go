package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the one normalization point for the backend's list shapes.
// Endpoints variously return a bare array, {"data": [...]}, {"items": [...]},
// or {"languages": [...]}, with the total under meta.total or total.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	Items     json.RawMessage `json:"items"`
	Languages json.RawMessage `json:"languages"`
	Total     *int            `json:"total"`
	Meta      struct {
		Total *int `json:"total"`
	} `json:"meta"`
}

// decodeList decodes a list response body into out (a pointer to a slice)
// and returns the server-reported total, falling back to the list length.
func decodeList(body []byte, out any) (int, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return 0, nil
	}

	var raw json.RawMessage
	if trimmed[0] == '[' {
		raw = trimmed
	} else {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return 0, fmt.Errorf("unexpected response shape: %w", err)
		}
		switch {
		case len(env.Data) > 0 && env.Data[0] == '[':
			raw = env.Data
		case len(env.Items) > 0 && env.Items[0] == '[':
			raw = env.Items
		case len(env.Languages) > 0 && env.Languages[0] == '[':
			raw = env.Languages
		default:
			raw = json.RawMessage("[]")
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return 0, fmt.Errorf("failed to decode list: %w", err)
		}
		return reconcileTotal(env, listLen(out)), nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return 0, fmt.Errorf("failed to decode list: %w", err)
	}
	return listLen(out), nil
}

// reconcileTotal prefers meta.total, then total, then the page length.
func reconcileTotal(env envelope, pageLen int) int {
	if env.Meta.Total != nil {
		return *env.Meta.Total
	}
	if env.Total != nil {
		return *env.Total
	}
	return pageLen
}

// listLen counts the decoded page. Decode targets are the known slice types.
func listLen(out any) int {
	switch v := out.(type) {
	case *[]LanguageEntry:
		return len(*v)
	case *[]AvailabilityEntry:
		return len(*v)
	case *[]CallRecord:
		return len(*v)
	case *[]LanguageUsageRow:
		return len(*v)
	default:
		return 0
	}
}
