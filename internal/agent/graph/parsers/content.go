package parsers

import (
	"encoding/json"
	"strings"

	logx "github.com/careerpilot/server/pkg/logger"
)

// contentPart mirrors the typed-parts shape some providers return in
// place of a plain string.
type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NormalizeContent makes model response content safe for message
// construction. A string that looks like a serialized parts array is
// reparsed and only text-typed parts are kept: zero parts yield an empty
// string, one part yields its text verbatim, multiple parts are joined
// in order. Anything else passes through unchanged.
func NormalizeContent(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return content
	}

	var parts []contentPart
	if err := json.Unmarshal([]byte(trimmed), &parts); err != nil {
		// not a parts array after all; keep the original text
		return content
	}

	texts := make([]string, 0, len(parts))
	typed := false
	for _, p := range parts {
		if p.Type != "" {
			typed = true
		}
		if p.Type == "text" {
			texts = append(texts, p.Text)
		}
	}
	if !typed {
		// a plain JSON array the model chose to emit, not a parts payload
		return content
	}

	switch len(texts) {
	case 0:
		return ""
	case 1:
		return texts[0]
	default:
		return strings.Join(texts, "\n")
	}
}

// NormalizeContentValue handles the non-string content shapes the model
// interface tolerates: a parts slice is filtered to text parts, any other
// object is stringified as a last resort.
func NormalizeContentValue(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return NormalizeContent(vv)
	case []any:
		texts := make([]string, 0, len(vv))
		for _, item := range vv {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if t, _ := m["type"].(string); t == "text" {
				if s, _ := m["text"].(string); s != "" {
					texts = append(texts, s)
				}
			}
		}
		return strings.Join(texts, "\n")
	default:
		b, err := json.Marshal(v)
		if err != nil {
			logx.Warn().Str("component", "content_normalizer").Msg("unrenderable content payload dropped")
			return ""
		}
		return string(b)
	}
}
