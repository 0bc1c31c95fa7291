package parsers

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/careerpilot/server/internal/agent/model"
	logx "github.com/careerpilot/server/pkg/logger"
	"github.com/google/uuid"
)

// Some provider clients emit tool calls as literal text inside the
// response content instead of structured calls. The extractor recovers a
// best-effort (name, args) pair from the known serialization shapes and
// assigns each a synthetic id. It is a recovery heuristic: it never
// panics, and unparseable argument fragments degrade to an empty bag.

const maxExtractLen = 128 * 1024 // 128KB

// wrapperShape is one known inline serialization, e.g.
// {"functionCall":{"name":...,"args":{...}}}.
type wrapperShape struct {
	head    *regexp.Regexp
	argsKey string
}

var wrapperShapes = []wrapperShape{
	{head: regexp.MustCompile(`"functionCall"\s*:\s*\{`), argsKey: "args"},
	{head: regexp.MustCompile(`"function_call"\s*:\s*\{`), argsKey: "arguments"},
}

// bareShape matches a top-level {"name":"...","args":{...}} object.
var bareShape = regexp.MustCompile(`\{\s*"name"\s*:\s*"[^"]+"\s*,\s*"args"\s*:\s*\{`)

// ExtractToolCalls scans response text for inline-embedded tool calls.
// A nil return means no extraction; the caller should treat the text as
// a direct reply. Repeated runs over the same input yield the same
// (name, args) results: the scan holds no state.
func ExtractToolCalls(text string) (calls []model.ValidatedToolCall) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "toolcall_extractor").Msgf("panic recovered: %v", r)
			calls = nil
		}
	}()

	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) > maxExtractLen {
		logx.Warn().
			Str("component", "toolcall_extractor").
			Int("orig_len", len(text)).
			Msg("content truncated due to size limit")
		text = text[:maxExtractLen]
	}

	// consumed tracks byte ranges already claimed by a wrapper match so
	// the bare shape does not re-extract a wrapper's inner object.
	type span struct{ start, end int }
	var consumed []span
	claimed := func(start int) bool {
		for _, s := range consumed {
			if start >= s.start && start < s.end {
				return true
			}
		}
		return false
	}

	for _, shape := range wrapperShapes {
		for _, loc := range shape.head.FindAllStringIndex(text, -1) {
			objStart := loc[1] - 1 // the opening brace matched by the head
			body, end, ok := scanJSONObject(text, objStart)
			if !ok {
				continue
			}
			name, args := parseInlineCall(body, shape.argsKey)
			if name == "" {
				continue
			}
			consumed = append(consumed, span{start: loc[0], end: end})
			calls = append(calls, newExtractedCall(name, args))
		}
	}

	for _, loc := range bareShape.FindAllStringIndex(text, -1) {
		if claimed(loc[0]) {
			continue
		}
		body, _, ok := scanJSONObject(text, loc[0])
		if !ok {
			continue
		}
		name, args := parseInlineCall(body, "args")
		if name == "" {
			continue
		}
		calls = append(calls, newExtractedCall(name, args))
	}

	if len(calls) > 0 {
		logx.Warn().
			Int("count", len(calls)).
			Msg("recovered tool calls embedded as inline text")
	}
	return calls
}

func newExtractedCall(name string, args map[string]any) model.ValidatedToolCall {
	if args == nil {
		args = map[string]any{}
	}
	return model.ValidatedToolCall{
		Name: name,
		Args: args,
		ID:   "extracted_" + uuid.NewString(),
		Kind: model.ToolCallKind,
	}
}

// parseInlineCall pulls (name, args) out of one serialized call object.
// Partial or malformed argument fragments yield an empty bag, not a
// failed extraction.
func parseInlineCall(body, argsKey string) (string, map[string]any) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return "", nil
	}
	var name string
	if raw, ok := m["name"]; ok {
		if err := json.Unmarshal(raw, &name); err != nil {
			return "", nil
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	args := map[string]any{}
	if raw, ok := m[argsKey]; ok {
		if err := json.Unmarshal(raw, &args); err != nil {
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", safeSnippet(string(raw))).
				Msg("inline call arguments unparseable; degrading to empty bag")
			args = map[string]any{}
		}
	}
	return name, args
}

// scanJSONObject returns the balanced JSON object starting at the brace
// at position start, honoring string literals and escapes.
func scanJSONObject(s string, start int) (string, int, bool) {
	if start < 0 || start >= len(s) || s[start] != '{' {
		return "", 0, false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], i + 1, true
			}
		}
	}
	return "", 0, false
}
