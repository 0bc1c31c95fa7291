package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeContentPlainTextUnchanged(t *testing.T) {
	assert.Equal(t, "hello there", NormalizeContent("hello there"))
	assert.Equal(t, "", NormalizeContent(""))
}

func TestNormalizeContentSinglePartVerbatim(t *testing.T) {
	in := `[{"type":"text","text":"Your resume is ready."}]`
	assert.Equal(t, "Your resume is ready.", NormalizeContent(in))
}

func TestNormalizeContentRoundTripIdempotent(t *testing.T) {
	in := `[{"type":"text","text":"final answer"}]`
	once := NormalizeContent(in)
	assert.Equal(t, "final answer", once)
	assert.Equal(t, once, NormalizeContent(once))
}

func TestNormalizeContentFiltersNonTextParts(t *testing.T) {
	in := `[{"type":"text","text":"a"},{"type":"function_call","text":"x"},{"type":"text","text":"b"}]`
	assert.Equal(t, "a\nb", NormalizeContent(in))
}

func TestNormalizeContentZeroTextPartsYieldsEmpty(t *testing.T) {
	in := `[{"type":"function_call","text":"x"}]`
	assert.Equal(t, "", NormalizeContent(in))
}

func TestNormalizeContentKeepsNonPartsArrays(t *testing.T) {
	in := `["just","a","list"]`
	assert.Equal(t, in, NormalizeContent(in))

	malformed := `[{"type":"text","text":"oops"`
	assert.Equal(t, malformed, NormalizeContent(malformed))
}

func TestNormalizeContentValueShapes(t *testing.T) {
	assert.Equal(t, "", NormalizeContentValue(nil))
	assert.Equal(t, "plain", NormalizeContentValue("plain"))

	parts := []any{
		map[string]any{"type": "text", "text": "first"},
		map[string]any{"type": "image", "url": "x"},
		map[string]any{"type": "text", "text": "second"},
	}
	assert.Equal(t, "first\nsecond", NormalizeContentValue(parts))

	// last resort: stringify
	assert.Equal(t, `{"k":"v"}`, NormalizeContentValue(map[string]any{"k": "v"}))
}
