package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryExecuteUnknownToolFallsBack(t *testing.T) {
	reg, err := NewRegistry(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())

	out, err := reg.Execute(context.Background(), "made_up_tool", map[string]any{"x": 1})
	require.NoError(t, err, "unknown tools degrade to a fallback result, not an error")
	assert.Contains(t, out, "unknown_tool")
	assert.Contains(t, out, "made_up_tool")
}

func TestRegistryInfosMatchTools(t *testing.T) {
	reg, err := NewRegistry(context.Background(), NewProfileReaderTools(newFakeProfileRepo(), "u1"))
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len())
	names := make([]string, 0, 2)
	for _, info := range reg.Infos() {
		names = append(names, info.Name)
	}
	assert.ElementsMatch(t, []string{"get_user_profile", "get_stored_resume"}, names)
}

func TestProfileReaderToolsReportMissingData(t *testing.T) {
	reg, err := NewRegistry(context.Background(), NewProfileReaderTools(newFakeProfileRepo(), "u1"))
	require.NoError(t, err)

	out, err := reg.Execute(context.Background(), "get_stored_resume", map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, out, `"found":false`)

	out, err = reg.Execute(context.Background(), "get_user_profile", map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, out, `"found":false`)
}
