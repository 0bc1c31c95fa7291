package tools

import (
	"context"
	"encoding/json"
	"fmt"

	logx "github.com/careerpilot/server/pkg/logger"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// Registry maps tool names to invocable units for one agent run. Tools
// themselves are external collaborators; the registry only resolves and
// invokes them.
type Registry struct {
	byName map[string]tool.InvokableTool
	infos  []*schema.ToolInfo
}

// NewRegistry resolves tool infos and indexes the invocable tools.
func NewRegistry(ctx context.Context, list []tool.BaseTool) (*Registry, error) {
	r := &Registry{byName: make(map[string]tool.InvokableTool, len(list))}
	for _, t := range list {
		info, err := t.Info(ctx)
		if err != nil {
			logx.Error().Err(err).Msg("Failed to get tool info")
			return nil, fmt.Errorf("failed to get tool info: %w", err)
		}
		inv, ok := t.(tool.InvokableTool)
		if !ok {
			return nil, fmt.Errorf("tool %s is not invokable", info.Name)
		}
		r.byName[info.Name] = inv
		r.infos = append(r.infos, info)
	}
	return r, nil
}

// Infos returns the tool schemas to bind to the model.
func (r *Registry) Infos() []*schema.ToolInfo {
	return r.infos
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	return len(r.byName)
}

// Execute invokes one tool by name with the given argument bag. An
// unknown or hallucinated tool name yields a compact fallback string the
// model can use to proceed, not an error.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	inv, ok := r.byName[name]
	if !ok {
		logx.Warn().
			Str("tool_name", name).
			Msg("Unknown or invalid tool call; returning fallback result")
		return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
	}

	argsJSON, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("marshal arguments for %s: %w", name, err)
	}
	return inv.InvokableRun(ctx, string(argsJSON))
}
