package nodes

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"reflect"
	"time"

	"github.com/careerpilot/server/internal/agent/model"
	logx "github.com/careerpilot/server/pkg/logger"
	"github.com/google/uuid"
)

// DuplicateDetector decides whether a requested tool call repeats one
// already completed in this turn. Content-bearing tools (a long free-text
// primary argument) match on a stable hash of that payload within a
// recency window; all other tools match on deep argument equality
// regardless of recency. Duplicates are skipped so side effects never
// run twice for the same content.
type DuplicateDetector struct {
	window time.Duration
}

func NewDuplicateDetector(window time.Duration) *DuplicateDetector {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &DuplicateDetector{window: window}
}

// ContentHash fingerprints a content-bearing tool call's primary payload.
func (d *DuplicateDetector) ContentHash(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// FindDuplicate returns the prior completed action the candidate call
// repeats, or nil when the call should execute. contentArg names the
// primary free-text argument for content-bearing tools; empty means the
// tool matches on the full argument bag.
func (d *DuplicateDetector) FindDuplicate(
	completed []model.CompletedAction,
	agentType string,
	call model.ValidatedToolCall,
	contentArg string,
	now time.Time,
) *model.CompletedAction {
	if contentArg != "" {
		payload, _ := call.Args[contentArg].(string)
		hash := d.ContentHash(payload)
		for i := range completed {
			prior := &completed[i]
			if prior.AgentType != agentType || prior.ToolName != call.Name {
				continue
			}
			if prior.ContentHash != hash {
				// distinct content is always allowed through
				continue
			}
			if now.Sub(prior.Timestamp) <= d.window {
				logx.Debug().
					Str("tool_name", call.Name).
					Str("agent_type", agentType).
					Msg("duplicate content-bearing call within recency window")
				return prior
			}
		}
		return nil
	}

	for i := range completed {
		prior := &completed[i]
		if prior.AgentType != agentType || prior.ToolName != call.Name {
			continue
		}
		if reflect.DeepEqual(prior.Args, call.Args) {
			logx.Debug().
				Str("tool_name", call.Name).
				Str("agent_type", agentType).
				Msg("duplicate call with identical arguments")
			return prior
		}
	}
	return nil
}

// RecordAction builds the immutable CompletedAction for an executed call.
func (d *DuplicateDetector) RecordAction(
	agentType string,
	call model.ValidatedToolCall,
	result string,
	previewLen int,
	contentArg string,
	now time.Time,
) model.CompletedAction {
	action := model.CompletedAction{
		ID:        uuid.NewString(),
		AgentType: agentType,
		ToolName:  call.Name,
		Args:      call.Args,
		Result:    truncateResult(result, previewLen),
		Timestamp: now,
	}
	if contentArg != "" {
		payload, _ := call.Args[contentArg].(string)
		action.ContentHash = d.ContentHash(payload)
	}
	return action
}

// marshalArgs renders an argument bag as canonical JSON (map keys are
// sorted by encoding/json).
func marshalArgs(args map[string]any) (string, error) {
	b, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
