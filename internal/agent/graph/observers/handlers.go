package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"

	logx "github.com/careerpilot/server/pkg/logger"
)

// NewGraphCallbacks builds the callbacks handler attached to every graph
// invocation. This graph's model calls happen inside lambda nodes, so a
// generic handler over node runs is the right observation point.
func NewGraphCallbacks() einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, input einocb.CallbackInput) context.Context {
			if info != nil {
				logx.Debug().
					Str("component", string(info.Component)).
					Str("node", info.Name).
					Msg("node start")
			}
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, output einocb.CallbackOutput) context.Context {
			if info != nil {
				logx.Debug().
					Str("component", string(info.Component)).
					Str("node", info.Name).
					Msg("node end")
			}
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			if info != nil {
				logx.Error().
					Err(err).
					Str("component", string(info.Component)).
					Str("node", info.Name).
					Msg("node error")
			}
			return ctx
		}).
		Build()
}
