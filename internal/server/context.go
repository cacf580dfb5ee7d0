package server

import (
	"github.com/dialectic-ai/dialectic/internal/dialogue"
	"github.com/dialectic-ai/dialectic/internal/evaluation"
	"github.com/dialectic-ai/dialectic/internal/strategy"
	"github.com/dialectic-ai/dialectic/internal/stream"
)

// AppContext holds shared dependencies for HTTP and MCP handlers.
type AppContext struct {
	Engine     *dialogue.Engine
	Runner     *evaluation.Runner
	Store      evaluation.Store
	Strategies *strategy.Registry
	Broker     *stream.Broker
	DataDir    string // external benchmark directory (optional)
}
