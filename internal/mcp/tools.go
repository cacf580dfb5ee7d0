// Package mcp exposes debate strategies, benchmarks and evaluation runs as
// MCP tools.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/dialectic-ai/dialectic/internal/server"
)

// RegisterTools registers all MCP tools with the server.
func RegisterTools(s *mcpserver.MCPServer, app *server.AppContext) error {
	listStrategiesTool := mcp.NewTool("list_strategies",
		mcp.WithDescription("List available dialogue strategies with their agent prompts and turn limits"),
	)
	s.AddTool(listStrategiesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListStrategies(ctx, request, app)
	})

	listBenchmarksTool := mcp.NewTool("list_benchmarks",
		mcp.WithDescription("List available benchmark question sets with metadata"),
	)
	s.AddTool(listBenchmarksTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListBenchmarks(ctx, request, app)
	})

	runTool := mcp.NewTool("run_evaluation",
		mcp.WithDescription("Run a benchmark evaluation comparing simulated and dual conversations for one strategy"),
		mcp.WithString("benchmark",
			mcp.Required(),
			mcp.Description("Benchmark id to evaluate (e.g. 'simple', 'gpqa', 'aime')"),
		),
		mcp.WithString("strategy",
			mcp.Required(),
			mcp.Description("Strategy id to use (e.g. 'debate', 'cooperative', 'teacher-student')"),
		),
		mcp.WithNumber("max_questions",
			mcp.Description("Limit the number of questions (default: all)"),
		),
	)
	s.AddTool(runTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRunEvaluation(ctx, request, app)
	})

	compareTool := mcp.NewTool("compare_strategies",
		mcp.WithDescription("Evaluate several strategies against the same benchmark and return a side-by-side report"),
		mcp.WithString("benchmark",
			mcp.Required(),
			mcp.Description("Benchmark id to evaluate"),
		),
		mcp.WithString("strategies",
			mcp.Description("Comma-separated strategy ids (default: all strategies)"),
		),
		mcp.WithNumber("max_questions",
			mcp.Description("Limit the number of questions (default: all)"),
		),
	)
	s.AddTool(compareTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCompareStrategies(ctx, request, app)
	})

	getResultsTool := mcp.NewTool("get_results",
		mcp.WithDescription("Retrieve results and summaries for past evaluation runs"),
		mcp.WithString("run_id",
			mcp.Description("Specific run ID to retrieve (optional, lists all if omitted)"),
		),
	)
	s.AddTool(getResultsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetResults(ctx, request, app)
	})

	getLogTool := mcp.NewTool("get_log",
		mcp.WithDescription("Retrieve the full conversation transcripts behind one question's result"),
		mcp.WithString("log_id",
			mcp.Required(),
			mcp.Description("Conversation log ID from an evaluation result"),
		),
	)
	s.AddTool(getLogTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetLog(ctx, request, app)
	})

	return nil
}
