package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dialectic-ai/dialectic/internal/server"
)

func handleGetResults(_ context.Context, request mcp.CallToolRequest, app *server.AppContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	runID, _ := args["run_id"].(string)

	if runID == "" {
		listings, err := app.Store.ListRuns()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
		}
		data, err := json.MarshalIndent(listings, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal runs: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}

	run, err := app.Store.GetRun(runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run %q not found: %v", runID, err)), nil
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal run: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleGetLog(_ context.Context, request mcp.CallToolRequest, app *server.AppContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	logID, ok := args["log_id"].(string)
	if !ok || logID == "" {
		return mcp.NewToolResultError("log_id is required"), nil
	}

	log, err := app.Store.GetLog(logID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("log %q not found: %v", logID, err)), nil
	}
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal log: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
