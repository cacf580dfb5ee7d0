package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dialectic-ai/dialectic/internal/server"
)

func handleRunEvaluation(ctx context.Context, request mcp.CallToolRequest, app *server.AppContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	benchmarkID, ok := args["benchmark"].(string)
	if !ok || benchmarkID == "" {
		return mcp.NewToolResultError("benchmark is required"), nil
	}
	strategyID, ok := args["strategy"].(string)
	if !ok || strategyID == "" {
		return mcp.NewToolResultError("strategy is required"), nil
	}

	maxQuestions := 0
	if n, ok := args["max_questions"].(float64); ok {
		maxQuestions = int(n)
	}

	run, err := app.Runner.Execute(ctx, benchmarkID, strategyID, maxQuestions)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	summary := map[string]any{
		"run_id":             run.RunID,
		"benchmark":          run.Benchmark,
		"strategy":           run.Strategy,
		"total_questions":    run.Summary.TotalQuestions,
		"simulated_correct":  run.Summary.SimulatedCorrect,
		"dual_correct":       run.Summary.DualCorrect,
		"simulated_accuracy": run.Summary.SimulatedAccuracy,
		"dual_accuracy":      run.Summary.DualAccuracy,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal summary: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleCompareStrategies(ctx context.Context, request mcp.CallToolRequest, app *server.AppContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	benchmarkID, ok := args["benchmark"].(string)
	if !ok || benchmarkID == "" {
		return mcp.NewToolResultError("benchmark is required"), nil
	}

	var strategyIDs []string
	if raw, ok := args["strategies"].(string); ok && raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				strategyIDs = append(strategyIDs, id)
			}
		}
	}

	maxQuestions := 0
	if n, ok := args["max_questions"].(float64); ok {
		maxQuestions = int(n)
	}

	comparison, err := app.Runner.Compare(ctx, benchmarkID, strategyIDs, maxQuestions)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}

	data, err := json.MarshalIndent(comparison, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal comparison: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
