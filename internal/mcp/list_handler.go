package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dialectic-ai/dialectic/internal/benchmark"
	"github.com/dialectic-ai/dialectic/internal/server"
)

func handleListStrategies(_ context.Context, _ mcp.CallToolRequest, app *server.AppContext) (*mcp.CallToolResult, error) {
	type strategyInfo struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		MaxTurns    int    `json:"max_turns"`
	}

	var strategies []strategyInfo
	for _, def := range app.Strategies.List() {
		strategies = append(strategies, strategyInfo{
			ID:          def.ID,
			Description: def.Description,
			MaxTurns:    def.MaxTurns,
		})
	}

	data, err := json.MarshalIndent(strategies, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal strategies: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleListBenchmarks(_ context.Context, _ mcp.CallToolRequest, app *server.AppContext) (*mcp.CallToolResult, error) {
	ids, err := benchmark.List(app.DataDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list benchmarks: %v", err)), nil
	}

	type benchmarkInfo struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Description   string `json:"description"`
		AnswerFormat  string `json:"answer_format"`
		QuestionCount int    `json:"question_count"`
	}

	var benchmarks []benchmarkInfo
	for _, id := range ids {
		def, err := benchmark.Load(id, app.DataDir)
		if err != nil {
			continue
		}
		benchmarks = append(benchmarks, benchmarkInfo{
			ID:            def.ID,
			Name:          def.Name,
			Description:   def.Description,
			AnswerFormat:  string(def.AnswerFormat),
			QuestionCount: len(def.Questions),
		})
	}

	data, err := json.MarshalIndent(benchmarks, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal benchmarks: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
