package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"rca-agent/internal/pipeline"
	"rca-agent/internal/storage"
)

// registerAnalyzeLogTool adds the analyze_log tool.
func registerAnalyzeLogTool(s *server.MCPServer, analyzer *pipeline.Analyzer) {
	tool := mcp.NewTool("analyze_log",
		mcp.WithDescription("Run root cause analysis on raw log text. Returns detected errors and remediation solutions as JSON, persisted to the analysis history."),
		mcp.WithString("log",
			mcp.Required(),
			mcp.Description("The raw log text to analyze"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		logText, _ := args["log"].(string)

		resp, err := analyzer.Analyze(ctx, logText)
		if err != nil {
			// The analysis is still valid; only the write failed.
			return mcp.NewToolResultError("analysis not persisted: " + err.Error()), nil
		}
		result, _ := json.MarshalIndent(resp, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	})
}

// registerQueryAnalysesTool adds the query_analyses tool.
func registerQueryAnalysesTool(s *server.MCPServer, repo *storage.Repository) {
	tool := mcp.NewTool("query_analyses",
		mcp.WithDescription("List recent log analyses with their latest feedback, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of records to return (default: 10)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		limit := 10
		if l, ok := args["limit"].(float64); ok && l > 0 {
			limit = int(l)
		}

		records, err := repo.FetchLogs(limit)
		if err != nil {
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		result, _ := json.MarshalIndent(records, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	})
}

// registerGetAnalysisTool adds the get_analysis tool.
func registerGetAnalysisTool(s *server.MCPServer, repo *storage.Repository) {
	tool := mcp.NewTool("get_analysis",
		mcp.WithDescription("Fetch one stored analysis by its log id."),
		mcp.WithNumber("log_id",
			mcp.Required(),
			mcp.Description("The id returned by analyze_log"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		id, ok := args["log_id"].(float64)
		if !ok {
			return mcp.NewToolResultError("log_id is required"), nil
		}

		record, err := repo.FetchLogByID(int64(id))
		if err != nil {
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		if record == nil {
			return mcp.NewToolResultError("no analysis with that id"), nil
		}
		result, _ := json.MarshalIndent(record, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	})
}

// registerSubmitFeedbackTool adds the submit_feedback tool.
func registerSubmitFeedbackTool(s *server.MCPServer, repo *storage.Repository) {
	tool := mcp.NewTool("submit_feedback",
		mcp.WithDescription("Record whether an analysis was helpful (Yes/No) with an optional comment."),
		mcp.WithNumber("log_id",
			mcp.Required(),
			mcp.Description("The id of the analysis being rated"),
		),
		mcp.WithString("choice",
			mcp.Required(),
			mcp.Description("Either \"Yes\" or \"No\""),
		),
		mcp.WithString("comment",
			mcp.Description("Optional free-form comment"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		id, ok := args["log_id"].(float64)
		if !ok {
			return mcp.NewToolResultError("log_id is required"), nil
		}
		choice, _ := args["choice"].(string)
		comment, _ := args["comment"].(string)

		record, err := repo.FetchLogByID(int64(id))
		if err != nil {
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		if record == nil {
			return mcp.NewToolResultError("no analysis with that id"), nil
		}

		fid, err := repo.InsertFeedback(int64(id), choice, comment)
		if err != nil {
			return mcp.NewToolResultError("store feedback failed: " + err.Error()), nil
		}
		result, _ := json.Marshal(map[string]int64{"feedback_id": fid})
		return mcp.NewToolResultText(string(result)), nil
	})
}
