// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/entran/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the ENTRAN MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.ResultManager) *server.MCPServer {
	s := server.NewMCPServer(
		"ENTRAN Results Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}
	resultsDir := mcp.WithString("results_dir", mcp.Description("Results directory of a pipeline run (defaults to the configured results-dir)."))

	// --- 1. Tool: count_refactorings ---
	s.AddTool(mcp.NewTool("count_refactorings",
		mcp.WithDescription("Count refactorings per commit from the RefactoringMiner report."),
		resultsDir,
		mcp.WithString("commit", mcp.Description("Full commit hash to look up. Lists the top commits when omitted.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of commits returned.")),
	), h.handleCountRefactorings)

	// --- 2. Tool: get_refactoring_types ---
	s.AddTool(mcp.NewTool("get_refactoring_types",
		mcp.WithDescription("Frequency of each refactoring type in the RefactoringMiner report, most frequent first."),
		resultsDir,
		mcp.WithNumber("limit", mcp.Description("Limit the number of types returned.")),
	), h.handleGetRefactoringTypes)

	// --- 3. Tool: get_combined_metrics ---
	s.AddTool(mcp.NewTool("get_combined_metrics",
		mcp.WithDescription("Benchmark score and energy average per benchmarked commit."),
		resultsDir,
		mcp.WithString("year", mcp.Description("Only return commits from this year.")),
	), h.handleGetCombinedMetrics)

	// --- 4. Tool: get_build_status ---
	s.AddTool(mcp.NewTool("get_build_status",
		mcp.WithDescription("Buildability of every commit that met the refactoring threshold."),
		resultsDir,
		mcp.WithString("status", mcp.Description("Only return commits with this status."), mcp.Enum("Success", "Failed")),
	), h.handleGetBuildStatus)

	// --- 5. Tool: get_runs ---
	s.AddTool(mcp.NewTool("get_runs",
		mcp.WithDescription("Pipeline runs recorded in the results store."),
	), h.handleGetRuns)

	return s
}

// StartMCPServer starts the ENTRAN MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.ResultManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
