package mcp

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/huangsam/entran/core/refactor"
	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/outwriter"
	"github.com/huangsam/entran/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.ResultManager
}

// commitCount is one row of the count_refactorings answer.
type commitCount struct {
	Commit       string `json:"commit"`
	Refactorings int    `json:"refactorings_found"`
}

func (h *toolHandler) layout(request mcp.CallToolRequest) contract.Layout {
	if dir := request.GetString("results_dir", ""); dir != "" {
		return contract.NewLayout(dir)
	}
	return h.baseCfg.Layout
}

func (h *toolHandler) limit(request mcp.CallToolRequest) int {
	if l := request.GetInt("limit", 0); l > 0 {
		return l
	}
	return h.baseCfg.ResultLimit
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCountRefactorings(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := os.Open(h.layout(request).RMinerReport())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading report failed: %v", err)), nil
	}
	defer func() { _ = f.Close() }()

	counts, err := refactor.CountPerCommit(f)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("counting failed: %v", err)), nil
	}

	if commit := request.GetString("commit", ""); commit != "" {
		return jsonResult(commitCount{Commit: commit, Refactorings: counts[commit]})
	}

	rows := make([]commitCount, 0, len(counts))
	for commit, n := range counts {
		rows = append(rows, commitCount{Commit: commit, Refactorings: n})
	}
	slices.SortFunc(rows, func(a, b commitCount) int {
		return cmp.Or(cmp.Compare(b.Refactorings, a.Refactorings), cmp.Compare(a.Commit, b.Commit))
	})
	return jsonResult(rows[:min(len(rows), h.limit(request))])
}

func (h *toolHandler) handleGetRefactoringTypes(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := os.ReadFile(h.layout(request).RMinerReport())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading report failed: %v", err)), nil
	}
	types := refactor.CountTypes(data)
	return jsonResult(types[:min(len(types), h.limit(request))])
}

func (h *toolHandler) handleGetCombinedMetrics(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := outwriter.ReadCombinedCSV(h.layout(request).Combined())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading metrics failed: %v", err)), nil
	}
	if year := request.GetString("year", ""); year != "" {
		records = slices.DeleteFunc(records, func(r schema.CombinedRecord) bool { return r.Year != year })
	}
	return jsonResult(records)
}

func (h *toolHandler) handleGetBuildStatus(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	builds, err := outwriter.ReadBuildStatusCSV(h.layout(request).BuildStatus())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading build status failed: %v", err)), nil
	}
	if status := request.GetString("status", ""); status != "" {
		builds = slices.DeleteFunc(builds, func(b schema.BuildRecord) bool { return string(b.Status) != status })
	}
	return jsonResult(builds)
}

func (h *toolHandler) handleGetRuns(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.mgr == nil || h.mgr.GetResultStore() == nil {
		return mcp.NewToolResultError("results store is not configured"), nil
	}
	runs, err := h.mgr.GetResultStore().GetAllRuns()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing runs failed: %v", err)), nil
	}
	if runs == nil {
		runs = []schema.RunRecord{}
	}
	return jsonResult(runs)
}
