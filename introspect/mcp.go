package introspect

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tailored-agentic-units/flowtree/debugger"
	"github.com/tailored-agentic-units/flowtree/workflow"
)

// RegisterTools registers the five read-only introspection queries as MCP
// tools on mcpServer: inspect_hierarchy, read_ancestor_outputs,
// inspect_cache, read_event_history, inspect_state_snapshot. Handlers are
// thin adapters — parse the call's arguments, invoke the corresponding pure
// query function in queries.go, marshal the result as the tool's text content. The
// query functions remain fully usable without MCP; this is strictly an
// optional adapter layer.
func RegisterTools(mcpServer *server.MCPServer, idx *debugger.Debugger, cache *CacheIndex) {
	mcpServer.AddTool(mcp.Tool{
		Name:        "inspect_hierarchy",
		Description: "Return a node's position in the workflow tree: current record, parent, ancestor chain, and siblings.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"node_id": map[string]interface{}{
					"type":        "string",
					"description": "Workflow id to inspect",
				},
				"depth": map[string]interface{}{
					"type":        "string",
					"description": "One of current_only, parent_only, ancestors_only, full_tree",
					"enum":        []string{"current_only", "parent_only", "ancestors_only", "full_tree"},
				},
				"max_ancestry_depth": map[string]interface{}{
					"type":        "integer",
					"description": "Cap on ancestors walked (0 means unlimited)",
				},
			},
			Required: []string{"node_id"},
		},
	}, handleInspectHierarchy(idx))

	mcpServer.AddTool(mcp.Tool{
		Name:        "read_ancestor_outputs",
		Description: "Return an ancestor chain's node ids, names, and latest state snapshots, redacted fields preserved.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"ancestor_id": map[string]interface{}{
					"type":        "string",
					"description": "Workflow id to walk ancestors from",
				},
				"max_depth": map[string]interface{}{
					"type":        "integer",
					"description": "Cap on ancestors returned (0 means unlimited)",
				},
			},
			Required: []string{"ancestor_id"},
		},
	}, handleReadAncestorOutputs(idx))

	mcpServer.AddTool(mcp.Tool{
		Name:        "inspect_cache",
		Description: "Return cache entries registered against a node.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"node_id": map[string]interface{}{
					"type":        "string",
					"description": "Workflow id to inspect",
				},
			},
			Required: []string{"node_id"},
		},
	}, handleInspectCache(idx, cache))

	mcpServer.AddTool(mcp.Tool{
		Name:        "read_event_history",
		Description: "Return a filtered slice of lifecycle events recorded on a node, capped at 1000 results.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"workflow_id": map[string]interface{}{
					"type":        "string",
					"description": "Workflow id to read events from",
				},
				"event_types": map[string]interface{}{
					"type":        "array",
					"description": "Optional event type filter",
					"items":       map[string]interface{}{"type": "string"},
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum events returned (default and cap: 1000)",
				},
			},
			Required: []string{"workflow_id"},
		},
	}, handleReadEventHistory(idx))

	mcpServer.AddTool(mcp.Tool{
		Name:        "inspect_state_snapshot",
		Description: "Return the latest observed-state record for a node.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"workflow_id": map[string]interface{}{
					"type":        "string",
					"description": "Workflow id to read the snapshot from",
				},
			},
			Required: []string{"workflow_id"},
		},
	}, handleInspectStateSnapshot(idx))
}

func handleInspectHierarchy(idx *debugger.Debugger) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		nodeID, err := req.RequireString("node_id")
		if err != nil {
			return errorResponse("missing or invalid 'node_id' argument"), nil
		}
		depth := DepthMode(req.GetString("depth", string(DepthCurrentOnly)))
		maxDepth := intArg(req, "max_ancestry_depth", 0)

		result, err := InspectHierarchy(idx, nodeID, depth, maxDepth)
		if err != nil {
			return errorResponse(err.Error()), nil
		}
		return jsonResponse(result)
	}
}

func handleReadAncestorOutputs(idx *debugger.Debugger) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ancestorID, err := req.RequireString("ancestor_id")
		if err != nil {
			return errorResponse("missing or invalid 'ancestor_id' argument"), nil
		}
		maxDepth := intArg(req, "max_depth", 0)

		result, err := ReadAncestorOutputs(idx, ancestorID, maxDepth)
		if err != nil {
			return errorResponse(err.Error()), nil
		}
		return jsonResponse(result)
	}
}

func handleInspectCache(idx *debugger.Debugger, cache *CacheIndex) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		nodeID, err := req.RequireString("node_id")
		if err != nil {
			return errorResponse("missing or invalid 'node_id' argument"), nil
		}

		result, err := InspectCache(idx, cache, nodeID)
		if err != nil {
			return errorResponse(err.Error()), nil
		}
		return jsonResponse(result)
	}
}

func handleReadEventHistory(idx *debugger.Debugger) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		workflowID, err := req.RequireString("workflow_id")
		if err != nil {
			return errorResponse("missing or invalid 'workflow_id' argument"), nil
		}
		limit := intArg(req, "limit", DefaultMaxResults)

		var types []workflow.EventType
		for _, t := range stringSliceArg(req, "event_types") {
			types = append(types, workflow.EventType(t))
		}

		result, err := ReadEventHistory(idx, workflowID, types, limit)
		if err != nil {
			return errorResponse(err.Error()), nil
		}
		return jsonResponse(result)
	}
}

func handleInspectStateSnapshot(idx *debugger.Debugger) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		workflowID, err := req.RequireString("workflow_id")
		if err != nil {
			return errorResponse("missing or invalid 'workflow_id' argument"), nil
		}

		result, err := InspectStateSnapshot(idx, workflowID)
		if err != nil {
			return errorResponse(err.Error()), nil
		}
		return jsonResponse(result)
	}
}

// intArg reads a numeric argument out of the request's raw arguments map.
// mcp-go decodes JSON numbers as float64, so GetArguments is consulted
// directly with a type assertion rather than relying on a typed accessor.
func intArg(req mcp.CallToolRequest, key string, fallback int) int {
	args := req.GetArguments()
	if args == nil {
		return fallback
	}
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return fallback
}

func stringSliceArg(req mcp.CallToolRequest, key string) []string {
	args := req.GetArguments()
	if args == nil {
		return nil
	}
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func errorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

func jsonResponse(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResponse("failed to marshal result"), nil
	}
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(string(data))}}, nil
}
