package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

var (
	addEventToolName    = "add_event"
	addEventDescription = "Add a new event to the causal memory system. The system will " +
		"automatically determine causal relationships with previous events using semantic " +
		"similarity and LLM reasoning, creating links that enable narrative chain " +
		"reconstruction. Record an event after every significant action you take so future " +
		"sessions can reconstruct what happened and why."

	queryToolName    = "query"
	queryDescription = "Query the causal memory. Returns the complete causal narrative " +
		"leading to the most relevant event, traced back to its root cause and forward " +
		"through its consequences. Query for relevant context before acting on a task."

	suggestToolName    = "suggest_query_terms"
	suggestDescription = "Suggest likely query keywords or categories for free-form text " +
		"using lightweight semantic mapping. Useful when a broad query returns no context."
)

func buildAddEventTool() mcp.Tool {
	return mcp.NewTool(
		addEventToolName,
		mcp.WithDescription(addEventDescription),
		mcp.WithString("effect",
			mcp.Required(),
			mcp.Description("Description of the event that occurred (the effect). Should be a clear, concise statement from the agent's perspective. The system will analyze this against recent events to detect causal relationships."),
		),
	)
}

func buildQueryTool() mcp.Tool {
	return mcp.NewTool(
		queryToolName,
		mcp.WithDescription(queryDescription),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The query to search for in memory. Can be a question, topic, or description of an event. The system will return the complete causal narrative leading to the most relevant event."),
		),
	)
}

func buildSuggestTool() mcp.Tool {
	return mcp.NewTool(
		suggestToolName,
		mcp.WithDescription(suggestDescription),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Free-form text to analyze for suggested query terms/categories."),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Number of suggestions to return."),
		),
	)
}

// handleAddEvent inserts an event and returns a confirmation string.
func (s *Server) handleAddEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	effect, _ := req.GetArguments()["effect"].(string)
	if effect == "" {
		return mcp.NewToolResultError("'effect' parameter is required"), nil
	}

	id, err := s.config.Core.AddEvent(ctx, effect)
	if err != nil {
		s.config.Logger.Warn("MCP add_event failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("Error adding event: %v", err)), nil
	}

	s.config.Logger.Info("MCP event added", zap.Int64("event_id", id))

	return mcp.NewToolResultText(fmt.Sprintf("Successfully added event %d to memory: %s", id, effect)), nil
}

// handleQuery returns the narrative for a query.
func (s *Server) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, _ := req.GetArguments()["query"].(string)
	if query == "" {
		return mcp.NewToolResultError("'query' parameter is required"), nil
	}

	if s.config.Preprocessor != nil {
		processed := s.config.Preprocessor.ProcessQuery(query)
		if processed != query {
			s.config.Logger.Debug("query translated",
				zap.String("input", query),
				zap.String("output", processed),
			)
			query = processed
		}
	}

	narrative, err := s.config.Core.GetContext(ctx, query)
	if err != nil {
		s.config.Logger.Warn("MCP query failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("Error executing query: %v", err)), nil
	}

	return mcp.NewToolResultText(narrative), nil
}

// handleSuggest ranks vocabulary hints for free-form text.
func (s *Server) handleSuggest(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	text, _ := args["text"].(string)
	if text == "" {
		return mcp.NewToolResultError("'text' parameter is required"), nil
	}

	topK := 0
	if raw, ok := args["top_k"].(float64); ok {
		topK = int(raw)
	}

	suggestions := s.config.Preprocessor.Suggest(text, topK)

	payload, err := json.Marshal(suggestions)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize suggestions: %v", err)), nil
	}

	return mcp.NewToolResultText(string(payload)), nil
}
