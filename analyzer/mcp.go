package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/urlmin/safeurl"
)

// RegisterMCP registers the analyzer tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerAnalyze(srv)
	s.registerAnalyzeBatch(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func (s *Service) registerAnalyze(srv *mcp.Server) {
	type req struct {
		URL       string `json:"url"`
		TimeoutMS int64  `json:"timeout_ms"`
	}

	tool := &mcp.Tool{
		Name:        "urlmin_analyze",
		Description: "Find the minimal query-parameter subset of a URL that renders equivalent content",
		InputSchema: inputSchema(map[string]any{
			"url":        map[string]any{"type": "string", "description": "URL to analyze"},
			"timeout_ms": map[string]any{"type": "integer", "description": "Per-navigation timeout in milliseconds"},
		}, []string{"url"}),
	}

	srv.AddTool(tool, func(ctx context.Context, r *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("invalid arguments: %w", err))
			return &res, nil
		}
		if err := safeurl.Validate(p.URL); err != nil {
			return toolResult(s.failed(p.URL, nil, err.Error()))
		}
		result := s.FindMinimalURL(ctx, p.URL,
			WithNavigationTimeout(time.Duration(p.TimeoutMS)*time.Millisecond))
		return toolResult(result)
	})
}

func (s *Service) registerAnalyzeBatch(srv *mcp.Server) {
	type req struct {
		URLs      []string `json:"urls"`
		TimeoutMS int64    `json:"timeout_ms"`
	}

	tool := &mcp.Tool{
		Name:        "urlmin_analyze_batch",
		Description: "Analyze several URLs in parallel; results preserve input order",
		InputSchema: inputSchema(map[string]any{
			"urls":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "URLs to analyze"},
			"timeout_ms": map[string]any{"type": "integer", "description": "Per-navigation timeout in milliseconds"},
		}, []string{"urls"}),
	}

	srv.AddTool(tool, func(ctx context.Context, r *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("invalid arguments: %w", err))
			return &res, nil
		}
		results := make([]*Result, len(p.URLs))
		accepted := make([]string, 0, len(p.URLs))
		positions := make([]int, 0, len(p.URLs))
		for i, u := range p.URLs {
			if err := safeurl.Validate(u); err != nil {
				results[i] = s.failed(u, nil, err.Error())
				continue
			}
			accepted = append(accepted, u)
			positions = append(positions, i)
		}
		for i, res := range s.AnalyzeBatch(ctx, accepted,
			WithNavigationTimeout(time.Duration(p.TimeoutMS)*time.Millisecond)) {
			results[positions[i]] = res
		}
		return toolResult(results)
	})
}

func toolResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		var res mcp.CallToolResult
		res.SetError(fmt.Errorf("marshal: %w", err))
		return &res, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}
