package server

import (
	"context"
	"encoding/json"

	"github.com/BlinkZer0/Phys-MCP-sub002/internal/plotstyle"
	"github.com/BlinkZer0/Phys-MCP-sub002/internal/protocol"
)

// handleInitialize answers the capability handshake.
func (s *Server) handleInitialize(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    serverName,
			"version": serverVersion,
		},
	}, nil
}

// handleToolsList enumerates the invokable operations.
func (s *Server) handleToolsList(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return map[string]interface{}{
		"tools": GetToolDefinitions(),
	}, nil
}

// handlePing is a health check.
func (s *Server) handlePing(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return map[string]interface{}{}, nil
}

// ToolCallParams represents the parameters for a tools/call request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "cas_evaluate", "plot_function_2d").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall executes the named tool and wraps its result in MCP's
// content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ToolCallParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, protocol.Errorf(protocol.CodeInvalidParams, "Invalid params: %v", err)
	}

	result, err := s.executeTool(ctx, p.Name, p.Arguments)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": indentJSON(result),
			},
		},
	}, nil
}

// executeTool dispatches tool execution.
//
// The few tools that need no symbolic or numeric machinery run locally;
// everything else in the catalog forwards to the worker method of the
// same name, with plot results persisted as artifacts on the way back.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	switch name {
	case "plot_style_palette":
		return s.handlePlotStylePalette(args)
	case "artifact_thumbnail":
		return s.handleArtifactThumbnail(args)
	}

	if !ToolExists(name) {
		return nil, protocol.Errorf(protocol.CodeToolFailed, "unknown tool: %s", name)
	}
	if s.worker == nil {
		return nil, protocol.Errorf(protocol.CodeWorkerUnavailable, "no worker configured for tool %s", name)
	}

	result, err := s.worker.Call(ctx, name, args)
	if err != nil {
		return nil, err
	}

	if s.store != nil && producesArtifacts(name) {
		annotated, _, err := s.store.Annotate(name, result)
		if err != nil {
			// The computation itself succeeded; losing the disk copy is
			// not worth failing the call over.
			s.log.Warn().Err(err).Str("tool", name).Msg("server: artifact persistence failed")
			return result, nil
		}
		return annotated, nil
	}
	return result, nil
}

// === Local tool handlers ===

type plotStylePaletteArgs struct {
	Count int `json:"count"`
}

func (s *Server) handlePlotStylePalette(args json.RawMessage) (json.RawMessage, error) {
	a := plotStylePaletteArgs{Count: 1}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, protocol.Errorf(protocol.CodeInvalidParams, "Invalid params: %v", err)
		}
	}
	colors, err := plotstyle.SeriesPalette(a.Count)
	if err != nil {
		return nil, protocol.Errorf(protocol.CodeInvalidParams, "%v", err)
	}
	return json.Marshal(map[string]interface{}{
		"count":  a.Count,
		"colors": colors,
	})
}

type artifactThumbnailArgs struct {
	Path  string `json:"path"`
	Width int    `json:"width"`
}

func (s *Server) handleArtifactThumbnail(args json.RawMessage) (json.RawMessage, error) {
	var a artifactThumbnailArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, protocol.Errorf(protocol.CodeInvalidParams, "Invalid params: %v", err)
	}
	if a.Path == "" {
		return nil, protocol.Errorf(protocol.CodeInvalidParams, "path is required")
	}
	if s.store == nil {
		return nil, protocol.Errorf(protocol.CodeToolFailed, "artifact store not configured")
	}
	thumb, err := s.store.Thumbnail(a.Path, a.Width)
	if err != nil {
		return nil, protocol.Errorf(protocol.CodeToolFailed, "%v", err)
	}
	return json.Marshal(map[string]string{
		"thumbnail_png": thumb,
	})
}

// indentJSON pretty-prints raw JSON for the content envelope; on failure
// the raw text is passed through as-is.
func indentJSON(raw json.RawMessage) string {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(b)
}
