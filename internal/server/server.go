// Package server exposes the tool dispatcher over the MCP stdio transport.
package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/comigor/homey-mcp/internal/config"
	"github.com/comigor/homey-mcp/internal/logger"
)

// Dispatcher is what the transport needs from the tool layer.
type Dispatcher interface {
	ListTools() []mcp.Tool
	CallTool(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult
}

// Server routes tools/list and tools/call to a Dispatcher and everything else
// (initialize, ping, notifications) to an mcp-go MCPServer.
type Server struct {
	mcp        *mcpserver.MCPServer
	dispatcher Dispatcher
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// New builds the server. Tool capabilities are advertised on initialize; the
// tool set itself always comes from d.
func New(cfg config.ServerConfig, d Dispatcher) *Server {
	hooks := &mcpserver.Hooks{}
	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		logger.L.Error("[MCP Error]", "method", method, "id", id, "error", err)
	})

	return &Server{
		mcp: mcpserver.NewMCPServer(
			cfg.Name,
			cfg.Version,
			mcpserver.WithToolCapabilities(true),
			mcpserver.WithHooks(hooks),
		),
		dispatcher: d,
	}
}

// HandleMessage answers one JSON-RPC message. It returns nil for notifications.
func (s *Server) HandleMessage(ctx context.Context, raw json.RawMessage) json.RawMessage {
	var req rpcRequest
	if err := json.Unmarshal(raw, &req); err != nil || len(req.ID) == 0 {
		return s.delegate(ctx, raw)
	}

	switch mcp.MCPMethod(req.Method) {
	case mcp.MethodToolsList:
		return encode(rpcResponse{JSONRPC: mcp.JSONRPC_VERSION, ID: req.ID, Result: mcp.ListToolsResult{Tools: s.dispatcher.ListTools()}})
	case mcp.MethodToolsCall:
		var params callParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return encode(rpcResponse{JSONRPC: mcp.JSONRPC_VERSION, ID: req.ID,
				Error: &rpcError{Code: mcp.INVALID_PARAMS, Message: "invalid tools/call params: " + err.Error()}})
		}
		// Non-object arguments reach the dispatcher as nil and fail its argument checks.
		var args map[string]any
		_ = json.Unmarshal(params.Arguments, &args)
		result := s.dispatcher.CallTool(ctx, params.Name, args)
		return encode(rpcResponse{JSONRPC: mcp.JSONRPC_VERSION, ID: req.ID, Result: result})
	default:
		return s.delegate(ctx, raw)
	}
}

func (s *Server) delegate(ctx context.Context, raw json.RawMessage) json.RawMessage {
	resp := s.mcp.HandleMessage(ctx, raw)
	if resp == nil {
		return nil
	}
	return encode(resp)
}

func encode(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		logger.L.Error("failed to encode response", "error", err)
		b, _ = json.Marshal(rpcResponse{JSONRPC: mcp.JSONRPC_VERSION, ID: json.RawMessage("null"),
			Error: &rpcError{Code: mcp.INTERNAL_ERROR, Message: err.Error()}})
	}
	return b
}

// Serve speaks newline-delimited JSON-RPC over in/out until ctx is cancelled
// or in reaches EOF. Cancellation is a clean shutdown and returns nil.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadBytes('\n')
			if len(line) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	logger.L.Info("Homey MCP server running on stdio")
	for {
		select {
		case <-ctx.Done():
			logger.L.Info("Homey MCP server stopped")
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				logger.L.Info("Homey MCP server stopped", "reason", "stdin closed")
				return nil
			}
			return err
		case line := <-lines:
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			if resp := s.HandleMessage(ctx, line); resp != nil {
				if _, err := out.Write(append(resp, '\n')); err != nil {
					return err
				}
			}
		}
	}
}

