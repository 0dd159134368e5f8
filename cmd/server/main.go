package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mfenderov/contacts/internal/config"
	"github.com/mfenderov/contacts/internal/mcp"
)

var (
	Version = "dev"
	logger  = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "contacts-mcp",
	})
)

func main() {
	cfg, err := config.Load(config.DefaultConfigFile)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	file, err := config.ExpandPath(cfg.File)
	if err != nil {
		logger.Error("failed to resolve contacts file", "error", err)
		os.Exit(1)
	}

	server := NewServer(mcp.NewHandler(file), os.Stdin, os.Stdout)
	logger.Info("Serving contacts", "file", file)

	if err := server.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// Server answers MCP requests read line by line from in. Tool calls are
// refused until the client has sent initialize.
type Server struct {
	handler     *mcp.Handler
	in          io.Reader
	out         io.Writer
	initialized bool
}

// NewServer creates a server reading requests from in and writing responses to out.
func NewServer(handler *mcp.Handler, in io.Reader, out io.Writer) *Server {
	return &Server{handler: handler, in: in, out: out}
}

// Run serves requests until the input is closed.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), maxRequestSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req mcp.Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.reply(nil, nil, &mcp.Error{Code: mcp.ErrCodeParse, Message: "Parse error", Data: err.Error()})
			continue
		}

		result, rpcErr := s.dispatch(&req)
		if req.ID == nil && strings.HasPrefix(req.Method, "notifications/") {
			continue
		}
		s.reply(req.ID, result, rpcErr)
	}

	return scanner.Err()
}

const maxRequestSize = 10 * 1024 * 1024

func (s *Server) dispatch(req *mcp.Request) (any, *mcp.Error) {
	switch req.Method {
	case "initialize":
		s.initialized = true
		return mcp.InitializeResult{
			ProtocolVersion: mcp.ProtocolVersion,
			Capabilities:    mcp.ServerCapabilities{Tools: &mcp.ToolsCapability{}},
			ServerInfo:      mcp.ServerInfo{Name: "contacts", Version: Version},
		}, nil
	case "notifications/initialized":
		return nil, nil
	case "tools/list", "tools/call":
		if !s.initialized {
			return nil, &mcp.Error{Code: mcp.ErrCodeInvalidRequest, Message: "Server not initialized"}
		}
		if req.Method == "tools/list" {
			return mcp.ToolsListResult{Tools: s.handler.Tools()}, nil
		}
		return s.callTool(req.Params)
	default:
		return nil, &mcp.Error{Code: mcp.ErrCodeMethodNotFound, Message: "Method not found"}
	}
}

// callTool reports tool failures inside the result so the client can show them.
func (s *Server) callTool(raw json.RawMessage) (any, *mcp.Error) {
	var params mcp.ToolCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &mcp.Error{Code: mcp.ErrCodeInvalidParams, Message: "Invalid params", Data: err.Error()}
	}

	result, err := s.handler.CallTool(params.Name, params.Arguments)
	if err != nil {
		logger.Warn("tool call failed", "tool", params.Name, "error", err)
		return &mcp.ToolCallResult{
			Content: []mcp.ContentBlock{{Type: "text", Text: err.Error()}},
			IsError: true,
		}, nil
	}
	return result, nil
}

func (s *Server) reply(id, result any, rpcErr *mcp.Error) {
	data, err := json.Marshal(mcp.Response{JSONRPC: "2.0", ID: id, Result: result, Error: rpcErr})
	if err != nil {
		logger.Error("failed to marshal response", "error", err)
		data, _ = json.Marshal(mcp.Response{
			JSONRPC: "2.0",
			ID:      id,
			Error:   &mcp.Error{Code: mcp.ErrCodeInternal, Message: "Internal error"},
		})
	}
	fmt.Fprintln(s.out, string(data))
}
