package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/omr-tools-mcp/internal/omr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "omr_process", "omr_debug").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// A sheet that fails processing is not a tool error: its Result carries
// success=false and is returned as content.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, codeToolFailure, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Calls the processor
//  4. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "omr_process":
		return s.handleProcess(args)
	case "omr_process_batch":
		return s.handleProcessBatch(args)
	case "omr_debug":
		return s.handleDebug(args)
	case "omr_sheet_info":
		return s.handleSheetInfo(args)
	case "omr_config":
		return s.proc.Config(), nil
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments, treating missing arguments as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return json.Unmarshal(args, v)
}

// === Sheet Handlers ===

type sheetArgs struct {
	FilePath        string `json:"file_path"`
	TotalQuestions  int    `json:"total_questions"`
	NumberOfChoices int    `json:"number_of_choices"`
}

// choices returns the requested choice count or the configured default.
func (s *Server) choices(n int) int {
	if n == 0 {
		return s.proc.Config().DefaultChoices
	}
	return n
}

func (a sheetArgs) validate() error {
	if a.FilePath == "" {
		return errors.New("file_path is required")
	}
	return nil
}

func (s *Server) handleProcess(args json.RawMessage) (interface{}, error) {
	var a sheetArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return s.proc.Process(a.FilePath, a.TotalQuestions, s.choices(a.NumberOfChoices)), nil
}

type batchSheetArgs struct {
	sheetArgs
	TimeoutSeconds float64 `json:"timeout_seconds"`
}

type batchArgs struct {
	Sheets      []batchSheetArgs `json:"sheets"`
	Concurrency int              `json:"concurrency"`
}

// BatchResult is the omr_process_batch response.
type BatchResult struct {
	Results   []omr.Result `json:"results"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

func (s *Server) handleProcessBatch(args json.RawMessage) (interface{}, error) {
	var a batchArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Sheets) == 0 {
		return nil, errors.New("sheets must not be empty")
	}

	items := make([]omr.BatchItem, len(a.Sheets))
	for i, sheet := range a.Sheets {
		if err := sheet.validate(); err != nil {
			return nil, fmt.Errorf("sheet %d: %w", i, err)
		}
		items[i] = omr.BatchItem{
			Path:           sheet.FilePath,
			TotalQuestions: sheet.TotalQuestions,
			Choices:        sheet.NumberOfChoices,
			Timeout:        time.Duration(sheet.TimeoutSeconds * float64(time.Second)),
		}
	}

	results := s.proc.ProcessBatch(context.Background(), items, a.Concurrency)
	out := &BatchResult{Results: results}
	for _, r := range results {
		if r.Success {
			out.Succeeded++
		} else {
			out.Failed++
		}
	}
	return out, nil
}

type debugArgs struct {
	sheetArgs
	Overlay bool `json:"overlay"`
}

func (s *Server) handleDebug(args json.RawMessage) (interface{}, error) {
	var a debugArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return s.proc.Debug(a.FilePath, a.TotalQuestions, s.choices(a.NumberOfChoices), a.Overlay), nil
}

func (s *Server) handleSheetInfo(args json.RawMessage) (interface{}, error) {
	var a sheetArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return s.proc.SheetInfo(a.FilePath)
}
