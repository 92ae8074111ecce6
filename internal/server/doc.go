// Package server implements the MCP (Model Context Protocol) server for the
// answer-sheet tools.
//
// This package provides a JSON-RPC 2.0 server that exposes OMR extraction
// through the MCP protocol, so an MCP client can read the marked answers of
// a scanned or photographed multiple-choice sheet.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - omr_process: Extract answers, confidence and bubble count from one sheet
//   - omr_process_batch: Process several sheets concurrently
//   - omr_debug: Per-stage diagnostics with an optional annotated overlay
//   - omr_sheet_info: File checks plus dimensions, format and page count
//   - omr_config: The active detection configuration
//
// # Error Handling
//
// A sheet that cannot be processed is still a successful tool call: the
// result carries success=false, a code and a message. JSON-RPC errors are
// reserved for protocol problems:
//   - -32700: request line is not valid JSON
//   - -32601: unknown method
//   - -32602: malformed tools/call params
//   - -32000: tool execution failure (unknown tool, bad or missing arguments)
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	proc, err := omr.New(omr.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.New(proc).Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
