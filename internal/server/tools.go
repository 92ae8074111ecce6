package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// sheetProperties are the arguments shared by the per-sheet tools.
func sheetProperties() map[string]interface{} {
	return map[string]interface{}{
		"file_path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the answer sheet (.jpg, .jpeg, .png or .pdf; first PDF page is used)",
		},
		"total_questions": map[string]interface{}{
			"type":        "integer",
			"description": "Number of questions on the sheet",
			"minimum":     1,
		},
		"number_of_choices": map[string]interface{}{
			"type":        "integer",
			"description": "Choices per question (A, B, C, ...). Default 4",
			"minimum":     1,
			"maximum":     26,
			"default":     4,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	debugProps := sheetProperties()
	debugProps["overlay"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Include a PNG (base64) of the analysed image with bubble boxes: green above the fill threshold, red below, blue column separators. Default false",
		"default":     false,
	}

	return []Tool{
		{
			Name:        "omr_process",
			Description: "Extract the marked answers from a multiple-choice answer sheet. Returns answers keyed by question number, a confidence score in [0, 1] and the number of bubbles detected. Failures are reported in the result with success=false and a code.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": sheetProperties(),
				"required":   []string{"file_path", "total_questions"},
			},
		},
		{
			Name:        "omr_process_batch",
			Description: "Process several answer sheets concurrently. Results are returned in input order, one per sheet.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sheets": map[string]interface{}{
						"type":        "array",
						"description": "Sheets to process",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"file_path":         sheetProperties()["file_path"],
								"total_questions":   sheetProperties()["total_questions"],
								"number_of_choices": sheetProperties()["number_of_choices"],
								"timeout_seconds": map[string]interface{}{
									"type":        "number",
									"description": "Optional time limit for this sheet in seconds",
								},
							},
							"required": []string{"file_path", "total_questions"},
						},
					},
					"concurrency": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum sheets processed at once. Default from server configuration",
					},
				},
				"required": []string{"sheets"},
			},
		},
		{
			Name:        "omr_debug",
			Description: "Run the detection stages on an answer sheet and return diagnostics instead of answers: contour and filter counts, per-bubble geometry and fill ratio, inferred columns and rows, and which bubbles clear the fill threshold.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": debugProps,
				"required":   []string{"file_path", "total_questions"},
			},
		},
		{
			Name:        "omr_sheet_info",
			Description: "Check an answer sheet file and return its dimensions, format, page count, file size and coloured-ink coverage.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"file_path": sheetProperties()["file_path"],
				},
				"required": []string{"file_path"},
			},
		},
		{
			Name:        "omr_config",
			Description: "Return the active detection configuration: thresholds, filter bounds, layout settings and file limits.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
