package analyzer

import "encoding/json"

// JSON-RPC 2.0 message types for the analyzer sidecar protocol.

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Application-specific error codes reported by the analyzer sidecar.
const (
	CodeModelUnavailable = -32000
	CodeImageTooLarge    = -32001
	CodeAnalysisFailed   = -32002
)

// Methods supported by the analyzer sidecar.
const (
	MethodScreenAnalyze   = "screen.analyze"
	MethodTransitionJudge = "transition.judge"
)

// AnalyzeParams holds parameters for "screen.analyze".
type AnalyzeParams struct {
	ImagePNG string `json:"image_png"` // base64-encoded PNG frame
	Model    string `json:"model,omitempty"`
}

// JudgeParams holds parameters for "transition.judge".
type JudgeParams struct {
	BeforePNG   string `json:"before_png,omitempty"`
	AfterPNG    string `json:"after_png,omitempty"`
	Description string `json:"description"`
	Expected    string `json:"expected"`
	Model       string `json:"model,omitempty"`
}

// JudgeResult holds the verdict for "transition.judge".
type JudgeResult struct {
	Equivalent bool    `json:"equivalent"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

// NewRequest creates a request with marshaled params.
func NewRequest(id any, method string, params any) (Request, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return Request{}, err
	}
	return Request{JSONRPC: "2.0", ID: id, Method: method, Params: raw}, nil
}
