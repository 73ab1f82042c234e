/*
Package rpc exposes the dashboard over a line-delimited JSON protocol on stdio.

Each input line is one request and produces exactly one output line:

	{"id": 1, "method": "recommendations", "params": {"user": "ai730048", "min_score": 0.5}}
	{"jsonrpc": "2.0", "id": 1, "result": {...}}

Methods: users, resolve, recommendations, vote, set_vote, explain, feedback,
export. Requests are handled one at a time in arrival order.
*/
package rpc

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/khanglvm/reco-hub/internal/dashboard"
	"github.com/khanglvm/reco-hub/internal/ledger"
	"github.com/khanglvm/reco-hub/internal/logging"
)

// Error codes.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeDomainError    = -32000
)

// maxLineSize bounds one request line.
const maxLineSize = 4 << 20

// Request is an incoming request.
type Request struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is an outgoing response. Exactly one of Result and Error is set.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error is a protocol error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type handler func(s *Server, params json.RawMessage) (interface{}, error)

// Server answers requests against a dashboard service.
type Server struct {
	svc      *dashboard.Service
	validate *validator.Validate
	handlers map[string]handler

	// now is stubbed in tests
	now func() time.Time
}

// NewServer creates a server for svc.
func NewServer(svc *dashboard.Service) *Server {
	return &Server{
		svc:      svc,
		validate: validator.New(),
		handlers: map[string]handler{
			"users":           (*Server).handleUsers,
			"resolve":         (*Server).handleResolve,
			"recommendations": (*Server).handleRecommendations,
			"vote":            (*Server).handleVote,
			"set_vote":        (*Server).handleSetVote,
			"explain":         (*Server).handleExplain,
			"feedback":        (*Server).handleFeedback,
			"export":          (*Server).handleExport,
		},
		now: time.Now,
	}
}

// Run serves requests from in until EOF or ctx is cancelled.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	w := bufio.NewWriter(out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp := s.Handle(line)
		if err := writeResponse(w, resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read requests: %w", err)
	}
	return nil
}

// Handle processes one raw request line.
func (s *Server) Handle(data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		logging.Warn().Err(err).Msg("malformed request")
		return errorResponse(nil, &Error{Code: CodeParseError, Message: "invalid request: " + err.Error()})
	}

	log := logging.With().
		Str("request_id", uuid.NewString()).
		Str("method", req.Method).
		Logger()
	start := time.Now()

	h, ok := s.handlers[req.Method]
	if !ok {
		log.Warn().Msg("method not found")
		return errorResponse(req.ID, &Error{Code: CodeMethodNotFound, Message: "Method not found: " + req.Method})
	}

	result, err := h(s, req.Params)
	if err != nil {
		rpcErr := toError(err)
		logRequest(&log, start, rpcErr)
		return errorResponse(req.ID, rpcErr)
	}

	logRequest(&log, start, nil)
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func logRequest(log *zerolog.Logger, start time.Time, rpcErr *Error) {
	ev := log.Debug()
	if rpcErr != nil {
		ev = log.Warn().Int("code", rpcErr.Code).Str("error", rpcErr.Message)
	}
	ev.Dur("elapsed", time.Since(start)).Msg("request handled")
}

// decodeParams unmarshals and validates params into dst.
func (s *Server) decodeParams(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &Error{Code: CodeInvalidParams, Message: "invalid params: " + err.Error()}
	}
	if err := s.validate.Struct(dst); err != nil {
		return &Error{Code: CodeInvalidParams, Message: "invalid params: " + err.Error()}
	}
	return nil
}

func toError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	if errors.Is(err, ledger.ErrInvalidVote) {
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	return &Error{Code: CodeDomainError, Message: err.Error()}
}

func errorResponse(id interface{}, e *Error) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Error: e}
}

func writeResponse(w *bufio.Writer, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		data, _ = json.Marshal(errorResponse(resp.ID, &Error{Code: CodeDomainError, Message: "failed to encode result"}))
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return w.Flush()
}
