package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog/log"

	"nomoscl/pkg/cl"
	"nomoscl/pkg/ledger"
)

const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
	codeBundleRejected = -32000
)

// Server exposes a Ledger over JSON-RPC.
type Server struct {
	ledger *ledger.Ledger
	addr   string
	server *http.Server
	mu     sync.Mutex
}

// JSONRPCRequest represents a JSON-RPC request
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	Result  any           `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
	ID      any           `json:"id"`
}

type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// PathNode is the JSON form of one step of an inclusion path.
type PathNode struct {
	Side    string `json:"side"`
	Sibling string `json:"sibling"`
}

func NewServer(l *ledger.Ledger, addr string) *Server {
	return &Server{ledger: l, addr: addr}
}

// Handler returns the JSON-RPC handler without starting a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRPC)
	return mux
}

// Start listens on the configured address in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	go func() {
		log.Info().Str("addr", s.addr).Msg("Starting RPC server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("RPC server error")
		}
	}()

	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		log.Info().Msg("Stopping RPC server")
		return s.server.Close()
	}
	return nil
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &req, codeParseError, "Parse error")
		return
	}

	switch req.Method {
	case "cl_getRoot":
		s.handleGetRoot(w, &req)
	case "cl_isSpent":
		s.handleIsSpent(w, &req)
	case "cl_getPath":
		s.handleGetPath(w, &req)
	case "cl_submitBundle":
		s.handleSubmitBundle(w, &req)
	default:
		writeError(w, &req, codeMethodNotFound, "Method not found")
	}
}

// handleGetRoot returns the current accumulator root and ledger height.
func (s *Server) handleGetRoot(w http.ResponseWriter, req *JSONRPCRequest) {
	root := s.ledger.Commitments().CurrentRoot()
	writeResult(w, req, map[string]any{
		"root":   hexutil.Encode(root[:]),
		"height": s.ledger.Height(),
		"notes":  s.ledger.Commitments().Len(),
	})
}

func (s *Server) handleIsSpent(w http.ResponseWriter, req *JSONRPCRequest) {
	raw, ok := hashParam(w, req)
	if !ok {
		return
	}
	writeResult(w, req, map[string]any{
		"spent": s.ledger.Nullifiers().Contains(cl.Nullifier(raw)),
	})
}

// handleGetPath returns the inclusion path of a note commitment under the
// current root.
func (s *Server) handleGetPath(w http.ResponseWriter, req *JSONRPCRequest) {
	raw, ok := hashParam(w, req)
	if !ok {
		return
	}

	commitments := s.ledger.Commitments()
	path, found := commitments.PathFor(cl.NoteCommitment(raw))
	if !found {
		writeError(w, req, codeInvalidParams, "Unknown note commitment")
		return
	}

	nodes := make([]PathNode, len(path))
	for i, n := range path {
		nodes[i] = PathNode{Side: n.Side.String(), Sibling: hexutil.Encode(n.Sibling[:])}
	}
	root := commitments.CurrentRoot()
	writeResult(w, req, map[string]any{
		"root": hexutil.Encode(root[:]),
		"path": nodes,
	})
}

// handleSubmitBundle decodes an RLP submission and applies it to the ledger.
func (s *Server) handleSubmitBundle(w http.ResponseWriter, req *JSONRPCRequest) {
	var params []string
	if err := json.Unmarshal(req.Params, &params); err != nil || len(params) < 1 {
		writeError(w, req, codeInvalidParams, "Invalid params")
		return
	}
	data, err := hexutil.Decode(params[0])
	if err != nil {
		writeError(w, req, codeInvalidParams, fmt.Sprintf("Invalid submission hex: %v", err))
		return
	}

	var sub ledger.Submission
	if err := sub.UnmarshalBinary(data); err != nil {
		writeError(w, req, codeInvalidParams, fmt.Sprintf("Invalid submission: %v", err))
		return
	}
	if err := s.ledger.ApplyBundle(&sub); err != nil {
		writeError(w, req, codeBundleRejected, fmt.Sprintf("Bundle rejected: %v", err))
		return
	}

	root := s.ledger.Commitments().CurrentRoot()
	writeResult(w, req, map[string]any{
		"height": s.ledger.Height(),
		"root":   hexutil.Encode(root[:]),
	})
}

// hashParam parses the first parameter as a 0x-prefixed 32-byte value.
func hashParam(w http.ResponseWriter, req *JSONRPCRequest) ([32]byte, bool) {
	var out [32]byte
	var params []string
	if err := json.Unmarshal(req.Params, &params); err != nil || len(params) < 1 {
		writeError(w, req, codeInvalidParams, "Invalid params")
		return out, false
	}
	raw, err := hexutil.Decode(params[0])
	if err != nil || len(raw) != len(out) {
		writeError(w, req, codeInvalidParams, "Expected a 0x-prefixed 32-byte hex value")
		return out, false
	}
	copy(out[:], raw)
	return out, true
}

func writeResult(w http.ResponseWriter, req *JSONRPCRequest, result any) {
	writeResponse(w, JSONRPCResponse{JSONRPC: "2.0", Result: result, ID: req.ID})
}

func writeError(w http.ResponseWriter, req *JSONRPCRequest, code int, message string) {
	writeResponse(w, JSONRPCResponse{
		JSONRPC: "2.0",
		Error:   &JSONRPCError{Code: code, Message: message},
		ID:      req.ID,
	})
}

func writeResponse(w http.ResponseWriter, response JSONRPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
