package toolserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/qmd-project/qmd/internal/config"
	"github.com/qmd-project/qmd/internal/llmclient"
	"github.com/qmd-project/qmd/internal/repo"
	"github.com/qmd-project/qmd/internal/search"
)

// Server is qmd's line-delimited tool-server frontend. It holds one
// Engine composition root for the lifetime of the session, per
// spec.md's "the tool server builds one and keeps it for the session."
type Server struct {
	engine      *search.Engine
	content     repo.Content
	documents   repo.Documents
	collections repo.Collections
	provider    llmclient.Provider
	cfg         *config.Config

	reader *bufio.Reader
	writer io.Writer
}

// New constructs a Server from an already-assembled search Engine
// (wired with the FTS, Vectors and Cache repositories by the caller)
// plus the repositories the resource/get/status operations need
// directly.
func New(engine *search.Engine, content repo.Content, documents repo.Documents, collections repo.Collections, provider llmclient.Provider, cfg *config.Config) *Server {
	return &Server{
		engine:      engine,
		content:     content,
		documents:   documents,
		collections: collections,
		provider:    provider,
		cfg:         cfg,
		reader:      bufio.NewReader(os.Stdin),
		writer:      os.Stdout,
	}
}

// Run processes request lines from stdin until EOF or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	log.Info("tool server starting")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				log.Info("tool server received EOF, shutting down")
				return nil
			}
			log.Error("failed to read from stdin", "error", err)
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.sendError(nil, ErrCodeParse, err.Error())
			continue
		}

		s.handleRequest(ctx, req)
	}
}

func (s *Server) handleRequest(ctx context.Context, req Request) {
	log.Debug("received request", "op", req.Op, "id", req.ID)

	var result any
	var err error

	switch req.Op {
	case "search":
		result, err = s.handleSearch(ctx, req.Params)
	case "vsearch":
		result, err = s.handleVSearch(ctx, req.Params)
	case "query":
		result, err = s.handleQuery(ctx, req.Params)
	case "get":
		result, err = s.handleGet(req.Params)
	case "multi_get":
		result, err = s.handleMultiGet(req.Params)
	case "status":
		result, err = s.handleStatus()
	case "resources/list":
		result, err = s.handleResourceList(req.Params)
	case "resources/read":
		result, err = s.handleResourceRead(req.Params)
	default:
		s.sendErrorCode(req.ID, ErrCodeBadRequest, fmt.Sprintf("unknown op %q", req.Op))
		return
	}

	if err != nil {
		s.sendErrorCode(req.ID, ErrCodeInternal, err.Error())
		return
	}

	s.sendResult(req.ID, result)
}

func (s *Server) sendResult(id any, result any) {
	s.send(Response{Version: ProtocolVersion, ID: id, Result: result})
}

func (s *Server) sendError(id any, code, message string) {
	s.sendErrorCode(id, code, message)
}

func (s *Server) sendErrorCode(id any, code, message string) {
	s.send(Response{Version: ProtocolVersion, ID: id, Error: &Error{Code: code, Message: message}})
}

func (s *Server) send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("failed to marshal response", "error", err)
		return
	}
	fmt.Fprintln(s.writer, string(data))
}
