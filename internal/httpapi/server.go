// Package httpapi exposes the interview orchestrator over a small JSON HTTP
// surface.
package httpapi

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/talvox/talvox/internal/interview"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"

	readTimeout  = 30 * time.Second
	writeTimeout = 60 * time.Second

	// Chunked uploads can carry a whole recorded answer.
	maxRequestBodySize = 64 << 20
)

type Server struct {
	orchestrator *interview.Orchestrator
	chunks       *chunkAssembler
	logger       *zap.Logger

	srv *fasthttp.Server
}

func New(orchestrator *interview.Orchestrator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		orchestrator: orchestrator,
		chunks:       newChunkAssembler(),
		logger:       logger,
	}

	s.srv = &fasthttp.Server{
		Handler:            s.handle,
		Name:               "talvox",
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		MaxRequestBodySize: maxRequestBodySize,
	}

	return s
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("http api listening", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic",
				zap.String("path", path),
				zap.Any("panic", r),
			)
			s.writeError(ctx, fasthttp.StatusInternalServerError, "internal error")
		}
	}()

	switch {
	case method == fasthttp.MethodGet && path == "/api/health":
		s.handleHealth(ctx)
		return
	case method == fasthttp.MethodPost && path == "/api/interview/session":
		s.handleCreateSession(ctx)
		return
	}

	sessionID, action, ok := splitInterviewPath(path)
	if !ok {
		s.writeError(ctx, fasthttp.StatusNotFound, "not found")
		return
	}

	switch {
	case method == fasthttp.MethodGet && action == "question":
		s.handleNextQuestion(ctx, sessionID)
	case method == fasthttp.MethodPost && action == "answer":
		s.handleAnswer(ctx, sessionID)
	case method == fasthttp.MethodPost && action == "answer/chunk":
		s.handleAnswerChunk(ctx, sessionID)
	case method == fasthttp.MethodPost && action == "answer/finish":
		s.handleAnswerFinish(ctx, sessionID)
	case method == fasthttp.MethodGet && action == "status":
		s.handleStatus(ctx, sessionID)
	case method == fasthttp.MethodGet && action == "report":
		s.handleReport(ctx, sessionID)
	case method == fasthttp.MethodDelete && action == "":
		s.handleCleanup(ctx, sessionID)
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, "not found")
	}
}

// splitInterviewPath decomposes /api/interview/{id}[/{action...}].
func splitInterviewPath(path string) (sessionID, action string, ok bool) {
	const prefix = "/api/interview/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}

	rest := strings.TrimPrefix(path, prefix)
	sessionID, action, _ = strings.Cut(rest, "/")
	if sessionID == "" {
		return "", "", false
	}
	return sessionID, action, true
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		s.logger.Error("response encoding failed", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetStatusCode(status)
	ctx.SetContentType(contentTypeJSON)
	ctx.SetBody(body)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	s.writeJSON(ctx, status, map[string]string{"error": message})
}
