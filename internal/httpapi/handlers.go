package httpapi

import (
	"encoding/base64"
	"errors"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/talvox/talvox/internal/interview"
	"github.com/talvox/talvox/internal/profile"
)

const defaultAudioMIME = "audio/wav"

type createSessionRequest struct {
	JobDescription string `json:"job_description"`
	ResumeText     string `json:"resume_text"`
}

type questionResponse struct {
	Number      int    `json:"question_number"`
	Text        string `json:"question_text"`
	Category    string `json:"question_type"`
	HasAudio    bool   `json:"has_audio"`
	AudioBase64 string `json:"audio_base64,omitempty"`
}

type answerRequest struct {
	AudioBase64 string `json:"audio_base64"`
	MIMEType    string `json:"mime_type"`
}

type chunkRequest struct {
	UploadID    string `json:"upload_id"`
	ChunkIndex  int    `json:"chunk_index"`
	AudioBase64 string `json:"audio_base64"`
}

type finishRequest struct {
	UploadID    string `json:"upload_id"`
	TotalChunks int    `json:"total_chunks"`
	MIMEType    string `json:"mime_type"`
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	s.writeJSON(ctx, fasthttp.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.orchestrator.Store().Len(),
	})
}

func (s *Server) handleCreateSession(ctx *fasthttp.RequestCtx) {
	var req createSessionRequest
	if err := sonic.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "malformed request body")
		return
	}

	info, err := s.orchestrator.CreateSession(ctx, req.JobDescription, req.ResumeText)
	if err != nil {
		if errors.Is(err, profile.ErrResumeUnavailable) {
			s.writeError(ctx, fasthttp.StatusBadRequest, "resume text is required")
			return
		}
		s.logger.Error("session creation failed", zap.Error(err))
		s.writeError(ctx, fasthttp.StatusBadGateway, "could not analyze profiles")
		return
	}

	s.writeJSON(ctx, fasthttp.StatusCreated, info)
}

func (s *Server) handleNextQuestion(ctx *fasthttp.RequestCtx, sessionID string) {
	delivery, err := s.orchestrator.NextQuestion(ctx, sessionID)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}

	resp := questionResponse{
		Number:   delivery.Number,
		Text:     delivery.Text,
		Category: string(delivery.Category),
		HasAudio: delivery.HasAudio,
	}
	if delivery.HasAudio {
		resp.AudioBase64 = base64.StdEncoding.EncodeToString(delivery.Audio)
	}

	s.writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) handleAnswer(ctx *fasthttp.RequestCtx, sessionID string) {
	var req answerRequest
	if err := sonic.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "malformed request body")
		return
	}

	audio, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "audio_base64 is not valid base64")
		return
	}

	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = defaultAudioMIME
	}

	result, err := s.orchestrator.SubmitAnswer(ctx, sessionID, audio, mimeType)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}

	s.writeJSON(ctx, fasthttp.StatusOK, result)
}

func (s *Server) handleAnswerChunk(ctx *fasthttp.RequestCtx, sessionID string) {
	if _, err := s.orchestrator.Status(sessionID); err != nil {
		s.writeSessionError(ctx, err)
		return
	}

	var req chunkRequest
	if err := sonic.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "malformed request body")
		return
	}

	chunk, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "audio_base64 is not valid base64")
		return
	}

	if err := s.chunks.add(sessionID, req.UploadID, req.ChunkIndex, chunk); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	s.writeJSON(ctx, fasthttp.StatusAccepted, map[string]any{
		"upload_id":   req.UploadID,
		"chunk_index": req.ChunkIndex,
	})
}

func (s *Server) handleAnswerFinish(ctx *fasthttp.RequestCtx, sessionID string) {
	var req finishRequest
	if err := sonic.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "malformed request body")
		return
	}

	audio, err := s.chunks.assemble(sessionID, req.UploadID, req.TotalChunks)
	if err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = defaultAudioMIME
	}

	result, err := s.orchestrator.SubmitAnswer(ctx, sessionID, audio, mimeType)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}

	s.writeJSON(ctx, fasthttp.StatusOK, result)
}

func (s *Server) handleStatus(ctx *fasthttp.RequestCtx, sessionID string) {
	info, err := s.orchestrator.Status(sessionID)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}

	s.writeJSON(ctx, fasthttp.StatusOK, info)
}

func (s *Server) handleReport(ctx *fasthttp.RequestCtx, sessionID string) {
	report, err := s.orchestrator.FinalReport(ctx, sessionID)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}

	s.writeJSON(ctx, fasthttp.StatusOK, report)
}

func (s *Server) handleCleanup(ctx *fasthttp.RequestCtx, sessionID string) {
	s.orchestrator.Cleanup(sessionID)
	s.chunks.drop(sessionID)
	s.writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) writeSessionError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, interview.ErrSessionNotFound):
		s.writeError(ctx, fasthttp.StatusNotFound, "session not found")
	case errors.Is(err, interview.ErrInterviewCompleted):
		s.writeError(ctx, fasthttp.StatusConflict, "interview already completed")
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.writeError(ctx, fasthttp.StatusInternalServerError, "internal error")
	}
}
