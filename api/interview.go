package api

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/skillsenselab/interviewd/errors"
	"github.com/skillsenselab/interviewd/observability"
	"github.com/skillsenselab/interviewd/server"
	"github.com/skillsenselab/interviewd/session"
)

// createInterviewRequest starts a new interview session.
type createInterviewRequest struct {
	JobDescription     string `json:"job_description" binding:"required"`
	DurationSeconds    int    `json:"duration_seconds" binding:"omitempty,gt=0"`
	GracePeriodSeconds int    `json:"grace_period_seconds" binding:"omitempty,gt=0"`
}

func (h *Handler) createInterview(c *gin.Context) {
	var req createInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("body", err.Error()))
		return
	}

	cfg := session.Config{
		JobDescription: req.JobDescription,
		Duration:       h.cfg.DefaultDuration,
		GracePeriod:    h.cfg.GracePeriod,
	}
	if req.DurationSeconds > 0 {
		cfg.Duration = time.Duration(req.DurationSeconds) * time.Second
	}
	if req.GracePeriodSeconds > 0 {
		cfg.GracePeriod = time.Duration(req.GracePeriodSeconds) * time.Second
	}

	orch, err := h.sessions.Create(cfg)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordSessionStart(c.Request.Context())
	}
	h.log.Info("interview created", map[string]interface{}{
		"session_id": orch.ID(),
		"duration":   cfg.Duration.String(),
	})

	server.RespondCreated(c, orch.Snapshot())
}

func (h *Handler) getInterview(c *gin.Context) {
	orch, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, orch.Snapshot())
}

func (h *Handler) deleteInterview(c *gin.Context) {
	orch, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordSessionEnd(c.Request.Context(), string(orch.State()))
	}
	h.sessions.Remove(orch.ID())
	server.RespondNoContent(c)
}

func (h *Handler) nextQuestion(c *gin.Context) {
	orch, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	oc := observability.NewOperationContext("interviewd", "next-question", c.GetString("request_id"), orch.ID(), h.metrics)
	ctx, span := oc.StartSpanForOperation(c.Request.Context(), observability.SpanQuestionGenerate)

	question, err := orch.NextQuestion(ctx)
	if err != nil {
		oc.EndOperation(ctx, span, "error", err)
		h.recordAdapterCall(c, "llm", "next_question", "error", oc.Duration())
		server.RespondWithError(c, err)
		return
	}
	oc.EndOperation(ctx, span, "ok", nil)
	h.recordAdapterCall(c, "llm", "next_question", "ok", oc.Duration())

	snap := orch.Snapshot()
	server.RespondOK(c, gin.H{
		"question": question,
		"turn":     snap.TurnIndex,
		"state":    snap.State,
	})
}

func (h *Handler) submitAnswer(c *gin.Context) {
	orch, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	file, err := c.FormFile("audio")
	if err != nil {
		server.RespondWithError(c, apperrors.MissingField("audio"))
		return
	}

	path := filepath.Join(os.TempDir(), "upload-"+uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	defer os.Remove(path)

	h.answer(c, orch, path)
}

// answer runs transcription and turn recording for an audio file on disk.
// Shared by the multipart upload and server-side recording paths.
func (h *Handler) answer(c *gin.Context, orch *session.Orchestrator, audioPath string) {
	oc := observability.NewOperationContext("interviewd", "submit-answer", c.GetString("request_id"), orch.ID(), h.metrics)
	ctx, span := oc.StartSpanForOperation(c.Request.Context(), observability.SpanAnswerTranscribe)

	answer, err := orch.SubmitAnswer(ctx, audioPath)
	if err != nil {
		oc.EndOperation(ctx, span, "error", err)
		h.recordAdapterCall(c, "transcription", "submit_answer", "error", oc.Duration())
		server.RespondWithError(c, err)
		return
	}
	oc.EndOperation(ctx, span, "ok", nil)
	h.recordAdapterCall(c, "transcription", "submit_answer", "ok", oc.Duration())

	if h.metrics != nil {
		h.metrics.RecordTurn(c.Request.Context())
	}

	snap := orch.Snapshot()
	if h.archiver != nil {
		if _, err := h.archiver.SaveRecording(c.Request.Context(), orch.ID(), snap.TurnIndex, audioPath); err != nil {
			h.log.Warn("recording archive failed", map[string]interface{}{
				"session_id": orch.ID(), "error": err.Error(),
			})
		}
	}

	server.RespondOK(c, gin.H{
		"answer": answer,
		"turn":   snap.TurnIndex,
		"state":  snap.State,
	})
}

func (h *Handler) finalizeInterview(c *gin.Context) {
	orch, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	ctx, span := observability.StartSpan(c.Request.Context(), observability.SpanSessionFinalize)
	defer span.End()

	result, err := orch.Finalize(ctx)
	if err != nil {
		observability.SetSpanError(ctx, err)
		server.RespondWithError(c, err)
		return
	}

	if h.archiver != nil {
		if _, err := h.archiver.SaveResult(ctx, orch.Snapshot(), result); err != nil {
			h.log.Warn("result archive failed", map[string]interface{}{
				"session_id": orch.ID(), "error": err.Error(),
			})
		}
	}

	server.RespondOK(c, result)
}

func (h *Handler) getResult(c *gin.Context) {
	orch, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	result, err := orch.Result()
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, result)
}

func (h *Handler) recordAdapterCall(c *gin.Context, service, operation, status string, d time.Duration) {
	if h.metrics != nil {
		h.metrics.RecordAdapterCall(c.Request.Context(), service, operation, status, d)
	}
}
