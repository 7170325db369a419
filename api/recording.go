package api

import (
	"os"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/interviewd/errors"
	"github.com/skillsenselab/interviewd/server"
)

// stopRecordingRequest identifies the capture to stop.
type stopRecordingRequest struct {
	RecordingID string `json:"recording_id" binding:"required"`
}

func (h *Handler) startRecording(c *gin.Context) {
	orch, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	handle, err := h.recorder.Start()
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	h.log.Info("recording started", map[string]interface{}{
		"session_id":   orch.ID(),
		"recording_id": handle.ID,
	})
	server.RespondCreated(c, handle)
}

// stopRecording ends the capture and submits the recorded audio as the
// answer to the pending question.
func (h *Handler) stopRecording(c *gin.Context) {
	orch, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	var req stopRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.MissingField("recording_id"))
		return
	}

	path, err := h.recorder.Stop(req.RecordingID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	defer os.Remove(path)

	h.answer(c, orch, path)
}
