package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/interviewd/api"
	"github.com/skillsenselab/interviewd/archive"
	"github.com/skillsenselab/interviewd/llm"
	"github.com/skillsenselab/interviewd/logger"
	"github.com/skillsenselab/interviewd/recording"
	"github.com/skillsenselab/interviewd/session"
	"github.com/skillsenselab/interviewd/storage"
	"github.com/skillsenselab/interviewd/transcription"
)

type fakeLLM struct {
	fn func(req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

func (f *fakeLLM) Name() string                         { return "fake-llm" }
func (f *fakeLLM) IsAvailable(ctx context.Context) bool { return true }
func (f *fakeLLM) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return f.fn(req)
}

type fakeTranscriber struct {
	text string
}

func (f *fakeTranscriber) Name() string                         { return "fake-transcriber" }
func (f *fakeTranscriber) IsAvailable(ctx context.Context) bool { return true }
func (f *fakeTranscriber) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	return &transcription.Result{Text: f.text}, nil
}

// scriptedLLM routes by system prompt so one fake serves question
// generation, feedback, and scoring.
func scriptedLLM() *fakeLLM {
	return &fakeLLM{fn: func(req llm.CompletionRequest) (*llm.CompletionResponse, error) {
		switch {
		case strings.Contains(req.SystemPrompt, "interviewer conducting"):
			return &llm.CompletionResponse{Content: "Explain goroutines."}, nil
		case strings.Contains(req.SystemPrompt, "structured evaluation"):
			return &llm.CompletionResponse{Content: `{"score":80,"reason":"solid","confidence":90,"decision":"PASS"}`}, nil
		default:
			return &llm.CompletionResponse{Content: "### Final Evaluation\nGood."}, nil
		}
	}}
}

func newTestRouter(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewDefault("api-test")
	manager := session.NewManager(scriptedLLM(), &fakeTranscriber{text: "I would use channels."}, log)

	recorder, err := recording.NewController(recording.Config{Dir: t.TempDir()}, log)
	if err != nil {
		t.Fatalf("unexpected controller error: %v", err)
	}

	handler := api.NewHandler(api.Config{DefaultDuration: time.Minute}, manager, recorder, nil, nil, log)

	engine := gin.New()
	handler.RegisterRoutes(engine)
	return engine, manager
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)
	return rr
}

func createSession(t *testing.T, engine *gin.Engine) string {
	t.Helper()
	rr := doJSON(t, engine, http.MethodPost, "/v1/interviews", map[string]any{
		"job_description": "Senior Go engineer",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	if resp.Data.ID == "" {
		t.Fatal("expected a session id")
	}
	return resp.Data.ID
}

func TestCreateInterview(t *testing.T) {
	engine, manager := newTestRouter(t)

	id := createSession(t, engine)

	orch, err := manager.Get(id)
	if err != nil {
		t.Fatalf("session not registered: %v", err)
	}
	if orch.State() != session.StateRunning {
		t.Fatalf("expected running session, got %s", orch.State())
	}
}

func TestCreateInterview_MissingJobDescription(t *testing.T) {
	engine, _ := newTestRouter(t)

	rr := doJSON(t, engine, http.MethodPost, "/v1/interviews", map[string]any{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetInterview_NotFound(t *testing.T) {
	engine, _ := newTestRouter(t)

	rr := doJSON(t, engine, http.MethodGet, "/v1/interviews/nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestNextQuestion(t *testing.T) {
	engine, _ := newTestRouter(t)
	id := createSession(t, engine)

	rr := doJSON(t, engine, http.MethodGet, "/v1/interviews/"+id+"/question", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Data struct {
			Question string `json:"question"`
			Turn     int    `json:"turn"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Data.Question != "Explain goroutines." {
		t.Fatalf("unexpected question: %q", resp.Data.Question)
	}
	if resp.Data.Turn != 1 {
		t.Fatalf("expected turn 1, got %d", resp.Data.Turn)
	}
}

func TestSubmitAnswer(t *testing.T) {
	engine, manager := newTestRouter(t)
	id := createSession(t, engine)

	// A question must be pending before an answer is accepted.
	doJSON(t, engine, http.MethodGet, "/v1/interviews/"+id+"/question", nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "answer.wav")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	part.Write([]byte("RIFF fake wav bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/interviews/"+id+"/answers", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Data struct {
			Answer string `json:"answer"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Data.Answer != "I would use channels." {
		t.Fatalf("unexpected answer: %q", resp.Data.Answer)
	}

	orch, _ := manager.Get(id)
	if got := len(orch.Snapshot().History); got != 1 {
		t.Fatalf("expected 1 recorded turn, got %d", got)
	}
}

func TestSubmitAnswer_MissingFile(t *testing.T) {
	engine, _ := newTestRouter(t)
	id := createSession(t, engine)
	doJSON(t, engine, http.MethodGet, "/v1/interviews/"+id+"/question", nil)

	rr := doJSON(t, engine, http.MethodPost, "/v1/interviews/"+id+"/answers", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSubmitAnswer_WithoutPendingQuestion(t *testing.T) {
	engine, _ := newTestRouter(t)
	id := createSession(t, engine)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("audio", "answer.wav")
	part.Write([]byte("bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/interviews/"+id+"/answers", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestFinalize(t *testing.T) {
	engine, _ := newTestRouter(t)
	id := createSession(t, engine)

	rr := doJSON(t, engine, http.MethodPost, "/v1/interviews/"+id+"/finalize", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Data struct {
			Feedback string `json:"feedback"`
			Score    *struct {
				Score    int    `json:"score"`
				Decision string `json:"decision"`
			} `json:"score"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !strings.Contains(resp.Data.Feedback, "Final Evaluation") {
		t.Fatalf("unexpected feedback: %q", resp.Data.Feedback)
	}
	if resp.Data.Score == nil || resp.Data.Score.Decision != "PASS" {
		t.Fatalf("expected parsed PASS score, got %+v", resp.Data.Score)
	}
}

func TestGetResult_BeforeFinalize(t *testing.T) {
	engine, _ := newTestRouter(t)
	id := createSession(t, engine)

	rr := doJSON(t, engine, http.MethodGet, "/v1/interviews/"+id+"/result", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 while running, got %d", rr.Code)
	}
}

func TestGetResult_AfterFinalize(t *testing.T) {
	engine, _ := newTestRouter(t)
	id := createSession(t, engine)

	doJSON(t, engine, http.MethodPost, "/v1/interviews/"+id+"/finalize", nil)

	rr := doJSON(t, engine, http.MethodGet, "/v1/interviews/"+id+"/result", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestDeleteInterview(t *testing.T) {
	engine, manager := newTestRouter(t)
	id := createSession(t, engine)

	rr := doJSON(t, engine, http.MethodDelete, "/v1/interviews/"+id, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if _, err := manager.Get(id); err == nil {
		t.Fatal("expected session to be removed")
	}
}

func TestStopRecording_NoneActive(t *testing.T) {
	engine, _ := newTestRouter(t)
	id := createSession(t, engine)

	rr := doJSON(t, engine, http.MethodPost, "/v1/interviews/"+id+"/recording/stop", map[string]any{
		"recording_id": "missing",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestStopRecording_MissingID(t *testing.T) {
	engine, _ := newTestRouter(t)
	id := createSession(t, engine)

	rr := doJSON(t, engine, http.MethodPost, "/v1/interviews/"+id+"/recording/stop", map[string]any{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestRecording_UnknownSession(t *testing.T) {
	engine, _ := newTestRouter(t)

	rr := doJSON(t, engine, http.MethodPost, "/v1/interviews/nope/recording/start", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestArchiveFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log := logger.NewDefault("api-test")
	manager := session.NewManager(scriptedLLM(), &fakeTranscriber{text: "I would use channels."}, log)

	recorder, err := recording.NewController(recording.Config{Dir: t.TempDir()}, log)
	if err != nil {
		t.Fatalf("unexpected controller error: %v", err)
	}

	store, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected storage error: %v", err)
	}
	archiver := archive.New(store, nil, log)

	handler := api.NewHandler(api.Config{DefaultDuration: time.Minute}, manager, recorder, archiver, nil, log)
	engine := gin.New()
	handler.RegisterRoutes(engine)

	id := createSession(t, engine)
	doJSON(t, engine, http.MethodGet, "/v1/interviews/"+id+"/question", nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "answer.wav")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	part.Write([]byte("RIFF fake wav bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/interviews/"+id+"/answers", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	if rr := doJSON(t, engine, http.MethodPost, "/v1/interviews/"+id+"/finalize", nil); rr.Code != http.StatusOK {
		t.Fatalf("finalize: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	ctx := context.Background()
	for _, key := range []string{
		"sessions/" + id + "/turn-1.wav",
		"sessions/" + id + "/result.json",
	} {
		exists, err := store.Exists(ctx, key)
		if err != nil {
			t.Fatalf("Exists(%s): %v", key, err)
		}
		if !exists {
			t.Errorf("expected archived object %s", key)
		}
	}
}
