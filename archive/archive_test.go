package archive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/skillsenselab/interviewd/encryption"
	"github.com/skillsenselab/interviewd/evaluation"
	"github.com/skillsenselab/interviewd/logger"
	"github.com/skillsenselab/interviewd/session"
	"github.com/skillsenselab/interviewd/storage"
)

func newTestArchiver(t *testing.T, cipher *encryption.Cipher) (*Archiver, storage.Store) {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return New(store, cipher, logger.NewDefault("archive-test")), store
}

func sampleSnapshot() session.Snapshot {
	return session.Snapshot{
		ID:    "sess-1",
		State: session.StateCompleted,
		History: []session.Turn{
			{Question: "Describe a race condition you debugged.", Answer: "It was in a worker pool.", AskedAt: time.Now(), AnsweredAt: time.Now()},
		},
	}
}

func sampleResult() *evaluation.Result {
	return &evaluation.Result{
		Feedback: "Final Evaluation: solid fundamentals.",
		Score:    &evaluation.ScorePayload{Score: 82, Reason: "good depth", Confidence: 90, Decision: evaluation.DecisionPass},
	}
}

func TestSaveRecording(t *testing.T) {
	a, store := newTestArchiver(t, nil)
	ctx := context.Background()

	audioPath := filepath.Join(t.TempDir(), "answer.wav")
	if err := os.WriteFile(audioPath, []byte("RIFF fake audio"), 0o600); err != nil {
		t.Fatal(err)
	}

	key, err := a.SaveRecording(ctx, "sess-1", 2, audioPath)
	if err != nil {
		t.Fatalf("SaveRecording: %v", err)
	}
	if key != "sessions/sess-1/turn-2.wav" {
		t.Errorf("key = %q", key)
	}

	data, err := storage.GetBytes(ctx, store, key)
	if err != nil {
		t.Fatalf("GetBytes: %v", err)
	}
	if string(data) != "RIFF fake audio" {
		t.Errorf("stored data = %q", data)
	}
}

func TestSaveRecordingMissingFile(t *testing.T) {
	a, _ := newTestArchiver(t, nil)
	if _, err := a.SaveRecording(context.Background(), "s", 1, "/does/not/exist.wav"); err == nil {
		t.Error("expected error for missing recording")
	}
}

func TestSaveResultPlain(t *testing.T) {
	a, store := newTestArchiver(t, nil)
	ctx := context.Background()

	key, err := a.SaveResult(ctx, sampleSnapshot(), sampleResult())
	if err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	if key != "sessions/sess-1/result.json" {
		t.Errorf("key = %q", key)
	}

	data, err := storage.GetBytes(ctx, store, key)
	if err != nil {
		t.Fatalf("GetBytes: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("stored document is not JSON: %v", err)
	}
	if doc["session_id"] != "sess-1" {
		t.Errorf("session_id = %v", doc["session_id"])
	}
	if !strings.Contains(string(data), "race condition") {
		t.Error("transcript missing from document")
	}
}

func TestSaveResultEncrypted(t *testing.T) {
	cipher, err := encryption.New("archive-key")
	if err != nil {
		t.Fatal(err)
	}
	a, store := newTestArchiver(t, cipher)
	ctx := context.Background()

	key, err := a.SaveResult(ctx, sampleSnapshot(), sampleResult())
	if err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	if !strings.HasSuffix(key, "result.json.enc") {
		t.Errorf("key = %q, want .enc suffix", key)
	}

	data, err := storage.GetBytes(ctx, store, key)
	if err != nil {
		t.Fatalf("GetBytes: %v", err)
	}
	if strings.Contains(string(data), "race condition") {
		t.Error("sealed document leaks plaintext")
	}

	got, err := a.LoadResult(ctx, "sess-1")
	if err != nil {
		t.Fatalf("LoadResult: %v", err)
	}
	if got.Score == nil || got.Score.Score != 82 {
		t.Errorf("round-tripped score = %+v", got.Score)
	}
	if got.Feedback != "Final Evaluation: solid fundamentals." {
		t.Errorf("feedback = %q", got.Feedback)
	}
}

func TestLoadResultMissing(t *testing.T) {
	a, _ := newTestArchiver(t, nil)
	if _, err := a.LoadResult(context.Background(), "unknown"); err == nil {
		t.Error("expected error for missing archive")
	}
}

func TestFromConfigDisabled(t *testing.T) {
	a, err := FromConfig(Config{Enabled: false}, logger.NewDefault("archive-test"))
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if a != nil {
		t.Error("expected nil archiver when disabled")
	}
}

func TestFromConfigEnabled(t *testing.T) {
	cfg := Config{
		Enabled:       true,
		EncryptionKey: "k",
		Storage:       storage.Config{Backend: storage.BackendLocal, BasePath: t.TempDir()},
	}
	a, err := FromConfig(cfg, logger.NewDefault("archive-test"))
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if a == nil {
		t.Fatal("expected archiver")
	}
}

func TestConfigValidate(t *testing.T) {
	disabled := Config{Enabled: false}
	if err := disabled.Validate(); err != nil {
		t.Errorf("disabled config should validate: %v", err)
	}

	bad := Config{Enabled: true, Storage: storage.Config{Backend: "ftp"}}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for bad storage backend")
	}
}
