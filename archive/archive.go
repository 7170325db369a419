package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/skillsenselab/interviewd/encryption"
	"github.com/skillsenselab/interviewd/evaluation"
	"github.com/skillsenselab/interviewd/logger"
	"github.com/skillsenselab/interviewd/session"
	"github.com/skillsenselab/interviewd/storage"
)

// Config holds archive configuration.
type Config struct {
	// Enabled turns artifact archiving on.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// EncryptionKey seals result documents at rest when non-empty.
	// Recordings are stored as-is.
	EncryptionKey string `yaml:"encryption_key" mapstructure:"encryption_key"`

	// Storage selects and configures the artifact store.
	Storage storage.Config `yaml:"storage" mapstructure:"storage"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	c.Storage.ApplyDefaults()
}

// Validate checks the archive configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	return c.Storage.Validate()
}

// Archiver writes interview artifacts to an object store.
type Archiver struct {
	store  storage.Store
	cipher *encryption.Cipher
	log    *logger.Logger
}

// resultDocument is the archived form of a completed interview.
type resultDocument struct {
	SessionID  string                      `json:"session_id"`
	ArchivedAt time.Time                   `json:"archived_at"`
	Transcript []session.Turn              `json:"transcript"`
	Feedback   string                      `json:"feedback"`
	Score      *evaluation.ScorePayload    `json:"score,omitempty"`
	ScoreError *evaluation.ScoreParseError `json:"score_error,omitempty"`
}

// New creates an Archiver on an existing store. cipher may be nil, in which
// case result documents are stored unencrypted.
func New(store storage.Store, cipher *encryption.Cipher, log *logger.Logger) *Archiver {
	return &Archiver{store: store, cipher: cipher, log: log.WithComponent("archive")}
}

// FromConfig builds the store and cipher described by cfg and returns an
// Archiver over them. Returns nil when archiving is disabled.
func FromConfig(cfg Config, log *logger.Logger) (*Archiver, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	store, err := storage.New(cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("archive: init storage: %w", err)
	}

	var cipher *encryption.Cipher
	if cfg.EncryptionKey != "" {
		cipher, err = encryption.New(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("archive: init cipher: %w", err)
		}
	}

	return New(store, cipher, log), nil
}

// SaveRecording copies the answer recording at audioPath into the store and
// returns the object key.
func (a *Archiver) SaveRecording(ctx context.Context, sessionID string, turn int, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("archive: open recording: %w", err)
	}
	defer f.Close()

	key := recordingKey(sessionID, turn, audioPath)
	if err := a.store.Put(ctx, key, f); err != nil {
		return "", fmt.Errorf("archive: store recording: %w", err)
	}

	a.log.Debug("archived recording", map[string]interface{}{
		"session_id": sessionID, "key": key,
	})
	return key, nil
}

// SaveResult writes the evaluation document for a finalized session and
// returns the object key. The document is sealed when a cipher is set.
func (a *Archiver) SaveResult(ctx context.Context, snap session.Snapshot, result *evaluation.Result) (string, error) {
	doc := resultDocument{
		SessionID:  snap.ID,
		ArchivedAt: time.Now().UTC(),
		Transcript: snap.History,
		Feedback:   result.Feedback,
		Score:      result.Score,
		ScoreError: result.ScoreError,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("archive: marshal result: %w", err)
	}

	key := resultKey(snap.ID)
	if a.cipher != nil {
		sealed, err := a.cipher.Seal(data)
		if err != nil {
			return "", fmt.Errorf("archive: seal result: %w", err)
		}
		data = []byte(sealed)
		key += ".enc"
	}

	if err := storage.PutBytes(ctx, a.store, key, data); err != nil {
		return "", fmt.Errorf("archive: store result: %w", err)
	}

	a.log.Info("archived result", map[string]interface{}{
		"session_id": snap.ID, "key": key, "encrypted": a.cipher != nil,
	})
	return key, nil
}

// LoadResult reads an archived result document back, opening the seal when a
// cipher is set.
func (a *Archiver) LoadResult(ctx context.Context, sessionID string) (*evaluation.Result, error) {
	key := resultKey(sessionID)
	if a.cipher != nil {
		key += ".enc"
	}

	data, err := storage.GetBytes(ctx, a.store, key)
	if err != nil {
		return nil, fmt.Errorf("archive: read result: %w", err)
	}
	if a.cipher != nil {
		data, err = a.cipher.Open(string(data))
		if err != nil {
			return nil, fmt.Errorf("archive: open result: %w", err)
		}
	}

	var doc resultDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("archive: unmarshal result: %w", err)
	}

	return &evaluation.Result{
		Feedback:   doc.Feedback,
		Score:      doc.Score,
		ScoreError: doc.ScoreError,
	}, nil
}

func recordingKey(sessionID string, turn int, audioPath string) string {
	ext := filepath.Ext(audioPath)
	if ext == "" {
		ext = ".wav"
	}
	return path.Join("sessions", sessionID, fmt.Sprintf("turn-%d%s", turn, ext))
}

func resultKey(sessionID string) string {
	return path.Join("sessions", sessionID, "result.json")
}
