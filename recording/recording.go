// Package recording captures candidate answers from the default audio
// device via a sox subprocess. At most one capture is active at a time.
package recording

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillsenselab/interviewd/errors"
	"github.com/skillsenselab/interviewd/logger"
	"github.com/skillsenselab/interviewd/process"
)

const (
	defaultBinary     = "sox"
	defaultSampleRate = 16000
	defaultChannels   = 1
	defaultStopGrace  = 5 * time.Second
)

// Config configures the recording controller.
type Config struct {
	// Binary is the capture executable. Defaults to "sox".
	Binary string `yaml:"binary" mapstructure:"binary"`
	// SampleRate is the capture sample rate in Hz.
	SampleRate int `yaml:"sample_rate" mapstructure:"sample_rate"`
	// Channels is the number of capture channels.
	Channels int `yaml:"channels" mapstructure:"channels"`
	// Dir is where WAV files are written. Defaults to the OS temp dir.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// StopGrace is how long to wait after SIGTERM before SIGKILL.
	StopGrace time.Duration `yaml:"stop_grace" mapstructure:"stop_grace"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Binary == "" {
		c.Binary = defaultBinary
	}
	if c.SampleRate <= 0 {
		c.SampleRate = defaultSampleRate
	}
	if c.Channels <= 0 {
		c.Channels = defaultChannels
	}
	if c.Dir == "" {
		c.Dir = os.TempDir()
	}
	if c.StopGrace <= 0 {
		c.StopGrace = defaultStopGrace
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("recording: sample rate must be positive")
	}
	if c.Channels <= 0 {
		return fmt.Errorf("recording: channels must be positive")
	}
	return nil
}

// Handle identifies one active capture.
type Handle struct {
	// ID uniquely identifies this capture.
	ID string `json:"id"`
	// Path is where the WAV file is being written.
	Path string `json:"path"`
	// StartedAt is when the capture began.
	StartedAt time.Time `json:"started_at"`
}

// capture is the stoppable side of a started subprocess.
type capture interface {
	Stop() error
}

// starter launches the capture subprocess. Swappable in tests.
type starter func(ctx context.Context, cmd process.Command) (capture, error)

func defaultStarter(ctx context.Context, cmd process.Command) (capture, error) {
	return process.Start(ctx, cmd)
}

// Controller owns at most one active capture. Start and Stop are atomic
// check-and-set operations: two concurrent Starts yield exactly one
// ALREADY_RECORDING error.
type Controller struct {
	mu     sync.Mutex
	cfg    Config
	start  starter
	log    *logger.Logger
	active *activeCapture

	// ctx outlives any single HTTP request: a capture started by one
	// request keeps running after that request returns, until Stop or
	// Close. Canceled by Close.
	ctx    context.Context
	cancel context.CancelFunc
}

type activeCapture struct {
	handle Handle
	proc   capture
}

// NewController creates a recording controller.
func NewController(cfg Config, log *logger.Logger) (*Controller, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		cfg:    cfg,
		start:  defaultStarter,
		log:    log.WithComponent("recording"),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start begins a new capture on the controller's own context, so the
// subprocess survives the request that started it. Returns
// ALREADY_RECORDING if one is active.
func (c *Controller) Start() (*Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ctx.Err(); err != nil {
		return nil, errors.AdapterFailure("recording", err)
	}
	if c.active != nil {
		return nil, errors.AlreadyRecording()
	}

	id := uuid.NewString()
	path := filepath.Join(c.cfg.Dir, "answer-"+id+".wav")

	proc, err := c.start(c.ctx, process.Command{
		Binary: c.cfg.Binary,
		Args: []string{
			"-d",
			"-r", strconv.Itoa(c.cfg.SampleRate),
			"-c", strconv.Itoa(c.cfg.Channels),
			path,
		},
		GracePeriod: c.cfg.StopGrace,
	})
	if err != nil {
		return nil, errors.AdapterFailure("recording", err)
	}

	handle := Handle{ID: id, Path: path, StartedAt: time.Now()}
	c.active = &activeCapture{handle: handle, proc: proc}

	c.log.Info("capture started", logger.Fields("recording_id", id, "path", path))
	return &handle, nil
}

// Stop ends the capture identified by id and returns the WAV path.
// Returns NOT_RECORDING when nothing is active or the id is stale.
func (c *Controller) Stop(id string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil || c.active.handle.ID != id {
		return "", errors.NotRecording()
	}

	active := c.active
	c.active = nil

	if err := active.proc.Stop(); err != nil {
		c.log.Error("capture stop failed", logger.Fields("recording_id", id, "error", err.Error()))
		return "", errors.AdapterFailure("recording", err)
	}

	c.log.Info("capture stopped", logger.Fields("recording_id", id, "path", active.handle.Path))
	return active.handle.Path, nil
}

// Close stops any active capture and cancels the controller context.
// The controller accepts no further captures.
func (c *Controller) Close() error {
	c.mu.Lock()
	active := c.active
	c.active = nil
	c.mu.Unlock()

	c.cancel()

	if active != nil {
		if err := active.proc.Stop(); err != nil {
			return errors.AdapterFailure("recording", err)
		}
		c.log.Info("capture stopped on close", logger.Fields("recording_id", active.handle.ID))
	}
	return nil
}

// Active returns a copy of the current capture handle, or nil.
func (c *Controller) Active() *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	h := c.active.handle
	return &h
}
