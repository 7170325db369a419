package session

import (
	"fmt"
	"time"
)

// State is the lifecycle phase of an interview session.
type State string

const (
	// StateNotStarted is the initial state before Start.
	StateNotStarted State = "not_started"
	// StateRunning means questions are being asked and answered.
	StateRunning State = "running"
	// StateFinalizing means no more questions; evaluation is in progress.
	StateFinalizing State = "finalizing"
	// StateCompleted is terminal: the evaluation result is available.
	StateCompleted State = "completed"
	// StateFailed is terminal: an adapter failure exhausted its retry budget.
	StateFailed State = "failed"
)

// Terminal reports whether no further transitions are permitted.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Turn is one question/answer exchange. Immutable once appended to history.
type Turn struct {
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	AskedAt    time.Time `json:"asked_at"`
	AnsweredAt time.Time `json:"answered_at"`
}

const defaultGracePeriod = 10 * time.Second

// Config describes one interview session. Supplied once at start and
// immutable for the session lifetime.
type Config struct {
	// JobDescription seeds every prompt.
	JobDescription string `json:"job_description"`
	// Duration is the total interview length.
	Duration time.Duration `json:"duration"`
	// GracePeriod is the pre-deadline buffer after which no new question
	// is started. Defaults to 10s.
	GracePeriod time.Duration `json:"grace_period"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.GracePeriod <= 0 {
		c.GracePeriod = defaultGracePeriod
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.JobDescription == "" {
		return fmt.Errorf("session: job description is required")
	}
	if c.Duration <= 0 {
		return fmt.Errorf("session: duration must be positive")
	}
	if c.Duration <= c.GracePeriod {
		return fmt.Errorf("session: duration must exceed the grace period (%s)", c.GracePeriod)
	}
	return nil
}
