// Package session implements the interview state machine: question
// generation, answer capture and transcription, deadline enforcement, and
// final evaluation, sequenced per turn under a wall-clock deadline.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skillsenselab/interviewd/errors"
	"github.com/skillsenselab/interviewd/evaluation"
	"github.com/skillsenselab/interviewd/llm"
	"github.com/skillsenselab/interviewd/logger"
	"github.com/skillsenselab/interviewd/prompt"
	"github.com/skillsenselab/interviewd/transcription"
)

// Orchestrator drives one interview session. All state transitions happen
// under the mutex; adapter calls run unlocked and their results are applied
// only if the session epoch has not moved in the meantime.
type Orchestrator struct {
	id          string
	cfg         Config
	completions llm.Provider
	transcriber transcription.Provider
	log         *logger.Logger

	mu              sync.Mutex
	state           State
	epoch           uint64
	deadline        time.Time
	turnIndex       int
	currentQuestion string
	currentAskedAt  time.Time
	history         []Turn
	result          *evaluation.Result
	failure         error

	runCtx    context.Context
	runCancel context.CancelFunc
	timer     *time.Timer

	finalizeOnce sync.Once

	// now is a seam for deadline tests.
	now func() time.Time
}

// NewOrchestrator creates an orchestrator in the NotStarted state.
func NewOrchestrator(id string, cfg Config, completions llm.Provider, transcriber transcription.Provider, log *logger.Logger) (*Orchestrator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{
		id:          id,
		cfg:         cfg,
		completions: completions,
		transcriber: transcriber,
		log:         log.WithComponent("session").WithFields(logger.Fields(logger.FieldSessionID, id)),
		state:       StateNotStarted,
		turnIndex:   1,
		now:         time.Now,
	}, nil
}

// Start moves the session to Running, sets the deadline, and arms the
// deadline watch. The first question is generated by NextQuestion.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateNotStarted {
		return errors.InvalidState(string(o.state), "start")
	}

	o.state = StateRunning
	o.deadline = o.now().Add(o.cfg.Duration)
	o.runCtx, o.runCancel = context.WithCancel(context.Background())

	// The watch fires when remaining time drops to the grace period.
	o.timer = time.AfterFunc(o.cfg.Duration-o.cfg.GracePeriod, o.onDeadline)

	o.log.Info("session started", logger.Fields(
		"duration", o.cfg.Duration.String(),
		"grace_period", o.cfg.GracePeriod.String(),
		"deadline", o.deadline.Format(time.RFC3339),
	))
	return nil
}

// onDeadline forces Running -> Finalizing and kicks off evaluation. This is
// a normal transition, not an error; in-flight adapter results that arrive
// afterwards carry a stale epoch and are discarded.
func (o *Orchestrator) onDeadline() {
	o.mu.Lock()
	if o.state != StateRunning {
		o.mu.Unlock()
		return
	}
	o.leaveRunning(StateFinalizing)
	o.log.Info("deadline reached, finalizing", logger.Fields(logger.FieldTurn, o.turnIndex))
	o.mu.Unlock()

	go o.runFinalize(context.Background())
}

// NextQuestion generates the question for the current turn. It is
// idempotent while a question is pending. A semantically empty completion
// leaves the session Running so the caller may retry; a retry-exhausted
// adapter failure moves the session to Failed.
func (o *Orchestrator) NextQuestion(ctx context.Context) (string, error) {
	o.mu.Lock()
	if o.state != StateRunning {
		o.mu.Unlock()
		return "", errors.InvalidState(string(o.state), "next_question")
	}
	if o.currentQuestion != "" {
		q := o.currentQuestion
		o.mu.Unlock()
		return q, nil
	}
	epoch := o.epoch
	turn := o.turnIndex
	req := prompt.Question(o.cfg.JobDescription, o.transcript(), turn)
	o.mu.Unlock()

	resp, err := o.completions.Complete(ctx, req)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.epoch != epoch || o.state != StateRunning {
		// Stale result after a deadline or failure transition.
		return "", errors.InvalidState(string(o.state), "next_question")
	}

	if err != nil {
		if errors.HasCode(err, errors.ErrCodeContentEmpty) {
			o.log.Warn("empty completion, session stays running", logger.Fields(logger.FieldTurn, turn))
			return "", err
		}
		o.failLocked(err)
		return "", err
	}

	o.currentQuestion = resp.Content
	o.currentAskedAt = o.now()
	o.log.Info("question generated", logger.Fields(logger.FieldTurn, turn))
	return resp.Content, nil
}

// SubmitAnswer transcribes the audio file and appends the completed turn.
// Transcription is canceled if the session leaves Running while the poll
// loop is in flight. After appending, the session moves to Finalizing when
// the remaining time is within the grace period.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, audioPath string) (string, error) {
	o.mu.Lock()
	if o.state != StateRunning {
		o.mu.Unlock()
		return "", errors.InvalidState(string(o.state), "submit_answer")
	}
	if o.currentQuestion == "" {
		o.mu.Unlock()
		return "", errors.InvalidState(string(StateRunning), "submit_answer: no question pending")
	}
	epoch := o.epoch
	runCtx := o.runCtx
	o.mu.Unlock()

	// Cancel the transcription poll loop as soon as the session leaves
	// Running, so a deadline transition does not leave it polling.
	tctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(runCtx, cancel)
	defer stop()

	result, err := o.transcriber.Transcribe(tctx, transcription.Request{AudioPath: audioPath})

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.epoch != epoch || o.state != StateRunning {
		return "", errors.InvalidState(string(o.state), "submit_answer")
	}

	if err != nil {
		if errors.HasCode(err, errors.ErrCodeTranscriptionFailed) {
			// The turn is not recorded; the caller may capture again.
			o.log.Warn("transcription failed, turn not recorded", logger.Fields(logger.FieldTurn, o.turnIndex))
			return "", err
		}
		o.failLocked(err)
		return "", err
	}

	o.history = append(o.history, Turn{
		Question:   o.currentQuestion,
		Answer:     result.Text,
		AskedAt:    o.currentAskedAt,
		AnsweredAt: o.now(),
	})
	o.currentQuestion = ""
	o.turnIndex++

	o.log.Info("answer recorded", logger.Fields(logger.FieldTurn, o.turnIndex-1))

	if !o.now().Before(o.deadline.Add(-o.cfg.GracePeriod)) {
		o.leaveRunning(StateFinalizing)
		o.log.Info("grace period reached, finalizing", logger.Fields(logger.FieldTurn, o.turnIndex))
		go o.runFinalize(context.Background())
	}

	return result.Text, nil
}

// Finalize is the single canonical evaluation entry point. The deadline
// timer and explicit calls converge here; whichever arrives first runs the
// two evaluation completions, and every caller receives the same result.
// The evaluation runs on a session-owned context: ctx only bounds how long
// this caller waits, and a caller that gives up leaves the evaluation
// running so the result stays reachable.
func (o *Orchestrator) Finalize(ctx context.Context) (*evaluation.Result, error) {
	o.mu.Lock()
	switch o.state {
	case StateNotStarted:
		o.mu.Unlock()
		return nil, errors.InvalidState(string(StateNotStarted), "finalize")
	case StateFailed:
		failure := o.failure
		o.mu.Unlock()
		return nil, failure
	case StateRunning:
		o.leaveRunning(StateFinalizing)
		o.log.Info("finalize requested", logger.Fields(logger.FieldTurn, o.turnIndex))
	case StateFinalizing, StateCompleted:
		// Evaluation already triggered or done; fall through to join it.
	}
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.runFinalize(context.Background())
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, errors.Timeout("finalize").WithCause(ctx.Err())
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failure != nil {
		return nil, o.failure
	}
	return o.result, nil
}

// runFinalize performs the two evaluation completions exactly once.
// Concurrent callers block until the first invocation finishes.
func (o *Orchestrator) runFinalize(ctx context.Context) {
	o.finalizeOnce.Do(func() {
		o.mu.Lock()
		jd := o.cfg.JobDescription
		transcript := o.transcript()
		o.mu.Unlock()

		feedback, err := o.completions.Complete(ctx, prompt.Feedback(jd, transcript))
		if err != nil {
			o.setFailed(err)
			return
		}

		score, err := o.completions.Complete(ctx, prompt.Score(jd, transcript))
		if err != nil {
			o.setFailed(err)
			return
		}

		result := evaluation.Aggregate(feedback.Content, score.Content)

		o.mu.Lock()
		o.result = &result
		o.state = StateCompleted
		o.stopTimerLocked()
		o.mu.Unlock()

		o.log.Info("session completed", logger.Fields(
			"turns", len(transcript),
			"score_parsed", result.Score != nil,
		))
	})
}

// Abort tears the session down without running the final evaluation: the
// deadline watch is stopped, in-flight adapter calls are canceled, and the
// evaluation slot is consumed so a later trigger cannot start one. Terminal
// sessions are left untouched.
func (o *Orchestrator) Abort() {
	o.mu.Lock()
	if o.state.Terminal() {
		o.mu.Unlock()
		return
	}
	if o.state == StateRunning {
		o.leaveRunning(StateFailed)
	} else {
		o.state = StateFailed
		o.stopTimerLocked()
	}
	o.failure = errors.SessionFailed(fmt.Errorf("session aborted"))
	o.log.Info("session aborted", logger.Fields(logger.FieldTurn, o.turnIndex))
	o.mu.Unlock()

	// Consumed outside the lock: an evaluation already inside the slot
	// needs the lock to finish, and Do waits for it.
	o.finalizeOnce.Do(func() {})
}

// Result returns the evaluation result of a Completed session.
func (o *Orchestrator) Result() (*evaluation.Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.state {
	case StateFailed:
		return nil, o.failure
	case StateCompleted:
		return o.result, nil
	default:
		return nil, errors.InvalidState(string(o.state), "result")
	}
}

// Snapshot is a point-in-time view of the session for inspection.
type Snapshot struct {
	ID              string        `json:"id"`
	State           State         `json:"state"`
	TurnIndex       int           `json:"turn_index"`
	CurrentQuestion string        `json:"current_question,omitempty"`
	History         []Turn        `json:"history"`
	Deadline        time.Time     `json:"deadline,omitempty"`
	Remaining       time.Duration `json:"remaining,omitempty"`
}

// Snapshot returns a copy of the observable session state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{
		ID:              o.id,
		State:           o.state,
		TurnIndex:       o.turnIndex,
		CurrentQuestion: o.currentQuestion,
		History:         append([]Turn(nil), o.history...),
	}
	if o.state == StateRunning {
		snap.Deadline = o.deadline
		if remaining := o.deadline.Sub(o.now()); remaining > 0 {
			snap.Remaining = remaining
		}
	}
	return snap
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// transcript converts history for the prompt builders. Caller holds the lock.
func (o *Orchestrator) transcript() []prompt.QA {
	qa := make([]prompt.QA, len(o.history))
	for i, turn := range o.history {
		qa[i] = prompt.QA{Question: turn.Question, Answer: turn.Answer}
	}
	return qa
}

// leaveRunning performs the bookkeeping common to every transition out of
// Running: bump the epoch so in-flight results are discarded, cancel the
// run context, stop the deadline watch. Caller holds the lock.
func (o *Orchestrator) leaveRunning(next State) {
	o.epoch++
	o.state = next
	if o.runCancel != nil {
		o.runCancel()
	}
	o.stopTimerLocked()
}

// failLocked moves the session to the terminal Failed state. Caller holds
// the lock.
func (o *Orchestrator) failLocked(cause error) {
	if o.state == StateRunning {
		o.leaveRunning(StateFailed)
	} else {
		o.state = StateFailed
		o.stopTimerLocked()
	}
	o.failure = errors.SessionFailed(cause)
	o.log.Error("session failed", logger.Fields("error", cause.Error()))
}

func (o *Orchestrator) setFailed(cause error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failLocked(cause)
}

func (o *Orchestrator) stopTimerLocked() {
	if o.timer != nil {
		o.timer.Stop()
	}
}
