// Package evaluation turns the two final completion responses into a
// structured interview result. The feedback narrative is delivered as-is;
// the score payload is parsed and validated, and a malformed payload is
// recorded as a ScoreParseError without discarding the narrative.
package evaluation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/skillsenselab/interviewd/validation"
)

// Decisions the score payload may carry.
const (
	DecisionPass = "PASS"
	DecisionFail = "FAIL"
)

// ScorePayload is the structured verdict produced by the evaluator model.
type ScorePayload struct {
	// Score is the overall rating, 0 to 100.
	Score int `json:"score" validate:"gte=0,lte=100"`
	// Reason briefly explains the score.
	Reason string `json:"reason"`
	// Confidence is the evaluator's self-reported certainty, 0 to 100.
	Confidence int `json:"confidence" validate:"gte=0,lte=100"`
	// Decision is PASS or FAIL.
	Decision string `json:"decision" validate:"oneof=PASS FAIL"`
}

// Validate checks ranges and the decision enum.
func (p *ScorePayload) Validate() error {
	return validation.Validate(p)
}

// ScoreParseError records a score response that could not be parsed or
// validated. It is stored on the result rather than failing the session.
type ScoreParseError struct {
	// RawText is the unmodified model output.
	RawText string `json:"raw_text"`
	// Reason describes why parsing or validation failed.
	Reason string `json:"reason"`
}

// Error implements the error interface.
func (e *ScoreParseError) Error() string {
	return "evaluation: score parse failed: " + e.Reason
}

// Result is the final output of an interview session.
type Result struct {
	// Feedback is the structured narrative (Final Evaluation, Strengths,
	// Areas for Improvement, SWOT). Always present.
	Feedback string `json:"feedback"`
	// Score is the parsed payload. Nil when parsing failed.
	Score *ScorePayload `json:"score,omitempty"`
	// ScoreError is set when the score payload was malformed.
	ScoreError *ScoreParseError `json:"score_error,omitempty"`
}

// Aggregate combines the feedback narrative and the raw score response into
// a Result. A malformed score never suppresses the feedback.
func Aggregate(feedbackText, scoreText string) Result {
	result := Result{Feedback: feedbackText}

	payload, err := ParseScore(scoreText)
	if err != nil {
		result.ScoreError = &ScoreParseError{RawText: scoreText, Reason: err.Error()}
		return result
	}

	result.Score = payload
	return result
}

// ParseScore extracts and validates a ScorePayload from model output that
// may be wrapped in markdown fences or surrounding prose.
func ParseScore(text string) (*ScorePayload, error) {
	var payload ScorePayload
	if err := json.Unmarshal([]byte(extractJSON(text)), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &payload, nil
}

// extractJSON pulls a JSON object from model output that may contain
// markdown fences.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	// Strip markdown code fences
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s[3:], "\n"); idx >= 0 {
			s = s[3+idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Find first { and last }
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
