package evaluation

import (
	"strings"
	"testing"
)

const validScoreJSON = `{"score": 82, "reason": "Strong fundamentals", "confidence": 90, "decision": "PASS"}`

func TestAggregateValid(t *testing.T) {
	result := Aggregate("### Final Evaluation:\n- Solid.", validScoreJSON)
	if result.Feedback == "" {
		t.Fatal("feedback missing")
	}
	if result.ScoreError != nil {
		t.Fatalf("unexpected score error: %v", result.ScoreError)
	}
	if result.Score == nil {
		t.Fatal("score missing")
	}
	if result.Score.Score != 82 || result.Score.Decision != "PASS" {
		t.Errorf("score = %+v", result.Score)
	}
}

func TestAggregateMarkdownFences(t *testing.T) {
	fenced := "```json\n" + validScoreJSON + "\n```"
	result := Aggregate("feedback", fenced)
	if result.Score == nil {
		t.Fatalf("expected parsed score, got error %v", result.ScoreError)
	}
	if result.Score.Confidence != 90 {
		t.Errorf("confidence = %d", result.Score.Confidence)
	}
}

func TestAggregateSurroundingProse(t *testing.T) {
	text := "Here is the evaluation:\n" + validScoreJSON + "\nLet me know if you need more."
	result := Aggregate("feedback", text)
	if result.Score == nil {
		t.Fatalf("expected parsed score, got error %v", result.ScoreError)
	}
}

func TestAggregateTruncatedJSON(t *testing.T) {
	result := Aggregate("the narrative", `{"score": 82, "reason": "cut off`)
	if result.Score != nil {
		t.Fatal("expected parse failure")
	}
	if result.ScoreError == nil {
		t.Fatal("expected score error")
	}
	if result.ScoreError.RawText != `{"score": 82, "reason": "cut off` {
		t.Errorf("raw text = %q", result.ScoreError.RawText)
	}
	if result.Feedback != "the narrative" {
		t.Error("feedback must survive a score parse failure")
	}
}

func TestAggregateOutOfRangeScore(t *testing.T) {
	result := Aggregate("feedback", `{"score": 150, "reason": "r", "confidence": 50, "decision": "PASS"}`)
	if result.Score != nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(result.ScoreError.Reason, "score must be at most 100") {
		t.Errorf("reason = %q", result.ScoreError.Reason)
	}
}

func TestAggregateBadDecision(t *testing.T) {
	result := Aggregate("feedback", `{"score": 50, "reason": "r", "confidence": 50, "decision": "MAYBE"}`)
	if result.Score != nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(result.ScoreError.Reason, "decision must be one of") {
		t.Errorf("reason = %q", result.ScoreError.Reason)
	}
}

func TestScorePayloadValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload ScorePayload
		wantErr bool
	}{
		{"valid pass", ScorePayload{Score: 70, Confidence: 80, Decision: "PASS"}, false},
		{"valid fail", ScorePayload{Score: 20, Confidence: 60, Decision: "FAIL"}, false},
		{"boundary zero", ScorePayload{Score: 0, Confidence: 0, Decision: "FAIL"}, false},
		{"boundary hundred", ScorePayload{Score: 100, Confidence: 100, Decision: "PASS"}, false},
		{"negative score", ScorePayload{Score: -1, Confidence: 50, Decision: "PASS"}, true},
		{"confidence high", ScorePayload{Score: 50, Confidence: 101, Decision: "PASS"}, true},
		{"lowercase decision", ScorePayload{Score: 50, Confidence: 50, Decision: "pass"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScoreParseErrorMessage(t *testing.T) {
	err := &ScoreParseError{RawText: "x", Reason: "unmarshal: bad"}
	if !strings.Contains(err.Error(), "unmarshal: bad") {
		t.Errorf("Error() = %q", err.Error())
	}
}
