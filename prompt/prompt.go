// Package prompt builds the completion requests used during an interview:
// the next question, the final feedback narrative, and the structured score.
// All builders are pure and deterministic, and every request runs at
// temperature 0.
package prompt

import (
	"fmt"
	"strings"

	"github.com/skillsenselab/interviewd/llm"
)

// QA is one question/answer exchange from the interview transcript.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

const questionSystem = `You are a professional interviewer conducting a technical interview for a job position.

Job Description: %s

Generate ONE concise, relevant technical question for the candidate. DO NOT include any simulated candidate responses or additional context. The question should be direct and ready to be read to the interviewee. Just provide the question text by itself.`

const feedbackFormat = `Analyze the entire interview and provide structured feedback in this format:

### Final Evaluation:
- (Summary of candidate's performance)

### Strengths:
- (Candidate's strong points)

### Areas for Improvement:
- (Weaknesses & suggestions for improvement)

### SWOT Analysis:
- **Strengths:** (List)
- **Weaknesses:** (List)
- **Opportunities:** (Ways for growth)
- **Threats:** (Potential challenges)

Job Description: %s

Interview Transcript:
%s`

const scoreFormat = `Analyze the interview and provide a JSON object with these fields:

{
  "score": (integer from 0 to 100),
  "reason": "(brief explanation)",
  "confidence": (integer from 0 to 100),
  "decision": "(PASS or FAIL)"
}

Output only valid JSON. No extra text.

Job Description: %s

Interview Transcript:
%s`

// Transcript renders the exchange history as "Q: ...\nA: ..." blocks
// separated by blank lines.
func Transcript(history []QA) string {
	blocks := make([]string, 0, len(history))
	for _, qa := range history {
		blocks = append(blocks, fmt.Sprintf("Q: %s\nA: %s", qa.Question, qa.Answer))
	}
	return strings.Join(blocks, "\n\n")
}

// Question builds the request for the next interview question.
// questionNumber is 1-based.
func Question(jobDescription string, history []QA, questionNumber int) llm.CompletionRequest {
	system := fmt.Sprintf(questionSystem, jobDescription)
	if len(history) > 0 {
		system += "\n\nPrevious questions and answers:\n" + Transcript(history)
	}
	return llm.CompletionRequest{
		SystemPrompt: system,
		Messages: []llm.Message{{
			Role:    "user",
			Content: fmt.Sprintf("This is question #%d. Generate a relevant technical question based on the job description.", questionNumber),
		}},
		Temperature: 0,
	}
}

// Feedback builds the request for the final evaluation narrative.
func Feedback(jobDescription string, history []QA) llm.CompletionRequest {
	return llm.CompletionRequest{
		SystemPrompt: "You are an AI interview evaluator.",
		Messages: []llm.Message{{
			Role:    "user",
			Content: fmt.Sprintf(feedbackFormat, jobDescription, Transcript(history)),
		}},
		Temperature: 0,
	}
}

// Score builds the request for the structured score payload.
func Score(jobDescription string, history []QA) llm.CompletionRequest {
	return llm.CompletionRequest{
		SystemPrompt: "You are an AI providing structured evaluation.",
		Messages: []llm.Message{{
			Role:    "user",
			Content: fmt.Sprintf(scoreFormat, jobDescription, Transcript(history)),
		}},
		Temperature: 0,
	}
}
