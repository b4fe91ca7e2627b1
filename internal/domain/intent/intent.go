package intent

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_assist.go -package=mocks . Assist

import (
	"context"

	"github.com/execution-hub/supervisor/internal/domain/worker"
)

// Method names how a decision was reached.
type Method string

const (
	MethodKeyword      Method = "keyword"
	MethodAssist       Method = "assist"
	MethodConversation Method = "conversation"
	MethodNone         Method = "none"
)

// TaskRequest is the inbound unit of work.
type TaskRequest struct {
	Text          string                 `json:"text"`
	CallerContext map[string]string      `json:"callerContext,omitempty"`
	State         *ConversationState     `json:"-"`
	Parameters    map[string]interface{} `json:"parameters,omitempty"`
}

// Candidate is a worker considered during classification.
type Candidate struct {
	WorkerID    string `json:"agent_id"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
}

// Decision is the classifier's answer for one request.
type Decision struct {
	WorkerID            string                 `json:"agent_id,omitempty"`
	Confidence          float64                `json:"confidence"`
	ExtractedParams     map[string]interface{} `json:"parameters"`
	IsAmbiguous         bool                   `json:"is_ambiguous"`
	ClarifyingQuestions []string               `json:"clarifying_questions,omitempty"`
	Method              Method                 `json:"method"`
	Candidates          []Candidate            `json:"candidates,omitempty"`
}

// AssistResult is what a generative assist returns.
type AssistResult struct {
	WorkerID        string
	Confidence      float64
	ExtractedParams map[string]interface{}
}

// Assist is an optional, untrusted classification collaborator.
type Assist interface {
	ClassifyWithAssist(ctx context.Context, catalogue []worker.Descriptor, text string) (*AssistResult, error)
}

// ClampConfidence bounds c to [0,1].
func ClampConfidence(c float64) float64 {
	if c != c || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// MergeParams copies base and overlays non-empty values from updates.
// Values already present in base are kept unless updates replaces them.
func MergeParams(base, updates map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(updates))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range updates {
		if IsEmptyValue(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// IsEmptyValue reports whether v counts as not supplied.
func IsEmptyValue(v interface{}) bool {
	switch vv := v.(type) {
	case nil:
		return true
	case string:
		for _, r := range vv {
			if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
				return false
			}
		}
		return true
	case []interface{}:
		return len(vv) == 0
	case map[string]interface{}:
		return len(vv) == 0
	default:
		return false
	}
}
