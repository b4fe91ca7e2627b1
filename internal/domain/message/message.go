package message

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Status represents the outcome a worker reports for a task.
type Status string

const (
	StatusSuccess   Status = "SUCCESS"
	StatusFailure   Status = "FAILURE"
	StatusNeedsInfo Status = "NEEDS_INFO"
)

// Task is the unit of work carried by an envelope.
type Task struct {
	Name       string                 `json:"name"`
	Parameters map[string]interface{} `json:"parameters"`
}

// TaskEnvelope is the request sent to a worker's /process endpoint.
type TaskEnvelope struct {
	MessageID        string `json:"message_id"`
	Sender           string `json:"sender"`
	Recipient        string `json:"recipient"`
	RelatedMessageID string `json:"related_message_id,omitempty"`
	Task             Task   `json:"task"`
}

// CompletionReport is the response a worker returns for an envelope.
type CompletionReport struct {
	MessageID        string                 `json:"message_id"`
	Sender           string                 `json:"sender"`
	Recipient        string                 `json:"recipient"`
	RelatedMessageID string                 `json:"related_message_id"`
	Status           Status                 `json:"status"`
	Results          map[string]interface{} `json:"results,omitempty"`
	Error            *string                `json:"error,omitempty"`
}

var (
	ErrCorrelationMissing  = errors.New("completion report has no related_message_id")
	ErrCorrelationMismatch = errors.New("completion report does not reference the sent envelope")
	ErrUnknownStatus       = errors.New("completion report has an unknown status")
)

// NewTaskEnvelope creates an envelope with a fresh message id.
func NewTaskEnvelope(sender, recipient, taskName string, params map[string]interface{}) *TaskEnvelope {
	if params == nil {
		params = map[string]interface{}{}
	}
	return &TaskEnvelope{
		MessageID: uuid.New().String(),
		Sender:    sender,
		Recipient: recipient,
		Task: Task{
			Name:       taskName,
			Parameters: params,
		},
	}
}

// SetRelated marks the envelope as a follow-up to a prior message.
func (e *TaskEnvelope) SetRelated(messageID string) {
	e.RelatedMessageID = messageID
}

// ParseStatus maps the status spellings used by workers onto Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success", "succeeded", "completed", "ok":
		return StatusSuccess, nil
	case "failure", "failed", "error":
		return StatusFailure, nil
	case "needs_info", "needs-info", "clarification_needed":
		return StatusNeedsInfo, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// CheckCorrelation verifies the report answers the given envelope.
// When allowMissing is set an absent related id is filled in.
func (r *CompletionReport) CheckCorrelation(env *TaskEnvelope, allowMissing bool) error {
	if r.RelatedMessageID == "" {
		if !allowMissing {
			return ErrCorrelationMissing
		}
		r.RelatedMessageID = env.MessageID
		return nil
	}
	if r.RelatedMessageID != env.MessageID {
		return fmt.Errorf("%w: got %s, sent %s", ErrCorrelationMismatch, r.RelatedMessageID, env.MessageID)
	}
	return nil
}

// ErrorDetail returns the failure reason carried by the report.
func (r *CompletionReport) ErrorDetail() string {
	if r.Error != nil && *r.Error != "" {
		return *r.Error
	}
	if r.Results != nil {
		if v, ok := r.Results["error"].(string); ok && v != "" {
			return v
		}
		if v, ok := r.Results["output"].(string); ok && v != "" {
			return v
		}
	}
	return "worker reported failure"
}

// Questions extracts clarifying questions from a NEEDS_INFO report.
func (r *CompletionReport) Questions() []string {
	if r.Results == nil {
		return nil
	}
	var out []string
	switch v := r.Results["clarifying_questions"].(type) {
	case []interface{}:
		for _, q := range v {
			if s, ok := q.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, v...)
	case string:
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		if s, ok := r.Results["output"].(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
