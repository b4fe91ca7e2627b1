package dispatch

import "time"

// Stage is a step of the dispatch state machine.
type Stage string

const (
	StageReceived              Stage = "RECEIVED"
	StageClassified            Stage = "CLASSIFIED"
	StageAmbiguous             Stage = "AMBIGUOUS"
	StageValidating            Stage = "VALIDATING"
	StageAwaitingClarification Stage = "AWAITING_CLARIFICATION"
	StageReady                 Stage = "READY"
	StageDispatched            Stage = "DISPATCHED"
	StageCompleted             Stage = "COMPLETED"
	StageFailed                Stage = "FAILED"
)

// Terminal reports whether the stage ends the current turn.
func (s Stage) Terminal() bool {
	switch s {
	case StageAmbiguous, StageAwaitingClarification, StageCompleted, StageFailed:
		return true
	}
	return false
}

// Event records a stage transition.
type Event struct {
	RequestID string    `json:"requestId,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	Stage     Stage     `json:"stage"`
	WorkerID  string    `json:"workerId,omitempty"`
	MessageID string    `json:"messageId,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher receives stage events. Implementations must not block.
type Publisher interface {
	Publish(ev Event)
}
