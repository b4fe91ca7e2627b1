package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/execution-hub/supervisor/internal/application/classifier"
	"github.com/execution-hub/supervisor/internal/application/formatter"
	"github.com/execution-hub/supervisor/internal/application/validator"
	"github.com/execution-hub/supervisor/internal/domain/dispatch"
	"github.com/execution-hub/supervisor/internal/domain/intent"
	"github.com/execution-hub/supervisor/internal/domain/message"
	"github.com/execution-hub/supervisor/internal/domain/worker"
)

// Config holds dispatch settings.
type Config struct {
	// Sender is the envelope sender name.
	Sender string
	// Timeout bounds one dispatch including transport retries.
	Timeout time.Duration
	// StaleAfter is how long an offline health reading short-circuits dispatch.
	// Zero disables fast-fail.
	StaleAfter time.Duration
}

// Submission is one caller turn.
type Submission struct {
	Text              string
	CallerContext     map[string]string
	ConversationState string
	Parameters        map[string]interface{}
}

// Outcome is the result of one turn. Exactly one of Questions, Report or Err
// is meaningful, depending on Stage.
type Outcome struct {
	Stage             dispatch.Stage            `json:"stage"`
	WorkerID          string                    `json:"workerId,omitempty"`
	Decision          *intent.Decision          `json:"decision,omitempty"`
	Questions         []string                  `json:"questions,omitempty"`
	Missing           []string                  `json:"missing,omitempty"`
	ConversationState string                    `json:"conversationState,omitempty"`
	MessageID         string                    `json:"messageId,omitempty"`
	Report            *message.CompletionReport `json:"report,omitempty"`
	Parameters        map[string]interface{}    `json:"parameters,omitempty"`
	Err               *dispatch.Error           `json:"-"`
}

// NeedsClarification reports whether the caller must answer questions.
func (o *Outcome) NeedsClarification() bool {
	return o.Stage == dispatch.StageAmbiguous || o.Stage == dispatch.StageAwaitingClarification
}

// Orchestrator runs classify, validate, format and send for one request.
type Orchestrator struct {
	registry   worker.Registry
	classifier classifier.Classifier
	validator  *validator.Validator
	formatter  *formatter.Formatter
	client     worker.Client
	codec      *intent.StateCodec
	publisher  dispatch.Publisher
	cfg        Config
	now        func() time.Time
	logger     zerolog.Logger
}

// NewOrchestrator creates an orchestrator. publisher may be nil.
func NewOrchestrator(
	registry worker.Registry,
	cls classifier.Classifier,
	val *validator.Validator,
	fmtr *formatter.Formatter,
	client worker.Client,
	codec *intent.StateCodec,
	publisher dispatch.Publisher,
	cfg Config,
	logger zerolog.Logger,
) *Orchestrator {
	if cfg.Sender == "" {
		cfg.Sender = "supervisor"
	}
	return &Orchestrator{
		registry:   registry,
		classifier: cls,
		validator:  val,
		formatter:  fmtr,
		client:     client,
		codec:      codec,
		publisher:  publisher,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger.With().Str("service", "orchestrator").Logger(),
	}
}

// IdentifyIntent classifies text without validating or dispatching.
func (o *Orchestrator) IdentifyIntent(ctx context.Context, text string, callerCtx map[string]string) (*intent.Decision, error) {
	d, err := o.classifier.Classify(ctx, intent.TaskRequest{Text: text, CallerContext: callerCtx}, o.registry)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}
	return d, nil
}

// Submit runs one turn. Clarifications and worker failures are reported in
// the Outcome; an error means the turn could not be processed at all
// (bad conversation state, cancellation, classifier failure).
func (o *Orchestrator) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	state, err := o.codec.Decode(sub.ConversationState)
	if err != nil {
		return nil, err
	}
	t := &turn{sub: sub, state: state}
	o.emit(t, dispatch.StageReceived, "")

	if err := o.resolve(ctx, t); err != nil {
		return nil, err
	}
	o.emit(t, dispatch.StageClassified, string(t.decision.Method))

	if t.decision.IsAmbiguous {
		return o.ambiguous(t)
	}
	return o.validateAndSend(ctx, t)
}

// turn carries one Submit call through the stages.
type turn struct {
	sub      Submission
	state    *intent.ConversationState
	decision *intent.Decision
	worker   worker.Descriptor
	params   map[string]interface{}
	text     string
	related  string
}

func (t *turn) nextTurn() int {
	if t.state == nil {
		return 1
	}
	return t.state.Turn + 1
}

func (o *Orchestrator) ambiguous(t *turn) (*Outcome, error) {
	ids := make([]string, 0, len(t.decision.Candidates))
	for _, c := range t.decision.Candidates {
		ids = append(ids, c.WorkerID)
	}
	token, err := o.codec.Encode(&intent.ConversationState{
		Pending:      intent.PendingRouting,
		Params:       t.params,
		Candidates:   ids,
		OriginalText: t.text,
		Turn:         t.nextTurn(),
		IssuedAt:     o.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	o.emit(t, dispatch.StageAmbiguous, "")
	return &Outcome{
		Stage:             dispatch.StageAmbiguous,
		Decision:          t.decision,
		Questions:         t.decision.ClarifyingQuestions,
		ConversationState: token,
		Parameters:        t.params,
	}, nil
}

func (o *Orchestrator) validateAndSend(ctx context.Context, t *turn) (*Outcome, error) {
	w, err := o.registry.Lookup(t.decision.WorkerID)
	if err != nil {
		return nil, err
	}
	t.worker = w
	o.emit(t, dispatch.StageValidating, "")

	res, err := o.validator.Validate(w.ID, t.params)
	if err != nil {
		return nil, err
	}
	if !res.Complete() {
		return o.awaitParams(t, res.Missing, res.ClarifyingQuestions, t.related)
	}

	payload := o.formatter.Format(w.ID, t.params, t.text)
	env := message.NewTaskEnvelope(o.cfg.Sender, w.ID, w.Task(), payload)
	if t.related != "" {
		env.SetRelated(t.related)
	}
	o.emit(t, dispatch.StageReady, "")

	if o.recentlyOffline(w) {
		return o.fail(t, env.MessageID, dispatch.Unreachable(w.ID, dispatch.ErrWorkerOffline)), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.emitMessage(t, dispatch.StageDispatched, env.MessageID, "")
	start := o.now()
	report, err := o.client.Send(ctx, w, env, o.cfg.Timeout)
	if err != nil {
		var de *dispatch.Error
		if !errors.As(err, &de) {
			if cerr := ctx.Err(); cerr != nil {
				// The caller left; the worker's health is unknown, not offline.
				o.logger.Info().
					Str("worker_id", w.ID).
					Str("message_id", env.MessageID).
					Err(cerr).
					Msg("dispatch abandoned by caller")
				o.emitMessage(t, dispatch.StageFailed, env.MessageID, "cancelled")
				return nil, cerr
			}
			de = dispatch.Unreachable(w.ID, err)
		}
		o.recordFailureHealth(de)
		return o.fail(t, env.MessageID, de), nil
	}
	o.logger.Info().
		Str("worker_id", w.ID).
		Str("message_id", env.MessageID).
		Str("status", string(report.Status)).
		Int("duration_ms", int(o.now().Sub(start).Milliseconds())).
		Msg("worker report received")

	switch report.Status {
	case message.StatusSuccess:
		o.emitMessage(t, dispatch.StageCompleted, env.MessageID, "")
		return &Outcome{
			Stage:      dispatch.StageCompleted,
			WorkerID:   w.ID,
			Decision:   t.decision,
			MessageID:  env.MessageID,
			Report:     report,
			Parameters: t.params,
		}, nil
	case message.StatusNeedsInfo:
		questions := report.Questions()
		if len(questions) == 0 {
			questions = []string{"Could you give more detail for " + w.Name() + "?"}
		}
		return o.awaitParams(t, nil, questions, env.MessageID)
	default:
		out := o.fail(t, env.MessageID, dispatch.ReportedFailure(w.ID, report.ErrorDetail()))
		out.Report = report
		return out, nil
	}
}

func (o *Orchestrator) awaitParams(t *turn, missing, questions []string, lastMessageID string) (*Outcome, error) {
	token, err := o.codec.Encode(&intent.ConversationState{
		Pending:       intent.PendingParameters,
		WorkerID:      t.worker.ID,
		Params:        t.params,
		Missing:       missing,
		OriginalText:  t.text,
		LastMessageID: lastMessageID,
		Turn:          t.nextTurn(),
		IssuedAt:      o.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	o.emitMessage(t, dispatch.StageAwaitingClarification, lastMessageID, strings.Join(missing, ","))
	return &Outcome{
		Stage:             dispatch.StageAwaitingClarification,
		WorkerID:          t.worker.ID,
		Decision:          t.decision,
		Questions:         questions,
		Missing:           missing,
		ConversationState: token,
		MessageID:         lastMessageID,
		Parameters:        t.params,
	}, nil
}

func (o *Orchestrator) fail(t *turn, messageID string, de *dispatch.Error) *Outcome {
	evt := o.logger.Warn()
	if de.Kind == dispatch.KindWorkerProtocolViolation {
		evt = o.logger.Error()
	}
	evt.Str("worker_id", de.WorkerID).
		Str("message_id", messageID).
		Str("kind", string(de.Kind)).
		Str("reason", de.Reason).
		Msg("dispatch failed")
	o.emitMessage(t, dispatch.StageFailed, messageID, string(de.Kind))
	return &Outcome{
		Stage:      dispatch.StageFailed,
		WorkerID:   de.WorkerID,
		Decision:   t.decision,
		MessageID:  messageID,
		Err:        de,
		Parameters: t.params,
	}
}

// recentlyOffline reports whether the last health check found the worker
// offline and is younger than StaleAfter.
func (o *Orchestrator) recentlyOffline(w worker.Descriptor) bool {
	if o.cfg.StaleAfter <= 0 || w.Health != worker.HealthOffline || w.LastChecked == nil {
		return false
	}
	return o.now().Sub(*w.LastChecked) < o.cfg.StaleAfter
}

func (o *Orchestrator) recordFailureHealth(de *dispatch.Error) {
	var h worker.Health
	switch de.Kind {
	case dispatch.KindWorkerUnreachable:
		h = worker.HealthOffline
	case dispatch.KindWorkerProtocolViolation:
		h = worker.HealthDegraded
	default:
		return
	}
	if err := o.registry.UpdateHealth(de.WorkerID, h, o.now()); err != nil {
		o.logger.Warn().Err(err).Str("worker_id", de.WorkerID).Msg("failed to record worker health")
	}
}

func (o *Orchestrator) emit(t *turn, stage dispatch.Stage, reason string) {
	o.emitMessage(t, stage, "", reason)
}

func (o *Orchestrator) emitMessage(t *turn, stage dispatch.Stage, messageID, reason string) {
	workerID := t.worker.ID
	if workerID == "" && t.decision != nil {
		workerID = t.decision.WorkerID
	}
	o.logger.Debug().
		Str("stage", string(stage)).
		Str("worker_id", workerID).
		Str("message_id", messageID).
		Msg("dispatch stage")
	if o.publisher == nil {
		return
	}
	o.publisher.Publish(dispatch.Event{
		RequestID: t.sub.CallerContext[CallerRequestID],
		UserID:    t.sub.CallerContext[CallerUserID],
		Stage:     stage,
		WorkerID:  workerID,
		MessageID: messageID,
		Reason:    reason,
		At:        o.now().UTC(),
	})
}

// Caller context keys understood by the orchestrator.
const (
	CallerRequestID = "request_id"
	CallerUserID    = "user_id"
	CallerSessionID = "session_id"
)
