package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/execution-hub/supervisor/internal/application/orchestrator"
	"github.com/execution-hub/supervisor/internal/domain/dispatch"
	"github.com/execution-hub/supervisor/internal/domain/intent"
	"github.com/execution-hub/supervisor/internal/domain/message"
)

const (
	statusClarificationNeeded = "clarification_needed"
	statusCompleted           = "completed"
	statusFailed              = "failed"
)

type supervisorRequest struct {
	Request           string                 `json:"request"`
	ConversationState string                 `json:"conversationState,omitempty"`
	Parameters        map[string]interface{} `json:"parameters,omitempty"`
	// Accepted and ignored.
	AutoRoute      *bool `json:"autoRoute,omitempty"`
	IncludeHistory *bool `json:"includeHistory,omitempty"`
}

type identifyIntentRequest struct {
	Query string `json:"query"`
}

type dispatchErrorBody struct {
	Code      dispatch.Kind `json:"code"`
	Message   string        `json:"message"`
	WorkerID  string        `json:"worker_id,omitempty"`
	Retriable bool          `json:"retriable"`
}

type supervisorResponse struct {
	Status              string                    `json:"status"`
	Stage               dispatch.Stage            `json:"stage"`
	AgentID             string                    `json:"agent_id,omitempty"`
	ClarifyingQuestions []string                  `json:"clarifying_questions,omitempty"`
	MissingParameters   []string                  `json:"missing_parameters,omitempty"`
	ConversationState   string                    `json:"conversationState,omitempty"`
	MessageID           string                    `json:"message_id,omitempty"`
	Result              map[string]interface{}    `json:"result,omitempty"`
	Report              *message.CompletionReport `json:"report,omitempty"`
	Parameters          map[string]interface{}    `json:"parameters,omitempty"`
	Decision            *intent.Decision          `json:"decision,omitempty"`
	Error               *dispatchErrorBody        `json:"error,omitempty"`
}

func (s *Server) submitRequest(w http.ResponseWriter, r *http.Request) {
	var req supervisorRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if strings.TrimSpace(req.Request) == "" && req.ConversationState == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "request is required")
		return
	}

	out, err := s.orchestrator.Submit(contextFromRequest(r), orchestrator.Submission{
		Text:              req.Request,
		CallerContext:     callerContextFrom(r.Context()),
		ConversationState: req.ConversationState,
		Parameters:        req.Parameters,
	})
	if err != nil {
		s.respondSubmitError(w, err)
		return
	}
	status, body := outcomeResponse(out)
	respondJSON(w, status, body)
}

func (s *Server) respondSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, intent.ErrInvalidState):
		respondError(w, http.StatusBadRequest, "INVALID_STATE", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "TIMEOUT", err.Error())
	case errors.Is(err, context.Canceled):
		respondError(w, http.StatusServiceUnavailable, "CANCELLED", err.Error())
	default:
		s.logger.Error().Err(err).Msg("submit failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// outcomeResponse maps a turn outcome to an HTTP status and body.
func outcomeResponse(out *orchestrator.Outcome) (int, supervisorResponse) {
	body := supervisorResponse{
		Stage:               out.Stage,
		AgentID:             out.WorkerID,
		ClarifyingQuestions: out.Questions,
		MissingParameters:   out.Missing,
		ConversationState:   out.ConversationState,
		MessageID:           out.MessageID,
		Report:              out.Report,
		Parameters:          out.Parameters,
		Decision:            out.Decision,
	}
	if out.Report != nil {
		body.Result = out.Report.Results
	}

	switch {
	case out.NeedsClarification():
		body.Status = statusClarificationNeeded
		return http.StatusOK, body
	case out.Stage == dispatch.StageCompleted:
		body.Status = statusCompleted
		return http.StatusOK, body
	}

	body.Status = statusFailed
	if out.Err == nil {
		return http.StatusInternalServerError, body
	}
	body.Error = &dispatchErrorBody{
		Code:      out.Err.Kind,
		Message:   out.Err.Reason,
		WorkerID:  out.Err.WorkerID,
		Retriable: out.Err.Retriable(),
	}
	if out.Err.Kind == dispatch.KindWorkerUnreachable {
		return http.StatusServiceUnavailable, body
	}
	return http.StatusBadGateway, body
}

func (s *Server) identifyIntent(w http.ResponseWriter, r *http.Request) {
	var req identifyIntentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "query is required")
		return
	}
	d, err := s.orchestrator.IdentifyIntent(contextFromRequest(r), req.Query, callerContextFrom(r.Context()))
	if err != nil {
		s.respondSubmitError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}
