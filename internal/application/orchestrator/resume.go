package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/execution-hub/supervisor/internal/application/classifier"
	"github.com/execution-hub/supervisor/internal/domain/intent"
)

// resolve settles which worker the turn is for, either by classifying or by
// continuing the dialogue in the conversation state.
func (o *Orchestrator) resolve(ctx context.Context, t *turn) error {
	text := strings.TrimSpace(t.sub.Text)
	switch {
	case t.state == nil:
		return o.classify(ctx, t, text, nil)
	case t.state.Pending == intent.PendingParameters:
		return o.resumeParameters(t, text)
	default:
		return o.resumeRouting(ctx, t, text)
	}
}

func (o *Orchestrator) classify(ctx context.Context, t *turn, text string, carried map[string]interface{}) error {
	d, err := o.classifier.Classify(ctx, intent.TaskRequest{
		Text:          text,
		CallerContext: t.sub.CallerContext,
		State:         t.state,
		Parameters:    t.sub.Parameters,
	}, o.registry)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}
	t.decision = d
	t.text = text
	t.params = intent.MergeParams(intent.MergeParams(carried, d.ExtractedParams), t.sub.Parameters)
	return nil
}

// resumeParameters fills pending params from, in order: explicit parameters,
// param patterns on the answer, and finally the answer text itself for the
// first pending param.
func (o *Orchestrator) resumeParameters(t *turn, text string) error {
	w, err := o.registry.Lookup(t.state.WorkerID)
	if err != nil {
		return fmt.Errorf("%w: %v", intent.ErrInvalidState, err)
	}
	params := intent.MergeParams(t.state.Params, t.sub.Parameters)

	answered := false
	var open []string
	for _, name := range t.state.Missing {
		if !intent.IsEmptyValue(t.sub.Parameters[name]) {
			answered = true
			continue
		}
		open = append(open, name)
	}
	if text != "" && len(open) > 0 {
		extracted := classifier.ExtractParams(w, text)
		var still []string
		for _, name := range open {
			if v, ok := extracted[name]; ok {
				params[name] = v
				answered = true
				continue
			}
			still = append(still, name)
		}
		if !answered && len(still) > 0 {
			params[still[0]] = text
		}
	}

	t.worker = w
	t.params = params
	t.text = t.state.OriginalText
	if len(t.state.Missing) == 0 && text != "" {
		// The worker asked for more detail; the answer extends the request.
		t.text = strings.TrimSpace(t.state.OriginalText + "\n" + text)
	}
	t.related = t.state.LastMessageID
	t.decision = &intent.Decision{
		WorkerID:        w.ID,
		Confidence:      1,
		ExtractedParams: params,
		Method:          intent.MethodConversation,
	}
	return nil
}

// resumeRouting binds the worker the caller picked, or re-classifies the
// original request together with the new text.
func (o *Orchestrator) resumeRouting(ctx context.Context, t *turn, text string) error {
	if id, ok := o.pickCandidate(t.state.Candidates, text); ok {
		w, err := o.registry.Lookup(id)
		if err != nil {
			return fmt.Errorf("%w: %v", intent.ErrInvalidState, err)
		}
		params := intent.MergeParams(t.state.Params, classifier.ExtractParams(w, t.state.OriginalText))
		params = intent.MergeParams(params, t.sub.Parameters)
		t.text = t.state.OriginalText
		t.params = params
		t.decision = &intent.Decision{
			WorkerID:        w.ID,
			Confidence:      1,
			ExtractedParams: params,
			Method:          intent.MethodConversation,
		}
		return nil
	}
	combined := strings.TrimSpace(t.state.OriginalText + " " + text)
	return o.classify(ctx, t, combined, t.state.Params)
}

// pickCandidate matches an answer against candidate ids, display names or
// 1-based positions.
func (o *Orchestrator) pickCandidate(candidates []string, answer string) (string, bool) {
	a := strings.ToLower(strings.Trim(strings.TrimSpace(answer), ".!?\"'"))
	if a == "" || len(candidates) == 0 {
		return "", false
	}
	if n, err := strconv.Atoi(a); err == nil {
		if n >= 1 && n <= len(candidates) {
			return candidates[n-1], true
		}
		return "", false
	}
	for _, id := range candidates {
		if strings.ToLower(id) == a {
			return id, true
		}
		w, err := o.registry.Lookup(id)
		if err != nil {
			continue
		}
		if w.DisplayName != "" && strings.ToLower(w.DisplayName) == a {
			return id, true
		}
	}
	return "", false
}
