package validator

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/execution-hub/supervisor/internal/domain/intent"
	"github.com/execution-hub/supervisor/internal/domain/worker"
)

// Result lists the parameters still needed before dispatch, in the worker's
// declared order, with one question per parameter.
type Result struct {
	Missing             []string `json:"missing"`
	ClarifyingQuestions []string `json:"clarifying_questions"`
}

// Complete reports whether nothing is missing.
func (r *Result) Complete() bool {
	return len(r.Missing) == 0
}

func (r *Result) add(param, question string) {
	r.Missing = append(r.Missing, param)
	r.ClarifyingQuestions = append(r.ClarifyingQuestions, question)
}

// Validator checks extracted parameters against a worker's requirements.
// It does not modify params.
type Validator struct {
	registry worker.Registry
	logger   zerolog.Logger
}

func NewValidator(registry worker.Registry, logger zerolog.Logger) *Validator {
	return &Validator{
		registry: registry,
		logger:   logger.With().Str("service", "validator").Logger(),
	}
}

func (v *Validator) Validate(workerID string, params map[string]interface{}) (*Result, error) {
	w, err := v.registry.Lookup(workerID)
	if err != nil {
		return nil, err
	}
	res := &Result{Missing: []string{}, ClarifyingQuestions: []string{}}

	for _, name := range w.RequiredParams {
		val, ok := params[name]
		if !ok || intent.IsEmptyValue(val) {
			res.add(name, Question(w, name))
			continue
		}
		if !v.passes(w, name, val, params) {
			res.add(name, invalidQuestion(w, name))
		}
	}
	for _, name := range w.OptionalParams {
		val, ok := params[name]
		if !ok || intent.IsEmptyValue(val) {
			continue
		}
		if !v.passes(w, name, val, params) {
			res.add(name, invalidQuestion(w, name))
		}
	}
	return res, nil
}

func (v *Validator) passes(w worker.Descriptor, name string, val interface{}, params map[string]interface{}) bool {
	rule, ok := w.ParamRules[name]
	if !ok {
		return true
	}
	passed, err := EvaluateRule(rule, val, params)
	if err != nil {
		v.logger.Warn().Err(err).
			Str("worker_id", w.ID).
			Str("param", name).
			Msg("param rule could not be evaluated")
		return false
	}
	return passed
}

// Question returns the clarifying question for a missing parameter.
func Question(w worker.Descriptor, param string) string {
	if q := strings.TrimSpace(w.Questions[param]); q != "" {
		return q
	}
	return fmt.Sprintf("What %s would you like?", humanize(param))
}

func invalidQuestion(w worker.Descriptor, param string) string {
	return fmt.Sprintf("The %s you gave is not valid. %s", humanize(param), Question(w, param))
}

func humanize(param string) string {
	return strings.TrimSpace(strings.ReplaceAll(param, "_", " "))
}
