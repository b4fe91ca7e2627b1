package assist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/execution-hub/supervisor/internal/application/formatter"
	"github.com/execution-hub/supervisor/internal/domain/intent"
	"github.com/execution-hub/supervisor/internal/domain/message"
	"github.com/execution-hub/supervisor/internal/domain/worker"
)

const taskName = "classify_intent"

var ErrNoOutput = errors.New("assist returned no output")

// WorkerAssist classifies requests by asking the LLM wrapper worker.
type WorkerAssist struct {
	registry  worker.Registry
	client    worker.Client
	formatter *formatter.Formatter
	workerID  string
	sender    string
	timeout   time.Duration
	logger    zerolog.Logger
}

func NewWorkerAssist(
	registry worker.Registry,
	client worker.Client,
	fmtr *formatter.Formatter,
	workerID, sender string,
	timeout time.Duration,
	logger zerolog.Logger,
) *WorkerAssist {
	return &WorkerAssist{
		registry:  registry,
		client:    client,
		formatter: fmtr,
		workerID:  workerID,
		sender:    sender,
		timeout:   timeout,
		logger:    logger.With().Str("service", "assist").Logger(),
	}
}

func (a *WorkerAssist) ClassifyWithAssist(ctx context.Context, catalogue []worker.Descriptor, text string) (*intent.AssistResult, error) {
	w, err := a.registry.Lookup(a.workerID)
	if err != nil {
		return nil, fmt.Errorf("assist worker: %w", err)
	}
	prompt := BuildPrompt(catalogue, text)
	params := a.formatter.Format(w.ID, map[string]interface{}{"prompt": prompt}, prompt)
	env := message.NewTaskEnvelope(a.sender, w.ID, taskName, params)

	report, err := a.client.Send(ctx, w, env, a.timeout)
	if err != nil {
		return nil, err
	}
	if report.Status != message.StatusSuccess {
		return nil, fmt.Errorf("assist worker reported %s: %s", report.Status, report.ErrorDetail())
	}
	output := outputText(report.Results)
	if output == "" {
		return nil, ErrNoOutput
	}

	valid := make(map[string]struct{}, len(catalogue))
	for _, d := range catalogue {
		valid[d.ID] = struct{}{}
	}
	res, err := ParseResult(output, valid)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().
		Str("worker_id", res.WorkerID).
		Float64("confidence", res.Confidence).
		Msg("assist classified request")
	return res, nil
}

// BuildPrompt renders the routing prompt. Workers are listed by id so the
// prompt is stable for a given catalogue.
func BuildPrompt(catalogue []worker.Descriptor, text string) string {
	sorted := append([]worker.Descriptor(nil), catalogue...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	lines := make([]string, 0, len(sorted))
	ids := make([]string, 0, len(sorted))
	for _, d := range sorted {
		desc := d.Description
		if desc == "" {
			desc = "(no description)"
		}
		line := fmt.Sprintf("- %s (%s): %s", d.ID, d.Name(), desc)
		if terms := d.Terms(); len(terms) > 0 {
			line += " [keywords: " + strings.Join(terms, ", ") + "]"
		}
		if len(d.RequiredParams) > 0 {
			line += " [required: " + strings.Join(d.RequiredParams, ", ") + "]"
		}
		if len(d.OptionalParams) > 0 {
			line += " [optional: " + strings.Join(d.OptionalParams, ", ") + "]"
		}
		lines = append(lines, line)
		ids = append(ids, d.ID)
	}

	return fmt.Sprintf(
		`You are a request router. Given a user request, decide which service should handle it and extract its parameters.

Available services:
%s

IMPORTANT: "agent_id" MUST be one of these exact ids: %s

User request: %s

Reply with ONLY a JSON object (no markdown, no explanation):
{"agent_id":"<exact_id>","confidence":<number between 0 and 1>,"parameters":{"<param>":"<value>"}}

If no service is clearly appropriate, use an empty agent_id and confidence 0.`,
		strings.Join(lines, "\n"),
		strings.Join(ids, ", "),
		text,
	)
}

func outputText(results map[string]interface{}) string {
	for _, key := range []string{"output", "response", "text", "data"} {
		switch v := results[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case map[string]interface{}:
			if _, ok := v["agent_id"]; ok {
				return encodeMap(v)
			}
		}
	}
	if _, ok := results["agent_id"]; ok {
		return encodeMap(results)
	}
	return ""
}
