package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/execution-hub/supervisor/internal/domain/intent"
	"github.com/execution-hub/supervisor/internal/domain/worker"
)

const maxCandidates = 3

// Classifier decides which worker should handle a request.
type Classifier interface {
	Classify(ctx context.Context, req intent.TaskRequest, reg worker.Registry) (*intent.Decision, error)
}

// RuleConfig tunes the keyword path.
type RuleConfig struct {
	// MinScore is the lowest overlap count that may select a worker.
	MinScore int
	// Margin is how far the best score must lead the runner-up.
	Margin int
}

// RuleClassifier selects workers by keyword overlap. It never picks between
// tied workers.
type RuleClassifier struct {
	cfg RuleConfig
}

func NewRuleClassifier(cfg RuleConfig) *RuleClassifier {
	if cfg.MinScore <= 0 {
		cfg.MinScore = 1
	}
	if cfg.Margin <= 0 {
		cfg.Margin = 1
	}
	return &RuleClassifier{cfg: cfg}
}

func (c *RuleClassifier) Classify(ctx context.Context, req intent.TaskRequest, reg worker.Registry) (*intent.Decision, error) {
	tokens := intent.Tokenize(req.Text)
	matches := reg.MatchByKeyword(tokens)

	d := &intent.Decision{
		Method:          intent.MethodKeyword,
		ExtractedParams: map[string]interface{}{},
		Candidates:      topCandidates(matches),
	}
	if len(matches) == 0 {
		d.Method = intent.MethodNone
		d.IsAmbiguous = true
		return d, nil
	}

	top := matches[0]
	runnerUp := 0
	if len(matches) > 1 {
		runnerUp = matches[1].Score
	}
	d.Confidence = overlapRatio(top.Score, tokens)
	if top.Score < c.cfg.MinScore || top.Score-runnerUp < c.cfg.Margin {
		d.IsAmbiguous = true
		return d, nil
	}
	d.WorkerID = top.Worker.ID
	d.ExtractedParams = ExtractParams(top.Worker, req.Text)
	return d, nil
}

// AssistClassifier delegates to a generative assist.
type AssistClassifier struct {
	assist        intent.Assist
	minConfidence float64
	timeout       time.Duration
}

func NewAssistClassifier(assist intent.Assist, minConfidence float64, timeout time.Duration) *AssistClassifier {
	return &AssistClassifier{
		assist:        assist,
		minConfidence: intent.ClampConfidence(minConfidence),
		timeout:       timeout,
	}
}

func (c *AssistClassifier) Classify(ctx context.Context, req intent.TaskRequest, reg worker.Registry) (*intent.Decision, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	res, err := c.assist.ClassifyWithAssist(ctx, reg.All(), req.Text)
	if err != nil {
		return nil, fmt.Errorf("assist classification failed: %w", err)
	}
	d := &intent.Decision{
		Method:          intent.MethodAssist,
		ExtractedParams: map[string]interface{}{},
	}
	if res == nil || res.WorkerID == "" {
		d.IsAmbiguous = true
		return d, nil
	}
	w, err := reg.Lookup(res.WorkerID)
	if err != nil {
		return nil, fmt.Errorf("assist chose %q: %w", res.WorkerID, err)
	}
	d.Confidence = intent.ClampConfidence(res.Confidence)
	d.ExtractedParams = intent.MergeParams(res.ExtractedParams, ExtractParams(w, req.Text))
	d.Candidates = []intent.Candidate{{WorkerID: w.ID, DisplayName: w.Name()}}
	if d.Confidence < c.minConfidence {
		d.IsAmbiguous = true
		return d, nil
	}
	d.WorkerID = w.ID
	return d, nil
}

// Chain runs the keyword path first and falls back to the assist when the
// keywords do not settle on one worker. Assist failures are logged, not returned.
type Chain struct {
	rule   Classifier
	assist Classifier
	logger zerolog.Logger
}

// NewChain composes the two paths. assist may be nil.
func NewChain(rule, assist Classifier, logger zerolog.Logger) *Chain {
	return &Chain{
		rule:   rule,
		assist: assist,
		logger: logger.With().Str("service", "classifier").Logger(),
	}
}

func (c *Chain) Classify(ctx context.Context, req intent.TaskRequest, reg worker.Registry) (*intent.Decision, error) {
	d, err := c.rule.Classify(ctx, req, reg)
	if err != nil {
		return nil, err
	}
	if !d.IsAmbiguous {
		return d, nil
	}

	if c.assist != nil && ctx.Err() == nil {
		ad, err := c.assist.Classify(ctx, req, reg)
		switch {
		case err != nil:
			c.logger.Warn().Err(err).Msg("assist unavailable, using keyword decision")
		case !ad.IsAmbiguous:
			return ad, nil
		default:
			d.Candidates = mergeCandidates(d.Candidates, ad.Candidates)
			if ad.Confidence > d.Confidence {
				d.Confidence = ad.Confidence
			}
		}
	}

	d.WorkerID = ""
	d.IsAmbiguous = true
	d.ClarifyingQuestions = RoutingQuestions(d.Candidates)
	return d, nil
}

// RoutingQuestions asks the caller to pick among candidates.
func RoutingQuestions(candidates []intent.Candidate) []string {
	if len(candidates) == 0 {
		return []string{"I couldn't match your request to an available service. Could you describe what you need in more detail?"}
	}
	names := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		if cand.DisplayName != "" && cand.DisplayName != cand.WorkerID {
			names = append(names, fmt.Sprintf("%s (%s)", cand.DisplayName, cand.WorkerID))
		} else {
			names = append(names, cand.WorkerID)
		}
	}
	return []string{"Which of the following did you mean: " + strings.Join(names, ", ") + "?"}
}

// topCandidates keeps every worker tied for first place and fills up to
// maxCandidates with the next best.
func topCandidates(matches []worker.Match) []intent.Candidate {
	var out []intent.Candidate
	for i, m := range matches {
		if i >= maxCandidates && m.Score < matches[0].Score {
			break
		}
		out = append(out, intent.Candidate{
			WorkerID:    m.Worker.ID,
			DisplayName: m.Worker.Name(),
			Score:       m.Score,
		})
	}
	return out
}

func mergeCandidates(base, extra []intent.Candidate) []intent.Candidate {
	seen := make(map[string]struct{}, len(base))
	for _, c := range base {
		seen[c.WorkerID] = struct{}{}
	}
	for _, c := range extra {
		if _, ok := seen[c.WorkerID]; ok {
			continue
		}
		base = append(base, c)
	}
	return base
}

// overlapRatio is the share of distinct request words that hit a keyword.
func overlapRatio(score int, tokens map[string]struct{}) float64 {
	words := make(map[string]struct{}, len(tokens))
	for t := range tokens {
		words[intent.NormalizeWord(t)] = struct{}{}
	}
	if len(words) == 0 {
		return 0
	}
	return intent.ClampConfidence(float64(score) / float64(len(words)))
}
