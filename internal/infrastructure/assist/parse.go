package assist

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/execution-hub/supervisor/internal/domain/intent"
)

var ErrUnparseable = errors.New("assist output is not a routing decision")

type routeReply struct {
	AgentID    string                 `json:"agent_id"`
	AgentIDAlt string                 `json:"agentId"`
	Confidence interface{}            `json:"confidence"`
	Parameters map[string]interface{} `json:"parameters"`
}

// ParseResult extracts the JSON object between the first '{' and the last
// '}' of output. Ids not in valid are dropped, leaving an empty decision.
func ParseResult(output string, valid map[string]struct{}) (*intent.AssistResult, error) {
	start := strings.Index(output, "{")
	end := strings.LastIndex(output, "}")
	if start < 0 || end <= start {
		return nil, ErrUnparseable
	}
	var reply routeReply
	if err := json.Unmarshal([]byte(output[start:end+1]), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	id := strings.TrimSpace(reply.AgentID)
	if id == "" {
		id = strings.TrimSpace(reply.AgentIDAlt)
	}
	if _, ok := valid[id]; !ok {
		return &intent.AssistResult{ExtractedParams: map[string]interface{}{}}, nil
	}
	params := reply.Parameters
	if params == nil {
		params = map[string]interface{}{}
	}
	return &intent.AssistResult{
		WorkerID:        id,
		Confidence:      parseConfidence(reply.Confidence),
		ExtractedParams: params,
	}, nil
}

// parseConfidence accepts numbers, numeric strings and high/medium/low.
func parseConfidence(v interface{}) float64 {
	switch c := v.(type) {
	case float64:
		return intent.ClampConfidence(c)
	case string:
		s := strings.ToLower(strings.TrimSpace(c))
		switch s {
		case "high":
			return 0.9
		case "medium":
			return 0.6
		case "low":
			return 0.3
		}
		if f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64); err == nil {
			if strings.HasSuffix(s, "%") || f > 1 {
				f /= 100
			}
			return intent.ClampConfidence(f)
		}
	}
	return 0
}

func encodeMap(m map[string]interface{}) string {
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}
