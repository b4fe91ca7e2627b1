package validator

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/Knetic/govaluate"
)

var ruleCache sync.Map

// CompileRule parses a param rule expression.
func CompileRule(rule string) (*govaluate.EvaluableExpression, error) {
	rule = strings.TrimSpace(rule)
	if v, ok := ruleCache.Load(rule); ok {
		return v.(*govaluate.EvaluableExpression), nil
	}
	expr, err := govaluate.NewEvaluableExpression(rule)
	if err != nil {
		return nil, err
	}
	ruleCache.Store(rule, expr)
	return expr, nil
}

// EvaluateRule evaluates rule against params. The checked value is also
// bound as "value". Empty rules pass.
func EvaluateRule(rule string, value interface{}, params map[string]interface{}) (bool, error) {
	if strings.TrimSpace(rule) == "" {
		return true, nil
	}
	expr, err := CompileRule(rule)
	if err != nil {
		return false, err
	}
	env := buildRuleParams(params)
	env["value"] = coerce(value)
	result, err := expr.Evaluate(env)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, errors.New("rule did not evaluate to boolean")
	}
	return b, nil
}

func buildRuleParams(params map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(params))
	flattenParams("", params, out)
	return out
}

func flattenParams(prefix string, m map[string]interface{}, out map[string]interface{}) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			out[key] = nested
			flattenParams(key, nested, out)
			continue
		}
		out[key] = coerce(v)
	}
}

// coerce turns numeric values into float64 so comparisons work for answers
// that arrived as text.
func coerce(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case string:
		s := strings.TrimSpace(n)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return n
	default:
		return v
	}
}
