package formatter

import (
	"sort"
	"strings"

	"github.com/execution-hub/supervisor/internal/domain/worker"
)

// Shape builds task.parameters for one worker.
type Shape interface {
	Kind() worker.ShapeKind
	Build(params map[string]interface{}, text string) map[string]interface{}
}

// Structured produces {agent_name, intent, payload{...}}.
type Structured struct {
	AgentName string
	Intent    string
	TextField string
	FieldMap  map[string]string
}

// Simple produces {request, data{...}}.
type Simple struct {
	TextField string
	FieldMap  map[string]string
}

// Default produces {request, parameters}.
type Default struct{}

func (Structured) Kind() worker.ShapeKind { return worker.ShapeStructured }
func (Simple) Kind() worker.ShapeKind     { return worker.ShapeSimple }
func (Default) Kind() worker.ShapeKind    { return worker.ShapeDefault }

func (s Structured) Build(params map[string]interface{}, text string) map[string]interface{} {
	return map[string]interface{}{
		"agent_name": s.AgentName,
		"intent":     s.Intent,
		"payload":    mapFields(params, s.FieldMap, s.TextField, text),
	}
}

func (s Simple) Build(params map[string]interface{}, text string) map[string]interface{} {
	return map[string]interface{}{
		"request": text,
		"data":    mapFields(params, s.FieldMap, s.TextField, text),
	}
}

func (Default) Build(params map[string]interface{}, text string) map[string]interface{} {
	copied := make(map[string]interface{}, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return map[string]interface{}{
		"request":    text,
		"parameters": copied,
	}
}

// ShapeFor turns a worker's catalogue entry into its Shape.
func ShapeFor(w worker.Descriptor) Shape {
	spec := w.Payload
	switch spec.Kind {
	case worker.ShapeStructured:
		s := Structured{
			AgentName: spec.AgentName,
			Intent:    spec.Intent,
			TextField: spec.TextField,
			FieldMap:  spec.FieldMap,
		}
		if s.AgentName == "" {
			s.AgentName = w.ID
		}
		if s.Intent == "" {
			s.Intent = w.Task()
		}
		return s
	case worker.ShapeSimple:
		return Simple{TextField: spec.TextField, FieldMap: spec.FieldMap}
	default:
		return Default{}
	}
}

// mapFields places each param at its mapped path (dotted paths nest) or
// under its own name. The request text goes to textField unless a param
// already fills it.
func mapFields(params map[string]interface{}, fieldMap map[string]string, textField, text string) map[string]interface{} {
	out := map[string]interface{}{}
	if textField != "" {
		setPath(out, textField, text)
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		dest := k
		if mapped, ok := fieldMap[k]; ok && mapped != "" {
			dest = mapped
		}
		setPath(out, dest, params[k])
	}
	return out
}

func setPath(m map[string]interface{}, path string, v interface{}) {
	parts := strings.Split(path, ".")
	cur := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}
