package worker

import (
	"errors"
	"strings"
	"time"
)

// Health represents the last known health of a worker.
type Health string

const (
	HealthUnknown  Health = "UNKNOWN"
	HealthHealthy  Health = "HEALTHY"
	HealthDegraded Health = "DEGRADED"
	HealthOffline  Health = "OFFLINE"
)

// ShapeKind selects the task.parameters layout a worker expects.
type ShapeKind string

const (
	ShapeDefault    ShapeKind = ""
	ShapeStructured ShapeKind = "structured"
	ShapeSimple     ShapeKind = "simple"
)

// PayloadSpec is the catalogue form of a worker's payload shape.
type PayloadSpec struct {
	Kind      ShapeKind         `json:"kind,omitempty" yaml:"kind"`
	AgentName string            `json:"agentName,omitempty" yaml:"agent_name"`
	Intent    string            `json:"intent,omitempty" yaml:"intent"`
	TextField string            `json:"textField,omitempty" yaml:"text_field"`
	FieldMap  map[string]string `json:"fieldMap,omitempty" yaml:"field_map"`
}

// Descriptor describes a worker service known to the supervisor.
type Descriptor struct {
	ID                string            `json:"id"`
	DisplayName       string            `json:"displayName"`
	BaseURL           string            `json:"baseUrl"`
	Description       string            `json:"description,omitempty"`
	Capabilities      []string          `json:"capabilities,omitempty"`
	Keywords          []string          `json:"keywords,omitempty"`
	RequiredParams    []string          `json:"requiredParams,omitempty"`
	OptionalParams    []string          `json:"optionalParams,omitempty"`
	ParamPatterns     map[string]string `json:"paramPatterns,omitempty"`
	ParamRules        map[string]string `json:"paramRules,omitempty"`
	Questions         map[string]string `json:"questions,omitempty"`
	TaskName          string            `json:"taskName,omitempty"`
	AllowUncorrelated bool              `json:"allowUncorrelated,omitempty"`
	Payload           PayloadSpec       `json:"payload"`
	Health            Health            `json:"health"`
	LastChecked       *time.Time        `json:"lastChecked,omitempty"`
}

// Match is a worker together with its keyword overlap score.
type Match struct {
	Worker Descriptor
	Score  int
}

// DefaultTaskName is used when a worker does not name its task.
const DefaultTaskName = "process_request"

var (
	ErrNotFound  = errors.New("worker not found")
	ErrDuplicate = errors.New("worker already registered")
	ErrInvalid   = errors.New("invalid worker descriptor")
)

// Validate checks the fields the registry relies on.
func (d *Descriptor) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.Join(ErrInvalid, errors.New("id is required"))
	}
	if strings.TrimSpace(d.BaseURL) == "" {
		return errors.Join(ErrInvalid, errors.New("baseUrl is required for "+d.ID))
	}
	switch d.Payload.Kind {
	case ShapeDefault, ShapeStructured, ShapeSimple:
	default:
		return errors.Join(ErrInvalid, errors.New("unknown payload kind "+string(d.Payload.Kind)+" for "+d.ID))
	}
	return nil
}

// Name returns the display name, falling back to the id.
func (d *Descriptor) Name() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.ID
}

// Task returns the task name sent in envelopes for this worker.
func (d *Descriptor) Task() string {
	if d.TaskName != "" {
		return d.TaskName
	}
	return DefaultTaskName
}

// Terms returns the lowercased keyword and capability terms, deduplicated.
func (d *Descriptor) Terms() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(d.Keywords)+len(d.Capabilities))
	for _, group := range [][]string{d.Keywords, d.Capabilities} {
		for _, t := range group {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// Clone returns a deep copy so callers cannot mutate registry state.
func (d Descriptor) Clone() Descriptor {
	c := d
	c.Capabilities = append([]string(nil), d.Capabilities...)
	c.Keywords = append([]string(nil), d.Keywords...)
	c.RequiredParams = append([]string(nil), d.RequiredParams...)
	c.OptionalParams = append([]string(nil), d.OptionalParams...)
	c.ParamPatterns = cloneStrings(d.ParamPatterns)
	c.ParamRules = cloneStrings(d.ParamRules)
	c.Questions = cloneStrings(d.Questions)
	c.Payload.FieldMap = cloneStrings(d.Payload.FieldMap)
	if d.LastChecked != nil {
		t := *d.LastChecked
		c.LastChecked = &t
	}
	return c
}

func cloneStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
