package formatter

import (
	"github.com/execution-hub/supervisor/internal/domain/worker"
)

// Formatter maps a worker id and its parameters to the task.parameters shape
// that worker accepts. Every id has a mapping; unknown ids get Default.
type Formatter struct {
	registry worker.Registry
}

func NewFormatter(registry worker.Registry) *Formatter {
	return &Formatter{registry: registry}
}

// Shape returns the configured shape for workerID.
func (f *Formatter) Shape(workerID string) Shape {
	w, err := f.registry.Lookup(workerID)
	if err != nil {
		return Default{}
	}
	return ShapeFor(w)
}

func (f *Formatter) Format(workerID string, params map[string]interface{}, text string) map[string]interface{} {
	if params == nil {
		params = map[string]interface{}{}
	}
	return f.Shape(workerID).Build(params, text)
}
