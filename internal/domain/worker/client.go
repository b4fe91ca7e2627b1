package worker

import (
	"context"
	"time"

	"github.com/execution-hub/supervisor/internal/domain/message"
)

// Client talks to worker services.
type Client interface {
	// Send posts the envelope to the worker and returns its verified report.
	Send(ctx context.Context, w Descriptor, env *message.TaskEnvelope, timeout time.Duration) (*message.CompletionReport, error)
	// CheckHealth queries the worker and records the result in the registry.
	CheckHealth(ctx context.Context, w Descriptor, timeout time.Duration) Health
}
