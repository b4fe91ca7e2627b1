// Package dependency wires the supervisor services using go.uber.org/dig.
package dependency

import (
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/dig"

	httpapi "github.com/execution-hub/supervisor/internal/api/http"
	"github.com/execution-hub/supervisor/internal/application/classifier"
	"github.com/execution-hub/supervisor/internal/application/formatter"
	"github.com/execution-hub/supervisor/internal/application/health"
	"github.com/execution-hub/supervisor/internal/application/orchestrator"
	"github.com/execution-hub/supervisor/internal/application/validator"
	"github.com/execution-hub/supervisor/internal/config"
	"github.com/execution-hub/supervisor/internal/domain/dispatch"
	"github.com/execution-hub/supervisor/internal/domain/intent"
	"github.com/execution-hub/supervisor/internal/domain/worker"
	"github.com/execution-hub/supervisor/internal/infrastructure/assist"
	"github.com/execution-hub/supervisor/internal/infrastructure/memory"
	"github.com/execution-hub/supervisor/internal/infrastructure/sse"
	"github.com/execution-hub/supervisor/internal/infrastructure/workerclient"
)

// Container holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	cfg      *config.Config
	registry worker.Registry
	orch     *orchestrator.Orchestrator
	monitor  *health.Monitor
	hub      *sse.Hub
	server   *httpapi.Server
}

func (c *Container) Config() *config.Config                   { return c.cfg }
func (c *Container) Registry() worker.Registry                { return c.registry }
func (c *Container) Orchestrator() *orchestrator.Orchestrator { return c.orch }
func (c *Container) Monitor() *health.Monitor                 { return c.monitor }
func (c *Container) Hub() *sse.Hub                            { return c.hub }
func (c *Container) Server() *httpapi.Server                  { return c.server }

// New builds and wires all services from cfg.
func New(cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	d := dig.New()

	providers := []interface{}{
		func() *config.Config { return cfg },
		func() zerolog.Logger { return logger },
		newRegistry,
		newWorkerClient,
		newFormatter,
		newValidator,
		newClassifier,
		newStateCodec,
		sse.NewHub,
		newPublisher,
		newOrchestrator,
		newMonitor,
		newServer,
	}
	for _, p := range providers {
		if err := d.Provide(p); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		registry worker.Registry,
		orch *orchestrator.Orchestrator,
		monitor *health.Monitor,
		hub *sse.Hub,
		server *httpapi.Server,
	) {
		result = &Container{
			cfg:      cfg,
			registry: registry,
			orch:     orch,
			monitor:  monitor,
			hub:      hub,
			server:   server,
		}
	})
	if err != nil {
		return nil, dig.RootCause(err)
	}
	return result, nil
}

func newRegistry(cfg *config.Config) (worker.Registry, error) {
	workers, err := config.LoadCatalogue(cfg.WorkerCatalogue)
	if err != nil {
		return nil, err
	}
	reg := memory.NewRegistry()
	for _, w := range workers {
		if err := reg.Register(w); err != nil {
			return nil, fmt.Errorf("register %s: %w", w.ID, err)
		}
	}
	return reg, nil
}

func newWorkerClient(cfg *config.Config, reg worker.Registry, logger zerolog.Logger) worker.Client {
	return workerclient.NewClient(reg, workerclient.RetryPolicy{
		MaxAttempts: cfg.SendMaxAttempts,
		Backoff:     cfg.SendBackoff,
	}, logger)
}

func newFormatter(reg worker.Registry) *formatter.Formatter {
	return formatter.NewFormatter(reg)
}

func newValidator(reg worker.Registry, logger zerolog.Logger) *validator.Validator {
	return validator.NewValidator(reg, logger)
}

func newClassifier(
	cfg *config.Config,
	reg worker.Registry,
	client worker.Client,
	fmtr *formatter.Formatter,
	logger zerolog.Logger,
) (classifier.Classifier, error) {
	rule := classifier.NewRuleClassifier(classifier.RuleConfig{
		MinScore: cfg.RuleMinScore,
		Margin:   cfg.RuleMargin,
	})
	if cfg.AssistWorkerID == "" {
		return classifier.NewChain(rule, nil, logger), nil
	}
	if _, err := reg.Lookup(cfg.AssistWorkerID); err != nil {
		return nil, fmt.Errorf("ASSIST_WORKER_ID: %w", err)
	}
	a := assist.NewWorkerAssist(reg, client, fmtr, cfg.AssistWorkerID, cfg.SupervisorName, cfg.AssistTimeout, logger)
	return classifier.NewChain(rule, classifier.NewAssistClassifier(a, cfg.AssistMinConfidence, cfg.AssistTimeout), logger), nil
}

func newStateCodec(cfg *config.Config) *intent.StateCodec {
	return intent.NewStateCodec(cfg.StateSigningKey)
}

func newPublisher(hub *sse.Hub) dispatch.Publisher {
	return hub
}

func newOrchestrator(
	cfg *config.Config,
	reg worker.Registry,
	cls classifier.Classifier,
	val *validator.Validator,
	fmtr *formatter.Formatter,
	client worker.Client,
	codec *intent.StateCodec,
	publisher dispatch.Publisher,
	logger zerolog.Logger,
) *orchestrator.Orchestrator {
	return orchestrator.NewOrchestrator(reg, cls, val, fmtr, client, codec, publisher, orchestrator.Config{
		Sender:     cfg.SupervisorName,
		Timeout:    cfg.WorkerTimeout,
		StaleAfter: cfg.HealthStaleAfter,
	}, logger)
}

func newMonitor(cfg *config.Config, reg worker.Registry, client worker.Client, logger zerolog.Logger) *health.Monitor {
	return health.NewMonitor(reg, client, cfg.HealthTimeout, cfg.HealthConcurrency, logger)
}

func newServer(
	cfg *config.Config,
	orch *orchestrator.Orchestrator,
	reg worker.Registry,
	monitor *health.Monitor,
	hub *sse.Hub,
	logger zerolog.Logger,
) *httpapi.Server {
	// One request may spend an assist call and a dispatch.
	return httpapi.NewServer(orch, reg, monitor, hub, cfg.SupervisorName, cfg.WorkerTimeout+cfg.AssistTimeout, logger)
}
