package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Knetic/govaluate"
	"gopkg.in/yaml.v3"

	"github.com/execution-hub/supervisor/internal/domain/worker"
)

//go:embed workers.yaml
var defaultCatalogue []byte

// WorkerEntry is one worker in the catalogue file.
type WorkerEntry struct {
	ID                string             `yaml:"id"`
	DisplayName       string             `yaml:"display_name"`
	BaseURL           string             `yaml:"base_url"`
	Description       string             `yaml:"description"`
	Capabilities      []string           `yaml:"capabilities"`
	Keywords          []string           `yaml:"keywords"`
	RequiredParams    []string           `yaml:"required_params"`
	OptionalParams    []string           `yaml:"optional_params"`
	ParamPatterns     map[string]string  `yaml:"param_patterns"`
	ParamRules        map[string]string  `yaml:"param_rules"`
	Questions         map[string]string  `yaml:"questions"`
	TaskName          string             `yaml:"task_name"`
	AllowUncorrelated bool               `yaml:"allow_uncorrelated"`
	Payload           worker.PayloadSpec `yaml:"payload"`
}

type catalogueFile struct {
	Workers []WorkerEntry `yaml:"workers"`
}

// LoadCatalogue reads the worker catalogue at path, or the built-in
// catalogue when path is empty.
func LoadCatalogue(path string) ([]worker.Descriptor, error) {
	data := defaultCatalogue
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read worker catalogue: %w", err)
		}
		data = b
	}
	return ParseCatalogue(data)
}

// ParseCatalogue decodes and validates a YAML catalogue. ${VAR} and
// ${VAR:-default} references are expanded from the environment first.
func ParseCatalogue(data []byte) ([]worker.Descriptor, error) {
	var file catalogueFile
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &file); err != nil {
		return nil, fmt.Errorf("failed to parse worker catalogue: %w", err)
	}
	if len(file.Workers) == 0 {
		return nil, errors.New("worker catalogue is empty")
	}

	seen := make(map[string]struct{}, len(file.Workers))
	out := make([]worker.Descriptor, 0, len(file.Workers))
	for i, e := range file.Workers {
		d := e.descriptor()
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("worker #%d: %w", i+1, err)
		}
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("worker %s: %w", d.ID, worker.ErrDuplicate)
		}
		seen[d.ID] = struct{}{}
		if err := checkExpressions(d); err != nil {
			return nil, fmt.Errorf("worker %s: %w", d.ID, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func (e WorkerEntry) descriptor() worker.Descriptor {
	return worker.Descriptor{
		ID:                strings.TrimSpace(e.ID),
		DisplayName:       e.DisplayName,
		BaseURL:           strings.TrimSpace(e.BaseURL),
		Description:       strings.TrimSpace(e.Description),
		Capabilities:      e.Capabilities,
		Keywords:          e.Keywords,
		RequiredParams:    e.RequiredParams,
		OptionalParams:    e.OptionalParams,
		ParamPatterns:     e.ParamPatterns,
		ParamRules:        e.ParamRules,
		Questions:         e.Questions,
		TaskName:          e.TaskName,
		AllowUncorrelated: e.AllowUncorrelated,
		Payload:           e.Payload,
		Health:            worker.HealthUnknown,
	}
}

func checkExpressions(d worker.Descriptor) error {
	for name, pattern := range d.ParamPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("param_patterns.%s: %w", name, err)
		}
	}
	for name, rule := range d.ParamRules {
		if _, err := govaluate.NewEvaluableExpression(rule); err != nil {
			return fmt.Errorf("param_rules.%s: %w", name, err)
		}
	}
	return nil
}

func expandEnv(s string) string {
	return os.Expand(s, func(ref string) string {
		name, def, hasDefault := strings.Cut(ref, ":-")
		if v := os.Getenv(name); v != "" {
			return v
		}
		if hasDefault {
			return def
		}
		return ""
	})
}
