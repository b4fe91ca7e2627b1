package worker

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_registry.go -package=mocks . Registry

import (
	"time"
)

// Registry holds the worker catalogue and per-worker health.
type Registry interface {
	Register(d Descriptor) error
	Lookup(id string) (Descriptor, error)
	All() []Descriptor
	UpdateHealth(id string, health Health, checkedAt time.Time) error
	MatchByKeyword(tokens map[string]struct{}) []Match
}
