package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExternalEvent is one item pulled from an external practice service
// before any normalization happens.
type ExternalEvent struct {
	SourceId   string                 `json:"source_id"`
	Kind       string                 `json:"kind"`
	Subject    string                 `json:"subject"`
	Body       string                 `json:"body"`
	Metadata   map[string]interface{} `json:"metadata"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// EventSource pulls events from one external service on behalf of a user.
type EventSource interface {
	Name() string
	FetchEvents(ctx context.Context, userId uuid.UUID, preferences map[string]string) ([]ExternalEvent, error)
}

// Registry resolves a service name to its source implementation.
type Registry struct {
	sources map[string]EventSource
}

func NewRegistry(sources ...EventSource) *Registry {
	r := &Registry{sources: make(map[string]EventSource)}
	for _, s := range sources {
		r.sources[s.Name()] = s
	}
	return r
}

func (r *Registry) Register(source EventSource) {
	r.sources[source.Name()] = source
}

func (r *Registry) Resolve(name string) (EventSource, error) {
	source, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown sync service %q", name)
	}
	return source, nil
}
