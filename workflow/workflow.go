// Package workflow tracks the workflow a process is currently executing so
// that spans started during it can be correlated.
package workflow

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/untrace-dev/untrace-go/attributes"
)

// Options carries the optional identifiers of a workflow.
type Options struct {
	UserID    string
	SessionID string
	Version   string
	// ParentID is supplied by the caller; workflows do not nest.
	ParentID string
	Metadata map[string]string
}

// Workflow is one run of a named multi-step operation.
// ID, Name and RunID never change after creation.
type Workflow struct {
	ID        string            `json:"id" yaml:"id"`
	Name      string            `json:"name" yaml:"name"`
	RunID     string            `json:"run_id" yaml:"run_id"`
	UserID    string            `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	SessionID string            `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Version   string            `json:"version,omitempty" yaml:"version,omitempty"`
	ParentID  string            `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	StartTime time.Time         `json:"start_time" yaml:"start_time"`
}

// New creates a workflow with a freshly generated ID. The run ID is kept as
// given, empty included; use GenerateRunID for a fresh one.
func New(name, runID string, opts Options) Workflow {
	w := Workflow{
		ID:        uuid.NewString(),
		Name:      name,
		RunID:     runID,
		UserID:    opts.UserID,
		SessionID: opts.SessionID,
		Version:   opts.Version,
		ParentID:  opts.ParentID,
		StartTime: time.Now(),
	}
	if len(opts.Metadata) > 0 {
		w.Metadata = make(map[string]string, len(opts.Metadata))
		for k, v := range opts.Metadata {
			w.Metadata[k] = v
		}
	}
	return w
}

// GenerateRunID returns a new random run identifier.
func GenerateRunID() string {
	return uuid.NewString()
}

// Clone returns a deep copy.
func (w Workflow) Clone() Workflow {
	if w.Metadata != nil {
		md := make(map[string]string, len(w.Metadata))
		for k, v := range w.Metadata {
			md[k] = v
		}
		w.Metadata = md
	}
	return w
}

// Duration is the time elapsed since the workflow started.
func (w Workflow) Duration() time.Duration {
	return time.Since(w.StartTime)
}

// Attributes returns one attribute per populated field plus one
// workflow.metadata.<key> attribute per metadata entry, sorted by key.
// Metadata values under credential-like keys are redacted.
func (w Workflow) Attributes() []attribute.KeyValue {
	attrs := w.IdentityAttributes()
	optional := []struct{ key, value string }{
		{attributes.WorkflowUserID, w.UserID},
		{attributes.WorkflowSessionID, w.SessionID},
		{attributes.WorkflowVersion, w.Version},
		{attributes.WorkflowParentID, w.ParentID},
	}
	for _, o := range optional {
		if o.value != "" {
			attrs = append(attrs, attribute.String(o.key, o.value))
		}
	}

	keys := make([]string, 0, len(w.Metadata))
	for k := range w.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	metadata := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		metadata = append(metadata, attribute.String(attributes.MetadataKey(k), w.Metadata[k]))
	}
	return append(attrs, attributes.SanitizeKeyValues(metadata)...)
}

// IdentityAttributes returns only id, name and run id. These are stamped on
// every span started while the workflow is current. An empty run id is left out.
func (w Workflow) IdentityAttributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(attributes.WorkflowID, w.ID),
		attribute.String(attributes.WorkflowName, w.Name),
	}
	if w.RunID != "" {
		attrs = append(attrs, attribute.String(attributes.WorkflowRunID, w.RunID))
	}
	return attrs
}
