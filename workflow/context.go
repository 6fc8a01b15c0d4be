package workflow

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/baggage"

	"github.com/untrace-dev/untrace-go/attributes"
	"github.com/untrace-dev/untrace-go/core"
)

// Context holds the single current workflow of a process.
//
// It has two states, empty and active. StartWorkflow always moves to active,
// replacing any workflow already there; EndCurrentWorkflow always moves to
// empty. Readers never see a partially written workflow, and values handed
// out are copies that later writes cannot affect.
type Context struct {
	mu      sync.RWMutex
	current *Workflow
	logger  core.Logger
}

// NewContext creates an empty workflow context.
func NewContext(logger core.Logger) *Context {
	return &Context{logger: core.OrNoOp(logger)}
}

// StartWorkflow makes a new workflow current and returns a copy of it.
func (c *Context) StartWorkflow(name, runID string, opts Options) Workflow {
	w := New(name, runID, opts)

	c.mu.Lock()
	replaced := c.current
	stored := w.Clone()
	c.current = &stored
	c.mu.Unlock()

	fields := map[string]interface{}{
		"workflow_id": w.ID,
		"name":        w.Name,
		"run_id":      w.RunID,
	}
	if replaced != nil {
		fields["replaced_workflow_id"] = replaced.ID
	}
	c.logger.Debug("Workflow started", fields)

	return w
}

// CurrentWorkflow returns a copy of the current workflow, or false when none
// is active.
func (c *Context) CurrentWorkflow() (Workflow, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return Workflow{}, false
	}
	return c.current.Clone(), true
}

// EndCurrentWorkflow clears the slot and returns what was in it.
// Ending with no active workflow is a no-op.
func (c *Context) EndCurrentWorkflow() (Workflow, bool) {
	c.mu.Lock()
	ended := c.current
	c.current = nil
	c.mu.Unlock()

	if ended == nil {
		return Workflow{}, false
	}
	c.logger.Debug("Workflow ended", map[string]interface{}{
		"workflow_id": ended.ID,
		"duration_ms": ended.Duration().Milliseconds(),
	})
	return *ended, true
}

// SetAttribute sets one metadata entry on the current workflow.
func (c *Context) SetAttribute(key, value string) error {
	return c.SetAttributes(map[string]string{key: value})
}

// SetAttributes sets metadata entries on the current workflow. Either all
// entries are applied or, on error, none.
func (c *Context) SetAttributes(attrs map[string]string) error {
	for k := range attrs {
		if k == "" {
			return &core.Error{
				Op:      "Context.SetAttributes",
				Kind:    core.KindValidation,
				Message: "metadata key must not be empty",
				Err:     core.ErrInvalidAttribute,
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return &core.Error{
			Op:   "Context.SetAttributes",
			Kind: core.KindInstrumentation,
			Err:  core.ErrNoActiveWorkflow,
		}
	}
	if c.current.Metadata == nil {
		c.current.Metadata = make(map[string]string, len(attrs))
	}
	for k, v := range attrs {
		c.current.Metadata[k] = v
	}
	return nil
}

// GenerateRunID returns a new random run identifier.
func (c *Context) GenerateRunID() string {
	return GenerateRunID()
}

type ctxKey struct{}

// WithWorkflow returns a copy of ctx carrying w. Use it when concurrent
// requests each run their own workflow and the process-wide slot is too
// coarse.
func WithWorkflow(ctx context.Context, w Workflow) context.Context {
	return context.WithValue(ctx, ctxKey{}, w.Clone())
}

// FromContext returns the workflow carried by ctx, if any.
func FromContext(ctx context.Context) (Workflow, bool) {
	w, ok := ctx.Value(ctxKey{}).(Workflow)
	if !ok {
		return Workflow{}, false
	}
	return w.Clone(), true
}

// Resolve returns the workflow carried by ctx, falling back to the current
// workflow of c. c may be nil.
func (c *Context) Resolve(ctx context.Context) (Workflow, bool) {
	if w, ok := FromContext(ctx); ok {
		return w, true
	}
	if c == nil {
		return Workflow{}, false
	}
	return c.CurrentWorkflow()
}

// WithBaggage adds the workflow identity to the W3C baggage of ctx so it
// crosses process boundaries with the trace context.
func WithBaggage(ctx context.Context, w Workflow) (context.Context, error) {
	bag := baggage.FromContext(ctx)
	for _, kv := range w.IdentityAttributes() {
		m, err := baggage.NewMemberRaw(string(kv.Key), kv.Value.AsString())
		if err != nil {
			return ctx, fmt.Errorf("workflow baggage member %s: %w", kv.Key, err)
		}
		bag, err = bag.SetMember(m)
		if err != nil {
			return ctx, fmt.Errorf("workflow baggage: %w", err)
		}
	}
	return baggage.ContextWithBaggage(ctx, bag), nil
}

// IdentityFromBaggage reads the workflow identity written by WithBaggage.
func IdentityFromBaggage(ctx context.Context) (id, name, runID string, ok bool) {
	bag := baggage.FromContext(ctx)
	id = bag.Member(attributes.WorkflowID).Value()
	name = bag.Member(attributes.WorkflowName).Value()
	runID = bag.Member(attributes.WorkflowRunID).Value()
	return id, name, runID, id != ""
}
