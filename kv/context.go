package kv

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// Context threads a standard context.Context, a structured logger, and a
// tracer through every call into the join subsystem and its external
// collaborators. It plays the role the teacher's sql.Context plays for its
// engine: the one value every component-level call takes as its first
// argument.
type Context struct {
	context.Context
	Log    *logrus.Entry
	Tracer opentracing.Tracer
}

// ContextOption configures a Context at construction time.
type ContextOption func(*Context)

// WithLogger overrides the default logger.
func WithLogger(log *logrus.Entry) ContextOption {
	return func(c *Context) { c.Log = log }
}

// WithTracer overrides the default (no-op) tracer.
func WithTracer(t opentracing.Tracer) ContextOption {
	return func(c *Context) { c.Tracer = t }
}

// NewContext builds a Context wrapping parent, applying opts in order.
func NewContext(parent context.Context, opts ...ContextOption) *Context {
	if parent == nil {
		parent = context.Background()
	}
	c := &Context{
		Context: parent,
		Log:     logrus.NewEntry(logrus.StandardLogger()),
		Tracer:  opentracing.NoopTracer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithContext returns a copy of c wrapping a different standard context,
// preserving the logger and tracer. Used by the driver to attach
// cancellation scopes per step without losing ambient logging fields.
func (c *Context) WithContext(ctx context.Context) *Context {
	cp := *c
	cp.Context = ctx
	return &cp
}

// StartSpan opens a child span under the context's tracer, or a no-op span
// if none was configured. The scanner driver calls this around every
// per-level scanner call, since that is the only externally observable
// suspension point in the nested-loops execution model.
func (c *Context) StartSpan(operationName string) (opentracing.Span, *Context) {
	span, goCtx := opentracing.StartSpanFromContextWithTracer(c.Context, c.Tracer, operationName)
	return span, c.WithContext(goCtx)
}
