// Package factory compiles a synthesized type graph into a Model that
// validates and normalizes decoded JSON values.
package factory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	j "github.com/goccy/go-json"
	"go.uber.org/zap"

	typesynth "github.com/reoring/typesynth"
	"github.com/reoring/typesynth/ir"
)

// RootField names the single field of the wrapper built around non-object
// roots.
const RootField = "root"

type config struct {
	failFast       bool
	populateByName *bool
	logger         *zap.Logger
}

// Option configures Build.
type Option func(*config)

// FailFast stops validation at the first issue.
func FailFast() Option { return func(c *config) { c.failFast = true } }

// PopulateByName overrides the graph's setting: when on, inputs may use the
// sanitized field name in place of the alias.
func PopulateByName(on bool) Option { return func(c *config) { c.populateByName = &on } }

// WithLogger sets the logger used for build traces.
func WithLogger(l *zap.Logger) Option { return func(c *config) { c.logger = l } }

// Model validates values against the root of a graph.
type Model struct {
	name     string
	root     *handle
	inner    *handle // the wrapped root, nil when not wrapped
	failFast bool
	byName   bool
}

// Build compiles exactly one validator per descriptor identity. References
// become shared handles, so recursive types validate recursive data.
func Build(g *ir.Graph, opts ...Option) (*Model, error) {
	if g == nil || g.Root == nil {
		return nil, errors.New("factory: empty graph")
	}
	cfg := config{}
	for _, o := range opts {
		o(&cfg)
	}
	log := cfg.logger
	if log == nil {
		log = zap.NewNop()
	}
	byName := g.PopulateByName
	if cfg.populateByName != nil {
		byName = *cfg.populateByName
	}
	c := &compiler{g: g, byDesc: map[ir.Descriptor]*handle{}}
	m := &Model{failFast: cfg.failFast, byName: byName}

	root := g.Resolve(g.Root)
	if _, isObj := g.ObjectOf(root); isObj {
		h, err := c.compile(root)
		if err != nil {
			return nil, err
		}
		m.root, m.name = h, root.Info().Name
	} else {
		inner, err := c.compile(root)
		if err != nil {
			return nil, err
		}
		name := root.Info().Name
		if name == "" {
			name = "DynamicModel"
		}
		wrapper := &ir.Object{
			Meta:   ir.Meta{ID: "#", Name: name},
			Fields: []ir.Field{{Name: RootField, Original: RootField, Type: root, Required: true}},
		}
		ov, err := c.object(wrapper)
		if err != nil {
			return nil, err
		}
		m.root = &handle{id: "#", v: ov}
		m.inner, m.name = inner, name
	}
	log.Named("factory").Debug("model built",
		zap.String("name", m.name),
		zap.Bool("wrapped", m.inner != nil),
		zap.Int("validators", len(c.byDesc)))
	return m, nil
}

// Name returns the root type name.
func (m *Model) Name() string { return m.name }

// Wrapped reports whether the root is a non-object type wrapped in a
// single-field "root" object.
func (m *Model) Wrapped() bool { return m.inner != nil }

// Validate checks v against the model and returns a normalized copy: field
// names sanitized, defaults applied. Failures are typesynth.Issues.
func (m *Model) Validate(ctx context.Context, v any) (any, error) {
	return m.run(ctx, m.root, v)
}

// ValidateRoot validates a bare value against a wrapped root and returns the
// bare normalized value. For object roots it is Validate.
func (m *Model) ValidateRoot(ctx context.Context, v any) (any, error) {
	if m.inner == nil {
		return m.Validate(ctx, v)
	}
	return m.run(ctx, m.inner, v)
}

// ValidateJSON decodes one JSON value (numbers kept exact) and validates it
// with ValidateRoot.
func (m *Model) ValidateJSON(ctx context.Context, r io.Reader) (any, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("factory: decode input: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("factory: trailing data after JSON value")
	}
	return m.ValidateRoot(ctx, v)
}

// ValidateBytes is ValidateJSON over a byte slice.
func (m *Model) ValidateBytes(ctx context.Context, data []byte) (any, error) {
	return m.ValidateJSON(ctx, bytes.NewReader(data))
}

func (m *Model) run(ctx context.Context, h *handle, v any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st := &state{ctx: ctx, failFast: m.failFast, byName: m.byName}
	out, ok := h.validate(st, typesynth.Root(), v)
	if st.err != nil {
		return nil, st.err
	}
	if !ok || len(st.iss) > 0 {
		return nil, st.iss
	}
	return out, nil
}
