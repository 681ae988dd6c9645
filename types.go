package typesynth

import "go.uber.org/zap"

// Options configures one synthesis run.
type Options struct {
	// AllowUndefinedArrayItems permits array schemas without items; elements
	// are typed as "anything".
	AllowUndefinedArrayItems bool
	// AllowUndefinedType types schemas without any type information as
	// "anything" instead of failing.
	AllowUndefinedType bool
	// PopulateByName is passed through to the model factory: inputs may use
	// either the sanitized field name or the original (alias) name.
	PopulateByName bool
	// MaxDepth bounds nesting depth of the synthesis walk. 0 means unlimited.
	MaxDepth int
	// Logger receives debug traces. nil disables logging.
	Logger *zap.Logger
}

// L returns the configured logger or a no-op one.
func (o Options) L() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
