// Package typesynth turns JSON-Schema-like documents into a graph of type
// descriptors that a validation library can instantiate.
//
// The root package carries the shared vocabulary:
//
// - Options for one synthesis run (undefined array items/types, alias handling, depth guard, logger)
// - SchemaError with kinds (schema/type/reference/combiner) for synthesis failures
// - Issues (JSON Pointer, code, message) for runtime validation failures
//
// Design policy:
// - Keep only public vocabulary in the root package.
// - document/ holds the order-preserving schema tree and its loaders.
// - ir/ holds the type descriptors; synth/ produces them; factory/ consumes them.
// - jsonschema/ projects descriptors back into JSON Schema; the CLI lives in cmd/typesynth.
//
// Typical usage:
//
//	doc, err := document.ParseJSON(data)
//	res, err := synth.Synthesize(doc, typesynth.Options{})
//	m, err := factory.Build(res.Graph)
//	v, err := m.Validate(ctx, input)
package typesynth
