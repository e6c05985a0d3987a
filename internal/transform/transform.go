// Package transform provides plugin implementations of
// normalize.Transform, the injected per-log-type script transform
// capability, in the shape of the processors.Processor func-adapter
// convention.
package transform

import "github.com/gravshift/esloader/internal/normalize"

// Func adapts a plain function to normalize.Transform.
type Func func(doc normalize.Dict) (normalize.Dict, error)

func (f Func) Transform(doc normalize.Dict) (normalize.Dict, error) { return f(doc) }

// Identity is a no-op Transform that returns doc unchanged. The
// Normalizer only calls its Transform when script_ecs is true.
var Identity normalize.Transform = Func(func(doc normalize.Dict) (normalize.Dict, error) { return doc, nil })
