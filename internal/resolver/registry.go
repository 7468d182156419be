package resolver

import "github.com/seitarof/retaingen/internal/model"

// Registry looks up user supplied converters by type signature.
type Registry interface {
	Lookup(signature string) (model.ConverterRef, bool)
}

// MapRegistry is a Registry backed by a map keyed by TypeRef.Signature.
type MapRegistry map[string]model.ConverterRef

func (r MapRegistry) Lookup(signature string) (model.ConverterRef, bool) {
	c, ok := r[signature]
	return c, ok
}

// Register adds or replaces the converter for signature.
func (r MapRegistry) Register(signature string, c model.ConverterRef) {
	r[signature] = c
}

type emptyRegistry struct{}

func (emptyRegistry) Lookup(string) (model.ConverterRef, bool) {
	return model.ConverterRef{}, false
}
