// Package retain is the runtime imported by code that retaingen generates.
//
// A generated companion type implements [Retainer] for one struct and copies
// the struct's retained fields into a flat [Store] and back. Fields whose
// types need custom handling are delegated to a [Converter].
package retain

import (
	"strconv"
)

// Retainer saves and restores the retained fields of T.
type Retainer[T any] interface {
	Save(src *T, store Store)
	Restore(dst *T, store Store)
}

// Converter is a user supplied strategy for one value type. It takes
// priority over every built-in strategy for the fields it is attached to.
// Generated code calls a converter C through new(C), so the zero value of a
// converter type must be ready to use.
type Converter[T any] interface {
	Save(store Store, key string, value T)
	Restore(store Store, key string) (T, bool)
}

// Member returns the key of a struct member nested under key. The "/"
// separator keeps member keys apart from class-qualified field keys such as
// "Derived.Name".
func Member(key, name string) string {
	return key + "/" + name
}

// Index returns the key of the i-th element of a sequence stored under key.
func Index(key string, i int) string {
	return key + "[" + strconv.Itoa(i) + "]"
}

// Len returns the key holding the length of a sequence or map stored under key.
func Len(key string) string {
	return key + "#len"
}

// MapKey returns the key holding the i-th map key stored under key.
func MapKey(key string, i int) string {
	return key + "#k[" + strconv.Itoa(i) + "]"
}

// MapValue returns the key holding the i-th map value stored under key.
func MapValue(key string, i int) string {
	return key + "#v[" + strconv.Itoa(i) + "]"
}

// Present returns the key marking a non-nil pointer stored under key.
func Present(key string) string {
	return key + "#set"
}
