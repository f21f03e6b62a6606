// Package metadata provides a runtime metadata registry.
//
// With metadata, you can attach arbitrary key/value annotations to any
// identity bearing value, such as a pointer, a map, a channel or a
// reflect.Type, then later query, test or enumerate those annotations
// without the annotated value knowing about any of it.
// An annotation can scope to the value as a whole,
// or to one of its named members, like a method or a field name.
//
// The package level functions operate on the Default registry,
// so metadata is usable without any setup step.
// For an isolated metadata table, use a dedicated Registry value.
package metadata

import (
	"go.llib.dev/frameless/pkg/errorkit"
)

// ErrInvalidTarget is returned by Define when the target has no usable identity.
//
// Metadata attachment is identity based.
// A valid target is a non-nil pointer, map, channel or unsafe.Pointer,
// or a reflect.Type that describes the annotated type itself.
// Plain values such as structs, strings or numbers are copied on every assignment,
// slices can share their backing array pointer between distinct slice headers,
// and func values of the same origin share a code pointer,
// so none of them can act as a metadata target.
const ErrInvalidTarget errorkit.Error = "metadata: invalid target"

// Accessor is the role interface of a metadata registry.
//
// Accessor expresses the expected behaviour towards a metadata supplier,
// and metadatacontract.Accessor defines its behavioural requirements.
type Accessor interface {
	// Define sets key to value in the metadata map of the target's scope.
	// The scope is the target itself, or the target's named member when one is given.
	// Member path segments are joined with a dot,
	// so a dotted member name aliases the equivalent multi segment path.
	// Defining an already present key overwrites its value.
	Define(target any, key string, value any, member ...string) error
	// Lookup returns the value stored under key in the target's scope.
	// The ok return value distinguishes a stored nil value from an absent key.
	Lookup(target any, key string, member ...string) (value any, ok bool)
	// Has reports whether key was defined in the target's scope.
	Has(target any, key string, member ...string) bool
	// Keys returns the keys of the target's scope in first definition order.
	// The ok return value distinguishes a never annotated scope from one with keys.
	Keys(target any, member ...string) (keys []string, ok bool)
	// Annotate captures a key/value pair
	// and returns an Annotator that defines it on the targets it is invoked with.
	Annotate(key string, value any) Annotator
}

var _ Accessor = (*Registry)(nil)

// Default is the registry used by the package level functions.
var Default Registry

// Define sets key to value for target in the Default registry.
func Define(target any, key string, value any, member ...string) error {
	return Default.Define(target, key, value, member...)
}

// Lookup returns the value stored under key for target in the Default registry.
func Lookup(target any, key string, member ...string) (any, bool) {
	return Default.Lookup(target, key, member...)
}

// Has reports whether key was defined for target in the Default registry.
func Has(target any, key string, member ...string) bool {
	return Default.Has(target, key, member...)
}

// Keys returns the defined keys of target in the Default registry.
func Keys(target any, member ...string) ([]string, bool) {
	return Default.Keys(target, member...)
}

// Annotate captures a key/value pair as an Annotator of the Default registry.
func Annotate(key string, value any) Annotator {
	return Default.Annotate(key, value)
}

// LookupAs returns the value stored under key for target in the Default registry,
// asserted to the T type.
// LookupAs reports false either when the key is absent,
// when the stored value is not a T,
// or when the stored value is nil, which no type assertion can match.
// To observe a stored nil, use Lookup.
func LookupAs[T any](target any, key string, member ...string) (T, bool) {
	v, ok := Default.Lookup(target, key, member...)
	if !ok {
		return *new(T), false
	}
	value, ok := v.(T)
	return value, ok
}
