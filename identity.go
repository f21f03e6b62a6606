package metadata

import (
	"reflect"

	"go.llib.dev/frameless/pkg/reflectkit"
)

// identity is the comparable handle that binds a slot to its target.
// The dynamic type is part of the handle
// because values of different types can share an address,
// like a struct and its first field.
type identity struct {
	typ reflect.Type
	ptr uintptr
}

func identityOf(target any) (identity, error) {
	if target == nil {
		return identity{}, ErrInvalidTarget
	}
	if typ, ok := target.(reflect.Type); ok {
		return identity{typ: typ}, nil
	}
	rv := reflect.ValueOf(target)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan:
		if reflectkit.IsNil(rv) {
			return identity{}, ErrInvalidTarget
		}
		return identity{typ: rv.Type(), ptr: rv.Pointer()}, nil
	case reflect.UnsafePointer:
		if rv.Pointer() == 0 {
			return identity{}, ErrInvalidTarget
		}
		return identity{typ: rv.Type(), ptr: rv.Pointer()}, nil
	default:
		return identity{}, ErrInvalidTarget
	}
}
