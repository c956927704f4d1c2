package idb

import (
	"reflect"
)

// Named is implemented by instances that report their own class name.
type Named interface {
	ImplementationName() string
}

// ImplementationName returns the class name recorded for instance: the
// result of ImplementationName if it implements Named, otherwise its Go type
// name without pointer indirection.
func ImplementationName(instance any) string {
	if n, ok := instance.(Named); ok {
		return n.ImplementationName()
	}
	t := reflect.TypeOf(instance)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
