package modelregistry

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry holds values keyed by resource name, in registration order
type Registry[V any] struct {
	items map[string]V
	order []string
	mutex sync.RWMutex
}

// New creates an empty registry
func New[V any]() *Registry[V] {
	return &Registry[V]{
		items: make(map[string]V),
	}
}

// Register adds v under name. Names are unique.
func (r *Registry[V]) Register(name string, v V) error {
	if name == "" {
		return fmt.Errorf("resource name cannot be empty")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.items[name]; exists {
		return fmt.Errorf("resource %s already registered", name)
	}

	r.items[name] = v
	r.order = append(r.order, name)
	return nil
}

func (r *Registry[V]) Get(name string) (V, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	v, exists := r.items[name]
	if !exists {
		return v, fmt.Errorf("resource %s not found", name)
	}

	return v, nil
}

// Names returns the registered names in registration order
func (r *Registry[V]) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return append([]string(nil), r.order...)
}

// Each calls fn for every entry in registration order
func (r *Registry[V]) Each(fn func(name string, v V)) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, name := range r.order {
		fn(name, r.items[name])
	}
}

func (r *Registry[V]) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.items)
}

// ValidateModel checks that model is a struct, or a pointer, slice or array of one,
// and returns the base struct type.
func ValidateModel(model interface{}) (reflect.Type, error) {
	modelType := reflect.TypeOf(model)
	if modelType == nil {
		return nil, fmt.Errorf("model cannot be nil")
	}

	originalType := modelType

	// Unwrap pointers, slices, and arrays to check the underlying type
	for modelType.Kind() == reflect.Ptr || modelType.Kind() == reflect.Slice || modelType.Kind() == reflect.Array {
		modelType = modelType.Elem()
	}

	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct or pointer to struct, got %s", originalType.String())
	}

	return modelType, nil
}
