package registry

import "iter"

// Named is a legacy object identified by pointer with an original name.
type Named interface {
	comparable
	DeclName() string
}

// Registry maps original names to legacy objects of one category and
// objects to their output names. Iteration follows registration order.
type Registry[T Named] struct {
	category string
	// names is shared across categories; nil disables uniqueness checks.
	names   *NameSet
	byName  map[string]T
	newName map[T]string
	order   []T
}

// New returns an empty registry for category. Objects are uniquified
// against names unless names is nil.
func New[T Named](category string, names *NameSet) *Registry[T] {
	return &Registry[T]{
		category: category,
		names:    names,
		byName:   make(map[string]T),
		newName:  make(map[T]string),
	}
}

// Category returns the category name.
func (r *Registry[T]) Category() string {
	return r.category
}

// Register records obj and assigns its output name on first call.
// Subsequent calls return the same name and have no effect.
func (r *Registry[T]) Register(obj T) string {
	if name, ok := r.newName[obj]; ok {
		return name
	}

	orig := obj.DeclName()
	if _, exists := r.byName[orig]; !exists {
		r.byName[orig] = obj
	}

	var name string
	switch {
	case r.names == nil:
		name = Identifier(orig)
	default:
		name = r.names.Claim(orig)
	}
	r.newName[obj] = name
	r.order = append(r.order, obj)
	return name
}

// Lookup returns the object registered under its original name.
// When two objects of the category share a name the first one wins.
func (r *Registry[T]) Lookup(name string) (T, bool) {
	obj, ok := r.byName[name]
	return obj, ok
}

// Name returns the output name of obj. Unregistered objects keep their
// original name.
func (r *Registry[T]) Name(obj T) string {
	if name, ok := r.newName[obj]; ok {
		return name
	}
	return obj.DeclName()
}

// NameOf returns the output name of the object registered under the
// original name, or the original name when none is.
func (r *Registry[T]) NameOf(original string) string {
	if obj, ok := r.byName[original]; ok {
		return r.newName[obj]
	}
	return original
}

// Contains reports whether an object with the original name is registered.
func (r *Registry[T]) Contains(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Renamed reports whether obj received an output name different from
// its original name.
func (r *Registry[T]) Renamed(obj T) bool {
	name, ok := r.newName[obj]
	return ok && name != obj.DeclName()
}

// Len returns the number of registered objects.
func (r *Registry[T]) Len() int {
	return len(r.order)
}

// All iterates over (object, output name) pairs in registration order.
func (r *Registry[T]) All() iter.Seq2[T, string] {
	return func(yield func(T, string) bool) {
		for _, obj := range r.order {
			if !yield(obj, r.newName[obj]) {
				return
			}
		}
	}
}

// Objects returns the registered objects in registration order.
func (r *Registry[T]) Objects() []T {
	out := make([]T, len(r.order))
	copy(out, r.order)
	return out
}
