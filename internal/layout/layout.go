package layout

import (
	"sort"

	"sierra2casm/internal/sierra"
)

// TypeInfo is per-type metadata.
type TypeInfo struct {
	// Size is the number of memory cells a value of the type occupies.
	Size int
}

// Sizer answers get_info queries. Providers receive one to resolve the
// element types of composite types.
type Sizer interface {
	Info(t sierra.Type) (TypeInfo, error)
}

// Provider computes TypeInfo for every instantiation of one type name.
type Provider interface {
	Info(args []sierra.TemplateArg, types Sizer) (TypeInfo, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(args []sierra.TemplateArg, types Sizer) (TypeInfo, error)

func (f ProviderFunc) Info(args []sierra.TemplateArg, types Sizer) (TypeInfo, error) {
	return f(args, types)
}

// Registry maps type names to providers. It is never mutated after
// construction and may be shared by concurrent compilations.
type Registry struct {
	providers map[string]Provider
}

// New builds a registry from the given providers.
func New(providers map[string]Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for name, p := range providers {
		r.providers[name] = p
	}
	return r
}

// With returns a copy of r extended with one more provider.
func (r *Registry) With(name string, p Provider) *Registry {
	out := New(r.providers)
	out.providers[name] = p
	return out
}

// Known reports whether name has a provider.
func (r *Registry) Known(name string) bool {
	_, ok := r.providers[name]
	return ok
}

// Names lists the registered type names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Info computes the metadata of t.
func (r *Registry) Info(t sierra.Type) (TypeInfo, error) {
	q := &query{reg: r}
	return q.Info(t)
}

// Size is a shorthand for Info(t).Size.
func (r *Registry) Size(t sierra.Type) (int, error) {
	info, err := r.Info(t)
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

// Sizes returns the size of each type in order.
func (r *Registry) Sizes(ts []sierra.Type) ([]int, error) {
	out := make([]int, 0, len(ts))
	for _, t := range ts {
		size, err := r.Size(t)
		if err != nil {
			return nil, err
		}
		out = append(out, size)
	}
	return out, nil
}

// query tracks the types being resolved by one Info call so that providers
// which refer back to their own type are reported instead of looping.
type query struct {
	reg   *Registry
	stack []sierra.Type
}

func (q *query) Info(t sierra.Type) (TypeInfo, error) {
	for i, open := range q.stack {
		if open.Equal(t) {
			cycle := append([]sierra.Type(nil), q.stack[i:]...)
			cycle = append(cycle, t)
			return TypeInfo{}, &Error{Kind: ErrRecursiveType, Type: t, Cycle: cycle}
		}
	}
	p, ok := q.reg.providers[t.Name]
	if !ok {
		return TypeInfo{}, &Error{Kind: ErrUnknownType, Type: t}
	}
	q.stack = append(q.stack, t)
	info, err := p.Info(t.Args, q)
	q.stack = q.stack[:len(q.stack)-1]
	if err != nil {
		return TypeInfo{}, err
	}
	if info.Size < 0 {
		return TypeInfo{}, &Error{Kind: ErrNegativeSize, Type: t, Size: info.Size}
	}
	return info, nil
}
