package dispatch

import "fmt"

// Registry holds all task modules grouped by category. Registration is
// append-only and happens once at process start; append order within a
// category is the evaluation order contract, no re-sorting.
type Registry struct {
	byCategory map[string][]Module
	catOrder   []string
	ids        map[string]string // module id -> category
}

func NewRegistry() *Registry {
	return &Registry{
		byCategory: map[string][]Module{},
		ids:        map[string]string{},
	}
}

func (r *Registry) Register(category string, m Module) error {
	if category == "" {
		return fmt.Errorf("registry: empty category")
	}
	desc := m.Descriptor()
	if desc.ID == "" {
		return fmt.Errorf("registry: module with empty id in category %s", category)
	}
	if desc.Category != category {
		return fmt.Errorf("registry: module %s declares category %s, registered under %s", desc.ID, desc.Category, category)
	}
	if prev, ok := r.ids[desc.ID]; ok {
		return fmt.Errorf("registry: duplicate module id %s (already in category %s)", desc.ID, prev)
	}
	if _, ok := r.byCategory[category]; !ok {
		r.catOrder = append(r.catOrder, category)
	}
	r.byCategory[category] = append(r.byCategory[category], m)
	r.ids[desc.ID] = category
	return nil
}

// Modules returns the category's modules in registration order. The
// returned slice must not be mutated.
func (r *Registry) Modules(category string) []Module {
	return r.byCategory[category]
}

// Categories returns the union of registered categories in first-seen
// order.
func (r *Registry) Categories() []string {
	return r.catOrder
}

// Descriptors returns every registered module's descriptor, category by
// category, in registration order.
func (r *Registry) Descriptors() []Descriptor {
	var out []Descriptor
	for _, cat := range r.catOrder {
		for _, m := range r.byCategory[cat] {
			out = append(out, m.Descriptor())
		}
	}
	return out
}

// Validate is the single startup-time integrity check; per-tick code
// assumes a valid registry.
func (r *Registry) Validate() error {
	for _, cat := range r.catOrder {
		if len(r.byCategory[cat]) == 0 {
			return fmt.Errorf("registry: category %s has no modules", cat)
		}
		for _, m := range r.byCategory[cat] {
			d := m.Descriptor()
			if d.CacheInterval == 0 {
				return fmt.Errorf("registry: module %s has zero cache interval", d.ID)
			}
			if len(d.TargetClasses) == 0 {
				return fmt.Errorf("registry: module %s declares no target classes", d.ID)
			}
		}
	}
	return nil
}
