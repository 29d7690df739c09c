package core

import (
	"fmt"
	"sync"
)

var (
	registry   []FieldDescriptor
	registered = make(map[string]bool)
	registryMu sync.Mutex

	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Register adds field descriptors to the process-wide catalog.
// Panics if a key is empty, already registered, or if the default catalog
// has already been built.
func Register(descs ...FieldDescriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if defaultCatalog != nil {
		panic("field registered after catalog was sealed")
	}

	for _, d := range descs {
		if d.Key == "" {
			panic("field registered with empty key")
		}
		if registered[d.Key] {
			panic(fmt.Sprintf("field already registered: %s", d.Key))
		}
		registered[d.Key] = true
		registry = append(registry, d)
	}
}

// DefaultCatalog returns the catalog built from every registered field.
// The first call seals the registry.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		registryMu.Lock()
		defer registryMu.Unlock()

		cat, err := NewCatalog(registry)
		if err != nil {
			panic(fmt.Sprintf("invalid field registry: %v", err))
		}
		defaultCatalog = cat
	})
	return defaultCatalog
}

// Catalog is an immutable, ordered set of field descriptors. It is safe for
// concurrent use.
type Catalog struct {
	fields  []FieldDescriptor
	byKey   map[string]int
	byGroup map[FieldGroup][]int
}

// NewCatalog builds a catalog from descs. Fields are ordered by group
// display order, then by the order they were given.
func NewCatalog(descs []FieldDescriptor) (*Catalog, error) {
	c := &Catalog{
		byKey:   make(map[string]int, len(descs)),
		byGroup: make(map[FieldGroup][]int),
	}

	pending := make(map[FieldGroup][]FieldDescriptor)
	for _, d := range descs {
		if d.Key == "" {
			return nil, fmt.Errorf("field with label %q has no key", d.Label)
		}
		if d.Label == "" {
			return nil, fmt.Errorf("field %s has no label", d.Key)
		}
		if !d.Group.Valid() {
			return nil, fmt.Errorf("field %s has unknown group %q", d.Key, d.Group)
		}
		if d.Type == ValuePeriod && d.EndAttr == "" {
			return nil, fmt.Errorf("period field %s has no end attribute", d.Key)
		}
		if d.Type == ValueEnum && len(d.Enum) == 0 {
			return nil, fmt.Errorf("enum field %s has no code table", d.Key)
		}
		if d.Attr == "" {
			d.Attr = d.Key
		}
		pending[d.Group] = append(pending[d.Group], d)
	}

	for _, g := range groupOrder {
		for _, d := range pending[g] {
			if _, dup := c.byKey[d.Key]; dup {
				return nil, fmt.Errorf("duplicate field key: %s", d.Key)
			}
			idx := len(c.fields)
			d.Order = idx
			c.fields = append(c.fields, d)
			c.byKey[d.Key] = idx
			c.byGroup[g] = append(c.byGroup[g], idx)
		}
	}

	return c, nil
}

// Resolve returns the descriptor for key.
// Returns false if not found.
func (c *Catalog) Resolve(key string) (FieldDescriptor, bool) {
	idx, ok := c.byKey[key]
	if !ok {
		return FieldDescriptor{}, false
	}
	return c.fields[idx], true
}

// LabelsFor maps keys to labels in the order given. Unknown keys are
// dropped; duplicates keep their first position.
func (c *Catalog) LabelsFor(keys []string) []FieldLabel {
	out := make([]FieldLabel, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		d, ok := c.Resolve(k)
		if !ok {
			continue
		}
		seen[k] = true
		out = append(out, FieldLabel{Key: d.Key, Label: d.Label})
	}
	return out
}

// TotalFieldCount returns the number of fields in the catalog.
func (c *Catalog) TotalFieldCount() int {
	return len(c.fields)
}

// AllKeys returns every field key in catalog order.
func (c *Catalog) AllKeys() []string {
	keys := make([]string, len(c.fields))
	for i, d := range c.fields {
		keys[i] = d.Key
	}
	return keys
}

// All returns every descriptor in catalog order.
func (c *Catalog) All() []FieldDescriptor {
	out := make([]FieldDescriptor, len(c.fields))
	copy(out, c.fields)
	return out
}

// ByGroup returns the descriptors of one group in catalog order.
func (c *Catalog) ByGroup(group FieldGroup) []FieldDescriptor {
	idxs := c.byGroup[group]
	out := make([]FieldDescriptor, len(idxs))
	for i, idx := range idxs {
		out[i] = c.fields[idx]
	}
	return out
}

// Groups returns the groups that have at least one field, in display order.
func (c *Catalog) Groups() []FieldGroup {
	var out []FieldGroup
	for _, g := range groupOrder {
		if len(c.byGroup[g]) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// GroupLabel returns the display name of group.
func (c *Catalog) GroupLabel(group FieldGroup) string {
	return group.Label()
}

// UnknownKeys returns the keys not present in the catalog.
func (c *Catalog) UnknownKeys(keys []string) []string {
	var out []string
	for _, k := range keys {
		if _, ok := c.byKey[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}
