package prefhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Catalog is an immutable snapshot of the merged user preferences of every
// registered module. It is safe for concurrent use.
type Catalog struct {
	defs        map[string]Definition
	keys        []string
	collectedAt time.Time
}

// NewCatalog builds a Catalog from already merged definitions.
// Each definition is validated against its key.
func NewCatalog(defs Definitions, collectedAt time.Time) (*Catalog, error) {
	for key, def := range defs {
		if err := def.Validate(key); err != nil {
			return nil, err
		}
	}
	return newCatalog(defs, collectedAt), nil
}

func newCatalog(defs Definitions, collectedAt time.Time) *Catalog {
	c := &Catalog{
		defs:        make(map[string]Definition, len(defs)),
		keys:        make([]string, 0, len(defs)),
		collectedAt: collectedAt,
	}
	for key, def := range defs {
		def = def.clone()
		def.DefaultValue = canonicalDefault(def)
		c.defs[key] = def
		c.keys = append(c.keys, key)
	}
	sort.Strings(c.keys)
	return c
}

// CollectedAt returns when the hooks were invoked to build the catalog.
func (c *Catalog) CollectedAt() time.Time {
	return c.collectedAt
}

// Len returns the number of preferences in the catalog.
func (c *Catalog) Len() int {
	return len(c.keys)
}

// Keys returns the preference keys in lexical order.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Get returns the definition for key.
func (c *Catalog) Get(key string) (Definition, bool) {
	def, ok := c.defs[key]
	if !ok {
		return Definition{}, false
	}
	return def.clone(), true
}

// All returns every definition, ordered by key.
func (c *Catalog) All() []Entry {
	entries := make([]Entry, 0, len(c.keys))
	for _, key := range c.keys {
		entries = append(entries, Entry{Key: key, Definition: c.defs[key].clone()})
	}
	return entries
}

// Definitions returns a copy of the merged definitions map.
func (c *Catalog) Definitions() Definitions {
	out := make(Definitions, len(c.defs))
	for key, def := range c.defs {
		out[key] = def.clone()
	}
	return out
}

// Modules returns the names of the modules that contributed at least one
// preference, in lexical order.
func (c *Catalog) Modules() []string {
	seen := make(map[string]bool)
	var modules []string
	for _, def := range c.defs {
		if def.Module != "" && !seen[def.Module] {
			seen[def.Module] = true
			modules = append(modules, def.Module)
		}
	}
	sort.Strings(modules)
	return modules
}

// Default returns the default value of key.
func (c *Catalog) Default(key string) (any, error) {
	def, ok := c.defs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return copyValue(def.DefaultValue), nil
}

// FormItem returns a copy of the form item of key with its DefaultValue
// filled from the definition.
func (c *Catalog) FormItem(key string) (*FormItem, error) {
	def, ok := c.defs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if def.FormItem == nil {
		return nil, fmt.Errorf("%w: %s has no form item", ErrNotFound, key)
	}
	def = def.clone()
	item := def.FormItem
	item.DefaultValue = def.DefaultValue
	if item.Title == "" {
		item.Title = def.Title
	}
	return item, nil
}

// ForForm returns the preferences attached to formID, ordered by form item
// weight and then by key. The form items carry their default values.
func (c *Catalog) ForForm(formID string) []Entry {
	var entries []Entry
	for _, key := range c.keys {
		def := c.defs[key]
		if !def.AttachedTo(formID) {
			continue
		}
		item, err := c.FormItem(key)
		if err != nil {
			// AttachedTo implies a form item; Validate rejects form_ids without one.
			continue
		}
		def = def.clone()
		def.FormItem = item
		entries = append(entries, Entry{Key: key, Definition: def})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].FormItem.Weight < entries[j].FormItem.Weight
	})
	return entries
}

// Resolve returns the effective value of key given the raw value a host has
// stored for it, or nil when nothing is stored.
func (c *Catalog) Resolve(key string, raw *string) (any, error) {
	def, ok := c.defs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return Resolve(def.clone(), raw)
}

// Encode encodes value for storage according to the definition of key.
func (c *Catalog) Encode(key string, value any) (string, error) {
	def, ok := c.defs[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return Encode(def, value)
}

type catalogJSON struct {
	CollectedAt time.Time   `json:"collected_at"`
	Preferences Definitions `json:"preferences"`
}

// MarshalJSON encodes the catalog for caches and HTTP responses.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(catalogJSON{CollectedAt: c.collectedAt, Preferences: c.defs})
}

// UnmarshalJSON decodes a catalog produced by MarshalJSON. Integer defaults
// decode as int, as they do when collected from hooks.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw catalogJSON
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	decoded, err := NewCatalog(raw.Preferences, raw.CollectedAt)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}
