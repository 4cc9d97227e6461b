// Package prefhook defines the core types used by the user preferences hook.
package prefhook

import (
	"time"
)

// Definition describes a single user preference as returned by a hook.
// Struct tags cover the JSON, YAML and TOML encodings used by the catalog
// stores and the declarative file hooks.
type Definition struct {
	// Title is the human-readable label for the preference. Required.
	Title string `json:"title" yaml:"title" toml:"title"`
	// Serialize marks values that are composite structures (lists, maps) and
	// must be encoded before being persisted by the host.
	Serialize bool `json:"serialize,omitempty" yaml:"serialize,omitempty" toml:"serialize,omitempty"`
	// DefaultValue is used when the user has yet to set the preference. It is
	// also passed to the form item, if any. For serialized preferences this is
	// the decoded value.
	DefaultValue any `json:"default_value,omitempty" yaml:"default_value,omitempty" toml:"default_value,omitempty"`
	// FormIDs lists the host forms that should render a control for this preference.
	FormIDs []string `json:"form_ids,omitempty" yaml:"form_ids,omitempty" toml:"form_ids,omitempty"`
	// FormItem describes the control added to the forms named in FormIDs.
	FormItem *FormItem `json:"form_item,omitempty" yaml:"form_item,omitempty" toml:"form_item,omitempty"`
	// Module is the name of the hook that contributed the definition.
	// The Registry sets it while merging; values returned by hooks are ignored.
	Module string `json:"module,omitempty" yaml:"-" toml:"-"`
}

// FormItem is a form control descriptor for a preference.
type FormItem struct {
	Title       string   `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Type        string   `json:"type" yaml:"type" toml:"type"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Required    bool     `json:"required,omitempty" yaml:"required,omitempty" toml:"required,omitempty"`
	Options     []Choice `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
	Weight      int      `json:"weight,omitempty" yaml:"weight,omitempty" toml:"weight,omitempty"`
	// Access names the permission a user needs to see the control.
	// It is opaque to this package and evaluated by the host.
	Access string `json:"access,omitempty" yaml:"access,omitempty" toml:"access,omitempty"`
	// DefaultValue is filled from Definition.DefaultValue by Catalog.FormItem.
	DefaultValue any `json:"default_value,omitempty" yaml:"-" toml:"-"`
}

// Choice is a single option of a checkboxes, radios or select control.
type Choice struct {
	Value string `json:"value" yaml:"value" toml:"value"`
	Label string `json:"label" yaml:"label" toml:"label"`
}

// Definitions maps preference keys to their definitions. It is the return
// value of a hook.
type Definitions map[string]Definition

// Entry pairs a preference key with its definition.
type Entry struct {
	Key string `json:"key"`
	Definition
}

// AttachedTo reports whether the preference should be rendered on formID.
func (d Definition) AttachedTo(formID string) bool {
	for _, id := range d.FormIDs {
		if id == formID {
			return true
		}
	}
	return false
}

// clone copies the slices, the form item and the lists and maps of the
// default value so a catalog never shares mutable state with its callers.
func (d Definition) clone() Definition {
	out := d
	out.DefaultValue = copyValue(d.DefaultValue)
	if d.FormIDs != nil {
		out.FormIDs = append([]string(nil), d.FormIDs...)
	}
	if d.FormItem != nil {
		item := *d.FormItem
		if d.FormItem.Options != nil {
			item.Options = append([]Choice(nil), d.FormItem.Options...)
		}
		item.DefaultValue = copyValue(d.FormItem.DefaultValue)
		out.FormItem = &item
	}
	return out
}

// ConflictPolicy decides what Collect does when two modules define the same key.
type ConflictPolicy int

const (
	// ConflictReject fails the collection with a *CollisionError.
	ConflictReject ConflictPolicy = iota
	// ConflictFirstWins keeps the definition of the module registered first.
	ConflictFirstWins
	// ConflictLastWins keeps the definition of the module registered last.
	ConflictLastWins
)

func (p ConflictPolicy) String() string {
	switch p {
	case ConflictReject:
		return "reject"
	case ConflictFirstWins:
		return "first-wins"
	case ConflictLastWins:
		return "last-wins"
	default:
		return "unknown"
	}
}

// Config holds the internal configuration for a Registry instance.
// It is populated by applying functional Options when a Registry is created
// with New.
type Config struct {
	cache       Cache
	cacheTTL    time.Duration
	logger      Logger
	policy      ConflictPolicy
	hookTimeout time.Duration
	concurrency int
}

// Option defines the signature for a functional option that configures a Registry.
type Option func(*Config)

// WithCache sets the Cache used to share the merged catalog between
// processes. Optional.
func WithCache(cache Cache) Option {
	return func(c *Config) {
		c.cache = cache
	}
}

// WithCacheTTL sets how long a cached catalog stays valid. Zero means no expiry.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.cacheTTL = ttl
	}
}

// WithLogger sets the Logger used by the Registry.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// WithConflictPolicy sets how key collisions between modules are handled.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(c *Config) {
		c.policy = p
	}
}

// WithHookTimeout bounds each hook invocation. Zero disables the timeout.
func WithHookTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.hookTimeout = d
	}
}

// WithConcurrency limits how many hooks are invoked at once.
func WithConcurrency(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.concurrency = n
		}
	}
}
