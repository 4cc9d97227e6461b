// validation.go
package prefhook

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.]*$`)

func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q must be a lower case machine name", ErrInvalidKey, key)
	}
	return nil
}

// Validate checks a definition returned for key. It is called by the
// Registry on every definition before merging.
func (d Definition) Validate(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: %s: title is required", ErrInvalidDefinition, key)
	}

	if d.Serialize {
		if _, err := json.Marshal(d.DefaultValue); err != nil {
			return fmt.Errorf("%w: %s: default_value cannot be serialized: %v", ErrInvalidDefinition, key, err)
		}
	} else if !isScalar(d.DefaultValue) {
		return fmt.Errorf("%w: %s: composite default_value requires serialize", ErrInvalidDefinition, key)
	}

	for _, id := range d.FormIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: %s: empty form id", ErrInvalidDefinition, key)
		}
	}
	if len(d.FormIDs) > 0 && d.FormItem == nil {
		return fmt.Errorf("%w: %s: form_ids set without a form_item", ErrInvalidDefinition, key)
	}

	if d.FormItem != nil {
		if err := validateFormItem(key, d.FormItem, d.DefaultValue); err != nil {
			return err
		}
	}
	return nil
}

func validateFormItem(key string, item *FormItem, defaultValue any) error {
	if !isValidWidget(item.Type) {
		return fmt.Errorf("%w: %s: unsupported form item type %q", ErrInvalidDefinition, key, item.Type)
	}
	if !hasOptions(item.Type) {
		if len(item.Options) > 0 {
			return fmt.Errorf("%w: %s: %s does not take options", ErrInvalidDefinition, key, item.Type)
		}
		return nil
	}

	if len(item.Options) == 0 {
		return fmt.Errorf("%w: %s: %s requires options", ErrInvalidDefinition, key, item.Type)
	}
	seen := make(map[string]bool, len(item.Options))
	for _, opt := range item.Options {
		if opt.Value == "" {
			return fmt.Errorf("%w: %s: option with empty value", ErrInvalidDefinition, key)
		}
		if seen[opt.Value] {
			return fmt.Errorf("%w: %s: duplicate option %q", ErrInvalidDefinition, key, opt.Value)
		}
		seen[opt.Value] = true
	}

	if defaultValue == nil {
		return nil
	}
	var defaults []any
	if item.Type == WidgetCheckboxes {
		list, ok := asList(defaultValue)
		if !ok {
			return fmt.Errorf("%w: %s: checkboxes default_value must be a list", ErrInvalidDefinition, key)
		}
		defaults = list
	} else {
		defaults = []any{defaultValue}
	}
	for _, v := range defaults {
		if !isScalar(v) || !seen[formatScalar(v)] {
			return fmt.Errorf("%w: %s: default %v is not one of the options", ErrInvalidDefinition, key, v)
		}
	}
	return nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return true
	default:
		return false
	}
}

// asList accepts the list shapes produced by Go literals and by the JSON,
// YAML and TOML decoders.
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
