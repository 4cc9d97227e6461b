// Package file implements user preferences hooks declared in YAML, TOML or
// JSON files, one file per module. The file's base name is the module name
// and its top-level keys are the preference keys.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/CreativeUnicorns/prefhook"
)

// ErrUnsupportedFormat is returned for files whose extension is not .yaml,
// .yml, .toml or .json.
var ErrUnsupportedFormat = errors.New("unsupported definitions file format")

type format int

const (
	formatYAML format = iota
	formatTOML
	formatJSON
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".toml":
		return formatTOML, nil
	case ".json":
		return formatJSON, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Hook reads a module's definitions from a file every time it is invoked,
// so edits are picked up by the next Registry.Collect.
type Hook struct {
	name   string
	path   string
	format format
}

// New returns a Hook for the definitions file at path.
func New(path string) (*Hook, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		return nil, fmt.Errorf("%w: %s has no module name", prefhook.ErrInvalidInput, path)
	}
	return &Hook{name: name, path: path, format: f}, nil
}

// Dir returns one Hook per supported definitions file in dir, ordered by
// file name. Other files are ignored.
func Dir(dir string) ([]prefhook.Hook, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := formatOf(e.Name()); err != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	hooks := make([]prefhook.Hook, 0, len(names))
	for _, n := range names {
		h, err := New(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, h)
	}
	return hooks, nil
}

// Name returns the module name derived from the file name.
func (h *Hook) Name() string {
	return h.name
}

// Path returns the definitions file path.
func (h *Hook) Path() string {
	return h.path
}

// UserPreferences reads and decodes the definitions file.
func (h *Hook) UserPreferences(ctx context.Context) (prefhook.Definitions, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(h.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", h.path, err)
	}

	defs := make(prefhook.Definitions)
	switch h.format {
	case formatYAML:
		err = yaml.Unmarshal(data, &defs)
	case formatTOML:
		_, err = toml.Decode(string(data), &defs)
	case formatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&defs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", h.path, err)
	}

	for key, def := range defs {
		def.DefaultValue = normalize(def.DefaultValue)
		defs[key] = def
	}
	return defs, nil
}

// normalize converts decoder specific shapes (TOML arrays of tables, TOML
// int64 and JSON numbers) to []any, int and float64, the shapes yaml.v3
// produces.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case int64:
		if int64(int(t)) == t {
			return int(t)
		}
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return normalize(n)
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
