package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// EnableEnvKey gates the settings export; without it nothing is written.
const EnableEnvKey = "ENABLE_ENV"

// Environ returns the process environment as a map.
func Environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		out[k] = v
	}
	return out
}

// NestedSettings turns keys such as "telegram@token" into {"telegram": {"token": ...}}.
// It returns false when EnableEnvKey is not present.
func NestedSettings(environ map[string]string) (map[string]any, bool, error) {
	if _, ok := environ[EnableEnvKey]; !ok {
		return nil, false, nil
	}

	keys := make([]string, 0, len(environ))
	for k := range environ {
		if k != EnableEnvKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	root := make(map[string]any)
	for _, key := range keys {
		if err := insert(root, strings.Split(key, "@"), environ[key]); err != nil {
			return nil, true, fmt.Errorf("setting %q: %w", key, err)
		}
	}
	return root, true, nil
}

func insert(node map[string]any, path []string, value string) error {
	head := path[0]
	if len(path) == 1 {
		if _, exists := node[head].(map[string]any); exists {
			return fmt.Errorf("%q is already a group", head)
		}
		node[head] = value
		return nil
	}
	child, exists := node[head]
	if !exists {
		child = make(map[string]any)
		node[head] = child
	}
	group, ok := child.(map[string]any)
	if !ok {
		return fmt.Errorf("%q is already a value", head)
	}
	return insert(group, path[1:], value)
}

// WriteSettingsJSON writes NestedSettings as indented JSON. It writes nothing and
// returns false when EnableEnvKey is not present.
func WriteSettingsJSON(w io.Writer, environ map[string]string) (bool, error) {
	settings, enabled, err := NestedSettings(environ)
	if err != nil || !enabled {
		return enabled, err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(settings); err != nil {
		return true, err
	}
	return true, nil
}
