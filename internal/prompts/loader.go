// Package prompts holds the generation prompt templates, embedded at
// compile time and keyed by the stage that uses them.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	_ "embed"
)

//go:embed generation.json
var generationJSON []byte

var (
	loadOnce  sync.Once
	templates map[string]string
	loadErr   error
)

func load() (map[string]string, error) {
	loadOnce.Do(func() {
		loadErr = json.Unmarshal(generationJSON, &templates)
		if loadErr != nil {
			loadErr = fmt.Errorf("failed to parse embedded prompts: %w", loadErr)
		}
	})
	return templates, loadErr
}

// Get returns the raw template for a prompt key.
func Get(key string) (string, error) {
	all, err := load()
	if err != nil {
		return "", err
	}
	tmpl, ok := all[key]
	if !ok {
		return "", fmt.Errorf("prompt %q not found", key)
	}
	return tmpl, nil
}

// Render looks up a prompt template and substitutes {{.Key}} placeholders
// with values from data. Placeholders without a value are left in place so
// a missing substitution is visible in the rendered prompt.
func Render(key string, data map[string]string) (string, error) {
	tmpl, err := Get(key)
	if err != nil {
		return "", err
	}
	for name, value := range data {
		tmpl = strings.ReplaceAll(tmpl, "{{."+name+"}}", value)
	}
	return tmpl, nil
}

// Keys returns all prompt keys.
func Keys() ([]string, error) {
	all, err := load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	return keys, nil
}
