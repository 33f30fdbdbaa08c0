package query

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDir loads every YAML query definition in dir, keyed by filename
// without extension. Subdirectories are skipped. A missing directory is not
// an error; it yields an empty set.
func LoadDir(dir string) (map[string]*MaterializedQuery, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*MaterializedQuery{}, nil
		}
		return nil, fmt.Errorf("reading queries dir: %w", err)
	}

	queries := make(map[string]*MaterializedQuery)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name)) //nolint:gosec // Path comes from config
		if err != nil {
			return nil, fmt.Errorf("reading query %s: %w", name, err)
		}

		var q MaterializedQuery
		if err := yaml.Unmarshal(data, &q); err != nil {
			return nil, fmt.Errorf("parsing query %s: %w", name, err)
		}
		queries[strings.TrimSuffix(name, ext)] = &q
	}
	return queries, nil
}
