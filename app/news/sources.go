package news

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const defaultMaxItems = 30

// SourceCache holds the per-category source configuration loaded from *.yml files
type SourceCache struct {
	sourcesDir string
	cache      map[string]*Source
	mu         sync.RWMutex
}

func NewSourceCache(sourcesDir string) *SourceCache {
	return &SourceCache{
		sourcesDir: sourcesDir,
		cache:      make(map[string]*Source),
	}
}

// Run loads every *.yml file of the sources directory. A missing directory is not an error.
func (sc *SourceCache) Run() error {
	if sc.sourcesDir == "" {
		return nil
	}
	if _, err := os.Stat(sc.sourcesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(sc.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		key := strings.TrimSuffix(filepath.Base(file), ".yml")

		source, err := sc.LoadSource(key)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source configuration loaded", "category", source.Name, "feeds", len(source.Feeds))
	}

	return nil
}

func (sc *SourceCache) LoadSource(key string) (*Source, error) {
	file := filepath.Join(sc.sourcesDir, key+".yml")
	source, err := sc.parseSource(file)
	if err != nil {
		return nil, err
	}

	source.Key = key
	if source.Name == "" {
		source.Name = key
	}

	if err := sc.validateSource(source); err != nil {
		return nil, fmt.Errorf("invalid source %s: %w", file, err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cache[strings.ToLower(source.Key)] = source
	sc.cache[strings.ToLower(source.Name)] = source

	return source, nil
}

// GetSource returns the configuration for a category, matched on file key or
// name regardless of case. Unconfigured categories get a query-only default.
func (sc *SourceCache) GetSource(category string) *Source {
	sc.mu.RLock()
	source, ok := sc.cache[strings.ToLower(strings.TrimSpace(category))]
	sc.mu.RUnlock()

	if ok {
		return source
	}

	return &Source{
		Key:      category,
		Name:     category,
		Query:    category,
		MaxItems: defaultMaxItems,
	}
}

// GetSources returns every loaded source once, ordered by key
func (sc *SourceCache) GetSources() []*Source {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	seen := make(map[*Source]bool, len(sc.cache))
	sources := make([]*Source, 0, len(sc.cache))
	for _, s := range sc.cache {
		if !seen[s] {
			seen[s] = true
			sources = append(sources, s)
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Key < sources[j].Key })
	return sources
}

func (sc *SourceCache) GetSourceCount() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	seen := make(map[*Source]bool, len(sc.cache))
	for _, s := range sc.cache {
		seen[s] = true
	}
	return len(seen)
}

func (sc *SourceCache) parseSource(file string) (*Source, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var source Source
	if err := yaml.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if source.MaxItems == 0 {
		source.MaxItems = defaultMaxItems
	}

	return &source, nil
}

func (sc *SourceCache) validateSource(source *Source) error {
	if source == nil {
		return fmt.Errorf("source is nil")
	}

	if strings.TrimSpace(source.Query) == "" && len(source.Feeds) == 0 {
		return fmt.Errorf("query or at least one feed is required")
	}

	if source.MaxItems < 0 {
		return fmt.Errorf("max items must be non-negative")
	}

	for i, feed := range source.Feeds {
		if !strings.HasPrefix(feed, "http://") && !strings.HasPrefix(feed, "https://") {
			return fmt.Errorf("invalid feed URL at index %d: %s", i, feed)
		}
	}

	for i, filter := range source.Filters {
		if !validFilterFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}
