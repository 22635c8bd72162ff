package news

import (
	"time"
)

// Article is the normalized shape of a news item from any upstream source
type Article struct {
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	SourceName  string     `json:"sourceName"`
	URL         string     `json:"url"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Category    string     `json:"category,omitempty"`
}

// Configuration types

type Source struct {
	Key      string   // Derived from filename (without .yml extension)
	Name     string   `yaml:"name"`
	Query    string   `yaml:"query"`
	Language string   `yaml:"language"`
	MaxItems int      `yaml:"max_items"`
	Feeds    []string `yaml:"feeds"`
	Filters  []Filter `yaml:"filters"`
}

type Filter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
