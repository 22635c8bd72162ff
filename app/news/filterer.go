package news

import (
	"strings"
	"time"
)

var validFilterFields = map[string]bool{
	"title":   true,
	"summary": true,
	"source":  true,
	"url":     true,
	"author":  true,
}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run drops articles rejected by the include/exclude rules or published before since
func (f *Filterer) Run(articles []Article, filters []Filter, since *time.Time) []Article {
	kept := make([]Article, 0, len(articles))
	for _, article := range articles {
		if since != nil && article.PublishedAt != nil && article.PublishedAt.Before(*since) {
			continue
		}
		if f.isFiltered(article, filters) {
			continue
		}
		kept = append(kept, article)
	}
	return kept
}

func (f *Filterer) isFiltered(article Article, filters []Filter) bool {
	for _, filter := range filters {
		value := f.getFieldValue(article, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true
			}
		}
	}

	return false
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(article Article, field string) string {
	switch field {
	case "title":
		return article.Title
	case "summary":
		return article.Summary
	case "source":
		return article.SourceName
	case "url":
		return article.URL
	case "author":
		return article.Author
	default:
		return ""
	}
}
