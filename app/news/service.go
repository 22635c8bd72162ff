package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Arihant027/VS-News/app/cache"
	"github.com/Arihant027/VS-News/app/metrics"
)

var ErrUpstream = errors.New("news sources unavailable")

type Query struct {
	Category  string
	Text      string // overrides the configured query when set
	Timeframe Timeframe
}

// Service aggregates NewsAPI search and RSS feeds per category
type Service struct {
	sources   *SourceCache
	newsAPI   *NewsAPIClient // nil when no API key is configured
	fetcher   *Fetcher
	parser    *Parser
	filterer  *Filterer
	extractor *ContentExtractor
	cache     *cache.Cache // nil disables caching
	cacheTTL  time.Duration
}

func NewService(sources *SourceCache, newsAPI *NewsAPIClient, fetcher *Fetcher, c *cache.Cache, cacheTTL time.Duration) *Service {
	return &Service{
		sources:   sources,
		newsAPI:   newsAPI,
		fetcher:   fetcher,
		parser:    NewParser(),
		filterer:  NewFilterer(),
		extractor: NewContentExtractor(),
		cache:     c,
		cacheTTL:  cacheTTL,
	}
}

// Fetch returns the merged, filtered and deduplicated articles for a category,
// newest first. It fails only when every attempted source fails.
func (s *Service) Fetch(ctx context.Context, q Query) ([]Article, error) {
	source := s.sources.GetSource(q.Category)
	text := strings.TrimSpace(q.Text)

	key := cache.NewsKey(source.Key, text, string(q.Timeframe))
	var cached []Article
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		slog.Warn("News cache read failed", "key", key, "error", err)
	}
	metrics.RecordCacheLookup(hit)
	if hit {
		return cached, nil
	}

	return s.collect(ctx, source, text, q.Timeframe, key)
}

// Refresh fetches a category from upstream and overwrites its cache entry
func (s *Service) Refresh(ctx context.Context, q Query) ([]Article, error) {
	source := s.sources.GetSource(q.Category)
	text := strings.TrimSpace(q.Text)
	return s.collect(ctx, source, text, q.Timeframe, cache.NewsKey(source.Key, text, string(q.Timeframe)))
}

func (s *Service) collect(ctx context.Context, source *Source, text string, timeframe Timeframe, key string) ([]Article, error) {
	since := timeframe.Since(time.Now().UTC())

	var collected []Article
	attempted, failed := 0, 0

	if s.newsAPI != nil {
		searchText := text
		if searchText == "" {
			searchText = source.Query
		}
		if searchText != "" {
			attempted++
			articles, err := s.newsAPI.Search(ctx, SearchParams{
				Query:    searchText,
				Language: source.Language,
				From:     since,
				PageSize: source.MaxItems,
			})
			metrics.RecordNewsFetch("newsapi", err)
			if err != nil {
				failed++
				slog.Error("News API search failed", "category", source.Name, "error", err)
			} else {
				collected = append(collected, articles...)
			}
		}
	}

	for _, feedURL := range source.Feeds {
		attempted++
		articles, err := s.fetchFeed(ctx, feedURL)
		metrics.RecordNewsFetch("feed", err)
		if err != nil {
			failed++
			slog.Error("Feed fetch failed", "category", source.Name, "url", feedURL, "error", err)
			continue
		}
		if text != "" {
			articles = s.filterer.Run(articles, []Filter{{Field: "title", Includes: []string{text}}}, nil)
		}
		collected = append(collected, articles...)
	}

	if attempted > 0 && failed == attempted {
		return nil, fmt.Errorf("%w: %d of %d sources failed", ErrUpstream, failed, attempted)
	}

	articles := s.filterer.Run(collected, source.Filters, since)
	articles = Merge(articles)
	if source.MaxItems > 0 && len(articles) > source.MaxItems {
		articles = articles[:source.MaxItems]
	}
	for i := range articles {
		articles[i].Category = source.Name
	}

	if failed == 0 {
		if err := s.cache.SetJSON(ctx, key, articles, s.cacheTTL); err != nil {
			slog.Warn("News cache write failed", "key", key, "error", err)
		}
	}

	slog.Debug("News fetched", "category", source.Name, "sources", attempted, "failed", failed, "articles", len(articles))
	return articles, nil
}

// ExtractText fetches a page and returns its main readable text
func (s *Service) ExtractText(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") || pageURL.Host == "" {
		return "", fmt.Errorf("invalid url %q", rawURL)
	}

	data, err := s.fetcher.FetchPage(ctx, pageURL.String())
	metrics.RecordNewsFetch("page", err)
	if err != nil {
		return "", err
	}

	return s.extractor.Run(data, pageURL)
}

func (s *Service) fetchFeed(ctx context.Context, feedURL string) ([]Article, error) {
	data, err := s.fetcher.FetchFeed(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	return s.parser.Run(data)
}

// Merge drops duplicate URLs and orders the rest newest first. The input slice is reused.
func Merge(articles []Article) []Article {
	articles = dedupe(articles)
	sortNewestFirst(articles)
	return articles
}

// dedupe keeps the first article per URL, ignoring a trailing slash and case of the host
func dedupe(articles []Article) []Article {
	seen := make(map[string]bool, len(articles))
	out := articles[:0]
	for _, a := range articles {
		key := normalizeURL(a.URL)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

func sortNewestFirst(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i].PublishedAt, articles[j].PublishedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
