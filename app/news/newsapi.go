package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultNewsAPIURL = "https://newsapi.org/v2"

// NewsAPIClient searches the NewsAPI v2 "everything" endpoint
type NewsAPIClient struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

func NewNewsAPIClient(baseURL, apiKey, userAgent string, timeout time.Duration) *NewsAPIClient {
	if baseURL == "" {
		baseURL = DefaultNewsAPIURL
	}
	return &NewsAPIClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type SearchParams struct {
	Query    string
	Language string
	From     *time.Time
	PageSize int
}

type newsAPIResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Author      string     `json:"author"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		URL         string     `json:"url"`
		URLToImage  string     `json:"urlToImage"`
		PublishedAt *time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// Search returns articles matching params, newest first as ordered upstream
func (c *NewsAPIClient) Search(ctx context.Context, params SearchParams) ([]Article, error) {
	query := url.Values{}
	query.Set("q", params.Query)
	query.Set("sortBy", "publishedAt")
	if params.Language != "" {
		query.Set("language", params.Language)
	}
	if params.From != nil {
		query.Set("from", params.From.UTC().Format(time.RFC3339))
	}
	if params.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(min(params.PageSize, 100)))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/everything?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call news api: %w", err)
	}
	defer resp.Body.Close()

	var payload newsAPIResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode news api response (HTTP %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || payload.Status != "ok" {
		return nil, fmt.Errorf("news api error: HTTP %d %s: %s", resp.StatusCode, payload.Code, payload.Message)
	}

	articles := make([]Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		if a.URL == "" || a.Title == "" || a.Title == "[Removed]" {
			continue
		}

		article := Article{
			Title:      strings.TrimSpace(a.Title),
			Summary:    plainText(a.Description),
			SourceName: strings.TrimSpace(a.Source.Name),
			URL:        strings.TrimSpace(a.URL),
			ImageURL:   strings.TrimSpace(a.URLToImage),
			Author:     strings.TrimSpace(a.Author),
		}
		if a.PublishedAt != nil {
			t := a.PublishedAt.UTC()
			article.PublishedAt = &t
		}
		articles = append(articles, article)
	}

	return articles, nil
}
