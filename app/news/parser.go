package news

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses an RSS/Atom/JSON feed into normalized articles
func (p *Parser) Run(data []byte) ([]Article, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || strings.TrimSpace(item.Link) == "" {
			continue
		}
		articles = append(articles, p.normalizeItem(feed, item))
	}

	return articles, nil
}

func (p *Parser) normalizeItem(feed *gofeed.Feed, item *gofeed.Item) Article {
	article := Article{
		Title:      strings.TrimSpace(item.Title),
		Summary:    plainText(cmp.Or(item.Description, item.Content)),
		SourceName: strings.TrimSpace(feed.Title),
		URL:        strings.TrimSpace(item.Link),
		ImageURL:   p.extractImage(item),
		Author:     p.extractAuthor(item),
	}

	switch {
	case item.PublishedParsed != nil:
		t := item.PublishedParsed.UTC()
		article.PublishedAt = &t
	case item.UpdatedParsed != nil:
		t := item.UpdatedParsed.UTC()
		article.PublishedAt = &t
	}

	return article
}

func (p *Parser) extractImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") {
			return enclosure.URL
		}
	}
	return ""
}

func (p *Parser) extractAuthor(item *gofeed.Item) string {
	var names []string
	for _, author := range item.Authors {
		if author != nil && strings.TrimSpace(author.Name) != "" {
			names = append(names, strings.TrimSpace(author.Name))
		}
	}
	if len(names) == 0 && item.Author != nil {
		names = append(names, strings.TrimSpace(item.Author.Name))
	}
	return strings.Join(names, ", ")
}
