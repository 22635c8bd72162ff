package news

import (
	"testing"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>Test Item 1</title>
      <link>https://example.com/item1</link>
      <description>&lt;p&gt;Test &lt;b&gt;Item&lt;/b&gt; 1 &amp;amp; more&lt;/p&gt;</description>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
      <author>test@example.com (Test Author)</author>
      <enclosure url="https://example.com/img.jpg" type="image/jpeg" length="100"/>
    </item>
    <item>
      <title>Test Item 2</title>
      <link>https://example.com/item2</link>
      <description>Plain</description>
    </item>
    <item>
      <title>No link</title>
    </item>
  </channel>
</rss>`

	articles, err := NewParser().Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.SourceName != "Test Feed" {
		t.Errorf("Expected source 'Test Feed', got: %s", first.SourceName)
	}
	if first.Summary != "Test Item 1 & more" {
		t.Errorf("Expected sanitized summary, got: %q", first.Summary)
	}
	if first.ImageURL != "https://example.com/img.jpg" {
		t.Errorf("Expected enclosure image, got: %s", first.ImageURL)
	}
	if first.PublishedAt == nil || first.PublishedAt.Hour() != 10 {
		t.Errorf("Expected published time 10:00 UTC, got: %v", first.PublishedAt)
	}
	if articles[1].PublishedAt != nil {
		t.Errorf("Expected nil published time for undated item")
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Feed</title>
  <entry>
    <title>Atom Entry</title>
    <link href="https://example.com/atom1"/>
    <updated>2024-01-02T03:04:05Z</updated>
    <summary>Atom summary</summary>
    <author><name>Jane Doe</name></author>
  </entry>
</feed>`

	articles, err := NewParser().Run([]byte(atomData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(articles))
	}
	if articles[0].Author != "Jane Doe" || articles[0].URL != "https://example.com/atom1" {
		t.Errorf("Unexpected article: %+v", articles[0])
	}
	if articles[0].PublishedAt == nil {
		t.Error("Expected updated time to be used as published time")
	}
}

func TestParseInvalidFeed(t *testing.T) {
	if _, err := NewParser().Run([]byte("not a feed")); err == nil {
		t.Error("Expected error for invalid feed")
	}
}
