package newsletter

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Article is one entry of a newsletter as submitted by the curator
type Article struct {
	ID         string `json:"id,omitempty"`
	Title      string `json:"title" binding:"required"`
	Summary    string `json:"summary"`
	SourceName string `json:"sourceName"`
	URL        string `json:"url" binding:"required,url"`
	ImageURL   string `json:"imageUrl,omitempty" binding:"omitempty,url"`
}

const promptTemplate = `Create an HTML newsletter titled %q for the %q category.

Articles (JSON):
%s

Layout rules:
- Return one complete HTML document with <html>, <head> and <body>.
- Use inline CSS only; no external stylesheets, scripts or web fonts.
- Single column, fixed width of 700px, centered, white background.
- Start with a header section showing the newsletter title, the category and today's date.
- Add one article section per article in the given order: title linked to its url, source name,
  the image when imageUrl is set (max-width 100%%), then the summary as a paragraph.
- End with a short quote section related to the category.
- Do not invent articles and do not change article urls.`

// BuildPrompt embeds the articles as JSON together with the layout instructions
func BuildPrompt(title, category string, articles []Article) (string, error) {
	payload, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode articles: %w", err)
	}

	return fmt.Sprintf(promptTemplate, strings.TrimSpace(title), strings.TrimSpace(category), payload), nil
}
