package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Arihant027/VS-News/app/news"
)

// GetNews returns external articles for one category, or for every category
// of the caller when none is given
func (h *Handler) GetNews(c *gin.Context) {
	caller := currentUser(c)

	timeframe, err := news.ParseTimeframe(c.Query("timeframe"))
	if err != nil {
		writeError(c, "get_news", err)
		return
	}

	var categories []string
	if category := normalizeName(c.Query("category")); category != "" {
		if !caller.IsSuperadmin() && !caller.HasCategory(category) {
			writeError(c, "get_news", forbidden("category %q is not assigned to you", category))
			return
		}
		categories = []string{category}
	} else {
		categories = caller.Categories
	}
	if len(categories) == 0 {
		writeError(c, "get_news", badRequest("category is required"))
		return
	}

	articles := []news.Article{}
	for _, category := range categories {
		found, err := h.news.Fetch(c.Request.Context(), news.Query{
			Category:  category,
			Text:      c.Query("q"),
			Timeframe: timeframe,
		})
		if err != nil {
			writeError(c, "get_news", err)
			return
		}
		articles = append(articles, found...)
	}

	c.JSON(http.StatusOK, gin.H{"articles": news.Merge(articles)})
}

// Summarize returns a model summary of the given text or of the page at url
func (h *Handler) Summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "summarize", bindError(err))
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" && req.URL != "" {
		extracted, err := h.news.ExtractText(c.Request.Context(), req.URL)
		if err != nil {
			writeError(c, "summarize_extract", err)
			return
		}
		text = strings.TrimSpace(extracted)
	}
	if text == "" {
		writeError(c, "summarize", badRequest("text or url with readable content is required"))
		return
	}

	summary, err := h.summarizer.Summarize(c.Request.Context(), text)
	if err != nil {
		writeError(c, "summarize", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
