package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Arihant027/VS-News/app/database"
	"github.com/Arihant027/VS-News/app/news"
)

// ListArticles returns the caller's curated articles, optionally limited to a timeframe
func (h *Handler) ListArticles(c *gin.Context) {
	timeframe, err := news.ParseTimeframe(c.Query("timeframe"))
	if err != nil {
		writeError(c, "list_articles", err)
		return
	}

	articles, err := h.articles.ListArticles(c.Request.Context(), currentUser(c).ID, timeframe.Since(time.Now()))
	if err != nil {
		writeError(c, "list_articles", err)
		return
	}
	c.JSON(http.StatusOK, toArticleResponses(articles))
}

// SaveArticles upserts the submitted articles keyed on their original URL
func (h *Handler) SaveArticles(c *gin.Context) {
	var req saveArticlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "save_articles", bindError(err))
		return
	}

	articles := make([]database.CuratedArticle, 0, len(req.Articles))
	for _, a := range req.Articles {
		articles = append(articles, database.CuratedArticle{
			Title:       strings.TrimSpace(a.Title),
			Summary:     a.Summary,
			SourceName:  a.SourceName,
			OriginalURL: strings.TrimSpace(a.OriginalURL),
			ImageURL:    a.ImageURL,
			PublishedAt: a.PublishedAt,
			Category:    normalizeName(a.Category),
		})
	}

	created, updated, err := h.articles.SaveArticles(c.Request.Context(), currentUser(c).ID, articles)
	if err != nil {
		writeError(c, "save_articles", err)
		return
	}

	status := http.StatusOK
	if created > 0 {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"saved":    created,
		"updated":  updated,
		"articles": toArticleResponses(articles),
	})
}

// DeleteArticle removes one of the caller's articles; other owners' articles look absent
func (h *Handler) DeleteArticle(c *gin.Context) {
	if err := h.articles.DeleteArticle(c.Request.Context(), c.Param("id"), currentUser(c).ID); err != nil {
		writeError(c, "delete_article", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Article deleted"})
}
