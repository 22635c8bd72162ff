package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Arihant027/VS-News/app/newsletter"
)

// GenerateNewsletter runs the generate pipeline and answers with the PDF
func (h *Handler) GenerateNewsletter(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "generate_newsletter", bindError(err))
		return
	}

	result, err := h.newsletters.Generate(c.Request.Context(), currentUser(c), newsletter.GenerateRequest{
		Title:    req.Title,
		Category: normalizeName(req.Category),
		Articles: req.Articles,
	})
	if err != nil {
		writeError(c, "generate_newsletter", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("X-Newsletter-ID", result.Newsletter.ID)
	c.Data(http.StatusOK, result.Newsletter.PDFContentType, result.PDF)
}

func (h *Handler) ListNewsletters(c *gin.Context) {
	newsletters, err := h.newsletters.List(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, "list_newsletters", err)
		return
	}

	out := make([]newsletterResponse, 0, len(newsletters))
	for i := range newsletters {
		out = append(out, toNewsletterResponse(&newsletters[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) DownloadNewsletter(c *gin.Context) {
	n, pdf, contentType, err := h.newsletters.Download(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, "download_newsletter", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", newsletter.Slug(n.Title)+".pdf"))
	c.Header("X-Newsletter-ID", n.ID)
	c.Data(http.StatusOK, contentType, pdf)
}

func (h *Handler) UpdateNewsletterStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "update_newsletter_status", bindError(err))
		return
	}

	n, err := h.newsletters.UpdateStatus(c.Request.Context(), currentUser(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, "update_newsletter_status", err)
		return
	}
	c.JSON(http.StatusOK, toNewsletterResponse(n))
}

func (h *Handler) SendNewsletter(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "send_newsletter", bindError(err))
		return
	}

	result, err := h.newsletters.Send(c.Request.Context(), currentUser(c), c.Param("id"), req.Recipients)
	if err != nil {
		writeError(c, "send_newsletter", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    fmt.Sprintf("Newsletter sent to %d recipient(s)", len(result.Recipients)),
		"recipients": result.Recipients,
		"emailed":    result.Emailed,
		"newsletter": toNewsletterResponse(result.Newsletter),
	})
}

func (h *Handler) SendNewsletterToSelf(c *gin.Context) {
	result, err := h.newsletters.SendToSelf(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, "send_newsletter_to_self", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Newsletter sent to you",
		"emailed":    result.Emailed,
		"newsletter": toNewsletterResponse(result.Newsletter),
	})
}

func (h *Handler) DeleteNewsletter(c *gin.Context) {
	if err := h.newsletters.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		writeError(c, "delete_newsletter", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Newsletter deleted"})
}
