package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.categories.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, "list_categories", err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, toCategoryResponse(&categories[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "create_category", bindError(err))
		return
	}

	name := normalizeName(req.Name)
	if name == "" {
		writeError(c, "create_category", badRequest("category name is required"))
		return
	}

	category, err := h.categories.CreateCategory(c.Request.Context(), name)
	if err != nil {
		writeError(c, "create_category", err)
		return
	}

	slog.Info("Category created", "category", category.Name)
	c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// DeleteCategory removes the category and its memberships. Users are kept.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id := c.Param("id")
	if err := h.categories.DeleteCategory(c.Request.Context(), id); err != nil {
		writeError(c, "delete_category", err)
		return
	}

	slog.Info("Category deleted", "category_id", id)
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

func (h *Handler) SetCategoryAdmins(c *gin.Context) {
	var req setAdminsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "set_category_admins", bindError(err))
		return
	}

	category, err := h.categories.SetCategoryAdmins(c.Request.Context(), c.Param("id"), req.AdminIDs)
	if err != nil {
		writeError(c, "set_category_admins", err)
		return
	}
	c.JSON(http.StatusOK, toCategoryResponse(category))
}
