package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Arihant027/VS-News/app/auth"
	"github.com/Arihant027/VS-News/app/database"
)

func (h *Handler) ListUsers(c *gin.Context) {
	userType := c.Query("type")
	switch userType {
	case "", database.UserTypeUser, database.UserTypeAdmin, database.UserTypeSuperadmin:
	default:
		writeError(c, "list_users", badRequest("unknown user type %q", userType))
		return
	}

	users, err := h.users.ListUsers(c.Request.Context(), userType)
	if err != nil {
		writeError(c, "list_users", err)
		return
	}
	c.JSON(http.StatusOK, toUserResponses(users))
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "create_user", bindError(err))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(c, "create_user", err)
		return
	}

	user := &database.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		UserType:     req.UserType,
		Status:       req.Status,
		Categories:   normalizeNames(req.Categories),
	}
	if err := h.users.CreateUser(c.Request.Context(), user); err != nil {
		writeError(c, "create_user", err)
		return
	}

	slog.Info("User created", "user_id", user.ID, "user_type", user.UserType, "by", currentUser(c).ID)
	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "update_user", bindError(err))
		return
	}

	update := database.UserUpdate{
		Name:     req.Name,
		Status:   req.Status,
		UserType: req.UserType,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		update.Name = &name
	}
	if req.Categories != nil {
		categories := normalizeNames(*req.Categories)
		update.Categories = &categories
	}

	id := c.Param("id")
	caller := currentUser(c)
	if id == caller.ID && req.UserType != nil && *req.UserType != database.UserTypeSuperadmin {
		writeError(c, "update_user", badRequest("cannot change your own user type"))
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), id, update)
	if err != nil {
		writeError(c, "update_user", err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == currentUser(c).ID {
		writeError(c, "delete_user", badRequest("cannot delete your own account"))
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		writeError(c, "delete_user", err)
		return
	}

	slog.Info("User deleted", "user_id", id)
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// SetMyCategories replaces the caller's category subscriptions. Admin scopes
// are assigned by a superadmin only.
func (h *Handler) SetMyCategories(c *gin.Context) {
	caller := currentUser(c)
	if caller.IsAdmin() {
		writeError(c, "set_categories", forbidden("admin categories are assigned by a superadmin"))
		return
	}

	var req setCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "set_categories", bindError(err))
		return
	}

	categories := normalizeNames(req.Categories)
	user, err := h.users.UpdateUser(c.Request.Context(), caller.ID, database.UserUpdate{Categories: &categories})
	if err != nil {
		writeError(c, "set_categories", err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// ListSubscribers returns active subscribers of the requested category, or of
// all categories the caller manages when none is given
func (h *Handler) ListSubscribers(c *gin.Context) {
	caller := currentUser(c)
	category := normalizeName(c.Query("category"))

	var categories []string
	switch {
	case category != "":
		if !caller.IsSuperadmin() && !caller.HasCategory(category) {
			writeError(c, "list_subscribers", forbidden("category %q is not assigned to you", category))
			return
		}
		categories = []string{category}
	case caller.IsSuperadmin():
		all, err := h.categories.ListCategories(c.Request.Context())
		if err != nil {
			writeError(c, "list_subscribers", err)
			return
		}
		for _, cat := range all {
			categories = append(categories, cat.Name)
		}
	default:
		categories = caller.Categories
	}

	users, err := h.users.ListSubscribers(c.Request.Context(), categories)
	if err != nil {
		writeError(c, "list_subscribers", err)
		return
	}
	c.JSON(http.StatusOK, toUserResponses(users))
}
