package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/unicode/norm"

	"github.com/Arihant027/VS-News/app/auth"
	"github.com/Arihant027/VS-News/app/cache"
	"github.com/Arihant027/VS-News/app/database"
	"github.com/Arihant027/VS-News/app/news"
	"github.com/Arihant027/VS-News/app/newsletter"
)

// NewsProvider fetches external news and page text
type NewsProvider interface {
	Fetch(ctx context.Context, q news.Query) ([]news.Article, error)
	ExtractText(ctx context.Context, url string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	users         database.UserRepository
	categories    database.CategoryRepository
	articles      database.ArticleRepository
	notifications database.NotificationRepository
	newsletters   *newsletter.Service
	news          NewsProvider
	summarizer    Summarizer
	db            Pinger
	cache         *cache.Cache
	sources       *news.SourceCache
	version       string
}

// Deps lists what the handlers need. Cache and Sources may be nil.
type Deps struct {
	Users         database.UserRepository
	Categories    database.CategoryRepository
	Articles      database.ArticleRepository
	Notifications database.NotificationRepository
	Newsletters   *newsletter.Service
	News          NewsProvider
	Summarizer    Summarizer
	DB            Pinger
	Cache         *cache.Cache
	Sources       *news.SourceCache
	Version       string
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		users:         deps.Users,
		categories:    deps.Categories,
		articles:      deps.Articles,
		notifications: deps.Notifications,
		newsletters:   deps.Newsletters,
		news:          deps.News,
		summarizer:    deps.Summarizer,
		db:            deps.DB,
		cache:         deps.Cache,
		sources:       deps.Sources,
		version:       deps.Version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		slog.Error("Database error", "operation", "health_ping", "error", err)
		health["status"] = "unhealthy"
		health["database"] = "error: " + err.Error()
		status = http.StatusServiceUnavailable
	} else {
		health["status"] = "healthy"
		health["database"] = "ok"
	}

	health["cache"] = h.cache.Health(ctx)
	if h.sources != nil {
		health["news_sources"] = h.sources.GetSourceCount()
	}

	c.JSON(status, health)
}

func (h *Handler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, toUserResponse(currentUser(c)))
}

// Register creates a subscriber account. Elevated user types are only
// created by a superadmin through /api/users.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "register", bindError(err))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(c, "register", err)
		return
	}

	user := &database.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		UserType:     database.UserTypeUser,
		Status:       database.UserStatusActive,
		Categories:   normalizeNames(req.Categories),
	}
	if err := h.users.CreateUser(c.Request.Context(), user); err != nil {
		writeError(c, "register", err)
		return
	}

	slog.Info("User registered", "user_id", user.ID)
	c.JSON(http.StatusCreated, toUserResponse(user))
}

// normalizeName trims a category name and puts it in NFC form
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = normalizeName(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
