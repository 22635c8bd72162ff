package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arihant027/VS-News/app/ai"
	"github.com/Arihant027/VS-News/app/auth"
	"github.com/Arihant027/VS-News/app/database"
	"github.com/Arihant027/VS-News/app/mail"
	"github.com/Arihant027/VS-News/app/news"
	"github.com/Arihant027/VS-News/app/newsletter"
)

const testSecret = "test-secret-0123456789"

var testHTML = "<html><body><h1>Weekly</h1><p>" + strings.Repeat("Plenty of readable newsletter text. ", 10) + "</p></body></html>"

var testPDF = []byte("%PDF-1.7 generated newsletter")

type stubGenerator struct{}

func (stubGenerator) GenerateHTML(context.Context, string) (string, error) {
	return testHTML, nil
}

type stubRenderer struct{}

func (stubRenderer) RenderPDF(context.Context, string) ([]byte, error) {
	return testPDF, nil
}

type recordingMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	err      error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

type stubNews struct {
	articles []news.Article
	text     string
	queries  []news.Query
}

func (s *stubNews) Fetch(_ context.Context, q news.Query) ([]news.Article, error) {
	s.queries = append(s.queries, q)
	return s.articles, nil
}

func (s *stubNews) ExtractText(context.Context, string) (string, error) {
	return s.text, nil
}

type stubSummarizer struct {
	err   error
	input string
}

func (s *stubSummarizer) Summarize(_ context.Context, text string) (string, error) {
	s.input = text
	if s.err != nil {
		return "", s.err
	}
	return "short summary", nil
}

type testServer struct {
	engine        *gin.Engine
	db            *database.DB
	users         *database.UserRepo
	categories    *database.CategoryRepo
	articles      *database.ArticleRepo
	newsletters   *database.NewsletterRepo
	notifications *database.NotificationRepo
	mailer        *recordingMailer
	news          *stubNews
	summarizer    *stubSummarizer

	superadmin *database.User
	admin      *database.User
	reader     *database.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.NewConnection(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, _, err = database.RunMigrations(db)
	require.NoError(t, err)

	s := &testServer{
		db:            db,
		users:         database.NewUserRepository(db),
		categories:    database.NewCategoryRepository(db),
		articles:      database.NewArticleRepository(db),
		newsletters:   database.NewNewsletterRepository(db),
		notifications: database.NewNotificationRepository(db),
		mailer:        &recordingMailer{},
		news:          &stubNews{},
		summarizer:    &stubSummarizer{},
	}

	ctx := context.Background()
	for _, name := range []string{"Technology", "Sports"} {
		_, err := s.categories.CreateCategory(ctx, name)
		require.NoError(t, err)
	}

	s.superadmin = s.createUser(t, "root@example.com", database.UserTypeSuperadmin)
	s.admin = s.createUser(t, "admin@example.com", database.UserTypeAdmin, "Technology")
	s.reader = s.createUser(t, "reader@example.com", database.UserTypeUser, "Technology")

	service := newsletter.NewService(s.newsletters, s.users, s.notifications, stubGenerator{}, stubRenderer{}, s.mailer)
	handler := NewHandler(Deps{
		Users:         s.users,
		Categories:    s.categories,
		Articles:      s.articles,
		Notifications: s.notifications,
		Newsletters:   service,
		News:          s.news,
		Summarizer:    s.summarizer,
		DB:            db,
		Version:       "test",
	})
	s.engine = NewServer(handler, auth.NewVerifier(testSecret), nil)
	return s
}

func (s *testServer) createUser(t *testing.T, email, userType string, categories ...string) *database.User {
	t.Helper()

	u := &database.User{Name: email, Email: email, PasswordHash: "x", UserType: userType, Categories: categories}
	require.NoError(t, s.users.CreateUser(context.Background(), u))
	return u
}

func tokenFor(t *testing.T, u *database.User) string {
	t.Helper()

	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// do performs a request as the given user; a nil user sends no token
func (s *testServer) do(t *testing.T, u *database.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if u != nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, u))
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) generate(t *testing.T, category string) string {
	t.Helper()

	w := s.do(t, s.admin, http.MethodPost, "/api/newsletters/generate-and-save", map[string]any{
		"title":    "Weekly Tech",
		"category": category,
		"articles": []map[string]string{{"title": "Go 1.30", "url": "https://go.dev/blog", "summary": "Release"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return w.Header().Get("X-Newsletter-ID")
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, nil, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	w = s.do(t, s.admin, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[userResponse](t, w)
	assert.Equal(t, s.admin.ID, me.ID)
	assert.Equal(t, []string{"Technology"}, me.Categories)

	inactive := database.UserStatusInactive
	_, err := s.users.UpdateUser(context.Background(), s.reader.ID, database.UserUpdate{Status: &inactive})
	require.NoError(t, err)
	w = s.do(t, s.reader, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	ghost := &database.User{ID: "no-such-user"}
	w = s.do(t, ghost, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		user   func() *database.User
		method string
		path   string
		want   int
	}{
		{"user cannot list articles", func() *database.User { return s.reader }, http.MethodGet, "/api/articles", http.StatusForbidden},
		{"user cannot search news", func() *database.User { return s.reader }, http.MethodGet, "/api/news", http.StatusForbidden},
		{"admin cannot list users", func() *database.User { return s.admin }, http.MethodGet, "/api/users", http.StatusForbidden},
		{"admin lists articles", func() *database.User { return s.admin }, http.MethodGet, "/api/articles", http.StatusOK},
		{"superadmin lists users", func() *database.User { return s.superadmin }, http.MethodGet, "/api/users", http.StatusOK},
		{"user lists categories", func() *database.User { return s.reader }, http.MethodGet, "/api/categories", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.user(), tt.method, tt.path, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	body := map[string]any{
		"name":       "New Reader",
		"email":      "New@Example.com",
		"password":   "correct horse",
		"categories": []string{"sports"},
	}
	w := s.do(t, nil, http.MethodPost, "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[userResponse](t, w)
	assert.Equal(t, "new@example.com", created.Email)
	assert.Equal(t, database.UserTypeUser, created.UserType)
	assert.Equal(t, []string{"Sports"}, created.Categories)

	stored, err := s.users.GetUserByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "correct horse"))

	w = s.do(t, nil, http.MethodPost, "/api/auth/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	body["email"] = "not-an-email"
	w = s.do(t, nil, http.MethodPost, "/api/auth/register", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body["email"] = "other@example.com"
	body["categories"] = []string{"Cooking"}
	w = s.do(t, nil, http.MethodPost, "/api/auth/register", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArticles_SaveIsIdempotent(t *testing.T) {
	s := newTestServer(t)

	body := map[string]any{"articles": []map[string]string{{
		"title":       "Go generics",
		"originalUrl": "https://go.dev/generics",
		"category":    "Technology",
	}}}

	w := s.do(t, s.admin, http.MethodPost, "/api/articles", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, first["saved"])

	w = s.do(t, s.admin, http.MethodPost, "/api/articles", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := decode[map[string]any](t, w)
	assert.EqualValues(t, 0, second["saved"])
	assert.EqualValues(t, 1, second["updated"])

	w = s.do(t, s.admin, http.MethodGet, "/api/articles?timeframe=week", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]articleResponse](t, w), 1)

	w = s.do(t, s.admin, http.MethodGet, "/api/articles?timeframe=decade", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, s.admin, http.MethodPost, "/api/articles", map[string]any{"articles": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArticles_DeleteOtherOwner(t *testing.T) {
	s := newTestServer(t)
	other := s.createUser(t, "other-admin@example.com", database.UserTypeAdmin, "Sports")

	w := s.do(t, s.admin, http.MethodPost, "/api/articles", map[string]any{"articles": []map[string]string{{
		"title":       "Mine",
		"originalUrl": "https://example.com/mine",
	}}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	saved := decode[struct {
		Articles []articleResponse `json:"articles"`
	}](t, w)
	require.Len(t, saved.Articles, 1)
	id := saved.Articles[0].ID

	w = s.do(t, other, http.MethodDelete, "/api/articles/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	remaining, err := s.articles.ListArticles(context.Background(), s.admin.ID, nil)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	w = s.do(t, s.admin, http.MethodDelete, "/api/articles/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewsletters_GenerateAndDownload(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, s.admin, http.MethodPost, "/api/newsletters/generate-and-save", map[string]any{
		"title":    "Empty",
		"category": "Technology",
		"articles": []any{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	all, err := s.newsletters.ListNewsletters(context.Background(), database.NewsletterFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	w = s.do(t, s.admin, http.MethodPost, "/api/newsletters/generate-and-save", map[string]any{
		"title":    "Sports Weekly",
		"category": "Sports",
		"articles": []map[string]string{{"title": "Match", "url": "https://example.com/match"}},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, s.admin, http.MethodPost, "/api/newsletters/generate-and-save", map[string]any{
		"title":    "Weekly Tech",
		"category": "Technology",
		"articles": []map[string]string{{"title": "Go", "url": "https://go.dev"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="weekly-tech.pdf"`, w.Header().Get("Content-Disposition"))
	id := w.Header().Get("X-Newsletter-ID")
	require.NotEmpty(t, id)
	assert.Equal(t, testPDF, w.Body.Bytes())

	w = s.do(t, s.admin, http.MethodGet, "/api/newsletters/"+id+"/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testPDF, w.Body.Bytes())

	// not a recipient yet
	w = s.do(t, s.reader, http.MethodGet, "/api/newsletters/"+id+"/download", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, s.admin, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]notificationResponse](t, w), 1)
}

func TestNewsletters_SendUnionsRecipients(t *testing.T) {
	s := newTestServer(t)
	second := s.createUser(t, "second@example.com", database.UserTypeUser, "Technology")
	id := s.generate(t, "Technology")

	w := s.do(t, s.admin, http.MethodPost, "/api/newsletters/"+id+"/send", map[string]any{
		"recipients": []string{s.reader.ID, s.reader.ID, "unknown-id"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[map[string]any](t, w)
	assert.Equal(t, true, result["emailed"])

	w = s.do(t, s.admin, http.MethodPost, "/api/newsletters/"+id+"/send", map[string]any{
		"recipients": []string{s.reader.ID, second.ID},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := s.newsletters.GetNewsletter(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, newsletter.StatusSent.String(), stored.Status)
	assert.ElementsMatch(t, []string{s.reader.ID, second.ID}, stored.Recipients)
	assert.Len(t, s.mailer.messages, 2)

	w = s.do(t, s.reader, http.MethodGet, "/api/newsletters", nil)
	require.Equal(t, http.StatusOK, w.Code)
	received := decode[[]newsletterResponse](t, w)
	require.Len(t, received, 1)
	assert.Equal(t, id, received[0].ID)

	w = s.do(t, s.reader, http.MethodGet, "/api/newsletters/"+id+"/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testPDF, w.Body.Bytes())

	w = s.do(t, s.admin, http.MethodPost, "/api/newsletters/"+id+"/send", map[string]any{"recipients": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, s.admin, http.MethodPost, "/api/newsletters/"+id+"/send", map[string]any{"recipients": []string{"ghost"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewsletters_SendEmailFailure(t *testing.T) {
	s := newTestServer(t)
	id := s.generate(t, "Technology")
	s.mailer.err = errors.New("provider down")

	w := s.do(t, s.admin, http.MethodPost, "/api/newsletters/"+id+"/send", map[string]any{
		"recipients": []string{s.reader.ID},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "provider down")

	stored, err := s.newsletters.GetNewsletter(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, newsletter.StatusNotSent.String(), stored.Status)
	assert.Empty(t, stored.Recipients)
}

func TestNewsletters_StatusTransitions(t *testing.T) {
	s := newTestServer(t)
	id := s.generate(t, "Technology")
	path := "/api/newsletters/" + id + "/status"

	w := s.do(t, s.admin, http.MethodPatch, path, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, s.admin, http.MethodPatch, path, map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, s.admin, http.MethodPatch, path, map[string]string{"status": "pending"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "pending", decode[newsletterResponse](t, w).Status)

	w = s.do(t, s.admin, http.MethodPatch, path, map[string]string{"status": "declined"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, s.admin, http.MethodPost, "/api/newsletters/"+id+"/send", map[string]any{"recipients": []string{s.reader.ID}})
	assert.Equal(t, http.StatusConflict, w.Code)

	stored, err := s.newsletters.GetNewsletter(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "declined", stored.Status)
}

func TestNewsletters_OutOfScope(t *testing.T) {
	s := newTestServer(t)
	id := s.generate(t, "Technology")
	sportsAdmin := s.createUser(t, "sports@example.com", database.UserTypeAdmin, "Sports")

	w := s.do(t, sportsAdmin, http.MethodDelete, "/api/newsletters/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, sportsAdmin, http.MethodGet, "/api/newsletters", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]newsletterResponse](t, w))

	w = s.do(t, s.superadmin, http.MethodDelete, "/api/newsletters/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, s.admin, http.MethodGet, "/api/newsletters/"+id+"/download", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewsletters_SendToSelf(t *testing.T) {
	s := newTestServer(t)
	id := s.generate(t, "Technology")

	w := s.do(t, s.admin, http.MethodPost, "/api/newsletters/"+id+"/send-to-self", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, s.mailer.messages, 1)
	assert.Equal(t, []string{s.admin.Email}, s.mailer.messages[0].To)

	stored, err := s.newsletters.GetNewsletter(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, newsletter.StatusNotSent.String(), stored.Status)
	assert.Equal(t, []string{s.admin.ID}, stored.Recipients)
}

func TestNotifications(t *testing.T) {
	s := newTestServer(t)
	id := s.generate(t, "Technology")

	w := s.do(t, s.admin, http.MethodPost, "/api/newsletters/"+id+"/send", map[string]any{"recipients": []string{s.reader.ID}})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, s.reader, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	notifications := decode[[]notificationResponse](t, w)
	require.Len(t, notifications, 1)
	assert.Equal(t, id, notifications[0].NewsletterID)
	assert.False(t, notifications[0].IsRead)

	w = s.do(t, s.admin, http.MethodPatch, "/api/notifications/"+notifications[0].ID+"/read", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, s.reader, http.MethodPatch, "/api/notifications/"+notifications[0].ID+"/read", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, s.admin, http.MethodPatch, "/api/notifications/read-all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["updated"])
}

func TestCategories_Lifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, s.superadmin, http.MethodPost, "/api/categories", map[string]string{"name": "  Science "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	science := decode[categoryResponse](t, w)
	assert.Equal(t, "Science", science.Name)

	w = s.do(t, s.superadmin, http.MethodPost, "/api/categories", map[string]string{"name": "science"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, s.superadmin, http.MethodPut, "/api/categories/"+science.ID+"/admins", map[string]any{"adminIds": []string{s.reader.ID}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, s.superadmin, http.MethodPut, "/api/categories/"+science.ID+"/admins", map[string]any{"adminIds": []string{s.admin.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{s.admin.ID}, decode[categoryResponse](t, w).Admins)

	w = s.do(t, s.reader, http.MethodPut, "/api/users/me/categories", map[string]any{"categories": []string{"Science", "Technology"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, s.superadmin, http.MethodDelete, "/api/categories/"+science.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, u := range []*database.User{s.admin, s.reader} {
		stored, err := s.users.GetUser(context.Background(), u.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, []string{"Technology"}, stored.Categories)
	}

	w = s.do(t, s.superadmin, http.MethodDelete, "/api/categories/"+science.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetMyCategories_AdminsCannotWidenScope(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	for _, u := range []*database.User{s.admin, s.superadmin} {
		w := s.do(t, u, http.MethodPut, "/api/users/me/categories", map[string]any{"categories": []string{"Technology", "Sports"}})
		assert.Equal(t, http.StatusForbidden, w.Code, u.Email)
	}

	stored, err := s.users.GetUser(ctx, s.admin.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, []string{"Technology"}, stored.Categories)

	w := s.do(t, s.admin, http.MethodPost, "/api/newsletters/generate-and-save", map[string]any{
		"title":    "Weekly Sports",
		"category": "Sports",
		"articles": []map[string]string{{"title": "Final", "url": "https://example.com/final"}},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, s.reader, http.MethodPut, "/api/users/me/categories", map[string]any{"categories": []string{"Sports"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"Sports"}, decode[userResponse](t, w).Categories)
}

func TestUsers_Management(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, s.superadmin, http.MethodPost, "/api/users", map[string]any{
		"name":       "Editor",
		"email":      "editor@example.com",
		"password":   "long enough",
		"userType":   "admin",
		"categories": []string{"Sports"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	editor := decode[userResponse](t, w)

	w = s.do(t, s.superadmin, http.MethodPost, "/api/users", map[string]any{
		"name":     "Bad",
		"email":    "bad@example.com",
		"password": "long enough",
		"userType": "owner",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, s.superadmin, http.MethodGet, "/api/users?type=admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]userResponse](t, w), 2)

	w = s.do(t, s.superadmin, http.MethodPatch, "/api/users/"+editor.ID, map[string]any{"status": "Inactive"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, database.UserStatusInactive, decode[userResponse](t, w).Status)

	w = s.do(t, s.superadmin, http.MethodPatch, "/api/users/missing", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, s.superadmin, http.MethodDelete, "/api/users/"+s.superadmin.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, s.superadmin, http.MethodDelete, "/api/users/"+editor.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, s.superadmin, http.MethodDelete, "/api/users/"+editor.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribers(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "fan@example.com", database.UserTypeUser, "Sports")

	w := s.do(t, s.admin, http.MethodGet, "/api/subscribers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	subscribers := decode[[]userResponse](t, w)
	require.Len(t, subscribers, 1)
	assert.Equal(t, s.reader.ID, subscribers[0].ID)

	w = s.do(t, s.admin, http.MethodGet, "/api/subscribers?category=Sports", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, s.superadmin, http.MethodGet, "/api/subscribers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]userResponse](t, w), 2)
}

func TestNews(t *testing.T) {
	s := newTestServer(t)
	s.news.articles = []news.Article{{Title: "Go 1.30", URL: "https://go.dev/blog/go1.30", Category: "Technology"}}

	w := s.do(t, s.admin, http.MethodGet, "/api/news?category=Sports", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, s.admin, http.MethodGet, "/api/news?category=technology&q=golang&timeframe=day", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[struct {
		Articles []news.Article `json:"articles"`
	}](t, w)
	assert.Len(t, body.Articles, 1)
	require.Len(t, s.news.queries, 1)
	assert.Equal(t, news.Query{Category: "technology", Text: "golang", Timeframe: news.TimeframeDay}, s.news.queries[0])

	w = s.do(t, s.admin, http.MethodGet, "/api/news?timeframe=year", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, s.superadmin, http.MethodGet, "/api/news", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNews_MergesAcrossCategories(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	both := []string{"Technology", "Sports"}
	_, err := s.users.UpdateUser(ctx, s.admin.ID, database.UserUpdate{Categories: &both})
	require.NoError(t, err)

	older := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)
	s.news.articles = []news.Article{
		{Title: "Old", URL: "https://example.com/old", PublishedAt: &older},
		{Title: "Undated", URL: "https://example.com/undated"},
		{Title: "New", URL: "https://Example.com/new/", PublishedAt: &newer},
	}

	w := s.do(t, s.admin, http.MethodGet, "/api/news", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[struct {
		Articles []news.Article `json:"articles"`
	}](t, w)

	assert.Len(t, s.news.queries, 2)
	require.Len(t, body.Articles, 3)
	assert.Equal(t, "New", body.Articles[0].Title)
	assert.Equal(t, "Old", body.Articles[1].Title)
	assert.Equal(t, "Undated", body.Articles[2].Title)
}

func TestSummarize(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, s.admin, http.MethodPost, "/api/news/summarize", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, s.admin, http.MethodPost, "/api/news/summarize", map[string]string{"text": "Long article body"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "short summary", decode[map[string]string](t, w)["summary"])

	s.news.text = "Extracted page text"
	w = s.do(t, s.admin, http.MethodPost, "/api/news/summarize", map[string]string{"url": "https://example.com/a"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Extracted page text", s.summarizer.input)

	s.summarizer.err = ai.ErrUnavailable
	w = s.do(t, s.admin, http.MethodPost, "/api/news/summarize", map[string]string{"text": "Long article body"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthAndRoot(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, nil, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "ok", health["database"])

	w = s.do(t, nil, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, nil, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	handler := corsMiddleware([]string{"http://localhost:5173"})
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handler)
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
