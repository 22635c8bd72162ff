package api

import (
	"time"

	"github.com/Arihant027/VS-News/app/database"
	"github.com/Arihant027/VS-News/app/newsletter"
)

// Requests

type registerRequest struct {
	Name       string   `json:"name" binding:"required,max=200"`
	Email      string   `json:"email" binding:"required,email"`
	Password   string   `json:"password" binding:"required,min=8,max=72"`
	Categories []string `json:"categories"`
}

type createUserRequest struct {
	Name       string   `json:"name" binding:"required,max=200"`
	Email      string   `json:"email" binding:"required,email"`
	Password   string   `json:"password" binding:"required,min=8,max=72"`
	UserType   string   `json:"userType" binding:"required,usertype"`
	Status     string   `json:"status" binding:"omitempty,userstatus"`
	Categories []string `json:"categories"`
}

type updateUserRequest struct {
	Name       *string   `json:"name" binding:"omitempty,min=1,max=200"`
	Status     *string   `json:"status" binding:"omitempty,userstatus"`
	UserType   *string   `json:"userType" binding:"omitempty,usertype"`
	Categories *[]string `json:"categories"`
}

type setCategoriesRequest struct {
	Categories []string `json:"categories"`
}

type createCategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type setAdminsRequest struct {
	AdminIDs []string `json:"adminIds"`
}

type articleRequest struct {
	Title       string     `json:"title" binding:"required"`
	Summary     string     `json:"summary"`
	SourceName  string     `json:"sourceName"`
	OriginalURL string     `json:"originalUrl" binding:"required,url"`
	ImageURL    string     `json:"imageUrl" binding:"omitempty,url"`
	PublishedAt *time.Time `json:"publishedAt"`
	Category    string     `json:"category"`
}

type saveArticlesRequest struct {
	Articles []articleRequest `json:"articles" binding:"required,min=1,dive"`
}

type summarizeRequest struct {
	Text string `json:"text"`
	URL  string `json:"url" binding:"omitempty,url"`
}

type generateRequest struct {
	Title    string               `json:"title" binding:"required"`
	Category string               `json:"category" binding:"required"`
	Articles []newsletter.Article `json:"articles" binding:"required,min=1,dive"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type sendRequest struct {
	Recipients []string `json:"recipients" binding:"required,min=1"`
}

// Responses

type userResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	UserType   string    `json:"userType"`
	Status     string    `json:"status"`
	Categories []string  `json:"categories"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toUserResponse(u *database.User) userResponse {
	categories := u.Categories
	if categories == nil {
		categories = []string{}
	}
	return userResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		UserType:   u.UserType,
		Status:     u.Status,
		Categories: categories,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func toUserResponses(users []database.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

type categoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Admins    []string  `json:"admins"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCategoryResponse(c *database.Category) categoryResponse {
	admins := c.AdminIDs
	if admins == nil {
		admins = []string{}
	}
	return categoryResponse{ID: c.ID, Name: c.Name, Admins: admins, CreatedAt: c.CreatedAt}
}

type articleResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	SourceName  string     `json:"sourceName"`
	OriginalURL string     `json:"originalUrl"`
	ImageURL    string     `json:"imageUrl"`
	PublishedAt *time.Time `json:"publishedAt"`
	Category    string     `json:"category"`
	SavedBy     string     `json:"savedBy"`
	SavedAt     time.Time  `json:"savedAt"`
}

func toArticleResponses(articles []database.CuratedArticle) []articleResponse {
	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, articleResponse{
			ID:          a.ID,
			Title:       a.Title,
			Summary:     a.Summary,
			SourceName:  a.SourceName,
			OriginalURL: a.OriginalURL,
			ImageURL:    a.ImageURL,
			PublishedAt: a.PublishedAt,
			Category:    a.Category,
			SavedBy:     a.SavedBy,
			SavedAt:     a.SavedAt,
		})
	}
	return out
}

type newsletterResponse struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Category   string     `json:"category"`
	Status     string     `json:"status"`
	Articles   []string   `json:"articles"`
	Recipients []string   `json:"recipients"`
	CreatedBy  string     `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	SentAt     *time.Time `json:"sentAt,omitempty"`
}

func toNewsletterResponse(n *database.Newsletter) newsletterResponse {
	articles, recipients := n.ArticleIDs, n.Recipients
	if articles == nil {
		articles = []string{}
	}
	if recipients == nil {
		recipients = []string{}
	}
	return newsletterResponse{
		ID:         n.ID,
		Title:      n.Title,
		Category:   n.Category,
		Status:     n.Status,
		Articles:   articles,
		Recipients: recipients,
		CreatedBy:  n.CreatedBy,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
		SentAt:     n.SentAt,
	}
}

type notificationResponse struct {
	ID           string    `json:"id"`
	NewsletterID string    `json:"newsletterId"`
	Message      string    `json:"message"`
	IsRead       bool      `json:"isRead"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toNotificationResponses(notifications []database.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationResponse{
			ID:           n.ID,
			NewsletterID: n.NewsletterID,
			Message:      n.Message,
			IsRead:       n.IsRead,
			CreatedAt:    n.CreatedAt,
		})
	}
	return out
}
