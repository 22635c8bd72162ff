package database

import (
	"context"
	"time"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]User, error)
	ListUsers(ctx context.Context, userType string) ([]User, error)
	ListSubscribers(ctx context.Context, categories []string) ([]User, error)
	UpdateUser(ctx context.Context, id string, update UserUpdate) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, name string) (*Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	DeleteCategory(ctx context.Context, id string) error
	SetCategoryAdmins(ctx context.Context, id string, adminIDs []string) (*Category, error)
}

type ArticleRepository interface {
	SaveArticles(ctx context.Context, savedBy string, articles []CuratedArticle) (created int, updated int, err error)
	ListArticles(ctx context.Context, savedBy string, since *time.Time) ([]CuratedArticle, error)
	DeleteArticle(ctx context.Context, id, savedBy string) error
}

type NewsletterRepository interface {
	CreateNewsletter(ctx context.Context, newsletter *Newsletter) error
	GetNewsletter(ctx context.Context, id string) (*Newsletter, error)
	GetNewsletterPDF(ctx context.Context, id string) ([]byte, string, error)
	ListNewsletters(ctx context.Context, filter NewsletterFilter) ([]Newsletter, error)
	UpdateNewsletterStatus(ctx context.Context, id, from, to string) (*Newsletter, error)
	AddRecipients(ctx context.Context, id string, userIDs []string, markSentAs string) (*Newsletter, error)
	DeleteNewsletter(ctx context.Context, id string) error
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *Notification) error
	ListNotifications(ctx context.Context, userID string) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)
}

var (
	_ UserRepository         = (*UserRepo)(nil)
	_ CategoryRepository     = (*CategoryRepo)(nil)
	_ ArticleRepository      = (*ArticleRepo)(nil)
	_ NewsletterRepository   = (*NewsletterRepo)(nil)
	_ NotificationRepository = (*NotificationRepo)(nil)
)
