package database

import (
	"time"
)

const (
	UserTypeUser       = "user"
	UserTypeAdmin      = "admin"
	UserTypeSuperadmin = "superadmin"

	UserStatusActive   = "Active"
	UserStatusInactive = "Inactive"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	UserType     string   // user, admin, superadmin
	Status       string   // Active, Inactive
	Categories   []string // category names, sorted
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin || u.UserType == UserTypeSuperadmin
}

func (u *User) IsSuperadmin() bool {
	return u.UserType == UserTypeSuperadmin
}

// HasCategory reports whether the category name is in the user's list (case-insensitive)
func (u *User) HasCategory(name string) bool {
	for _, c := range u.Categories {
		if equalFold(c, name) {
			return true
		}
	}
	return false
}

type UserUpdate struct {
	Name       *string
	Status     *string
	UserType   *string
	Categories *[]string
}

type Category struct {
	ID        string
	Name      string
	AdminIDs  []string
	CreatedAt time.Time
}

type CuratedArticle struct {
	ID          string
	Title       string
	Summary     string
	SourceName  string
	OriginalURL string
	ImageURL    string
	PublishedAt *time.Time
	Category    string
	SavedBy     string
	SavedAt     time.Time
}

type Newsletter struct {
	ID             string
	Title          string
	Category       string
	Status         string
	ArticleIDs     []string
	Recipients     []string
	PDFContent     []byte // only populated by GetNewsletterPDF
	PDFContentType string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SentAt         *time.Time
}

// NewsletterFilter narrows ListNewsletters. Empty fields are ignored; a nil
// Categories slice means every category.
type NewsletterFilter struct {
	Categories  []string
	RecipientID string
}

type Notification struct {
	ID           string
	UserID       string
	NewsletterID string
	Message      string
	IsRead       bool
	CreatedAt    time.Time
}
