package newsletter

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/Arihant027/VS-News/app/database"
	"github.com/Arihant027/VS-News/app/mail"
	"github.com/Arihant027/VS-News/app/metrics"
)

type HTMLGenerator interface {
	GenerateHTML(ctx context.Context, prompt string) (string, error)
}

type Renderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Service runs the newsletter pipeline: generation, status changes and distribution
type Service struct {
	newsletters   database.NewsletterRepository
	users         database.UserRepository
	notifications database.NotificationRepository
	generator     HTMLGenerator
	renderer      Renderer
	mailer        Mailer // nil when email is not configured
}

func NewService(
	newsletters database.NewsletterRepository,
	users database.UserRepository,
	notifications database.NotificationRepository,
	generator HTMLGenerator,
	renderer Renderer,
	mailer Mailer,
) *Service {
	return &Service{
		newsletters:   newsletters,
		users:         users,
		notifications: notifications,
		generator:     generator,
		renderer:      renderer,
		mailer:        mailer,
	}
}

type GenerateRequest struct {
	Title    string
	Category string
	Articles []Article
}

type GenerateResult struct {
	Newsletter *database.Newsletter
	PDF        []byte
	Filename   string
}

type SendResult struct {
	Newsletter *database.Newsletter
	Recipients []string
	Emailed    bool
}

// Generate builds, renders and stores a newsletter, then notifies the caller
func (s *Service) Generate(ctx context.Context, caller *database.User, req GenerateRequest) (result *GenerateResult, err error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)

	switch {
	case req.Title == "":
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	case req.Category == "":
		return nil, fmt.Errorf("%w: category is required", ErrValidation)
	case len(req.Articles) == 0:
		return nil, fmt.Errorf("%w: at least one article is required", ErrValidation)
	}
	for i, a := range req.Articles {
		if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.URL) == "" {
			return nil, fmt.Errorf("%w: article %d needs a title and url", ErrValidation, i+1)
		}
	}

	if !caller.IsSuperadmin() && !caller.HasCategory(req.Category) {
		return nil, fmt.Errorf("%w: category %s is not assigned to you", ErrForbidden, req.Category)
	}

	defer func() { metrics.RecordGenerate(err) }()

	prompt, err := BuildPrompt(req.Title, req.Category, req.Articles)
	if err != nil {
		return nil, err
	}

	doc, err := s.generator.GenerateHTML(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate newsletter html: %w", err)
	}
	if err := ValidateHTML(doc); err != nil {
		return nil, err
	}

	pdf, err := s.renderer.RenderPDF(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render newsletter: %w", err)
	}

	var articleIDs []string
	for _, a := range req.Articles {
		if id := strings.TrimSpace(a.ID); id != "" {
			articleIDs = append(articleIDs, id)
		}
	}

	newsletter := &database.Newsletter{
		Title:          req.Title,
		Category:       req.Category,
		Status:         StatusNotSent.String(),
		ArticleIDs:     articleIDs,
		PDFContent:     pdf,
		PDFContentType: "application/pdf",
		CreatedBy:      caller.ID,
	}
	if err := s.newsletters.CreateNewsletter(ctx, newsletter); err != nil {
		return nil, fmt.Errorf("failed to save newsletter: %w", err)
	}

	err = s.notifications.CreateNotification(ctx, &database.Notification{
		UserID:       caller.ID,
		NewsletterID: newsletter.ID,
		Message:      fmt.Sprintf("Newsletter %q was generated", newsletter.Title),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	slog.Info("Newsletter generated",
		"newsletter_id", newsletter.ID,
		"category", newsletter.Category,
		"articles", len(req.Articles),
		"pdf_bytes", len(pdf))

	return &GenerateResult{
		Newsletter: newsletter,
		PDF:        pdf,
		Filename:   Slug(newsletter.Title) + ".pdf",
	}, nil
}

// List returns the newsletters visible to the caller: all for a superadmin,
// the caller's categories for an admin and received ones for a user
func (s *Service) List(ctx context.Context, caller *database.User) ([]database.Newsletter, error) {
	var filter database.NewsletterFilter
	switch {
	case caller.IsSuperadmin():
	case caller.IsAdmin():
		filter.Categories = append([]string{}, caller.Categories...)
	default:
		filter.RecipientID = caller.ID
	}

	return s.newsletters.ListNewsletters(ctx, filter)
}

// Download returns the stored PDF for admins in scope and for recipients
func (s *Service) Download(ctx context.Context, caller *database.User, id string) (*database.Newsletter, []byte, string, error) {
	newsletter, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, "", err
	}
	if !canManage(caller, newsletter) && !contains(newsletter.Recipients, caller.ID) {
		return nil, nil, "", database.ErrNotFound
	}

	pdf, contentType, err := s.newsletters.GetNewsletterPDF(ctx, id)
	if err != nil {
		return nil, nil, "", err
	}
	return newsletter, pdf, contentType, nil
}

// UpdateStatus applies a PATCH transition
func (s *Service) UpdateStatus(ctx context.Context, caller *database.User, id, value string) (*database.Newsletter, error) {
	next, err := ParseStatus(value)
	if err != nil {
		return nil, err
	}

	newsletter, err := s.loadManaged(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	current, err := ParseStatus(newsletter.Status)
	if err != nil {
		return nil, fmt.Errorf("stored status of newsletter %s is invalid: %q", id, newsletter.Status)
	}
	if current == next {
		return newsletter, nil
	}
	if !current.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current, next)
	}

	updated, err := s.newsletters.UpdateNewsletterStatus(ctx, id, current.String(), next.String())
	if err != nil {
		if errors.Is(err, database.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		}
		return nil, err
	}

	slog.Info("Newsletter status updated", "newsletter_id", id, "from", current, "to", next)
	return updated, nil
}

// Send emails the newsletter to recipients, marks it sent and unions the
// recipients in. Notification failures are logged and never returned.
func (s *Service) Send(ctx context.Context, caller *database.User, id string, recipientIDs []string) (*SendResult, error) {
	if len(compact(recipientIDs)) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", ErrValidation)
	}

	newsletter, err := s.loadManaged(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	status, err := ParseStatus(newsletter.Status)
	if err != nil || !status.CanSend() {
		return nil, fmt.Errorf("%w: newsletter is %s", ErrInvalidTransition, newsletter.Status)
	}

	users, err := s.users.GetUsersByIDs(ctx, recipientIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: none of the recipients exist", ErrValidation)
	}

	ids := make([]string, 0, len(users))
	emails := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
		emails = append(emails, u.Email)
	}

	emailed, err := s.email(ctx, "send", newsletter, emails)
	if err != nil {
		return nil, err
	}

	updated, err := s.newsletters.AddRecipients(ctx, id, ids, StatusSent.String())
	if err != nil {
		if errors.Is(err, database.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: newsletter was declined during send", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("failed to record recipients: %w", err)
	}

	for _, userID := range ids {
		s.notify(ctx, userID, updated, fmt.Sprintf("New newsletter: %s", updated.Title))
	}

	slog.Info("Newsletter sent", "newsletter_id", id, "recipients", len(ids), "emailed", emailed)
	return &SendResult{Newsletter: updated, Recipients: ids, Emailed: emailed}, nil
}

// SendToSelf delivers the newsletter to the caller only. The status is left as is.
func (s *Service) SendToSelf(ctx context.Context, caller *database.User, id string) (*SendResult, error) {
	newsletter, err := s.loadManaged(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	emailed, err := s.email(ctx, "self", newsletter, []string{caller.Email})
	if err != nil {
		return nil, err
	}

	updated, err := s.newsletters.AddRecipients(ctx, id, []string{caller.ID}, "")
	if err != nil {
		return nil, fmt.Errorf("failed to record recipient: %w", err)
	}

	s.notify(ctx, caller.ID, updated, fmt.Sprintf("Newsletter %q was sent to you", updated.Title))

	return &SendResult{Newsletter: updated, Recipients: []string{caller.ID}, Emailed: emailed}, nil
}

// Delete removes a newsletter in the caller's scope
func (s *Service) Delete(ctx context.Context, caller *database.User, id string) error {
	if _, err := s.loadManaged(ctx, caller, id); err != nil {
		return err
	}
	return s.newsletters.DeleteNewsletter(ctx, id)
}

func (s *Service) email(ctx context.Context, kind string, newsletter *database.Newsletter, to []string) (bool, error) {
	if s.mailer == nil {
		return false, nil
	}

	pdf, _, err := s.newsletters.GetNewsletterPDF(ctx, newsletter.ID)
	if err != nil {
		return false, fmt.Errorf("failed to load newsletter pdf: %w", err)
	}

	err = s.mailer.Send(ctx, mail.Message{
		To:      to,
		Subject: newsletter.Title,
		HTML: fmt.Sprintf("<p>Hello,</p><p>Your %s newsletter <strong>%s</strong> is attached.</p>",
			html.EscapeString(newsletter.Category), html.EscapeString(newsletter.Title)),
		Attachments: []mail.Attachment{{
			Filename: Slug(newsletter.Title) + ".pdf",
			Content:  pdf,
		}},
	})
	metrics.RecordEmail(kind, err)
	if err != nil {
		return false, fmt.Errorf("failed to email newsletter: %w", err)
	}
	return true, nil
}

func (s *Service) notify(ctx context.Context, userID string, newsletter *database.Newsletter, message string) {
	err := s.notifications.CreateNotification(ctx, &database.Notification{
		UserID:       userID,
		NewsletterID: newsletter.ID,
		Message:      message,
	})
	if err != nil {
		metrics.NotificationFailures.Inc()
		slog.Error("Failed to create notification",
			"newsletter_id", newsletter.ID,
			"user_id", userID,
			"error", err)
	}
}

func (s *Service) load(ctx context.Context, id string) (*database.Newsletter, error) {
	newsletter, err := s.newsletters.GetNewsletter(ctx, id)
	if err != nil {
		return nil, err
	}
	if newsletter == nil {
		return nil, database.ErrNotFound
	}
	return newsletter, nil
}

// loadManaged hides newsletters outside the caller's categories
func (s *Service) loadManaged(ctx context.Context, caller *database.User, id string) (*database.Newsletter, error) {
	newsletter, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, newsletter) {
		return nil, database.ErrNotFound
	}
	return newsletter, nil
}

func canManage(caller *database.User, newsletter *database.Newsletter) bool {
	if caller.IsSuperadmin() {
		return true
	}
	return caller.IsAdmin() && caller.HasCategory(newsletter.Category)
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

func compact(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
