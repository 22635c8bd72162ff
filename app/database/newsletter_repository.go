package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// NewsletterRepo handles database operations for newsletters, their article
// lists and recipient sets
type NewsletterRepo struct {
	db *DB
}

// NewNewsletterRepository creates a new newsletter repository
func NewNewsletterRepository(db *DB) *NewsletterRepo {
	return &NewsletterRepo{db: db}
}

const newsletterColumns = `id, title, category, status, pdf_content_type, created_by, created_at, updated_at, sent_at`

// CreateNewsletter persists a newsletter with its PDF and ordered article ids
func (r *NewsletterRepo) CreateNewsletter(ctx context.Context, newsletter *Newsletter) error {
	if newsletter.ID == "" {
		newsletter.ID = uuid.NewString()
	}
	if newsletter.PDFContentType == "" {
		newsletter.PDFContentType = "application/pdf"
	}
	newsletter.CreatedAt = now()
	newsletter.UpdatedAt = newsletter.CreatedAt
	newsletter.ArticleIDs = uniqueStrings(newsletter.ArticleIDs)
	if newsletter.Recipients == nil {
		newsletter.Recipients = []string{}
	}

	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO newsletters (
				id, title, category, status, pdf_content, pdf_content_type,
				created_by, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, newsletter.ID, newsletter.Title, newsletter.Category, newsletter.Status,
			newsletter.PDFContent, newsletter.PDFContentType, newsletter.CreatedBy,
			newsletter.CreatedAt, newsletter.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: newsletter %s", ErrDuplicate, newsletter.ID)
			}
			return fmt.Errorf("failed to insert newsletter: %w", err)
		}

		for i, articleID := range newsletter.ArticleIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO newsletter_articles (newsletter_id, article_id, position) VALUES (?, ?, ?)`,
				newsletter.ID, articleID, i)
			if err != nil {
				return fmt.Errorf("failed to insert newsletter article: %w", err)
			}
		}
		return nil
	})
}

// GetNewsletter retrieves a newsletter without its PDF bytes, returning nil
// when it does not exist
func (r *NewsletterRepo) GetNewsletter(ctx context.Context, id string) (*Newsletter, error) {
	newsletters, err := r.queryNewsletters(ctx, `SELECT `+newsletterColumns+` FROM newsletters WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get newsletter: %w", err)
	}
	if len(newsletters) == 0 {
		return nil, nil
	}
	return &newsletters[0], nil
}

// GetNewsletterPDF returns the stored PDF bytes and content type
func (r *NewsletterRepo) GetNewsletterPDF(ctx context.Context, id string) ([]byte, string, error) {
	var content []byte
	var contentType string
	err := r.db.QueryRowContext(ctx,
		`SELECT pdf_content, pdf_content_type FROM newsletters WHERE id = ?`, id).Scan(&content, &contentType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to get newsletter pdf: %w", err)
	}
	if len(content) == 0 {
		return nil, "", ErrNotFound
	}
	return content, contentType, nil
}

// ListNewsletters returns newsletters newest first without PDF bytes
func (r *NewsletterRepo) ListNewsletters(ctx context.Context, filter NewsletterFilter) ([]Newsletter, error) {
	query := `SELECT ` + newsletterColumns + ` FROM newsletters WHERE 1 = 1`
	var args []any

	if filter.Categories != nil {
		categories := uniqueFold(filter.Categories)
		if len(categories) == 0 {
			return []Newsletter{}, nil
		}
		query += ` AND category COLLATE NOCASE IN (` + placeholders(len(categories)) + `)`
		args = append(args, toArgs(categories)...)
	}
	if filter.RecipientID != "" {
		query += ` AND id IN (SELECT newsletter_id FROM newsletter_recipients WHERE user_id = ?)`
		args = append(args, filter.RecipientID)
	}
	query += ` ORDER BY created_at DESC, id`

	newsletters, err := r.queryNewsletters(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list newsletters: %w", err)
	}
	return newsletters, nil
}

// UpdateNewsletterStatus moves the status from one value to another. It fails
// with ErrStatusConflict when the stored status is no longer from.
func (r *NewsletterRepo) UpdateNewsletterStatus(ctx context.Context, id, from, to string) (*Newsletter, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE newsletters SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, now(), id, from)
	if err != nil {
		return nil, fmt.Errorf("failed to update newsletter status: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		current, err := r.GetNewsletter(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrNotFound
		}
		return nil, ErrStatusConflict
	}

	return r.loadExisting(ctx, id)
}

// statusDeclined blocks the send path; it mirrors newsletter.StatusDeclined
const statusDeclined = "declined"

// AddRecipients unions userIDs into the recipient set. When markSentAs is not
// empty the status and sent time are updated in the same transaction, unless
// the newsletter was declined meanwhile (ErrStatusConflict).
func (r *NewsletterRepo) AddRecipients(ctx context.Context, id string, userIDs []string, markSentAs string) (*Newsletter, error) {
	userIDs = uniqueStrings(userIDs)

	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		ts := now()

		var res sql.Result
		var err error
		if markSentAs != "" {
			res, err = tx.ExecContext(ctx, `
				UPDATE newsletters SET status = ?, sent_at = ?, updated_at = ?
				WHERE id = ? AND status <> ?
			`, markSentAs, ts, ts, id, statusDeclined)
		} else {
			res, err = tx.ExecContext(ctx, `UPDATE newsletters SET updated_at = ? WHERE id = ?`, ts, id)
		}
		if err != nil {
			return fmt.Errorf("failed to update newsletter: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			var exists int
			err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM newsletters WHERE id = ?`, id).Scan(&exists)
			if err != nil {
				return fmt.Errorf("failed to check newsletter: %w", err)
			}
			if exists == 0 {
				return ErrNotFound
			}
			return fmt.Errorf("%w: newsletter %s is declined", ErrStatusConflict, id)
		}

		for _, userID := range userIDs {
			_, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO newsletter_recipients (newsletter_id, user_id, added_at)
				VALUES (?, ?, ?)
			`, id, userID, ts)
			if err != nil {
				return fmt.Errorf("failed to add newsletter recipient: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.loadExisting(ctx, id)
}

// DeleteNewsletter removes a newsletter with its article and recipient rows.
// Notifications referencing it are kept.
func (r *NewsletterRepo) DeleteNewsletter(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM newsletters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete newsletter: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NewsletterRepo) loadExisting(ctx context.Context, id string) (*Newsletter, error) {
	newsletter, err := r.GetNewsletter(ctx, id)
	if err != nil {
		return nil, err
	}
	if newsletter == nil {
		return nil, ErrNotFound
	}
	return newsletter, nil
}

func (r *NewsletterRepo) queryNewsletters(ctx context.Context, query string, args ...any) ([]Newsletter, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	newsletters := []Newsletter{}
	for rows.Next() {
		var n Newsletter
		var sentAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.Title, &n.Category, &n.Status, &n.PDFContentType,
			&n.CreatedBy, &n.CreatedAt, &n.UpdatedAt, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan newsletter row: %w", err)
		}
		if sentAt.Valid {
			t := sentAt.Time
			n.SentAt = &t
		}
		n.ArticleIDs = []string{}
		n.Recipients = []string{}
		newsletters = append(newsletters, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating newsletter rows: %w", err)
	}
	rows.Close()

	if err := r.loadRelations(ctx, newsletters); err != nil {
		return nil, err
	}
	return newsletters, nil
}

// loadRelations fills article ids (by position) and recipients (by insertion)
func (r *NewsletterRepo) loadRelations(ctx context.Context, newsletters []Newsletter) error {
	if len(newsletters) == 0 {
		return nil
	}

	index := make(map[string]int, len(newsletters))
	ids := make([]string, 0, len(newsletters))
	for i, n := range newsletters {
		index[n.ID] = i
		ids = append(ids, n.ID)
	}
	in := placeholders(len(ids))

	articleRows, err := r.db.QueryContext(ctx, `
		SELECT newsletter_id, article_id FROM newsletter_articles
		WHERE newsletter_id IN (`+in+`)
		ORDER BY newsletter_id, position
	`, toArgs(ids)...)
	if err != nil {
		return fmt.Errorf("failed to load newsletter articles: %w", err)
	}
	defer articleRows.Close()

	for articleRows.Next() {
		var newsletterID, articleID string
		if err := articleRows.Scan(&newsletterID, &articleID); err != nil {
			return fmt.Errorf("failed to scan newsletter article row: %w", err)
		}
		i := index[newsletterID]
		newsletters[i].ArticleIDs = append(newsletters[i].ArticleIDs, articleID)
	}
	if err := articleRows.Err(); err != nil {
		return fmt.Errorf("error iterating newsletter article rows: %w", err)
	}
	articleRows.Close()

	recipientRows, err := r.db.QueryContext(ctx, `
		SELECT newsletter_id, user_id FROM newsletter_recipients
		WHERE newsletter_id IN (`+in+`)
		ORDER BY newsletter_id, added_at, rowid
	`, toArgs(ids)...)
	if err != nil {
		return fmt.Errorf("failed to load newsletter recipients: %w", err)
	}
	defer recipientRows.Close()

	for recipientRows.Next() {
		var newsletterID, userID string
		if err := recipientRows.Scan(&newsletterID, &userID); err != nil {
			return fmt.Errorf("failed to scan newsletter recipient row: %w", err)
		}
		i := index[newsletterID]
		newsletters[i].Recipients = append(newsletters[i].Recipients, userID)
	}
	if err := recipientRows.Err(); err != nil {
		return fmt.Errorf("error iterating newsletter recipient rows: %w", err)
	}

	return nil
}
