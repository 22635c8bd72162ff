package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArticleRepo handles database operations for curated articles
type ArticleRepo struct {
	db *DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

// SaveArticles upserts articles for one owner keyed on (savedBy, originalURL).
// The slice elements are updated in place with their ids and save time.
func (r *ArticleRepo) SaveArticles(ctx context.Context, savedBy string, articles []CuratedArticle) (int, int, error) {
	var created, updated int

	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		for i := range articles {
			article := &articles[i]
			article.OriginalURL = strings.TrimSpace(article.OriginalURL)
			article.SavedBy = savedBy
			article.SavedAt = now()

			var existingID string
			err := tx.QueryRowContext(ctx,
				`SELECT id FROM curated_articles WHERE saved_by = ? AND original_url = ?`,
				savedBy, article.OriginalURL).Scan(&existingID)

			switch {
			case err == nil:
				_, err = tx.ExecContext(ctx, `
					UPDATE curated_articles
					SET title = ?, summary = ?, source_name = ?, image_url = ?,
					    published_at = ?, category = ?, saved_at = ?
					WHERE id = ?
				`, article.Title, article.Summary, article.SourceName, article.ImageURL,
					nullTime(article.PublishedAt), article.Category, article.SavedAt, existingID)
				if err != nil {
					return fmt.Errorf("failed to update article: %w", err)
				}
				article.ID = existingID
				updated++

			case errors.Is(err, sql.ErrNoRows):
				article.ID = uuid.NewString()
				_, err = tx.ExecContext(ctx, `
					INSERT INTO curated_articles (
						id, title, summary, source_name, original_url, image_url,
						published_at, category, saved_by, saved_at
					) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				`, article.ID, article.Title, article.Summary, article.SourceName, article.OriginalURL,
					article.ImageURL, nullTime(article.PublishedAt), article.Category, savedBy, article.SavedAt)
				if err != nil {
					return fmt.Errorf("failed to insert article: %w", err)
				}
				created++

			default:
				return fmt.Errorf("failed to look up article: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return created, updated, nil
}

// ListArticles returns the owner's articles newest first, optionally only
// those saved at or after since
func (r *ArticleRepo) ListArticles(ctx context.Context, savedBy string, since *time.Time) ([]CuratedArticle, error) {
	query := `
		SELECT id, title, summary, source_name, original_url, image_url,
		       published_at, category, saved_by, saved_at
		FROM curated_articles
		WHERE saved_by = ?`
	args := []any{savedBy}
	if since != nil {
		query += ` AND saved_at >= ?`
		args = append(args, since.UTC())
	}
	query += ` ORDER BY saved_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := []CuratedArticle{}
	for rows.Next() {
		var a CuratedArticle
		var publishedAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.Title, &a.Summary, &a.SourceName, &a.OriginalURL, &a.ImageURL,
			&publishedAt, &a.Category, &a.SavedBy, &a.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		if publishedAt.Valid {
			t := publishedAt.Time
			a.PublishedAt = &t
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

// DeleteArticle removes an article owned by savedBy. Articles owned by someone
// else are reported as not found.
func (r *ArticleRepo) DeleteArticle(ctx context.Context, id, savedBy string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM curated_articles WHERE id = ? AND saved_by = ?`, id, savedBy)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
