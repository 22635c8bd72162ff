package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Arihant027/VS-News/app/news"
)

const DefaultMaxRetries = 3

// WarmNewsTask refreshes the cached default news listing of one category
type WarmNewsTask struct {
	id        string
	category  string
	retries   int
	refresher NewsRefresher
}

func NewWarmNewsTask(category string, refresher NewsRefresher) *WarmNewsTask {
	return &WarmNewsTask{
		id:        uuid.NewString(),
		category:  category,
		refresher: refresher,
	}
}

func (t *WarmNewsTask) GetID() string {
	return t.id
}

func (t *WarmNewsTask) GetCategory() string {
	return t.category
}

func (t *WarmNewsTask) Retry() (int, bool) {
	if t.retries >= DefaultMaxRetries {
		return t.retries, false
	}
	t.retries++
	return t.retries, true
}

func (t *WarmNewsTask) Execute(ctx context.Context) error {
	start := time.Now()
	articles, err := t.refresher.Refresh(ctx, news.Query{Category: t.category})
	if err != nil {
		return fmt.Errorf("failed to refresh news for %s: %w", t.category, err)
	}

	slog.Debug("News cache warmed", "category", t.category, "articles", len(articles), "duration", time.Since(start))
	return nil
}
