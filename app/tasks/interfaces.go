package tasks

import (
	"context"

	"github.com/Arihant027/VS-News/app/news"
)

// TaskSchedulerInterface is the part of the scheduler used by main
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// TaskInterface is a unit of work run by a scheduler worker
type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetCategory() string
	// Retry consumes one retry and reports the attempt number, or false once exhausted
	Retry() (attempt int, ok bool)
}

// NewsRefresher refetches a category and rewrites its cache entry
type NewsRefresher interface {
	Refresh(ctx context.Context, q news.Query) ([]news.Article, error)
}

// SourceLister enumerates the configured news categories
type SourceLister interface {
	GetSources() []*news.Source
}
