package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const taskTimeout = 2 * time.Minute

// Scheduler periodically enqueues a warm-up task per configured news source
// and runs them on a fixed pool of workers
type Scheduler struct {
	refresher   NewsRefresher
	sources     SourceLister
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(refresher NewsRefresher, sources SourceLister, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	if workerCount <= 0 {
		workerCount = 1
	}

	return &Scheduler{
		refresher:   refresher,
		sources:     sources,
		interval:    interval,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueTasks() {
	sources := s.sources.GetSources()
	if len(sources) == 0 {
		slog.Debug("No news sources configured, nothing to warm")
		return
	}

	for _, source := range sources {
		if err := s.EnqueueTask(NewWarmNewsTask(source.Name, s.refresher)); err != nil {
			slog.Warn("Failed to enqueue WarmNewsTask", "category", source.Name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "id", task.GetID(), "category", task.GetCategory(), "error", err)

	attempt, ok := task.Retry()
	if !ok {
		slog.Error("Task failed after maximum retries", "id", task.GetID(), "category", task.GetCategory(), "retries", attempt, "last_error", err)
		return
	}

	retryDelay := retryBackoff(attempt)
	slog.Warn("Task retry scheduled", "id", task.GetID(), "category", task.GetCategory(), "retry_count", attempt, "delay", retryDelay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(retryDelay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "id", task.GetID(), "error", retryErr)
			}
		}
	}()
}

// retryBackoff doubles from one second and caps at thirty
func retryBackoff(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	delay := time.Duration(1<<uint(retry-1)) * time.Second
	if delay > 30*time.Second {
		delay = 30 * time.Second
	}
	return delay
}
