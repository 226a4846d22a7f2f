package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job — периодическая задача. Run получает фиксированное "сейчас" тика,
// чтобы вся работа внутри считалась от одного момента времени.
type Job struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context, now time.Time) error
}

// Scheduler гоняет задачи по тикерам, по горутине на задачу.
// Первый запуск каждой задачи происходит сразу при старте.
type Scheduler struct {
	jobs   []Job
	logger *zap.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

func (s *Scheduler) AddJob(job Job) {
	s.jobs = append(s.jobs, job)
}

func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(ctx, job)
	}
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	defer s.wg.Done()

	s.execute(ctx, job, time.Now())

	ticker := time.NewTicker(job.Every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.execute(ctx, job, now)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job Job, now time.Time) {
	started := time.Now()
	if err := job.Run(ctx, now); err != nil {
		s.logger.Error("задача планировщика завершилась с ошибкой",
			zap.String("job", job.Name),
			zap.Error(err))
		return
	}
	s.logger.Info("задача планировщика выполнена",
		zap.String("job", job.Name),
		zap.Duration("took", time.Since(started)))
}
