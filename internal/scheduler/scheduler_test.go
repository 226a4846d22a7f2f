package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestScheduler(t *testing.T) {
	t.Run("задача выполняется сразу при старте", func(t *testing.T) {
		var runs int64
		s := New(zap.NewNop())
		s.AddJob(Job{
			Name:  "probe",
			Every: time.Hour,
			Run: func(_ context.Context, _ time.Time) error {
				atomic.AddInt64(&runs, 1)
				return nil
			},
		})

		s.Start(context.Background())
		s.Stop()

		assert.EqualValues(t, 1, atomic.LoadInt64(&runs))
	})

	t.Run("ошибка задачи не останавливает планировщик", func(t *testing.T) {
		var runs int64
		s := New(zap.NewNop())
		s.AddJob(Job{
			Name:  "failing",
			Every: 5 * time.Millisecond,
			Run: func(_ context.Context, _ time.Time) error {
				atomic.AddInt64(&runs, 1)
				return errors.New("сбой")
			},
		})

		s.Start(context.Background())
		assert.Eventually(t, func() bool {
			return atomic.LoadInt64(&runs) >= 2
		}, time.Second, 5*time.Millisecond)
		s.Stop()
	})

	t.Run("Stop дожидается завершения горутин", func(t *testing.T) {
		done := make(chan struct{})
		s := New(zap.NewNop())
		s.AddJob(Job{
			Name:  "slow",
			Every: time.Hour,
			Run: func(_ context.Context, _ time.Time) error {
				time.Sleep(20 * time.Millisecond)
				close(done)
				return nil
			},
		})

		s.Start(context.Background())
		s.Stop()

		select {
		case <-done:
		default:
			t.Fatal("Stop вернулся до завершения задачи")
		}
	})
}
