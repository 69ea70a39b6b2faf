package contributionservice

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

type WorkerPoolI interface {
	AddTask(ctx context.Context, task Task) error
	Close()
}

type Task func() error

var ErrPoolClosed = errors.New("worker pool is closed")

type WorkerPool struct {
	tasks chan Task
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

func NewWorkerPool(size int) *WorkerPool {
	wp := &WorkerPool{
		tasks: make(chan Task, size),
		done:  make(chan struct{}),
	}
	wp.wg.Add(size)
	for i := 0; i < size; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for {
		select {
		case task := <-wp.tasks:
			wp.run(task)
		case <-wp.done:
			// Intake has stopped; finish whatever is still queued.
			for {
				select {
				case task := <-wp.tasks:
					wp.run(task)
				default:
					return
				}
			}
		}
	}
}

func (wp *WorkerPool) run(task Task) {
	if err := task(); err != nil {
		zap.L().Error("Task execution failed", zap.Error(err))
	}
}

// AddTask queues a task, blocking while every worker is busy and the queue
// is full. After Close it returns ErrPoolClosed.
func (wp *WorkerPool) AddTask(ctx context.Context, task Task) error {
	select {
	case <-wp.done:
		return ErrPoolClosed
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.done:
		return ErrPoolClosed
	case wp.tasks <- task:
		return nil
	}
}

// Close stops intake, runs the tasks still queued and waits for the workers
// to exit. Callers must stop submitting before closing.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		close(wp.done)
	})
	wp.wg.Wait()
}
