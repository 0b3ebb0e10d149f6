package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrPoolClosed возвращается задачам, отправленным после остановки пула.
var ErrPoolClosed = errors.New("worker pool is closed")

// WorkerPool держит фиксированное число воркеров для тяжёлых вычислений (инференс, отрисовка).
// Размер пула не зависит от числа запросов.
type WorkerPool struct {
	tasks  chan poolTask
	closed chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	logger *zap.SugaredLogger
}

type poolTask struct {
	fn   func() error
	done chan error
}

// NewWorkerPool запускает workers воркеров с очередью на queueSize задач.
func NewWorkerPool(workers, queueSize int, logger *zap.SugaredLogger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &WorkerPool{
		tasks:  make(chan poolTask, queueSize),
		closed: make(chan struct{}),
		logger: logger,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.logger.Infof("worker pool started: %d workers, queue %d", workers, queueSize)
	return p
}

// Do ставит fn в очередь и ждёт её завершения. Если ctx завершается раньше,
// вызывающий освобождается с ошибкой контекста, а воркер доделывает задачу в фоне.
func (p *WorkerPool) Do(ctx context.Context, fn func() error) error {
	t := poolTask{fn: fn, done: make(chan error, 1)}

	select {
	case <-p.closed:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.tasks <- t:
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closed:
		return ErrPoolClosed
	}
}

// Close останавливает воркеров и ждёт их завершения.
func (p *WorkerPool) Close() error {
	p.once.Do(func() {
		close(p.closed)
		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})
	return nil
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.closed:
			return
		case t := <-p.tasks:
			p.run(id, t)
		}
	}
}

// run выполняет задачу, превращая панику в ошибку этой задачи.
func (p *WorkerPool) run(id int, t poolTask) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorf("worker %d: task panicked: %v", id, r)
			t.done <- fmt.Errorf("worker %d: task panicked: %v", id, r)
		}
	}()
	t.done <- t.fn()
}
