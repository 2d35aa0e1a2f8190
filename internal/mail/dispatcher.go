package mail

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"taskManager/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrQueueFull = errors.New("очередь писем переполнена")
	ErrClosed    = errors.New("отправка писем остановлена")
)

// Sender доставляет одно письмо.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher отправляет письма в фоне. Ошибки доставки только логируются и наружу не выходят.
type Dispatcher struct {
	sender  Sender
	queue   chan Message
	workers int
	timeout time.Duration

	mtx    sync.RWMutex
	closed bool
	start  sync.Once
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, cfg DispatcherConfig) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}

	return &Dispatcher{
		sender:  sender,
		queue:   make(chan Message, cfg.QueueSize),
		workers: cfg.Workers,
		timeout: cfg.SendTimeout,
	}
}

// Start запускает воркеры. Повторные вызовы ничего не делают.
func (d *Dispatcher) Start() {
	d.start.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.work(i)
		}
		logger.Info("Mail: Воркеры отправки писем запущены", zap.Int("workers", d.workers))
	})
}

// Run запускает воркеры и при отмене ctx дожидается отправки уже принятых писем.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.Start()
	<-ctx.Done()
	d.Close()
	return nil
}

// Dispatch ставит письмо в очередь и никогда не блокируется.
func (d *Dispatcher) Dispatch(msg Message) error {
	d.mtx.RLock()
	defer d.mtx.RUnlock()

	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- msg:
		return nil
	default:
		logger.Warn("Mail: Очередь переполнена, письмо отброшено",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
		return ErrQueueFull
	}
}

// Close перестаёт принимать письма и ждёт, пока очередь опустеет.
func (d *Dispatcher) Close() {
	d.Start()

	d.mtx.Lock()
	if d.closed {
		d.mtx.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mtx.Unlock()

	d.wg.Wait()
	logger.Info("Mail: Отправка писем остановлена")
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(id, msg)
	}
}

func (d *Dispatcher) deliver(worker int, msg Message) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Mail: Паника при отправке письма", fmt.Errorf("%v", p), zap.String("to", msg.To))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	if err := d.sender.Send(ctx, msg); err != nil {
		logger.Error("Mail: Не удалось отправить письмо", err,
			zap.Int("worker", worker),
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
		return
	}

	logger.Info("Mail: Письмо отправлено",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Duration("ms", time.Since(start)))
}
