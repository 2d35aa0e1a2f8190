package worker

import (
	"context"
	"fmt"
	"time"

	"taskManager/internal/clock"
	"taskManager/internal/logger"
	"taskManager/internal/mail"
	"taskManager/internal/models/task"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultSchedule = "0 9 * * *"
	DefaultWindow   = 24 * time.Hour
)

type TaskRepository interface {
	GetDueBetween(ctx context.Context, from, to time.Time) ([]*task.Task, error)
}

type Dispatcher interface {
	Dispatch(msg mail.Message) error
}

type Config struct {
	Schedule string
	Window   time.Duration
	Location *time.Location
}

type SweepResult struct {
	Scanned  int
	Reminded int
	Skipped  int
	Failed   int
}

// DeadlineWorker рассылает напоминания исполнителям задач, срок которых наступает в ближайшее окно.
// Отметки об отправке не хранятся: задача получает напоминание на каждом запуске, пока её дедлайн внутри окна.
type DeadlineWorker struct {
	repo     TaskRepository
	mailer   Dispatcher
	clock    clock.Clock
	schedule string
	window   time.Duration
	location *time.Location
}

func NewDeadlineWorker(repo TaskRepository, mailer Dispatcher, clk clock.Clock, cfg Config) *DeadlineWorker {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if clk == nil {
		clk = clock.Real{}
	}

	return &DeadlineWorker{
		repo:     repo,
		mailer:   mailer,
		clock:    clk,
		schedule: cfg.Schedule,
		window:   cfg.Window,
		location: cfg.Location,
	}
}

// Run запускает планировщик и блокируется до отмены ctx. Запуски не исключают друг друга.
func (w *DeadlineWorker) Run(ctx context.Context) error {
	scheduler := cron.New(cron.WithLocation(w.location))
	_, err := scheduler.AddFunc(w.schedule, func() {
		logger.Info("Worker: Проверка дедлайнов", zap.Time("started_at", w.clock.Now()))
		if _, err := w.Sweep(ctx); err != nil {
			logger.Error("Worker: Проверка дедлайнов не выполнена", err)
		}
	})
	if err != nil {
		return fmt.Errorf("расписание %q: %w", w.schedule, err)
	}

	scheduler.Start()
	logger.Info("Worker: Планировщик запущен",
		zap.String("schedule", w.schedule),
		zap.String("timezone", w.location.String()))

	<-ctx.Done()
	stopped := scheduler.Stop()
	<-stopped.Done()
	logger.Info("Worker: Планировщик остановлен")
	return nil
}

// Sweep выполняет один проход по окну [now, now+window). Ошибка хранилища прерывает проход,
// ошибка отправки одного письма только учитывается в Failed.
func (w *DeadlineWorker) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	from := w.clock.Now()
	to := from.Add(w.window)

	tasks, err := w.repo.GetDueBetween(ctx, from, to)
	if err != nil {
		return SweepResult{}, fmt.Errorf("получение задач с близким дедлайном: %w", err)
	}

	result := SweepResult{Scanned: len(tasks)}
	for _, t := range tasks {
		if t.Status == task.StatusCompleted || !t.HasAssignee() || t.AssignedTo.Email == "" {
			result.Skipped++
			continue
		}

		if err := w.mailer.Dispatch(mail.DeadlineReminderMessage(t.AssignedTo.Email, t)); err != nil {
			logger.Warn("Worker: Напоминание не отправлено",
				zap.String("task_id", t.ID.String()),
				zap.String("to", t.AssignedTo.Email),
				zap.Error(err))
			result.Failed++
			continue
		}
		result.Reminded++
	}

	logger.Info("Worker: Завершение проверки дедлайнов",
		zap.Duration("ms", time.Since(start)),
		zap.Int("scanned", result.Scanned),
		zap.Int("reminded", result.Reminded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}
