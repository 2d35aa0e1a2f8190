package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"taskManager/internal/auth"
	"taskManager/internal/clock"
	"taskManager/internal/config"
	"taskManager/internal/events"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/mail"
	"taskManager/internal/notify"
	"taskManager/internal/repository/inmemory"
	"taskManager/internal/repository/postgres"
	"taskManager/internal/service"
	"taskManager/internal/worker"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config    *config.Config
	server    *http.Server
	mailer    *mail.Dispatcher
	deadlines *worker.DeadlineWorker
	shutdowns []func() // выполняются в обратном порядке
}

// storage - набор репозиториев выбранного бэкенда
type storage struct {
	deps          service.Deps
	tasks         worker.TaskRepository
	notifications notify.Repository
	close         func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

// Init собирает зависимости. После ошибки нужно вызвать Close, чтобы освободить уже созданное.
func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: Завершение работы логгирования...")
		logger.Sync()
	})

	st, err := openStorage(ctx, a.config)
	if err != nil {
		return nil, err
	}
	a.shutdowns = append(a.shutdowns, st.close)

	sender, err := newSender(a.config.Mail)
	if err != nil {
		return nil, err
	}
	a.mailer = mail.NewDispatcher(sender, mail.DispatcherConfig{
		Workers:     a.config.Mail.Workers,
		QueueSize:   a.config.Mail.QueueSize,
		SendTimeout: a.config.Mail.SendTimeout,
	})
	a.shutdowns = append(a.shutdowns, a.mailer.Close)

	clk := clock.Real{}
	notifier := notify.New(st.notifications, a.mailer, clk, a.config.Mail.ProductName)

	deps := st.deps
	deps.Events = events.NewBus(events.LogHandler{}, notifier)
	deps.Clock = clk

	tokens := auth.NewManager(a.config.Auth.JWTSecret, a.config.Auth.TokenTTL, clk)

	router := handlers.NewRouter(handlers.Handlers{
		Tasks:         handlers.NewTaskHandler(service.NewTaskService(deps)),
		Comments:      handlers.NewCommentHandler(service.NewCommentService(deps)),
		Notifications: handlers.NewNotificationHandler(service.NewNotificationService(deps)),
		Users:         handlers.NewUserHandler(service.NewUserService(deps)),
		Auth:          handlers.NewAuthHandler(service.NewAuthService(deps, tokens, a.config.Auth.BcryptCost)),
	}, handlers.RouterConfig{
		Tokens:       tokens,
		RateLimitRPM: a.config.Server.RateLimitRPM,
		CORSOrigins:  a.config.Server.CORSOrigins,
	})

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	a.deadlines = worker.NewDeadlineWorker(st.tasks, a.mailer, clk, worker.Config{
		Schedule: a.config.Scheduler.DeadlineCron,
		Window:   a.config.Scheduler.Window,
		Location: a.config.Location(),
	})

	logger.Info("App: Приложение собрано",
		zap.String("repository", a.config.Repository.Type),
		zap.Bool("mail", a.config.Mail.Enabled),
		zap.Bool("scheduler", a.config.Scheduler.Enabled))
	return a, nil
}

// Run обслуживает HTTP, почтовую очередь и планировщик до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()

		logger.Info("App: Остановка сервера...")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка сервера: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.mailer.Run(gctx)
	})

	if a.config.Scheduler.Enabled {
		g.Go(func() error {
			return a.deadlines.Run(gctx)
		})
	}

	return g.Wait()
}

// Sweep выполняет один проход напоминаний о дедлайнах и ждёт отправки писем.
func (a *App) Sweep(ctx context.Context) (worker.SweepResult, error) {
	a.mailer.Start()
	res, err := a.deadlines.Sweep(ctx)
	a.mailer.Close()
	return res, err
}

func (a *App) Close() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Repository.Type {
	case "postgres":
		if err := postgres.MigrateUp(cfg.Database.URL); err != nil {
			return nil, fmt.Errorf("миграции: %w", err)
		}
		db, err := postgres.New(ctx, cfg.Database.URL, postgres.PoolConfig{
			MaxConns:        int32(cfg.Database.MaxConnections),
			MinConns:        int32(cfg.Database.MinConnections),
			MaxConnIdleTime: cfg.Database.IdleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("подключение к PostgreSQL: %w", err)
		}
		return &storage{
			deps: service.Deps{
				Tasks:         db.Tasks(),
				Users:         db.Users(),
				Comments:      db.Comments(),
				Attachments:   db.Attachments(),
				Notifications: db.Notifications(),
				Tx:            db,
			},
			tasks:         db.Tasks(),
			notifications: db.Notifications(),
			close:         db.Close,
		}, nil
	case "inmemory":
		store := inmemory.NewStore()
		logger.Warn("App: Данные хранятся в памяти и будут потеряны при перезапуске")
		return &storage{
			deps: service.Deps{
				Tasks:         store.Tasks(),
				Users:         store.Users(),
				Comments:      store.Comments(),
				Attachments:   store.Attachments(),
				Notifications: store.Notifications(),
				Tx:            store,
			},
			tasks:         store.Tasks(),
			notifications: store.Notifications(),
			close:         func() {},
		}, nil
	default:
		return nil, fmt.Errorf("неизвестный тип репозитория %q", cfg.Repository.Type)
	}
}

func newSender(cfg config.MailConfig) (mail.Sender, error) {
	if !cfg.Enabled {
		return mail.LogSender{}, nil
	}
	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
	})
	if err != nil {
		return nil, fmt.Errorf("настройка почты: %w", err)
	}
	return sender, nil
}
