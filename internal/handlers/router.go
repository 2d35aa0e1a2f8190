package handlers

import (
	"net/http"

	"taskManager/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Handlers struct {
	Tasks         *TaskHandler
	Comments      *CommentHandler
	Notifications *NotificationHandler
	Users         *UserHandler
	Auth          *AuthHandler
}

type RouterConfig struct {
	Tokens       middleware.TokenParser
	RateLimitRPM int
	CORSOrigins  []string
}

func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(cfg.RateLimitRPM))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Tasks.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Tokens))

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.Tasks.ListTasks)
				r.Post("/", h.Tasks.CreateTask)
				r.Get("/my", h.Tasks.GetMyTasks)
				r.Get("/created", h.Tasks.GetCreatedTasks)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Tasks.GetTaskByID)
					r.Put("/", h.Tasks.UpdateTask)
					r.Delete("/", h.Tasks.DeleteTask)
					r.Get("/comments", h.Comments.ListByTask)
					r.Get("/attachments", h.Tasks.ListAttachments)
					r.Post("/attachments", h.Tasks.AddAttachment)
				})
			})

			r.Post("/comments", h.Comments.AddComment)
			r.Delete("/comments/{id}", h.Comments.DeleteComment)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notifications.List)
				r.Get("/unread", h.Notifications.ListUnread)
				r.Get("/unread/count", h.Notifications.CountUnread)
				r.Put("/read-all", h.Notifications.MarkAllAsRead)
				r.Put("/{id}/read", h.Notifications.MarkAsRead)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.Users.List)
				r.Get("/me", h.Users.Me)
				r.Get("/{id}", h.Users.GetByID)
				r.Put("/{id}/role", h.Users.UpdateRole)
				r.Put("/{id}/status", h.Users.UpdateStatus)
			})
		})
	})

	return otelhttp.NewHandler(r, "task-manager",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}
