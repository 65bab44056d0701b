package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/poqie/linkguard/internal/handlers"
	"github.com/poqie/linkguard/internal/middleware"
)

// NewRouter создаёт и настраивает маршрутизатор
func NewRouter(handler *handlers.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)                      // Идентификатор запроса для логов
	r.Use(middleware.LoggingMiddleware(logger)) // Подключаем логирование
	r.Use(middleware.GzipMiddleware)            // Gzip-сжатие

	r.Get("/ping", handler.Ping)

	r.Post("/api/auth/register", handler.Register)
	r.Post("/api/auth/login", handler.Login)
	r.Post("/api/auth/logout", handler.Logout)

	r.Post("/api/links", handler.CreateLink)
	r.Get("/api/user/links", handler.OwnerLinks)
	r.Delete("/api/links/{slug}", handler.DeleteLink)
	r.Post("/api/links/{slug}/deactivate", handler.DeactivateLink)

	r.Get("/api/resolve", handler.Resolve)
	r.Post("/api/resolve", handler.Resolve)
	r.Get("/{slug}", handler.Redirect)
	return r
}
