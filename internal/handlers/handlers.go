package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/poqie/linkguard/internal/auth"
	"github.com/poqie/linkguard/internal/database"
	"github.com/poqie/linkguard/internal/model"
	"github.com/poqie/linkguard/internal/service"
)

// Handler связывает HTTP-границу с сервисами ссылок и конвейером резолва.
type Handler struct {
	Links     *service.Links
	Resolver  *service.Resolver
	Directory auth.Directory
	Session   *auth.Session
	DB        database.DBInterface
	Logger    *zap.Logger
}

func NewHandler(links *service.Links, resolver *service.Resolver, directory auth.Directory,
	session *auth.Session, db database.DBInterface, logger *zap.Logger) *Handler {
	return &Handler{
		Links:     links,
		Resolver:  resolver,
		Directory: directory,
		Session:   session,
		DB:        db,
		Logger:    logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Resolve — точка входа страницы редиректа: GET /api/resolve?slug=...
// Отсутствие slug — немедленный терминальный ответ класса NotFound.
// Пароль защищённой ссылки передаётся параметром password; каждая попытка
// независима.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	password := r.FormValue("password")

	res, err := h.Resolver.Resolve(r.Context(), slug)
	if err == nil && res.State() == service.StatePasswordRequired && password != "" {
		err = res.SubmitPassword(r.Context(), password)
	}

	h.writeResolution(w, res, err)
}

// Redirect обслуживает короткий путь GET /{slug}: при успешном резолве отдаёт
// 307 с заголовком Location, иначе — тот же JSON, что и /api/resolve.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	res, err := h.Resolver.Resolve(r.Context(), slug)
	if err == nil && res.State() == service.StateResolved {
		w.Header().Set("Location", res.Destination())
		w.WriteHeader(http.StatusTemporaryRedirect)
		return
	}

	h.writeResolution(w, res, err)
}

func (h *Handler) writeResolution(w http.ResponseWriter, res *service.Resolution, err error) {
	resp := model.ResolveResponse{State: string(res.State())}

	if err == nil {
		switch res.State() {
		case service.StateResolved:
			resp.Destination = res.Destination()
			writeJSON(w, http.StatusOK, resp)
		case service.StatePasswordRequired:
			resp.Error = "password required"
			writeJSON(w, http.StatusUnauthorized, resp)
		default:
			writeJSON(w, http.StatusOK, resp)
		}
		return
	}

	resp.Error = err.Error()
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, resp)
	case errors.Is(err, service.ErrExpired), errors.Is(err, service.ErrQuotaExceeded):
		writeJSON(w, http.StatusGone, resp)
	case errors.Is(err, service.ErrInvalidPassword):
		writeJSON(w, http.StatusUnauthorized, resp)
	case errors.Is(err, service.ErrDecryption):
		// Намеренно без деталей: не помогаем перебору slug и паролей.
		resp.Error = service.ErrDecryption.Error()
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, service.ErrStoreUnavailable):
		resp.Error = service.ErrStoreUnavailable.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
	default:
		h.Logger.Error("resolution failed", zap.Error(err))
		resp.Error = "internal error"
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

// CreateLink обрабатывает POST /api/links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.Session.AccountID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "BadRequest", http.StatusBadRequest)
		return
	}

	resp, err := h.Links.CreateLink(r.Context(), ownerID, req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, resp)
	case errors.Is(err, service.ErrInvalidURL), errors.Is(err, service.ErrInvalidSlug):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrSlugUnavailable):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.Logger.Error("failed to create link", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// OwnerLinks обрабатывает GET /api/user/links.
func (h *Handler) OwnerLinks(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.Session.AccountID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	links, err := h.Links.OwnerLinks(r.Context(), ownerID)
	if err != nil {
		h.Logger.Error("failed to list links", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

// DeleteLink обрабатывает DELETE /api/links/{slug}.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.Session.AccountID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	err := h.Links.DeleteLink(r.Context(), ownerID, chi.URLParam(r, "slug"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.Logger.Error("failed to delete link", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// DeactivateLink обрабатывает POST /api/links/{slug}/deactivate: мягкое
// удаление без потери записи и счётчиков.
func (h *Handler) DeactivateLink(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.Session.AccountID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	err := h.Links.DeactivateLink(r.Context(), ownerID, chi.URLParam(r, "slug"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.Logger.Error("failed to deactivate link", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Register обрабатывает POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	h.handleAuth(w, r, h.Directory.Register)
}

// Login обрабатывает POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.handleAuth(w, r, h.Directory.Authenticate)
}

// Logout обрабатывает POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Directory.SignOut()
	h.Session.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAuth(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, email, password string) (*auth.Account, error)) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "BadRequest", http.StatusBadRequest)
		return
	}

	account, err := fn(r.Context(), creds.Email, creds.Password)
	if err != nil {
		status := http.StatusInternalServerError
		message := "internal error"
		authErr := &auth.Error{}
		if errors.As(err, &authErr) {
			message = string(authErr.Kind)
			switch authErr.Kind {
			case auth.KindInvalidEmail, auth.KindWeakPassword:
				status = http.StatusBadRequest
			case auth.KindUserNotFound, auth.KindWrongPassword:
				status = http.StatusUnauthorized
			case auth.KindEmailInUse:
				status = http.StatusConflict
			case auth.KindRateLimited:
				status = http.StatusTooManyRequests
			case auth.KindNetworkFailure:
				status = http.StatusServiceUnavailable
			}
		}
		http.Error(w, message, status)
		return
	}

	h.Session.Issue(w, account.ID)
	writeJSON(w, http.StatusOK, account)
}

// Ping проверяет доступность хранилища.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}
