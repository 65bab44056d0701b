package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	"github.com/poqie/linkguard/internal/auth"
	"github.com/poqie/linkguard/internal/handlers"
	"github.com/poqie/linkguard/internal/model"
	"github.com/poqie/linkguard/internal/repositories"
	"github.com/poqie/linkguard/internal/router"
	"github.com/poqie/linkguard/internal/service"
	"github.com/poqie/linkguard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeySecret = "test-server-key-secret"

type env struct {
	repo    *repositories.LinkRepository
	links   *service.Links
	session *auth.Session
	router  *chi.Mux
}

func newEnv(t *testing.T) *env {
	t.Helper()

	docStore := store.NewMemory()
	repo := repositories.NewLinkRepository(docStore)
	logger := zap.NewNop()

	links := service.NewLinks(repo, logger, "http://localhost:8080", testKeySecret)
	resolver := service.NewResolver(repo, logger, testKeySecret)
	directory := auth.NewLocalDirectory(docStore)
	session := auth.NewSession("test-session-secret")

	handler := handlers.NewHandler(links, resolver, directory, session, nil, logger)
	return &env{
		repo:    repo,
		links:   links,
		session: session,
		router:  router.NewRouter(handler, logger),
	}
}

func (e *env) createLink(t *testing.T, ownerID string, req model.CreateLinkRequest) string {
	t.Helper()
	resp, err := e.links.CreateLink(context.Background(), ownerID, req)
	require.NoError(t, err)
	return resp.Slug
}

func (e *env) do(req *http.Request) *http.Response {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec.Result()
}

func decodeResolve(t *testing.T, resp *http.Response) model.ResolveResponse {
	t.Helper()
	var body model.ResolveResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestResolveHandler_MissingSlug(t *testing.T) {
	e := newEnv(t)

	resp := e.do(httptest.NewRequest(http.MethodGet, "/api/resolve", nil))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decodeResolve(t, resp).State)
}

func TestResolveHandler_OK(t *testing.T) {
	e := newEnv(t)
	slug := e.createLink(t, "owner-1", model.CreateLinkRequest{URL: "https://example.com"})

	resp := e.do(httptest.NewRequest(http.MethodGet, "/api/resolve?slug="+slug, nil))
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeResolve(t, resp)
	assert.Equal(t, "resolved", body.State)
	assert.Equal(t, "https://example.com", body.Destination)
}

func TestResolveHandler_PasswordGate(t *testing.T) {
	e := newEnv(t)
	slug := e.createLink(t, "owner-1", model.CreateLinkRequest{URL: "https://example.com", Password: "Secr3tPass"})

	// Без пароля конвейер приостановлен.
	resp := e.do(httptest.NewRequest(http.MethodGet, "/api/resolve?slug="+slug, nil))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "password_required", decodeResolve(t, resp).State)

	// Неверный пароль: ошибка, но состояние остаётся password_required.
	resp = e.do(httptest.NewRequest(http.MethodGet, "/api/resolve?slug="+slug+"&password=wrong", nil))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "password_required", decodeResolve(t, resp).State)

	// Верный пароль резолвит.
	resp = e.do(httptest.NewRequest(http.MethodGet, "/api/resolve?slug="+slug+"&password=Secr3tPass", nil))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://example.com", decodeResolve(t, resp).Destination)
}

func TestResolveHandler_Gone(t *testing.T) {
	e := newEnv(t)
	slug := e.createLink(t, "owner-1", model.CreateLinkRequest{URL: "https://example.com", MaxClicks: 1})

	resp := e.do(httptest.NewRequest(http.MethodGet, "/api/resolve?slug="+slug, nil))
	resp.Body.Close()

	resp = e.do(httptest.NewRequest(http.MethodGet, "/api/resolve?slug="+slug, nil))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusGone, resp.StatusCode)
	assert.Equal(t, "quota_exceeded", decodeResolve(t, resp).State)
}

// TestRedirectHandler проверяет редирект на оригинальный URL
func TestRedirectHandler(t *testing.T) {
	e := newEnv(t)
	slug := e.createLink(t, "owner-1", model.CreateLinkRequest{URL: "https://example.com"})

	resp := e.do(httptest.NewRequest(http.MethodGet, "/"+slug, nil))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "https://example.com", resp.Header.Get("Location"))
}

func TestRedirectHandler_NotFound(t *testing.T) {
	e := newEnv(t)

	resp := e.do(httptest.NewRequest(http.MethodGet, "/nonexistent", nil))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateLinkHandler_Unauthorized(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader(`{"url":"https://example.com"}`))
	resp := e.do(req)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func withSession(e *env, req *http.Request, accountID string) *http.Request {
	req.AddCookie(&http.Cookie{Name: "session_token", Value: e.session.SignCookieValue(accountID)})
	return req
}

func TestCreateLinkHandler(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader(`{"url":"https://example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := e.do(withSession(e, req, "owner-1"))
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body model.CreateLinkResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Slug, 6)
	assert.True(t, strings.HasPrefix(body.ShortURL, "http://localhost:8080/"))
}

func TestCreateLinkHandler_InvalidURL(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader(`{"url":"not-a-url"}`))
	resp := e.do(withSession(e, req, "owner-1"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateLinkHandler_InvalidSlug(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/links",
		strings.NewReader(`{"url":"https://example.com","custom_slug":"abc/evil"}`))
	resp := e.do(withSession(e, req, "owner-1"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOwnerLinksHandler(t *testing.T) {
	e := newEnv(t)
	slug := e.createLink(t, "owner-1", model.CreateLinkRequest{URL: "https://example.com"})
	e.createLink(t, "owner-2", model.CreateLinkRequest{URL: "https://other.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/api/user/links", nil)
	resp := e.do(withSession(e, req, "owner-1"))
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var links []model.OwnedLink
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&links))
	require.Len(t, links, 1)
	assert.Equal(t, slug, links[0].Slug)
	assert.Equal(t, "https://example.com", links[0].DestinationURL)
}

func TestDeleteLinkHandler(t *testing.T) {
	e := newEnv(t)
	slug := e.createLink(t, "owner-1", model.CreateLinkRequest{URL: "https://example.com"})

	req := httptest.NewRequest(http.MethodDelete, "/api/links/"+slug, nil)
	resp := e.do(withSession(e, req, "owner-1"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	req = httptest.NewRequest(http.MethodDelete, "/api/links/"+slug, nil)
	resp = e.do(withSession(e, req, "owner-1"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthHandlers(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"user@example.com","password":"Secr3tPass"}`))
	resp := e.do(req)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Cookies())

	var account auth.Account
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&account))
	assert.NotEmpty(t, account.ID)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"user@example.com","password":"wrong-pass"}`))
	resp = e.do(req)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"user@example.com","password":"Secr3tPass"}`))
	resp = e.do(req)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPing(t *testing.T) {
	e := newEnv(t)

	resp := e.do(httptest.NewRequest(http.MethodGet, "/ping", nil))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
