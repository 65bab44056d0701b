package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/poqie/linkguard/internal/auth"
	"github.com/poqie/linkguard/internal/handlers"
	"github.com/poqie/linkguard/internal/model"
	"github.com/poqie/linkguard/internal/repositories"
	"github.com/poqie/linkguard/internal/service"
	"github.com/poqie/linkguard/internal/store"
)

func BenchmarkResolve(b *testing.B) {
	docStore := store.NewMemory()
	repo := repositories.NewLinkRepository(docStore)
	logger := zap.NewNop()

	links := service.NewLinks(repo, logger, "http://localhost:8080", "bench-key-secret")
	resolver := service.NewResolver(repo, logger, "bench-key-secret")
	session := auth.NewSession("bench-session-secret")
	h := handlers.NewHandler(links, resolver, auth.NewLocalDirectory(docStore), session, nil, logger)

	if _, err := links.CreateLink(context.Background(), "owner-1", model.CreateLinkRequest{
		URL:        "https://example.com",
		CustomSlug: "bench1",
	}); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/resolve?slug=bench1", nil)
		rec := httptest.NewRecorder()
		h.Resolve(rec, req)
	}
}
