package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/poqie/linkguard/internal/auth"
	"github.com/poqie/linkguard/internal/config"
	"github.com/poqie/linkguard/internal/database"
	"github.com/poqie/linkguard/internal/handlers"
	"github.com/poqie/linkguard/internal/repositories"
	"github.com/poqie/linkguard/internal/router"
	"github.com/poqie/linkguard/internal/service"
	"github.com/poqie/linkguard/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Инициализация конфигурации
	cfg := config.NewConfig()

	var docStore store.Document
	var db database.DBInterface
	if cfg.Mode == "database" {
		pg, err := database.NewDB(context.Background(), cfg.DatabaseDSN, cfg.PgMigrationsPath, logger)
		if err != nil {
			logger.Fatal("Не удалось подключиться к БД", zap.Error(err))
		}
		defer pg.Close()
		db = pg
		docStore = store.NewPostgres(pg)
	} else {
		docStore = store.NewMemory()
	}

	repo := repositories.NewLinkRepository(docStore)
	linkService := service.NewLinks(repo, logger, cfg.BaseURL, cfg.LinkKeySecret)
	resolver := service.NewResolver(repo, logger, cfg.LinkKeySecret)
	directory := auth.NewLocalDirectory(docStore)
	session := auth.NewSession(cfg.SessionSecret)

	directory.OnStateChange(func(account *auth.Account) {
		if account != nil {
			logger.Info("account signed in", zap.String("email", account.Email))
		}
	})

	handler := handlers.NewHandler(linkService, resolver, directory, session, db, logger)
	r := router.NewRouter(handler, logger)

	logger.Info("Сервер запущен на ", zap.String("address", cfg.ServerAddress))
	if cfg.EnableHTTPS {
		if err := http.ListenAndServeTLS(cfg.ServerAddress, cfg.TLSCertPath, cfg.TLSKeyPath, r); err != nil {
			logger.Fatal("Ошибка при запуске сервера: ", zap.Error(err))
		}
		return
	}
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		logger.Fatal("Ошибка при запуске сервера: ", zap.Error(err))
	}
}
