package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"inkpress/internal/auth"
	"inkpress/internal/config"
	"inkpress/internal/db"
	"inkpress/internal/httpserver"
	"inkpress/internal/logging"
	"inkpress/internal/posts"
)

func main() {
	ctx := context.Background()
	logger := logging.New()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file, using process environment")
	}
	cfg := config.Load()

	dbConn, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	userStore := auth.NewStore(dbConn)
	authSvc, err := auth.NewService(userStore, cfg.JWTSecret)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	if err := authSvc.SeedFromFile(ctx, cfg.UsersPath); err != nil {
		log.Fatalf("seed users: %v", err)
	}

	postStore := posts.NewStore(dbConn)

	handler := httpserver.NewRouter(logger, authSvc, postStore)
	server := httpserver.New(cfg.HTTPAddr, handler, logger)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
