package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"webpconv/internal/config"
	"webpconv/internal/logger"
	"webpconv/internal/stubsrv"
)

const shutdownTimeout = 30 * time.Second

// convsrv - заглушка сервиса конвертации. Поднимается локально, чтобы
// гонять webpconv без настоящего кодировщика.
func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	logger.SetupDefault(cfg.Logger)

	handler := logger.HTTPLogging(slog.Default(), stubsrv.New())
	server := newServer(cfg.Server.Addr, handler)

	done := make(chan int)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)

		s := <-c
		slog.Info("shutdown by signal", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}

		close(done)
	}()

	slog.Info("server startup", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	os.Exit(<-done)
}

// newServer создаёт HTTP-сервер с таймаутами под прием multipart-загрузок.
func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: handler,

		ReadTimeout:       5 * time.Minute, // прием больших загрузок
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       1 * time.Minute,

		MaxHeaderBytes: 8192, // 8 KB
	}
}
