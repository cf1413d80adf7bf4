// Package main запускает HTTP-сервер сервиса заказов ресторана.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/restaurant-orders/internal/config"
	"github.com/mmeshcher/restaurant-orders/internal/demo"
	"github.com/mmeshcher/restaurant-orders/internal/events"
	"github.com/mmeshcher/restaurant-orders/internal/handler"
	"github.com/mmeshcher/restaurant-orders/internal/middleware"
	"github.com/mmeshcher/restaurant-orders/internal/model"
	"github.com/mmeshcher/restaurant-orders/internal/repository"
	"github.com/mmeshcher/restaurant-orders/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := newRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	directory := repository.NewMemoryDirectory()

	if cfg.SeedDemo {
		if err := seed(repo, directory); err != nil {
			sugar.Fatalw("demo data error", "error", err.Error())
		}
	}

	var publisher service.EventPublisher
	if cfg.AMQPURL != "" {
		p, err := events.Dial(cfg.AMQPURL)
		if err != nil {
			sugar.Fatalw("rabbitmq initialization error", "error", err.Error())
		}
		defer p.Close()
		publisher = p
	}

	policy := model.TransitionAny
	if cfg.StrictTransitions {
		policy = model.TransitionSequential
	}

	svc := service.NewService(repo, directory, publisher, policy, logger)
	defer svc.Close()

	authMiddleware := middleware.NewAuthMiddleware(cfg.SessionSecret)
	h := handler.NewHandler(svc, logger, authMiddleware, time.Local)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Фоновая отправка событий о смене статуса
	g.Go(func() error {
		svc.StartEventPublishing(ctx)
		return nil
	})

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting restaurant orders server",
			"addr", cfg.RunAddress,
			"postgres", cfg.DatabaseURI != "",
			"events", publisher != nil,
			"strict_transitions", cfg.StrictTransitions,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

func newRepository(dsn string) (service.Repository, error) {
	if dsn == "" {
		return repository.NewMemoryRepository(), nil
	}
	repo, err := repository.NewPostgresRepository(dsn)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// seed загружает демонстрационные данные. Заказы создаются только в пустом хранилище.
func seed(repo service.Repository, directory *repository.MemoryDirectory) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now()

	orders, err := repo.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		if _, err := demo.SeedOrders(ctx, repo, now); err != nil {
			return err
		}
	}

	return demo.SeedDirectory(directory, now)
}
