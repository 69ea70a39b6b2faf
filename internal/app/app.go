package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/config"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/handlers"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/pg"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/repo"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/scheduler"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/service"
	"github.com/provenvalueenterprises-collab/provenv-sub002/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg   *config.Config
	api   *handlers.Handlers
	srv   *service.Services
	repo  *repo.Repositories
	sched *scheduler.Scheduler

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)

	conn := pg.New(pool)
	a.cfg = cfg
	a.repo = repo.New(conn, txManager)
	a.srv, err = service.New(cfg, a.repo, txManager)
	if err != nil {
		zap.L().Error("build services failed: ", zap.Error(err))
		return fmt.Errorf("can't build services: %w", err)
	}
	a.api = handlers.New(a.srv, cfg)

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	if err = a.startScheduler(ctx); err != nil {
		return fmt.Errorf("can't start scheduler: %w", err)
	}

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:    a.cfg.Address,
		Handler: router,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startScheduler(ctx context.Context) error {
	location, err := time.LoadLocation(a.cfg.Timezone)
	if err != nil {
		return fmt.Errorf("can't load timezone %q: %w", a.cfg.Timezone, err)
	}
	a.sched = scheduler.New(a.srv.ContributionService, a.cfg.CronSchedule, location)
	if err := a.sched.Start(); err != nil {
		return fmt.Errorf("can't register schedule %q: %w", a.cfg.CronSchedule, err)
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.sched.Stop(sCtx); err != nil {
			zap.L().Warn("scheduler did not stop cleanly", zap.Error(err))
		}
		// The scheduler is the last run producer; the pool can drain now.
		a.srv.Close()
	}()

	return nil
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
