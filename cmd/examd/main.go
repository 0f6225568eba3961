package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	api "github.com/mind-engage/mindengage-tasks/internal/api/http"
	"github.com/mind-engage/mindengage-tasks/internal/auth"
	"github.com/mind-engage/mindengage-tasks/internal/config"
	"github.com/mind-engage/mindengage-tasks/internal/db"
	"github.com/mind-engage/mindengage-tasks/internal/exam"
	"github.com/mind-engage/mindengage-tasks/internal/logging"
	"github.com/mind-engage/mindengage-tasks/internal/task"
	"github.com/mind-engage/mindengage-tasks/internal/web"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("examd stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		return err
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dbh, err := db.Open(ctx, driver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	// --- Services ---
	taskStore := task.NewSQLStore(dbh)
	tasks := task.NewService(taskStore, logger, cfg.PageSize)
	exams := exam.NewService(taskStore, exam.NewSQLStore(dbh), logger, exam.WithPerPage(cfg.PageSize))
	views, err := web.New(logger)
	if err != nil {
		return err
	}

	h := api.NewRouter(api.Deps{
		DB:             dbh,
		Tasks:          tasks,
		Exams:          exams,
		Users:          auth.NewUsers(dbh),
		Auth:           auth.NewAuthService(cfg.SessionSecret, cfg.SessionTTL),
		Views:          views,
		Log:            logger,
		CookieSecure:   cfg.CookieSecure,
		CORSOrigins:    cfg.CORSOrigins,
		ReportFontPath: cfg.ReportFontPath,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop, cancelSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelSignals()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.Env), zap.String("db", cfg.DBDriver))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-stop.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}
