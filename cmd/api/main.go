package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-study/internal/auth"
	"github.com/ovaphlow/pitchfork/service-study/internal/config"
	"github.com/ovaphlow/pitchfork/service-study/internal/router"
	"github.com/ovaphlow/pitchfork/service-study/internal/session"
	"github.com/ovaphlow/pitchfork/service-study/internal/task"
	"github.com/ovaphlow/pitchfork/service-study/internal/trivia"
	"github.com/ovaphlow/pitchfork/service-study/internal/user"
	"github.com/ovaphlow/pitchfork/service-study/pkg/database"
	"github.com/ovaphlow/pitchfork/service-study/pkg/utilities"
)

func main() {
	// best-effort: without a .env file the real environment and defaults apply
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-study")

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("config: %v", err)
	}
	utilities.InitSnowflake(cfg.SnowflakeNode)

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		if secret, err = auth.NewSecret(); err != nil {
			sugar.Fatalf("generate jwt secret: %v", err)
		}
		sugar.Warn("JWT_SECRET is not set; using a random secret, tokens will not survive a restart")
	}

	dbCfg, err := database.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("db config: %v", err)
	}
	sqlDB, err := database.Connect(dbCfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, sqlDB); err != nil {
		sugar.Fatalf("db migrate: %v", err)
	}

	sqlxDB := sqlx.NewDb(sqlDB, "postgres")

	tokens := auth.NewTokenService(secret, cfg.TokenTTL)
	handler := router.RegisterRoutes(sugar, router.Deps{
		Config:   cfg,
		Tokens:   tokens,
		Users:    user.NewHandler(user.NewUserService(sqlxDB, tokens, nil), sugar),
		Tasks:    task.NewHandler(task.NewTaskService(sqlxDB), sugar),
		Sessions: session.NewHandler(session.NewSessionService(sqlxDB), sugar),
		Trivia:   trivia.NewHandler(trivia.NewGateway(cfg.TriviaBaseURL, cfg.TriviaTimeout, sugar), sugar),
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("service is running; press Ctrl+C to stop", "addr", cfg.Addr)

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for in-flight requests
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
