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

	"BlackjackAdvisor/config"
	"BlackjackAdvisor/internal/auth"
	"BlackjackAdvisor/internal/game/manager"
	"BlackjackAdvisor/internal/history"
	"BlackjackAdvisor/internal/metrics"
	"BlackjackAdvisor/internal/middleware"
	"BlackjackAdvisor/internal/storage"
	"BlackjackAdvisor/internal/utils"
	"BlackjackAdvisor/internal/websocket"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP / websocket advisor server",
	RunE:  runServe,
}

// openHistory 按 history.backend 选择存储，返回的 close 释放连接
func openHistory(ctx context.Context, logger *log.Logger) (history.Repo, func(), error) {
	cfg := config.C
	ttl := time.Duration(cfg.History.TTLHours) * time.Hour
	switch cfg.History.Backend {
	case "", "memory":
		return history.NewMemoryRepo(), func() {}, nil
	case "redis":
		rdb, err := storage.OpenRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("history backend", "backend", "redis", "addr", cfg.Redis.Addr, "ttl", ttl)
		return history.NewRedisRepo(rdb, ttl), func() { rdb.Close() }, nil
	case "postgres":
		db, err := storage.OpenPostgres(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := history.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("history backend", "backend", "postgres")
		return history.NewPostgresRepo(db), func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}

func corsConfig() cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	if len(config.C.Server.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = config.C.Server.AllowOrigins
	}
	return c
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.C
	logger := utils.NewLogger(cfg.Log.Level, os.Stderr)

	defaults := cfg.EngineOptions()
	if err := defaults.Validate(); err != nil {
		return err
	}
	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}
	if cfg.JWT.OperatorKey == "" {
		logger.Warn("jwt.operatorKey is empty, /auth/token rejects every login")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//-------------------------------------------------------
	// 1. 指标 + 历史记录
	//-------------------------------------------------------
	m := metrics.New(nil)

	repo, closeRepo, err := openHistory(ctx, logger)
	if err != nil {
		return err
	}
	defer closeRepo()
	recorder := history.NewService(repo, cfg.History.Buffer, logger, m)
	histCtx, stopHistory := context.WithCancel(context.Background())
	histDone := make(chan struct{})
	go func() {
		defer close(histDone)
		recorder.Run(histCtx)
	}()

	//-------------------------------------------------------
	// 2. Hub + 会话管理（Hub 必须先启动）
	//-------------------------------------------------------
	hub := websocket.NewHub(logger)
	mgr := manager.New(defaults, manager.Deps{
		Hub:      hub,
		Recorder: recorder,
		Metrics:  m,
		Logger:   logger,
	})
	hub.OnIncoming = mgr.HandleIncoming
	go hub.Run()

	//-------------------------------------------------------
	// 3. Gin + CORS + 路由
	//-------------------------------------------------------
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(cors.New(corsConfig()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": len(mgr.Sessions())})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	secret := []byte(cfg.JWT.Secret)
	login := auth.NewHandler(secret, cfg.JWT.OperatorKey, time.Duration(cfg.JWT.TTLHours)*time.Hour)
	r.POST("/auth/token", login.Login)

	api := r.Group("/", middleware.JwtAuthMiddleware(secret))
	{
		api.GET("/ws", websocket.ServeWS(hub))
		manager.NewHandler(mgr).Register(api)

		hh := history.NewHandler(recorder)
		api.GET("/sessions/:id/hands", hh.Hands)
		api.GET("/sessions/:id/summary", hh.Summary)
	}

	//-------------------------------------------------------
	// 4. 启动服务器，收到信号后依次关闭
	//-------------------------------------------------------
	srv := &http.Server{Addr: cfg.Server.Port, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
	mgr.Shutdown()
	hub.Close()
	stopHistory()
	<-histDone
	if n := recorder.Dropped(); n > 0 {
		logger.Warn("history events dropped", "count", n)
	}
	return nil
}
