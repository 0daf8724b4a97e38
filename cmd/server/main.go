package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"social-api/internal/auth"
	"social-api/internal/config"
	apphttp "social-api/internal/http"
	"social-api/internal/repository/sqlite"
	"social-api/internal/scheduler"
	"social-api/internal/service"
	"social-api/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	followRepo := sqlite.NewFollowRepository(db)
	postRepo := sqlite.NewPostRepository(db)
	commentRepo := sqlite.NewCommentRepository(db)
	likeRepo := sqlite.NewLikeRepository(db)
	scheduledRepo := sqlite.NewScheduledPostRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := followRepo.Init(ctx); err != nil {
		logger.Fatalf("init follow repository: %v", err)
	}
	if err := postRepo.Init(ctx); err != nil {
		logger.Fatalf("init post repository: %v", err)
	}
	if err := commentRepo.Init(ctx); err != nil {
		logger.Fatalf("init comment repository: %v", err)
	}
	if err := likeRepo.Init(ctx); err != nil {
		logger.Fatalf("init like repository: %v", err)
	}
	if err := scheduledRepo.Init(ctx); err != nil {
		logger.Fatalf("init scheduled post repository: %v", err)
	}

	userService := service.NewUserService(userRepo)
	followService := service.NewFollowService(userRepo, followRepo)
	postService := service.NewPostService(postRepo, userRepo, likeRepo, commentRepo)
	commentService := service.NewCommentService(commentRepo, postRepo)
	scheduledService := service.NewScheduledPostService(scheduledRepo)

	blacklist := buildBlacklist(ctx, cfg, logger)
	tokens := auth.NewManager(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLHours)*time.Hour,
		blacklist,
	)

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	manager := scheduler.NewManager(scheduler.Config{
		MaxConcurrent: cfg.Scheduler.MaxConcurrent,
		Logger:        logger,
	}, scheduledService, postService)

	if err := manager.Start(ctx); err != nil {
		logger.Fatalf("start scheduler: %v", err)
	}
	if err := manager.Resume(ctx); err != nil {
		logger.Warnf("resume scheduled posts: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(apphttp.HandlerConfig{
		Users:     userService,
		Follows:   followService,
		Posts:     postService,
		Comments:  commentService,
		Scheduled: scheduledService,
		Manager:   manager,
		Tokens:    tokens,
		Storage:   storageSvc,
		Bucket:    cfg.Storage.Bucket,
		KeyPrefix: cfg.Storage.KeyPrefix,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	manager.Shutdown()

	logger.Info("bye")
}

func buildBlacklist(ctx context.Context, cfg config.Config, logger *logrus.Logger) auth.Blacklist {
	if cfg.Redis.Addr == "" {
		logger.Warn("redis addr not configured, using in-memory token blacklist")
		return auth.NewMemoryBlacklist()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatalf("connect redis: %v", err)
	}
	logger.Infof("using redis token blacklist at %s", cfg.Redis.Addr)
	return auth.NewRedisBlacklist(rdb)
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Warn("storage bucket not configured, media uploads disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, cfg.Storage.Bucket), nil
}
