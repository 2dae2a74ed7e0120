package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/config"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/database"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/middleware"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/modules/campaign"
	pkgcron "github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/cron"
	mailpkg "github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/mail"
	pkgredis "github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/redis"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/storage"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/taskqueue"
)

// App holds all application dependencies.
type App struct {
	cfg      *config.AppConfig
	router   *gin.Engine
	db       *gorm.DB
	logger   *zap.Logger
	cancel   context.CancelFunc
	sched    *pkgcron.Scheduler
	tasks    *taskqueue.Service
	mailer   *mailpkg.Sender
	uploader *storage.Uploader
}

// New initializes the application: config → DB → Redis → worker → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg, logger); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.Redis.URLValue())
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "x-cache"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && cfg.IsProduction() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	mailer := mailpkg.New(mailpkg.BuildMailConfig(cfg))
	tasks := taskqueue.NewService(rc)

	var uploader *storage.Uploader
	if cfg.S3.Enable {
		uploader, err = storage.NewUploader(cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	worker := campaign.NewWorker(db, cfg, mailer, tasks, logger.Named("CampaignWorker"))
	go worker.Run(ctx)

	sched := pkgcron.New()
	registerCronJobs(sched, db, worker, tasks, logger)
	go sched.Start(ctx)

	app := &App{
		cfg:      cfg,
		router:   router,
		db:       db,
		logger:   logger,
		cancel:   cancel,
		sched:    sched,
		tasks:    tasks,
		mailer:   mailer,
		uploader: uploader,
	}
	app.registerRoutes(rc)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown cleans up background goroutines.
func (a *App) Shutdown() { a.cancel() }

func (a *App) uptime() time.Duration {
	return time.Since(processStart)
}

var processStart = time.Now()
