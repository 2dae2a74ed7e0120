package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/middleware"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/modules/auth"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/modules/campaign"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/modules/landingpage"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/modules/media"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/modules/subscriber"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/modules/survey"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/modules/system"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/modules/track"
	pkgredis "github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/redis"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/response"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	cfg := a.cfg
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	landingHandler := landingpage.NewHandler(db, rc.Raw())
	campaignHandler := campaign.NewHandler(db, cfg, a.mailer, a.tasks)
	subscriberHandler := subscriber.NewHandler(db, cfg, a.mailer)
	surveyHandler := survey.NewHandler(db)
	trackHandler := track.NewHandler(db, cfg, rc)
	mediaHandler := media.NewHandler(cfg, a.uploader)

	// Published landing pages are served at the root and cached briefly;
	// tracking endpoints must never be cached.
	pages := r.Group("")
	pages.Use(middleware.PageCache(rc.Raw(), middleware.PageCacheOptions{
		TTL:     15 * time.Second,
		Disable: !cfg.IsProduction(),
	}))
	landingHandler.RegisterPublicRoutes(pages)

	root := r.Group("")
	trackHandler.RegisterPublicRoutes(root)
	mediaHandler.RegisterPublicRoutes(root)

	// Versioned API
	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth(db))

	appInfo := gin.H{
		"name":    "mail-marketing-app",
		"version": "1.0.0",
	}
	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		up := a.uptime()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": up.Milliseconds(),
			"humanize":  humanizeDuration(up),
		})
	})
	api.GET("/clean_cache", authMW, func(c *gin.Context) {
		deleted, err := middleware.PurgePageCache(c.Request.Context(), rc.Raw())
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, gin.H{"deleted": deleted})
	})

	auth.NewHandler(auth.NewService(db)).RegisterRoutes(api, authMW)
	landingHandler.RegisterRoutes(api, authMW)
	campaignHandler.RegisterRoutes(api, authMW)
	subscriberHandler.RegisterRoutes(api, authMW)
	surveyHandler.RegisterRoutes(api, authMW)
	mediaHandler.RegisterRoutes(api, authMW)
	system.NewHandler(a.sched, a.tasks).RegisterRoutes(api, authMW)
}
