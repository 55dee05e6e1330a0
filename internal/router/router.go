package router

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"hazardhunt/internal/config"
	"hazardhunt/internal/engine"
	"hazardhunt/internal/handlers"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(http.StatusTooManyRequests, "Too many requests. Try again later.")
}

// Setup wires the middleware stack and the API routes.
func Setup(log *zap.Logger, manager *engine.Manager) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	store := cookie.NewStore([]byte(config.Conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 30,
	})
	router.Use(sessions.Sessions("hazardhunt", store))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
	})

	// Handlers and routes
	gamesHandler := handlers.NewGamesHandler(log)
	playHandler := handlers.NewPlayHandler(log, manager)
	resultsHandler := handlers.NewResultsHandler(log)

	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: config.Conf.Limits.RequestsPerMinute,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	api := router.Group("/api")
	{
		games := api.Group("/games")
		{
			games.GET("", gamesHandler.List)
			games.POST("", limiter, gamesHandler.Create)
			games.GET("/:id", gamesHandler.Get)
			games.PUT("/:id", gamesHandler.Update)
			games.DELETE("/:id", gamesHandler.Delete)
			games.POST("/:id/duplicate", gamesHandler.Duplicate)

			games.POST("/:id/zones", gamesHandler.CreateZone)
			games.PATCH("/:id/zones/:zoneID", gamesHandler.UpdateZone)
			games.DELETE("/:id/zones/:zoneID", gamesHandler.DeleteZone)
			games.POST("/:id/zones/:zoneID/select", gamesHandler.SelectZone)
			games.POST("/:id/history/undo", gamesHandler.Undo)
			games.POST("/:id/history/redo", gamesHandler.Redo)

			games.GET("/:id/analytics", resultsHandler.Analytics)
			games.GET("/:id/analytics/chart", resultsHandler.ScoreChart)
			games.GET("/:id/export", resultsHandler.ExportCSV)
		}

		play := api.Group("/play")
		{
			play.POST("", limiter, playHandler.Start)
			play.GET("/:id", playHandler.State)
			play.POST("/:id/clicks", playHandler.Click)
			play.POST("/:id/end", playHandler.End)
		}

		api.GET("/sessions/:id", resultsHandler.GetResult)
	}

	return router
}
