package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// NewRouter builds the gin engine with all API routes and middleware
func NewRouter(handlers *Handlers, environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(requestMetrics())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/games", handlers.CreateGame)
		apiGroup.GET("/games", handlers.ListGames)
		apiGroup.GET("/games/:id", handlers.GetGame)
		apiGroup.POST("/games/:id/join", handlers.JoinGame)
		apiGroup.POST("/games/:id/complete", handlers.CompleteGame)
		apiGroup.POST("/games/:id/cancel", handlers.CancelGame)
		apiGroup.GET("/games/:id/transactions", handlers.GetGameTransactions)
		apiGroup.GET("/users/:wallet", handlers.GetUser)
		apiGroup.GET("/network-fee", handlers.GetNetworkFee)
	}

	return router
}

// requestLogger logs each request with method, path, status and latency
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("Request handled")
	}
}
