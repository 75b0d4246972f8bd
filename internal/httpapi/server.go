// Package httpapi exposes the dispatcher over the HTTP wire protocol from
// spec.md §6: a gin.Engine assembled the way the teacher's
// cmd/zmux-server/main.go builds its router (Recovery → security headers →
// CORS (dev) → request id → Zap access log → routes), with
// x-api-key auth resolving a dispatcher.Principal per request.
package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edirooss/leaderboard/internal/dispatcher"
	"github.com/edirooss/leaderboard/internal/httpapi/middleware"
	"github.com/edirooss/leaderboard/internal/registry"
)

// NewEngine assembles the Gin engine serving the leaderboard wire
// protocol against d, authenticating requests against reg.
func NewEngine(d *dispatcher.Dispatcher, reg *registry.Registry, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(secure.New(secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		IsDevelopment:      os.Getenv("ENV") == "dev",
	}))

	if os.Getenv("ENV") == "dev" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"POST", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "x-api-key"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.ZapLogger(log.Named("http")))

	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })

	api := r.Group("/", middleware.APIKeyAuth(reg))
	api.POST("/update", handleUpdate(d))
	api.POST("/remove", handleRemove(d))
	api.POST("/get", handleGet(d))
	api.POST("/info", handleInfo(d))
	api.POST("/board", handleBoard(d))
	api.POST("/atrank", handleAtRank(d))
	api.POST("/top", handleTop(d))
	api.POST("/bottom", handleBottom(d))
	api.POST("/after", handleAfter(d))
	api.POST("/before", handleBefore(d))
	api.POST("/around", handleAround(d))
	api.POST("/range", handleRange(d))
	api.POST("/batch", handleBatch(d))

	return r
}

// NewServer wraps an *http.Server around engine, matching the timeout and
// header-size settings cmd/zmux-server/main.go uses.
func NewServer(addr string, engine *gin.Engine, log *zap.Logger) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        engine,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 15,
		ErrorLog:       zap.NewStdLog(log.Named("http").WithOptions(zap.AddCallerSkip(1))),
	}
}
