package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"game-rental-backend/config"
	"game-rental-backend/internal/mw"
	"game-rental-backend/internal/rental"
	"game-rental-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, engine *rental.Engine, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, engine, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	requireUser := mw.RequireUser(cfg.Auth)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/games", caching, handler.GetGames)
		api.POST("/games", handler.CreateGame)
		api.GET("/games/qr/:code", handler.GetGameByQR)

		api.GET("/rentals/active", handler.GetActiveRentals)
		api.POST("/rentals", requireUser, handler.CreateRental)
		api.POST("/rentals/:id/stop", handler.StopRental)
		api.POST("/rentals/:id/pause", handler.PauseRental)
		api.POST("/rentals/:id/resume", handler.ResumeRental)

		api.GET("/branches", caching, handler.GetBranches)
		api.POST("/branches", handler.CreateBranch)

		api.POST("/users", handler.CreateUser)

		api.GET("/analytics/revenue", handler.GetRevenueByGame)
		api.GET("/analytics/revenue/daily", handler.GetDailyRevenue)
		api.GET("/analytics/revenue/weekly", handler.GetWeeklyRevenue)
		api.GET("/analytics/revenue/monthly", handler.GetMonthlyRevenue)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
