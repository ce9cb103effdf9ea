package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/cafe-venue/controllers"
	"github.com/yeremiapane/cafe-venue/middlewares"
)

// SetupPageRouter -> client page plus read-only JSON views
func SetupPageRouter(page *controllers.PageController, venueCtrl *controllers.VenueController, corsOrigin string, rateLimit int) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(corsOrigin))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(rateLimit).RateLimit())

	r.GET("/", page.ServeIndex)
	r.GET("/index.html", page.ServeIndex)

	api := r.Group("/api")
	api.GET("/seats", venueCtrl.GetSeats)
	api.GET("/menu", venueCtrl.GetMenu)

	r.GET("/healthz", venueCtrl.Health)
	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not Found")
	})
	return r
}

// SetupSocketRouter -> the websocket endpoint, served on its own port
func SetupSocketRouter(socketCtrl *controllers.SocketController) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())

	r.GET("/", socketCtrl.ServeSocket)
	r.GET("/ws", socketCtrl.ServeSocket)
	return r
}
