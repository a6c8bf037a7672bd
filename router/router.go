package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-queue/controllers"
	"github.com/yeremiapane/cafe-queue/kds"
	"github.com/yeremiapane/cafe-queue/middlewares"
	"github.com/yeremiapane/cafe-queue/services"
)

// Deps carries everything the HTTP layer needs. LoginLimiter may be nil, in
// which case /auth/login is not rate limited.
type Deps struct {
	Auth         *services.AuthService
	Catalog      *services.CatalogService
	Composer     *services.OrderComposer
	Queue        *services.OrderQueue
	Hub          *kds.Hub
	LoginLimiter *middlewares.RateLimiter
	CORSOrigin   string
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	authCtrl := controllers.NewAuthController(d.Auth)
	menuCtrl := controllers.NewMenuController(d.Catalog)
	orderCtrl := controllers.NewOrderController(d.Composer, d.Queue)
	kdsCtrl := controllers.NewKDSController(d.Hub, d.CORSOrigin)

	requireSession := middlewares.AuthMiddleware(d.Auth)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/anonymous", authCtrl.SignInAnonymously)
		if d.LoginLimiter != nil {
			authGroup.POST("/login", d.LoginLimiter.RateLimit(), authCtrl.SignIn)
		} else {
			authGroup.POST("/login", authCtrl.SignIn)
		}
		authGroup.POST("/logout", requireSession, authCtrl.SignOut)
		authGroup.GET("/session", requireSession, authCtrl.GetSession)
	}

	menu := r.Group("/menu")
	{
		menu.GET("/items", menuCtrl.GetMenuItems)
		menu.GET("/milk-options", menuCtrl.GetMilkOptions)
		menu.GET("/customizations", menuCtrl.GetCustomizationOptions)
	}

	orders := r.Group("/orders")
	{
		orders.POST("", requireSession, orderCtrl.CreateOrder)
		orders.GET("/:order_id", orderCtrl.GetOrderByID)
		orders.GET("/:order_id/ahead", orderCtrl.GetOrdersAhead)
		orders.POST("/:order_id/cancel", requireSession, orderCtrl.CancelOrder)
	}

	// ----------------------------------------------------------------
	//                      BARISTA ROUTES
	// ----------------------------------------------------------------
	barista := r.Group("/barista")
	barista.Use(requireSession, middlewares.RequireBarista())
	{
		barista.GET("/orders", orderCtrl.GetAllOrders)
		barista.GET("/queue", orderCtrl.GetQueue)
		barista.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)

		barista.PATCH("/items/:id/availability", menuCtrl.UpdateItemAvailability)
		barista.PATCH("/milk-options/:id/availability", menuCtrl.UpdateMilkAvailability)
		barista.PATCH("/customizations/:id/availability", menuCtrl.UpdateCustomizationAvailability)
	}

	// Endpoint KDS WebSocket, token via query string
	r.GET("/ws", requireSession, middlewares.RequireBarista(), kdsCtrl.Handler)

	return r
}
