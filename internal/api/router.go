package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"comandero/internal/api/handlers"
	"comandero/internal/api/middleware"
)

// NewRouter wires the operational surface. The print operations trust the
// configured credentials of whoever reached the tunnel; only the settings
// screen is gated behind the admin password.
func NewRouter(auth *middleware.AuthMiddleware, printH *handlers.PrintHandler, settingsH *handlers.SettingsHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/setup", auth.SetupHandler)
		authGroup.POST("/login", auth.LoginHandler)
		authGroup.POST("/logout", auth.LogoutHandler)
		authGroup.GET("/status", auth.StatusHandler)
	}

	printGroup := router.Group("/api/print")
	{
		printGroup.POST("/test", printH.TestPrint)
		printGroup.GET("/connectivity", printH.CheckConnectivity)
		printGroup.POST("/reprint/:id", printH.Reprint)
		printGroup.POST("/report", printH.DailyReport)
		printGroup.GET("/status", printH.Status)
	}

	settingsGroup := router.Group("/api/settings", auth.RequireAuth())
	{
		settingsGroup.GET("/printer", settingsH.GetPrinter)
		settingsGroup.PUT("/printer", settingsH.UpdatePrinter)
	}

	return router
}
