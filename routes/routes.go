package routes

import (
	"net/http"
	"time"

	"shipflow/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterWizardRoutes sets up the endpoints for the booking wizard engine.
func RegisterWizardRoutes(r *gin.Engine, wh *handlers.WizardHandler) {
	wizard := r.Group("/api/wizard")
	{
		wizard.POST("/session", wh.StartSession)
		wizard.GET("/session/:sessionID", wh.Resume)
		wizard.POST("/session/:sessionID/advance", wh.Advance)
		wizard.POST("/session/:sessionID/retreat", wh.Retreat)
		wizard.GET("/session/:sessionID/quote", wh.Quote)
		wizard.POST("/session/:sessionID/settle", wh.Settle)
		wizard.DELETE("/session/:sessionID", wh.Abandon)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm ShipFlow"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, wh *handlers.WizardHandler) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterWizardRoutes(r, wh)
}
