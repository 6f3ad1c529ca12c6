package api

import (
	"github.com/gin-contrib/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wb-go/wbf/ginext"

	"eventverteiler/cmd/middleware"
	"eventverteiler/internal/service"
)

type Routers struct {
	Service service.Service
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())
	apiGroup := app.Group("/v1")

	apiGroup.POST("/events", r.Service.CreateEvent)
	apiGroup.GET("/events", r.Service.GetAllEvents)
	apiGroup.GET("/events/:id", r.Service.GetEvent)
	apiGroup.PUT("/events/:id", r.Service.UpdateEvent)
	apiGroup.DELETE("/events/:id", r.Service.DeleteEvent)

	apiGroup.POST("/events/:id/publish", r.Service.PublishEvent)
	apiGroup.GET("/events/:id/publications", r.Service.GetPublicationStatus)
	apiGroup.POST("/publications/verify", r.Service.VerifyPublications)

	apiGroup.GET("/platforms", r.Service.ListAvailablePlatforms)
	apiGroup.GET("/platforms/:name/config", r.Service.GetPlatformConfig)
	apiGroup.PUT("/platforms/:name/config", r.Service.UpsertPlatformConfig)
	apiGroup.POST("/platforms/:name/test", r.Service.TestPlatformConnection)

	apiGroup.POST("/csv/import", r.Service.ImportCSV)
	apiGroup.GET("/csv/export", r.Service.ExportCSV)
	apiGroup.GET("/csv/template", r.Service.CSVTemplate)

	apiGroup.GET("/oauth/:platform/authorize", r.Service.OAuthAuthorize)
	apiGroup.POST("/oauth/callback", r.Service.OAuthCallback)

	app.GET("/metrics", func(c *ginext.Context) {
		promhttp.Handler().ServeHTTP(c.Writer, c.Request)
	})

	return app
}
