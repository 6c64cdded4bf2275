package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	customerhandler "github.com/agizo/agizo-api/internal/domains/customers/adapters/http/handler"
	customerports "github.com/agizo/agizo-api/internal/domains/customers/ports"
	orderhandler "github.com/agizo/agizo-api/internal/domains/orders/adapters/http/handler"
	orderports "github.com/agizo/agizo-api/internal/domains/orders/ports"
)

// RouterDeps are the services exposed over HTTP.
type RouterDeps struct {
	ServiceName string
	Logger      *slog.Logger
	Customers   customerports.Service
	Orders      orderports.Service
	DB          Pinger
}

// NewRouter mounts the v1 API and the meta endpoints.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if deps.ServiceName != "" {
		router.Use(otelgin.Middleware(deps.ServiceName))
	}
	router.Use(RequestID())
	if deps.Logger != nil {
		router.Use(AccessLog(deps.Logger))
	}

	router.GET("/meta/health/", Health(deps.DB))

	v1 := router.Group("/api/v1")
	customerhandler.NewHandler(deps.Customers).Routes(v1)
	orderhandler.NewHandler(deps.Orders).Routes(v1)
	return router
}
