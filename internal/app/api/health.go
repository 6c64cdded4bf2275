package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// Health reports database reachability. A nil db means in-memory adapters are in use.
func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, healthResponse{Status: "healthy", Detail: "in-memory storage"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Detail: "database connection failed"})
			return
		}
		c.JSON(http.StatusOK, healthResponse{Status: "healthy", Detail: "database reachable"})
	}
}
