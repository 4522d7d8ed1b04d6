package common

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"fedforum/internal/pkg/config"
	"fedforum/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handler serves the instance-level endpoints: liveness and nodeinfo
// discovery for peers probing this server.
type Handler struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewHandler(db *gorm.DB, rdb *redis.Client) *Handler {
	return &Handler{db: db, rdb: rdb}
}

// Health pings the backing stores.
func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	var down []string
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		down = append(down, "database")
	}
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		down = append(down, "redis")
	}

	if len(down) > 0 {
		response.Error(c, http.StatusServiceUnavailable, response.ErrServerInternal,
			"unreachable: "+strings.Join(down, ", "))
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}

// WellKnownNodeInfo serves the discovery document pointing at the
// nodeinfo endpoint, as federating peers expect.
func (h *Handler) WellKnownNodeInfo(c *gin.Context) {
	domain := config.GlobalConfig.Federation.Domain
	c.JSON(http.StatusOK, gin.H{
		"links": []gin.H{
			{
				"rel":  "http://nodeinfo.diaspora.software/ns/schema/2.0",
				"href": fmt.Sprintf("https://%s/nodeinfo/2.0.json", domain),
			},
		},
	})
}

// NodeInfo describes this instance to crawling peers.
func (h *Handler) NodeInfo(c *gin.Context) {
	app := config.GlobalConfig.App
	c.JSON(http.StatusOK, gin.H{
		"version": "2.0",
		"software": gin.H{
			"name":    app.Name,
			"version": app.Version,
		},
		"protocols":         []string{"activitypub"},
		"openRegistrations": false,
		"usage":             gin.H{"users": gin.H{}},
		"metadata": gin.H{
			"generatedAt": time.Now().UTC().Format(time.RFC3339),
		},
	})
}
