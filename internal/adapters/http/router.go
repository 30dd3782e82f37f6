package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tuanvu2703/Nemo-social-network/internal/adapters/signal"
	"github.com/tuanvu2703/Nemo-social-network/internal/app/orch"
	"github.com/tuanvu2703/Nemo-social-network/internal/config"
	"github.com/tuanvu2703/Nemo-social-network/internal/domain"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware gives each browser a stable token so several tabs
// of one user resolve to the same identity when no id is supplied.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func identityFrom(c *gin.Context) (domain.UserID, error) {
	raw := c.Query("id")
	if raw == "" {
		raw = c.GetString("client_token")
	}
	return domain.ParseUserID(raw)
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, ctl *signal.SignalWSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("NemoSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		ctl.HandleSignal(ctx, c)
	})

	// STUN/TURN servers for the browser's RTCPeerConnection.
	api.GET("/ice", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": cfg.WebRTCICEServers()})
	})

	api.GET("/calls", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"calls": o.Calls.List()})
	})

	api.GET("/calls/:id", func(c *gin.Context) {
		view, ok := o.Calls.Get(domain.CallID(c.Param("id")))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": domain.CodeSessionNotFound})
			return
		}
		c.JSON(http.StatusOK, view)
	})

	// Start a call outside the WS path.
	api.POST("/calls", func(c *gin.Context) {
		uid, err := identityFrom(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		var req struct {
			TargetUserIDs []string `json:"targetUserIds"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": domain.CodeBadPayload})
			return
		}
		targets := make([]domain.UserID, 0, len(req.TargetUserIDs))
		for _, raw := range req.TargetUserIDs {
			t, err := domain.ParseUserID(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": domain.CodeInvalidTargetSet})
				return
			}
			targets = append(targets, t)
		}
		view, events, err := o.StartCall(uid, targets)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": domain.CodeInvalidTargetSet})
			return
		}
		ctl.Deliver(events)
		c.JSON(http.StatusCreated, view)
	})

	api.DELETE("/calls/:id", func(c *gin.Context) {
		uid, err := identityFrom(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		events, err := o.End(uid, domain.CallID(c.Param("id")))
		switch {
		case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNotParticipant):
			c.JSON(http.StatusNotFound, gin.H{"error": domain.CodeSessionNotFound})
			return
		case err != nil:
			// Already terminal for this participant: nothing left to do.
			c.Status(http.StatusNoContent)
			return
		}
		ctl.Deliver(events)
		c.Status(http.StatusNoContent)
	})

	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"connections": o.Registry.ConnCount(),
			"users":       o.Registry.UserCount(),
			"calls":       o.Calls.Len(),
		})
	})

	return r
}
