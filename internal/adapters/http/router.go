package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Clubs/internal/adapters/rtc"
	"github.com/dkeye/Clubs/internal/adapters/signal"
	"github.com/dkeye/Clubs/internal/app/orch"
	"github.com/dkeye/Clubs/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	sessionName    = "ClubsSessions"
	clientTokenKey = "client_token"
	userIDKey      = "user_id"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

// SessionUserMiddleware exposes the user id stored in the cookie session.
func SessionUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid, ok := sessions.Default(c).Get(userIDKey).(string); ok {
			c.Set(userIDKey, uid)
		}
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) (*gin.Engine, error) {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	rtcCfg, err := rtc.Configuration(cfg.ICEServers)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())
	r.Use(SessionUserMiddleware())

	h := &Handlers{Orch: o, RTC: rtcCfg, HistoryLimit: cfg.HistoryLimit}
	ctrl := signal.NewSignalWSController(o, cfg)

	r.GET(cfg.SignalPath, func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString(clientTokenKey)).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})
	r.GET("/healthz", h.Health)

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	api := r.Group("/api")
	api.GET("/rooms", h.ListRooms)
	api.GET("/clubs/:id/messages", h.ListMessages)
	api.POST("/clubs/:id/messages", h.PostMessage)
	api.GET("/rtc/config", h.RTCConfig)
	api.GET("/session", h.GetSession)
	api.POST("/session", h.SetSession)

	log.Info().
		Str("module", "adapters.http").
		Str("static", cfg.StaticPath).
		Str("signal_path", cfg.SignalPath).
		Msg("router setup")
	return r, nil
}
