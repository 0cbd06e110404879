package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dkeye/Clubs/internal/app/orch"
	"github.com/dkeye/Clubs/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

const maxHistory = 200

type Handlers struct {
	Orch         *orch.Orchestrator
	RTC          webrtc.Configuration
	HistoryLimit int
}

type PostMessageRequest struct {
	Content     string             `json:"content"`
	UserID      string             `json:"userId"`
	MessageType domain.MessageType `json:"messageType"`
}

type SessionRequest struct {
	UserID string `json:"userId"`
}

type SessionResponse struct {
	UserID      string `json:"userId,omitempty"`
	ClientToken string `json:"clientToken"`
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": h.Orch.Registry.Count()})
}

func (h *Handlers) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.Orch.Rooms()})
}

func (h *Handlers) ListMessages(c *gin.Context) {
	limit := h.HistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	if limit > maxHistory {
		limit = maxHistory
	}

	msgs, err := h.Orch.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *Handlers) PostMessage(c *gin.Context) {
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if req.UserID == "" {
		req.UserID = c.GetString(userIDKey)
	}
	if req.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user required"})
		return
	}

	view, err := h.Orch.PostMessage(c.Request.Context(), domain.ChatDraft{
		ClubID:      c.Param("id"),
		SenderID:    req.UserID,
		Content:     req.Content,
		MessageType: req.MessageType,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// RTCConfig is the RTCConfiguration subset browsers need.
func (h *Handlers) RTCConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"iceServers": h.RTC.ICEServers})
}

func (h *Handlers) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, SessionResponse{
		UserID:      c.GetString(userIDKey),
		ClientToken: c.GetString(clientTokenKey),
	})
}

// SetSession stores the user id that later websocket connections of this
// browser are attributed to.
func (h *Handlers) SetSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := domain.ValidateUserID(req.UserID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := sessions.Default(c)
	s.Set(userIDKey, req.UserID)
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session save failed"})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{UserID: req.UserID, ClientToken: c.GetString(clientTokenKey)})
}

func (h *Handlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrContentTooLong),
		errors.Is(err, domain.ErrUnknownMessageType),
		errors.Is(err, domain.ErrEmptyKey),
		errors.Is(err, domain.ErrKeyTooLong),
		errors.Is(err, domain.ErrUserIDEmpty),
		errors.Is(err, domain.ErrUserIDTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
