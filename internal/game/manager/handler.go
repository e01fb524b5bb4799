package manager

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"BlackjackAdvisor/internal/game/engine"

	"github.com/gin-gonic/gin"
)

const commandTimeout = 2 * time.Second

type Handler struct {
	mgr *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{mgr: mgr}
}

// CreateRequest 只覆盖传入的字段，其余使用服务端默认配置
type CreateRequest struct {
	SessionID                  string   `json:"sessionId"`
	DeckCount                  *int     `json:"deckCount"`
	PenetrationLimit           *float64 `json:"penetrationLimit"`
	InactivityThresholdSeconds *float64 `json:"inactivityThresholdSeconds"`
	MinCardsBeforeReset        *int     `json:"minCardsBeforeReset"`
	StabilityFrames            *int     `json:"stabilityFrames"`
	HistorySize                *int     `json:"historySize"`
	EmptyFramesThreshold       *int     `json:"emptyFramesThreshold"`
	DecisionDebounceMs         *int     `json:"decisionDebounceMs"`
	Rules                      *string  `json:"rules"`
	Deviations                 *bool    `json:"deviationsEnabled"`
	AutoReset                  *bool    `json:"autoReset"`
	MinBet                     *float64 `json:"minBet"`
	MaxBet                     *float64 `json:"maxBet"`
	KellyFraction              *float64 `json:"kellyFraction"`
	Bankroll                   *float64 `json:"bankroll"`
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (r CreateRequest) apply(o engine.Options) engine.Options {
	o.SessionID = r.SessionID
	set(&o.DeckCount, r.DeckCount)
	set(&o.PenetrationLimit, r.PenetrationLimit)
	if r.InactivityThresholdSeconds != nil {
		o.InactivityThreshold = time.Duration(*r.InactivityThresholdSeconds * float64(time.Second))
	}
	set(&o.MinCardsBeforeReset, r.MinCardsBeforeReset)
	set(&o.StabilityFrames, r.StabilityFrames)
	set(&o.HistorySize, r.HistorySize)
	set(&o.EmptyFramesThreshold, r.EmptyFramesThreshold)
	if r.DecisionDebounceMs != nil {
		o.DecisionDebounce = time.Duration(*r.DecisionDebounceMs) * time.Millisecond
	}
	set(&o.Rules, r.Rules)
	set(&o.Deviations, r.Deviations)
	set(&o.AutoReset, r.AutoReset)
	set(&o.Betting.MinBet, r.MinBet)
	set(&o.Betting.MaxBet, r.MaxBet)
	set(&o.Betting.KellyFraction, r.KellyFraction)
	set(&o.Bankroll, r.Bankroll)
	return o
}

func writeError(c *gin.Context, err error) {
	var cfgErr *engine.ConfigError
	code := http.StatusInternalServerError
	switch {
	case errors.As(err, &cfgErr), errors.Is(err, engine.ErrUnknownCommand):
		code = http.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrSessionExists), errors.Is(err, engine.ErrStaleDecision):
		code = http.StatusConflict
	case errors.Is(err, engine.ErrEngineStopped):
		code = http.StatusGone
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// POST /sessions  body 可为空
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.mgr.Create(req.apply(h.mgr.Defaults()))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"sessionId": id})
}

// GET /sessions
func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.mgr.Sessions()})
}

// POST /sessions/:id/frames  body: {detections:[{cardId,confidence,boundingBox,timestampNanos}], at}
func (h *Handler) Frame(c *gin.Context) {
	var f engine.Frame
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.mgr.SubmitFrame(c.Request.Context(), c.Param("id"), f); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"ok": true})
}

// POST /sessions/:id/commands/:command
func (h *Handler) Command(c *gin.Context) {
	id, name := c.Param("id"), c.Param("command")
	if name == "status" {
		h.Status(c)
		return
	}
	kind, err := engine.ParseCommand(name)
	if err != nil {
		writeError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), commandTimeout)
	defer cancel()
	if err := h.mgr.Command(ctx, id, kind); err != nil {
		writeError(c, err)
		return
	}
	snap, _ := h.mgr.Status(id)
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": snap})
}

// GET /sessions/:id/status
func (h *Handler) Status(c *gin.Context) {
	snap, err := h.mgr.Status(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// DELETE /sessions/:id
func (h *Handler) Delete(c *gin.Context) {
	if err := h.mgr.Close(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Register 挂载会话路由
func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/sessions", h.Create)
	r.GET("/sessions", h.List)
	r.POST("/sessions/:id/frames", h.Frame)
	r.POST("/sessions/:id/commands/:command", h.Command)
	r.GET("/sessions/:id/status", h.Status)
	r.DELETE("/sessions/:id", h.Delete)
}
