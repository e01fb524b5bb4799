package auth

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 24 * time.Hour

type LoginRequest struct {
	Operator string `json:"operator" binding:"required"`
	Key      string `json:"key" binding:"required"`
}

type Handler struct {
	secret      []byte
	operatorKey string
	ttl         time.Duration
	now         func() time.Time
}

// 工厂方法：创建 handler
func NewHandler(secret []byte, operatorKey string, ttl time.Duration) *Handler {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Handler{
		secret:      secret,
		operatorKey: operatorKey,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Issue 签发操作员 token
func (h *Handler) Issue(operator string) (string, error) {
	now := h.now()
	claims := jwt.MapClaims{
		"sub": operator,
		"iat": now.Unix(),
		"exp": now.Add(h.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.secret)
}

// POST /auth/token  body: {operator, key}
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	// 未配置操作员密钥时拒绝所有登录
	if h.operatorKey == "" || subtle.ConstantTimeCompare([]byte(req.Key), []byte(h.operatorKey)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid operator key"})
		return
	}

	jwtStr, err := h.Issue(req.Operator)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jwt":       jwtStr,
		"expiresIn": int(h.ttl.Seconds()),
	})
}
