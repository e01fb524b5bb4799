package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"BlackjackAdvisor/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JwtAuthMiddleware(secret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("operator"))
	})
	return r
}

func sign(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestJwtAuthMiddleware(t *testing.T) {
	valid, err := auth.NewHandler(secret, "k", time.Hour).Issue("pit-1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		code   int
	}{
		{"bearer", "Bearer " + valid, "", http.StatusOK},
		{"query token", "", "?token=" + valid, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"not bearer", "Token " + valid, "", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + sign(t, []byte("other"), jwt.MapClaims{"sub": "x", "exp": time.Now().Add(time.Hour).Unix()}), "", http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Hour).Unix()}), "", http.StatusUnauthorized},
		{"no exp", "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "x"}), "", http.StatusUnauthorized},
		{"no subject", "Bearer " + sign(t, secret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}), "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router().ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, "pit-1", w.Body.String())
			}
		})
	}
}
