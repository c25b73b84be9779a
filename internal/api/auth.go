package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type sessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	tokens map[string]time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{ttl: ttl, now: time.Now, tokens: make(map[string]time.Time)}
}

func (s *sessionStore) issue() string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for t, exp := range s.tokens {
		if now.After(exp) {
			delete(s.tokens, t)
		}
	}
	s.tokens[token] = now.Add(s.ttl)
	return token
}

func (s *sessionStore) valid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.tokens[token]
	return ok && s.now().Before(exp)
}

func (s *sessionStore) revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func (h *Handler) checkCredentials(user, password string) bool {
	// an unset password disables the admin login
	if h.Admin.Password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(h.Admin.User)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.Admin.Password)) == 1
	return userOK && passOK
}

// requireAdmin guards admin routes when token checks are enabled.
func (h *Handler) requireAdmin(c *gin.Context) {
	if !h.Admin.RequireToken {
		c.Next()
		return
	}
	if !h.sessions.valid(bearerToken(c)) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "ACCESS DENIED"})
		return
	}
	c.Next()
}

type loginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// Login POST /api/admin/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ACCESS DENIED"})
		return
	}
	if !h.checkCredentials(req.User, req.Password) {
		logger.Warnf("admin login denied for user %q", req.User)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "ACCESS DENIED"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "ACCESS GRANTED", "token": h.sessions.issue()})
}

// Logout POST /api/admin/logout
func (h *Handler) Logout(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		h.sessions.revoke(token)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "LOGGED OUT"})
}
