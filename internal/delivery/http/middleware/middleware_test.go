package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go-appointment-saas/config"
	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/gateway"
	"go-appointment-saas/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryTokens struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func (s *memoryTokens) key(kind gateway.TokenKind, userID uuid.UUID, tokenID string) string {
	return string(kind) + ":" + userID.String() + ":" + tokenID
}

func (s *memoryTokens) Store(_ context.Context, kind gateway.TokenKind, userID uuid.UUID, tokenID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[s.key(kind, userID, tokenID)] = true
	return nil
}

func (s *memoryTokens) Exists(_ context.Context, kind gateway.TokenKind, userID uuid.UUID, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[s.key(kind, userID, tokenID)], nil
}

func (s *memoryTokens) Revoke(_ context.Context, kind gateway.TokenKind, userID uuid.UUID, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, s.key(kind, userID, tokenID))
	return nil
}

func (s *memoryTokens) RevokeAll(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.tokens {
		if strings.Contains(k, userID.String()) {
			delete(s.tokens, k)
		}
	}
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestAuthenticate(t *testing.T) {
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	tokens := &memoryTokens{tokens: map[string]bool{}}
	m := NewAuthMiddleware(jwtService, tokens, quietLogger())

	sub := jwt.Subject{UserID: uuid.New(), TenantID: uuid.New(), RoleID: entity.RoleIDProvider, Email: "doc@example.com"}
	access, accessID, err := jwtService.GenerateAccessToken(sub)
	require.NoError(t, err)
	refresh, _, err := jwtService.GenerateRefreshToken(sub)
	require.NoError(t, err)

	var seen Principal
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusUnauthorized, call("Token "+access))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer not-a-jwt"))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+refresh), "refresh tokens are not accepted")
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+access), "token not in the store")

	require.NoError(t, tokens.Store(t.Context(), gateway.TokenKindAccess, sub.UserID, accessID, time.Minute))
	assert.Equal(t, http.StatusNoContent, call("Bearer "+access))
	assert.Equal(t, sub.UserID, seen.UserID)
	assert.Equal(t, sub.TenantID, seen.TenantID)
	assert.Equal(t, entity.RoleIDProvider, seen.RoleID)
	assert.Equal(t, accessID, seen.TokenID)

	require.NoError(t, tokens.RevokeAll(t.Context(), sub.UserID))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+access))
}

func TestRequireRole(t *testing.T) {
	call := func(h http.Handler, roleID int, anonymous bool) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if !anonymous {
			req = req.WithContext(WithPrincipal(req.Context(), Principal{UserID: uuid.New(), TenantID: uuid.New(), RoleID: roleID}))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call(RequireAdmin(okHandler), entity.RoleIDAdmin, false))
	assert.Equal(t, http.StatusForbidden, call(RequireAdmin(okHandler), entity.RoleIDProvider, false))
	assert.Equal(t, http.StatusNoContent, call(RequireStaff(okHandler), entity.RoleIDProvider, false))
	assert.Equal(t, http.StatusForbidden, call(RequireStaff(okHandler), entity.RoleIDClient, false))
	assert.Equal(t, http.StatusUnauthorized, call(RequireStaff(okHandler), 0, true))
}

func TestRequestID(t *testing.T) {
	var fromCtx string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetRequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-42", fromCtx)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
	assert.Equal(t, rec.Header().Get(RequestIDHeader), fromCtx)
}

func TestRecover(t *testing.T) {
	h := Recover(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBodyLimit(t *testing.T) {
	var readErr error
	h := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	assert.NoError(t, readErr)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too large")))
	var maxErr *http.MaxBytesError
	assert.ErrorAs(t, readErr, &maxErr)
}

func TestTimeout(t *testing.T) {
	var deadline bool
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, deadline = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, deadline)

	h = Timeout(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, deadline = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, deadline)
}

func TestCORS(t *testing.T) {
	m := NewCORSMiddleware([]string{"https://app.example.com/"})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	m.Handle(okHandler).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	m.Handle(okHandler).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

type scriptedLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *scriptedLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.err
}

func TestRateLimit(t *testing.T) {
	call := func(m *RateLimitMiddleware) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		m.Limit("login")(okHandler).ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call(NewRateLimitMiddleware(nil, quietLogger())))

	denied := &scriptedLimiter{}
	assert.Equal(t, http.StatusTooManyRequests, call(NewRateLimitMiddleware(denied, quietLogger())))
	assert.Equal(t, []string{"login:203.0.113.7"}, denied.keys)

	broken := &scriptedLimiter{err: errors.New("redis down")}
	assert.Equal(t, http.StatusNoContent, call(NewRateLimitMiddleware(broken, quietLogger())), "fails open")
}
