package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go-appointment-saas/config"
	"go-appointment-saas/internal/delivery/http/handler"
	"go-appointment-saas/internal/domain/gateway"
	"go-appointment-saas/internal/infrastructure/calendar"
	"go-appointment-saas/internal/infrastructure/database"
	"go-appointment-saas/internal/infrastructure/mail"
	"go-appointment-saas/internal/infrastructure/payment"
	"go-appointment-saas/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryTokens struct {
	mu     sync.Mutex
	tokens map[string]uuid.UUID
}

func (s *memoryTokens) Store(_ context.Context, kind gateway.TokenKind, userID uuid.UUID, tokenID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[string(kind)+":"+tokenID] = userID
	return nil
}

func (s *memoryTokens) Exists(_ context.Context, kind gateway.TokenKind, userID uuid.UUID, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.tokens[string(kind)+":"+tokenID]
	return ok && owner == userID, nil
}

func (s *memoryTokens) Revoke(_ context.Context, kind gateway.TokenKind, _ uuid.UUID, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, string(kind)+":"+tokenID)
	return nil
}

func (s *memoryTokens) RevokeAll(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, owner := range s.tokens {
		if owner == userID {
			delete(s.tokens, k)
		}
	}
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func (c apiClient) do(method, path, token string, body interface{}) (int, envelope) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	var env envelope
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func newTestAPI(t *testing.T, checks ...handler.ReadyCheck) apiClient {
	t.Helper()

	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	locker := service.NewLocalSlotLocker(log)
	t.Cleanup(locker.Stop)

	cfg := &config.Config{
		App:     config.AppConfig{Name: "appointments-test", MaxBodyBytes: 1 << 20, RequestTimeout: 5 * time.Second},
		JWT:     config.JWTConfig{Secret: "test-secret", AccessExpiry: 15 * time.Minute, RefreshExpiry: time.Hour},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
		Payment: config.PaymentConfig{Currency: "usd"},
		Booking: config.BookingConfig{SlotStep: 15 * time.Minute, WaitlistExpiryDays: 30, LockTTL: time.Second},
	}

	h := NewHandler(cfg, db, log, Infrastructure{
		Tokens:      &memoryTokens{tokens: map[string]uuid.UUID{}},
		Locker:      locker,
		Mailer:      mail.NewNoopMailer(log),
		Calendar:    calendar.NewNoopClient(),
		Payments:    payment.NewRouter(map[string]gateway.PaymentGateway{gateway.PaymentMethodCash: payment.NewManualGateway()}),
		ReadyChecks: checks,
	})
	return apiClient{t: t, handler: h}
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type tokenData struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID uuid.UUID `json:"id"`
	} `json:"user"`
}

func TestHealthAndReady(t *testing.T) {
	api := newTestAPI(t)
	code, env := api.do(http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, _ = api.do(http.MethodGet, "/api/v1/ready", "", nil)
	assert.Equal(t, http.StatusOK, code)

	failing := newTestAPI(t, handler.ReadyCheck{Name: "redis", Check: func(context.Context) error {
		return errors.New("connection refused")
	}})
	code, env = failing.do(http.MethodGet, "/api/v1/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "connection refused", decode[map[string]string](t, env.Error)["redis"])
}

func TestBookingOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(http.MethodPost, "/api/v1/tenants/register", "", map[string]string{
		"name":            "Sunrise Clinic",
		"slug":            "sunrise",
		"timezone":        "UTC",
		"contact_email":   "desk@sunrise.test",
		"admin_email":     "admin@sunrise.test",
		"admin_password":  "secret123",
		"admin_full_name": "Ada Admin",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = api.do(http.MethodPost, "/api/v1/tenants/register", "", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", env.Message)

	code, env = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"tenant_slug": "sunrise", "email": "admin@sunrise.test", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"tenant_slug": "sunrise", "email": "admin@sunrise.test", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	admin := decode[tokenData](t, env.Data)

	code, _ = api.do(http.MethodGet, "/api/v1/tenants/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = api.do(http.MethodPost, "/api/v1/services", admin.AccessToken, map[string]interface{}{
		"name": "Consultation", "duration_minutes": 30, "price": "50.00",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	serviceID := decode[struct {
		ID uuid.UUID `json:"id"`
	}](t, env.Data).ID

	code, env = api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"tenant_slug": "sunrise", "email": "Casey@Example.com", "password": "secret123", "full_name": "Casey Client",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	client := decode[tokenData](t, env.Data)

	code, _ = api.do(http.MethodPost, "/api/v1/services", client.AccessToken, map[string]interface{}{
		"name": "Sneaky", "duration_minutes": 30, "price": "1.00",
	})
	assert.Equal(t, http.StatusForbidden, code)

	day := time.Now().UTC().AddDate(0, 0, 7)
	start := time.Date(day.Year(), day.Month(), day.Day(), 10, 0, 0, 0, time.UTC)
	booking := map[string]interface{}{
		"provider_id": admin.User.ID,
		"service_id":  serviceID,
		"start_time":  start,
	}

	code, env = api.do(http.MethodPost, "/api/v1/appointments", client.AccessToken, booking)
	require.Equal(t, http.StatusCreated, code, env.Message)
	appointmentID := decode[struct {
		ID uuid.UUID `json:"id"`
	}](t, env.Data).ID

	code, env = api.do(http.MethodPost, "/api/v1/appointments", client.AccessToken, booking)
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)

	code, env = api.do(http.MethodGet, "/api/v1/appointments?limit=10", client.AccessToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Len(t, decode[[]json.RawMessage](t, env.Data), 1)

	code, _ = api.do(http.MethodGet, "/api/v1/appointments?status=LOST", client.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodGet, "/api/v1/appointments/not-a-uuid", client.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodGet, "/api/v1/appointments/"+uuid.NewString(), client.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = api.do(http.MethodPatch, "/api/v1/appointments/"+appointmentID.String()+"/status", admin.AccessToken,
		map[string]string{"status": "CONFIRMED"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = api.do(http.MethodGet, "/api/v1/audit-logs", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.NotEmpty(t, decode[[]json.RawMessage](t, env.Data))

	code, _ = api.do(http.MethodGet, "/api/v1/audit-logs", client.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = api.do(http.MethodGet, "/api/v1/notifications", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.NotEmpty(t, decode[[]json.RawMessage](t, env.Data))

	code, _ = api.do(http.MethodPost, "/api/v1/auth/logout", client.AccessToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, env = api.do(http.MethodGet, "/api/v1/auth/me", client.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.True(t, strings.Contains(env.Message, "revoked"))
}
