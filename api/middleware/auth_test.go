package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/dzorders-backend/pkg/auth"
	"github.com/angelmondragon/dzorders-backend/pkg/config"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	"github.com/google/uuid"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestOperatorAuthPassesThroughWhenDisabled(t *testing.T) {
	handler := OperatorAuth(config.JWTConfig{}, nil)(okHandler())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOperatorAuthRejectsMissingToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	handler := OperatorAuth(cfg, nil)(okHandler())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOperatorAuthRejectsInvalidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	handler := OperatorAuth(cfg, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOperatorAuthAllowsValidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
	staffID := uuid.New()
	token, err := auth.MintOperatorToken(cfg, time.Now(), auth.OperatorTokenPayload{
		Operator: "amina",
		StaffID:  &staffID,
		Role:     enums.OperatorRoleAgent,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var captured struct {
		operator string
		role     enums.OperatorRole
		staff    *uuid.UUID
	}
	handler := OperatorAuth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.operator = OperatorFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		captured.staff = StaffIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.operator != "amina" {
		t.Fatalf("expected operator amina got %q", captured.operator)
	}
	if captured.role != enums.OperatorRoleAgent {
		t.Fatalf("expected agent role got %s", captured.role)
	}
	if captured.staff == nil || *captured.staff != staffID {
		t.Fatalf("expected staff %s got %v", staffID, captured.staff)
	}
}

func TestRequireRole(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer"}
	handler := RequireRole(cfg, nil, enums.OperatorRoleAdmin)(okHandler())

	agent := httptest.NewRequest(http.MethodGet, "/", nil)
	agent = agent.WithContext(WithOperator(agent.Context(), "amina", enums.OperatorRoleAgent, nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, agent)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/", nil)
	admin = admin.WithContext(WithOperator(admin.Context(), "root", enums.OperatorRoleAdmin, nil))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	open := RequireRole(config.JWTConfig{}, nil, enums.OperatorRoleAdmin)(okHandler())
	resp = httptest.NewRecorder()
	open.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected open gate without auth, got %d", resp.Code)
	}
}

func TestWebhookSecret(t *testing.T) {
	handler := WebhookSecret("s3cret", nil)(okHandler())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Webhook-Secret", "s3cret")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	open := WebhookSecret("", nil)(okHandler())
	resp = httptest.NewRecorder()
	open.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected pass-through without secret got %d", resp.Code)
	}
}
