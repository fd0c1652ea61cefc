package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CarlJazper/PSPWEB/internal/config"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gateway, err := NewStripeGateway(config.PaymentConfig{
		SecretKey: "sk_test_123",
		APIBase:   server.URL,
		Currency:  "php",
	})
	if err != nil {
		t.Fatalf("NewStripeGateway: %v", err)
	}
	return gateway
}

func TestCreateIntentSendsMinorUnitAmount(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents" {
			t.Errorf("path = %q, want /v1/payment_intents", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if got := r.PostForm.Get("amount"); got != "250050" {
			t.Errorf("amount = %q, want 250050 (centavos)", got)
		}
		if got := r.PostForm.Get("currency"); got != "php" {
			t.Errorf("currency = %q, want php", got)
		}
		if got := r.PostForm.Get("customer"); got != "cus_42" {
			t.Errorf("customer = %q, want cus_42", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret_abc"}`))
	})

	intent, err := gateway.CreateIntent(context.Background(), "cus_42", 2500.50, "php")
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if intent.ID != "pi_1" {
		t.Errorf("intent.ID = %q, want pi_1", intent.ID)
	}
	if intent.ClientSecret != "pi_1_secret_abc" {
		t.Errorf("clientSecret = %q, want pi_1_secret_abc", intent.ClientSecret)
	}
}

func TestCreateIntentRejectsBadInput(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the gateway")
	})

	if _, err := gateway.CreateIntent(context.Background(), "", 100, "php"); err == nil {
		t.Error("missing customer: expected error")
	}
	if _, err := gateway.CreateIntent(context.Background(), "cus_42", 0, "php"); err == nil {
		t.Error("zero amount: expected error")
	}
}

func TestCreateIntentSurfacesGatewayError(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"Your card was declined."}}`))
	})

	_, err := gateway.CreateIntent(context.Background(), "cus_42", 100, "php")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "card was declined") {
		t.Errorf("err = %v, want declined message surfaced", err)
	}
}

func TestCreateIntentRequiresClientSecret(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"pi_1"}`))
	})

	if _, err := gateway.CreateIntent(context.Background(), "cus_42", 100, "php"); err == nil {
		t.Error("expected error on missing client secret")
	}
}
