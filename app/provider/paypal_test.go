package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newPayPalTestServer(t *testing.T, tokenCalls *int64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || username != "client-1" || password != "secret-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		atomic.AddInt64(tokenCalls, 1)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "token-abc",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body struct {
			Intent        string `json:"intent"`
			PurchaseUnits []struct {
				CustomID string `json:"custom_id"`
				Amount   struct {
					CurrencyCode string `json:"currency_code"`
					Value        string `json:"value"`
				} `json:"amount"`
			} `json:"purchase_units"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if body.Intent != "CAPTURE" || len(body.PurchaseUnits) != 1 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		if body.PurchaseUnits[0].CustomID != "Piano:7" || body.PurchaseUnits[0].Amount.Value != "60.00" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "ORDER-123"})
	})
	mux.HandleFunc("/v2/checkout/orders/ORDER-123/capture", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "COMPLETED",
			"purchase_units": []map[string]interface{}{{
				"payments": map[string]interface{}{
					"captures": []map[string]string{{"custom_id": "Piano:7"}},
				},
			}},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestPayPalCreateAndCaptureOrder(t *testing.T) {
	var tokenCalls int64
	server := newPayPalTestServer(t, &tokenCalls)

	client := NewPayPalClient(PayPalConfig{
		ClientID: "client-1",
		Secret:   "secret-1",
		APIBase:  server.URL,
	})

	orderID, err := client.CreateOrder(context.Background(), CreateOrderInput{
		CustomID:    "Piano:7",
		Amount:      "60.00",
		Currency:    "USD",
		Description: "MACOC Registration",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if orderID != "ORDER-123" {
		t.Fatalf("unexpected order id: %s", orderID)
	}

	result, err := client.CaptureOrder(context.Background(), "ORDER-123")
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if result.Status != OrderStatusCompleted {
		t.Fatalf("unexpected status: %s", result.Status)
	}
	if result.CustomID != "Piano:7" {
		t.Fatalf("unexpected custom id: %s", result.CustomID)
	}

	if atomic.LoadInt64(&tokenCalls) != 1 {
		t.Fatalf("expected one token exchange for both calls, got %d", tokenCalls)
	}
}

func TestPayPalCreateOrderProviderRejection(t *testing.T) {
	var tokenCalls int64
	server := newPayPalTestServer(t, &tokenCalls)

	client := NewPayPalClient(PayPalConfig{
		ClientID: "client-1",
		Secret:   "secret-1",
		APIBase:  server.URL,
	})

	_, err := client.CreateOrder(context.Background(), CreateOrderInput{
		CustomID: "other-token",
		Amount:   "0.00",
		Currency: "USD",
	})
	if err == nil {
		t.Fatal("expected provider rejection")
	}
}

func TestPayPalTokenMissingCredentials(t *testing.T) {
	client := NewPayPalClient(PayPalConfig{})
	if _, err := client.token(context.Background()); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}
