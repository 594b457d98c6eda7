//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

const defaultRegistrationHTTPBase = "http://localhost:48080"

func registrationHTTPBase() string {
	if base := os.Getenv("E2E_REGISTRATION_HTTP_BASE"); base != "" {
		return base
	}
	return defaultRegistrationHTTPBase
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPClient(baseURL string) *httpClient {
	return &httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *httpClient) doJSON(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal failed: %v", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("http request failed: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body failed: %v", err)
	}
	return resp, bodyBytes
}

func TestHealthEndpoint(t *testing.T) {
	client := newHTTPClient(registrationHTTPBase())
	resp, body := client.doJSON(t, http.MethodGet, "/health", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, body)
	}
}

func TestSubmitRegistrationMissingFields(t *testing.T) {
	client := newHTTPClient(registrationHTTPBase())
	resp, body := client.doJSON(t, http.MethodPost, "/api/registrations", map[string]any{
		"studentFirstName": "Clara",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", resp.StatusCode, body)
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if payload.Error == "" {
		t.Fatal("expected error message naming the missing field")
	}
}

func TestCreateOrderValidation(t *testing.T) {
	client := newHTTPClient(registrationHTTPBase())
	resp, body := client.doJSON(t, http.MethodPost, "/api/paypal/orders", map[string]any{
		"amount": 60,
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", resp.StatusCode, body)
	}
}

func TestCaptureOrderValidation(t *testing.T) {
	client := newHTTPClient(registrationHTTPBase())
	resp, body := client.doJSON(t, http.MethodPost, "/api/paypal/capture", map[string]any{}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", resp.StatusCode, body)
	}
}

func TestStripeWebhookMissingSignature(t *testing.T) {
	client := newHTTPClient(registrationHTTPBase())
	resp, body := client.doJSON(t, http.MethodPost, "/webhooks/stripe", map[string]any{
		"id": "evt_e2e",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", resp.StatusCode, body)
	}
}

func TestStripeWebhookBadSignature(t *testing.T) {
	client := newHTTPClient(registrationHTTPBase())
	resp, body := client.doJSON(t, http.MethodPost, "/webhooks/stripe", map[string]any{
		"id": "evt_e2e",
	}, map[string]string{"Stripe-Signature": "t=1,v1=deadbeef"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", resp.StatusCode, body)
	}
}
