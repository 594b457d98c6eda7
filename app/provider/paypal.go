package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// OrderStatusCompleted is PayPal's terminal settlement status for a
// captured order. Any other status leaves the registration untouched.
const OrderStatusCompleted = "COMPLETED"

type PayPalConfig struct {
	ClientID    string
	Secret      string
	APIBase     string
	HTTPTimeout time.Duration
}

// PayPalClient is a minimal REST client for the two checkout calls this
// service needs: order creation and capture. The OAuth access token is
// cached per process and refreshed ahead of its expiry.
type PayPalClient struct {
	cfg    PayPalConfig
	client *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPayPalClient(cfg PayPalConfig) *PayPalClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.APIBase) == "" {
		cfg.APIBase = "https://api-m.paypal.com"
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")

	return &PayPalClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type CreateOrderInput struct {
	CustomID    string
	Amount      string
	Currency    string
	Description string
}

// CreateOrder requests a CAPTURE-intent order carrying the correlation
// token as the purchase unit's custom_id, and returns the order id.
func (p *PayPalClient) CreateOrder(ctx context.Context, input CreateOrderInput) (string, error) {
	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"custom_id":   input.CustomID,
			"description": input.Description,
			"amount": map[string]string{
				"currency_code": input.Currency,
				"value":         input.Amount,
			},
		}},
	}

	respBody, err := p.postJSON(ctx, "/v2/checkout/orders", body)
	if err != nil {
		return "", err
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.ID) == "" {
		return "", errors.New("paypal order id missing")
	}
	return payload.ID, nil
}

type CaptureResult struct {
	Status   string
	CustomID string
}

// CaptureOrder finalizes an approved order and returns the settlement
// status plus the custom_id embedded at order creation.
func (p *PayPalClient) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	respBody, err := p.postJSON(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Status        string `json:"status"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					CustomID string `json:"custom_id"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, err
	}

	result := &CaptureResult{Status: payload.Status}
	for _, unit := range payload.PurchaseUnits {
		for _, capture := range unit.Payments.Captures {
			if customID := strings.TrimSpace(capture.CustomID); customID != "" {
				result.CustomID = customID
				return result, nil
			}
		}
	}
	return result, nil
}

func (p *PayPalClient) postJSON(ctx context.Context, path string, body interface{}) ([]byte, error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIBase+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("paypal request failed: path=%s status=%d body=%s", path, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// token returns a cached client-credentials access token, exchanging a
// new one when the cache is empty or within a minute of expiring.
func (p *PayPalClient) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry.Add(-time.Minute)) {
		return p.accessToken, nil
	}

	if strings.TrimSpace(p.cfg.ClientID) == "" || strings.TrimSpace(p.cfg.Secret) == "" {
		return "", errors.New("paypal credentials are not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIBase+"/v1/oauth2/token",
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.cfg.ClientID, p.cfg.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("paypal token exchange failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return "", errors.New("paypal access token missing")
	}

	p.accessToken = payload.AccessToken
	p.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return p.accessToken, nil
}
