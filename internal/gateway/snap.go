package gateway

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

type ItemLine struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Qty   int    `json:"quantity"`
}

type TokenRequest struct {
	OrderID       string
	GrossAmount   int64
	Items         []ItemLine
	CustomerName  string
	CustomerPhone string
}

type TokenResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// TokenCreator is what the booking service depends on; SnapClient is the
// real implementation, tests provide their own.
type TokenCreator interface {
	CreateToken(ctx context.Context, req TokenRequest) (*TokenResponse, error)
}

type SnapClient struct {
	baseURL   string
	serverKey string
	hc        *http.Client
}

func NewSnapClient(baseURL, serverKey string) *SnapClient {
	return &SnapClient{
		baseURL:   baseURL,
		serverKey: serverKey,
		hc:        &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *SnapClient) CreateToken(ctx context.Context, in TokenRequest) (*TokenResponse, error) {
	if in.OrderID == "" || in.GrossAmount < 0 {
		return nil, errors.New("invalid token request")
	}
	payload := map[string]any{
		"transaction_details": map[string]any{
			"order_id":     in.OrderID,
			"gross_amount": in.GrossAmount,
		},
		"item_details": in.Items,
		"customer_details": map[string]any{
			"first_name": in.CustomerName,
			"phone":      in.CustomerPhone,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// Basic auth: username = server key, password empty.
	req.SetBasicAuth(c.serverKey, "")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway create token: %w", err)
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway create token failed: %s (%d)", string(raw), res.StatusCode)
	}

	var out TokenResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse token response: %w", err)
	}
	if out.Token == "" {
		return nil, errors.New("gateway returned empty token")
	}
	return &out, nil
}

// Signature computes the webhook signature the gateway sends:
// sha512(order_id + status_code + gross_amount + server_key), hex encoded.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifySignature checks a webhook notification against the server key.
func VerifySignature(orderID, statusCode, grossAmount, serverKey, got string) bool {
	return got != "" && got == Signature(orderID, statusCode, grossAmount, serverKey)
}
