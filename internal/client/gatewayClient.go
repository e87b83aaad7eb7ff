package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"checkout-engine/internal/apperr"
	"checkout-engine/internal/config"

	"github.com/shopspring/decimal"
)

type VerifyStatus string

const (
	VerifyStatusSuccess VerifyStatus = "success"
	VerifyStatusFailed  VerifyStatus = "failed"
	VerifyStatusPending VerifyStatus = "pending"
)

type InitializeResponse struct {
	AuthorizationURL string
	Reference        string
}

type VerifyResponse struct {
	Status    VerifyStatus
	Amount    decimal.Decimal
	Reference string
}

// PaymentGateway is the whole contract the checkout engine has with the
// payment provider. Verify is the source of truth for a reference and must
// stay safe to call repeatedly.
type PaymentGateway interface {
	Initialize(ctx context.Context, email string, amount decimal.Decimal, reference string) (*InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*VerifyResponse, error)
}

type gatewayClientImpl struct {
	httpClient     *http.Client
	baseApiURL     string
	secretKey      string
	serviceBaseURL string
}

func NewGatewayClient(gatewayCfg *config.Gateway, serviceBaseURL string) PaymentGateway {
	return &gatewayClientImpl{
		httpClient: &http.Client{
			Timeout: gatewayCfg.RequestTimeout,
		},
		baseApiURL:     gatewayCfg.BaseApiURL,
		secretKey:      gatewayCfg.SecretKey,
		serviceBaseURL: serviceBaseURL,
	}
}

// envelope is the provider's common response wrapper.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Status    string `json:"status"`
	Amount    int64  `json:"amount"` // minor units
	Reference string `json:"reference"`
}

var minorUnitFactor = decimal.NewFromInt(100)

func (c *gatewayClientImpl) Initialize(ctx context.Context, email string, amount decimal.Decimal, reference string) (*InitializeResponse, error) {
	if email == "" {
		return nil, apperr.InvalidState("payer email is required")
	}
	if reference == "" {
		return nil, apperr.InvalidState("payment reference is required")
	}
	if amount.Sign() <= 0 {
		return nil, apperr.InvalidState("payment amount must be positive")
	}

	payload := map[string]interface{}{
		"email":        email,
		"amount":       amount.Mul(minorUnitFactor).Round(0).IntPart(),
		"reference":    reference,
		"callback_url": fmt.Sprintf("%s/api/payment/verify", c.serviceBaseURL),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/transaction/initialize",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var data initializeData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, apperr.GatewayFailure("payment gateway returned an unreadable response", err)
	}
	if data.AuthorizationURL == "" {
		return nil, apperr.GatewayFailure("payment gateway returned no authorization url", nil)
	}

	return &InitializeResponse{
		AuthorizationURL: data.AuthorizationURL,
		Reference:        data.Reference,
	}, nil
}

func (c *gatewayClientImpl) Verify(ctx context.Context, reference string) (*VerifyResponse, error) {
	if reference == "" {
		return nil, apperr.InvalidState("payment reference is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/transaction/verify/%s", c.baseApiURL, reference), nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var data verifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, apperr.GatewayFailure("payment gateway returned an unreadable response", err)
	}

	return &VerifyResponse{
		Status:    VerifyStatus(data.Status),
		Amount:    decimal.NewFromInt(data.Amount).Div(minorUnitFactor),
		Reference: data.Reference,
	}, nil
}

// do sends the request and unwraps the provider envelope. Transport errors
// and rejected responses come back as a single gateway failure kind; only
// the provider's own message text is carried through.
func (c *gatewayClientImpl) do(req *http.Request) (*envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.GatewayFailure("payment gateway unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.GatewayFailure("payment gateway unreachable", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperr.GatewayFailure("payment gateway returned an unreadable response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Status {
		msg := env.Message
		if msg == "" {
			msg = "payment gateway rejected the request"
		}
		return nil, apperr.GatewayFailure(msg, fmt.Errorf("gateway status %d", resp.StatusCode))
	}

	return &env, nil
}
