package utils

import (
	"edupay/config"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Gateway payment statuses (YooKassa vocabulary).
const (
	GatewayStatusPending           = "pending"
	GatewayStatusWaitingForCapture = "waiting_for_capture"
	GatewayStatusSucceeded         = "succeeded"
	GatewayStatusCanceled          = "canceled"
)

// GatewayAmount is money as the gateway wants it: a decimal string plus a
// currency code.
type GatewayAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// NewGatewayAmount converts minor currency units into the gateway's decimal
// string form (169900 -> "1699.00").
func NewGatewayAmount(minorUnits int64) GatewayAmount {
	return GatewayAmount{
		Value:    fmt.Sprintf("%d.%02d", minorUnits/100, minorUnits%100),
		Currency: "RUB",
	}
}

type GatewayConfirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type ReceiptCustomer struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type ReceiptItem struct {
	Description string        `json:"description"`
	Quantity    string        `json:"quantity"`
	Amount      GatewayAmount `json:"amount"`
	VatCode     int           `json:"vat_code"`
}

type GatewayReceipt struct {
	Customer ReceiptCustomer `json:"customer"`
	Items    []ReceiptItem   `json:"items"`
}

// CreateGatewayPaymentRequest is the payment-creation payload.
type CreateGatewayPaymentRequest struct {
	Amount       GatewayAmount       `json:"amount"`
	Capture      bool                `json:"capture"`
	Confirmation GatewayConfirmation `json:"confirmation"`
	Description  string              `json:"description,omitempty"`
	Receipt      *GatewayReceipt     `json:"receipt,omitempty"`
	Metadata     map[string]string   `json:"metadata,omitempty"`
}

// GatewayPayment is the gateway's view of a payment.
type GatewayPayment struct {
	ID           string               `json:"id"`
	Status       string               `json:"status"`
	Paid         bool                 `json:"paid"`
	Amount       GatewayAmount        `json:"amount"`
	Confirmation *GatewayConfirmation `json:"confirmation,omitempty"`
	Metadata     map[string]string    `json:"metadata,omitempty"`
	CreatedAt    string               `json:"created_at,omitempty"`
}

// GatewayError is the gateway's error body.
type GatewayError struct {
	Type        string `json:"type"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *GatewayError) Error() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Code
}

// PaymentGateway is the HTTP client for the payment provider.
type PaymentGateway struct {
	client *resty.Client
}

// NewPaymentGateway builds a client from AppConfig. Shop credentials go in
// as basic auth on every call.
func NewPaymentGateway() *PaymentGateway {
	client := resty.New().
		SetBaseURL(config.AppConfig.GatewayApiURL).
		SetBasicAuth(config.AppConfig.GatewayShopID, config.AppConfig.GatewaySecret).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &PaymentGateway{client: client}
}

// CreatePayment registers a payment with the gateway. The idempotence key
// makes user-triggered retries safe: the gateway returns the original
// payment instead of charging twice. The raw response body is returned for
// the audit column.
func (g *PaymentGateway) CreatePayment(reqData CreateGatewayPaymentRequest, idempotenceKey string) (*GatewayPayment, []byte, error) {
	resp, err := g.client.R().
		SetHeader("Idempotence-Key", idempotenceKey).
		SetBody(reqData).
		Post("/payments")
	if err != nil {
		return nil, nil, fmt.Errorf("gateway request failed: %w", err)
	}

	body := resp.Body()
	if resp.IsError() {
		return nil, body, parseGatewayError(body, resp.StatusCode())
	}

	var payment GatewayPayment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, body, fmt.Errorf("failed to parse gateway response: %w", err)
	}

	return &payment, body, nil
}

// GetPayment fetches the current state of a payment. Webhook handling and
// the reconciliation sweep use it as the source of truth instead of
// trusting notification bodies.
func (g *PaymentGateway) GetPayment(paymentID string) (*GatewayPayment, error) {
	resp, err := g.client.R().Get("/payments/" + paymentID)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}

	if resp.IsError() {
		return nil, parseGatewayError(resp.Body(), resp.StatusCode())
	}

	var payment GatewayPayment
	if err := json.Unmarshal(resp.Body(), &payment); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}

	return &payment, nil
}

func parseGatewayError(body []byte, statusCode int) error {
	var gwErr GatewayError
	if err := json.Unmarshal(body, &gwErr); err == nil && (gwErr.Description != "" || gwErr.Code != "") {
		return &gwErr
	}
	return fmt.Errorf("gateway error: status %d", statusCode)
}
