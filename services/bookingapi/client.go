// Package bookingapi wraps the external Booking Service, the authoritative
// owner of booking drafts. Every call returns a uniform envelope of
// {success, data, message}; a non-success envelope or transport failure is
// reported as a *CallError carrying the service message verbatim when one
// was provided.
package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"shipflow/models"
)

// Client is the contract the workflow engine expects from the Booking
// Service. All mutating calls return the authoritative draft on success.
type Client interface {
	CreateDraft(ctx context.Context, serviceType models.ServiceType) (*models.BookingDraft, error)
	UpdatePackageDetails(ctx context.Context, draftID string, payload PackagePayload) (*models.BookingDraft, error)
	UpdateDimensionsOrGuides(ctx context.Context, draftID string, payload DimensionsPayload) (*models.BookingDraft, error)
	UpdatePhotos(ctx context.Context, draftID string, photoRefs []string) (*models.BookingDraft, error)
	UpdateDeliveryAddress(ctx context.Context, draftID string, payload DeliveryPayload) (*models.BookingDraft, error)
	UpdatePaymentStatus(ctx context.Context, draftID string, payload PaymentPayload) (*models.BookingDraft, error)
}

// PackagePayload carries the package classification step.
type PackagePayload struct {
	PackageType models.PackageType `json:"packageType"`
	Description string             `json:"description"`
	Fragile     bool               `json:"fragile"`
}

// DimensionsPayload carries either dimension sets or price guide selections,
// never both.
type DimensionsPayload struct {
	Weight      float64               `json:"weight,omitempty"`
	Dimensions  []models.DimensionSet `json:"dimensions,omitempty"`
	PriceGuides []models.GuideItem    `json:"priceGuides,omitempty"`
}

// DeliveryPayload carries the delivery details step.
type DeliveryPayload struct {
	PickupAddress   *models.Address     `json:"pickupAddress"`
	DeliveryAddress *models.Address     `json:"deliveryAddress,omitempty"`
	DeliveryMode    models.DeliveryMode `json:"deliveryMode"`
	Receiver        *models.Receiver    `json:"receiver"`
}

// PaymentPayload records a settlement against a draft.
type PaymentPayload struct {
	Method   string               `json:"method"`
	Amount   float64              `json:"amount"`
	Currency string               `json:"currency"`
	Status   models.PaymentStatus `json:"status"`
}

// CallError is a failed Booking Service call.
type CallError struct {
	Op      string
	Message string
	Err     error
}

func (e *CallError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("booking service %s failed: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("booking service %s failed: %v", e.Op, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// envelope is the uniform response wrapper used by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// HTTPClient is the production Client implementation.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) CreateDraft(ctx context.Context, serviceType models.ServiceType) (*models.BookingDraft, error) {
	body := map[string]models.ServiceType{"serviceType": serviceType}
	return c.call(ctx, "createDraft", http.MethodPost, "/api/drafts", body)
}

func (c *HTTPClient) UpdatePackageDetails(ctx context.Context, draftID string, payload PackagePayload) (*models.BookingDraft, error) {
	return c.call(ctx, "updatePackageDetails", http.MethodPut, "/api/drafts/"+draftID+"/package", payload)
}

func (c *HTTPClient) UpdateDimensionsOrGuides(ctx context.Context, draftID string, payload DimensionsPayload) (*models.BookingDraft, error) {
	return c.call(ctx, "updateDimensionsOrGuides", http.MethodPut, "/api/drafts/"+draftID+"/dimensions", payload)
}

func (c *HTTPClient) UpdatePhotos(ctx context.Context, draftID string, photoRefs []string) (*models.BookingDraft, error) {
	body := map[string][]string{"photos": photoRefs}
	return c.call(ctx, "updatePhotos", http.MethodPut, "/api/drafts/"+draftID+"/photos", body)
}

func (c *HTTPClient) UpdateDeliveryAddress(ctx context.Context, draftID string, payload DeliveryPayload) (*models.BookingDraft, error) {
	return c.call(ctx, "updateDeliveryAddress", http.MethodPut, "/api/drafts/"+draftID+"/delivery", payload)
}

func (c *HTTPClient) UpdatePaymentStatus(ctx context.Context, draftID string, payload PaymentPayload) (*models.BookingDraft, error) {
	return c.call(ctx, "updatePaymentStatus", http.MethodPut, "/api/drafts/"+draftID+"/payment", payload)
}

func (c *HTTPClient) call(ctx context.Context, op, method, path string, body any) (*models.BookingDraft, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &CallError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, &CallError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &CallError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &CallError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if !env.Success {
		return nil, &CallError{Op: op, Message: env.Message}
	}

	var draft models.BookingDraft
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &draft); err != nil {
			return nil, &CallError{Op: op, Err: fmt.Errorf("decoding draft: %w", err)}
		}
	}
	return &draft, nil
}
