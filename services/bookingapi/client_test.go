package bookingapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shipflow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDraftDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/drafts", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "airfreight", body["serviceType"])

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"id":             "draft-77",
				"serviceType":    "airfreight",
				"trackingNumber": "SF-445566",
			},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	draft, err := client.CreateDraft(context.Background(), models.ServiceAirFreight)
	require.NoError(t, err)
	assert.Equal(t, "draft-77", draft.ID)
	assert.Equal(t, models.ServiceAirFreight, draft.ServiceType)
	assert.Equal(t, "SF-445566", draft.TrackingNumber)
}

func TestNonSuccessEnvelopeCarriesServiceMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "draft draft-9 is locked by another operation",
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	_, err := client.UpdatePackageDetails(context.Background(), "draft-9", PackagePayload{
		PackageType: models.PackageParcel,
		Description: "Boxed ceramics",
	})
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "updatePackageDetails", ce.Op)
	assert.Equal(t, "draft draft-9 is locked by another operation", ce.Message)
	assert.Contains(t, ce.Error(), "is locked by another operation")
}

func TestUpdatePaymentStatusSendsPayload(t *testing.T) {
	var got PaymentPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/drafts/draft-3/payment", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": "draft-3"},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	_, err := client.UpdatePaymentStatus(context.Background(), "draft-3", PaymentPayload{
		Method:   "bank_transfer",
		Amount:   240.5,
		Currency: "USD",
		Status:   models.PaymentPending,
	})
	require.NoError(t, err)
	assert.Equal(t, "bank_transfer", got.Method)
	assert.Equal(t, 240.5, got.Amount)
	assert.Equal(t, models.PaymentPending, got.Status)
}

func TestMalformedResponseIsCallError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("upstream proxy error"))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	_, err := client.UpdatePhotos(context.Background(), "draft-1", []string{"uploads/a.jpg"})
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "updatePhotos", ce.Op)
	assert.NotNil(t, ce.Err)
}

func TestTransportFailureIsCallError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewHTTPClient(srv.URL)
	_, err := client.CreateDraft(context.Background(), models.ServiceFrozen)
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "createDraft", ce.Op)
	assert.NotNil(t, ce.Err)
}
