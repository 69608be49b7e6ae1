package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"shipflow/models"
	"shipflow/services/bookingapi"
)

// --- fake Booking Service ---

// fakeAPI keeps one authoritative draft and mutates it per call, the way
// the real Booking Service owns draft state.
type fakeAPI struct {
	mu          sync.Mutex
	failOps     map[string]string // op -> failure message
	calls       []string
	lastPayment *bookingapi.PaymentPayload
	draft       models.BookingDraft
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{failOps: make(map[string]string)}
}

func (f *fakeAPI) failOn(op, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOps[op] = message
}

func (f *fakeAPI) clearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOps = make(map[string]string)
}

func (f *fakeAPI) check(op string) error {
	f.calls = append(f.calls, op)
	if msg, ok := f.failOps[op]; ok {
		return &bookingapi.CallError{Op: op, Message: msg}
	}
	return nil
}

func (f *fakeAPI) snapshot() *models.BookingDraft {
	cp := f.draft
	return &cp
}

func (f *fakeAPI) CreateDraft(ctx context.Context, serviceType models.ServiceType) (*models.BookingDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("createDraft"); err != nil {
		return nil, err
	}
	f.draft = models.BookingDraft{
		ID:             "draft-1",
		ServiceType:    serviceType,
		TrackingNumber: "SF-100200",
		PaymentOutcome: models.PaymentOutcome{Status: models.PaymentUnpaid},
	}
	return f.snapshot(), nil
}

func (f *fakeAPI) UpdatePackageDetails(ctx context.Context, draftID string, payload bookingapi.PackagePayload) (*models.BookingDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("updatePackageDetails"); err != nil {
		return nil, err
	}
	f.draft.PackageType = payload.PackageType
	f.draft.Description = payload.Description
	f.draft.Fragile = payload.Fragile
	return f.snapshot(), nil
}

func (f *fakeAPI) UpdateDimensionsOrGuides(ctx context.Context, draftID string, payload bookingapi.DimensionsPayload) (*models.BookingDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("updateDimensionsOrGuides"); err != nil {
		return nil, err
	}
	f.draft.Weight = payload.Weight
	f.draft.DimensionSets = payload.Dimensions
	f.draft.GuideItems = payload.PriceGuides
	return f.snapshot(), nil
}

func (f *fakeAPI) UpdatePhotos(ctx context.Context, draftID string, photoRefs []string) (*models.BookingDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("updatePhotos"); err != nil {
		return nil, err
	}
	f.draft.PhotoRefs = photoRefs
	return f.snapshot(), nil
}

func (f *fakeAPI) UpdateDeliveryAddress(ctx context.Context, draftID string, payload bookingapi.DeliveryPayload) (*models.BookingDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("updateDeliveryAddress"); err != nil {
		return nil, err
	}
	f.draft.PickupAddress = payload.PickupAddress
	f.draft.DeliveryAddr = payload.DeliveryAddress
	f.draft.DeliveryMode = payload.DeliveryMode
	f.draft.Receiver = payload.Receiver
	return f.snapshot(), nil
}

func (f *fakeAPI) UpdatePaymentStatus(ctx context.Context, draftID string, payload bookingapi.PaymentPayload) (*models.BookingDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("updatePaymentStatus"); err != nil {
		return nil, err
	}
	f.lastPayment = &payload
	f.draft.PaymentOutcome = models.PaymentOutcome{
		Status:   payload.Status,
		Method:   payload.Method,
		Amount:   payload.Amount,
		Currency: payload.Currency,
	}
	return f.snapshot(), nil
}

// --- in-memory session store ---

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Save(ctx context.Context, state *SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[state.SessionID] = encode(state)
	return nil
}

func (m *memStore) Load(ctx context.Context, sessionID string) (*SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return decode(raw), nil
}

func (m *memStore) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}

// encode/decode give the store value semantics: loading always yields an
// independent deep copy, like the Redis implementation.
func encode(s *SessionState) []byte {
	b, _ := json.Marshal(s)
	return b
}

func decode(raw []byte) *SessionState {
	var s SessionState
	_ = json.Unmarshal(raw, &s)
	return &s
}

// --- fake wallet provider ---

type fakeWallet struct {
	orders        []models.WalletOrder
	captureOK     bool
	createErr     error
	confirmCalled int
}

func (w *fakeWallet) CreateOrder(ctx context.Context, amount float64, currency, description string) (*models.WalletOrder, error) {
	if w.createErr != nil {
		return nil, w.createErr
	}
	order := models.WalletOrder{
		OrderID:  "order-1",
		Amount:   amount,
		Currency: currency,
		Status:   "requires_capture",
	}
	w.orders = append(w.orders, order)
	return &order, nil
}

func (w *fakeWallet) ConfirmCapture(ctx context.Context, orderID string) (bool, error) {
	w.confirmCalled++
	return w.captureOK, nil
}

var errWalletDown = errors.New("wallet provider unavailable")
