package workflow

import (
	"context"
	"testing"

	"shipflow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCard() *models.CardDetails {
	return &models.CardDetails{
		Number: "4242 4242 4242 4242",
		Expiry: "09/28",
		CVV:    "314",
		Holder: "A. Okafor",
	}
}

func TestCardSettlementPaysInFull(t *testing.T) {
	store := newMemStore()
	api := newFakeAPI()
	svc := newTestService(api, store, &fakeWallet{})
	ctx := context.Background()

	sessionID := advanceToPayment(t, svc)

	result, err := svc.Settle(ctx, sessionID, models.SettlementRequest{
		Channel: models.ChannelCard,
		Card:    validCard(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, result.Outcome.Status)
	assert.Equal(t, 18.0, result.Outcome.Amount)
	assert.Equal(t, models.PaymentPaid, api.lastPayment.Status)

	// Settlement clears all resumable state.
	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Resume(ctx, sessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCardValidationRunsBeforeAnyNetworkCall(t *testing.T) {
	api := newFakeAPI()
	svc := newTestService(api, newMemStore(), &fakeWallet{})
	ctx := context.Background()

	sessionID := advanceToPayment(t, svc)

	cases := []struct {
		name  string
		card  *models.CardDetails
		field string
	}{
		{"short number", &models.CardDetails{Number: "4242 4242", Expiry: "09/28", CVV: "314", Holder: "A"}, "card.number"},
		{"bad expiry", &models.CardDetails{Number: "4242424242424242", Expiry: "13/28", CVV: "314", Holder: "A"}, "card.expiry"},
		{"bad cvv", &models.CardDetails{Number: "4242424242424242", Expiry: "09/28", CVV: "31", Holder: "A"}, "card.cvv"},
		{"missing holder", &models.CardDetails{Number: "4242424242424242", Expiry: "09/28", CVV: "314", Holder: " "}, "card.holder"},
		{"no card", nil, "card"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Settle(ctx, sessionID, models.SettlementRequest{
				Channel: models.ChannelCard,
				Card:    tc.card,
			})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
	assert.Nil(t, api.lastPayment, "no settlement call may be made on invalid card input")
}

func TestWalletTwoPhaseSettlement(t *testing.T) {
	store := newMemStore()
	api := newFakeAPI()
	wallet := &fakeWallet{captureOK: false}
	svc := newTestService(api, store, wallet)
	ctx := context.Background()

	sessionID := advanceToPayment(t, svc)

	// Phase two fails: the capture never completed, so no internal
	// settlement happens and the session stays resumable for retry.
	_, err := svc.Settle(ctx, sessionID, models.SettlementRequest{Channel: models.ChannelWallet})
	var perr *PaymentError
	require.ErrorAs(t, err, &perr)
	assert.Nil(t, api.lastPayment)
	_, err = store.Load(ctx, sessionID)
	require.NoError(t, err)

	// Retry on the same channel after the provider completes the capture.
	wallet.captureOK = true
	result, err := svc.Settle(ctx, sessionID, models.SettlementRequest{Channel: models.ChannelWallet})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, result.Outcome.Status)
	require.NotNil(t, result.WalletOrder)
	assert.Equal(t, 18.0, result.WalletOrder.Amount)
	assert.Equal(t, 2, wallet.confirmCalled)
}

func TestWalletProviderFailureLeavesDraftUnsettled(t *testing.T) {
	store := newMemStore()
	api := newFakeAPI()
	svc := newTestService(api, store, &fakeWallet{createErr: errWalletDown})
	ctx := context.Background()

	sessionID := advanceToPayment(t, svc)

	_, err := svc.Settle(ctx, sessionID, models.SettlementRequest{Channel: models.ChannelWallet})
	var perr *PaymentError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, errWalletDown)
	assert.Nil(t, api.lastPayment)
}

func TestBankTransferIsAlwaysPending(t *testing.T) {
	store := newMemStore()
	api := newFakeAPI()
	svc := newTestService(api, store, &fakeWallet{})
	ctx := context.Background()

	sessionID := advanceToPayment(t, svc)

	result, err := svc.Settle(ctx, sessionID, models.SettlementRequest{Channel: models.ChannelBankTransfer})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, result.Outcome.Status)
	assert.Equal(t, models.PaymentPending, api.lastPayment.Status)

	require.NotNil(t, result.Remittance)
	assert.Equal(t, "SF-100200", result.Remittance.Reference, "remittance must reference the tracking number")
	assert.Equal(t, 18.0, result.Remittance.Amount)
}

func TestPartialPaymentRecordsDeposit(t *testing.T) {
	api := newFakeAPI()
	svc := newTestService(api, newMemStore(), &fakeWallet{})
	ctx := context.Background()

	sessionID := advanceToPayment(t, svc)

	result, err := svc.Settle(ctx, sessionID, models.SettlementRequest{
		Channel:         models.ChannelPartial,
		DepositFraction: 0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, result.Outcome.Status)
	assert.Equal(t, 9.0, result.Outcome.Amount)
}

func TestPartialPaymentRejectsUnsupportedFraction(t *testing.T) {
	svc := newTestService(newFakeAPI(), newMemStore(), &fakeWallet{})
	ctx := context.Background()

	sessionID := advanceToPayment(t, svc)

	_, err := svc.Settle(ctx, sessionID, models.SettlementRequest{
		Channel:         models.ChannelPartial,
		DepositFraction: 0.3,
	})
	var perr *PaymentError
	require.ErrorAs(t, err, &perr)
}

// advanceContainerToPayment walks a container booking with unpriced items
// to the payment step.
func advanceContainerToPayment(t *testing.T, svc *DefaultWizardService) string {
	t.Helper()
	ctx := context.Background()

	state, err := svc.StartSession(ctx, "seafreight")
	require.NoError(t, err)
	sessionID := state.SessionID

	_, err = svc.Advance(ctx, sessionID, StepInput{Package: &PackageInput{
		PackageType: "container",
		Description: "Full container load, mixed goods",
	}})
	require.NoError(t, err)

	_, err = svc.Advance(ctx, sessionID, StepInput{Dimensions: &DimensionsInput{
		GuideItems: []GuideSelectionIn{
			{Name: "20ft container", UnitPrice: 0, Quantity: 1},
			{Name: "40ft container", UnitPrice: 0, Quantity: 1},
		},
	}})
	require.NoError(t, err)

	_, err = svc.Advance(ctx, sessionID, photosInput())
	require.NoError(t, err)
	state, err = svc.Advance(ctx, sessionID, deliveryInput())
	require.NoError(t, err)
	require.Equal(t, StepPayment, state.CurrentStep())
	return sessionID
}

func TestPendingPriceBlocksAmountBearingChannels(t *testing.T) {
	api := newFakeAPI()
	svc := newTestService(api, newMemStore(), &fakeWallet{captureOK: true})
	ctx := context.Background()

	sessionID := advanceContainerToPayment(t, svc)

	quote, err := svc.Quote(ctx, sessionID)
	require.NoError(t, err)
	require.True(t, quote.PricePending)

	// No channel that carries an amount may settle an unpriced draft: the
	// customer must not be charged, or instructed to remit, 0.00.
	for _, req := range []models.SettlementRequest{
		{Channel: models.ChannelCard, Card: validCard()},
		{Channel: models.ChannelWallet},
		{Channel: models.ChannelBankTransfer},
		{Channel: models.ChannelPartial, DepositFraction: 0.5},
		{Channel: models.ChannelPartial, DepositFraction: 0.7},
	} {
		_, err := svc.Settle(ctx, sessionID, req)
		var perr *PaymentError
		require.ErrorAs(t, err, &perr, "channel %s fraction %.1f", req.Channel, req.DepositFraction)
	}
	assert.Nil(t, api.lastPayment)
}

func TestPendingPriceAllowsZeroDepositPartial(t *testing.T) {
	store := newMemStore()
	api := newFakeAPI()
	svc := newTestService(api, store, &fakeWallet{})
	ctx := context.Background()

	sessionID := advanceContainerToPayment(t, svc)

	result, err := svc.Settle(ctx, sessionID, models.SettlementRequest{Channel: models.ChannelPartial})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, result.Outcome.Status)
	assert.Zero(t, result.Outcome.Amount)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSettlementUnavailableBeforePaymentStep(t *testing.T) {
	svc := newTestService(newFakeAPI(), newMemStore(), &fakeWallet{})
	ctx := context.Background()

	state, err := svc.StartSession(ctx, "frozen")
	require.NoError(t, err)

	_, err = svc.Settle(ctx, state.SessionID, models.SettlementRequest{Channel: models.ChannelBankTransfer})
	var perr *PaymentError
	require.ErrorAs(t, err, &perr)
}

func TestSyncFailureDuringSettlementKeepsSessionResumable(t *testing.T) {
	store := newMemStore()
	api := newFakeAPI()
	svc := newTestService(api, store, &fakeWallet{})
	ctx := context.Background()

	sessionID := advanceToPayment(t, svc)

	api.failOn("updatePaymentStatus", "settlement backend down")
	_, err := svc.Settle(ctx, sessionID, models.SettlementRequest{Channel: models.ChannelCard, Card: validCard()})
	var perr *PaymentError
	require.ErrorAs(t, err, &perr)

	persisted, err := store.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, StepPayment, persisted.CurrentStep())

	api.clearFailures()
	result, err := svc.Settle(ctx, sessionID, models.SettlementRequest{Channel: models.ChannelCard, Card: validCard()})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, result.Outcome.Status)
}
